// Package testutil holds shared helpers and fixtures for tests.
package testutil

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/mywallet/mywallet/internal/model"
)

// RequireEnv returns an environment variable or skips the test if missing.
func RequireEnv(t testing.TB, key string) string {
	t.Helper()
	value := os.Getenv(key)
	if value == "" {
		t.Skipf("%s not set", key)
	}
	return value
}

const advisoryLockID int64 = 420420

// AcquireDBLock grabs a global advisory lock to serialize DB tests.
func AcquireDBLock(ctx context.Context, pool *pgxpool.Pool) (func() error, error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}

	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock($1)", advisoryLockID); err != nil {
		conn.Release()
		return nil, fmt.Errorf("acquire advisory lock: %w", err)
	}

	unlock := func() error {
		defer conn.Release()
		if _, err := conn.Exec(ctx, "SELECT pg_advisory_unlock($1)", advisoryLockID); err != nil {
			return fmt.Errorf("release advisory lock: %w", err)
		}
		return nil
	}

	return unlock, nil
}

// FlushRedis clears the current Redis database.
func FlushRedis(ctx context.Context, client *redis.Client) error {
	return client.FlushDB(ctx).Err()
}

// ============================================================================
// Test Data Factories
// ============================================================================

var seq atomic.Uint64

// UniqueID generates a unique ID for tests.
func UniqueID(prefix string) string {
	return fmt.Sprintf("%s-%d-%d", prefix, time.Now().UnixNano(), seq.Add(1))
}

// UniqueEmail generates a unique, lower-case email address for tests.
func UniqueEmail(prefix string) string {
	return strings.ToLower(UniqueID(prefix)) + "@example.com"
}

// NewTestUser creates a test user with sensible defaults.
// The password hash is a placeholder; it never verifies.
func NewTestUser(t testing.TB, name string) *model.User {
	t.Helper()
	return &model.User{
		ID:           ulid.Make().String(),
		Name:         name,
		Email:        UniqueEmail(name),
		PasswordHash: "$argon2id$v=19$m=65536,t=3,p=4$placeholder$placeholder",
		CreatedAt:    time.Now().UTC().Truncate(time.Microsecond),
	}
}

// NewTestEntry creates a test ledger entry owned by userID.
func NewTestEntry(t testing.TB, userID, description, value, typ string) *model.Entry {
	t.Helper()
	now := time.Now()
	return &model.Entry{
		ID:          ulid.Make().String(),
		Day:         now.Format(model.DayLayout),
		Description: description,
		Value:       decimal.RequireFromString(value),
		Type:        typ,
		UserID:      userID,
		CreatedAt:   now.UTC().Truncate(time.Microsecond),
	}
}

// NewTestSession creates a session for userID with the given token hash and TTL.
// A zero TTL produces a session that never expires.
func NewTestSession(t testing.TB, userID, tokenHash string, ttl time.Duration) *model.Session {
	t.Helper()
	now := time.Now().UTC().Truncate(time.Microsecond)
	s := &model.Session{
		UserID:    userID,
		TokenHash: tokenHash,
		CreatedAt: now,
	}
	if ttl != 0 {
		s.ExpiresAt = now.Add(ttl)
	}
	return s
}
