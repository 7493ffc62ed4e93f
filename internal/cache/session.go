package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mywallet/mywallet/internal/model"
	"github.com/mywallet/mywallet/internal/repository"
)

// Key layout under the cache prefix:
//
//	session:user:<user id>     hash of the user's current token
//	session:token:<token hash> JSON-encoded CachedSession
const (
	sessionUserPrefix  = "session:user:"
	sessionTokenPrefix = "session:token:"
)

// upsertSessionScript replaces a user's session atomically.
// The previous token key is derived from the user key, so this assumes a
// single Redis node rather than Cluster.
//
// KEYS[1] user key, KEYS[2] new token key
// ARGV[1] token hash, ARGV[2] payload, ARGV[3] ttl in ms (0 = none), ARGV[4] token prefix
var upsertSessionScript = redis.NewScript(`
local prev = redis.call('GET', KEYS[1])
if prev and prev ~= ARGV[1] then
	redis.call('DEL', ARGV[4] .. prev)
end
local ttl = tonumber(ARGV[3])
if ttl > 0 then
	redis.call('SET', KEYS[1], ARGV[1], 'PX', ttl)
	redis.call('SET', KEYS[2], ARGV[2], 'PX', ttl)
else
	redis.call('SET', KEYS[1], ARGV[1])
	redis.call('SET', KEYS[2], ARGV[2])
end
return 1
`)

// CachedSession represents a session stored in Redis.
type CachedSession struct {
	UserID    string     `json:"user_id"`
	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// UpsertSession stores the session as the user's only session and drops the
// previous token in the same script execution.
func (c *Cache) UpsertSession(ctx context.Context, session *model.Session) error {
	cached := CachedSession{
		UserID:    session.UserID,
		CreatedAt: session.CreatedAt,
	}

	var ttl time.Duration
	if !session.ExpiresAt.IsZero() {
		expiresAt := session.ExpiresAt
		cached.ExpiresAt = &expiresAt
		ttl = expiresAt.Sub(c.now())
		if ttl <= 0 {
			// Already expired: keep the supersede semantics, let Redis drop it at once.
			ttl = time.Millisecond
		}
	}

	data, err := json.Marshal(cached)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	keys := []string{c.sessionUserKey(session.UserID), c.sessionTokenKey(session.TokenHash)}
	args := []any{session.TokenHash, data, ttl.Milliseconds(), c.prefix + sessionTokenPrefix}

	if err := upsertSessionScript.Run(ctx, c.client, keys, args...).Err(); err != nil {
		return fmt.Errorf("failed to upsert session: %w", err)
	}
	return nil
}

// GetSessionByTokenHash retrieves the session stored under a token hash.
func (c *Cache) GetSessionByTokenHash(ctx context.Context, tokenHash string) (*model.Session, error) {
	data, err := c.client.Get(ctx, c.sessionTokenKey(tokenHash)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, repository.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var cached CachedSession
	if err := json.Unmarshal(data, &cached); err != nil {
		// Corrupted entry - treat as absent
		return nil, repository.ErrSessionNotFound
	}

	session := &model.Session{
		UserID:    cached.UserID,
		TokenHash: tokenHash,
		CreatedAt: cached.CreatedAt,
	}
	if cached.ExpiresAt != nil {
		session.ExpiresAt = *cached.ExpiresAt
	}
	return session, nil
}

func (c *Cache) sessionUserKey(userID string) string {
	return c.prefix + sessionUserPrefix + userID
}

func (c *Cache) sessionTokenKey(tokenHash string) string {
	return c.prefix + sessionTokenPrefix + tokenHash
}
