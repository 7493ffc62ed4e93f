//go:build integration

package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mywallet/mywallet/internal/testutil"
)

func newTestRepo(t *testing.T) (context.Context, *Repository) {
	t.Helper()

	dbURL := testutil.RequireEnv(t, "DATABASE_URL")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)

	repo, err := New(ctx, dbURL)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })

	unlock, err := testutil.AcquireDBLock(ctx, repo.Pool())
	if err != nil {
		t.Fatalf("lock: %v", err)
	}
	t.Cleanup(func() { _ = unlock() })

	if err := repo.Reset(ctx); err != nil {
		t.Fatalf("reset schema: %v", err)
	}

	return ctx, repo
}

func TestIntegrationRepository_CreateUser_DuplicateEmail(t *testing.T) {
	ctx, repo := newTestRepo(t)

	user := testutil.NewTestUser(t, "alice")
	if err := repo.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	dup := testutil.NewTestUser(t, "alice2")
	dup.Email = user.Email
	if err := repo.CreateUser(ctx, dup); !errors.Is(err, ErrEmailExists) {
		t.Fatalf("expected ErrEmailExists, got %v", err)
	}

	got, err := repo.GetUserByEmail(ctx, user.Email)
	if err != nil {
		t.Fatalf("GetUserByEmail failed: %v", err)
	}
	if got.ID != user.ID {
		t.Errorf("ID = %q, want %q", got.ID, user.ID)
	}

	if _, err := repo.GetUserByEmail(ctx, "nobody@example.com"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}

func TestIntegrationRepository_UpsertSession_Supersedes(t *testing.T) {
	ctx, repo := newTestRepo(t)

	user := testutil.NewTestUser(t, "bob")
	if err := repo.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	if err := repo.UpsertSession(ctx, testutil.NewTestSession(t, user.ID, "hash-1", time.Hour)); err != nil {
		t.Fatalf("UpsertSession failed: %v", err)
	}
	if err := repo.UpsertSession(ctx, testutil.NewTestSession(t, user.ID, "hash-2", 0)); err != nil {
		t.Fatalf("UpsertSession failed: %v", err)
	}

	if _, err := repo.GetSessionByTokenHash(ctx, "hash-1"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("first token should be gone, got %v", err)
	}

	s, err := repo.GetSessionByTokenHash(ctx, "hash-2")
	if err != nil {
		t.Fatalf("GetSessionByTokenHash failed: %v", err)
	}
	if s.UserID != user.ID {
		t.Errorf("UserID = %q, want %q", s.UserID, user.ID)
	}
	if !s.ExpiresAt.IsZero() {
		t.Errorf("expected no expiry, got %v", s.ExpiresAt)
	}
}

func TestIntegrationRepository_Entries_ScopedByOwner(t *testing.T) {
	ctx, repo := newTestRepo(t)

	alice := testutil.NewTestUser(t, "alice")
	bob := testutil.NewTestUser(t, "bob")
	if err := repo.CreateUser(ctx, alice); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if err := repo.CreateUser(ctx, bob); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	aliceEntry := testutil.NewTestEntry(t, alice.ID, "coffee", "4.50", "expense")
	bobEntry := testutil.NewTestEntry(t, bob.ID, "salary", "1000", "income")
	if err := repo.CreateEntry(ctx, aliceEntry); err != nil {
		t.Fatalf("CreateEntry failed: %v", err)
	}
	if err := repo.CreateEntry(ctx, bobEntry); err != nil {
		t.Fatalf("CreateEntry failed: %v", err)
	}

	entries, err := repo.ListEntriesByUser(ctx, alice.ID)
	if err != nil {
		t.Fatalf("ListEntriesByUser failed: %v", err)
	}
	if len(entries) != 1 || entries[0].ID != aliceEntry.ID {
		t.Fatalf("expected only alice's entry, got %+v", entries)
	}
	if !entries[0].Value.Equal(aliceEntry.Value) {
		t.Errorf("Value = %s, want %s", entries[0].Value, aliceEntry.Value)
	}

	if err := repo.DeleteEntry(ctx, bobEntry.ID, alice.ID); !errors.Is(err, ErrEntryNotFound) {
		t.Errorf("deleting a foreign entry should fail with ErrEntryNotFound, got %v", err)
	}
	if err := repo.DeleteEntry(ctx, bobEntry.ID, bob.ID); err != nil {
		t.Errorf("owner delete failed: %v", err)
	}
}
