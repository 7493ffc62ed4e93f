package main

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mywallet/mywallet/internal/auth"
	"github.com/mywallet/mywallet/internal/storage"
)

func dbURL(t *testing.T) string {
	return "sqlite://" + filepath.Join(t.TempDir(), "wallet.db")
}

func TestRun_Success(t *testing.T) {
	url := dbURL(t)
	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)

	args := []string{"-name", "Ana", "-email", "Ana@Example.com", "-password", "secret", "-hasher", "bcrypt", "-bcrypt-cost", "4", "-database-url", url}
	require.NoError(t, run(args, new(bytes.Buffer), stdout, stderr))
	assert.Contains(t, stdout.String(), "User Ana <ana@example.com> created")

	db, err := storage.Open(context.Background(), url)
	require.NoError(t, err)
	defer db.Close()

	user, err := db.GetUserByEmail(context.Background(), "ana@example.com")
	require.NoError(t, err)
	ok, err := auth.VerifyPassword("secret", user.PasswordHash)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRun_DuplicateUser(t *testing.T) {
	url := dbURL(t)
	args := []string{"-name", "Ana", "-email", "ana@example.com", "-password", "secret", "-hasher", "bcrypt", "-bcrypt-cost", "4", "-database-url", url}

	require.NoError(t, run(args, new(bytes.Buffer), new(bytes.Buffer), new(bytes.Buffer)), "first run should succeed")

	err := run(args, new(bytes.Buffer), new(bytes.Buffer), new(bytes.Buffer))
	require.Error(t, err, "expected error on duplicate user")
	assert.Contains(t, err.Error(), "already exists")
}

func TestRun_PromptsForPassword(t *testing.T) {
	url := dbURL(t)
	stdout := new(bytes.Buffer)
	stdin := strings.NewReader("hunter22\nhunter22\n")

	args := []string{"-name", "Ana", "-email", "ana@example.com", "-hasher", "bcrypt", "-bcrypt-cost", "4", "-database-url", url}
	require.NoError(t, run(args, stdin, stdout, new(bytes.Buffer)))

	assert.Contains(t, stdout.String(), "Password: ")
	assert.Contains(t, stdout.String(), "Confirm password: ")
}

func TestRun_PromptMismatch(t *testing.T) {
	stdin := strings.NewReader("hunter22\nhunter23\n")

	args := []string{"-name", "Ana", "-email", "ana@example.com", "-hasher", "bcrypt", "-bcrypt-cost", "4", "-database-url", dbURL(t)}
	err := run(args, stdin, new(bytes.Buffer), new(bytes.Buffer))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "passwords do not match")
}

func TestRun_IssuesToken(t *testing.T) {
	stdout := new(bytes.Buffer)

	args := []string{"-name", "Ana", "-email", "ana@example.com", "-password", "secret", "-hasher", "bcrypt", "-bcrypt-cost", "4", "-database-url", dbURL(t), "-token", "-format", "json"}
	require.NoError(t, run(args, new(bytes.Buffer), stdout, new(bytes.Buffer)))

	var out output
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &out))
	assert.NotEmpty(t, out.UserID)
	assert.Equal(t, "ana@example.com", out.Email)
	assert.NotEmpty(t, out.Token)
}

func TestRun_InvalidEmail(t *testing.T) {
	args := []string{"-name", "Ana", "-email", "not-an-email", "-password", "secret", "-database-url", dbURL(t)}
	err := run(args, new(bytes.Buffer), new(bytes.Buffer), new(bytes.Buffer))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid input")
}

func TestRun_MissingFlags(t *testing.T) {
	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)

	err := run([]string{"-password", "secret"}, new(bytes.Buffer), stdout, stderr)
	require.Error(t, err, "expected error for missing flags")
	assert.Contains(t, err.Error(), "missing required flags")

	// Usage should be printed
	assert.Contains(t, stdout.String(), "Usage: adduser")
}

func TestRun_InvalidFormat(t *testing.T) {
	args := []string{"-name", "Ana", "-email", "ana@example.com", "-password", "x", "-format", "xml"}
	err := run(args, new(bytes.Buffer), new(bytes.Buffer), new(bytes.Buffer))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestRun_SessionStoreFlags(t *testing.T) {
	tests := []struct {
		name    string
		extra   []string
		wantErr string
	}{
		{"redis without url", []string{"-session-store", "redis"}, "-redis-url is required"},
		{"unknown store", []string{"-session-store", "memcached"}, "invalid session store"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("REDIS_URL", "")
			args := append([]string{"-name", "Ana", "-email", "ana@example.com", "-password", "x", "-database-url", dbURL(t), "-token"}, tt.extra...)
			err := run(args, new(bytes.Buffer), new(bytes.Buffer), new(bytes.Buffer))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestRun_SessionStoreFromEnvironment(t *testing.T) {
	t.Setenv("SESSION_STORE", "redis")
	t.Setenv("REDIS_URL", "")

	args := []string{"-name", "Ana", "-email", "ana@example.com", "-password", "x", "-database-url", dbURL(t), "-token"}
	err := run(args, new(bytes.Buffer), new(bytes.Buffer), new(bytes.Buffer))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "-redis-url is required")
}

func TestRun_UnreachableRedisCreatesNoUser(t *testing.T) {
	url := dbURL(t)
	args := []string{
		"-name", "Ana", "-email", "ana@example.com", "-password", "secret", "-hasher", "bcrypt", "-bcrypt-cost", "4",
		"-database-url", url, "-token", "-session-store", "redis", "-redis-url", "redis://127.0.0.1:1/0",
	}
	err := run(args, new(bytes.Buffer), new(bytes.Buffer), new(bytes.Buffer))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to connect to Redis")

	db, err := storage.Open(context.Background(), url)
	require.NoError(t, err)
	defer db.Close()

	users, err := db.ListUsers(context.Background())
	require.NoError(t, err)
	assert.Empty(t, users)
}
