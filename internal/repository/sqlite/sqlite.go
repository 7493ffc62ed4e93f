// Package sqlite implements the credential, session and ledger stores on an
// embedded SQLite database. It backs local development, the adduser CLI and tests.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mywallet/mywallet/internal/model"
	"github.com/mywallet/mywallet/internal/repository"

	sqlitedriver "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// timeLayout is fixed-width so text ordering matches chronological ordering.
const timeLayout = "2006-01-02 15:04:05.000000000"

// Store wraps a sql.DB connection.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and runs migrations.
// Use ":memory:" for a throwaway database.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	// SQLite allows one writer; a single connection also keeps ":memory:" alive.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	migrations := []string{
		`PRAGMA foreign_keys = ON`,
		`CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			name          TEXT NOT NULL,
			email         TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			created_at    TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS sessions (
			user_id    TEXT PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
			token_hash TEXT NOT NULL UNIQUE,
			created_at TEXT NOT NULL,
			expires_at TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS entries (
			id          TEXT PRIMARY KEY,
			user_id     TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			day         TEXT NOT NULL,
			description TEXT NOT NULL,
			value       TEXT NOT NULL,
			type        TEXT NOT NULL,
			created_at  TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_entries_user_created ON entries (user_id, created_at DESC)`,
	}

	for _, m := range migrations {
		if _, err := s.db.ExecContext(ctx, m); err != nil {
			return fmt.Errorf("failed to migrate sqlite database: %w", err)
		}
	}
	return nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// CreateUser inserts a new user.
func (s *Store) CreateUser(ctx context.Context, user *model.User) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, name, email, password_hash, created_at) VALUES (?, ?, ?, ?, ?)`,
		user.ID, user.Name, user.Email, user.PasswordHash, formatTime(user.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrEmailExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetUserByEmail retrieves a user by their email address.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, email, password_hash, created_at FROM users WHERE email = ?`,
		email,
	)

	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return user, nil
}

// ListUsers retrieves all users in registration order.
func (s *Store) ListUsers(ctx context.Context) ([]*model.User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, email, password_hash, created_at FROM users ORDER BY created_at, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := make([]*model.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// UpsertSession stores the session as the user's only session.
func (s *Store) UpsertSession(ctx context.Context, session *model.Session) error {
	var expiresAt any
	if !session.ExpiresAt.IsZero() {
		expiresAt = formatTime(session.ExpiresAt)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (user_id, token_hash, created_at, expires_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE
		SET token_hash = excluded.token_hash,
		    created_at = excluded.created_at,
		    expires_at = excluded.expires_at`,
		session.UserID, session.TokenHash, formatTime(session.CreatedAt), expiresAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert session: %w", err)
	}
	return nil
}

// GetSessionByTokenHash retrieves the session with an exactly matching token hash.
func (s *Store) GetSessionByTokenHash(ctx context.Context, tokenHash string) (*model.Session, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT user_id, token_hash, created_at, expires_at FROM sessions WHERE token_hash = ?`,
		tokenHash,
	)

	var session model.Session
	var createdAt string
	var expiresAt sql.NullString
	if err := row.Scan(&session.UserID, &session.TokenHash, &createdAt, &expiresAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var err error
	if session.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if expiresAt.Valid {
		if session.ExpiresAt, err = parseTime(expiresAt.String); err != nil {
			return nil, err
		}
	}
	return &session, nil
}

// DeleteExpiredSessions removes sessions whose expiry has passed.
func (s *Store) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE expires_at IS NOT NULL AND expires_at <= ?`,
		formatTime(now),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	return result.RowsAffected()
}

// CreateEntry inserts a new ledger entry.
func (s *Store) CreateEntry(ctx context.Context, entry *model.Entry) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO entries (id, user_id, day, description, value, type, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.UserID, entry.Day, entry.Description, entry.Value.String(), entry.Type, formatTime(entry.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create entry: %w", err)
	}
	return nil
}

// ListEntriesByUser retrieves the entries owned by userID, newest first.
func (s *Store) ListEntriesByUser(ctx context.Context, userID string) ([]*model.Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, day, description, value, type, created_at
		FROM entries
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	defer rows.Close()

	entries := make([]*model.Entry, 0)
	for rows.Next() {
		var e model.Entry
		var value, createdAt string
		if err := rows.Scan(&e.ID, &e.UserID, &e.Day, &e.Description, &value, &e.Type, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		if e.Value, err = decimal.NewFromString(value); err != nil {
			return nil, fmt.Errorf("parse value %q: %w", value, err)
		}
		if e.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

// DeleteEntry removes an entry only if it belongs to userID.
func (s *Store) DeleteEntry(ctx context.Context, id, userID string) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM entries WHERE id = ? AND user_id = ?`,
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete entry: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete entry: %w", err)
	}
	if n == 0 {
		return repository.ErrEntryNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(row scanner) (*model.User, error) {
	var u model.User
	var createdAt string
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &createdAt); err != nil {
		return nil, err
	}
	var err error
	if u.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &u, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.ParseInLocation(timeLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse time %q: %w", s, err)
	}
	return t, nil
}

// isUniqueViolation reports a UNIQUE constraint failure. Primary key
// collisions carry a different extended code and are not matched.
func isUniqueViolation(err error) bool {
	var sqliteErr *sqlitedriver.Error
	return errors.As(err, &sqliteErr) && sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
}
