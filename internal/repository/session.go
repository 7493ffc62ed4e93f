package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/mywallet/mywallet/internal/model"
)

// UpsertSession stores the session as the user's only session.
// Any previous token for the same user stops resolving once this commits.
func (r *Repository) UpsertSession(ctx context.Context, session *model.Session) error {
	query := `
		INSERT INTO sessions (user_id, token_hash, created_at, expires_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE
		SET token_hash = EXCLUDED.token_hash,
		    created_at = EXCLUDED.created_at,
		    expires_at = EXCLUDED.expires_at
	`

	_, err := r.pool.Exec(ctx, query,
		session.UserID,
		session.TokenHash,
		session.CreatedAt,
		nullableTime(session.ExpiresAt),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert session: %w", err)
	}

	return nil
}

// GetSessionByTokenHash retrieves the session with an exactly matching token hash.
// Expiry is left to the caller.
func (r *Repository) GetSessionByTokenHash(ctx context.Context, tokenHash string) (*model.Session, error) {
	query := `
		SELECT user_id, token_hash, created_at, expires_at
		FROM sessions
		WHERE token_hash = $1
	`

	var session model.Session
	var expiresAt *time.Time

	err := r.pool.QueryRow(ctx, query, tokenHash).Scan(
		&session.UserID,
		&session.TokenHash,
		&session.CreatedAt,
		&expiresAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	if expiresAt != nil {
		session.ExpiresAt = *expiresAt
	}

	return &session, nil
}

// DeleteExpiredSessions removes sessions whose expiry has passed.
func (r *Repository) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.pool.Exec(ctx,
		`DELETE FROM sessions WHERE expires_at IS NOT NULL AND expires_at <= $1`,
		now,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	return result.RowsAffected(), nil
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
