package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/mywallet/mywallet/internal/model"
)

// CreateEntry inserts a new ledger entry.
func (r *Repository) CreateEntry(ctx context.Context, entry *model.Entry) error {
	query := `
		INSERT INTO entries (id, user_id, day, description, value, type, created_at)
		VALUES ($1, $2, $3, $4, $5::numeric, $6, $7)
	`

	_, err := r.pool.Exec(ctx, query,
		entry.ID,
		entry.UserID,
		entry.Day,
		entry.Description,
		entry.Value.String(),
		entry.Type,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create entry: %w", err)
	}

	return nil
}

// ListEntriesByUser retrieves the entries owned by userID, newest first.
func (r *Repository) ListEntriesByUser(ctx context.Context, userID string) ([]*model.Entry, error) {
	query := `
		SELECT id, user_id, day, description, value::text, type, created_at
		FROM entries
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	defer rows.Close()

	entries := make([]*model.Entry, 0)
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating entries: %w", err)
	}

	return entries, nil
}

// DeleteEntry removes an entry only if it belongs to userID.
// Returns ErrEntryNotFound when no such entry is owned by the user.
func (r *Repository) DeleteEntry(ctx context.Context, id, userID string) error {
	result, err := r.pool.Exec(ctx,
		`DELETE FROM entries WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete entry: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrEntryNotFound
	}

	return nil
}

// scanEntry scans a row into an Entry model. The value column is read as text.
func scanEntry(row pgx.Row) (*model.Entry, error) {
	var entry model.Entry
	var value string

	err := row.Scan(
		&entry.ID,
		&entry.UserID,
		&entry.Day,
		&entry.Description,
		&value,
		&entry.Type,
		&entry.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	entry.Value, err = decimal.NewFromString(value)
	if err != nil {
		return nil, fmt.Errorf("parse value %q: %w", value, err)
	}

	return &entry, nil
}
