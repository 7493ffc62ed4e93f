package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Store errors shared by every backend (PostgreSQL, SQLite, Redis).
var (
	ErrUserNotFound    = errors.New("user not found")
	ErrEmailExists     = errors.New("email already exists")
	ErrSessionNotFound = errors.New("session not found")
	ErrEntryNotFound   = errors.New("entry not found")
)

// uniqueViolation is the PostgreSQL SQLSTATE for unique_violation.
const uniqueViolation = "23505"

// isUniqueViolation checks if the error is a PostgreSQL unique constraint violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
