// Package storage opens the database backend named by a DATABASE_URL.
package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/mywallet/mywallet/internal/repository"
	"github.com/mywallet/mywallet/internal/repository/sqlite"
	"github.com/mywallet/mywallet/internal/service"
	"github.com/mywallet/mywallet/internal/sweeper"
)

// Database drivers selected from DATABASE_URL.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Store is what every database backend provides.
type Store interface {
	service.UserStore
	service.SessionStore
	service.EntryStore
	sweeper.Store
	Ping(ctx context.Context) error
	Close() error
}

var (
	_ Store = (*repository.Repository)(nil)
	_ Store = (*sqlite.Store)(nil)
)

// Driver reports which backend databaseURL points at:
// sqlite://path and file:path select SQLite, anything else Postgres.
func Driver(databaseURL string) string {
	if strings.HasPrefix(databaseURL, "sqlite://") || strings.HasPrefix(databaseURL, "file:") {
		return DriverSQLite
	}
	return DriverPostgres
}

// SQLitePath returns the path handed to the sqlite driver.
func SQLitePath(databaseURL string) string {
	return strings.TrimPrefix(databaseURL, "sqlite://")
}

// Open connects to the database and applies migrations.
func Open(ctx context.Context, databaseURL string) (Store, error) {
	if Driver(databaseURL) == DriverSQLite {
		store, err := sqlite.Open(ctx, SQLitePath(databaseURL))
		if err != nil {
			return nil, err
		}
		return store, nil
	}

	repo, err := repository.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}
	if err := repo.Migrate(ctx); err != nil {
		_ = repo.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return repo, nil
}
