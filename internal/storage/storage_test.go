package storage

import (
	"context"
	"testing"
)

func TestDriver(t *testing.T) {
	tests := []struct {
		url    string
		driver string
		path   string
	}{
		{"postgres://u:p@localhost:5432/db", DriverPostgres, ""},
		{"postgresql://u:p@localhost/db", DriverPostgres, ""},
		{"sqlite://wallet.db", DriverSQLite, "wallet.db"},
		{"sqlite://:memory:", DriverSQLite, ":memory:"},
		{"file:wallet.db?_pragma=busy_timeout(5000)", DriverSQLite, "file:wallet.db?_pragma=busy_timeout(5000)"},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			if got := Driver(tt.url); got != tt.driver {
				t.Errorf("Driver() = %s, want %s", got, tt.driver)
			}
			if tt.driver == DriverSQLite {
				if got := SQLitePath(tt.url); got != tt.path {
					t.Errorf("SQLitePath() = %s, want %s", got, tt.path)
				}
			}
		})
	}
}

func TestOpen_SQLite(t *testing.T) {
	ctx := context.Background()

	store, err := Open(ctx, "sqlite://:memory:")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer store.Close()

	if err := store.Ping(ctx); err != nil {
		t.Errorf("Ping() error = %v", err)
	}

	users, err := store.ListUsers(ctx)
	if err != nil {
		t.Fatalf("ListUsers() error = %v", err)
	}
	if len(users) != 0 {
		t.Errorf("expected empty store, got %d users", len(users))
	}
}
