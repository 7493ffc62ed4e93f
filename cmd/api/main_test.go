package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mywallet/mywallet/internal/auth"
	"github.com/mywallet/mywallet/internal/config"
	"github.com/mywallet/mywallet/internal/handler"
	"github.com/mywallet/mywallet/internal/metrics"
	"github.com/mywallet/mywallet/internal/service"
	"github.com/mywallet/mywallet/internal/storage"
)

func newTestRouter(t *testing.T, cfg *config.Config) http.Handler {
	t.Helper()

	db, err := storage.Open(context.Background(), cfg.DatabaseURL)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	recorder := metrics.NewInMemory()
	sessions := service.NewSessionManager(db, time.Hour, recorder)

	return setupRouter(routes{
		root:     handler.New(),
		health:   handler.NewHealthHandler(db, nil, logger),
		metrics:  handler.NewMetricsHandler(recorder),
		users:    handler.NewUserHandler(service.NewUserService(db, sessions, auth.BcryptHasher{Cost: bcrypt.MinCost}, recorder), logger),
		entries:  handler.NewEntryHandler(service.NewLedgerService(db, recorder), logger),
		sessions: sessions,
		recorder: recorder,
	}, cfg, logger)
}

func testConfig() *config.Config {
	return &config.Config{
		AppEnv:             "test",
		DatabaseURL:        "sqlite://:memory:",
		CORSAllowedOrigins: "https://wallet.example.com",
		MaxRequestBodySize: 1024,
	}
}

func TestSetupRouter_Routes(t *testing.T) {
	r := newTestRouter(t, testConfig())

	tests := []struct {
		method string
		path   string
		body   string
		want   int
	}{
		{http.MethodGet, "/", "", http.StatusOK},
		{http.MethodGet, "/healthz", "", http.StatusOK},
		{http.MethodGet, "/readyz", "", http.StatusOK},
		{http.MethodGet, "/metrics", "", http.StatusOK},
		{http.MethodGet, "/users", "", http.StatusOK},
		{http.MethodPost, "/users", `{}`, http.StatusUnprocessableEntity},
		{http.MethodPost, "/sign-in", `{}`, http.StatusUnprocessableEntity},
		{http.MethodGet, "/data", "", http.StatusUnauthorized},
		{http.MethodPost, "/data", `{}`, http.StatusUnauthorized},
		{http.MethodGet, "/data/summary", "", http.StatusUnauthorized},
		{http.MethodDelete, "/data/abc", "", http.StatusUnauthorized},
		{http.MethodGet, "/nope", "", http.StatusNotFound},
		{http.MethodPut, "/users", `{}`, http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tt.want, rec.Body.String())
			}
			if rec.Header().Get("X-Request-ID") == "" {
				t.Error("missing X-Request-ID")
			}
			if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
				t.Error("missing security headers")
			}
		})
	}
}

func TestSetupRouter_BodyLimit(t *testing.T) {
	r := newTestRouter(t, testConfig())

	body := `{"name":"` + strings.Repeat("a", 2048) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want 413", rec.Code)
	}
}

func TestSetupRouter_CORS(t *testing.T) {
	r := newTestRouter(t, testConfig())

	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	req.Header.Set("Origin", "https://wallet.example.com")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://wallet.example.com" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"error":   slog.LevelError,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		if got := parseLogLevel(in); got != want {
			t.Errorf("parseLogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestRedactURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"postgres://wallet:s3cret@db:5432/wallet", "postgres://wallet@db:5432/wallet"},
		{"redis://:s3cret@cache:6379/0", "redis://redacted@cache:6379/0"},
		{"sqlite://wallet.db", "sqlite://wallet.db"},
	}
	for _, tt := range tests {
		if got := redactURL(tt.in); got != tt.want {
			t.Errorf("redactURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSanitizeError(t *testing.T) {
	dsn := "postgres://wallet:s3cret@db:5432/wallet"
	err := &testError{msg: "cannot connect to " + dsn + " (password=s3cret)"}

	got := sanitizeError(err, dsn)
	if strings.Contains(got, "s3cret") {
		t.Errorf("secret leaked: %s", got)
	}
}

type testError struct{ msg string }

func (e *testError) Error() string { return e.msg }
