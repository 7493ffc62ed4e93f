package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockHealthChecker returns err from every Ping and remembers the deadline it saw.
type mockHealthChecker struct {
	err         error
	deadline    time.Time
	hasDeadline bool
}

func (m *mockHealthChecker) Ping(ctx context.Context) error {
	m.deadline, m.hasDeadline = ctx.Deadline()
	return m.err
}

func decodeHealth(t *testing.T, rec *httptest.ResponseRecorder) HealthResponse {
	t.Helper()
	var resp HealthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestHealthHandler_Healthz(t *testing.T) {
	// Liveness never touches the stores.
	db := &mockHealthChecker{err: errors.New("down")}
	h := NewHealthHandler(db, nil, nil)

	rec := httptest.NewRecorder()
	h.Healthz(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, HealthResponse{Status: "ok"}, decodeHealth(t, rec))
	assert.False(t, db.hasDeadline, "healthz must not ping")
}

func TestHealthHandler_Readyz(t *testing.T) {
	down := errors.New("dial tcp redis://:secret@cache:6379: connection refused")

	tests := []struct {
		name       string
		db         HealthChecker
		sessions   HealthChecker
		wantStatus int
		wantBody   HealthResponse
	}{
		{
			name:       "database sessions healthy",
			db:         &mockHealthChecker{},
			wantStatus: http.StatusOK,
			wantBody:   HealthResponse{Status: "ok", Checks: map[string]string{"database": "ok", "redis": "not configured"}},
		},
		{
			name:       "redis sessions healthy",
			db:         &mockHealthChecker{},
			sessions:   &mockHealthChecker{},
			wantStatus: http.StatusOK,
			wantBody:   HealthResponse{Status: "ok", Checks: map[string]string{"database": "ok", "redis": "ok"}},
		},
		{
			name:       "database down",
			db:         &mockHealthChecker{err: down},
			sessions:   &mockHealthChecker{},
			wantStatus: http.StatusServiceUnavailable,
			wantBody:   HealthResponse{Status: "unhealthy", Checks: map[string]string{"database": "error", "redis": "ok"}},
		},
		{
			name:       "redis down",
			db:         &mockHealthChecker{},
			sessions:   &mockHealthChecker{err: down},
			wantStatus: http.StatusServiceUnavailable,
			wantBody:   HealthResponse{Status: "unhealthy", Checks: map[string]string{"database": "ok", "redis": "error"}},
		},
		{
			name:       "nothing configured",
			wantStatus: http.StatusOK,
			wantBody:   HealthResponse{Status: "ok", Checks: map[string]string{"database": "not configured", "redis": "not configured"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandler(tt.db, tt.sessions, nil)

			rec := httptest.NewRecorder()
			h.Readyz(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.NotContains(t, rec.Body.String(), "secret", "failure causes stay in the logs")
			assert.Equal(t, tt.wantBody, decodeHealth(t, rec))
		})
	}
}

func TestHealthHandler_Readyz_BoundsPing(t *testing.T) {
	db := &mockHealthChecker{}
	h := NewHealthHandler(db, nil, nil)

	start := time.Now()
	h.Readyz(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/readyz", nil))

	require.True(t, db.hasDeadline, "ping context must carry a deadline")
	assert.WithinDuration(t, start.Add(readyTimeout), db.deadline, time.Second)
}
