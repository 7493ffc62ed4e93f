package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/mywallet/mywallet/internal/auth"
	"github.com/mywallet/mywallet/internal/metrics"
	"github.com/mywallet/mywallet/internal/service"
)

// SessionResolver maps a bearer token to the user it was issued to.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (string, error)
}

// AuthConfig holds configuration for the auth middleware.
type AuthConfig struct {
	Logger   *slog.Logger
	Sessions SessionResolver
	// Metrics counts requests that carry no bearer token. Tokens that fail
	// to resolve are counted by the session manager. Nil disables counting.
	Metrics metrics.Recorder
}

// Auth returns a middleware that authenticates ledger requests.
// It extracts the session token from the Authorization header,
// resolves it, and injects the auth context into the request.
func Auth(cfg AuthConfig) func(http.Handler) http.Handler {
	if cfg.Metrics == nil {
		cfg.Metrics = &metrics.NoopRecorder{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractBearerToken(r)
			if token == "" {
				logAuthFailure(cfg.Logger, r, "missing_token")
				cfg.Metrics.IncSessionRejected()
				writeAuthError(w)
				return
			}

			userID, err := cfg.Sessions.Resolve(r.Context(), token)
			if err != nil {
				if errors.Is(err, service.ErrSessionNotFound) {
					logAuthFailure(cfg.Logger, r, "invalid_token")
					writeAuthError(w)
					return
				}
				cfg.Logger.Error("session lookup failed",
					slog.String("error", err.Error()),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeInternalError(w)
				return
			}

			cfg.Logger.Debug("authentication successful",
				slog.String("user_id", userID),
				slog.String("endpoint", r.Method+" "+r.URL.Path),
				slog.String("request_id", GetRequestID(r.Context())),
			)

			ctx := auth.WithUserID(r.Context(), userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractBearerToken returns the token of an "Authorization: Bearer <token>" header.
// The scheme is matched case-insensitively.
func extractBearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func logAuthFailure(logger *slog.Logger, r *http.Request, reason string) {
	logger.Warn("authentication failed",
		slog.String("reason", reason),
		slog.String("ip", r.RemoteAddr),
		slog.String("endpoint", r.Method+" "+r.URL.Path),
		slog.String("request_id", GetRequestID(r.Context())),
	)
}

// writeAuthError writes a 401 Unauthorized response.
// Uses the same message for all auth failures to prevent enumeration.
func writeAuthError(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", `Bearer realm="mywallet"`)
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":{"code":"UNAUTHORIZED","message":"Invalid or missing session token"}}`))
}

func writeInternalError(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	_, _ = w.Write([]byte(`{"error":{"code":"INTERNAL_ERROR","message":"Internal server error"}}`))
}
