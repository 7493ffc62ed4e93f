// Package handler provides HTTP request handlers.
package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/mywallet/mywallet/internal/handler/dto"
	"github.com/mywallet/mywallet/internal/middleware"
	"github.com/mywallet/mywallet/internal/service"
)

// Version is reported by the root endpoint.
const Version = "1.0.0"

// Handler serves the root and fallback endpoints.
type Handler struct{}

// New creates a new Handler instance.
func New() *Handler {
	return &Handler{}
}

// Hello identifies the service.
// GET /
func (h *Handler) Hello(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"service": "mywallet",
		"version": Version,
	})
}

// NotFound handles 404 responses.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "NOT_FOUND", "Resource not found")
}

// MethodNotAllowed handles 405 responses.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed")
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, dto.ErrorResponse{Error: dto.ErrorBody{Code: code, Message: message}})
}

// decodeJSON reads the request body into v and writes the error response
// itself when the body is unusable. An empty body decodes to the zero value
// so that field validation can report every missing field.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}

	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		writeError(w, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "Request body too large")
		return false
	}

	writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
	return false
}

// handleServiceError maps service errors to HTTP responses.
func handleServiceError(logger *slog.Logger, w http.ResponseWriter, r *http.Request, err error) {
	var verr *service.ValidationError

	switch {
	// Checked before ValidationError, which wraps it
	case errors.Is(err, service.ErrPasswordMismatch):
		writeError(w, http.StatusUnauthorized, "PASSWORD_MISMATCH", "Password confirmation does not match")
	case errors.As(err, &verr):
		writeJSON(w, http.StatusUnprocessableEntity, dto.ErrorResponse{Error: dto.ErrorBody{
			Code:    "VALIDATION_FAILED",
			Message: "Request validation failed",
			Details: verr.Messages(),
		}})
	case errors.Is(err, service.ErrEmailExists):
		writeError(w, http.StatusConflict, "EMAIL_EXISTS", "Email already registered")
	case errors.Is(err, service.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password")
	case errors.Is(err, service.ErrUnauthorized), errors.Is(err, service.ErrSessionNotFound):
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or missing session token")
	case errors.Is(err, service.ErrEntryNotFound):
		writeError(w, http.StatusNotFound, "ENTRY_NOT_FOUND", "Entry not found")
	default:
		logger.Error("internal_error",
			"error", err,
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", middleware.GetRequestID(r.Context()),
		)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}
