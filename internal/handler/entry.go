package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mywallet/mywallet/internal/auth"
	"github.com/mywallet/mywallet/internal/handler/dto"
	"github.com/mywallet/mywallet/internal/service"
)

// EntryHandler handles the authenticated ledger endpoints.
// Every route must sit behind middleware.Auth; the owner is always the
// user resolved from the session, never a value from the request.
type EntryHandler struct {
	svc    *service.LedgerService
	logger *slog.Logger
}

// NewEntryHandler creates a new EntryHandler.
func NewEntryHandler(svc *service.LedgerService, logger *slog.Logger) *EntryHandler {
	return &EntryHandler{
		svc:    svc,
		logger: logger,
	}
}

// Create handles POST /data.
func (h *EntryHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	var req dto.CreateEntryRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	entry, err := h.svc.CreateEntry(r.Context(), userID, service.CreateEntryInput{
		Description: req.Description.Value,
		Value:       string(req.Value),
		Type:        req.Type.Value,
		Mistyped:    req.Mistyped(),
	})
	if err != nil {
		handleServiceError(h.logger, w, r, err)
		return
	}

	h.logger.Info("entry_created", "entry_id", entry.ID, "user_id", userID)

	writeJSON(w, http.StatusCreated, dto.ToEntryResponse(entry))
}

// List handles GET /data.
func (h *EntryHandler) List(w http.ResponseWriter, r *http.Request) {
	entries, err := h.svc.ListEntries(r.Context(), auth.UserIDFromContext(r.Context()))
	if err != nil {
		handleServiceError(h.logger, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToEntryListResponse(entries))
}

// Summary handles GET /data/summary.
func (h *EntryHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.svc.Summary(r.Context(), auth.UserIDFromContext(r.Context()))
	if err != nil {
		handleServiceError(h.logger, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToSummaryResponse(summary))
}

// Delete handles DELETE /data/{id}.
func (h *EntryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	if err := h.svc.DeleteEntry(r.Context(), userID, id); err != nil {
		handleServiceError(h.logger, w, r, err)
		return
	}

	h.logger.Info("entry_deleted", "entry_id", id, "user_id", userID)

	w.WriteHeader(http.StatusOK)
}
