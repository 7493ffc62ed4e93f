package handler

import (
	"log/slog"
	"net/http"

	"github.com/mywallet/mywallet/internal/handler/dto"
	"github.com/mywallet/mywallet/internal/service"
)

// UserHandler handles registration, user listing and sign-in.
type UserHandler struct {
	svc    *service.UserService
	logger *slog.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(svc *service.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		svc:    svc,
		logger: logger,
	}
}

// Register handles POST /users.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.svc.Register(r.Context(), service.RegisterInput{
		Name:            req.Name.Value,
		Email:           req.Email.Value,
		Password:        req.Password.Value,
		PasswordConfirm: req.PasswordConfirm.Value,
		Mistyped:        req.Mistyped(),
	})
	if err != nil {
		handleServiceError(h.logger, w, r, err)
		return
	}

	h.logger.Info("user_registered", "user_id", user.ID)

	writeJSON(w, http.StatusCreated, dto.ToUserResponse(user))
}

// List handles GET /users.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.List(r.Context())
	if err != nil {
		handleServiceError(h.logger, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToUserListResponse(users))
}

// SignIn handles POST /sign-in.
func (h *UserHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req dto.SignInRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.svc.SignIn(r.Context(), service.SignInInput{
		Email:    req.Email.Value,
		Password: req.PasswordValue(),
		Mistyped: req.Mistyped(),
	})
	if err != nil {
		handleServiceError(h.logger, w, r, err)
		return
	}

	h.logger.Info("user_signed_in", "user_id", result.User.ID)

	writeJSON(w, http.StatusOK, dto.SignInResponse{
		Name:  result.User.Name,
		Token: result.Token,
	})
}
