package handler

import (
	"log/slog"
	"net/http"

	"github.com/mangadock/mangadock/internal/handler/dto"
	"github.com/mangadock/mangadock/internal/service"
)

// UserHandler handles HTTP requests for user records.
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

// Create handles POST /create_user.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.UserRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadBody(w, err)
		return
	}

	if err := h.svc.Create(r.Context(), req.Username); err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("user_created", "username", req.Username)
	writeJSON(w, http.StatusOK, dto.SuccessResponse{Success: true})
}

// List handles POST /list_users.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.List(r.Context())
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.UsersResponse{Users: users})
}
