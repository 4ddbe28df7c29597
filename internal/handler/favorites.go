package handler

import (
	"log/slog"
	"net/http"

	"github.com/mangadock/mangadock/internal/handler/dto"
	"github.com/mangadock/mangadock/internal/service"
)

// FavoritesHandler handles HTTP requests for favorites.
type FavoritesHandler struct {
	svc    *service.FavoritesService
	logger *slog.Logger
}

// NewFavoritesHandler creates a new FavoritesHandler.
func NewFavoritesHandler(svc *service.FavoritesService, logger *slog.Logger) *FavoritesHandler {
	return &FavoritesHandler{
		svc:    svc,
		logger: logger,
	}
}

// Add handles POST /add_fav.
func (h *FavoritesHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req dto.FavoriteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadBody(w, err)
		return
	}

	favorites, err := h.svc.Add(r.Context(), req.Username, req.MangaName)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("favorite_added", "username", req.Username, "favorites", len(favorites))
	writeJSON(w, http.StatusOK, dto.FavoritesResponse{Success: true, Favorites: favorites})
}

// Remove handles POST /remove_fav.
func (h *FavoritesHandler) Remove(w http.ResponseWriter, r *http.Request) {
	var req dto.FavoriteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadBody(w, err)
		return
	}

	favorites, err := h.svc.Remove(r.Context(), req.Username, req.MangaName)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("favorite_removed", "username", req.Username, "favorites", len(favorites))
	writeJSON(w, http.StatusOK, dto.FavoritesResponse{Success: true, Favorites: favorites})
}

// List handles POST /get_favorites.
func (h *FavoritesHandler) List(w http.ResponseWriter, r *http.Request) {
	var req dto.UserRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadBody(w, err)
		return
	}

	favorites, err := h.svc.List(r.Context(), req.Username)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.FavoritesResponse{Success: true, Favorites: favorites})
}
