package handler

import (
	"log/slog"
	"net/http"

	"github.com/mangadock/mangadock/internal/handler/dto"
	"github.com/mangadock/mangadock/internal/service"
)

// FinishedHandler handles HTTP requests for finished chapters.
type FinishedHandler struct {
	svc    *service.FinishedService
	logger *slog.Logger
}

// NewFinishedHandler creates a new FinishedHandler.
func NewFinishedHandler(svc *service.FinishedService, logger *slog.Logger) *FinishedHandler {
	return &FinishedHandler{
		svc:    svc,
		logger: logger,
	}
}

// Mark handles POST /add_finished.
func (h *FinishedHandler) Mark(w http.ResponseWriter, r *http.Request) {
	var req dto.FinishedRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadBody(w, err)
		return
	}

	chapters, err := h.svc.Mark(r.Context(), req.Username, req.MangaName, req.ChapterNumber)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("chapter_finished",
		"username", req.Username,
		"chapter", req.ChapterNumber.String(),
	)
	writeJSON(w, http.StatusOK, dto.FinishedResponse{Success: true, FinishedChapters: chapters})
}

// Get handles POST /get_finished.
func (h *FinishedHandler) Get(w http.ResponseWriter, r *http.Request) {
	var req dto.FavoriteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadBody(w, err)
		return
	}

	chapters, err := h.svc.Get(r.Context(), req.Username, req.MangaName)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.FinishedResponse{
		Success:          true,
		MangaName:        req.MangaName,
		FinishedChapters: chapters,
	})
}
