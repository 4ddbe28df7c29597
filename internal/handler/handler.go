// Package handler provides HTTP request handlers.
package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/mangadock/mangadock/internal/handler/dto"
	"github.com/mangadock/mangadock/internal/model"
	"github.com/mangadock/mangadock/internal/repository"
	"github.com/mangadock/mangadock/internal/service"
)

// Version is reported by the index endpoint.
const Version = "1.0.0"

// Handler serves the endpoints that need no dependencies.
type Handler struct{}

// New creates a new Handler instance.
func New() *Handler {
	return &Handler{}
}

// Index identifies the service.
// GET /
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"service": "mangadock",
		"version": Version,
	})
}

// NotFound handles 404 responses.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "NOT_FOUND", "resource not found")
}

// MethodNotAllowed handles 405 responses.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
}

// decodeJSON reads a JSON request body into dst. An empty body leaves dst
// zero so that field validation reports what is missing.
func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(dst)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// writeBadBody answers a request whose body could not be decoded.
func writeBadBody(w http.ResponseWriter, err error) {
	var maxErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxErr):
		writeError(w, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "Request body too large")
	case errors.Is(err, model.ErrInvalidChapter):
		writeError(w, http.StatusBadRequest, "INVALID_CHAPTER", "chapterNumber must be a number or string")
	default:
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
	}
}

// handleServiceError maps service errors to HTTP responses.
func handleServiceError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var missing *service.MissingFieldError
	switch {
	case errors.As(err, &missing):
		writeError(w, http.StatusBadRequest, "MISSING_FIELD", missing.Error())
	case errors.Is(err, service.ErrInvalidUsername):
		writeError(w, http.StatusBadRequest, "INVALID_USERNAME", "username may only contain letters, digits, '.', '_' and '-'")
	case errors.Is(err, model.ErrInvalidChapter):
		writeError(w, http.StatusBadRequest, "INVALID_CHAPTER", "chapterNumber must be a number or string")
	case errors.Is(err, service.ErrUserExists):
		writeError(w, http.StatusConflict, "USER_EXISTS", "User already exists")
	case errors.Is(err, repository.ErrStoreIO):
		logger.Error("store_error", "error", err)
		writeError(w, http.StatusInternalServerError, "STORE_ERROR", "Could not persist reading state")
	default:
		logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, dto.ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
