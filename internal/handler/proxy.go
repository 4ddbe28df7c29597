package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/mangadock/mangadock/internal/handler/dto"
	"github.com/mangadock/mangadock/internal/metrics"
	"github.com/mangadock/mangadock/internal/proxy"
)

// ImageFetcher retrieves a remote image.
type ImageFetcher interface {
	Fetch(ctx context.Context, rawURL string) (*proxy.Image, error)
}

// ProxyHandler relays remote images to clients.
type ProxyHandler struct {
	fetcher ImageFetcher
	metrics metrics.Recorder
	logger  *slog.Logger
}

// NewProxyHandler creates a new ProxyHandler.
func NewProxyHandler(fetcher ImageFetcher, recorder metrics.Recorder, logger *slog.Logger) *ProxyHandler {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &ProxyHandler{
		fetcher: fetcher,
		metrics: recorder,
		logger:  logger,
	}
}

// Fetch handles POST /proxy. The upstream body is returned verbatim with
// the upstream Content-Type.
func (h *ProxyHandler) Fetch(w http.ResponseWriter, r *http.Request) {
	var req dto.ProxyRequest
	if err := decodeJSON(r, &req); err != nil {
		h.metrics.IncProxyRequest("invalid")
		writeError(w, http.StatusBadRequest, "INVALID_URL", "Invalid URL")
		return
	}

	img, err := h.fetcher.Fetch(r.Context(), req.URL)
	if err != nil {
		h.handleFetchError(w, req.URL, err)
		return
	}

	h.metrics.IncProxyRequest("success")
	h.metrics.AddProxyBytes(int64(len(img.Body)))
	h.logger.Info("image_proxied",
		"host", proxy.ExtractHost(req.URL),
		"content_type", img.ContentType,
		"bytes", len(img.Body),
	)

	w.Header().Set("Content-Type", img.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(img.Body)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(img.Body)
}

func (h *ProxyHandler) handleFetchError(w http.ResponseWriter, rawURL string, err error) {
	host := proxy.ExtractHost(rawURL)

	switch {
	case errors.Is(err, proxy.ErrInvalidURL):
		h.metrics.IncProxyRequest("invalid")
		writeError(w, http.StatusBadRequest, "INVALID_URL", "Invalid URL")
	case errors.Is(err, proxy.ErrBlockedHost):
		h.metrics.IncProxyRequest("invalid")
		h.logger.Warn("image_proxy_blocked", "host", host)
		writeError(w, http.StatusBadRequest, "INVALID_URL", "Invalid URL")
	case errors.Is(err, proxy.ErrTooLarge):
		h.metrics.IncProxyRequest("failed")
		h.logger.Warn("image_proxy_too_large", "host", host)
		writeError(w, http.StatusInternalServerError, "FETCH_FAILED", "Could not fetch image")
	default:
		h.metrics.IncProxyRequest("failed")
		h.logger.Warn("image_proxy_failed", "host", host)
		writeError(w, http.StatusInternalServerError, "FETCH_FAILED", "Could not fetch image")
	}
}
