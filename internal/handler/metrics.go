package handler

import (
	"fmt"
	"net/http"

	"github.com/mangadock/mangadock/internal/metrics"
)

// MetricsHandler exposes in-memory metrics.
type MetricsHandler struct {
	snapshotter metrics.Snapshotter
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(snapshotter metrics.Snapshotter) *MetricsHandler {
	return &MetricsHandler{snapshotter: snapshotter}
}

// Metrics returns metrics in Prometheus exposition format.
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.snapshotter == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	snap := h.snapshotter.Snapshot()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	writeMetric(w, "mangadock_tokens_issued_total %d\n", snap.TokensIssued)
	writeMetric(w, "mangadock_tokens_rejected_total{reason=\"wrong_password\"} %d\n", snap.TokensRejectedWrongPW)
	writeMetric(w, "mangadock_tokens_rejected_total{reason=\"missing\"} %d\n", snap.TokensRejectedMissing)
	writeMetric(w, "mangadock_tokens_rejected_total{reason=\"invalid\"} %d\n", snap.TokensRejectedInvalid)

	writeMetric(w, "mangadock_favorites_added_total %d\n", snap.FavoritesAdded)
	writeMetric(w, "mangadock_favorites_removed_total %d\n", snap.FavoritesRemoved)
	writeMetric(w, "mangadock_chapters_finished_total %d\n", snap.ChaptersFinished)
	writeMetric(w, "mangadock_users_created_total %d\n", snap.UsersCreated)
	writeMetric(w, "mangadock_store_errors_total %d\n", snap.StoreErrors)

	writeMetric(w, "mangadock_proxy_requests_total{status=\"success\"} %d\n", snap.ProxySuccess)
	writeMetric(w, "mangadock_proxy_requests_total{status=\"invalid\"} %d\n", snap.ProxyInvalid)
	writeMetric(w, "mangadock_proxy_requests_total{status=\"failed\"} %d\n", snap.ProxyFailed)
	writeMetric(w, "mangadock_proxy_requests_total{status=\"limited\"} %d\n", snap.ProxyLimited)
	writeMetric(w, "mangadock_proxy_bytes_total %d\n", snap.ProxyBytes)
}

func writeMetric(w http.ResponseWriter, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
