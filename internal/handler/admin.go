package handler

import (
	"net/http"
	"time"
)

const (
	metricsWindow = 24 * time.Hour
	metricsRecent = 10
)

// AdminMetrics serves GET /api/admin/metrics: plan counts overall, by mode,
// over the last day, and the most recent plans.
func (h *Handler) AdminMetrics(w http.ResponseWriter, r *http.Request) {
	m, err := h.store.TripPlanMetrics(r.Context(), h.now().Add(-metricsWindow), metricsRecent)
	if err != nil {
		h.logger.Error("loading metrics", "error", err)
		h.writeError(w, http.StatusInternalServerError, "failed to load metrics")
		return
	}
	h.writeJSON(w, http.StatusOK, m)
}

// Health serves GET /healthz.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Healthy(r.Context()); err != nil {
		h.logger.Error("health check", "error", err)
		h.writeError(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
