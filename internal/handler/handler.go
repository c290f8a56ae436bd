package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"bikeplan/internal/gbfs"
	"bikeplan/internal/geocode"
	"bikeplan/internal/planner"
	"bikeplan/internal/storage"
)

// TripPlanner composes and records trip plans.
type TripPlanner interface {
	Plan(ctx context.Context, req planner.Request) (*planner.Result, error)
}

// StationSource supplies the merged bike-share station list.
type StationSource interface {
	Stations(ctx context.Context) ([]gbfs.Station, error)
}

// TripStore reads stored trip plans.
type TripStore interface {
	GetTripPlan(ctx context.Context, id string) (*storage.TripPlan, error)
	TripPlanMetrics(ctx context.Context, since time.Time, recent int) (*storage.Metrics, error)
	Healthy(ctx context.Context) error
}

// Geocoder resolves addresses and coordinates.
type Geocoder interface {
	Search(ctx context.Context, query string, limit int) ([]geocode.Result, error)
	Reverse(ctx context.Context, lat, lon float64) (string, error)
}

// Handler holds shared dependencies for all HTTP handlers.
type Handler struct {
	planner  TripPlanner
	stations StationSource
	store    TripStore
	geo      Geocoder
	logger   *slog.Logger
	now      func() time.Time
}

// New creates a Handler.
func New(p TripPlanner, stations StationSource, store TripStore, geo Geocoder, logger *slog.Logger) *Handler {
	return &Handler{
		planner:  p,
		stations: stations,
		store:    store,
		geo:      geo,
		logger:   logger,
		now:      time.Now,
	}
}

// errorResponse is the body of every non-2xx JSON response.
type errorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("encoding JSON response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, errorResponse{Error: message})
}
