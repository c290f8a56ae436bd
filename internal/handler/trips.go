package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"bikeplan/internal/gbfs"
	"bikeplan/internal/planner"
	"bikeplan/internal/storage"
)

// maxPlanBody bounds the plan request body.
const maxPlanBody = 64 << 10

type planRequest struct {
	Origin      *planner.Point `json:"origin"`
	Destination *planner.Point `json:"destination"`
	Mode        string         `json:"mode"`
}

// PlanTrip serves POST /api/trips/plan.
func (h *Handler) PlanTrip(w http.ResponseWriter, r *http.Request) {
	var body planRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxPlanBody)).Decode(&body); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.Origin == nil || body.Destination == nil {
		h.writeError(w, http.StatusBadRequest, "origin and destination are required")
		return
	}
	mode, err := planner.ParseMode(body.Mode)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.planner.Plan(r.Context(), planner.Request{
		Origin:      *body.Origin,
		Destination: *body.Destination,
		Mode:        mode,
	})
	if err != nil {
		var (
			unavailable *gbfs.FeedUnavailableError
			shape       *gbfs.FeedShapeError
		)
		switch {
		case errors.As(err, &unavailable), errors.As(err, &shape):
			h.logger.Warn("bike-share feed failed", "mode", mode, "error", err)
			h.writeError(w, http.StatusBadGateway, err.Error())
		default:
			h.logger.Error("planning trip", "mode", mode, "error", err)
			h.writeError(w, http.StatusInternalServerError, "failed to plan trip")
		}
		return
	}

	h.writeJSON(w, http.StatusOK, res)
}

type tripResponse struct {
	TripID      string          `json:"tripId"`
	Origin      string          `json:"origin"`
	Destination string          `json:"destination"`
	Mode        string          `json:"mode"`
	CreatedAt   time.Time       `json:"createdAt"`
	Plan        json.RawMessage `json:"plan"`
}

// GetTrip serves GET /api/trips/{id}.
func (h *Handler) GetTrip(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	p, err := h.store.GetTripPlan(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		h.writeError(w, http.StatusNotFound, "trip not found")
		return
	}
	if err != nil {
		h.logger.Error("loading trip", "trip_id", id, "error", err)
		h.writeError(w, http.StatusInternalServerError, "failed to load trip")
		return
	}

	h.writeJSON(w, http.StatusOK, tripResponse{
		TripID:      p.ID,
		Origin:      p.Origin,
		Destination: p.Destination,
		Mode:        p.Mode,
		CreatedAt:   p.CreatedAt,
		Plan:        json.RawMessage(p.ResultJSON),
	})
}
