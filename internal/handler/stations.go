package handler

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"bikeplan/internal/gbfs"
	"bikeplan/internal/geo"
	"bikeplan/internal/nearest"
)

// maxNearbyStations caps the k query parameter.
const maxNearbyStations = 50

// nearbyStation annotates a candidate with its great-circle distance. The
// ranking itself still uses planar distance.
type nearbyStation struct {
	gbfs.Station
	DistanceMeters float64 `json:"distance_m"`
}

// parseConstraint maps the need query parameter to a constraint set.
func parseConstraint(need string) (nearest.Constraint, bool) {
	switch need {
	case "":
		return nearest.Any, true
	case "bikes":
		return nearest.Pickup, true
	case "docks":
		return nearest.Dropoff, true
	}
	return nearest.Constraint{}, false
}

// NearbyStations serves GET /api/stations/nearby?lat=&lon=&k=&need=bikes|docks.
func (h *Handler) NearbyStations(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	lat, err1 := strconv.ParseFloat(q.Get("lat"), 64)
	lon, err2 := strconv.ParseFloat(q.Get("lon"), 64)
	if err1 != nil || err2 != nil {
		h.writeError(w, http.StatusBadRequest, "lat and lon are required")
		return
	}

	k := nearest.DefaultK
	if s := q.Get("k"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			h.writeError(w, http.StatusBadRequest, "k must be a positive integer")
			return
		}
		k = min(n, maxNearbyStations)
	}

	c, ok := parseConstraint(q.Get("need"))
	if !ok {
		h.writeError(w, http.StatusBadRequest, "need must be bikes or docks")
		return
	}

	stations, err := h.stations.Stations(r.Context())
	if err != nil {
		var (
			unavailable *gbfs.FeedUnavailableError
			shape       *gbfs.FeedShapeError
		)
		if errors.As(err, &unavailable) || errors.As(err, &shape) {
			h.logger.Warn("bike-share feed failed", "error", err)
			h.writeError(w, http.StatusBadGateway, err.Error())
			return
		}
		h.logger.Error("loading stations", "error", err)
		h.writeError(w, http.StatusInternalServerError, "failed to load stations")
		return
	}

	selected := nearest.Select(stations, lat, lon, k, c)
	out := make([]nearbyStation, len(selected))
	for i, s := range selected {
		out[i] = nearbyStation{
			Station:        s,
			DistanceMeters: math.Round(geo.Haversine(lat, lon, s.Lat, s.Lon)),
		}
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"stations": out})
}
