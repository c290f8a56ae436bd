package handler

import (
	"net/http"
	"strconv"
	"strings"

	"bikeplan/internal/geocode"
)

const geocodeLimit = 5

// GeocodeSearch serves GET /api/geocode/search?q=.
func (h *Handler) GeocodeSearch(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		h.writeError(w, http.StatusBadRequest, "q is required")
		return
	}

	results, err := h.geo.Search(r.Context(), query, geocodeLimit)
	if err != nil {
		h.logger.Warn("nominatim geocoding failed", "query", query, "error", err)
		h.writeError(w, http.StatusBadGateway, "address lookup is unavailable")
		return
	}
	if results == nil {
		results = []geocode.Result{}
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

// GeocodeReverse serves GET /api/geocode/reverse?lat=&lon=.
func (h *Handler) GeocodeReverse(w http.ResponseWriter, r *http.Request) {
	lat, err1 := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	lon, err2 := strconv.ParseFloat(r.URL.Query().Get("lon"), 64)
	if err1 != nil || err2 != nil {
		h.writeError(w, http.StatusBadRequest, "lat and lon are required")
		return
	}

	label, err := h.geo.Reverse(r.Context(), lat, lon)
	if err != nil {
		h.logger.Warn("nominatim reverse geocoding failed", "lat", lat, "lon", lon, "error", err)
		h.writeError(w, http.StatusBadGateway, "address lookup is unavailable")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"lat": lat, "lon": lon, "label": label})
}
