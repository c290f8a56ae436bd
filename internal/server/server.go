package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"bikeplan/internal/config"
	"bikeplan/internal/handler"
)

const shutdownTimeout = 10 * time.Second

// Server is the HTTP server for the trip planner API.
type Server struct {
	mux    *http.ServeMux
	cfg    *config.Config
	logger *slog.Logger
}

// New creates a new Server with all routes registered.
func New(cfg *config.Config, h *handler.Handler, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	// Trips
	mux.HandleFunc("POST /api/trips/plan", h.PlanTrip)
	mux.HandleFunc("GET /api/trips/{id}", h.GetTrip)

	// Stations
	mux.HandleFunc("GET /api/stations/nearby", h.NearbyStations)

	// Geocoding
	mux.HandleFunc("GET /api/geocode/search", h.GeocodeSearch)
	mux.HandleFunc("GET /api/geocode/reverse", h.GeocodeReverse)

	// Admin
	mux.HandleFunc("GET /api/admin/metrics", h.AdminMetrics)
	mux.HandleFunc("GET /healthz", h.Health)

	return &Server{mux: mux, cfg: cfg, logger: logger}
}

// Handler returns the routes wrapped in middleware.
func (s *Server) Handler() http.Handler {
	return withMiddleware(s.mux, s.logger)
}

// ListenAndServe starts the HTTP server and blocks until ctx is cancelled,
// then drains in-flight requests.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
