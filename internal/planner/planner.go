// Package planner composes multimodal trip plans from the bike-share
// station feed and stores each plan.
package planner

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"

	"github.com/google/uuid"

	"bikeplan/internal/gbfs"
	"bikeplan/internal/geo"
	"bikeplan/internal/nearest"
	"bikeplan/internal/realtime"
	"bikeplan/internal/storage"
)

// StationSource supplies the merged station list.
type StationSource interface {
	Stations(ctx context.Context) ([]gbfs.Station, error)
}

// PlanStore persists trip plans.
type PlanStore interface {
	CreateTripPlan(ctx context.Context, p storage.TripPlan) error
}

// Archiver keeps a secondary copy of each plan payload.
type Archiver interface {
	PutPlan(ctx context.Context, tripID string, payload []byte) error
}

// Options tunes a Planner. Zero values select the defaults.
type Options struct {
	Candidates int              // per endpoint; nearest.DefaultK when 0
	Strategy   nearest.Strategy // suggestion rule; nearest.FirstCandidate when nil
	Archive    Archiver         // optional
}

// Planner builds and records trip plans.
type Planner struct {
	stations StationSource
	store    PlanStore
	realtime realtime.Provider
	archive  Archiver
	strategy nearest.Strategy
	k        int
	logger   *slog.Logger
	newID    func() string
}

// New creates a Planner.
func New(stations StationSource, store PlanStore, rt realtime.Provider, opts Options, logger *slog.Logger) *Planner {
	p := &Planner{
		stations: stations,
		store:    store,
		realtime: rt,
		archive:  opts.Archive,
		strategy: opts.Strategy,
		k:        opts.Candidates,
		logger:   logger,
		newID:    uuid.NewString,
	}
	if p.strategy == nil {
		p.strategy = nearest.FirstCandidate{}
	}
	if p.k <= 0 {
		p.k = nearest.DefaultK
	}
	if p.realtime == nil {
		p.realtime = realtime.Placeholder{}
	}
	return p
}

// Plan composes a plan for req, stores it under a new trip ID and returns
// both. The station feed is only read when the mode has a bike-share leg.
// Feed and store failures are returned unchanged in the error chain.
func (p *Planner) Plan(ctx context.Context, req Request) (*Result, error) {
	mode := req.Mode
	if mode == "" {
		mode = DefaultMode
	}
	if _, err := ParseMode(string(mode)); err != nil {
		return nil, err
	}

	plan := &Plan{
		Mode:        mode,
		Origin:      req.Origin,
		Destination: req.Destination,
	}

	if mode.IncludesBikeShare() {
		leg, err := p.bikeShareLeg(ctx, req.Origin, req.Destination)
		if err != nil {
			return nil, err
		}
		plan.BikeShare = leg
	}

	rt, err := p.realtime.Realtime(ctx)
	if err != nil {
		p.logger.Warn("realtime transit data unavailable", "error", err)
		rt = nil
	}
	plan.Transit = rt

	payload, err := json.Marshal(plan)
	if err != nil {
		return nil, fmt.Errorf("encode plan: %w", err)
	}

	id := p.newID()
	if err := p.store.CreateTripPlan(ctx, storage.TripPlan{
		ID:          id,
		Origin:      req.Origin.DisplayLabel(),
		Destination: req.Destination.DisplayLabel(),
		Mode:        string(mode),
		ResultJSON:  string(payload),
	}); err != nil {
		return nil, fmt.Errorf("store trip plan: %w", err)
	}

	if p.archive != nil {
		if err := p.archive.PutPlan(ctx, id, payload); err != nil {
			p.logger.Warn("archive trip plan", "trip_id", id, "error", err)
		}
	}

	km := geo.MetersToKilometers(geo.Haversine(req.Origin.Lat, req.Origin.Lon, req.Destination.Lat, req.Destination.Lon))
	p.logger.Info("trip planned", "trip_id", id, "mode", mode, "distance_km", math.Round(km*10)/10)
	return &Result{TripID: id, Plan: plan}, nil
}

// bikeShareLeg reads the feed once and selects pickup candidates near the
// origin and dropoff candidates near the destination.
func (p *Planner) bikeShareLeg(ctx context.Context, origin, destination Point) (*BikeShareLeg, error) {
	stations, err := p.stations.Stations(ctx)
	if err != nil {
		return nil, fmt.Errorf("station feed: %w", err)
	}

	pickups := nearest.Select(stations, origin.Lat, origin.Lon, p.k, nearest.Pickup)
	dropoffs := nearest.Select(stations, destination.Lat, destination.Lon, p.k, nearest.Dropoff)

	return &BikeShareLeg{
		PickupCandidates:  pickups,
		DropoffCandidates: dropoffs,
		SuggestedPickup:   p.strategy.Suggest(pickups),
		SuggestedDropoff:  p.strategy.Suggest(dropoffs),
	}, nil
}
