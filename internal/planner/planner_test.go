package planner

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"strings"
	"testing"

	"bikeplan/internal/gbfs"
	"bikeplan/internal/storage"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func intp(n int) *int { return &n }

type fakeStations struct {
	stations []gbfs.Station
	err      error
	calls    int
}

func (f *fakeStations) Stations(ctx context.Context) ([]gbfs.Station, error) {
	f.calls++
	return f.stations, f.err
}

type fakeStore struct {
	plans []storage.TripPlan
	err   error
}

func (f *fakeStore) CreateTripPlan(ctx context.Context, p storage.TripPlan) error {
	if f.err != nil {
		return f.err
	}
	f.plans = append(f.plans, p)
	return nil
}

type fakeArchive struct {
	keys []string
	err  error
}

func (f *fakeArchive) PutPlan(ctx context.Context, tripID string, payload []byte) error {
	f.keys = append(f.keys, tripID)
	return f.err
}

type failingRealtime struct{}

func (failingRealtime) Realtime(context.Context) (json.RawMessage, error) {
	return nil, errors.New("feed offline")
}

// Station A has bikes but no docks, B has docks but no bikes.
func montrealStations() []gbfs.Station {
	return []gbfs.Station{
		{StationID: "A", Name: "A", Lat: 45.50, Lon: -73.57, BikesAvailable: intp(5), DocksAvailable: intp(0)},
		{StationID: "B", Name: "B", Lat: 45.51, Lon: -73.58, BikesAvailable: intp(0), DocksAvailable: intp(5)},
		{StationID: "C", Name: "C", Lat: 45.53, Lon: -73.60, BikesAvailable: intp(2), DocksAvailable: intp(2)},
	}
}

func TestPlan_TransitBikeShare(t *testing.T) {
	src := &fakeStations{stations: montrealStations()}
	store := &fakeStore{}
	p := New(src, store, nil, Options{}, testLogger())

	res, err := p.Plan(context.Background(), Request{
		Origin:      Point{Lat: 45.50, Lon: -73.57, Label: "Place des Arts"},
		Destination: Point{Lat: 45.51, Lon: -73.58},
	})
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if src.calls != 1 {
		t.Errorf("station feed read %d times, want 1", src.calls)
	}
	if res.Plan.Mode != ModeTransitBikeShare {
		t.Errorf("mode = %q, want default %q", res.Plan.Mode, ModeTransitBikeShare)
	}

	leg := res.Plan.BikeShare
	if leg == nil {
		t.Fatal("bike-share leg missing")
	}
	if got := leg.SuggestedPickup; got == nil || got.StationID != "A" {
		t.Errorf("suggested pickup = %+v, want A", got)
	}
	if got := leg.SuggestedDropoff; got == nil || got.StationID != "B" {
		t.Errorf("suggested dropoff = %+v, want B", got)
	}
	for _, s := range leg.PickupCandidates {
		if s.Bikes() <= 0 {
			t.Errorf("pickup candidate %s has no bikes", s.StationID)
		}
	}
	for _, s := range leg.DropoffCandidates {
		if s.Docks() <= 0 {
			t.Errorf("dropoff candidate %s has no docks", s.StationID)
		}
	}
	if len(leg.PickupCandidates) != 2 || len(leg.DropoffCandidates) != 2 {
		t.Errorf("candidates = (%d, %d), want (2, 2)", len(leg.PickupCandidates), len(leg.DropoffCandidates))
	}

	if len(store.plans) != 1 {
		t.Fatalf("stored %d plans, want 1", len(store.plans))
	}
	rec := store.plans[0]
	if rec.ID != res.TripID {
		t.Errorf("stored ID = %q, want %q", rec.ID, res.TripID)
	}
	if rec.Origin != "Place des Arts" {
		t.Errorf("stored origin = %q", rec.Origin)
	}
	if rec.Destination != "45.51,-73.58" {
		t.Errorf("stored destination = %q, want coordinates", rec.Destination)
	}
	if rec.Mode != "transit+bixi" {
		t.Errorf("stored mode = %q", rec.Mode)
	}

	want, _ := json.Marshal(res.Plan)
	if rec.ResultJSON != string(want) {
		t.Errorf("stored payload = %s, want %s", rec.ResultJSON, want)
	}
}

func TestPlan_TransitOnlySkipsFeed(t *testing.T) {
	src := &fakeStations{err: &gbfs.FeedUnavailableError{URL: "x", StatusCode: 503}}
	store := &fakeStore{}
	p := New(src, store, nil, Options{}, testLogger())

	res, err := p.Plan(context.Background(), Request{Mode: ModeTransit})
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if src.calls != 0 {
		t.Errorf("station feed read %d times, want 0", src.calls)
	}
	if res.Plan.BikeShare != nil {
		t.Errorf("bike-share leg = %+v, want nil", res.Plan.BikeShare)
	}

	var payload map[string]json.RawMessage
	if err := json.Unmarshal([]byte(store.plans[0].ResultJSON), &payload); err != nil {
		t.Fatalf("stored payload: %v", err)
	}
	if string(payload["bixi"]) != "null" {
		t.Errorf("bixi = %s, want null", payload["bixi"])
	}
	if string(payload["stm"]) != "null" {
		t.Errorf("stm = %s, want null", payload["stm"])
	}
}

func TestPlan_FeedErrorsPropagate(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"unavailable", &gbfs.FeedUnavailableError{URL: "https://x/status.json", StatusCode: 500}},
		{"shape", &gbfs.FeedShapeError{Missing: []string{gbfs.FeedStationStatus}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeStore{}
			p := New(&fakeStations{err: tt.err}, store, nil, Options{}, testLogger())

			res, err := p.Plan(context.Background(), Request{Mode: ModeBikeShare})
			if res != nil {
				t.Errorf("result = %+v, want nil", res)
			}
			if !errors.Is(err, tt.err) {
				t.Errorf("error = %v, want %v in chain", err, tt.err)
			}
			if len(store.plans) != 0 {
				t.Errorf("stored %d plans after feed failure, want 0", len(store.plans))
			}
		})
	}
}

func TestPlan_StoreFailure(t *testing.T) {
	dbErr := errors.New("disk I/O error")
	archive := &fakeArchive{}
	p := New(&fakeStations{}, &fakeStore{err: dbErr}, nil, Options{Archive: archive}, testLogger())

	res, err := p.Plan(context.Background(), Request{Mode: ModeTransit})
	if res != nil {
		t.Errorf("result = %+v, want nil", res)
	}
	if !errors.Is(err, dbErr) {
		t.Errorf("error = %v, want %v in chain", err, dbErr)
	}
	if len(archive.keys) != 0 {
		t.Error("archive should not be written when the store fails")
	}
}

func TestPlan_NoEligibleStations(t *testing.T) {
	stations := []gbfs.Station{
		{StationID: "empty", Lat: 45.5, Lon: -73.57, BikesAvailable: intp(0), DocksAvailable: intp(0)},
	}
	store := &fakeStore{}
	p := New(&fakeStations{stations: stations}, store, nil, Options{}, testLogger())

	res, err := p.Plan(context.Background(), Request{Mode: ModeBikeShare})
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	leg := res.Plan.BikeShare
	if leg.SuggestedPickup != nil || leg.SuggestedDropoff != nil {
		t.Errorf("suggestions = (%v, %v), want nil", leg.SuggestedPickup, leg.SuggestedDropoff)
	}

	payload := store.plans[0].ResultJSON
	for _, want := range []string{`"pickupCandidates":[]`, `"dropoffCandidates":[]`, `"suggestedPickup":null`, `"suggestedDropoff":null`} {
		if !strings.Contains(payload, want) {
			t.Errorf("payload %s missing %s", payload, want)
		}
	}
}

func TestPlan_RepeatedRequestsCreateDistinctRecords(t *testing.T) {
	store := &fakeStore{}
	p := New(&fakeStations{}, store, nil, Options{}, testLogger())

	req := Request{Mode: ModeTransit, Origin: Point{Lat: 1, Lon: 2}, Destination: Point{Lat: 3, Lon: 4}}
	a, err := p.Plan(context.Background(), req)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	b, err := p.Plan(context.Background(), req)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if a.TripID == b.TripID {
		t.Errorf("trip IDs should differ, both %q", a.TripID)
	}
	if len(store.plans) != 2 {
		t.Errorf("stored %d plans, want 2", len(store.plans))
	}
}

func TestPlan_UnknownMode(t *testing.T) {
	src := &fakeStations{}
	store := &fakeStore{}
	p := New(src, store, nil, Options{}, testLogger())

	if _, err := p.Plan(context.Background(), Request{Mode: "scooter"}); err == nil {
		t.Fatal("Plan should reject unknown mode")
	}
	if src.calls != 0 || len(store.plans) != 0 {
		t.Error("unknown mode should not read the feed or store a plan")
	}
}

func TestPlan_Archive(t *testing.T) {
	archive := &fakeArchive{}
	p := New(&fakeStations{}, &fakeStore{}, nil, Options{Archive: archive}, testLogger())

	res, err := p.Plan(context.Background(), Request{Mode: ModeTransit})
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if len(archive.keys) != 1 || archive.keys[0] != res.TripID {
		t.Errorf("archived %v, want [%s]", archive.keys, res.TripID)
	}
}

func TestPlan_ArchiveFailureIsNotFatal(t *testing.T) {
	archive := &fakeArchive{err: errors.New("bucket missing")}
	store := &fakeStore{}
	p := New(&fakeStations{}, store, nil, Options{Archive: archive}, testLogger())

	if _, err := p.Plan(context.Background(), Request{Mode: ModeTransit}); err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if len(store.plans) != 1 {
		t.Errorf("stored %d plans, want 1", len(store.plans))
	}
}

func TestPlan_RealtimeFailureLeavesSlotEmpty(t *testing.T) {
	p := New(&fakeStations{}, &fakeStore{}, failingRealtime{}, Options{}, testLogger())

	res, err := p.Plan(context.Background(), Request{Mode: ModeTransit})
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if res.Plan.Transit != nil {
		t.Errorf("transit slot = %s, want empty", res.Plan.Transit)
	}
}

func TestPlan_CandidateCount(t *testing.T) {
	p := New(&fakeStations{stations: montrealStations()}, &fakeStore{}, nil, Options{Candidates: 1}, testLogger())

	res, err := p.Plan(context.Background(), Request{Mode: ModeBikeShare})
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if n := len(res.Plan.BikeShare.PickupCandidates); n != 1 {
		t.Errorf("pickup candidates = %d, want 1", n)
	}
}
