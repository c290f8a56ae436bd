// Package nearest selects bike-share stations close to a point.
package nearest

import (
	"sort"

	"bikeplan/internal/gbfs"
	"bikeplan/internal/geo"
)

// DefaultK is the candidate count used when k is not positive.
const DefaultK = 3

// Constraint restricts which stations are eligible.
type Constraint struct {
	RequireBikes bool // at least one bike available
	RequireDocks bool // at least one free dock
}

// Named constraint sets used by the trip planner.
var (
	Any     = Constraint{}
	Pickup  = Constraint{RequireBikes: true}
	Dropoff = Constraint{RequireDocks: true}
)

// Allows reports whether s satisfies the constraint. Absent counters count as zero.
func (c Constraint) Allows(s gbfs.Station) bool {
	if c.RequireBikes && s.Bikes() <= 0 {
		return false
	}
	if c.RequireDocks && s.Docks() <= 0 {
		return false
	}
	return true
}

// Select returns up to k eligible stations ordered nearest-first by
// geo.PlanarDist2 from (lat, lon). Ties keep input order. The input slice is
// not modified; an empty result is returned as an empty, non-nil slice.
func Select(stations []gbfs.Station, lat, lon float64, k int, c Constraint) []gbfs.Station {
	if k <= 0 {
		k = DefaultK
	}

	type ranked struct {
		station gbfs.Station
		d2      float64
	}
	eligible := make([]ranked, 0, len(stations))
	for _, s := range stations {
		if c.Allows(s) {
			eligible = append(eligible, ranked{s, geo.PlanarDist2(s.Lat, s.Lon, lat, lon)})
		}
	}
	sort.SliceStable(eligible, func(i, j int) bool {
		return eligible[i].d2 < eligible[j].d2
	})

	if len(eligible) > k {
		eligible = eligible[:k]
	}
	out := make([]gbfs.Station, len(eligible))
	for i, r := range eligible {
		out[i] = r.station
	}
	return out
}

// Strategy picks the suggested station out of a nearest-first candidate list.
type Strategy interface {
	Suggest(candidates []gbfs.Station) *gbfs.Station
}

// FirstCandidate suggests the nearest eligible station.
type FirstCandidate struct{}

// Suggest returns the first candidate, or nil when there is none.
func (FirstCandidate) Suggest(candidates []gbfs.Station) *gbfs.Station {
	if len(candidates) == 0 {
		return nil
	}
	s := candidates[0]
	return &s
}
