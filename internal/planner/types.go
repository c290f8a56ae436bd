package planner

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"bikeplan/internal/gbfs"
)

// Mode is the combination of transport types requested for a trip.
type Mode string

const (
	ModeTransit          Mode = "transit"
	ModeBikeShare        Mode = "bixi"
	ModeTransitBikeShare Mode = "transit+bixi"

	DefaultMode = ModeTransitBikeShare
)

// Modes lists every accepted mode.
var Modes = []Mode{ModeTransit, ModeBikeShare, ModeTransitBikeShare}

// ParseMode validates s. An empty string selects DefaultMode.
func ParseMode(s string) (Mode, error) {
	if s == "" {
		return DefaultMode, nil
	}
	for _, m := range Modes {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown mode %q", s)
}

// IncludesBikeShare reports whether the mode has a bike-share leg.
func (m Mode) IncludesBikeShare() bool {
	return strings.Contains(string(m), string(ModeBikeShare))
}

// Point is a trip endpoint. Coordinates are not range-checked.
type Point struct {
	Lat   float64 `json:"lat"`
	Lon   float64 `json:"lon"`
	Label string  `json:"label,omitempty"`
}

// DisplayLabel returns the label, or "lat,lon" when none was given.
func (p Point) DisplayLabel() string {
	if p.Label != "" {
		return p.Label
	}
	return strconv.FormatFloat(p.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(p.Lon, 'f', -1, 64)
}

// Request asks for a plan between two points.
type Request struct {
	Origin      Point
	Destination Point
	Mode        Mode
}

// Plan is the payload returned to the caller and stored with the trip.
type Plan struct {
	Mode        Mode          `json:"mode"`
	Origin      Point         `json:"origin"`
	Destination Point         `json:"destination"`
	BikeShare   *BikeShareLeg `json:"bixi"`

	// Transit is reserved for live transit data; empty until a provider
	// is integrated.
	Transit json.RawMessage `json:"stm"`
}

// BikeShareLeg holds the pickup and dropoff station candidates.
type BikeShareLeg struct {
	PickupCandidates  []gbfs.Station `json:"pickupCandidates"`
	DropoffCandidates []gbfs.Station `json:"dropoffCandidates"`
	SuggestedPickup   *gbfs.Station  `json:"suggestedPickup"`
	SuggestedDropoff  *gbfs.Station  `json:"suggestedDropoff"`
}

// Result is a stored plan and its identifier.
type Result struct {
	TripID string `json:"tripId"`
	Plan   *Plan  `json:"plan"`
}
