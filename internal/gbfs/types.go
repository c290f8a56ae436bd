package gbfs

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// Feed names consumed from the index.
const (
	FeedStationInformation = "station_information"
	FeedStationStatus      = "station_status"
)

// Station is one dock location, joined from station_information and
// station_status. Counters that the feed omitted stay nil.
type Station struct {
	StationID      string  `json:"station_id"`
	Name           string  `json:"name"`
	Lat            float64 `json:"lat"`
	Lon            float64 `json:"lon"`
	Capacity       *int    `json:"capacity,omitempty"`
	BikesAvailable *int    `json:"bikes_available,omitempty"`
	DocksAvailable *int    `json:"docks_available,omitempty"`
	IsInstalled    *Flag   `json:"is_installed,omitempty"`
	IsRenting      *Flag   `json:"is_renting,omitempty"`
	IsReturning    *Flag   `json:"is_returning,omitempty"`
	LastReported   *int64  `json:"last_reported,omitempty"`
}

// Bikes returns the available bike count, or 0 when the feed omitted it.
func (s Station) Bikes() int {
	if s.BikesAvailable == nil {
		return 0
	}
	return *s.BikesAvailable
}

// Docks returns the available dock count, or 0 when the feed omitted it.
func (s Station) Docks() int {
	if s.DocksAvailable == nil {
		return 0
	}
	return *s.DocksAvailable
}

// Flag is a GBFS status flag. GBFS 1.x publishes 0/1 integers and 2.x
// publishes booleans; both decode here.
type Flag bool

// UnmarshalJSON accepts true/false and numeric 0/1.
func (f *Flag) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch string(b) {
	case "true":
		*f = true
		return nil
	case "false", "null":
		*f = false
		return nil
	}
	var n float64
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("gbfs flag %s: %w", b, err)
	}
	*f = n != 0
	return nil
}

// Index is the gbfs.json discovery document.
type Index struct {
	LastUpdated int64                    `json:"last_updated"`
	TTL         int                      `json:"ttl"`
	Data        map[string]IndexLanguage `json:"data"`
}

// IndexLanguage lists the sub-feeds published for one language.
type IndexLanguage struct {
	Feeds []IndexFeed `json:"feeds"`
}

// IndexFeed is a named sub-feed URL.
type IndexFeed struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// preferredLanguages are searched first; any other language follows in
// sorted order.
var preferredLanguages = []string{"en", "fr"}

// FeedURL returns the URL of the named sub-feed from whichever language
// section carries it.
func (idx *Index) FeedURL(name string) (string, bool) {
	for _, lang := range idx.languages() {
		for _, f := range idx.Data[lang].Feeds {
			if f.Name == name && f.URL != "" {
				return f.URL, true
			}
		}
	}
	return "", false
}

func (idx *Index) languages() []string {
	langs := make([]string, 0, len(idx.Data))
	seen := make(map[string]bool, len(preferredLanguages))
	for _, l := range preferredLanguages {
		if _, ok := idx.Data[l]; ok {
			langs = append(langs, l)
			seen[l] = true
		}
	}
	var rest []string
	for l := range idx.Data {
		if !seen[l] {
			rest = append(rest, l)
		}
	}
	sort.Strings(rest)
	return append(langs, rest...)
}

type informationFeed struct {
	LastUpdated int64 `json:"last_updated"`
	Data        struct {
		Stations []InformationRecord `json:"stations"`
	} `json:"data"`
}

type statusFeed struct {
	LastUpdated int64 `json:"last_updated"`
	Data        struct {
		Stations []StatusRecord `json:"stations"`
	} `json:"data"`
}

// InformationRecord is one entry of station_information.
type InformationRecord struct {
	StationID string  `json:"station_id"`
	Name      string  `json:"name"`
	Lat       float64 `json:"lat"`
	Lon       float64 `json:"lon"`
	Capacity  *int    `json:"capacity"`
}

// StatusRecord is one entry of station_status.
type StatusRecord struct {
	StationID         string `json:"station_id"`
	NumBikesAvailable *int   `json:"num_bikes_available"`
	NumDocksAvailable *int   `json:"num_docks_available"`
	IsInstalled       *Flag  `json:"is_installed"`
	IsRenting         *Flag  `json:"is_renting"`
	IsReturning       *Flag  `json:"is_returning"`
	LastReported      *int64 `json:"last_reported"`
}
