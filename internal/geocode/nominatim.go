package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Result holds a geocoding result.
type Result struct {
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	DisplayName string  `json:"label"`
}

// Client is a Nominatim geocoding client.
type Client struct {
	httpClient *http.Client
	baseURL    string
	viewbox    string // "minLon,minLat,maxLon,maxLat"; empty searches worldwide
	userAgent  string
}

// New creates a Nominatim geocoding client.
// userAgent is required by Nominatim's usage policy.
func New(baseURL, viewbox, userAgent string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 5 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
		viewbox:    viewbox,
		userAgent:  userAgent,
	}
}

// Search geocodes a free-form query, bounded to the configured viewbox.
// Returns at most limit results; an empty slice when nothing matched.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]Result, error) {
	params := url.Values{
		"q":              {query},
		"format":         {"jsonv2"},
		"limit":          {strconv.Itoa(limit)},
		"addressdetails": {"0"},
	}
	if c.viewbox != "" {
		params.Set("viewbox", c.viewbox)
		params.Set("bounded", "1")
	}

	var raw []struct {
		Lat         string `json:"lat"`
		Lon         string `json:"lon"`
		DisplayName string `json:"display_name"`
	}
	if err := c.get(ctx, "/search?"+params.Encode(), &raw); err != nil {
		return nil, fmt.Errorf("nominatim search: %w", err)
	}

	results := make([]Result, 0, len(raw))
	for _, r := range raw {
		lat, err := strconv.ParseFloat(r.Lat, 64)
		if err != nil {
			return nil, fmt.Errorf("parse lat: %w", err)
		}
		lon, err := strconv.ParseFloat(r.Lon, 64)
		if err != nil {
			return nil, fmt.Errorf("parse lon: %w", err)
		}
		results = append(results, Result{Lat: lat, Lon: lon, DisplayName: r.DisplayName})
	}
	return results, nil
}

// Reverse performs reverse geocoding: lat/lon → nearest address.
// Returns a short address string (house number + road), or the first part
// of the display name if those fields are missing.
func (c *Client) Reverse(ctx context.Context, lat, lon float64) (string, error) {
	params := url.Values{
		"lat":            {strconv.FormatFloat(lat, 'f', 6, 64)},
		"lon":            {strconv.FormatFloat(lon, 'f', 6, 64)},
		"format":         {"jsonv2"},
		"zoom":           {"18"}, // street-level
		"addressdetails": {"1"},
	}

	var result struct {
		DisplayName string `json:"display_name"`
		Address     struct {
			HouseNumber string `json:"house_number"`
			Road        string `json:"road"`
		} `json:"address"`
	}
	if err := c.get(ctx, "/reverse?"+params.Encode(), &result); err != nil {
		return "", fmt.Errorf("nominatim reverse: %w", err)
	}

	// Build a short address: "123 Main St"
	if result.Address.Road != "" {
		if result.Address.HouseNumber != "" {
			return result.Address.HouseNumber + " " + result.Address.Road, nil
		}
		return result.Address.Road, nil
	}
	if result.DisplayName != "" {
		if i := strings.Index(result.DisplayName, ","); i > 0 {
			return result.DisplayName[:i], nil
		}
		return result.DisplayName, nil
	}
	return "", fmt.Errorf("no address found")
}

func (c *Client) get(ctx context.Context, pathAndQuery string, v any) error {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+pathAndQuery, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}
