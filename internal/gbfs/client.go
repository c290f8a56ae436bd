package gbfs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/bluele/gcache"
	"golang.org/x/sync/errgroup"
)

// DefaultIndexURL is the BIXI Montréal GBFS 2.2 discovery document.
const DefaultIndexURL = "https://gbfs.velobixi.com/gbfs/2-2/gbfs.json"

const stationsKey = "stations"

// Client reads and merges a GBFS station feed.
type Client struct {
	indexURL string
	client   *http.Client
	cache    gcache.Cache // nil when caching is disabled
	logger   *slog.Logger
}

// NewClient creates a GBFS client for the given index URL. A positive
// cacheTTL keeps the merged station list for that long; zero disables it.
func NewClient(indexURL string, timeout, cacheTTL time.Duration, logger *slog.Logger) *Client {
	c := &Client{
		indexURL: indexURL,
		client:   &http.Client{Timeout: timeout},
		logger:   logger,
	}
	if cacheTTL > 0 {
		c.cache = gcache.New(1).LRU().Expiration(cacheTTL).Build()
	}
	return c
}

// Stations returns the merged station list. Both sub-feeds must be fetched
// successfully; there is no partial result and no retry.
func (c *Client) Stations(ctx context.Context) ([]Station, error) {
	if c.cache != nil {
		if cached, err := c.cache.Get(stationsKey); err == nil {
			return cached.([]Station), nil
		} else if !errors.Is(err, gcache.KeyNotFoundError) {
			c.logger.Warn("station cache lookup", "error", err)
		}
	}

	var idx Index
	if err := c.getJSON(ctx, c.indexURL, &idx); err != nil {
		return nil, fmt.Errorf("fetch index: %w", err)
	}

	infoURL, infoOK := idx.FeedURL(FeedStationInformation)
	statusURL, statusOK := idx.FeedURL(FeedStationStatus)
	if !infoOK || !statusOK {
		shape := &FeedShapeError{}
		if !infoOK {
			shape.Missing = append(shape.Missing, FeedStationInformation)
		}
		if !statusOK {
			shape.Missing = append(shape.Missing, FeedStationStatus)
		}
		return nil, shape
	}

	var (
		info   informationFeed
		status statusFeed
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := c.getJSON(gctx, infoURL, &info); err != nil {
			return fmt.Errorf("fetch %s: %w", FeedStationInformation, err)
		}
		return nil
	})
	g.Go(func() error {
		if err := c.getJSON(gctx, statusURL, &status); err != nil {
			return fmt.Errorf("fetch %s: %w", FeedStationStatus, err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	stations := Merge(info.Data.Stations, status.Data.Stations)
	c.logger.Debug("station feed merged",
		"information", len(info.Data.Stations),
		"status", len(status.Data.Stations),
		"merged", len(stations),
	)

	if c.cache != nil {
		if err := c.cache.Set(stationsKey, stations); err != nil {
			c.logger.Warn("station cache store", "error", err)
		}
	}
	return stations, nil
}

// getJSON fetches url and decodes the body into v. Any failure to obtain a
// usable body is reported as a *FeedUnavailableError.
func (c *Client) getJSON(ctx context.Context, url string, v any) error {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "bikeplan/1.0")

	resp, err := c.client.Do(req)
	if err != nil {
		return &FeedUnavailableError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &FeedUnavailableError{URL: url, StatusCode: resp.StatusCode}
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return &FeedUnavailableError{URL: url, Err: fmt.Errorf("decode: %w", err)}
	}
	return nil
}
