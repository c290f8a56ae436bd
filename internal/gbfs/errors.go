package gbfs

import (
	"fmt"
	"strings"
)

// FeedUnavailableError reports a feed request that did not succeed, either
// because the transport failed or the upstream answered non-200.
type FeedUnavailableError struct {
	URL        string
	StatusCode int // 0 when no response was received
	Err        error
}

func (e *FeedUnavailableError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("gbfs feed unavailable: HTTP %d from %s", e.StatusCode, e.URL)
	}
	return fmt.Sprintf("gbfs feed unavailable: %s: %v", e.URL, e.Err)
}

func (e *FeedUnavailableError) Unwrap() error { return e.Err }

// FeedShapeError reports an index document that lacks a required sub-feed.
type FeedShapeError struct {
	Missing []string
}

func (e *FeedShapeError) Error() string {
	return "gbfs index did not include " + strings.Join(e.Missing, "/")
}
