// Package realtime reserves the slot for live transit data in a trip plan.
// No provider is integrated yet; plans carry an empty value.
package realtime

import (
	"context"
	"encoding/json"
)

// Provider returns real-time transit data to attach to a plan. The payload
// is opaque to the planner and stored as-is.
type Provider interface {
	Realtime(ctx context.Context) (json.RawMessage, error)
}

// Placeholder is the Provider used until a transit feed is integrated.
type Placeholder struct{}

// Realtime always returns an empty payload.
func (Placeholder) Realtime(context.Context) (json.RawMessage, error) {
	return nil, nil
}
