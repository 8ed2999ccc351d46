// Package eventstore persists emitted analytics events and aggregates them for reporting.
package eventstore

import (
	"context"
	"time"
)

// Store defines the interface for persisting and retrieving analytics events.
type Store interface {
	// Append adds a new event to the store.
	Append(ctx context.Context, rec Record) error

	// GetByPageView retrieves all events recorded for one page view, in insertion order.
	GetByPageView(ctx context.Context, pageViewID string) ([]Record, error)

	// GetRange retrieves events within a time range (inclusive).
	GetRange(ctx context.Context, start, end time.Time) ([]Record, error)

	// Close closes the store and releases resources.
	Close() error
}

// Record is one stored analytics event.
type Record struct {
	ID         int64     `json:"id"`
	PageViewID string    `json:"page_view_id"`
	Source     string    `json:"source"`
	Category   string    `json:"category"`
	Action     string    `json:"action"`
	Label      string    `json:"label"`
	Timestamp  time.Time `json:"timestamp"`
}
