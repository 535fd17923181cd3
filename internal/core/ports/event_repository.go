package ports

import (
	"context"

	"kds/internal/core/domain/model/kernel"
	"kds/internal/core/domain/model/kitchen"
)

// EventRepository defines the persistence contract for the kitchen timeline.
// Events are insert-only: there is no update, and removal is soft-delete used
// for corrections and test cleanup.
type EventRepository interface {
	// Add persists a new timeline entry. The event must be valid; transition
	// legality was already enforced when the event was constructed.
	Add(ctx context.Context, event *kitchen.Event) error

	// GetLatest retrieves the most recent non-deleted event for an order,
	// ordered by timestamp descending. Returns (nil, nil) when the order has
	// no events yet; that is a valid state, not an error.
	GetLatest(ctx context.Context, orderID kernel.UUID) (*kitchen.Event, error)

	// GetTimeline returns all non-deleted events for an order ascending by
	// timestamp. This is the canonical, replayable history; an empty slice is
	// valid.
	GetTimeline(ctx context.Context, orderID kernel.UUID) ([]*kitchen.Event, error)
}
