// Package ports defines the contracts between the kitchen engine's core and
// its infrastructure adapters, enabling dependency inversion and testability.
package ports

import (
	"context"

	"kds/internal/core/domain/model/kernel"
	"kds/internal/core/domain/model/kitchen"
)

// Drift describes an order whose cached status disagrees with the status of
// its most recent non-deleted event. The event log is the source of truth;
// Cached is the value to be corrected.
type Drift struct {
	OrderID kernel.UUID
	Cached  kitchen.Status
	Actual  kitchen.Status
}

// OrderRepository defines the persistence contract for order aggregates as the
// kitchen engine sees them: read, status refresh, and drift detection. Order
// creation belongs to the order-taking subsystem and is not part of this port.
type OrderRepository interface {
	// Get retrieves a non-deleted order by its unique identifier.
	Get(ctx context.Context, id kernel.UUID) (*kitchen.Order, error)

	// GetForUpdate retrieves a non-deleted order and locks its row for the
	// remainder of the surrounding transaction. The append path uses this to
	// serialize concurrent transitions on the same order: the second writer
	// blocks here and re-reads the timeline after the first one commits.
	GetForUpdate(ctx context.Context, id kernel.UUID) (*kitchen.Order, error)

	// Update persists the aggregate's cached status.
	Update(ctx context.Context, aggregate *kitchen.Order) error

	// FindDrifted returns every non-deleted order whose cached status differs
	// from its latest event's status. Orders without any events are not drifted.
	FindDrifted(ctx context.Context) ([]Drift, error)
}
