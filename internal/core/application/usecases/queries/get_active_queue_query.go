// Package queries contains read operations for retrieving system state.
// Implements the Query pattern for read operations in the CQRS architecture.
// Queries return optimized read models for specific use cases and go straight
// to the database, bypassing the aggregates.
package queries

import (
	"errors"
	"time"

	"kds/internal/core/domain/model/kernel"
	"kds/internal/core/domain/model/kitchen"
	"kds/internal/pkg/guard"
)

var (
	ErrGetActiveQueueQueryIsNotConstructed = errors.New(
		"GetActiveQueueQuery must be created via NewGetActiveQueueQuery constructor",
	)
)

// GetActiveQueueQuery retrieves the active kitchen queue: every non-deleted
// order whose cached status is non-terminal, with its items and most recent
// timeline event, oldest order first (FIFO kitchen discipline).
//
// The projection filters on the cached Order.status rather than recomputing
// each order's state from the event log per request. That is a deliberate
// performance trade: the cached field can drift, and the reconciliation job
// exists to repair it.
type GetActiveQueueQuery struct {
	guard guard.ConstructorGuard
}

// NewGetActiveQueueQuery creates a query for the active kitchen queue.
// This is a parameterless query.
func NewGetActiveQueueQuery() GetActiveQueueQuery {
	return GetActiveQueueQuery{guard: guard.NewConstructorGuard()}
}

// Validate ensures the query was created through the constructor.
func (q GetActiveQueueQuery) Validate() error {
	return q.guard.Validate(ErrGetActiveQueueQueryIsNotConstructed)
}

// QueueItem is one line of an order as shown on the kitchen display.
type QueueItem struct {
	Name     string
	Quantity int
}

// QueueEvent is the most recent timeline entry of a queued order.
type QueueEvent struct {
	ID             kernel.UUID
	Status         kitchen.Status
	Timestamp      time.Time
	ElapsedMinutes *int
	ActorID        *string
}

// GetActiveQueueQueryResponse represents one order waiting in the kitchen.
// LatestEvent is nil for orders that have no recorded events yet.
type GetActiveQueueQueryResponse struct {
	OrderID     kernel.UUID
	Status      kitchen.Status
	CreatedAt   time.Time
	Items       []QueueItem
	LatestEvent *QueueEvent
}
