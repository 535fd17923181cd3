package queries

import (
	"errors"
	"time"

	"kds/internal/core/domain/model/kernel"
	"kds/internal/core/domain/model/kitchen"
	"kds/internal/pkg/errs"
	"kds/internal/pkg/guard"
)

var (
	ErrGetTimelineQueryIsNotConstructed = errors.New(
		"GetTimelineQuery must be created via NewGetTimelineQuery constructor",
	)
)

// GetTimelineQuery retrieves the full event history of one order in
// chronological order, forming an audit trail of its passage through the
// kitchen.
type GetTimelineQuery struct {
	orderID kernel.UUID

	guard guard.ConstructorGuard
}

// NewGetTimelineQuery creates a timeline query for the given order.
func NewGetTimelineQuery(orderID kernel.UUID) (GetTimelineQuery, error) {
	if err := orderID.Validate(); err != nil {
		return GetTimelineQuery{}, errs.NewValueIsRequiredErrorWithCause("orderId", err)
	}

	return GetTimelineQuery{
		orderID: orderID,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the query was created through the constructor.
func (q GetTimelineQuery) Validate() error {
	return q.guard.Validate(ErrGetTimelineQueryIsNotConstructed)
}

// OrderID returns the order whose history is requested.
func (q GetTimelineQuery) OrderID() kernel.UUID {
	return q.orderID
}

// TimelineEvent is one recorded status change of the order.
type TimelineEvent struct {
	ID             kernel.UUID
	OrderID        kernel.UUID
	Status         kitchen.Status
	Timestamp      time.Time
	ElapsedMinutes *int
	ActorID        *string
	Notes          *string
	CreatedAt      time.Time
}

// GetTimelineQueryResponse is the chronological event history of one order.
type GetTimelineQueryResponse struct {
	Events []TimelineEvent
}
