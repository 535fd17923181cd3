package kitchen

import (
	"errors"
	"time"

	"kds/internal/core/domain/model/kernel"
)

// ErrOrderIsNotConstructed is returned when an Order instance was not created
// through NewOrder or RestoreOrder.
var ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder or RestoreOrder")

// Order is the order aggregate as seen by the kitchen engine. Orders are
// created and owned by the order-taking subsystem; the engine reads the cached
// status, refreshes it on each transition, and occasionally corrects it during
// reconciliation.
//
// The status field is denormalized from the event log for cheap queue
// filtering. It SHOULD equal the status of the most recent non-deleted event,
// but that is not enforced by a lock: drift under concurrent writers is
// corrected out-of-band by the reconciliation job, never read-repaired.
type Order struct {
	// id is the unique identifier for the order
	id kernel.UUID

	// status is the cached kitchen status, denormalized from the event log
	status Status

	// createdAt is when the order was placed; the queue is FIFO on this field
	createdAt time.Time

	// isConstructed ensures the order was created via a constructor
	isConstructed bool
}

// NewOrder creates an order entering the kitchen in the Pending status.
func NewOrder(id kernel.UUID, createdAt time.Time) (*Order, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	return &Order{
		id:            id,
		status:        Pending,
		createdAt:     createdAt,
		isConstructed: true,
	}, nil
}

// RestoreOrder reconstructs an order from persistence with its cached status.
func RestoreOrder(id kernel.UUID, status Status, createdAt time.Time) (*Order, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	if err := status.Validate(); err != nil {
		return nil, err
	}

	return &Order{
		id:            id,
		status:        status,
		createdAt:     createdAt,
		isConstructed: true,
	}, nil
}

// Validate ensures the Order instance was properly constructed.
func (o *Order) Validate() error {
	if o == nil || !o.isConstructed {
		return ErrOrderIsNotConstructed
	}
	return nil
}

// IsEqual compares two orders by their unique identifiers.
func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id.IsEqual(other.id)
}

// ID returns the order's unique identifier.
func (o *Order) ID() kernel.UUID {
	return o.id
}

// Status returns the cached kitchen status.
func (o *Order) Status() Status {
	return o.status
}

// CreatedAt returns when the order was placed.
func (o *Order) CreatedAt() time.Time {
	return o.createdAt
}

// ChangeStatus overwrites the cached status. Transition legality is NOT
// checked here: it is enforced on the event path, and the reconciliation job
// must be able to force the cache to whatever the event log says.
func (o *Order) ChangeStatus(status Status) error {
	if err := status.Validate(); err != nil {
		return err
	}

	o.status = status
	return nil
}
