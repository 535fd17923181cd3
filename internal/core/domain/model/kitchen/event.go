package kitchen

import (
	"errors"
	"math"
	"time"

	"kds/internal/core/domain/model/kernel"
)

// ErrEventIsNotConstructed is returned when an Event instance was not created
// through NewEvent or RestoreEvent. This ensures all events are properly validated.
var ErrEventIsNotConstructed = errors.New("Event must be created via NewEvent or RestoreEvent")

// Event is an immutable entry in an order's kitchen timeline. Each event
// records the status the order entered, when it actually occurred (which may be
// backdated for corrections), who performed the transition, and the elapsed
// preparation time since the previous entry.
//
// Event follows these invariants:
//   - Must reference a valid order
//   - The status transition from the previous event must be legal
//   - ElapsedMinutes is the rounded minute difference to the previous event's
//     timestamp, and nil for the first event of a timeline
//   - Once created an event is never mutated; corrections append new events
//
// Timestamp and CreatedAt are distinct on purpose: Timestamp is when the
// transition happened in the kitchen, CreatedAt is when the record was written.
type Event struct {
	// id is the unique identifier for the event
	id kernel.UUID

	// orderID references the order this event belongs to
	orderID kernel.UUID

	// status is the state the order entered with this event
	status Status

	// timestamp is when the transition actually occurred
	timestamp time.Time

	// elapsedMinutes is the rounded minutes since the previous event (nil for the first)
	elapsedMinutes *int

	// actorID identifies the staff member who performed the transition (nil for system)
	actorID *string

	// notes carries optional free text attached to the transition
	notes *string

	// createdAt is the record insertion time
	createdAt time.Time

	// isConstructed ensures the event was created via a constructor
	isConstructed bool
}

// NewEvent creates a validated timeline entry for a transition that occurred at
// occurredAt. prev is the order's most recent non-deleted event, or nil when the
// order has no recorded events yet.
//
// The transition from prev's status to status is validated against the
// adjacency table before the event is built; an illegal transition returns the
// validation error and no event. ElapsedMinutes is computed here, at append
// time, as the rounded minute difference between occurredAt and prev's
// timestamp.
func NewEvent(
	id kernel.UUID,
	orderID kernel.UUID,
	status Status,
	occurredAt time.Time,
	prev *Event,
	actorID *string,
	notes *string,
) (*Event, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	if err := orderID.Validate(); err != nil {
		return nil, err
	}

	var current *Status
	if prev != nil {
		s := prev.Status()
		current = &s
	}

	if err := ValidateTransition(current, status); err != nil {
		return nil, err
	}

	var elapsed *int
	if prev != nil {
		minutes := roundedMinutesBetween(prev.Timestamp(), occurredAt)
		elapsed = &minutes
	}

	return &Event{
		id:             id,
		orderID:        orderID,
		status:         status,
		timestamp:      occurredAt,
		elapsedMinutes: elapsed,
		actorID:        actorID,
		notes:          notes,
		createdAt:      time.Now().UTC(),
		isConstructed:  true,
	}, nil
}

// RestoreEvent reconstructs an event from persistence. Transition legality is
// not re-checked: the stored timeline is trusted as recorded.
func RestoreEvent(
	id kernel.UUID,
	orderID kernel.UUID,
	status Status,
	timestamp time.Time,
	elapsedMinutes *int,
	actorID *string,
	notes *string,
	createdAt time.Time,
) (*Event, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	if err := orderID.Validate(); err != nil {
		return nil, err
	}
	if err := status.Validate(); err != nil {
		return nil, err
	}

	return &Event{
		id:             id,
		orderID:        orderID,
		status:         status,
		timestamp:      timestamp,
		elapsedMinutes: elapsedMinutes,
		actorID:        actorID,
		notes:          notes,
		createdAt:      createdAt,
		isConstructed:  true,
	}, nil
}

// roundedMinutesBetween computes whole minutes from from to to, rounded half
// away from zero.
func roundedMinutesBetween(from, to time.Time) int {
	return int(math.Round(to.Sub(from).Minutes()))
}

// Validate ensures the Event instance was properly constructed.
func (e *Event) Validate() error {
	if e == nil || !e.isConstructed {
		return ErrEventIsNotConstructed
	}
	return nil
}

// IsEqual compares two events by their unique identifiers.
func (e *Event) IsEqual(other *Event) bool {
	return other != nil && e.id.IsEqual(other.id)
}

// ID returns the event's unique identifier.
func (e *Event) ID() kernel.UUID {
	return e.id
}

// OrderID returns the identifier of the order this event belongs to.
func (e *Event) OrderID() kernel.UUID {
	return e.orderID
}

// Status returns the status the order entered with this event.
func (e *Event) Status() Status {
	return e.status
}

// Timestamp returns when the transition actually occurred.
func (e *Event) Timestamp() time.Time {
	return e.timestamp
}

// ElapsedMinutes returns the rounded minutes since the previous event.
// Returns nil for the first event of a timeline.
func (e *Event) ElapsedMinutes() *int {
	return e.elapsedMinutes
}

// ActorID returns the staff identity that performed the transition.
// Returns nil when the transition was recorded without an actor.
func (e *Event) ActorID() *string {
	return e.actorID
}

// Notes returns the free-text note attached to the transition, if any.
func (e *Event) Notes() *string {
	return e.notes
}

// CreatedAt returns the record insertion time.
func (e *Event) CreatedAt() time.Time {
	return e.createdAt
}
