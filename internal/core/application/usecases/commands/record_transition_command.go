package commands

import (
	"errors"

	"kds/internal/core/domain/model/kernel"
	"kds/internal/core/domain/model/kitchen"
	"kds/internal/pkg/errs"
	"kds/internal/pkg/guard"
)

var (
	ErrRecordTransitionCommandIsNotConstructed = errors.New(
		"RecordTransitionCommand must be created via NewRecordTransitionCommand constructor",
	)
)

// RequestMeta carries request-scoped metadata forwarded to the audit trail.
// Both fields may be empty for transitions recorded outside an HTTP request.
type RequestMeta struct {
	IP        string
	UserAgent string
}

// RecordTransitionCommand requests moving an order to a new kitchen status.
// The actor is mandatory: every mutating call must name the staff identity
// that performed it. The engine treats the actor as an opaque string supplied
// by the authentication collaborator.
type RecordTransitionCommand struct {
	orderID kernel.UUID
	status  kitchen.Status
	actorID string
	notes   *string
	meta    RequestMeta

	guard guard.ConstructorGuard
}

// NewRecordTransitionCommand creates a validated transition request.
// Transition legality against the order's current state is NOT checked here;
// that requires the timeline and happens inside the handler's transaction.
func NewRecordTransitionCommand(
	orderID kernel.UUID,
	status kitchen.Status,
	actorID string,
	notes *string,
	meta RequestMeta,
) (RecordTransitionCommand, error) {
	if err := orderID.Validate(); err != nil {
		return RecordTransitionCommand{}, errs.NewValueIsRequiredErrorWithCause("orderId", err)
	}
	if err := status.Validate(); err != nil {
		return RecordTransitionCommand{}, err
	}
	if actorID == "" {
		return RecordTransitionCommand{}, errs.NewValueIsRequiredError("actorId")
	}

	return RecordTransitionCommand{
		orderID: orderID,
		status:  status,
		actorID: actorID,
		notes:   notes,
		meta:    meta,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c RecordTransitionCommand) Validate() error {
	return c.guard.Validate(ErrRecordTransitionCommandIsNotConstructed)
}

// OrderID returns the order to transition.
func (c RecordTransitionCommand) OrderID() kernel.UUID {
	return c.orderID
}

// Status returns the requested kitchen status.
func (c RecordTransitionCommand) Status() kitchen.Status {
	return c.status
}

// ActorID returns the staff identity performing the transition.
func (c RecordTransitionCommand) ActorID() string {
	return c.actorID
}

// Notes returns the optional free-text note, or nil.
func (c RecordTransitionCommand) Notes() *string {
	return c.notes
}

// Meta returns the request metadata forwarded to the audit trail.
func (c RecordTransitionCommand) Meta() RequestMeta {
	return c.meta
}
