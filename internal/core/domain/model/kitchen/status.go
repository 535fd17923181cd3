package kitchen

import (
	"fmt"

	"kds/internal/pkg/errs"
)

// Status represents the lifecycle state of an order in the kitchen.
// It implements a state machine with defined transitions to ensure orders
// follow the correct preparation workflow.
//
// State transitions:
//
//	Pending ──┬──> InProgress ──> Ready ──> Served
//	          │        ^  │        │  ^
//	          │        │  └────────┘  │
//	          │        └──────────────┘
//	          │   (corrections step back one state)
//	          └──> Cancelled
//
// Served and Cancelled are terminal states with no further transitions.
type Status int

const (
	// Unknown represents an invalid or undefined status.
	// This value (0) helps catch uninitialized Status values.
	Unknown Status = iota

	// Pending is the initial status when an order enters the kitchen.
	// Every order's first recorded event must carry this status.
	Pending

	// InProgress indicates the kitchen has started preparing the order.
	InProgress

	// Ready indicates preparation is finished and the order awaits pickup.
	Ready

	// Served indicates the order has been delivered to the table.
	// This is a final state with no further transitions allowed.
	Served

	// Cancelled indicates the order was withdrawn before preparation started.
	// This is a final state with no further transitions allowed.
	Cancelled
)

// getStatusStrings returns a map of Status values to their string representations.
// All statuses are included for string conversion.
func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:    "unknown",
		Pending:    "pending",
		InProgress: "in_progress",
		Ready:      "ready",
		Served:     "served",
		Cancelled:  "cancelled",
	}
}

// getValidStatusStrings returns a map of only valid Status values.
// Only valid statuses are included to support validation and parsing.
func getValidStatusStrings() map[Status]string {
	//nolint:exhaustive // Unknown is intentionally excluded as it's invalid
	return map[Status]string{
		Pending:    "pending",
		InProgress: "in_progress",
		Ready:      "ready",
		Served:     "served",
		Cancelled:  "cancelled",
	}
}

// transitions is the fixed adjacency table mapping each non-terminal status to
// the set of statuses it may legally move to. Terminal statuses map to the
// empty set. The table is data, not behavior: validation is a lookup.
//
// InProgress -> Pending and Ready -> InProgress are explicit correction paths
// for when a transition was recorded by mistake.
func transitions() map[Status][]Status {
	return map[Status][]Status{
		Pending:    {InProgress, Cancelled},
		InProgress: {Ready, Pending},
		Ready:      {Served, InProgress},
		Served:     {},
		Cancelled:  {},
	}
}

// StatusFromString parses the wire representation of a status ("pending",
// "in_progress", ...). Returns a validation error for unrecognized input.
func StatusFromString(s string) (Status, error) {
	for status, str := range getValidStatusStrings() {
		if str == s {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status",
		fmt.Errorf("%q is not a valid kitchen status", s))
}

// Validate checks if the Status value is valid.
// Unknown (0) and any out-of-range values are invalid.
func (s Status) Validate() error {
	if _, ok := getValidStatusStrings()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// String returns the wire representation of the status.
// Implements fmt.Stringer and is safe to call on any Status value.
func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "unknown"
}

// IsTerminal reports whether the status ends the order's participation in the
// kitchen workflow. Terminal statuses have no legal successors.
func (s Status) IsTerminal() bool {
	successors, ok := transitions()[s]
	return ok && len(successors) == 0
}

// ActiveStatuses returns the statuses that keep an order in the active kitchen
// queue, i.e. every valid non-terminal status.
func ActiveStatuses() []Status {
	return []Status{Pending, InProgress, Ready}
}

// ValidateTransition decides whether an order may move from current to
// requested. A nil current means the order has no recorded events yet.
//
// Rules, in order:
//   - requested must be a valid status
//   - with no prior event, requested must be Pending
//   - requested == current is rejected; no-op transitions are errors
//   - otherwise requested must appear in the adjacency table entry for current
//
// The returned error carries a human-readable reason naming the states
// involved. ValidateTransition is side-effect free and is consulted
// synchronously before any write.
func ValidateTransition(current *Status, requested Status) error {
	if err := requested.Validate(); err != nil {
		return err
	}

	if current == nil {
		if requested != Pending {
			return errs.NewValueIsInvalidErrorWithCause("status",
				fmt.Errorf("new orders must start in the %s status, got %s", Pending, requested))
		}
		return nil
	}

	if err := current.Validate(); err != nil {
		return err
	}

	if requested == *current {
		return errs.NewValueIsInvalidErrorWithCause("status",
			fmt.Errorf("order is already in the %s status", requested))
	}

	for _, successor := range transitions()[*current] {
		if successor == requested {
			return nil
		}
	}

	return errs.NewValueIsInvalidErrorWithCause("status",
		fmt.Errorf("cannot transition from %s directly to %s", *current, requested))
}
