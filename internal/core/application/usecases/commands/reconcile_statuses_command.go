package commands

import (
	"errors"

	"kds/internal/pkg/guard"
)

var (
	ErrReconcileStatusesCommandIsNotConstructed = errors.New(
		"ReconcileStatusesCommand must be created via NewReconcileStatusesCommand constructor",
	)
)

// ReconcileStatusesCommand triggers one pass of the drift-repair batch: every
// order whose cached status disagrees with its latest event is corrected to
// match the event log. This is a parameterless command issued by the
// reconciliation job on its schedule.
type ReconcileStatusesCommand struct {
	guard guard.ConstructorGuard
}

// NewReconcileStatusesCommand creates a reconciliation trigger.
func NewReconcileStatusesCommand() ReconcileStatusesCommand {
	return ReconcileStatusesCommand{guard: guard.NewConstructorGuard()}
}

// Validate ensures the command was created through the constructor.
func (c ReconcileStatusesCommand) Validate() error {
	return c.guard.Validate(ErrReconcileStatusesCommandIsNotConstructed)
}
