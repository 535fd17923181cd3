package commands

import (
	"context"
	"log/slog"
)

// ReconcileStatusesCommandHandler repairs drift between orders' cached status
// and the event log. The log is the source of truth: the cached field is
// always the one overwritten, never the timeline.
//
// The pass is idempotent: with no new events between two runs, the second run
// finds no drift and performs zero writes. No locks are taken; production
// traffic running concurrently may re-introduce drift right after a
// correction, which is acceptable because the job runs periodically rather
// than guaranteeing consistency.
type ReconcileStatusesCommandHandler struct {
	uowFactory UoWFactory
	logger     *slog.Logger
}

// NewReconcileStatusesCommandHandler creates a handler for the drift-repair batch.
func NewReconcileStatusesCommandHandler(uowFactory UoWFactory, logger *slog.Logger) ReconcileStatusesCommandHandler {
	return ReconcileStatusesCommandHandler{
		uowFactory: uowFactory,
		logger:     logger.With("component", "reconcile_statuses_handler"),
	}
}

// Handle runs one reconciliation pass and returns the number of corrected orders.
func (h *ReconcileStatusesCommandHandler) Handle(ctx context.Context, cmd ReconcileStatusesCommand) (int, error) {
	if err := cmd.Validate(); err != nil {
		return 0, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orderRepo := uow.OrderRepository()
	drifts, err := orderRepo.FindDrifted(ctx)
	if err != nil {
		return 0, err
	}

	for _, drift := range drifts {
		order, getErr := orderRepo.Get(ctx, drift.OrderID)
		if getErr != nil {
			return 0, getErr
		}

		if chErr := order.ChangeStatus(drift.Actual); chErr != nil {
			return 0, chErr
		}

		if upErr := orderRepo.Update(ctx, order); upErr != nil {
			return 0, upErr
		}

		h.logger.InfoContext(ctx, "Corrected drifted order status",
			"order_id", drift.OrderID.String(),
			"cached_status", drift.Cached.String(),
			"actual_status", drift.Actual.String(),
		)
	}

	if err = uow.Commit(ctx); err != nil {
		return 0, err
	}

	return len(drifts), nil
}
