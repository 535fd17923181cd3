package jobs

import (
	"context"
	"log/slog"

	"kds/internal/core/application/usecases/commands"

	"github.com/robfig/cron/v3"
)

// DefaultReconciliationSchedule runs the drift repair every five minutes.
const DefaultReconciliationSchedule = "0 */5 * * * *"

// ReconciliationJob periodically repairs drift between orders' cached status
// and the event log. Drift only appears through out-of-band writes or partial
// failures, so a relaxed cadence is enough.
type ReconciliationJob struct {
	handler  commands.ReconcileStatusesCommandHandler
	schedule string
	cron     *cron.Cron
	logger   *slog.Logger
}

// NewReconciliationJob creates a new drift-repair job with the given cron
// schedule (six-field, with seconds). An empty schedule falls back to the
// default five-minute cadence.
func NewReconciliationJob(
	handler commands.ReconcileStatusesCommandHandler,
	schedule string,
	logger *slog.Logger,
) *ReconciliationJob {
	if schedule == "" {
		schedule = DefaultReconciliationSchedule
	}

	return &ReconciliationJob{
		handler:  handler,
		schedule: schedule,
		cron:     cron.New(cron.WithSeconds()),
		logger:   logger.With("component", "reconciliation_job"),
	}
}

// Start begins the periodic reconciliation passes.
func (j *ReconciliationJob) Start() error {
	_, err := j.cron.AddFunc(j.schedule, func() {
		ctx := context.Background()
		cmd := commands.NewReconcileStatusesCommand()

		corrected, err := j.handler.Handle(ctx, cmd)
		if err != nil {
			j.logger.ErrorContext(ctx, "Reconciliation pass failed", "error", err)
			return
		}

		if corrected > 0 {
			j.logger.InfoContext(ctx, "Reconciliation pass corrected drifted orders", "corrected", corrected)
		}
	})

	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Reconciliation job started", "schedule", j.schedule)
	return nil
}

// Stop stops the reconciliation job.
func (j *ReconciliationJob) Stop() {
	j.cron.Stop()
	j.logger.InfoContext(context.Background(), "Reconciliation job stopped")
}
