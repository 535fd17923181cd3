// Package jobs provides scheduled background tasks for the kitchen engine.
//
// This package implements cron-based jobs using github.com/robfig/cron/v3.
//
// # Available Jobs
//
// 1. ReconciliationJob - Periodically repairs drift between orders' cached
// status and the event log. The event log is the source of truth; the cached
// column is the one corrected.
//
// # Usage
//
// Jobs are managed through JobManager which provides a unified interface:
//
//	jobManager := jobs.NewJobManager(reconcileHandler, schedule, logger)
//
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//
//	defer jobManager.StopAll()
//
// # Scheduling
//
// The reconciliation job defaults to "0 */5 * * * *" (every five minutes).
// Drift is rare and repaired eventually, not urgently; the schedule is
// configurable for deployments with heavier out-of-band write traffic.
package jobs
