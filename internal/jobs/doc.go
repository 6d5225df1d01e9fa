// Package jobs runs the Aisle API's background processors.
//
// Each job wraps one service call in a ticker loop. The first pass runs a
// few seconds after Start; later passes run every interval until Stop.
// Failures are logged and counted in aisle_job_runs_total but never stop
// the loop.
//
//   - OverdueProcessor: announces timeline tasks that passed their due date
//   - TokenCleanup: deletes expired and long-revoked refresh tokens
//
// Example:
//
//	overdue := jobs.NewOverdueProcessor(timelineService, cfg.Jobs.OverdueInterval)
//	overdue.Start()
//	defer overdue.Stop()
package jobs
