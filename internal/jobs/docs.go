// Package jobs provides scheduled background tasks for the orchestrator.
//
// This package implements cron-based jobs using github.com/robfig/cron/v3
// to handle periodic operations required by the order lifecycle engine.
//
// # Available Jobs
//
// 1. OutboxProcessorJob - Runs every second to claim and dispatch pending outbox events
//
// # Usage
//
// Jobs are managed through JobManager which provides a unified interface:
//
//	// Create job manager with required handlers
//	jobManager := jobs.NewJobManager(processOutboxHandler, pollSpec, txTimeout, logger)
//
//	// Start all jobs
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//
//	// Stop all jobs when shutting down
//	defer jobManager.StopAll()
//
// # Scheduling
//
// The processor schedule is configurable and defaults to the cron expression
// "* * * * * *" which means it runs every second. The cascade (run to process to order) is event driven, so a
// single order can take several ticks to settle end to end; one second keeps
// that latency negligible without hammering the database.
//
// # Error Handling
//
// A failing event is rolled back to its savepoint and retried on a later
// tick; the rest of the batch still commits. Tick-level failures are logged
// and the next tick starts fresh.
package jobs
