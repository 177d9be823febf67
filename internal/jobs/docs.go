// Package jobs provides scheduled background tasks for the consolidation system.
//
// This package implements cron-based jobs using github.com/robfig/cron/v3
// to handle periodic operations required for batch consolidation.
//
// # Available Jobs
//
// 1. LocalityResyncJob - Runs every five minutes to recompute aggregate weights
// and remove orphaned batches in every locality with open batches
// 2. StaleBatchAlertJob - Runs every minute to flag open batches that passed
// the assignment deadline without a driver
//
// # Usage
//
// Jobs are managed through JobManager which provides a unified interface:
//
//	// Create job manager with required dependencies
//	jobManager := jobs.NewJobManager(uowFactory, resyncHandler, clock, deadline, logger)
//
//	// Start all jobs
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//
//	// Stop all jobs when shutting down
//	defer jobManager.StopAll()
//
// # Error Handling
//
// - Resync skips localities whose lock is held; a writer is active and the
// next run will repair any drift it leaves
// - Alert job only logs; driver assignment needs an operator decision
// - Failed job starts will stop any already running jobs
package jobs
