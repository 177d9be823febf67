package jobs

import (
	"fmt"
	"log/slog"
	"time"

	"consolidation/internal/core/application/usecases/commands"
	"consolidation/internal/core/ports"
)

// JobManager coordinates all scheduled jobs in the application.
// Provides a unified interface to start and stop all background jobs.
type JobManager struct {
	localityResyncJob  *LocalityResyncJob
	staleBatchAlertJob *StaleBatchAlertJob
}

// NewJobManager creates a new job manager with all required jobs.
// Takes repositories and the resync handler as dependencies to wire up
// job execution.
func NewJobManager(
	uowFactory ports.UnitOfWorkFactory,
	resyncHandler commands.ResyncLocalityCommandHandler,
	clock ports.Clock,
	assignmentDeadline time.Duration,
	logger *slog.Logger,
) *JobManager {
	return &JobManager{
		localityResyncJob:  NewLocalityResyncJob(uowFactory, resyncHandler, logger),
		staleBatchAlertJob: NewStaleBatchAlertJob(uowFactory, clock, assignmentDeadline, logger),
	}
}

// StartAll starts all scheduled jobs.
// Returns an error if any job fails to start.
func (jm *JobManager) StartAll() error {
	if err := jm.localityResyncJob.Start(); err != nil {
		return fmt.Errorf("failed to start locality resync job: %w", err)
	}

	if err := jm.staleBatchAlertJob.Start(); err != nil {
		// Stop already started jobs if this one fails
		jm.localityResyncJob.Stop()
		return fmt.Errorf("failed to start stale batch alert job: %w", err)
	}

	return nil
}

// StopAll stops all scheduled jobs gracefully.
func (jm *JobManager) StopAll() {
	jm.staleBatchAlertJob.Stop()
	jm.localityResyncJob.Stop()
}
