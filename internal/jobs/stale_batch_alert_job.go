package jobs

import (
	"context"
	"log/slog"
	"time"

	"consolidation/internal/core/ports"

	"github.com/robfig/cron/v3"
)

// StaleBatchAlertJob surfaces open batches that have passed the assignment
// deadline without being dispatched. Assignment itself requires an operator
// to pick a driver, so the job alerts rather than acts.
type StaleBatchAlertJob struct {
	uowFactory ports.UnitOfWorkFactory
	clock      ports.Clock
	deadline   time.Duration
	cron       *cron.Cron
	logger     *slog.Logger
}

// NewStaleBatchAlertJob creates a job that checks for overdue open batches
// every minute. A batch is overdue once its age exceeds the deadline.
func NewStaleBatchAlertJob(
	uowFactory ports.UnitOfWorkFactory,
	clock ports.Clock,
	deadline time.Duration,
	logger *slog.Logger,
) *StaleBatchAlertJob {
	return &StaleBatchAlertJob{
		uowFactory: uowFactory,
		clock:      clock,
		deadline:   deadline,
		cron:       cron.New(cron.WithSeconds()),
		logger:     logger.With("component", "stale_batch_alert_job"),
	}
}

// Start begins the stale batch check on a one minute schedule.
func (j *StaleBatchAlertJob) Start() error {
	_, err := j.cron.AddFunc("0 * * * * *", func() {
		ctx := context.Background()
		j.run(ctx)
	})

	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Stale batch alert job started (running every minute)")
	return nil
}

// Stop stops the stale batch check.
func (j *StaleBatchAlertJob) Stop() {
	j.cron.Stop()
	j.logger.InfoContext(context.Background(), "Stale batch alert job stopped")
}

func (j *StaleBatchAlertJob) run(ctx context.Context) {
	uow := j.uowFactory.Create()

	cutoff := j.clock.Now().Add(-j.deadline)
	stale, err := uow.BatchRepository().GetStaleOpen(ctx, cutoff)
	if err != nil {
		j.logger.ErrorContext(ctx, "Failed to list stale batches", "error", err)
		return
	}

	for _, b := range stale {
		j.logger.WarnContext(ctx, "Open batch passed assignment deadline",
			"batch_id", b.ID().String(),
			"locality", b.Locality().Key(),
			"aggregate_weight", b.AggregateWeight().String(),
			"created_at", b.CreatedAt(),
		)
	}
}
