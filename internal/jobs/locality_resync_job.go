package jobs

import (
	"context"
	"errors"
	"log/slog"

	"consolidation/internal/core/application/usecases/commands"
	"consolidation/internal/core/ports"

	"github.com/robfig/cron/v3"
)

// LocalityResyncJob periodically recomputes aggregate weights for every
// locality with open batches. It repairs drift left behind by partial
// failures and deletes batches whose members are all gone.
type LocalityResyncJob struct {
	uowFactory ports.UnitOfWorkFactory
	handler    commands.ResyncLocalityCommandHandler
	cron       *cron.Cron
	logger     *slog.Logger
}

// NewLocalityResyncJob creates a job that resynchronizes all open localities
// every five minutes.
func NewLocalityResyncJob(
	uowFactory ports.UnitOfWorkFactory,
	handler commands.ResyncLocalityCommandHandler,
	logger *slog.Logger,
) *LocalityResyncJob {
	return &LocalityResyncJob{
		uowFactory: uowFactory,
		handler:    handler,
		cron:       cron.New(cron.WithSeconds()),
		logger:     logger.With("component", "locality_resync_job"),
	}
}

// Start begins the resync job on a five minute schedule.
func (j *LocalityResyncJob) Start() error {
	_, err := j.cron.AddFunc("0 */5 * * * *", func() {
		ctx := context.Background()
		j.run(ctx)
	})

	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Locality resync job started (running every five minutes)")
	return nil
}

// Stop stops the resync job.
func (j *LocalityResyncJob) Stop() {
	j.cron.Stop()
	j.logger.InfoContext(context.Background(), "Locality resync job stopped")
}

func (j *LocalityResyncJob) run(ctx context.Context) {
	// Repositories run against the base session when no transaction is open.
	uow := j.uowFactory.Create()

	localities, err := uow.BatchRepository().GetOpenLocalities(ctx)
	if err != nil {
		j.logger.ErrorContext(ctx, "Failed to list open localities", "error", err)
		return
	}

	for _, locality := range localities {
		cmd, err := commands.NewResyncLocalityCommand(locality.Key())
		if err != nil {
			j.logger.ErrorContext(ctx, "Failed to build resync command",
				"locality", locality.Key(), "error", err)
			continue
		}

		if err := j.handler.Handle(ctx, cmd); err != nil {
			// A busy locality has a writer in flight; the next run picks it up.
			if errors.Is(err, commands.ErrAllocationRace) {
				continue
			}
			j.logger.ErrorContext(ctx, "Locality resync failed",
				"locality", locality.Key(), "error", err)
		}
	}
}
