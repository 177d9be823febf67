package commands

import (
	"context"
	"time"

	"consolidation/internal/pkg/locks"
)

// ResyncLocalityCommandHandler reconciles every batch of one locality inside
// a single transaction, all under the locality lock. Aggregate weights are
// recomputed from stored approved members and any batch left without members
// is deleted.
//
// Example:
//
//	handler := NewResyncLocalityCommandHandler(uowFactory, localityLocks, 2*time.Second)
//	cmd, _ := NewResyncLocalityCommand("riverside")
//	if err := handler.Handle(ctx, cmd); err != nil {
//	    return fmt.Errorf("resync failed: %w", err)
//	}
type ResyncLocalityCommandHandler struct {
	uowFactory    UoWFactory
	localityLocks *locks.KeyedMutex
	lockTimeout   time.Duration
}

// NewResyncLocalityCommandHandler creates a handler for locality resync.
func NewResyncLocalityCommandHandler(
	uowFactory UoWFactory,
	localityLocks *locks.KeyedMutex,
	lockTimeout time.Duration,
) ResyncLocalityCommandHandler {
	return ResyncLocalityCommandHandler{
		uowFactory:    uowFactory,
		localityLocks: localityLocks,
		lockTimeout:   lockTimeout,
	}
}

// Handle processes the resync command.
func (h *ResyncLocalityCommandHandler) Handle(ctx context.Context, cmd ResyncLocalityCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	release, err := lockLocality(ctx, h.localityLocks, cmd.Locality(), h.lockTimeout)
	if err != nil {
		return err
	}
	defer release()

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	batches, err := uow.BatchRepository().GetAllByLocality(ctx, cmd.Locality())
	if err != nil {
		return err
	}

	for _, target := range batches {
		if err = reconcileBatch(ctx, uow, target.ID()); err != nil {
			return err
		}
	}

	return uow.Commit(ctx)
}
