package commands

import (
	"context"
	"time"

	"consolidation/internal/pkg/locks"
)

// RejectOrderCommandHandler rejects an order. When the order sits in a batch,
// the batch reference is severed and the batch is reconciled in the same
// transaction, which may delete it if the order was its last approved member.
//
// Example:
//
//	handler := NewRejectOrderCommandHandler(uowFactory, localityLocks, 2*time.Second)
//	cmd, _ := NewRejectOrderCommand(orderID)
//	if err := handler.Handle(ctx, cmd); err != nil {
//	    return fmt.Errorf("rejection failed: %w", err)
//	}
type RejectOrderCommandHandler struct {
	uowFactory    UoWFactory
	localityLocks *locks.KeyedMutex
	lockTimeout   time.Duration
}

// NewRejectOrderCommandHandler creates a handler for order rejection.
func NewRejectOrderCommandHandler(
	uowFactory UoWFactory,
	localityLocks *locks.KeyedMutex,
	lockTimeout time.Duration,
) RejectOrderCommandHandler {
	return RejectOrderCommandHandler{
		uowFactory:    uowFactory,
		localityLocks: localityLocks,
		lockTimeout:   lockTimeout,
	}
}

// Handle processes the rejection command.
func (h *RejectOrderCommandHandler) Handle(ctx context.Context, cmd RejectOrderCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orderRepo := uow.OrderRepository()

	target, err := orderRepo.Get(ctx, cmd.OrderID())
	if err != nil {
		return err
	}

	// The locality lock is taken unconditionally: a concurrent approve may be
	// attaching this order right now, so the pre-lock snapshot cannot decide
	// whether a batch needs reconciling.
	release, err := lockLocality(ctx, h.localityLocks, target.Locality(), h.lockTimeout)
	if err != nil {
		return err
	}
	defer release()

	// Re-read under the lock so the batch reference is current.
	target, err = orderRepo.Get(ctx, cmd.OrderID())
	if err != nil {
		return err
	}

	batchRef := target.Batch()

	if err = target.Reject(); err != nil {
		return err
	}
	if err = orderRepo.Update(ctx, target); err != nil {
		return err
	}

	if batchRef != nil {
		if err = reconcileBatch(ctx, uow, *batchRef); err != nil {
			return err
		}
	}

	return uow.Commit(ctx)
}
