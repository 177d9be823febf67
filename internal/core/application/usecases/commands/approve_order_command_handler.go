package commands

import (
	"context"
	"errors"
	"time"

	"consolidation/internal/core/domain/model/batch"
	"consolidation/internal/core/domain/model/kernel"
	"consolidation/internal/core/domain/model/order"
	"consolidation/internal/core/domain/services"
	"consolidation/internal/core/ports"
	"consolidation/internal/pkg/locks"

	"github.com/cenkalti/backoff/v4"
)

// ApproveOrderCommandHandler approves a pending order and routes it into a
// capacity-bounded batch for its locality. The whole approve-allocate-reconcile
// sequence runs under the locality lock inside a single transaction, and the
// operation retries with exponential backoff when the lock is contended.
//
// Example:
//
//	handler := NewApproveOrderCommandHandler(
//	    uowFactory, resolver, allocator, localityLocks, clock,
//	    capacity, 2*time.Second, 5,
//	)
//	cmd, _ := NewApproveOrderCommand(orderID)
//	if err := handler.Handle(ctx, cmd); err != nil {
//	    return fmt.Errorf("approval failed: %w", err)
//	}
type ApproveOrderCommandHandler struct {
	uowFactory    UoWFactory
	resolver      services.WeightResolver
	allocator     services.Allocator
	localityLocks *locks.KeyedMutex
	clock         ports.Clock
	capacity      kernel.Weight
	lockTimeout   time.Duration
	maxRetries    uint64
}

// NewApproveOrderCommandHandler creates a handler for order approval.
// capacity is the payload ceiling applied to every batch it creates,
// lockTimeout bounds the wait for the locality lock, and maxRetries limits
// backoff retries after lock contention.
func NewApproveOrderCommandHandler(
	uowFactory UoWFactory,
	resolver services.WeightResolver,
	allocator services.Allocator,
	localityLocks *locks.KeyedMutex,
	clock ports.Clock,
	capacity kernel.Weight,
	lockTimeout time.Duration,
	maxRetries uint64,
) ApproveOrderCommandHandler {
	return ApproveOrderCommandHandler{
		uowFactory:    uowFactory,
		resolver:      resolver,
		allocator:     allocator,
		localityLocks: localityLocks,
		clock:         clock,
		capacity:      capacity,
		lockTimeout:   lockTimeout,
		maxRetries:    maxRetries,
	}
}

// Handle processes the approval command. Lock contention surfaces as
// ErrAllocationRace and is retried with exponential backoff up to the
// configured attempt limit; every other failure is permanent.
func (h *ApproveOrderCommandHandler) Handle(ctx context.Context, cmd ApproveOrderCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	operation := func() error {
		err := h.approve(ctx, cmd)
		if err == nil || errors.Is(err, ErrAllocationRace) {
			return err
		}

		return backoff.Permanent(err)
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), h.maxRetries),
		ctx,
	)

	return backoff.Retry(operation, policy)
}

func (h *ApproveOrderCommandHandler) approve(ctx context.Context, cmd ApproveOrderCommand) error {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orderRepo := uow.OrderRepository()

	pending, err := orderRepo.Get(ctx, cmd.OrderID())
	if err != nil {
		return err
	}

	weight, weightErr := h.resolver.Resolve(ctx, pending.LineItems())
	if weightErr != nil {
		// The order stays visibly approved but unbatched until catalog data
		// is corrected and line items are resubmitted.
		return errors.Join(weightErr, h.approveUnbatched(ctx, uow, pending))
	}

	if err = pending.Approve(); err != nil {
		return err
	}
	if err = pending.UpdateWeight(weight); err != nil {
		return err
	}

	release, err := lockLocality(ctx, h.localityLocks, pending.Locality(), h.lockTimeout)
	if err != nil {
		return err
	}
	defer release()

	batchRepo := uow.BatchRepository()

	candidates, err := batchRepo.GetOpenByLocality(ctx, pending.Locality())
	if err != nil {
		return err
	}

	target, err := h.allocator.FindBatch(weight, pending.Locality(), candidates)
	if errors.Is(err, services.ErrNoBatchFits) {
		target, err = h.openBatch(ctx, batchRepo, pending.Locality(), weight)
	}
	if err != nil {
		return err
	}

	if err = pending.AttachToBatch(target.ID(), target.Locality()); err != nil {
		return err
	}
	if err = orderRepo.Update(ctx, pending); err != nil {
		return err
	}

	if err = reconcileBatch(ctx, uow, target.ID()); err != nil {
		return err
	}

	return uow.Commit(ctx)
}

// approveUnbatched records the approval even though weight resolution failed,
// so the order is not silently dropped.
func (h *ApproveOrderCommandHandler) approveUnbatched(
	ctx context.Context,
	uow UoW,
	pending *order.Order,
) error {
	if err := pending.Approve(); err != nil {
		return err
	}
	if err := uow.OrderRepository().Update(ctx, pending); err != nil {
		return err
	}

	return uow.Commit(ctx)
}

// openBatch creates a fresh batch seeded with the triggering order's weight.
func (h *ApproveOrderCommandHandler) openBatch(
	ctx context.Context,
	batchRepo ports.BatchRepository,
	locality kernel.Locality,
	weight kernel.Weight,
) (*batch.Batch, error) {
	created, err := batch.NewBatch(kernel.NewUUID(), locality, h.capacity, weight, h.clock.Now())
	if err != nil {
		return nil, err
	}

	if err = batchRepo.Add(ctx, created); err != nil {
		return nil, err
	}

	return created, nil
}
