package commands

import (
	"context"
	"time"

	"consolidation/internal/core/domain/model/batch"
	"consolidation/internal/core/ports"
	"consolidation/internal/pkg/locks"
)

// AssignDriverCommandHandler closes an open batch by assigning a driver.
// Runs under the locality lock so the allocator cannot route a new order into
// the batch while it is being closed. The delivery status cascades to every
// member order in the same transaction.
//
// Example:
//
//	handler := NewAssignDriverCommandHandler(uowFactory, localityLocks, clock, policy, 2*time.Second)
//	cmd, _ := NewAssignDriverCommand(batchID, driverID)
//	if err := handler.Handle(ctx, cmd); err != nil {
//	    return fmt.Errorf("driver assignment failed: %w", err)
//	}
type AssignDriverCommandHandler struct {
	uowFactory    UoWFactory
	localityLocks *locks.KeyedMutex
	clock         ports.Clock
	policy        batch.AssignmentPolicy
	lockTimeout   time.Duration
}

// NewAssignDriverCommandHandler creates a handler for driver assignment.
// policy carries the cutoff hour, minimum fill ratio and scheduling deadline
// that gate and time the assignment.
func NewAssignDriverCommandHandler(
	uowFactory UoWFactory,
	localityLocks *locks.KeyedMutex,
	clock ports.Clock,
	policy batch.AssignmentPolicy,
	lockTimeout time.Duration,
) AssignDriverCommandHandler {
	return AssignDriverCommandHandler{
		uowFactory:    uowFactory,
		localityLocks: localityLocks,
		clock:         clock,
		policy:        policy,
		lockTimeout:   lockTimeout,
	}
}

// Handle processes the assignment command. The batch must be open and either
// filled to the policy minimum or past its scheduling deadline.
func (h *AssignDriverCommandHandler) Handle(ctx context.Context, cmd AssignDriverCommand) error {
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

	batchRepo := uow.BatchRepository()

	target, err := batchRepo.Get(ctx, cmd.BatchID())
	if err != nil {
		return err
	}

	release, err := lockLocality(ctx, h.localityLocks, target.Locality(), h.lockTimeout)
	if err != nil {
		return err
	}
	defer release()

	if err = target.Assign(cmd.DriverID(), h.clock.Now(), h.policy); err != nil {
		return err
	}
	if err = batchRepo.Update(ctx, target); err != nil {
		return err
	}

	orderRepo := uow.OrderRepository()

	members, err := orderRepo.GetApprovedByBatch(ctx, cmd.BatchID())
	if err != nil {
		return err
	}

	for _, member := range members {
		if err = member.MarkAssigned(); err != nil {
			return err
		}
		if err = orderRepo.Update(ctx, member); err != nil {
			return err
		}
	}

	return uow.Commit(ctx)
}
