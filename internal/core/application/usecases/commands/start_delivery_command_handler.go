package commands

import (
	"context"
)

// StartDeliveryCommandHandler moves an assigned batch to delivering and
// cascades the transition to every member order in the same transaction.
type StartDeliveryCommandHandler struct {
	uowFactory UoWFactory
}

// NewStartDeliveryCommandHandler creates a handler for starting delivery.
func NewStartDeliveryCommandHandler(uowFactory UoWFactory) StartDeliveryCommandHandler {
	return StartDeliveryCommandHandler{
		uowFactory: uowFactory,
	}
}

// Handle processes the start delivery command.
func (h *StartDeliveryCommandHandler) Handle(ctx context.Context, cmd StartDeliveryCommand) error {
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

	if err = target.StartDelivery(); err != nil {
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
		if err = member.MarkDelivering(); err != nil {
			return err
		}
		if err = orderRepo.Update(ctx, member); err != nil {
			return err
		}
	}

	return uow.Commit(ctx)
}
