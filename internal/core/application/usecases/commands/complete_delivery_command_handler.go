package commands

import (
	"context"
)

// CompleteDeliveryCommandHandler moves a delivering batch to delivered and
// cascades the terminal transition to every member order in the same
// transaction.
type CompleteDeliveryCommandHandler struct {
	uowFactory UoWFactory
}

// NewCompleteDeliveryCommandHandler creates a handler for delivery completion.
func NewCompleteDeliveryCommandHandler(uowFactory UoWFactory) CompleteDeliveryCommandHandler {
	return CompleteDeliveryCommandHandler{
		uowFactory: uowFactory,
	}
}

// Handle processes the completion command.
func (h *CompleteDeliveryCommandHandler) Handle(ctx context.Context, cmd CompleteDeliveryCommand) error {
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

	if err = target.CompleteDelivery(); err != nil {
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
		if err = member.MarkDelivered(); err != nil {
			return err
		}
		if err = orderRepo.Update(ctx, member); err != nil {
			return err
		}
	}

	return uow.Commit(ctx)
}
