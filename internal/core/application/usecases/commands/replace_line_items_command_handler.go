package commands

import (
	"context"
)

// ReplaceLineItemsCommandHandler swaps a pending order's line items. The
// order's weight is not recomputed here; weighing happens at approval so the
// stored weight always reflects the catalog at batching time.
//
// Example:
//
//	handler := NewReplaceLineItemsCommandHandler(uowFactory)
//	cmd, _ := NewReplaceLineItemsCommand(orderID, items)
//	if err := handler.Handle(ctx, cmd); err != nil {
//	    return fmt.Errorf("item replacement failed: %w", err)
//	}
type ReplaceLineItemsCommandHandler struct {
	uowFactory OrderUoWFactory
}

// NewReplaceLineItemsCommandHandler creates a handler for line item edits.
func NewReplaceLineItemsCommandHandler(uowFactory OrderUoWFactory) ReplaceLineItemsCommandHandler {
	return ReplaceLineItemsCommandHandler{
		uowFactory: uowFactory,
	}
}

// Handle processes the replacement command. Rejects edits on orders that are
// past the pending state.
func (h *ReplaceLineItemsCommandHandler) Handle(ctx context.Context, cmd ReplaceLineItemsCommand) error {
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

	if err = target.ReplaceLineItems(cmd.LineItems()); err != nil {
		return err
	}
	if err = orderRepo.Update(ctx, target); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
