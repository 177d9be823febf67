package commands

import (
	"errors"

	"consolidation/internal/core/domain/model/kernel"
	"consolidation/internal/core/domain/model/order"
	"consolidation/internal/pkg/guard"
)

var (
	ErrReplaceLineItemsCommandIsNotConstructed = errors.New(
		"ReplaceLineItemsCommand must be created via NewReplaceLineItemsCommand constructor",
	)
	ErrLineItemsAreRequired = errors.New("at least one line item is required")
)

// ReplaceLineItemsCommand represents a request to swap an order's line items
// for a new set. Only pending orders accept edits; approved orders have
// already been weighed and batched.
type ReplaceLineItemsCommand struct { //nolint:recvcheck //using for validation
	orderID   kernel.UUID
	lineItems []order.LineItem

	guard guard.ConstructorGuard
}

// NewReplaceLineItemsCommand creates a command to replace the order's items.
// Validates the order ID and requires a non-empty, valid item set.
func NewReplaceLineItemsCommand(
	orderID kernel.UUID,
	lineItems []order.LineItem,
) (ReplaceLineItemsCommand, error) {
	cmd := ReplaceLineItemsCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOrderID(orderID),
		cmd.setLineItems(lineItems),
	); err != nil {
		return ReplaceLineItemsCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
// Returns ErrReplaceLineItemsCommandIsNotConstructed if validation fails.
func (c ReplaceLineItemsCommand) Validate() error {
	return c.guard.Validate(ErrReplaceLineItemsCommandIsNotConstructed)
}

// OrderID returns the identifier of the order to edit.
func (c ReplaceLineItemsCommand) OrderID() kernel.UUID {
	return c.orderID
}

// LineItems returns the replacement item set.
func (c ReplaceLineItemsCommand) LineItems() []order.LineItem {
	return c.lineItems
}

func (c *ReplaceLineItemsCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}

	c.orderID = orderID

	return nil
}

func (c *ReplaceLineItemsCommand) setLineItems(lineItems []order.LineItem) error {
	if len(lineItems) == 0 {
		return ErrLineItemsAreRequired
	}

	for _, item := range lineItems {
		if err := item.Validate(); err != nil {
			return err
		}
	}

	c.lineItems = lineItems

	return nil
}
