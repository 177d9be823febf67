package commands_test

import (
	"testing"

	"consolidation/internal/core/application/usecases/commands"
	"consolidation/internal/core/domain/model/kernel"
	"consolidation/internal/core/domain/model/order"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestReplaceLineItemsCommandHandler_Handle_Success(t *testing.T) {
	ctx := t.Context()
	locality := kernel.LocalityFromString("riverside")
	pending := pendingOrder(t, locality, singleItem(t, kernel.NewUUID(), 1))
	replacement := singleItem(t, kernel.NewUUID(), 4)

	orderRepo := new(MockOrderRepository)
	orderRepo.On("Get", mock.Anything, pending.ID()).Return(pending, nil).Once()
	orderRepo.On("Update", mock.Anything, pending).Return(nil).Once()

	uow := new(MockOrderUoW)
	uow.On("Begin", mock.Anything).Return(nil).Once()
	uow.On("OrderRepository").Return(orderRepo)
	uow.On("Commit", mock.Anything).Return(nil).Once()
	uow.On("Rollback", mock.Anything).Return(nil)

	factory := new(MockOrderUoWFactory)
	factory.On("Create").Return(uow).Once()

	handler := commands.NewReplaceLineItemsCommandHandler(factory)
	cmd, err := commands.NewReplaceLineItemsCommand(pending.ID(), replacement)
	require.NoError(t, err)

	require.NoError(t, handler.Handle(ctx, cmd))

	require.Len(t, pending.LineItems(), 1)
	require.Equal(t, 4, pending.LineItems()[0].Quantity())
	uow.AssertExpectations(t)
}

func TestReplaceLineItemsCommandHandler_Handle_ApprovedOrderIsLocked(t *testing.T) {
	ctx := t.Context()
	locality := kernel.LocalityFromString("riverside")
	items := singleItem(t, kernel.NewUUID(), 1)
	approved := batchedOrder(t, locality, mustWeight(t, 10), kernel.NewUUID(), items)

	orderRepo := new(MockOrderRepository)
	orderRepo.On("Get", mock.Anything, approved.ID()).Return(approved, nil).Once()

	uow := new(MockOrderUoW)
	uow.On("Begin", mock.Anything).Return(nil).Once()
	uow.On("OrderRepository").Return(orderRepo)
	uow.On("Rollback", mock.Anything).Return(nil)

	factory := new(MockOrderUoWFactory)
	factory.On("Create").Return(uow).Once()

	handler := commands.NewReplaceLineItemsCommandHandler(factory)
	cmd, err := commands.NewReplaceLineItemsCommand(approved.ID(), singleItem(t, kernel.NewUUID(), 2))
	require.NoError(t, err)

	err = handler.Handle(ctx, cmd)
	require.ErrorIs(t, err, order.ErrLineItemsLocked)
	uow.AssertNotCalled(t, "Commit", mock.Anything)
}

func TestNewReplaceLineItemsCommand_RequiresItems(t *testing.T) {
	_, err := commands.NewReplaceLineItemsCommand(kernel.NewUUID(), nil)
	require.ErrorIs(t, err, commands.ErrLineItemsAreRequired)
}
