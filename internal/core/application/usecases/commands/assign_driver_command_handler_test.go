package commands_test

import (
	"testing"
	"time"

	"consolidation/internal/core/application/usecases/commands"
	"consolidation/internal/core/domain/model/batch"
	"consolidation/internal/core/domain/model/kernel"
	"consolidation/internal/core/domain/model/order"
	"consolidation/internal/pkg/locks"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testAssignmentPolicy() batch.AssignmentPolicy {
	return batch.AssignmentPolicy{
		CutoffHour:   14,
		MinFillRatio: 0.8,
		Deadline:     24 * time.Hour,
	}
}

func TestAssignDriverCommandHandler_Handle_ClosesBatchAndCascades(t *testing.T) {
	ctx := t.Context()
	now := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)
	locality := kernel.LocalityFromString("riverside")
	driverID := kernel.NewUUID()
	items := singleItem(t, kernel.NewUUID(), 1)

	target := openBatch(t, kernel.NewUUID(), locality,
		mustWeight(t, 3500), mustWeight(t, 3000), now.Add(-2*time.Hour))
	first := batchedOrder(t, locality, mustWeight(t, 1500), target.ID(), items)
	second := batchedOrder(t, locality, mustWeight(t, 1500), target.ID(), items)

	batchRepo := new(MockBatchRepository)
	batchRepo.On("Get", mock.Anything, target.ID()).Return(target, nil).Once()
	batchRepo.On("Update", mock.Anything, target).Return(nil).Once()

	orderRepo := new(MockOrderRepository)
	orderRepo.On("GetApprovedByBatch", mock.Anything, target.ID()).
		Return([]*order.Order{first, second}, nil).Once()
	orderRepo.On("Update", mock.Anything, first).Return(nil).Once()
	orderRepo.On("Update", mock.Anything, second).Return(nil).Once()

	uow := new(MockUoW)
	uow.On("Begin", mock.Anything).Return(nil).Once()
	uow.On("OrderRepository").Return(orderRepo)
	uow.On("BatchRepository").Return(batchRepo)
	uow.On("Commit", mock.Anything).Return(nil).Once()
	uow.On("Rollback", mock.Anything).Return(nil)

	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow).Once()

	handler := commands.NewAssignDriverCommandHandler(
		factory, locks.NewKeyedMutex(), stubClock{now: now}, testAssignmentPolicy(), time.Second,
	)
	cmd, err := commands.NewAssignDriverCommand(target.ID(), driverID)
	require.NoError(t, err)

	require.NoError(t, handler.Handle(ctx, cmd))

	require.Equal(t, batch.Assigned, target.Status())
	require.NotNil(t, target.Driver())
	require.True(t, target.Driver().IsEqual(driverID))
	require.NotNil(t, target.ScheduledDate())
	require.Equal(t, time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC), *target.ScheduledDate())
	require.Equal(t, order.DeliveryAssigned, first.DeliveryStatus())
	require.Equal(t, order.DeliveryAssigned, second.DeliveryStatus())

	orderRepo.AssertExpectations(t)
	batchRepo.AssertExpectations(t)
	uow.AssertExpectations(t)
}

func TestAssignDriverCommandHandler_Handle_UnderfilledBatchBeforeDeadlineIsRefused(t *testing.T) {
	ctx := t.Context()
	now := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)
	locality := kernel.LocalityFromString("riverside")

	target := openBatch(t, kernel.NewUUID(), locality,
		mustWeight(t, 3500), mustWeight(t, 1000), now.Add(-time.Hour))

	batchRepo := new(MockBatchRepository)
	batchRepo.On("Get", mock.Anything, target.ID()).Return(target, nil).Once()

	uow := new(MockUoW)
	uow.On("Begin", mock.Anything).Return(nil).Once()
	uow.On("BatchRepository").Return(batchRepo)
	uow.On("Rollback", mock.Anything).Return(nil)

	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow).Once()

	handler := commands.NewAssignDriverCommandHandler(
		factory, locks.NewKeyedMutex(), stubClock{now: now}, testAssignmentPolicy(), time.Second,
	)
	cmd, err := commands.NewAssignDriverCommand(target.ID(), kernel.NewUUID())
	require.NoError(t, err)

	err = handler.Handle(ctx, cmd)
	require.ErrorIs(t, err, batch.ErrBatchNotReadyForAssignment)

	require.Equal(t, batch.Open, target.Status())
	uow.AssertNotCalled(t, "Commit", mock.Anything)
}

func TestAssignDriverCommandHandler_Handle_DeadlineWaivesMinimumFill(t *testing.T) {
	ctx := t.Context()
	now := time.Date(2025, 3, 10, 16, 0, 0, 0, time.UTC)
	locality := kernel.LocalityFromString("riverside")
	items := singleItem(t, kernel.NewUUID(), 1)

	target := openBatch(t, kernel.NewUUID(), locality,
		mustWeight(t, 3500), mustWeight(t, 200), now.Add(-25*time.Hour))
	lone := batchedOrder(t, locality, mustWeight(t, 200), target.ID(), items)

	batchRepo := new(MockBatchRepository)
	batchRepo.On("Get", mock.Anything, target.ID()).Return(target, nil).Once()
	batchRepo.On("Update", mock.Anything, target).Return(nil).Once()

	orderRepo := new(MockOrderRepository)
	orderRepo.On("GetApprovedByBatch", mock.Anything, target.ID()).
		Return([]*order.Order{lone}, nil).Once()
	orderRepo.On("Update", mock.Anything, lone).Return(nil).Once()

	uow := new(MockUoW)
	uow.On("Begin", mock.Anything).Return(nil).Once()
	uow.On("OrderRepository").Return(orderRepo)
	uow.On("BatchRepository").Return(batchRepo)
	uow.On("Commit", mock.Anything).Return(nil).Once()
	uow.On("Rollback", mock.Anything).Return(nil)

	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow).Once()

	handler := commands.NewAssignDriverCommandHandler(
		factory, locks.NewKeyedMutex(), stubClock{now: now}, testAssignmentPolicy(), time.Second,
	)
	cmd, err := commands.NewAssignDriverCommand(target.ID(), kernel.NewUUID())
	require.NoError(t, err)

	require.NoError(t, handler.Handle(ctx, cmd))

	// assignment at 16:00 is past the 14:00 cutoff, delivery lands the day after next
	require.Equal(t, time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC), *target.ScheduledDate())
}
