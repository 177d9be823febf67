package commands_test

import (
	"context"
	"testing"
	"time"

	"consolidation/internal/core/application/usecases/commands"
	"consolidation/internal/core/domain/model/batch"
	"consolidation/internal/core/domain/model/kernel"
	"consolidation/internal/core/domain/model/order"
	"consolidation/internal/core/domain/services"
	"consolidation/internal/pkg/locks"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newApproveHandler(
	factory commands.UoWFactory,
	catalog services.UnitWeightSource,
	localityLocks *locks.KeyedMutex,
	capacity kernel.Weight,
	now time.Time,
) commands.ApproveOrderCommandHandler {
	return commands.NewApproveOrderCommandHandler(
		factory,
		services.NewWeightResolver(catalog),
		services.NewAllocator(services.TightestFit),
		localityLocks,
		stubClock{now: now},
		capacity,
		time.Second,
		1,
	)
}

func TestApproveOrderCommandHandler_Handle_AttachesToExistingBatch(t *testing.T) {
	ctx := t.Context()
	now := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)
	locality := kernel.LocalityFromString("riverside")
	capacity := mustWeight(t, 3500)

	productID := kernel.NewUUID()
	items := singleItem(t, productID, 2)
	pending := pendingOrder(t, locality, items)

	existing := openBatch(t, kernel.NewUUID(), locality, capacity, mustWeight(t, 100), now.Add(-time.Hour))
	sibling := batchedOrder(t, locality, mustWeight(t, 100), existing.ID(), items)

	catalog := new(MockProductCatalog)
	catalog.On("UnitWeight", mock.Anything, productID).Return(mustWeight(t, 5), nil)

	orderRepo := new(MockOrderRepository)
	orderRepo.On("Get", mock.Anything, pending.ID()).Return(pending, nil).Once()
	orderRepo.On("Update", mock.Anything, pending).Return(nil).Once()
	orderRepo.On("GetApprovedByBatch", mock.Anything, existing.ID()).
		Return([]*order.Order{sibling, pending}, nil).Once()

	batchRepo := new(MockBatchRepository)
	batchRepo.On("GetOpenByLocality", mock.Anything, locality).
		Return([]*batch.Batch{existing}, nil).Once()
	batchRepo.On("Get", mock.Anything, existing.ID()).Return(existing, nil).Once()
	batchRepo.On("Update", mock.Anything, existing).Return(nil).Once()

	uow := new(MockUoW)
	uow.On("Begin", mock.Anything).Return(nil).Once()
	uow.On("OrderRepository").Return(orderRepo)
	uow.On("BatchRepository").Return(batchRepo)
	uow.On("Commit", mock.Anything).Return(nil).Once()
	uow.On("Rollback", mock.Anything).Return(nil)

	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow).Once()

	handler := newApproveHandler(factory, catalog, locks.NewKeyedMutex(), capacity, now)
	cmd, err := commands.NewApproveOrderCommand(pending.ID())
	require.NoError(t, err)

	require.NoError(t, handler.Handle(ctx, cmd))

	require.Equal(t, order.Approved, pending.ApprovalStatus())
	require.NotNil(t, pending.Batch())
	require.True(t, pending.Batch().IsEqual(existing.ID()))
	require.True(t, pending.Weight().IsEqual(mustWeight(t, 10)))
	require.True(t, existing.AggregateWeight().IsEqual(mustWeight(t, 110)))

	orderRepo.AssertExpectations(t)
	batchRepo.AssertExpectations(t)
	uow.AssertExpectations(t)
}

func TestApproveOrderCommandHandler_Handle_OpensNewBatchWhenNoneFits(t *testing.T) {
	ctx := t.Context()
	now := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)
	locality := kernel.LocalityFromString("riverside")
	capacity := mustWeight(t, 3500)

	productID := kernel.NewUUID()
	items := singleItem(t, productID, 3)
	pending := pendingOrder(t, locality, items)

	catalog := new(MockProductCatalog)
	catalog.On("UnitWeight", mock.Anything, productID).Return(mustWeight(t, 400), nil)

	var created *batch.Batch

	orderRepo := new(MockOrderRepository)
	orderRepo.On("Get", mock.Anything, pending.ID()).Return(pending, nil).Once()
	orderRepo.On("Update", mock.Anything, pending).Return(nil).Once()
	orderRepo.On("GetApprovedByBatch", mock.Anything, mock.Anything).
		Return([]*order.Order{pending}, nil).Once()

	batchRepo := new(MockBatchRepository)
	batchRepo.On("GetOpenByLocality", mock.Anything, locality).Return(nil, nil).Once()
	batchRepo.On("Add", mock.Anything, mock.AnythingOfType("*batch.Batch")).
		Run(func(args mock.Arguments) {
			created = args.Get(1).(*batch.Batch)
		}).Return(nil).Once()
	batchRepo.On("Get", mock.Anything, mock.Anything).
		Return(func() *batch.Batch { return created }, nil).Once()
	batchRepo.On("Update", mock.Anything, mock.AnythingOfType("*batch.Batch")).Return(nil).Once()

	uow := new(MockUoW)
	uow.On("Begin", mock.Anything).Return(nil).Once()
	uow.On("OrderRepository").Return(orderRepo)
	uow.On("BatchRepository").Return(batchRepo)
	uow.On("Commit", mock.Anything).Return(nil).Once()
	uow.On("Rollback", mock.Anything).Return(nil)

	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow).Once()

	handler := newApproveHandler(factory, catalog, locks.NewKeyedMutex(), capacity, now)
	cmd, err := commands.NewApproveOrderCommand(pending.ID())
	require.NoError(t, err)

	require.NoError(t, handler.Handle(ctx, cmd))

	require.NotNil(t, created)
	require.True(t, created.Locality().IsEqual(locality))
	require.True(t, created.Capacity().IsEqual(capacity))
	require.True(t, created.AggregateWeight().IsEqual(mustWeight(t, 1200)))
	require.Equal(t, now, created.CreatedAt())
	require.NotNil(t, pending.Batch())
	require.True(t, pending.Batch().IsEqual(created.ID()))

	batchRepo.AssertExpectations(t)
	uow.AssertExpectations(t)
}

func TestApproveOrderCommandHandler_Handle_UnresolvableWeightLeavesOrderUnbatched(t *testing.T) {
	ctx := t.Context()
	now := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)
	locality := kernel.LocalityFromString("riverside")

	productID := kernel.NewUUID()
	items := singleItem(t, productID, 1)
	pending := pendingOrder(t, locality, items)

	catalog := new(MockProductCatalog)
	catalog.On("UnitWeight", mock.Anything, productID).
		Return(kernel.Weight{}, context.DeadlineExceeded)

	orderRepo := new(MockOrderRepository)
	orderRepo.On("Get", mock.Anything, pending.ID()).Return(pending, nil).Once()
	orderRepo.On("Update", mock.Anything, pending).Return(nil).Once()

	uow := new(MockUoW)
	uow.On("Begin", mock.Anything).Return(nil).Once()
	uow.On("OrderRepository").Return(orderRepo)
	uow.On("Commit", mock.Anything).Return(nil).Once()
	uow.On("Rollback", mock.Anything).Return(nil)

	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow).Once()

	handler := newApproveHandler(factory, catalog, locks.NewKeyedMutex(), mustWeight(t, 3500), now)
	cmd, err := commands.NewApproveOrderCommand(pending.ID())
	require.NoError(t, err)

	err = handler.Handle(ctx, cmd)
	require.ErrorIs(t, err, services.ErrInvalidWeight)

	require.Equal(t, order.Approved, pending.ApprovalStatus())
	require.False(t, pending.IsBatched())

	orderRepo.AssertExpectations(t)
	uow.AssertExpectations(t)
}

func TestApproveOrderCommandHandler_Handle_LockContentionSurfacesAllocationRace(t *testing.T) {
	ctx := t.Context()
	now := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)
	locality := kernel.LocalityFromString("riverside")

	productID := kernel.NewUUID()
	items := singleItem(t, productID, 1)
	pending := pendingOrder(t, locality, items)

	catalog := new(MockProductCatalog)
	catalog.On("UnitWeight", mock.Anything, productID).Return(mustWeight(t, 5), nil)

	orderRepo := new(MockOrderRepository)
	orderRepo.On("Get", mock.Anything, pending.ID()).Return(pending, nil)

	uow := new(MockUoW)
	uow.On("Begin", mock.Anything).Return(nil)
	uow.On("OrderRepository").Return(orderRepo)
	uow.On("Rollback", mock.Anything).Return(nil)

	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow)

	localityLocks := locks.NewKeyedMutex()
	release, err := localityLocks.Lock(ctx, locality.Key())
	require.NoError(t, err)
	defer release()

	handler := commands.NewApproveOrderCommandHandler(
		factory,
		services.NewWeightResolver(catalog),
		services.NewAllocator(services.TightestFit),
		localityLocks,
		stubClock{now: now},
		mustWeight(t, 3500),
		10*time.Millisecond,
		1,
	)

	cmd, err := commands.NewApproveOrderCommand(pending.ID())
	require.NoError(t, err)

	err = handler.Handle(ctx, cmd)
	require.ErrorIs(t, err, commands.ErrAllocationRace)

	// one initial attempt plus one retry
	factory.AssertNumberOfCalls(t, "Create", 2)
	uow.AssertNotCalled(t, "Commit", mock.Anything)
}
