package commands_test

import (
	"context"
	"testing"
	"time"

	"consolidation/internal/core/application/usecases/commands"
	"consolidation/internal/core/domain/model/batch"
	"consolidation/internal/core/domain/model/kernel"
	"consolidation/internal/core/domain/model/order"
	"consolidation/internal/core/ports"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockOrderRepository struct{ mock.Mock }

func (m *MockOrderRepository) Add(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Update(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	o, _ := args.Get(0).(*order.Order)
	return o, args.Error(1)
}

func (m *MockOrderRepository) GetApprovedByBatch(ctx context.Context, batchID kernel.UUID) ([]*order.Order, error) {
	args := m.Called(ctx, batchID)
	orders, _ := args.Get(0).([]*order.Order)
	return orders, args.Error(1)
}

type MockBatchRepository struct{ mock.Mock }

func (m *MockBatchRepository) Add(ctx context.Context, b *batch.Batch) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}

func (m *MockBatchRepository) Update(ctx context.Context, b *batch.Batch) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}

func (m *MockBatchRepository) Delete(ctx context.Context, id kernel.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// Get supports lazy returns: when the expectation's first return value is a
// func() *batch.Batch it is resolved at call time, so tests can hand back a
// batch captured from an earlier Add.
func (m *MockBatchRepository) Get(ctx context.Context, id kernel.UUID) (*batch.Batch, error) {
	args := m.Called(ctx, id)
	if lazy, ok := args.Get(0).(func() *batch.Batch); ok {
		return lazy(), args.Error(1)
	}
	b, _ := args.Get(0).(*batch.Batch)
	return b, args.Error(1)
}

func (m *MockBatchRepository) GetOpenByLocality(ctx context.Context, locality kernel.Locality) ([]*batch.Batch, error) {
	args := m.Called(ctx, locality)
	batches, _ := args.Get(0).([]*batch.Batch)
	return batches, args.Error(1)
}

func (m *MockBatchRepository) GetAllByLocality(ctx context.Context, locality kernel.Locality) ([]*batch.Batch, error) {
	args := m.Called(ctx, locality)
	batches, _ := args.Get(0).([]*batch.Batch)
	return batches, args.Error(1)
}

func (m *MockBatchRepository) GetOpenLocalities(ctx context.Context) ([]kernel.Locality, error) {
	args := m.Called(ctx)
	localities, _ := args.Get(0).([]kernel.Locality)
	return localities, args.Error(1)
}

func (m *MockBatchRepository) GetStaleOpen(ctx context.Context, olderThan time.Time) ([]*batch.Batch, error) {
	args := m.Called(ctx, olderThan)
	batches, _ := args.Get(0).([]*batch.Batch)
	return batches, args.Error(1)
}

type MockUoW struct{ mock.Mock }

func (m *MockUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) OrderRepository() ports.OrderRepository {
	args := m.Called()
	return args.Get(0).(ports.OrderRepository)
}

func (m *MockUoW) BatchRepository() ports.BatchRepository {
	args := m.Called()
	return args.Get(0).(ports.BatchRepository)
}

type MockUoWFactory struct{ mock.Mock }

func (m *MockUoWFactory) Create() commands.UoW {
	args := m.Called()
	return args.Get(0).(commands.UoW)
}

type MockOrderUoW struct{ mock.Mock }

func (m *MockOrderUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockOrderUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockOrderUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockOrderUoW) OrderRepository() ports.OrderRepository {
	args := m.Called()
	return args.Get(0).(ports.OrderRepository)
}

type MockOrderUoWFactory struct{ mock.Mock }

func (m *MockOrderUoWFactory) Create() commands.OrderUoW {
	args := m.Called()
	return args.Get(0).(commands.OrderUoW)
}

type MockProductCatalog struct{ mock.Mock }

func (m *MockProductCatalog) UnitWeight(ctx context.Context, productID kernel.UUID) (kernel.Weight, error) {
	args := m.Called(ctx, productID)
	w, _ := args.Get(0).(kernel.Weight)
	return w, args.Error(1)
}

type stubClock struct{ now time.Time }

func (c stubClock) Now() time.Time { return c.now }

func mustWeight(t *testing.T, value float64) kernel.Weight {
	t.Helper()
	w, err := kernel.WeightFromFloat(value)
	require.NoError(t, err)
	return w
}

func singleItem(t *testing.T, productID kernel.UUID, quantity int) []order.LineItem {
	t.Helper()
	item, err := order.NewLineItem(productID, quantity, decimal.NewFromInt(25))
	require.NoError(t, err)
	return []order.LineItem{item}
}

func pendingOrder(t *testing.T, locality kernel.Locality, items []order.LineItem) *order.Order {
	t.Helper()
	o, err := order.NewOrder(kernel.NewUUID(), locality, items)
	require.NoError(t, err)
	return o
}

func batchedOrder(
	t *testing.T,
	locality kernel.Locality,
	weight kernel.Weight,
	batchID kernel.UUID,
	items []order.LineItem,
) *order.Order {
	t.Helper()
	o, err := order.RestoreOrder(
		kernel.NewUUID(), locality, weight,
		order.Approved, order.DeliveryPending, &batchID, items,
	)
	require.NoError(t, err)
	return o
}

func openBatch(
	t *testing.T,
	id kernel.UUID,
	locality kernel.Locality,
	capacity, aggregate kernel.Weight,
	createdAt time.Time,
) *batch.Batch {
	t.Helper()
	b, err := batch.RestoreBatch(id, locality, aggregate, capacity, batch.Open, nil, nil, createdAt)
	require.NoError(t, err)
	return b
}
