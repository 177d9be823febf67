package commands_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"consolidation/internal/core/application/usecases/commands"
	"consolidation/internal/core/domain/model/batch"
	"consolidation/internal/core/domain/model/kernel"
	"consolidation/internal/core/domain/model/order"
	"consolidation/internal/core/domain/services"
	"consolidation/internal/core/ports"
	"consolidation/internal/pkg/locks"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

// memoryStore is a map-backed stand-in for the persistence layer, shared by
// every unit of work the test factory hands out.
type memoryStore struct {
	mu      sync.Mutex
	orders  map[string]*order.Order
	batches map[string]*batch.Batch
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		orders:  make(map[string]*order.Order),
		batches: make(map[string]*batch.Batch),
	}
}

type memoryOrderRepo struct{ store *memoryStore }

func (r memoryOrderRepo) Add(_ context.Context, o *order.Order) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.orders[o.ID().String()] = o
	return nil
}

func (r memoryOrderRepo) Update(_ context.Context, o *order.Order) error {
	return r.Add(context.Background(), o)
}

func (r memoryOrderRepo) Get(_ context.Context, id kernel.UUID) (*order.Order, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return r.store.orders[id.String()], nil
}

func (r memoryOrderRepo) GetApprovedByBatch(_ context.Context, batchID kernel.UUID) ([]*order.Order, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var result []*order.Order
	for _, o := range r.store.orders {
		if o.ApprovalStatus() == order.Approved && o.Batch() != nil && o.Batch().IsEqual(batchID) {
			result = append(result, o)
		}
	}
	return result, nil
}

type memoryBatchRepo struct{ store *memoryStore }

func (r memoryBatchRepo) Add(_ context.Context, b *batch.Batch) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.batches[b.ID().String()] = b
	return nil
}

func (r memoryBatchRepo) Update(_ context.Context, b *batch.Batch) error {
	return r.Add(context.Background(), b)
}

func (r memoryBatchRepo) Delete(_ context.Context, id kernel.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	delete(r.store.batches, id.String())
	return nil
}

func (r memoryBatchRepo) Get(_ context.Context, id kernel.UUID) (*batch.Batch, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return r.store.batches[id.String()], nil
}

func (r memoryBatchRepo) GetOpenByLocality(_ context.Context, locality kernel.Locality) ([]*batch.Batch, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var result []*batch.Batch
	for _, b := range r.store.batches {
		if b.Status().IsOpen() && b.Locality().IsEqual(locality) {
			result = append(result, b)
		}
	}
	return result, nil
}

func (r memoryBatchRepo) GetAllByLocality(_ context.Context, locality kernel.Locality) ([]*batch.Batch, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var result []*batch.Batch
	for _, b := range r.store.batches {
		if b.Locality().IsEqual(locality) {
			result = append(result, b)
		}
	}
	return result, nil
}

func (r memoryBatchRepo) GetOpenLocalities(_ context.Context) ([]kernel.Locality, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	seen := make(map[string]kernel.Locality)
	for _, b := range r.store.batches {
		if b.Status().IsOpen() {
			seen[b.Locality().Key()] = b.Locality()
		}
	}
	var result []kernel.Locality
	for _, l := range seen {
		result = append(result, l)
	}
	return result, nil
}

func (r memoryBatchRepo) GetStaleOpen(_ context.Context, olderThan time.Time) ([]*batch.Batch, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var result []*batch.Batch
	for _, b := range r.store.batches {
		if b.Status().IsOpen() && b.CreatedAt().Before(olderThan) {
			result = append(result, b)
		}
	}
	return result, nil
}

type memoryUoW struct{ store *memoryStore }

func (u memoryUoW) Begin(context.Context) error             { return nil }
func (u memoryUoW) Commit(context.Context) error            { return nil }
func (u memoryUoW) Rollback(context.Context) error          { return nil }
func (u memoryUoW) OrderRepository() ports.OrderRepository  { return memoryOrderRepo{store: u.store} }
func (u memoryUoW) BatchRepository() ports.BatchRepository  { return memoryBatchRepo{store: u.store} }

type memoryUoWFactory struct{ store *memoryStore }

func (f memoryUoWFactory) Create() commands.UoW { return memoryUoW{store: f.store} }

// Concurrent approvals in one locality must serialize on the locality lock:
// no overfilled batches and no spurious extra batches from racing writers.
func TestApproveOrderCommandHandler_Handle_ConcurrentApprovalsStayConsistent(t *testing.T) {
	ctx := t.Context()
	locality := kernel.LocalityFromString("riverside")
	capacity := mustWeight(t, 500)
	productID := kernel.NewUUID()

	store := newMemoryStore()
	orderRepo := memoryOrderRepo{store: store}

	const totalOrders = 20
	ids := make([]kernel.UUID, 0, totalOrders)
	for range totalOrders {
		pending := pendingOrder(t, locality, singleItem(t, productID, 1))
		require.NoError(t, orderRepo.Add(ctx, pending))
		ids = append(ids, pending.ID())
	}

	catalog := new(MockProductCatalog)
	catalog.On("UnitWeight", mock.Anything, productID).Return(mustWeight(t, 200), nil)

	handler := commands.NewApproveOrderCommandHandler(
		memoryUoWFactory{store: store},
		services.NewWeightResolver(catalog),
		services.NewAllocator(services.TightestFit),
		locks.NewKeyedMutex(),
		stubClock{now: time.Now()},
		capacity,
		5*time.Second,
		3,
	)

	var group errgroup.Group
	for _, id := range ids {
		group.Go(func() error {
			cmd, err := commands.NewApproveOrderCommand(id)
			if err != nil {
				return err
			}
			return handler.Handle(ctx, cmd)
		})
	}
	require.NoError(t, group.Wait())

	// 200-unit orders into 500-unit batches pack exactly two per batch
	require.Len(t, store.batches, totalOrders/2)

	membership := make(map[string]int)
	total := kernel.ZeroWeight()
	for _, b := range store.batches {
		require.True(t, b.AggregateWeight().Cmp(b.Capacity()) <= 0)
		require.True(t, b.AggregateWeight().IsEqual(mustWeight(t, 400)))
		total = total.Add(b.AggregateWeight())
	}
	for _, o := range store.orders {
		require.Equal(t, order.Approved, o.ApprovalStatus())
		require.NotNil(t, o.Batch())
		membership[o.Batch().String()]++
	}
	for batchID, count := range membership {
		require.Contains(t, store.batches, batchID)
		require.Equal(t, 2, count)
	}
	require.True(t, total.IsEqual(mustWeight(t, 200*totalOrders)))
}
