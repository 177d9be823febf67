package ports

import (
	"context"
	"time"

	"consolidation/internal/core/domain/model/batch"
	"consolidation/internal/core/domain/model/kernel"
)

// BatchRepository defines the persistence contract for batch aggregates.
type BatchRepository interface {
	// Add persists a new batch aggregate to storage.
	Add(ctx context.Context, aggregate *batch.Batch) error

	// Update persists changes to an existing batch aggregate.
	Update(ctx context.Context, aggregate *batch.Batch) error

	// Delete removes a batch. Only used by the reconciler when a batch ends
	// its life with zero approved members.
	Delete(ctx context.Context, id kernel.UUID) error

	// Get retrieves a batch aggregate by its unique identifier.
	Get(ctx context.Context, id kernel.UUID) (*batch.Batch, error)

	// GetOpenByLocality retrieves the open batches for a locality. These are
	// the allocator's candidates.
	GetOpenByLocality(ctx context.Context, locality kernel.Locality) ([]*batch.Batch, error)

	// GetAllByLocality retrieves every batch for a locality regardless of
	// status. Used by the full-locality resync repair path.
	GetAllByLocality(ctx context.Context, locality kernel.Locality) ([]*batch.Batch, error)

	// GetOpenLocalities lists the distinct locality keys that currently have
	// at least one open batch. Used by the resync sweep.
	GetOpenLocalities(ctx context.Context) ([]kernel.Locality, error)

	// GetStaleOpen retrieves open batches created before the given instant.
	// Used to surface batches whose scheduling deadline has elapsed.
	GetStaleOpen(ctx context.Context, olderThan time.Time) ([]*batch.Batch, error)
}
