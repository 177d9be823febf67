package batchrepo

import (
	"context"
	"errors"
	"time"

	"consolidation/internal/core/domain/model/batch"
	"consolidation/internal/core/domain/model/kernel"
	"consolidation/internal/pkg/errs"

	"gorm.io/gorm"
)

// GormBatchRepository implements BatchRepository using GORM.
type GormBatchRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

// aggregateTracker defines the interface for tracking aggregates.
type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

// NewGormBatchRepository creates a new GORM batch repository.
func NewGormBatchRepository(db *gorm.DB, tracker aggregateTracker) *GormBatchRepository {
	return &GormBatchRepository{
		db:      db,
		tracker: tracker,
	}
}

// Add saves a new batch to the database.
func (r *GormBatchRepository) Add(ctx context.Context, aggregate *batch.Batch) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return err
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Update saves an existing batch to the database. All columns are written so
// the reconciler's recomputed aggregate always lands, even when it shrinks.
func (r *GormBatchRepository) Update(ctx context.Context, aggregate *batch.Batch) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	result := r.db.WithContext(ctx).Model(&BatchDTO{}).
		Where("id = ?", dto.ID).
		Select("locality", "status", "aggregate_weight", "capacity",
			"driver_id", "scheduled_date", "created_at").
		Updates(&dto)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Delete removes a batch row. Used by the reconciler on orphaned batches.
func (r *GormBatchRepository) Delete(ctx context.Context, id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}

	result := r.db.WithContext(ctx).Where("id = ?", id.Bytes()).Delete(&BatchDTO{})
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("batch", id.String())
	}

	return nil
}

// Get retrieves a batch by ID.
func (r *GormBatchRepository) Get(ctx context.Context, id kernel.UUID) (*batch.Batch, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto BatchDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("batch", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

// GetOpenByLocality retrieves the open batches for a locality, oldest first
// so FIFO selection is stable.
func (r *GormBatchRepository) GetOpenByLocality(ctx context.Context, locality kernel.Locality) ([]*batch.Batch, error) {
	if err := locality.Validate(); err != nil {
		return nil, err
	}

	var dtos []BatchDTO
	if err := r.db.WithContext(ctx).
		Order("created_at").
		Find(&dtos, "locality = ? AND status = ?", locality.Key(), int(batch.Open)).
		Error; err != nil {
		return nil, err
	}

	return toDomainSlice(dtos)
}

// GetAllByLocality retrieves every batch for a locality, regardless of status.
func (r *GormBatchRepository) GetAllByLocality(ctx context.Context, locality kernel.Locality) ([]*batch.Batch, error) {
	if err := locality.Validate(); err != nil {
		return nil, err
	}

	var dtos []BatchDTO
	if err := r.db.WithContext(ctx).
		Order("created_at").
		Find(&dtos, "locality = ?", locality.Key()).
		Error; err != nil {
		return nil, err
	}

	return toDomainSlice(dtos)
}

// GetOpenLocalities lists the distinct locality keys that currently have at
// least one open batch.
func (r *GormBatchRepository) GetOpenLocalities(ctx context.Context) ([]kernel.Locality, error) {
	var keys []string
	if err := r.db.WithContext(ctx).Model(&BatchDTO{}).
		Distinct("locality").
		Where("status = ?", int(batch.Open)).
		Pluck("locality", &keys).
		Error; err != nil {
		return nil, err
	}

	localities := make([]kernel.Locality, 0, len(keys))
	for _, key := range keys {
		localities = append(localities, kernel.LocalityFromString(key))
	}

	return localities, nil
}

// GetStaleOpen retrieves open batches created before the given instant.
func (r *GormBatchRepository) GetStaleOpen(ctx context.Context, olderThan time.Time) ([]*batch.Batch, error) {
	var dtos []BatchDTO
	if err := r.db.WithContext(ctx).
		Order("created_at").
		Find(&dtos, "status = ? AND created_at < ?", int(batch.Open), olderThan).
		Error; err != nil {
		return nil, err
	}

	return toDomainSlice(dtos)
}

func toDomainSlice(dtos []BatchDTO) ([]*batch.Batch, error) {
	batches := make([]*batch.Batch, 0, len(dtos))
	for _, dto := range dtos {
		b, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		batches = append(batches, b)
	}

	return batches, nil
}
