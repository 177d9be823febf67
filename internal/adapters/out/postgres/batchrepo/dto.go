// Package batchrepo provides data transfer objects and mapping functions for
// batch persistence.
package batchrepo

import (
	"time"

	"consolidation/internal/core/domain/model/batch"
	"consolidation/internal/core/domain/model/kernel"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BatchDTO represents the database structure for persisting batch aggregates.
// Indexed by locality and status so the allocator's open-batch lookups stay
// on an index.
type BatchDTO struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	Locality        string    `gorm:"type:text;index:idx_batches_locality_status"`
	Status          int       `gorm:"index:idx_batches_locality_status"`
	AggregateWeight decimal.Decimal `gorm:"type:numeric(12,3)"`
	Capacity        decimal.Decimal `gorm:"type:numeric(12,3)"`
	DriverID        *uuid.UUID      `gorm:"type:uuid"`
	ScheduledDate   *time.Time
	CreatedAt       time.Time `gorm:"index"`
}

// TableName specifies the database table name for batch entities.
func (BatchDTO) TableName() string {
	return "batches"
}

// fromDomain converts a batch domain aggregate to its database representation.
func fromDomain(aggregate *batch.Batch) BatchDTO {
	var driverID *uuid.UUID
	if id := aggregate.Driver(); id != nil {
		raw := id.Bytes()
		driverID = &raw
	}

	return BatchDTO{
		ID:              aggregate.ID().Bytes(),
		Locality:        aggregate.Locality().Key(),
		Status:          int(aggregate.Status()),
		AggregateWeight: aggregate.AggregateWeight().Decimal(),
		Capacity:        aggregate.Capacity().Decimal(),
		DriverID:        driverID,
		ScheduledDate:   aggregate.ScheduledDate(),
		CreatedAt:       aggregate.CreatedAt(),
	}
}

// toDomain converts a database DTO to a batch domain aggregate using
// RestoreBatch.
func toDomain(dto BatchDTO) (*batch.Batch, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	var driverID *kernel.UUID
	if dto.DriverID != nil {
		ref, refErr := kernel.UUIDFromBytes((*dto.DriverID)[:])
		if refErr != nil {
			return nil, refErr
		}

		driverID = &ref
	}

	return batch.RestoreBatch(
		id,
		kernel.LocalityFromString(dto.Locality),
		kernel.NewWeight(dto.AggregateWeight),
		kernel.NewWeight(dto.Capacity),
		batch.Status(dto.Status),
		driverID,
		dto.ScheduledDate,
		dto.CreatedAt,
	)
}
