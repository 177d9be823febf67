package queries

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"consolidation/internal/core/domain/model/batch"
	"consolidation/internal/core/domain/model/kernel"
	"consolidation/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GetBatchQueryHandler reads a single batch and the identifiers of its member
// orders directly from the database.
type GetBatchQueryHandler struct {
	db *gorm.DB
}

// NewGetBatchQueryHandler creates a handler for single-batch reads.
func NewGetBatchQueryHandler(db *gorm.DB) GetBatchQueryHandler {
	return GetBatchQueryHandler{db: db}
}

// Handle executes the query. Returns an object-not-found error when the batch
// does not exist.
func (h GetBatchQueryHandler) Handle(
	ctx context.Context,
	query GetBatchQuery,
) (GetBatchQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetBatchQueryResponse{}, err
	}

	row := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			locality,
			aggregate_weight,
			capacity,
			status,
			driver_id,
			scheduled_date,
			created_at
		FROM batches
		WHERE id = ?
	`, query.BatchID().Bytes()).Row()

	var (
		id              uuid.UUID
		locality        string
		aggregateWeight decimal.Decimal
		capacity        decimal.Decimal
		status          int
		driverID        *uuid.UUID
		scheduledDate   *time.Time
		createdAt       time.Time
	)

	err := row.Scan(&id, &locality, &aggregateWeight, &capacity,
		&status, &driverID, &scheduledDate, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return GetBatchQueryResponse{}, errs.NewObjectNotFoundError("batch", query.BatchID().String())
	}
	if err != nil {
		return GetBatchQueryResponse{}, err
	}

	batchID, err := kernel.UUIDFromBytes(id[:])
	if err != nil {
		return GetBatchQueryResponse{}, err
	}

	resp := GetBatchQueryResponse{
		ID:              batchID,
		Locality:        locality,
		AggregateWeight: aggregateWeight,
		Capacity:        capacity,
		Status:          batch.Status(status).String(),
		ScheduledDate:   scheduledDate,
		CreatedAt:       createdAt,
	}

	if driverID != nil {
		ref, refErr := kernel.UUIDFromBytes((*driverID)[:])
		if refErr != nil {
			return GetBatchQueryResponse{}, refErr
		}
		resp.DriverID = &ref
	}

	orderIDs, err := h.memberOrderIDs(ctx, query.BatchID())
	if err != nil {
		return GetBatchQueryResponse{}, err
	}
	resp.OrderIDs = orderIDs

	return resp, nil
}

func (h GetBatchQueryHandler) memberOrderIDs(
	ctx context.Context,
	batchID kernel.UUID,
) ([]kernel.UUID, error) {
	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT id
		FROM orders
		WHERE batch_id = ?
		ORDER BY id
	`, batchID.Bytes()).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]kernel.UUID, 0)
	for rows.Next() {
		var raw uuid.UUID
		if err = rows.Scan(&raw); err != nil {
			return nil, err
		}

		id, idErr := kernel.UUIDFromBytes(raw[:])
		if idErr != nil {
			return nil, idErr
		}
		ids = append(ids, id)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return ids, nil
}
