package queries

import (
	"context"
	"time"

	"consolidation/internal/core/domain/model/batch"
	"consolidation/internal/core/domain/model/kernel"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GetOpenBatchesQueryHandler lists open batches oldest first, with their fill
// ratio precomputed for the caller.
//
// Example:
//
//	handler := NewGetOpenBatchesQueryHandler(db)
//	open, err := handler.Handle(ctx, NewGetOpenBatchesQuery())
//	if err != nil {
//	    return err
//	}
//	for _, b := range open {
//	    fmt.Printf("%s %s %.0f%%\n", b.ID, b.Locality, b.FillRatio*100)
//	}
type GetOpenBatchesQueryHandler struct {
	db *gorm.DB
}

// NewGetOpenBatchesQueryHandler creates a handler for open-batch listings.
func NewGetOpenBatchesQueryHandler(db *gorm.DB) GetOpenBatchesQueryHandler {
	return GetOpenBatchesQueryHandler{db: db}
}

// Handle executes the query. Results are sorted by creation time so the
// batches closest to their scheduling deadline come first.
func (h GetOpenBatchesQueryHandler) Handle(
	ctx context.Context,
	query GetOpenBatchesQuery,
) ([]GetOpenBatchesQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	sql := `
		SELECT
			id,
			locality,
			aggregate_weight,
			capacity,
			created_at
		FROM batches
		WHERE status = ?
	`
	args := []any{int(batch.Open)}
	if query.Locality() != "" {
		sql += " AND locality = ?"
		args = append(args, query.Locality())
	}
	sql += " ORDER BY created_at"

	rows, err := h.db.WithContext(ctx).Raw(sql, args...).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	batches := make([]GetOpenBatchesQueryResponse, 0)
	for rows.Next() {
		var (
			id              uuid.UUID
			locality        string
			aggregateWeight decimal.Decimal
			capacity        decimal.Decimal
			createdAt       time.Time
		)

		if err = rows.Scan(&id, &locality, &aggregateWeight, &capacity, &createdAt); err != nil {
			return nil, err
		}

		batchID, idErr := kernel.UUIDFromBytes(id[:])
		if idErr != nil {
			return nil, idErr
		}

		fillRatio := 0.0
		if capacity.IsPositive() {
			fillRatio, _ = aggregateWeight.Div(capacity).Float64()
		}

		batches = append(batches, GetOpenBatchesQueryResponse{
			ID:              batchID,
			Locality:        locality,
			AggregateWeight: aggregateWeight,
			Capacity:        capacity,
			FillRatio:       fillRatio,
			CreatedAt:       createdAt,
		})
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return batches, nil
}
