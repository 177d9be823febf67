package queries

import (
	"errors"
	"time"

	"consolidation/internal/core/domain/model/kernel"
	"consolidation/internal/pkg/guard"

	"github.com/shopspring/decimal"
)

var ErrGetBatchQueryIsNotConstructed = errors.New(
	"GetBatchQuery must be created via NewGetBatchQuery constructor",
)

// GetBatchQuery retrieves a single batch with its member order identifiers.
type GetBatchQuery struct { //nolint:recvcheck //using for validation
	batchID kernel.UUID

	guard guard.ConstructorGuard
}

// NewGetBatchQuery creates a query for the given batch.
func NewGetBatchQuery(batchID kernel.UUID) (GetBatchQuery, error) {
	if err := batchID.Validate(); err != nil {
		return GetBatchQuery{}, err
	}

	return GetBatchQuery{
		batchID: batchID,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the query was created through the constructor.
// Returns ErrGetBatchQueryIsNotConstructed if validation fails.
func (q GetBatchQuery) Validate() error {
	return q.guard.Validate(ErrGetBatchQueryIsNotConstructed)
}

// BatchID returns the identifier of the batch to fetch.
func (q GetBatchQuery) BatchID() kernel.UUID {
	return q.batchID
}

// GetBatchQueryResponse is the read model for a single batch.
type GetBatchQueryResponse struct {
	ID              kernel.UUID
	Locality        string
	AggregateWeight decimal.Decimal
	Capacity        decimal.Decimal
	Status          string
	DriverID        *kernel.UUID
	ScheduledDate   *time.Time
	CreatedAt       time.Time
	OrderIDs        []kernel.UUID
}
