package queries

import (
	"errors"
	"time"

	"consolidation/internal/core/domain/model/kernel"
	"consolidation/internal/pkg/guard"

	"github.com/shopspring/decimal"
)

var ErrGetOpenBatchesQueryIsNotConstructed = errors.New(
	"GetOpenBatchesQuery must be created via NewGetOpenBatchesQuery constructor",
)

// GetOpenBatchesQuery retrieves batches still accepting orders, for
// dispatcher dashboards deciding which batches are worth closing.
// An empty locality means all localities.
type GetOpenBatchesQuery struct {
	locality string

	guard guard.ConstructorGuard
}

// NewGetOpenBatchesQuery creates a query for all open batches.
func NewGetOpenBatchesQuery() GetOpenBatchesQuery {
	return GetOpenBatchesQuery{guard: guard.NewConstructorGuard()}
}

// NewGetOpenBatchesQueryForLocality creates a query scoped to one locality.
// The raw key is normalized the same way order addresses are.
func NewGetOpenBatchesQueryForLocality(rawLocality string) GetOpenBatchesQuery {
	return GetOpenBatchesQuery{
		locality: kernel.LocalityFromString(rawLocality).Key(),
		guard:    guard.NewConstructorGuard(),
	}
}

// Locality returns the locality key filter, empty for all localities.
func (q GetOpenBatchesQuery) Locality() string {
	return q.locality
}

// Validate ensures the query was created through the constructor.
// Returns ErrGetOpenBatchesQueryIsNotConstructed if validation fails.
func (q GetOpenBatchesQuery) Validate() error {
	return q.guard.Validate(ErrGetOpenBatchesQueryIsNotConstructed)
}

// GetOpenBatchesQueryResponse is the read model for one open batch.
type GetOpenBatchesQueryResponse struct {
	ID              kernel.UUID
	Locality        string
	AggregateWeight decimal.Decimal
	Capacity        decimal.Decimal
	FillRatio       float64
	CreatedAt       time.Time
}
