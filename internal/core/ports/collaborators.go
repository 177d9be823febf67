package ports

import (
	"context"
	"time"

	"consolidation/internal/core/domain/model/kernel"

	"github.com/shopspring/decimal"
)

// ProductCatalog is the external catalog collaborator: product id to unit
// weight and unit price. Its UnitWeight method satisfies the weight
// resolver's UnitWeightSource.
type ProductCatalog interface {
	UnitWeight(ctx context.Context, productID kernel.UUID) (kernel.Weight, error)
	UnitPrice(ctx context.Context, productID kernel.UUID) (decimal.Decimal, error)
}

// Clock supplies wall-clock time for cutoff scheduling and deadline checks.
// Injected so lifecycle behavior is testable against fixed instants.
type Clock interface {
	Now() time.Time
}
