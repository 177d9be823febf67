package services

import (
	"context"
	"errors"
	"fmt"

	"consolidation/internal/core/domain/model/kernel"
	"consolidation/internal/core/domain/model/order"
)

// ErrInvalidWeight indicates that an order's weight could not be resolved to
// a positive value: a referenced product's unit weight is missing or
// negative, or a caller passed a non-positive weight into allocation. This is
// a data-quality error: it surfaces to the approval workflow so a human can
// fix the source data, and the order stays approved-but-unbatched until then.
var ErrInvalidWeight = errors.New("order weight is invalid")

// UnitWeightSource supplies per-product unit weights. The product catalog is
// an external collaborator; this is the slice of it the resolver consumes.
type UnitWeightSource interface {
	// UnitWeight returns the catalog unit weight for a product. An error
	// means the product is unknown or its weight is unusable.
	UnitWeight(ctx context.Context, productID kernel.UUID) (kernel.Weight, error)
}

// WeightResolver computes an order's shippable weight as the sum of
// quantity x catalog unit weight over its line items. Weights are looked up
// at resolution time rather than stored on the line item, so each
// recomputation reflects the current catalog.
type WeightResolver struct {
	catalog UnitWeightSource
}

// NewWeightResolver creates a WeightResolver backed by the given catalog.
func NewWeightResolver(catalog UnitWeightSource) WeightResolver {
	return WeightResolver{catalog: catalog}
}

// Resolve returns the order weight for a set of line items.
//
// An empty item set, or items that sum to zero, yields the minimum sentinel
// weight of one unit: weightless orders would break capacity math. A missing
// or negative catalog weight fails with ErrInvalidWeight instead of being
// masked as zero.
func (r WeightResolver) Resolve(ctx context.Context, items []order.LineItem) (kernel.Weight, error) {
	total := kernel.ZeroWeight()

	for _, item := range items {
		if err := item.Validate(); err != nil {
			return kernel.Weight{}, err
		}

		unit, err := r.catalog.UnitWeight(ctx, item.ProductID())
		if err != nil {
			return kernel.Weight{}, fmt.Errorf("%w: product %s: %w",
				ErrInvalidWeight, item.ProductID().String(), err)
		}
		if unit.IsNegative() {
			return kernel.Weight{}, fmt.Errorf("%w: product %s has negative unit weight %s",
				ErrInvalidWeight, item.ProductID().String(), unit.String())
		}

		total = total.Add(unit.Mul(int64(item.Quantity())))
	}

	if total.IsZero() {
		return kernel.MinOrderWeight, nil
	}

	return total, nil
}
