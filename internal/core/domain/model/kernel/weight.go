package kernel

import (
	"fmt"

	"consolidation/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

// MinOrderWeight is the sentinel weight assigned to orders whose line items
// sum to zero. Capacity math requires every batched order to occupy at least
// one weight unit.
var MinOrderWeight = NewWeight(decimal.NewFromInt(1))

// Weight is a non-negative decimal quantity of weight units. It wraps
// shopspring/decimal so capacity comparisons are exact; floating point drift
// in aggregate sums is precisely the failure mode the reconciler exists to
// prevent.
//
// The zero value is a valid zero weight, which keeps Weight usable in
// aggregate arithmetic without a constructor guard.
type Weight struct {
	value decimal.Decimal
}

// NewWeight creates a Weight from a decimal value. Negative input is rejected.
func NewWeight(value decimal.Decimal) Weight {
	return Weight{value: value}
}

// WeightFromFloat creates a Weight from a float64, for configuration values
// and external payloads. Returns an error for negative input.
func WeightFromFloat(value float64) (Weight, error) {
	if value < 0 {
		return Weight{}, errs.NewValueIsInvalidErrorWithCause("weight",
			fmt.Errorf("%v is negative", value))
	}
	return Weight{value: decimal.NewFromFloat(value)}, nil
}

// WeightFromString parses a decimal string such as "3500" or "12.5".
func WeightFromString(s string) (Weight, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Weight{}, errs.NewValueIsInvalidErrorWithCause("weight", err)
	}
	if d.IsNegative() {
		return Weight{}, errs.NewValueIsInvalidErrorWithCause("weight",
			fmt.Errorf("%s is negative", s))
	}
	return Weight{value: d}, nil
}

// ZeroWeight returns the additive identity.
func ZeroWeight() Weight {
	return Weight{value: decimal.Zero}
}

// Decimal returns the underlying decimal value.
func (w Weight) Decimal() decimal.Decimal {
	return w.value
}

// Add returns w + other.
func (w Weight) Add(other Weight) Weight {
	return Weight{value: w.value.Add(other.value)}
}

// Sub returns w - other. The result may be negative; callers comparing
// capacities should use Cmp.
func (w Weight) Sub(other Weight) Weight {
	return Weight{value: w.value.Sub(other.value)}
}

// Mul returns w scaled by an integer factor, for quantity x unit weight sums.
func (w Weight) Mul(factor int64) Weight {
	return Weight{value: w.value.Mul(decimal.NewFromInt(factor))}
}

// MulFloat returns w scaled by a fractional factor, for fill-ratio thresholds.
func (w Weight) MulFloat(factor float64) Weight {
	return Weight{value: w.value.Mul(decimal.NewFromFloat(factor))}
}

// Cmp compares two weights: -1 if w < other, 0 if equal, +1 if w > other.
func (w Weight) Cmp(other Weight) int {
	return w.value.Cmp(other.value)
}

// IsEqual reports exact equality of two weights.
func (w Weight) IsEqual(other Weight) bool {
	return w.value.Equal(other.value)
}

// IsPositive reports whether w > 0.
func (w Weight) IsPositive() bool {
	return w.value.IsPositive()
}

// IsZero reports whether w == 0.
func (w Weight) IsZero() bool {
	return w.value.IsZero()
}

// IsNegative reports whether w < 0.
func (w Weight) IsNegative() bool {
	return w.value.IsNegative()
}

// String implements fmt.Stringer.
func (w Weight) String() string {
	return w.value.String()
}
