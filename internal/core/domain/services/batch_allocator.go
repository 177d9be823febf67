package services

import (
	"errors"
	"fmt"

	"consolidation/internal/core/domain/model/batch"
	"consolidation/internal/core/domain/model/kernel"
)

var (
	// ErrNoBatchFits signals that no open batch in the locality has enough
	// spare capacity; the caller responds by opening a new batch.
	ErrNoBatchFits = errors.New("no open batch fits the order")

	// ErrMissingLocality is returned when allocation is attempted without a
	// usable locality key. The extractor is total (it produces the "unknown"
	// sentinel rather than failing), so this should not occur in practice.
	ErrMissingLocality = errors.New("locality key is missing")

	// ErrUnknownPolicy is returned when parsing an unrecognized selection
	// policy name.
	ErrUnknownPolicy = errors.New("unknown selection policy")
)

// Policy selects between batch-selection tie-break strategies. The source
// system alternated between the two across revisions, so the choice is
// configuration rather than hard-coded behavior.
type Policy int

const (
	// TightestFit prefers the candidate with the least remaining capacity
	// that still fits, minimizing partially-filled batches in flight.
	// Exact ties fall back to the oldest-created batch.
	TightestFit Policy = iota

	// FIFO prefers the oldest-created batch that fits.
	FIFO
)

// ParsePolicy maps a configuration string to a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "tightest-fit", "":
		return TightestFit, nil
	case "fifo":
		return FIFO, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownPolicy, s)
	}
}

// String returns the configuration name of the policy.
func (p Policy) String() string {
	if p == FIFO {
		return "fifo"
	}
	return "tightest-fit"
}

// Allocator is the bin-packing core: given an order's weight and the open
// batches of its locality, it picks the batch the order joins, or reports
// ErrNoBatchFits so the caller opens a new one.
//
// Allocator only decides; it mutates nothing. Attaching the order and
// reconciling the chosen batch's weight are the caller's responsibility, and
// the whole sequence must run under the locality's concurrency guard.
type Allocator struct {
	policy Policy
}

// NewAllocator creates an Allocator with the given selection policy.
func NewAllocator(policy Policy) Allocator {
	return Allocator{policy: policy}
}

// FindBatch selects the open batch an order of the given weight should join.
//
// Candidates are expected to be the locality's open batches; batches that are
// no longer open, cannot fit the weight, or belong to another locality are
// skipped. Returns ErrInvalidWeight for a non-positive weight,
// ErrMissingLocality for an unconstructed locality, and ErrNoBatchFits when
// no candidate qualifies.
func (a Allocator) FindBatch(
	orderWeight kernel.Weight,
	locality kernel.Locality,
	candidates []*batch.Batch,
) (*batch.Batch, error) {
	if !orderWeight.IsPositive() {
		return nil, fmt.Errorf("%w: %s is not greater than 0", ErrInvalidWeight, orderWeight.String())
	}
	if err := locality.Validate(); err != nil {
		return nil, errors.Join(ErrMissingLocality, err)
	}

	var best *batch.Batch
	for _, candidate := range candidates {
		if err := candidate.Validate(); err != nil {
			return nil, err
		}

		if !candidate.Locality().IsEqual(locality) {
			continue
		}
		if !candidate.CanFit(orderWeight) {
			continue
		}

		if best == nil || a.prefer(candidate, best) {
			best = candidate
		}
	}

	if best == nil {
		return nil, ErrNoBatchFits
	}

	return best, nil
}

// prefer reports whether candidate should replace current as the selection.
func (a Allocator) prefer(candidate, current *batch.Batch) bool {
	if a.policy == FIFO {
		return candidate.CreatedAt().Before(current.CreatedAt())
	}

	switch candidate.RemainingCapacity().Cmp(current.RemainingCapacity()) {
	case -1:
		return true
	case 1:
		return false
	default:
		return candidate.CreatedAt().Before(current.CreatedAt())
	}
}
