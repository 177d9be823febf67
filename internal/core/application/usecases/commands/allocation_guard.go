package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"consolidation/internal/core/domain/model/kernel"
	"consolidation/internal/pkg/locks"
)

// ErrAllocationRace is returned when the locality lock could not be acquired
// within the configured timeout. Callers are expected to retry.
var ErrAllocationRace = errors.New("allocation race: locality is busy")

// lockLocality acquires the per-locality mutex with a timeout. Batch selection,
// creation and reconciliation for a locality must run under this lock so two
// concurrent writers cannot both decide to open a new batch.
func lockLocality(
	ctx context.Context,
	localityLocks *locks.KeyedMutex,
	locality kernel.Locality,
	timeout time.Duration,
) (func(), error) {
	lockCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	release, err := localityLocks.Lock(lockCtx, locality.Key())
	if err != nil {
		return nil, fmt.Errorf("%w: locality %q: %w", ErrAllocationRace, locality.Key(), err)
	}

	return release, nil
}
