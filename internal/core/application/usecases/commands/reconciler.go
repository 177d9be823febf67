package commands

import (
	"context"

	"consolidation/internal/core/domain/model/kernel"
)

// reconcileBatch recomputes a batch's aggregate weight from its approved
// member orders and overwrites the stored value. This is the only code path
// that mutates aggregate weight; allocation and detachment never adjust it
// incrementally.
//
// A batch left with zero approved members is an orphan and is deleted.
// Callers must already hold the locality lock and run inside the transaction
// that modified the membership.
func reconcileBatch(ctx context.Context, uow UoW, batchID kernel.UUID) error {
	batchRepo := uow.BatchRepository()
	orderRepo := uow.OrderRepository()

	target, err := batchRepo.Get(ctx, batchID)
	if err != nil {
		return err
	}

	members, err := orderRepo.GetApprovedByBatch(ctx, batchID)
	if err != nil {
		return err
	}

	if len(members) == 0 {
		return batchRepo.Delete(ctx, batchID)
	}

	total := kernel.ZeroWeight()
	for _, member := range members {
		total = total.Add(member.Weight())
	}

	if err = target.SetAggregateWeight(total); err != nil {
		return err
	}

	return batchRepo.Update(ctx, target)
}
