package batch

import (
	"errors"
	"fmt"
	"time"

	"consolidation/internal/core/domain/model/kernel"
	"consolidation/internal/pkg/errs"
)

var (
	// ErrBatchIsNotConstructed is returned when a Batch instance was not created
	// through the NewBatch or RestoreBatch factory functions.
	ErrBatchIsNotConstructed = errors.New("Batch must be created via NewBatch or RestoreBatch constructor")

	// ErrCapacityExceeded indicates an aggregate weight above the capacity
	// ceiling. The allocator's fit check makes this unreachable in normal
	// operation; observing it means an invariant was violated upstream, so it
	// must be logged loudly rather than silently corrected.
	ErrCapacityExceeded = errors.New("aggregate weight exceeds capacity ceiling")

	// ErrBatchNotOpen is returned when attempting a members-only operation on
	// a batch that has advanced past Open.
	ErrBatchNotOpen = errors.New("batch no longer accepts orders")

	// ErrBatchNotReadyForAssignment is returned when a driver assignment
	// arrives before the batch reached its minimum fill and before its
	// scheduling deadline elapsed.
	ErrBatchNotReadyForAssignment = errors.New("batch has not reached minimum fill and deadline has not elapsed")
)

// AssignmentPolicy carries the configured rules applied when a driver is
// assigned to a batch.
type AssignmentPolicy struct {
	// CutoffHour is the time-of-day boundary (0-23, local to the assignment
	// timestamp) deciding whether delivery is scheduled for the next day or
	// the day after.
	CutoffHour int

	// MinFillRatio is the fraction of the capacity ceiling a batch must reach
	// before it is eligible for assignment.
	MinFillRatio float64

	// Deadline waives the minimum fill gate once this much time has passed
	// since batch creation, so low-volume localities still get deliveries.
	Deadline time.Duration
}

// Batch is the aggregate root for a capacity-bounded group of approved orders
// bound for the same locality. Its aggregate weight is the authoritative sum
// of member order weights and is mutated exclusively through
// SetAggregateWeight by the reconciler; no code path adds or subtracts deltas.
//
// Batch maintains these invariants:
//   - 0 <= aggregate weight <= capacity ceiling while Open or later
//   - Membership is frozen once the status advances past Open
//   - Lifecycle transitions are strictly forward
type Batch struct {
	// id is the unique identifier for the batch
	id kernel.UUID

	// locality is the grouping key shared by every member order
	locality kernel.Locality

	// aggregateWeight is the reconciled sum of approved member order weights
	aggregateWeight kernel.Weight

	// capacity is the fixed payload ceiling configured at creation
	capacity kernel.Weight

	// status is the lifecycle state
	status Status

	// driverID is the assigned driver, nil while Open
	driverID *kernel.UUID

	// scheduledDate is the computed delivery date, nil until assignment
	scheduledDate *time.Time

	// createdAt anchors FIFO tie-breaking and the assignment deadline
	createdAt time.Time

	// guard ensures the batch was created via a factory function
	guard kernel.ConstructorGuard
}

// NewBatch creates an Open batch seeded with the weight of the order that
// triggered its creation. A batch is only ever created because no existing
// open batch in the locality could fit an incoming order, so the first
// order's weight is the initial aggregate.
//
// Parameters:
//   - id: unique identifier (must be a valid UUID)
//   - locality: grouping key for all member orders
//   - capacity: payload ceiling (must be positive)
//   - initialWeight: triggering order's weight (positive, must fit the ceiling)
//   - createdAt: creation timestamp
func NewBatch(
	id kernel.UUID,
	locality kernel.Locality,
	capacity kernel.Weight,
	initialWeight kernel.Weight,
	createdAt time.Time,
) (*Batch, error) {
	b := &Batch{
		status: Open,
		guard:  kernel.NewConstructorGuard(),
	}

	if err := errors.Join(
		b.setID(id),
		b.setLocality(locality),
		b.setCapacity(capacity),
		b.setCreatedAt(createdAt),
	); err != nil {
		return nil, err
	}

	if !initialWeight.IsPositive() {
		return nil, errs.NewValueIsInvalidErrorWithCause("initial weight",
			fmt.Errorf("%s is not greater than 0", initialWeight.String()))
	}
	if initialWeight.Cmp(capacity) > 0 {
		return nil, ErrCapacityExceeded
	}
	b.aggregateWeight = initialWeight

	return b, nil
}

// RestoreBatch reconstructs a Batch from persistence with its full state.
// Cross-field consistency is validated: a driver reference and scheduled date
// are required from Assigned onward and forbidden while Open.
func RestoreBatch(
	id kernel.UUID,
	locality kernel.Locality,
	aggregateWeight kernel.Weight,
	capacity kernel.Weight,
	status Status,
	driverID *kernel.UUID,
	scheduledDate *time.Time,
	createdAt time.Time,
) (*Batch, error) {
	b := &Batch{
		guard: kernel.NewConstructorGuard(),
	}

	if err := errors.Join(
		b.setID(id),
		b.setLocality(locality),
		b.setCapacity(capacity),
		b.setCreatedAt(createdAt),
		b.setLifecycle(status, driverID, scheduledDate),
	); err != nil {
		return nil, err
	}

	if aggregateWeight.IsNegative() {
		return nil, errs.NewValueIsInvalidErrorWithCause("aggregate weight",
			fmt.Errorf("%s is negative", aggregateWeight.String()))
	}
	if aggregateWeight.Cmp(b.capacity) > 0 {
		return nil, ErrCapacityExceeded
	}
	b.aggregateWeight = aggregateWeight

	return b, nil
}

// Validate ensures the Batch instance was properly constructed through a
// factory function.
func (b *Batch) Validate() error {
	if b == nil {
		return ErrBatchIsNotConstructed
	}
	return b.guard.Validate(ErrBatchIsNotConstructed)
}

// IsEqual compares two batches by their unique identifiers.
func (b *Batch) IsEqual(other *Batch) bool {
	return other != nil && b.id.IsEqual(other.id)
}

// ID returns the batch's unique identifier.
func (b *Batch) ID() kernel.UUID {
	return b.id
}

// Locality returns the grouping key shared by the batch's member orders.
func (b *Batch) Locality() kernel.Locality {
	return b.locality
}

// AggregateWeight returns the reconciled sum of member order weights.
func (b *Batch) AggregateWeight() kernel.Weight {
	return b.aggregateWeight
}

// Capacity returns the payload ceiling.
func (b *Batch) Capacity() kernel.Weight {
	return b.capacity
}

// Status returns the lifecycle state.
func (b *Batch) Status() Status {
	return b.status
}

// Driver returns the assigned driver's ID, nil while Open.
func (b *Batch) Driver() *kernel.UUID {
	return b.driverID
}

// ScheduledDate returns the computed delivery date, nil until assignment.
func (b *Batch) ScheduledDate() *time.Time {
	return b.scheduledDate
}

// CreatedAt returns the creation timestamp.
func (b *Batch) CreatedAt() time.Time {
	return b.createdAt
}

// RemainingCapacity returns the spare headroom under the ceiling.
func (b *Batch) RemainingCapacity() kernel.Weight {
	return b.capacity.Sub(b.aggregateWeight)
}

// CanFit reports whether an order of the given weight would keep the batch
// under its ceiling. Always false once the batch is no longer Open.
func (b *Batch) CanFit(weight kernel.Weight) bool {
	if !b.status.IsOpen() {
		return false
	}
	return b.aggregateWeight.Add(weight).Cmp(b.capacity) <= 0
}

// SetAggregateWeight overwrites the stored aggregate with a freshly
// recomputed sum. This is the reconciler's entry point and the only mutation
// of the aggregate; incremental adjustment elsewhere is what caused weight
// drift in the first place.
//
// Returns ErrCapacityExceeded if the recomputed sum is above the ceiling.
func (b *Batch) SetAggregateWeight(weight kernel.Weight) error {
	if weight.IsNegative() {
		return errs.NewValueIsInvalidErrorWithCause("aggregate weight",
			fmt.Errorf("%s is negative", weight.String()))
	}
	if weight.Cmp(b.capacity) > 0 {
		return fmt.Errorf("%w: %s over ceiling %s for batch %s",
			ErrCapacityExceeded, weight.String(), b.capacity.String(), b.id.String())
	}

	b.aggregateWeight = weight
	return nil
}

// Assign transitions the batch to Assigned, records the driver, and computes
// the scheduled delivery date from the cutoff rule: assignment before the
// cutoff hour schedules delivery for the next day, after it for the day
// after next.
//
// The transition is gated: the batch must have reached the policy's minimum
// fill, or its scheduling deadline must have elapsed.
func (b *Batch) Assign(driverID kernel.UUID, now time.Time, policy AssignmentPolicy) error {
	if err := driverID.Validate(); err != nil {
		return err
	}

	newStatus, err := b.status.Assign()
	if err != nil {
		return err
	}

	minFill := b.capacity.MulFloat(policy.MinFillRatio)
	deadlineElapsed := now.Sub(b.createdAt) >= policy.Deadline
	if b.aggregateWeight.Cmp(minFill) < 0 && !deadlineElapsed {
		return ErrBatchNotReadyForAssignment
	}

	scheduled := scheduleDeliveryDate(now, policy.CutoffHour)

	b.status = newStatus
	b.driverID = &driverID
	b.scheduledDate = &scheduled
	return nil
}

// StartDelivery transitions the batch to Delivering.
func (b *Batch) StartDelivery() error {
	newStatus, err := b.status.StartDelivery()
	if err != nil {
		return err
	}

	b.status = newStatus
	return nil
}

// CompleteDelivery transitions the batch to Delivered.
func (b *Batch) CompleteDelivery() error {
	newStatus, err := b.status.Complete()
	if err != nil {
		return err
	}

	b.status = newStatus
	return nil
}

// scheduleDeliveryDate applies the cutoff rule. The result is a calendar date
// at midnight in now's location.
func scheduleDeliveryDate(now time.Time, cutoffHour int) time.Time {
	days := 1
	if now.Hour() >= cutoffHour {
		days = 2
	}

	next := now.AddDate(0, 0, days)
	return time.Date(next.Year(), next.Month(), next.Day(), 0, 0, 0, 0, next.Location())
}

func (b *Batch) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	b.id = id
	return nil
}

func (b *Batch) setLocality(locality kernel.Locality) error {
	if err := locality.Validate(); err != nil {
		return err
	}
	b.locality = locality
	return nil
}

func (b *Batch) setCapacity(capacity kernel.Weight) error {
	if !capacity.IsPositive() {
		return errs.NewValueIsInvalidErrorWithCause("capacity",
			fmt.Errorf("%s is not greater than 0", capacity.String()))
	}
	b.capacity = capacity
	return nil
}

func (b *Batch) setCreatedAt(createdAt time.Time) error {
	if createdAt.IsZero() {
		return errs.NewValueIsRequiredError("createdAt")
	}
	b.createdAt = createdAt
	return nil
}

func (b *Batch) setLifecycle(status Status, driverID *kernel.UUID, scheduledDate *time.Time) error {
	if err := status.Validate(); err != nil {
		return err
	}

	hasDriver := driverID != nil
	if hasDriver {
		if err := driverID.Validate(); err != nil {
			return err
		}
	}

	if status == Open && hasDriver {
		return errs.NewValueIsInvalidErrorWithCause("status",
			fmt.Errorf("%s is not a valid status to have a driver", status.String()))
	}
	if status != Open && !hasDriver {
		return errs.NewValueIsInvalidErrorWithCause("status",
			fmt.Errorf("%s is not a valid status to have no driver", status.String()))
	}
	if status != Open && scheduledDate == nil {
		return errs.NewValueIsInvalidErrorWithCause("scheduled date",
			fmt.Errorf("%s requires a scheduled delivery date", status.String()))
	}

	b.status = status
	b.driverID = driverID
	b.scheduledDate = scheduledDate
	return nil
}
