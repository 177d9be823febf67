package order

import (
	"errors"
	"fmt"

	"consolidation/internal/core/domain/model/kernel"
	"consolidation/internal/pkg/errs"
	"consolidation/internal/pkg/guard"
)

var (
	// ErrOrderIsNotConstructed is returned when an Order instance was not created
	// through the NewOrder or RestoreOrder factory functions.
	ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder or RestoreOrder constructor")

	// ErrOrderAlreadyBatched is returned when attaching an order that already
	// references a different batch.
	ErrOrderAlreadyBatched = errors.New("order already references another batch")

	// ErrOrderNotBatched is returned when a cascade or detach operation targets
	// an order without a batch reference.
	ErrOrderNotBatched = errors.New("order does not reference a batch")

	// ErrLocalityMismatch is returned when attaching an order to a batch whose
	// locality differs from the order's own locality.
	ErrLocalityMismatch = errors.New("order and batch localities differ")

	// ErrLineItemsLocked is returned when replacing line items on an order that
	// has already been approved.
	ErrLineItemsLocked = errors.New("line items are immutable once the order is approved")
)

// Order represents a customer order in the consolidation system. It is an
// aggregate root tracking two independent status dimensions: the approval
// state driven by the approval workflow, and the delivery state driven by the
// owning batch's lifecycle cascade.
//
// Order maintains these invariants:
//   - An order references a batch only while it is approved.
//   - A referenced batch's locality always equals the order's locality.
//   - Delivery status advances only while the order is batched.
//   - Weight is recomputed from line items, never adjusted incrementally.
type Order struct {
	// id is the unique identifier for the order
	id kernel.UUID

	// locality is the normalized grouping key derived from the delivery address
	locality kernel.Locality

	// weight is the resolved shippable weight; zero until first resolved
	weight kernel.Weight

	// approvalStatus is driven by the external approval workflow
	approvalStatus ApprovalStatus

	// deliveryStatus is driven by the owning batch's lifecycle cascade
	deliveryStatus DeliveryStatus

	// batchID references the owning batch, nil while unbatched
	batchID *kernel.UUID

	// lineItems are the order's lines; immutable once approved
	lineItems []LineItem

	// guard ensures the order was created via a factory function
	guard guard.ConstructorGuard
}

// NewOrder creates a new Order in pending approval and pending delivery
// state. The order's weight starts at zero and is resolved from the line
// items by the weight resolver before allocation.
//
// Parameters:
//   - id: unique identifier (must be a valid UUID)
//   - locality: normalized grouping key (must be constructed)
//   - lineItems: order lines (each must be constructed; the set may be empty)
func NewOrder(id kernel.UUID, locality kernel.Locality, lineItems []LineItem) (*Order, error) {
	o := &Order{
		approvalStatus: ApprovalPending,
		deliveryStatus: DeliveryPending,
		guard:          guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		o.setID(id),
		o.setLocality(locality),
		o.setLineItems(lineItems),
	); err != nil {
		return nil, err
	}

	return o, nil
}

// RestoreOrder reconstructs an Order from persistence, including its current
// statuses and batch reference. Cross-field consistency is validated: a batch
// reference requires approved status, and delivery progress requires a batch
// reference.
func RestoreOrder(
	id kernel.UUID,
	locality kernel.Locality,
	weight kernel.Weight,
	approvalStatus ApprovalStatus,
	deliveryStatus DeliveryStatus,
	batchID *kernel.UUID,
	lineItems []LineItem,
) (*Order, error) {
	o := &Order{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		o.setID(id),
		o.setLocality(locality),
		o.setLineItems(lineItems),
		o.setWeight(weight),
		o.setStatuses(approvalStatus, deliveryStatus, batchID),
	); err != nil {
		return nil, err
	}

	return o, nil
}

// Validate ensures the Order instance was properly constructed through a
// factory function. Call when rehydrating orders from persistence.
func (o *Order) Validate() error {
	if o == nil {
		return ErrOrderIsNotConstructed
	}
	return o.guard.Validate(ErrOrderIsNotConstructed)
}

// IsEqual compares two orders by their unique identifiers.
func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id.IsEqual(other.id)
}

// ID returns the order's unique identifier.
func (o *Order) ID() kernel.UUID {
	return o.id
}

// Locality returns the order's grouping key.
func (o *Order) Locality() kernel.Locality {
	return o.locality
}

// Weight returns the order's resolved weight. Zero means not yet resolved.
func (o *Order) Weight() kernel.Weight {
	return o.weight
}

// ApprovalStatus returns the current approval state.
func (o *Order) ApprovalStatus() ApprovalStatus {
	return o.approvalStatus
}

// DeliveryStatus returns the current delivery state.
func (o *Order) DeliveryStatus() DeliveryStatus {
	return o.deliveryStatus
}

// Batch returns the owning batch's ID, or nil while unbatched.
func (o *Order) Batch() *kernel.UUID {
	return o.batchID
}

// IsBatched reports whether the order currently references a batch.
func (o *Order) IsBatched() bool {
	return o.batchID != nil
}

// LineItems returns a copy of the order's lines.
func (o *Order) LineItems() []LineItem {
	items := make([]LineItem, len(o.lineItems))
	copy(items, o.lineItems)
	return items
}

// UpdateWeight overwrites the order's resolved weight. The weight must be
// positive; the resolver substitutes the minimum sentinel for weightless
// orders before this is called.
func (o *Order) UpdateWeight(weight kernel.Weight) error {
	return o.setPositiveWeight(weight)
}

// ReplaceLineItems swaps the order's lines for a new set. Only permitted
// before approval; the caller must recompute the order's weight afterwards.
func (o *Order) ReplaceLineItems(lineItems []LineItem) error {
	if o.approvalStatus != ApprovalPending {
		return ErrLineItemsLocked
	}
	return o.setLineItems(lineItems)
}

// Approve transitions the order to approved. Approval is what makes the
// order eligible for batch allocation.
func (o *Order) Approve() error {
	newStatus, err := o.approvalStatus.Approve()
	if err != nil {
		return err
	}

	o.approvalStatus = newStatus
	return nil
}

// Reject transitions the order to rejected and severs any batch reference.
// The caller is responsible for reconciling the former batch; the order
// itself no longer knows about it after this returns.
func (o *Order) Reject() error {
	if o.deliveryStatus == Delivering || o.deliveryStatus == Delivered {
		return errs.NewValueIsInvalidErrorWithCause("delivery status",
			fmt.Errorf("%s order cannot be rejected", o.deliveryStatus.String()))
	}

	newStatus, err := o.approvalStatus.Reject()
	if err != nil {
		return err
	}

	o.approvalStatus = newStatus
	o.batchID = nil
	o.deliveryStatus = DeliveryPending
	return nil
}

// AttachToBatch writes the order's batch reference. The order must be
// approved and the batch's locality must equal the order's own; attaching to
// the batch the order already references is a no-op, which keeps allocation
// retries idempotent.
func (o *Order) AttachToBatch(batchID kernel.UUID, batchLocality kernel.Locality) error {
	if err := batchID.Validate(); err != nil {
		return err
	}

	if o.approvalStatus != Approved {
		return errs.NewValueIsInvalidErrorWithCause("approval status",
			fmt.Errorf("%s order cannot join a batch", o.approvalStatus.String()))
	}

	if !o.locality.IsEqual(batchLocality) {
		return ErrLocalityMismatch
	}

	if o.batchID != nil {
		if o.batchID.IsEqual(batchID) {
			return nil
		}
		return ErrOrderAlreadyBatched
	}

	o.batchID = &batchID
	return nil
}

// DetachFromBatch clears the order's batch reference and resets its delivery
// status. Used when membership changes while the batch is still open.
func (o *Order) DetachFromBatch() error {
	if o.batchID == nil {
		return ErrOrderNotBatched
	}

	o.batchID = nil
	o.deliveryStatus = DeliveryPending
	return nil
}

// MarkAssigned cascades the owning batch's driver assignment to this order.
func (o *Order) MarkAssigned() error {
	if err := o.validateCascade(); err != nil {
		return err
	}

	newStatus, err := o.deliveryStatus.Assign()
	if err != nil {
		return err
	}

	o.deliveryStatus = newStatus
	return nil
}

// MarkDelivering cascades the owning batch's route start to this order.
func (o *Order) MarkDelivering() error {
	if err := o.validateCascade(); err != nil {
		return err
	}

	newStatus, err := o.deliveryStatus.StartDelivery()
	if err != nil {
		return err
	}

	o.deliveryStatus = newStatus
	return nil
}

// MarkDelivered cascades the owning batch's route completion to this order.
func (o *Order) MarkDelivered() error {
	if err := o.validateCascade(); err != nil {
		return err
	}

	newStatus, err := o.deliveryStatus.Complete()
	if err != nil {
		return err
	}

	o.deliveryStatus = newStatus
	return nil
}

func (o *Order) validateCascade() error {
	if o.batchID == nil {
		return ErrOrderNotBatched
	}
	if o.approvalStatus != Approved {
		return errs.NewValueIsInvalidErrorWithCause("approval status",
			fmt.Errorf("%s order cannot progress delivery", o.approvalStatus.String()))
	}
	return nil
}

func (o *Order) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	o.id = id
	return nil
}

func (o *Order) setLocality(locality kernel.Locality) error {
	if err := locality.Validate(); err != nil {
		return err
	}
	o.locality = locality
	return nil
}

func (o *Order) setLineItems(lineItems []LineItem) error {
	for i, item := range lineItems {
		if err := item.Validate(); err != nil {
			return fmt.Errorf("line item %d: %w", i, err)
		}
	}

	items := make([]LineItem, len(lineItems))
	copy(items, lineItems)
	o.lineItems = items
	return nil
}

func (o *Order) setWeight(weight kernel.Weight) error {
	if weight.IsNegative() {
		return errs.NewValueIsInvalidErrorWithCause("weight",
			fmt.Errorf("%s is negative", weight.String()))
	}
	o.weight = weight
	return nil
}

func (o *Order) setPositiveWeight(weight kernel.Weight) error {
	if !weight.IsPositive() {
		return errs.NewValueIsInvalidErrorWithCause("weight",
			fmt.Errorf("%s is not greater than 0", weight.String()))
	}
	o.weight = weight
	return nil
}

func (o *Order) setStatuses(
	approvalStatus ApprovalStatus,
	deliveryStatus DeliveryStatus,
	batchID *kernel.UUID,
) error {
	if err := approvalStatus.Validate(); err != nil {
		return err
	}
	if err := deliveryStatus.Validate(); err != nil {
		return err
	}

	if batchID != nil {
		if err := batchID.Validate(); err != nil {
			return err
		}
		if approvalStatus != Approved {
			return errs.NewValueIsInvalidErrorWithCause("batch reference",
				fmt.Errorf("%s order cannot reference a batch", approvalStatus.String()))
		}
	}

	if batchID == nil && deliveryStatus != DeliveryPending {
		return errs.NewValueIsInvalidErrorWithCause("delivery status",
			fmt.Errorf("%s requires a batch reference", deliveryStatus.String()))
	}

	o.approvalStatus = approvalStatus
	o.deliveryStatus = deliveryStatus
	o.batchID = batchID
	return nil
}
