package order

import (
	"fmt"

	"consolidation/internal/pkg/errs"
)

// DeliveryStatus represents the delivery progress of an order. It only ever
// advances as a cascade of the owning batch's lifecycle; no code path sets it
// directly on an unbatched order.
//
// State transitions:
//
//	DeliveryPending ──> DeliveryAssigned ──> Delivering ──> Delivered
//
// Detaching an order from a still-open batch resets the status to
// DeliveryPending; once the batch has advanced past open there is no way back.
type DeliveryStatus int

const (
	// DeliveryUnknown represents an invalid or undefined delivery status.
	DeliveryUnknown DeliveryStatus = iota

	// DeliveryPending is the initial status: the order is not yet part of a
	// driver-assigned batch.
	DeliveryPending

	// DeliveryAssigned indicates the order's batch has a driver assigned.
	DeliveryAssigned

	// Delivering indicates the driver has started the batch's route.
	Delivering

	// Delivered indicates the batch's route has completed. Final state.
	Delivered
)

func getDeliveryStatusStrings() map[DeliveryStatus]string {
	return map[DeliveryStatus]string{
		DeliveryUnknown:  "Unknown",
		DeliveryPending:  "Pending",
		DeliveryAssigned: "Assigned",
		Delivering:       "Delivering",
		Delivered:        "Delivered",
	}
}

func getValidDeliveryStatusStrings() map[DeliveryStatus]string {
	//nolint:exhaustive // DeliveryUnknown is intentionally excluded as it's invalid
	return map[DeliveryStatus]string{
		DeliveryPending:  "Pending",
		DeliveryAssigned: "Assigned",
		Delivering:       "Delivering",
		Delivered:        "Delivered",
	}
}

// Validate checks if the DeliveryStatus value is valid.
func (s DeliveryStatus) Validate() error {
	if _, ok := getValidDeliveryStatusStrings()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("delivery status is invalid",
			fmt.Errorf("%d is not a valid delivery status", s))
	}
	return nil
}

// String returns the human-readable name of the status.
func (s DeliveryStatus) String() string {
	if str, ok := getDeliveryStatusStrings()[s]; ok {
		return str
	}
	return "Unknown"
}

// Assign transitions the status to DeliveryAssigned as a cascade of the
// batch's open -> assigned transition.
func (s DeliveryStatus) Assign() (DeliveryStatus, error) {
	if s != DeliveryPending {
		return 0, errs.NewValueIsInvalidErrorWithCause(
			"delivery status is invalid",
			fmt.Errorf("%s is not a valid status to assign", s.String()),
		)
	}

	return DeliveryAssigned, nil
}

// StartDelivery transitions the status to Delivering as a cascade of the
// batch's assigned -> delivering transition.
func (s DeliveryStatus) StartDelivery() (DeliveryStatus, error) {
	if s != DeliveryAssigned {
		return 0, errs.NewValueIsInvalidErrorWithCause(
			"delivery status is invalid",
			fmt.Errorf("%s is not a valid status to start delivering", s.String()),
		)
	}

	return Delivering, nil
}

// Complete transitions the status to Delivered as a cascade of the batch's
// delivering -> delivered transition. Delivered is a final state.
func (s DeliveryStatus) Complete() (DeliveryStatus, error) {
	if s != Delivering {
		return 0, errs.NewValueIsInvalidErrorWithCause(
			"delivery status is invalid",
			fmt.Errorf("%s is not a valid status to complete", s.String()),
		)
	}

	return Delivered, nil
}
