package batch

import (
	"fmt"

	"consolidation/internal/pkg/errs"
)

// Status represents the lifecycle state of a delivery batch. It implements a
// strictly forward state machine; each transition cascades the corresponding
// delivery status to the batch's member orders.
//
// State transitions:
//
//	Open ──> Assigned ──> Delivering ──> Delivered
//
// Only Open batches accept new member orders. Once a driver is assigned the
// membership is frozen and the allocator treats the batch as not-open.
type Status int

const (
	// StatusUnknown represents an invalid or undefined status.
	// This value (0) helps catch uninitialized Status values.
	StatusUnknown Status = iota

	// Open is the initial status: the batch accepts new orders while spare
	// capacity remains.
	Open

	// Assigned indicates a driver has been assigned and a delivery date
	// scheduled. The batch no longer accepts orders.
	Assigned

	// Delivering indicates the driver has started the route.
	Delivering

	// Delivered indicates the route completed. This is a final state.
	Delivered
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		StatusUnknown: "Unknown",
		Open:          "Open",
		Assigned:      "Assigned",
		Delivering:    "Delivering",
		Delivered:     "Delivered",
	}
}

func getValidStatusStrings() map[Status]string {
	//nolint:exhaustive // StatusUnknown is intentionally excluded as it's invalid
	return map[Status]string{
		Open:       "Open",
		Assigned:   "Assigned",
		Delivering: "Delivering",
		Delivered:  "Delivered",
	}
}

// Validate checks if the Status value is valid. Used when reconstructing
// batches from persistence.
func (s Status) Validate() error {
	if _, ok := getValidStatusStrings()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("status is invalid",
			fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// String returns the human-readable name of the status.
func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "Unknown"
}

// IsOpen reports whether the batch still accepts new member orders.
func (s Status) IsOpen() bool {
	return s == Open
}

// Assign transitions the status to Assigned. Only Open batches can be
// assigned; there are no backward transitions.
func (s Status) Assign() (Status, error) {
	if s != Open {
		return 0, errs.NewValueIsInvalidErrorWithCause(
			"status is invalid",
			fmt.Errorf("%s is not a valid status to assign", s.String()),
		)
	}

	return Assigned, nil
}

// StartDelivery transitions the status to Delivering.
func (s Status) StartDelivery() (Status, error) {
	if s != Assigned {
		return 0, errs.NewValueIsInvalidErrorWithCause(
			"status is invalid",
			fmt.Errorf("%s is not a valid status to start delivering", s.String()),
		)
	}

	return Delivering, nil
}

// Complete transitions the status to Delivered.
func (s Status) Complete() (Status, error) {
	if s != Delivering {
		return 0, errs.NewValueIsInvalidErrorWithCause(
			"status is invalid",
			fmt.Errorf("%s is not a valid status to complete", s.String()),
		)
	}

	return Delivered, nil
}
