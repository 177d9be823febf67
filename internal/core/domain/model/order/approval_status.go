package order

import (
	"fmt"

	"consolidation/internal/pkg/errs"
)

// ApprovalStatus represents the approval state of an order. Approval is the
// trigger for batch allocation; only approved orders count toward a batch's
// aggregate weight.
//
// State transitions:
//
//	Pending ──┬──> Approved ──> Rejected
//	          │                    ^
//	          └────────────────────┘
//	  (rejection allowed before and after approval)
type ApprovalStatus int

const (
	// ApprovalUnknown represents an invalid or undefined approval status.
	// This value (0) helps catch uninitialized values.
	ApprovalUnknown ApprovalStatus = iota

	// ApprovalPending is the initial status of a newly placed order.
	ApprovalPending

	// Approved indicates the order passed the approval workflow and is
	// eligible for batch allocation.
	Approved

	// Rejected indicates the order was declined, either before approval or
	// as an approval reversal. Rejected orders never belong to a batch.
	Rejected
)

func getApprovalStatusStrings() map[ApprovalStatus]string {
	return map[ApprovalStatus]string{
		ApprovalUnknown: "Unknown",
		ApprovalPending: "Pending",
		Approved:        "Approved",
		Rejected:        "Rejected",
	}
}

func getValidApprovalStatusStrings() map[ApprovalStatus]string {
	//nolint:exhaustive // ApprovalUnknown is intentionally excluded as it's invalid
	return map[ApprovalStatus]string{
		ApprovalPending: "Pending",
		Approved:        "Approved",
		Rejected:        "Rejected",
	}
}

// Validate checks if the ApprovalStatus value is valid.
func (s ApprovalStatus) Validate() error {
	if _, ok := getValidApprovalStatusStrings()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("approval status is invalid",
			fmt.Errorf("%d is not a valid approval status", s))
	}
	return nil
}

// String returns the human-readable name of the status.
func (s ApprovalStatus) String() string {
	if str, ok := getApprovalStatusStrings()[s]; ok {
		return str
	}
	return "Unknown"
}

// Approve transitions the status to Approved. Only pending orders can be
// approved; approving twice or approving a rejected order is an error.
func (s ApprovalStatus) Approve() (ApprovalStatus, error) {
	if s != ApprovalPending {
		return 0, errs.NewValueIsInvalidErrorWithCause(
			"approval status is invalid",
			fmt.Errorf("%s is not a valid status to approve", s.String()),
		)
	}

	return Approved, nil
}

// Reject transitions the status to Rejected. Allowed from Pending (ordinary
// decline) and from Approved (approval reversal, which obliges the caller to
// reconcile the order's former batch).
func (s ApprovalStatus) Reject() (ApprovalStatus, error) {
	if s != ApprovalPending && s != Approved {
		return 0, errs.NewValueIsInvalidErrorWithCause(
			"approval status is invalid",
			fmt.Errorf("%s is not a valid status to reject", s.String()),
		)
	}

	return Rejected, nil
}
