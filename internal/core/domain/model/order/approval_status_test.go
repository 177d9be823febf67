package order_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"consolidation/internal/core/domain/model/order"
	"consolidation/internal/pkg/errs"
)

func TestApprovalStatus_Validate(t *testing.T) {
	tests := []struct {
		name    string
		status  order.ApprovalStatus
		wantErr bool
	}{
		{name: "pending is valid", status: order.ApprovalPending},
		{name: "approved is valid", status: order.Approved},
		{name: "rejected is valid", status: order.Rejected},
		{name: "unknown is invalid", status: order.ApprovalUnknown, wantErr: true},
		{name: "out of range is invalid", status: order.ApprovalStatus(99), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.status.Validate()
			if tt.wantErr {
				require.Error(t, err)
				require.ErrorIs(t, err, errs.ErrValueIsInvalid)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestApprovalStatus_String(t *testing.T) {
	assert.Equal(t, "Pending", order.ApprovalPending.String())
	assert.Equal(t, "Approved", order.Approved.String())
	assert.Equal(t, "Rejected", order.Rejected.String())
	assert.Equal(t, "Unknown", order.ApprovalStatus(99).String())
}

func TestApprovalStatus_Approve(t *testing.T) {
	t.Run("pending approves", func(t *testing.T) {
		got, err := order.ApprovalPending.Approve()
		require.NoError(t, err)
		assert.Equal(t, order.Approved, got)
	})

	t.Run("approved cannot approve again", func(t *testing.T) {
		_, err := order.Approved.Approve()
		require.Error(t, err)
	})

	t.Run("rejected cannot approve", func(t *testing.T) {
		_, err := order.Rejected.Approve()
		require.Error(t, err)
	})
}

func TestApprovalStatus_Reject(t *testing.T) {
	t.Run("pending rejects", func(t *testing.T) {
		got, err := order.ApprovalPending.Reject()
		require.NoError(t, err)
		assert.Equal(t, order.Rejected, got)
	})

	t.Run("approved rejects as reversal", func(t *testing.T) {
		got, err := order.Approved.Reject()
		require.NoError(t, err)
		assert.Equal(t, order.Rejected, got)
	})

	t.Run("rejected cannot reject again", func(t *testing.T) {
		_, err := order.Rejected.Reject()
		require.Error(t, err)
	})
}

func TestDeliveryStatus_Transitions(t *testing.T) {
	t.Run("pending assigns", func(t *testing.T) {
		got, err := order.DeliveryPending.Assign()
		require.NoError(t, err)
		assert.Equal(t, order.DeliveryAssigned, got)
	})

	t.Run("assigned starts delivering", func(t *testing.T) {
		got, err := order.DeliveryAssigned.StartDelivery()
		require.NoError(t, err)
		assert.Equal(t, order.Delivering, got)
	})

	t.Run("delivering completes", func(t *testing.T) {
		got, err := order.Delivering.Complete()
		require.NoError(t, err)
		assert.Equal(t, order.Delivered, got)
	})

	t.Run("delivered is final", func(t *testing.T) {
		_, err := order.Delivered.Complete()
		require.Error(t, err)
	})

	t.Run("pending cannot start delivering", func(t *testing.T) {
		_, err := order.DeliveryPending.StartDelivery()
		require.Error(t, err)
	})

	t.Run("pending cannot complete", func(t *testing.T) {
		_, err := order.DeliveryPending.Complete()
		require.Error(t, err)
	})
}

func TestDeliveryStatus_String(t *testing.T) {
	assert.Equal(t, "Pending", order.DeliveryPending.String())
	assert.Equal(t, "Assigned", order.DeliveryAssigned.String())
	assert.Equal(t, "Delivering", order.Delivering.String())
	assert.Equal(t, "Delivered", order.Delivered.String())
	assert.Equal(t, "Unknown", order.DeliveryUnknown.String())
}
