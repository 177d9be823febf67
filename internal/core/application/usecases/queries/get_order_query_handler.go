package queries

import (
	"context"
	"database/sql"
	"errors"

	"consolidation/internal/core/domain/model/kernel"
	"consolidation/internal/core/domain/model/order"
	"consolidation/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GetOrderQueryHandler reads a single order and its line items directly from
// the database.
//
// Example:
//
//	handler := NewGetOrderQueryHandler(db)
//	query, _ := NewGetOrderQuery(orderID)
//
//	resp, err := handler.Handle(ctx, query)
//	if err != nil {
//	    return err
//	}
//	fmt.Printf("order %s is %s\n", resp.ID, resp.ApprovalStatus)
type GetOrderQueryHandler struct {
	db *gorm.DB
}

// NewGetOrderQueryHandler creates a handler for single-order reads.
func NewGetOrderQueryHandler(db *gorm.DB) GetOrderQueryHandler {
	return GetOrderQueryHandler{db: db}
}

// Handle executes the query. Returns an object-not-found error when the order
// does not exist.
func (h GetOrderQueryHandler) Handle(
	ctx context.Context,
	query GetOrderQuery,
) (GetOrderQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetOrderQueryResponse{}, err
	}

	var resp GetOrderQueryResponse

	row := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			locality,
			weight,
			approval_status,
			delivery_status,
			batch_id
		FROM orders
		WHERE id = ?
	`, query.OrderID().Bytes()).Row()

	var (
		id             uuid.UUID
		locality       string
		weight         decimal.Decimal
		approvalStatus int
		deliveryStatus int
		batchID        *uuid.UUID
	)

	err := row.Scan(&id, &locality, &weight, &approvalStatus, &deliveryStatus, &batchID)
	if errors.Is(err, sql.ErrNoRows) {
		return GetOrderQueryResponse{}, errs.NewObjectNotFoundError("order", query.OrderID().String())
	}
	if err != nil {
		return GetOrderQueryResponse{}, err
	}

	orderID, err := kernel.UUIDFromBytes(id[:])
	if err != nil {
		return GetOrderQueryResponse{}, err
	}

	resp.ID = orderID
	resp.Locality = locality
	resp.Weight = weight
	resp.ApprovalStatus = order.ApprovalStatus(approvalStatus).String()
	resp.DeliveryStatus = order.DeliveryStatus(deliveryStatus).String()

	if batchID != nil {
		ref, refErr := kernel.UUIDFromBytes((*batchID)[:])
		if refErr != nil {
			return GetOrderQueryResponse{}, refErr
		}
		resp.BatchID = &ref
	}

	items, err := h.lineItems(ctx, query.OrderID())
	if err != nil {
		return GetOrderQueryResponse{}, err
	}
	resp.LineItems = items

	return resp, nil
}

func (h GetOrderQueryHandler) lineItems(
	ctx context.Context,
	orderID kernel.UUID,
) ([]LineItemResponse, error) {
	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			product_id,
			quantity,
			unit_price
		FROM line_items
		WHERE order_id = ?
		ORDER BY id
	`, orderID.Bytes()).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]LineItemResponse, 0)
	for rows.Next() {
		var (
			productID uuid.UUID
			quantity  int
			unitPrice decimal.Decimal
		)

		if err = rows.Scan(&productID, &quantity, &unitPrice); err != nil {
			return nil, err
		}

		pid, pidErr := kernel.UUIDFromBytes(productID[:])
		if pidErr != nil {
			return nil, pidErr
		}

		items = append(items, LineItemResponse{
			ProductID: pid,
			Quantity:  quantity,
			UnitPrice: unitPrice,
		})
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return items, nil
}
