package http

import (
	"time"

	"consolidation/internal/core/application/usecases/queries"

	"github.com/google/uuid"
)

// Error is the JSON shape returned for every failed request.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// LineItem is one order line as carried over the wire.
type LineItem struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
	UnitPrice string    `json:"unit_price"`
}

// ReplaceLineItemsRequest is the body for PUT /orders/{id}/items.
type ReplaceLineItemsRequest struct {
	Items []LineItem `json:"items"`
}

// AssignDriverRequest is the body for POST /batches/{id}/assign.
type AssignDriverRequest struct {
	DriverID uuid.UUID `json:"driver_id"`
}

// Order is the read model returned by GET /orders/{id}.
type Order struct {
	ID             uuid.UUID  `json:"id"`
	Locality       string     `json:"locality"`
	Weight         string     `json:"weight"`
	ApprovalStatus string     `json:"approval_status"`
	DeliveryStatus string     `json:"delivery_status"`
	BatchID        *uuid.UUID `json:"batch_id,omitempty"`
	LineItems      []LineItem `json:"line_items"`
}

// Batch is the read model returned by GET /batches/{id}.
type Batch struct {
	ID              uuid.UUID   `json:"id"`
	Locality        string      `json:"locality"`
	AggregateWeight string      `json:"aggregate_weight"`
	Capacity        string      `json:"capacity"`
	Status          string      `json:"status"`
	DriverID        *uuid.UUID  `json:"driver_id,omitempty"`
	ScheduledDate   *time.Time  `json:"scheduled_date,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
	OrderIDs        []uuid.UUID `json:"order_ids"`
}

// OpenBatch is one row of the GET /batches/open listing.
type OpenBatch struct {
	ID              uuid.UUID `json:"id"`
	Locality        string    `json:"locality"`
	AggregateWeight string    `json:"aggregate_weight"`
	Capacity        string    `json:"capacity"`
	FillRatio       float64   `json:"fill_ratio"`
	CreatedAt       time.Time `json:"created_at"`
}

func toOrderModel(resp queries.GetOrderQueryResponse) Order {
	items := make([]LineItem, 0, len(resp.LineItems))
	for _, item := range resp.LineItems {
		items = append(items, LineItem{
			ProductID: item.ProductID.Bytes(),
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice.String(),
		})
	}

	model := Order{
		ID:             resp.ID.Bytes(),
		Locality:       resp.Locality,
		Weight:         resp.Weight.String(),
		ApprovalStatus: resp.ApprovalStatus,
		DeliveryStatus: resp.DeliveryStatus,
		LineItems:      items,
	}

	if resp.BatchID != nil {
		raw := resp.BatchID.Bytes()
		model.BatchID = &raw
	}

	return model
}

func toBatchModel(resp queries.GetBatchQueryResponse) Batch {
	orderIDs := make([]uuid.UUID, 0, len(resp.OrderIDs))
	for _, id := range resp.OrderIDs {
		orderIDs = append(orderIDs, id.Bytes())
	}

	model := Batch{
		ID:              resp.ID.Bytes(),
		Locality:        resp.Locality,
		AggregateWeight: resp.AggregateWeight.String(),
		Capacity:        resp.Capacity.String(),
		Status:          resp.Status,
		ScheduledDate:   resp.ScheduledDate,
		CreatedAt:       resp.CreatedAt,
		OrderIDs:        orderIDs,
	}

	if resp.DriverID != nil {
		raw := resp.DriverID.Bytes()
		model.DriverID = &raw
	}

	return model
}
