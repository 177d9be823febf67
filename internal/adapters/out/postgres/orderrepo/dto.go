// Package orderrepo provides data transfer objects and mapping functions for order persistence.
// This package implements the repository pattern for the order domain aggregate, handling
// the conversion between domain entities and database representations.
package orderrepo

import (
	"consolidation/internal/core/domain/model/kernel"
	"consolidation/internal/core/domain/model/order"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderDTO represents the database structure for persisting order aggregates.
// Maps order domain entities to relational database tables with proper indexing
// for locality grouping and batch membership lookups.
type OrderDTO struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey"`
	BatchID        *uuid.UUID `gorm:"type:uuid;index"`
	Locality       string     `gorm:"type:text;index"`
	Weight         decimal.Decimal `gorm:"type:numeric(12,3)"`
	ApprovalStatus int             `gorm:"index"`
	DeliveryStatus int
	LineItems      []LineItemDTO `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the database table name for order entities.
// Overrides GORM's default naming convention to use "orders".
func (OrderDTO) TableName() string {
	return "orders"
}

// LineItemDTO represents one order line in the child table. Unit weights are
// deliberately not stored here; they are resolved from the catalog whenever
// the order is weighed.
type LineItemDTO struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	OrderID   uuid.UUID `gorm:"type:uuid;index"`
	ProductID uuid.UUID `gorm:"type:uuid"`
	Quantity  int
	UnitPrice decimal.Decimal `gorm:"type:numeric(12,2)"`
}

// TableName specifies the database table name for order lines.
func (LineItemDTO) TableName() string {
	return "line_items"
}

// fromDomain converts an order domain aggregate to its database representation.
// Maps all order attributes including the optional batch reference.
func fromDomain(aggregate *order.Order) OrderDTO {
	var batchID *uuid.UUID
	if id := aggregate.Batch(); id != nil {
		raw := id.Bytes()
		batchID = &raw
	}

	items := make([]LineItemDTO, 0, len(aggregate.LineItems()))
	for _, item := range aggregate.LineItems() {
		items = append(items, LineItemDTO{
			OrderID:   aggregate.ID().Bytes(),
			ProductID: item.ProductID().Bytes(),
			Quantity:  item.Quantity(),
			UnitPrice: item.UnitPrice(),
		})
	}

	return OrderDTO{
		ID:             aggregate.ID().Bytes(),
		BatchID:        batchID,
		Locality:       aggregate.Locality().Key(),
		Weight:         aggregate.Weight().Decimal(),
		ApprovalStatus: int(aggregate.ApprovalStatus()),
		DeliveryStatus: int(aggregate.DeliveryStatus()),
		LineItems:      items,
	}
}

// toDomain converts a database DTO to an order domain aggregate.
// Reconstructs the complete aggregate including statuses and batch reference
// using RestoreOrder.
func toDomain(dto OrderDTO) (*order.Order, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	var batchID *kernel.UUID
	if dto.BatchID != nil {
		ref, refErr := kernel.UUIDFromBytes((*dto.BatchID)[:])
		if refErr != nil {
			return nil, refErr
		}

		batchID = &ref
	}

	items := make([]order.LineItem, 0, len(dto.LineItems))
	for _, itemDTO := range dto.LineItems {
		productID, pidErr := kernel.UUIDFromBytes(itemDTO.ProductID[:])
		if pidErr != nil {
			return nil, pidErr
		}

		item, itemErr := order.NewLineItem(productID, itemDTO.Quantity, itemDTO.UnitPrice)
		if itemErr != nil {
			return nil, itemErr
		}
		items = append(items, item)
	}

	return order.RestoreOrder(
		id,
		kernel.LocalityFromString(dto.Locality),
		kernel.NewWeight(dto.Weight),
		order.ApprovalStatus(dto.ApprovalStatus),
		order.DeliveryStatus(dto.DeliveryStatus),
		batchID,
		items,
	)
}
