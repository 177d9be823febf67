package productcatalog

import (
	"context"
	"errors"

	"consolidation/internal/core/domain/model/kernel"
	"consolidation/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProductDTO is the database representation of a catalog product.
type ProductDTO struct {
	ID     uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Name   string          `gorm:"type:text;not null"`
	Weight decimal.Decimal `gorm:"type:numeric(12,3);not null"`
	Price  decimal.Decimal `gorm:"type:numeric(12,2);not null"`
}

// TableName returns the database table name for products.
func (ProductDTO) TableName() string {
	return "products"
}

// Catalog reads product unit weights and prices from the products table.
// It backs the weight resolver and price fill-in on line item edits.
type Catalog struct {
	db *gorm.DB
}

// NewCatalog creates a catalog backed by the given database connection.
func NewCatalog(db *gorm.DB) *Catalog {
	return &Catalog{db: db}
}

// UnitWeight returns the catalog unit weight for a product.
// Returns an ObjectNotFoundError if the product does not exist.
func (c *Catalog) UnitWeight(ctx context.Context, productID kernel.UUID) (kernel.Weight, error) {
	dto, err := c.find(ctx, productID)
	if err != nil {
		return kernel.Weight{}, err
	}
	return kernel.NewWeight(dto.Weight), nil
}

// UnitPrice returns the catalog unit price for a product.
// Returns an ObjectNotFoundError if the product does not exist.
func (c *Catalog) UnitPrice(ctx context.Context, productID kernel.UUID) (decimal.Decimal, error) {
	dto, err := c.find(ctx, productID)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return dto.Price, nil
}

func (c *Catalog) find(ctx context.Context, productID kernel.UUID) (ProductDTO, error) {
	var dto ProductDTO

	result := c.db.WithContext(ctx).First(&dto, "id = ?", productID.Bytes())
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return ProductDTO{}, errs.NewObjectNotFoundError("product", productID)
		}
		return ProductDTO{}, result.Error
	}

	return dto, nil
}
