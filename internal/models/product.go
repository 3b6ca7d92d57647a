package models

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Prices travel as JSON numbers, matching the stock and pagination fields.
	decimal.MarshalJSONWithoutQuotes = true
}

// Product represents a product in the catalog.
type Product struct {
	ID        string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name      string          `json:"name" gorm:"type:varchar(255);not null"`
	SKU       string          `json:"sku" gorm:"column:sku;uniqueIndex;type:varchar(100);not null"`
	Price     decimal.Decimal `json:"price" gorm:"type:numeric(12,2);not null"`
	Stock     int             `json:"stock" gorm:"not null;default:0"`
	Category  string          `json:"category" gorm:"type:varchar(100);not null"`
	CreatedAt time.Time       `json:"created_at" gorm:"index"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// TableName returns the table name for Product.
func (Product) TableName() string {
	return "products"
}

// CreateProductRequest is the body of a create call. Pointers distinguish an
// absent field from a zero value.
type CreateProductRequest struct {
	Name     *string          `json:"name" validate:"required,min=1"`
	SKU      *string          `json:"sku" validate:"required,min=1"`
	Price    *decimal.Decimal `json:"price" validate:"required"`
	Stock    *int             `json:"stock" validate:"required"`
	Category *string          `json:"category" validate:"required,min=1"`
}

// UpdateProductRequest is the body of a partial update. Absent fields are
// left untouched.
type UpdateProductRequest struct {
	Name     *string          `json:"name,omitempty"`
	SKU      *string          `json:"sku,omitempty"`
	Price    *decimal.Decimal `json:"price,omitempty"`
	Stock    *int             `json:"stock,omitempty"`
	Category *string          `json:"category,omitempty"`
}

// ProductChanges is the set of columns a partial update writes.
type ProductChanges struct {
	Name     *string
	SKU      *string
	Price    *decimal.Decimal
	Stock    *int
	Category *string
}

// Empty reports whether no field would change.
func (c ProductChanges) Empty() bool {
	return c.Name == nil && c.SKU == nil && c.Price == nil && c.Stock == nil && c.Category == nil
}
