package repositories

import (
	"context"

	"katalog/internal/models"
)

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	// Count returns the number of stored products.
	Count(ctx context.Context) (int64, error)
	// List returns the products in the half-open window [offset, offset+limit).
	List(ctx context.Context, offset, limit int) ([]models.Product, error)
	GetByID(ctx context.Context, id string) (*models.Product, error)
	GetBySKU(ctx context.Context, sku string) (*models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, id string, changes models.ProductChanges) (*models.Product, error)
	Delete(ctx context.Context, id string) error
}
