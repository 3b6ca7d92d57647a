package repositories

import (
	"context"
	"fmt"

	"katalog/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

// Count returns the number of products in the table.
func (r *GORMProductRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Product{}).Count(&total).Error; err != nil {
		return 0, fmt.Errorf("failed to count products: %w", translate(err))
	}
	return total, nil
}

// List retrieves one window of products ordered by creation time.
func (r *GORMProductRepository) List(ctx context.Context, offset, limit int) ([]models.Product, error) {
	products := make([]models.Product, 0)
	err := r.db.WithContext(ctx).
		Order("created_at ASC").Order("id ASC").
		Offset(offset).Limit(limit).
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", translate(err))
	}
	return products, nil
}

// GetByID retrieves a single product by its ID from the database.
func (r *GORMProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		err = translate(err)
		if err == ErrNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get product by ID %s: %w", id, err)
	}
	return &product, nil
}

// GetBySKU retrieves a single product by its SKU from the database.
func (r *GORMProductRepository) GetBySKU(ctx context.Context, sku string) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "sku = ?", sku).Error; err != nil {
		err = translate(err)
		if err == ErrNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get product by SKU %s: %w", sku, err)
	}
	return &product, nil
}

// Create creates a new product in the database.
func (r *GORMProductRepository) Create(ctx context.Context, product *models.Product) error {
	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return fmt.Errorf("failed to create product: %w", translate(err))
	}
	return nil
}

// Update writes only the columns present in changes and returns the stored row.
func (r *GORMProductRepository) Update(ctx context.Context, id string, changes models.ProductChanges) (*models.Product, error) {
	cols := changeColumns(changes)
	if len(cols) > 0 {
		res := r.db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", id).Updates(cols)
		if res.Error != nil {
			return nil, fmt.Errorf("failed to update product: %w", translate(res.Error))
		}
		if res.RowsAffected == 0 {
			return nil, ErrNotFound
		}
	}
	return r.GetByID(ctx, id)
}

// Delete deletes a product by its ID from the database.
func (r *GORMProductRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.Product{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete product: %w", translate(res.Error))
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func changeColumns(c models.ProductChanges) map[string]interface{} {
	cols := make(map[string]interface{})
	if c.Name != nil {
		cols["name"] = *c.Name
	}
	if c.SKU != nil {
		cols["sku"] = *c.SKU
	}
	if c.Price != nil {
		cols["price"] = *c.Price
	}
	if c.Stock != nil {
		cols["stock"] = *c.Stock
	}
	if c.Category != nil {
		cols["category"] = *c.Category
	}
	return cols
}
