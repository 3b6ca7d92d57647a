package repositories

import (
	"context"
	"sort"
	"sync"
	"time"

	"katalog/internal/models"

	"github.com/google/uuid"
)

// MemoryProductRepository is an in-memory implementation of ProductRepository.
// It enforces sku uniqueness the way the relational index does. The server
// always runs on GORM; this store backs tests that need real storage
// semantics without a database.
type MemoryProductRepository struct {
	products map[string]models.Product
	mu       sync.RWMutex
}

// NewMemoryProductRepository creates a new instance of MemoryProductRepository.
func NewMemoryProductRepository() *MemoryProductRepository {
	return &MemoryProductRepository{
		products: make(map[string]models.Product),
	}
}

// Count returns the number of products.
func (r *MemoryProductRepository) Count(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.products)), nil
}

// List returns one window of products ordered by creation time.
func (r *MemoryProductRepository) List(ctx context.Context, offset, limit int) ([]models.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]models.Product, 0, len(r.products))
	for _, p := range r.products {
		all = append(all, p)
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.Before(all[j].CreatedAt)
		}
		return all[i].ID < all[j].ID
	})

	// Mirror SQL: a negative offset is ignored and a negative limit means no limit.
	if offset < 0 {
		offset = 0
	}
	if offset >= len(all) {
		return []models.Product{}, nil
	}
	end := len(all)
	if limit >= 0 && offset+limit < end {
		end = offset + limit
	}
	return all[offset:end], nil
}

// GetByID returns a product by its ID.
func (r *MemoryProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &product, nil
}

// GetBySKU returns a product by its SKU.
func (r *MemoryProductRepository) GetBySKU(ctx context.Context, sku string) (*models.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.products {
		if p.SKU == sku {
			product := p
			return &product, nil
		}
	}
	return nil, ErrNotFound
}

// Create adds a new product.
func (r *MemoryProductRepository) Create(ctx context.Context, product *models.Product) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	if r.skuTakenLocked(product.SKU, product.ID) {
		return &DuplicateKeyError{Detail: "Key (sku)=(" + product.SKU + ") already exists."}
	}
	now := time.Now()
	if product.CreatedAt.IsZero() {
		product.CreatedAt = now
	}
	product.UpdatedAt = now
	r.products[product.ID] = *product
	return nil
}

// Update applies a partial change to an existing product.
func (r *MemoryProductRepository) Update(ctx context.Context, id string, changes models.ProductChanges) (*models.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	if changes.SKU != nil && r.skuTakenLocked(*changes.SKU, id) {
		return nil, &DuplicateKeyError{Detail: "Key (sku)=(" + *changes.SKU + ") already exists."}
	}
	if changes.Name != nil {
		product.Name = *changes.Name
	}
	if changes.SKU != nil {
		product.SKU = *changes.SKU
	}
	if changes.Price != nil {
		product.Price = *changes.Price
	}
	if changes.Stock != nil {
		product.Stock = *changes.Stock
	}
	if changes.Category != nil {
		product.Category = *changes.Category
	}
	if !changes.Empty() {
		product.UpdatedAt = time.Now()
	}
	r.products[id] = product
	return &product, nil
}

// Delete removes a product by its ID.
func (r *MemoryProductRepository) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[id]; !ok {
		return ErrNotFound
	}
	delete(r.products, id)
	return nil
}

func (r *MemoryProductRepository) skuTakenLocked(sku, exceptID string) bool {
	for id, p := range r.products {
		if p.SKU == sku && id != exceptID {
			return true
		}
	}
	return false
}
