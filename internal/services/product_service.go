package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"katalog/internal/apperror"
	"katalog/internal/events"
	"katalog/internal/metrics"
	"katalog/internal/models"
	"katalog/internal/pagination"
	"katalog/internal/repositories"

	"go.uber.org/zap"
)

// Messages returned by product validation.
const (
	MsgFieldsRequired   = "All fields are required: name, sku, price, stock, category"
	MsgPricePositive    = "Price must be greater than 0"
	MsgStockNonNegative = "Stock must be greater than or equal to 0"
	MsgSKUExists        = "SKU already exists"
	MsgProductNotFound  = "Product not found"
)

// EventPublishTimeout bounds how long a write waits on the broker.
const EventPublishTimeout = 5 * time.Second

// ProductService handles business logic related to products.
type ProductService struct {
	repo      repositories.ProductRepository
	publisher events.Publisher
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

// NewProductService creates a new ProductService. A nil publisher disables
// product events; a nil metrics set disables failure counting.
func NewProductService(repo repositories.ProductRepository, publisher events.Publisher, m *metrics.Metrics, logger *zap.Logger) *ProductService {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductService{
		repo:      repo,
		publisher: publisher,
		metrics:   m,
		logger:    logger,
	}
}

// ListProducts returns one page of products plus the pagination block for it.
func (s *ProductService) ListProducts(ctx context.Context, params pagination.Params) ([]models.Product, pagination.PageInfo, error) {
	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, pagination.PageInfo{}, err
	}
	products, err := s.repo.List(ctx, params.Offset(), params.Limit)
	if err != nil {
		return nil, pagination.PageInfo{}, err
	}
	return products, params.Info(total), nil
}

// GetProduct retrieves a single product by its ID.
func (s *ProductService) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, apperror.NotFound(MsgProductNotFound)
	}
	return product, err
}

// CreateProduct validates req and inserts a new product.
func (s *ProductService) CreateProduct(ctx context.Context, req models.CreateProductRequest) (*models.Product, error) {
	if req.Name == nil || req.SKU == nil || req.Price == nil || req.Stock == nil || req.Category == nil ||
		*req.Name == "" || *req.SKU == "" || *req.Category == "" {
		return nil, apperror.Validation(MsgFieldsRequired)
	}
	if !req.Price.IsPositive() {
		return nil, apperror.Validation(MsgPricePositive)
	}
	if *req.Stock < 0 {
		return nil, apperror.Validation(MsgStockNonNegative)
	}
	if err := s.ensureSKUFree(ctx, *req.SKU); err != nil {
		return nil, err
	}

	product := &models.Product{
		Name:     *req.Name,
		SKU:      *req.SKU,
		Price:    *req.Price,
		Stock:    *req.Stock,
		Category: *req.Category,
	}
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, err
	}

	s.publish(ctx, events.ProductCreated, product)
	return product, nil
}

// UpdateProduct applies the fields present in req to an existing product.
// Nothing is written when any present field is invalid.
func (s *ProductService) UpdateProduct(ctx context.Context, id string, req models.UpdateProductRequest) (*models.Product, error) {
	existing, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := validateUpdate(req); err != nil {
		return nil, err
	}
	if req.SKU != nil && *req.SKU != existing.SKU {
		if err := s.ensureSKUFree(ctx, *req.SKU); err != nil {
			return nil, err
		}
	}

	changes := models.ProductChanges{
		Name:     req.Name,
		SKU:      req.SKU,
		Price:    req.Price,
		Stock:    req.Stock,
		Category: req.Category,
	}
	if changes.Empty() {
		return existing, nil
	}

	product, err := s.repo.Update(ctx, id, changes)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, apperror.NotFound(MsgProductNotFound)
	}
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.ProductUpdated, product)
	return product, nil
}

// DeleteProduct deletes a product by its ID.
func (s *ProductService) DeleteProduct(ctx context.Context, id string) error {
	existing, err := s.GetProduct(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return apperror.NotFound(MsgProductNotFound)
		}
		return err
	}

	s.publish(ctx, events.ProductDeleted, existing)
	return nil
}

func validateUpdate(req models.UpdateProductRequest) error {
	for _, f := range []struct {
		label string
		value *string
	}{
		{"Name", req.Name},
		{"SKU", req.SKU},
		{"Category", req.Category},
	} {
		if f.value != nil && *f.value == "" {
			return apperror.Validation(fmt.Sprintf("%s must not be empty", f.label))
		}
	}
	if req.Price != nil && !req.Price.IsPositive() {
		return apperror.Validation(MsgPricePositive)
	}
	if req.Stock != nil && *req.Stock < 0 {
		return apperror.Validation(MsgStockNonNegative)
	}
	return nil
}

func (s *ProductService) ensureSKUFree(ctx context.Context, sku string) error {
	_, err := s.repo.GetBySKU(ctx, sku)
	switch {
	case err == nil:
		return apperror.Conflict(MsgSKUExists)
	case errors.Is(err, repositories.ErrNotFound):
		return nil
	default:
		return err
	}
}

// publish hands the event to the broker. Delivery problems never fail the
// write that produced the event.
func (s *ProductService) publish(ctx context.Context, eventType string, p *models.Product) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), EventPublishTimeout)
	defer cancel()

	ev := events.NewProductEvent(eventType, p)
	if err := s.publisher.Publish(ctx, ev); err != nil {
		s.logger.Warn("failed to publish product event",
			zap.String("type", eventType),
			zap.String("product_id", p.ID),
			zap.Error(err))
		if s.metrics != nil {
			s.metrics.EventPublishFailure.WithLabelValues(eventType).Inc()
		}
	}
}
