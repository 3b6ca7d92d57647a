package events

import (
	"context"
	"time"

	"katalog/internal/models"
)

// Event types published by the product service.
const (
	ProductCreated = "product.created"
	ProductUpdated = "product.updated"
	ProductDeleted = "product.deleted"
)

// ProductEvent describes a completed write to the catalog.
type ProductEvent struct {
	Type       string          `json:"type"`
	ProductID  string          `json:"product_id"`
	SKU        string          `json:"sku"`
	OccurredAt time.Time       `json:"occurred_at"`
	Product    *models.Product `json:"product,omitempty"`
}

// NewProductEvent builds an event for p. The full record is attached except
// for deletions.
func NewProductEvent(eventType string, p *models.Product) ProductEvent {
	ev := ProductEvent{
		Type:       eventType,
		ProductID:  p.ID,
		SKU:        p.SKU,
		OccurredAt: time.Now().UTC(),
	}
	if eventType != ProductDeleted {
		snapshot := *p
		ev.Product = &snapshot
	}
	return ev
}

// Publisher delivers product events to a broker.
type Publisher interface {
	Publish(ctx context.Context, ev ProductEvent) error
	Close() error
}

// NoopPublisher drops every event.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, ProductEvent) error { return nil }

func (NoopPublisher) Close() error { return nil }
