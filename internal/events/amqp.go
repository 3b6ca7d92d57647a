package events

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

// DefaultQueue is the queue product events are routed to over AMQP.
const DefaultQueue = "product_events"

// queuePublisher is satisfied by *rabbitmq.Client.
type queuePublisher interface {
	Publish(ctx context.Context, queue string, body []byte) error
	Close() error
}

// AMQPPublisher sends product events to a durable RabbitMQ queue.
type AMQPPublisher struct {
	client queuePublisher
	queue  string
	logger *zap.Logger
}

// NewAMQPPublisher wraps a connected client.
func NewAMQPPublisher(client queuePublisher, logger *zap.Logger) *AMQPPublisher {
	return &AMQPPublisher{client: client, queue: DefaultQueue, logger: logger}
}

// Publish sends ev to the product queue.
func (p *AMQPPublisher) Publish(ctx context.Context, ev ProductEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal product event: %w", err)
	}
	if err := p.client.Publish(ctx, p.queue, body); err != nil {
		return err
	}
	p.logger.Debug("product event published",
		zap.String("type", ev.Type),
		zap.String("product_id", ev.ProductID),
		zap.String("queue", p.queue))
	return nil
}

// Close closes the underlying connection.
func (p *AMQPPublisher) Close() error {
	return p.client.Close()
}
