package events

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// DefaultKafkaTopic is used when no topic is configured.
const DefaultKafkaTopic = "product-events"

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes product events to a Kafka topic keyed by product id.
type KafkaPublisher struct {
	writer messageWriter
	logger *zap.Logger
}

// NewKafkaPublisher creates a publisher for a comma separated broker list.
func NewKafkaPublisher(brokers, topic string, logger *zap.Logger) *KafkaPublisher {
	if topic == "" {
		topic = DefaultKafkaTopic
	}
	writer := &kafka.Writer{
		Addr:         kafka.TCP(splitBrokers(brokers)...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
	}
	return newKafkaPublisher(writer, logger)
}

func newKafkaPublisher(w messageWriter, logger *zap.Logger) *KafkaPublisher {
	return &KafkaPublisher{writer: w, logger: logger}
}

// Publish sends ev to the topic.
func (p *KafkaPublisher) Publish(ctx context.Context, ev ProductEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal product event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(ev.ProductID),
		Value: body,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(ev.Type)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write product event: %w", err)
	}

	p.logger.Debug("product event published",
		zap.String("type", ev.Type),
		zap.String("product_id", ev.ProductID))
	return nil
}

// Close flushes and closes the writer.
func (p *KafkaPublisher) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}

func splitBrokers(brokers string) []string {
	var out []string
	for _, b := range strings.Split(brokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}
