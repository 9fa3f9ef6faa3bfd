// Package publisher delivers event lifecycle notifications.
package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"eventsapi/internal/domain"
	"eventsapi/internal/metrics"
)

// messageWriter is the subset of *kafka.Writer used by KafkaPublisher.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes each change as a JSON message keyed by event id, so that all
// changes to one event land on the same partition.
type KafkaPublisher struct {
	writer messageWriter
	logger *slog.Logger
}

func NewKafkaPublisher(brokers []string, topic string, logger *slog.Logger) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		BatchTimeout:           10 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}
	return &KafkaPublisher{writer: writer, logger: logger}
}

func (p *KafkaPublisher) Publish(ctx context.Context, change domain.EventChange) error {
	value, err := json.Marshal(change)
	if err != nil {
		metrics.EventChangesPublished.WithLabelValues(string(change.Type), "error").Inc()
		return fmt.Errorf("encode event change: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(change.EventID),
		Value: value,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(change.Type)},
			{Key: "id", Value: []byte(change.ID)},
		},
		Time: change.OccurredAt,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		metrics.EventChangesPublished.WithLabelValues(string(change.Type), "error").Inc()
		return fmt.Errorf("write event change: %w", err)
	}
	metrics.EventChangesPublished.WithLabelValues(string(change.Type), "success").Inc()
	p.logger.DebugContext(ctx, "event change published", "type", change.Type, "event_id", change.EventID)
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// Nop discards every change. Used when no broker is configured.
type Nop struct{}

func (Nop) Publish(context.Context, domain.EventChange) error { return nil }

func (Nop) Close() error { return nil }
