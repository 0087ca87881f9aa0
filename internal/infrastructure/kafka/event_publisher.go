package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/lumenbank/mortgage-engine/pkg/events"
	pkgkafka "github.com/lumenbank/mortgage-engine/pkg/kafka"
)

// EventPublisher implements port.EventPublisher by writing domain events to
// Kafka, keyed by aggregate ID so one account's events stay ordered.
type EventPublisher struct {
	producer *pkgkafka.Producer
	logger   *slog.Logger
}

// NewEventPublisher creates a publisher writing through the given producer.
func NewEventPublisher(producer *pkgkafka.Producer, logger *slog.Logger) *EventPublisher {
	return &EventPublisher{producer: producer, logger: logger}
}

// envelope is the wire shape: a uniform header plus the event's own payload
// fields.
type envelope struct {
	EventID       string `json:"event_id"`
	EventType     string `json:"event_type"`
	AggregateID   string `json:"aggregate_id"`
	AggregateType string `json:"aggregate_type"`
	OccurredAt    string `json:"occurred_at"`
	Payload       any    `json:"payload"`
}

// Publish serialises and sends one domain event.
func (p *EventPublisher) Publish(ctx context.Context, evt events.DomainEvent) error {
	payload, err := json.Marshal(envelope{
		EventID:       evt.EventID().String(),
		EventType:     evt.EventType(),
		AggregateID:   evt.AggregateID(),
		AggregateType: evt.AggregateType(),
		OccurredAt:    evt.OccurredAt().Format(time.RFC3339Nano),
		Payload:       evt,
	})
	if err != nil {
		return fmt.Errorf("marshal event %s: %w", evt.EventType(), err)
	}

	p.logger.DebugContext(ctx, "publishing domain event",
		"event_type", evt.EventType(),
		"aggregate_id", evt.AggregateID(),
		"topic", p.producer.Topic(),
		"payload_size", len(payload),
	)

	msg := pkgkafka.Message{
		Key:   []byte(evt.AggregateID()),
		Value: payload,
		Headers: map[string]string{
			"event_type": evt.EventType(),
			"event_id":   evt.EventID().String(),
		},
	}
	if err := p.producer.Publish(ctx, msg); err != nil {
		return fmt.Errorf("publish event %s: %w", evt.EventType(), err)
	}
	return nil
}
