package kafka

import (
	"context"
	"fmt"
	"time"

	kafkago "github.com/segmentio/kafka-go"
)

// Message is one record bound for the event stream.
type Message struct {
	Key     []byte
	Value   []byte
	Headers map[string]string
}

// Producer writes to the engine's single event topic. Messages are hashed by
// key, so records sharing an account ID land on one partition in order.
type Producer struct {
	writer *kafkago.Writer
}

// NewProducer opens a writer for the configured topic.
func NewProducer(cfg Config) *Producer {
	return &Producer{
		writer: &kafkago.Writer{
			Addr:         kafkago.TCP(cfg.Brokers...),
			Topic:        cfg.EventTopic,
			Balancer:     &kafkago.Hash{},
			BatchTimeout: 10 * time.Millisecond,
			RequiredAcks: kafkago.RequireAll,
		},
	}
}

// Publish sends the given messages to the event topic.
func (p *Producer) Publish(ctx context.Context, messages ...Message) error {
	records := make([]kafkago.Message, 0, len(messages))
	for _, msg := range messages {
		record := kafkago.Message{
			Key:   msg.Key,
			Value: msg.Value,
		}
		for k, v := range msg.Headers {
			record.Headers = append(record.Headers, kafkago.Header{
				Key:   k,
				Value: []byte(v),
			})
		}
		records = append(records, record)
	}

	if err := p.writer.WriteMessages(ctx, records...); err != nil {
		return fmt.Errorf("kafka publish to %s: %w", p.writer.Topic, err)
	}
	return nil
}

// Topic reports the topic this producer writes to.
func (p *Producer) Topic() string {
	return p.writer.Topic
}

// Close flushes and closes the underlying writer.
func (p *Producer) Close() error {
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("closing writer for topic %s: %w", p.writer.Topic, err)
	}
	return nil
}
