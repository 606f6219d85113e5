// Package kafka provides a Kafka-backed optimization event publisher.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/mnemosyneco/keep/pkg/eventstream"
)

// Config holds the Kafka connection settings.
type Config struct {
	// Brokers is the bootstrap broker list.
	Brokers []string

	// Topic receives the optimization events.
	Topic string
}

func (c Config) validate() error {
	if len(c.Brokers) == 0 {
		return fmt.Errorf("kafka publisher: no brokers configured")
	}

	for _, b := range c.Brokers {
		if b == "" {
			return fmt.Errorf("kafka publisher: empty broker address")
		}
	}

	if c.Topic == "" {
		return fmt.Errorf("kafka publisher: empty topic")
	}

	return nil
}

// Publisher implements eventstream.Publisher on a Kafka topic. Events are
// keyed by event ID so replays and compaction keep one row per event.
type Publisher struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewPublisher creates a Kafka publisher. The connection is lazy; the first
// publish dials the brokers.
func NewPublisher(cfg Config, logger *slog.Logger) (*Publisher, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	if logger == nil {
		logger = slog.Default()
	}

	writer := &kafkago.Writer{
		Addr:     kafkago.TCP(cfg.Brokers...),
		Topic:    cfg.Topic,
		Balancer: &kafkago.LeastBytes{},
	}

	return &Publisher{writer: writer, logger: logger}, nil
}

// PublishOptimization marshals the event to JSON and writes it to the topic.
func (p *Publisher) PublishOptimization(ctx context.Context, event *eventstream.OptimizationEvent) error {
	if event == nil {
		return eventstream.ErrNilEvent
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshaling optimization event %s: %w", event.EventID, err)
	}

	msg := kafkago.Message{
		Key:   []byte(event.EventID),
		Value: payload,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publishing optimization event %s: %w", event.EventID, err)
	}

	p.logger.Debug("published optimization event",
		"event_id", event.EventID,
		"trigger", event.TriggerReason,
		"memories_removed", event.MemoriesRemoved,
	)

	return nil
}

// Close flushes and releases the writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}
