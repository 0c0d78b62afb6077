// Package repository provides the outbound adapters behind the domain
// ports: the Kafka activity sink and its disabled stand-in.
package repository

import (
	"context"
	"time"

	domrepo "StockPulse/internal/domain/repository"
	"StockPulse/pkg/kafka"
)

// SearchEvent is the wire shape of a published search.
type SearchEvent struct {
	Type   string    `json:"type"`
	Symbol string    `json:"symbol"`
	Days   int       `json:"days,omitempty"`
	At     time.Time `json:"at"`
}

// StatusEvent is the wire shape of a published fetch transition.
type StatusEvent struct {
	Type   string    `json:"type"`
	Kind   string    `json:"kind"`
	Symbol string    `json:"symbol"`
	Status string    `json:"status"`
	At     time.Time `json:"at"`
}

// KafkaEventSink publishes dashboard activity to a Kafka topic. Events
// are keyed by symbol so one symbol's activity stays ordered.
type KafkaEventSink struct {
	producer *kafka.Producer
	topic    string
}

// NewKafkaEventSink wraps a producer as an event sink.
func NewKafkaEventSink(producer *kafka.Producer, topic string) *KafkaEventSink {
	return &KafkaEventSink{producer: producer, topic: topic}
}

func (s *KafkaEventSink) PublishSearch(ctx context.Context, symbol string, days int) error {
	return s.producer.Publish(ctx, s.topic, []byte(symbol), SearchEvent{
		Type:   "search",
		Symbol: symbol,
		Days:   days,
		At:     time.Now().UTC(),
	})
}

func (s *KafkaEventSink) PublishStatus(ctx context.Context, kind, symbol, status string) error {
	return s.producer.Publish(ctx, s.topic, []byte(symbol), StatusEvent{
		Type:   "status",
		Kind:   kind,
		Symbol: symbol,
		Status: status,
		At:     time.Now().UTC(),
	})
}

func (s *KafkaEventSink) Close() error {
	return s.producer.Close()
}

// NopEventSink discards everything. Used when events are disabled.
type NopEventSink struct{}

func (NopEventSink) PublishSearch(context.Context, string, int) error       { return nil }
func (NopEventSink) PublishStatus(context.Context, string, string, string) error { return nil }
func (NopEventSink) Close() error                                           { return nil }

var (
	_ domrepo.EventSink = (*KafkaEventSink)(nil)
	_ domrepo.EventSink = NopEventSink{}
)
