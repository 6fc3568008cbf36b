// Package kafka publishes and consumes JSON-encoded pipeline events with
// segmentio/kafka-go.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/Adithya-Monish-Kumar-K/Document-Spelling-Analytics/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/Document-Spelling-Analytics/pkg/resilience"
)

// Message is one keyed record. Key selects the partition; Value is encoded
// as JSON.
type Message struct {
	Key   string
	Value any
}

// Producer writes messages to a single topic.
type Producer struct {
	writer  *kafka.Writer
	brokers []string
	topic   string
	logger  *slog.Logger
}

// NewProducer creates a Producer for topic. Writes are synchronous and
// acknowledged by every in-sync replica.
func NewProducer(cfg config.KafkaConfig, topic string) *Producer {
	batch := cfg.BatchSize
	if batch <= 0 {
		batch = 100
	}
	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchSize:    batch,
		BatchTimeout: 10 * time.Millisecond,
		MaxAttempts:  3,
		RequiredAcks: kafka.RequireAll,
	}
	return &Producer{
		writer:  w,
		brokers: cfg.Brokers,
		topic:   topic,
		logger:  slog.Default().With("component", "kafka-producer", "topic", topic),
	}
}

// Topic returns the topic the producer writes to.
func (p *Producer) Topic() string {
	return p.topic
}

// Send encodes msgs and writes them in one call.
func (p *Producer) Send(ctx context.Context, msgs ...Message) error {
	if len(msgs) == 0 {
		return nil
	}
	out, err := encode(msgs)
	if err != nil {
		return resilience.Permanent(err)
	}
	if err := p.writer.WriteMessages(ctx, out...); err != nil {
		p.logger.Error("failed to send messages", "count", len(out), "error", err)
		return fmt.Errorf("writing %d messages to %s: %w", len(out), p.topic, err)
	}
	p.logger.Debug("messages sent", "count", len(out))
	return nil
}

// Ping succeeds when any broker accepts a connection and knows the topic.
func (p *Producer) Ping(ctx context.Context) error {
	var lastErr error
	for _, broker := range p.brokers {
		conn, err := kafka.DialContext(ctx, "tcp", broker)
		if err != nil {
			lastErr = err
			continue
		}
		_, err = conn.ReadPartitions(p.topic)
		conn.Close()
		if err == nil {
			return nil
		}
		lastErr = err
	}
	if lastErr == nil {
		return fmt.Errorf("no kafka brokers configured")
	}
	return fmt.Errorf("reaching kafka topic %s: %w", p.topic, lastErr)
}

// Close flushes pending writes.
func (p *Producer) Close() error {
	return p.writer.Close()
}

func encode(msgs []Message) ([]kafka.Message, error) {
	out := make([]kafka.Message, 0, len(msgs))
	for _, m := range msgs {
		value, err := json.Marshal(m.Value)
		if err != nil {
			return nil, fmt.Errorf("encoding message %s: %w", m.Key, err)
		}
		out = append(out, kafka.Message{Key: []byte(m.Key), Value: value})
	}
	return out, nil
}
