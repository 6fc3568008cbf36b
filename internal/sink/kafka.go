package sink

import (
	"context"
	"fmt"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Document-Spelling-Analytics/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/Document-Spelling-Analytics/pkg/resilience"
)

// Publisher sends keyed messages. *kafka.Producer implements it.
type Publisher interface {
	Send(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Kafka publishes one DocumentErrorsEvent per document followed by a
// RunCompletedEvent. Each batch is retried on its own.
type Kafka struct {
	pub       Publisher
	batchSize int
	policy    resilience.Policy
	now       func() time.Time
}

func NewKafka(pub Publisher, batchSize int, policy resilience.Policy) *Kafka {
	if batchSize <= 0 {
		batchSize = 500
	}
	return &Kafka{pub: pub, batchSize: batchSize, policy: policy, now: time.Now}
}

func (k *Kafka) Name() string { return "kafka" }

func (k *Kafka) Write(ctx context.Context, b Batch) error {
	ts := k.now().UTC()
	msgs := make([]kafka.Message, 0, k.batchSize)
	send := func() error {
		if len(msgs) == 0 {
			return nil
		}
		err := resilience.Retry(ctx, "kafka publish", k.policy, func(ctx context.Context) error {
			return k.pub.Send(ctx, msgs...)
		})
		msgs = msgs[:0]
		return err
	}

	for _, r := range b.Results {
		msgs = append(msgs, kafka.Message{
			Key: r.ID,
			Value: DocumentErrorsEvent{
				Type:        EventDocumentErrors,
				RunID:       b.RunID,
				CordUID:     r.ID,
				Topic:       r.Topic,
				Relevance:   r.Relevance,
				TotalErrors: r.TotalErrors,
				Timestamp:   ts,
			},
		})
		if len(msgs) == k.batchSize {
			if err := send(); err != nil {
				return fmt.Errorf("publishing document events: %w", err)
			}
		}
	}
	msgs = append(msgs, kafka.Message{
		Key: b.RunID,
		Value: RunCompletedEvent{
			Type:               EventRunCompleted,
			RunID:              b.RunID,
			Documents:          b.Summary.TotalDocuments,
			DocumentsWithError: b.Summary.DocumentsWithError,
			TotalErrors:        b.Summary.TotalErrors,
			Timestamp:          ts,
		},
	})
	if err := send(); err != nil {
		return fmt.Errorf("publishing run events: %w", err)
	}
	return nil
}

func (k *Kafka) Close() error { return k.pub.Close() }
