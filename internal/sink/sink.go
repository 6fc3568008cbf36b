// Package sink writes the results of a run to its configured destinations:
// a CSV file, the Postgres store and a Kafka topic.
package sink

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Document-Spelling-Analytics/internal/aggregate"
	"github.com/Adithya-Monish-Kumar-K/Document-Spelling-Analytics/internal/records"
	apperrors "github.com/Adithya-Monish-Kumar-K/Document-Spelling-Analytics/pkg/errors"
)

// Batch is everything a run produced.
type Batch struct {
	RunID   string
	Results []records.Result
	Summary aggregate.Summary
}

// Sink is one output destination.
type Sink interface {
	Name() string
	Write(ctx context.Context, b Batch) error
	Close() error
}

// Observer is told about every sink write.
type Observer func(sink string, err error)

// WriteAll writes b to every sink. A failing sink does not stop the others;
// the combined error wraps ErrSinkFailed.
func WriteAll(ctx context.Context, sinks []Sink, b Batch, observe Observer) error {
	logger := slog.Default().With("component", "sink", "run_id", b.RunID)
	var errs []error
	for _, s := range sinks {
		start := time.Now()
		err := s.Write(ctx, b)
		if observe != nil {
			observe(s.Name(), err)
		}
		if err != nil {
			logger.Error("sink write failed", "sink", s.Name(), "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
			continue
		}
		logger.Info("sink written",
			"sink", s.Name(),
			"documents", len(b.Results),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
	if len(errs) == 0 {
		return nil
	}
	return &apperrors.AppError{
		Err:      errors.Join(apperrors.ErrSinkFailed, errors.Join(errs...)),
		Message:  fmt.Sprintf("%d of %d sinks failed", len(errs), len(sinks)),
		ExitCode: apperrors.ExitOutput,
	}
}

// CloseAll closes every sink and returns the joined errors.
func CloseAll(sinks []Sink) error {
	var errs []error
	for _, s := range sinks {
		if err := s.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing %s: %w", s.Name(), err))
		}
	}
	return errors.Join(errs...)
}
