// Package tracing records a span tree per pipeline run: one root span for
// the run and one child per stage. Spans travel in the context and the tree
// is written to slog when the run ends.
package tracing

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

type contextKey struct{}

// Span is a timed operation within a run.
type Span struct {
	Name     string
	RunID    string
	Start    time.Time
	Duration time.Duration

	mu       sync.Mutex
	attrs    map[string]any
	children []*Span
}

// StartRun creates a root span for runID.
func StartRun(ctx context.Context, name, runID string) (context.Context, *Span) {
	s := &Span{Name: name, RunID: runID, Start: time.Now(), attrs: make(map[string]any)}
	return context.WithValue(ctx, contextKey{}, s), s
}

// Start creates a child of the span in ctx. Without a parent the span is a
// detached root.
func Start(ctx context.Context, name string) (context.Context, *Span) {
	s := &Span{Name: name, Start: time.Now(), attrs: make(map[string]any)}
	if parent := FromContext(ctx); parent != nil {
		s.RunID = parent.RunID
		parent.mu.Lock()
		parent.children = append(parent.children, s)
		parent.mu.Unlock()
	}
	return context.WithValue(ctx, contextKey{}, s), s
}

// FromContext returns the current span or nil.
func FromContext(ctx context.Context) *Span {
	s, _ := ctx.Value(contextKey{}).(*Span)
	return s
}

// End fixes the span duration and returns it.
func (s *Span) End() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Duration = time.Since(s.Start)
	return s.Duration
}

// SetAttr attaches a key/value pair.
func (s *Span) SetAttr(key string, value any) {
	s.mu.Lock()
	s.attrs[key] = value
	s.mu.Unlock()
}

// Attr returns an attribute.
func (s *Span) Attr(key string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.attrs[key]
	return v, ok
}

// Children returns the direct children in start order.
func (s *Span) Children() []*Span {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*Span(nil), s.children...)
}

// Durations maps each direct child name to its duration.
func (s *Span) Durations() map[string]time.Duration {
	out := make(map[string]time.Duration)
	for _, c := range s.Children() {
		c.mu.Lock()
		out[c.Name] = c.Duration
		c.mu.Unlock()
	}
	return out
}

// Log writes the tree to logger, one record per span.
func (s *Span) Log(logger *slog.Logger) {
	s.log(logger, 0)
}

func (s *Span) log(logger *slog.Logger, depth int) {
	s.mu.Lock()
	attrs := []any{
		"run_id", s.RunID,
		"span", s.Name,
		"duration_ms", s.Duration.Milliseconds(),
		"depth", depth,
	}
	for k, v := range s.attrs {
		attrs = append(attrs, k, v)
	}
	children := append([]*Span(nil), s.children...)
	s.mu.Unlock()

	logger.Info("span", attrs...)
	for _, c := range children {
		c.log(logger, depth+1)
	}
}
