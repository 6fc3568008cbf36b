// Package pipeline runs the spelling analysis end to end: vocabulary,
// document-term matrix, classification of each distinct token, and
// attribution of errors to documents.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Adithya-Monish-Kumar-K/Document-Spelling-Analytics/internal/aggregate"
	"github.com/Adithya-Monish-Kumar-K/Document-Spelling-Analytics/internal/dtm"
	"github.com/Adithya-Monish-Kumar-K/Document-Spelling-Analytics/internal/forkjoin"
	"github.com/Adithya-Monish-Kumar-K/Document-Spelling-Analytics/internal/records"
	"github.com/Adithya-Monish-Kumar-K/Document-Spelling-Analytics/internal/spell"
	"github.com/Adithya-Monish-Kumar-K/Document-Spelling-Analytics/internal/vocab"
	"github.com/Adithya-Monish-Kumar-K/Document-Spelling-Analytics/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/Document-Spelling-Analytics/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/Document-Spelling-Analytics/pkg/tracing"
)

// StageAggregation names the final stage in timings and metrics.
const StageAggregation = "aggregation"

// Options configures a Pipeline. Zero values fall back to one worker, no
// chunk bound, ten top error words, no verdict store and no metrics.
type Options struct {
	Parallelism   int
	MaxChunkSize  int
	TopErrorWords int
	Verdicts      spell.VerdictStore
	Metrics       *metrics.Metrics
}

// Pipeline is safe for concurrent runs.
type Pipeline struct {
	classifier *spell.Classifier
	opts       Options
}

func New(classifier *spell.Classifier, opts Options) *Pipeline {
	if opts.Parallelism < 1 {
		opts.Parallelism = 1
	}
	if opts.TopErrorWords <= 0 {
		opts.TopErrorWords = 10
	}
	return &Pipeline{classifier: classifier, opts: opts}
}

// Output is everything a run computed.
type Output struct {
	RunID      string
	Results    []records.Result
	Vocabulary *vocab.Vocabulary
	Matrix     *dtm.Matrix
	Errors     []uint8
	Stats      spell.Stats
	Summary    aggregate.Summary
	Timings    map[string]time.Duration
}

// Run processes docs under a fresh run id.
func (p *Pipeline) Run(ctx context.Context, docs []records.Document) (*Output, error) {
	return p.RunWithID(ctx, uuid.NewString(), docs)
}

// RunWithID processes docs. Results are in document order.
func (p *Pipeline) RunWithID(ctx context.Context, runID string, docs []records.Document) (out *Output, err error) {
	ctx = logger.WithRunID(ctx, runID)
	log := logger.FromContext(ctx).With("component", "pipeline")
	ctx, root := tracing.StartRun(ctx, "spellcheck", runID)
	root.SetAttr("documents", len(docs))
	defer func() {
		root.End()
		root.Log(log)
		if p.opts.Metrics != nil {
			outcome := "ok"
			if err != nil {
				outcome = "error"
			}
			p.opts.Metrics.RunsTotal.WithLabelValues(outcome).Inc()
		}
	}()

	log.Info("run started",
		"documents", len(docs),
		"parallelism", p.opts.Parallelism,
		"max_chunk_size", p.opts.MaxChunkSize,
		"classifier", p.classifier.Fingerprint(),
	)
	fj := p.forkJoinOptions()

	var v *vocab.Vocabulary
	if err := p.stage(ctx, vocab.Stage, func(ctx context.Context, span *tracing.Span) error {
		var err error
		v, err = vocab.Build(ctx, records.TextStream(docs), fj)
		if err == nil {
			span.SetAttr("terms", v.Len())
		}
		return err
	}); err != nil {
		return nil, err
	}

	var m *dtm.Matrix
	if err := p.stage(ctx, dtm.Stage, func(ctx context.Context, span *tracing.Span) error {
		var err error
		m, err = dtm.Build(ctx, docs, v, fj)
		if err == nil {
			span.SetAttr("nnz", m.NNZ())
		}
		return err
	}); err != nil {
		return nil, err
	}

	var (
		e     []uint8
		stats spell.Stats
	)
	if err := p.stage(ctx, spell.Stage, func(ctx context.Context, span *tracing.Span) error {
		var err error
		e, stats, err = p.classifier.ErrorVector(ctx, v.Terms(), fj, p.opts.Verdicts)
		if err == nil {
			span.SetAttr("classified", stats.Classified)
			span.SetAttr("cached", stats.Cached)
			span.SetAttr("errors", stats.Errors)
		}
		return err
	}); err != nil {
		return nil, err
	}
	if stats.Classified+stats.Cached != v.Len() {
		return nil, fmt.Errorf("classified %d and reused %d verdicts for %d terms",
			stats.Classified, stats.Cached, v.Len())
	}

	var (
		results []records.Result
		summary aggregate.Summary
	)
	_ = p.stage(ctx, StageAggregation, func(context.Context, *tracing.Span) error {
		results = aggregate.Attach(docs, aggregate.ErrorCounts(m, e))
		summary = aggregate.Summarize(results, v, e, m, p.opts.TopErrorWords)
		return nil
	})

	p.record(v, stats, summary)
	log.Info("run finished",
		"documents", summary.TotalDocuments,
		"documents_with_errors", summary.DocumentsWithError,
		"vocabulary", v.Len(),
		"error_tokens", stats.Errors,
		"cached_verdicts", stats.Cached,
		"duration_ms", time.Since(root.Start).Milliseconds(),
	)
	return &Output{
		RunID:      runID,
		Results:    results,
		Vocabulary: v,
		Matrix:     m,
		Errors:     e,
		Stats:      stats,
		Summary:    summary,
		Timings:    root.Durations(),
	}, nil
}

// Classify explains the verdicts for tokens without building a corpus.
func (p *Pipeline) Classify(tokens []string) []spell.Verdict {
	out := make([]spell.Verdict, len(tokens))
	for i, t := range tokens {
		out[i] = p.classifier.Classify(t)
	}
	return out
}

func (p *Pipeline) forkJoinOptions() forkjoin.Options {
	fj := forkjoin.Options{
		Parallelism:  p.opts.Parallelism,
		MaxChunkSize: p.opts.MaxChunkSize,
	}
	if p.opts.Metrics != nil {
		fj.OnChunkDone = p.opts.Metrics.ObserveChunk
	}
	return fj
}

func (p *Pipeline) stage(ctx context.Context, name string, fn func(context.Context, *tracing.Span) error) error {
	ctx, span := tracing.Start(ctx, name)
	err := fn(ctx, span)
	d := span.End()
	log := logger.FromContext(ctx)
	if err != nil {
		span.SetAttr("error", err.Error())
		log.Error("stage failed", "stage", name, "duration_ms", d.Milliseconds(), "error", err)
		return fmt.Errorf("%s stage: %w", name, err)
	}
	if p.opts.Metrics != nil {
		p.opts.Metrics.StageDuration.WithLabelValues(name).Observe(d.Seconds())
	}
	log.Debug("stage finished", "stage", name, "duration_ms", d.Milliseconds())
	return nil
}

func (p *Pipeline) record(v *vocab.Vocabulary, stats spell.Stats, s aggregate.Summary) {
	m := p.opts.Metrics
	if m == nil {
		return
	}
	m.DocumentsProcessed.Add(float64(s.TotalDocuments))
	m.VocabularySize.Set(float64(v.Len()))
	m.ErrorTokens.Set(float64(stats.Errors))
	m.TokensClassified.Add(float64(stats.Classified))
	m.TokensCached.Add(float64(stats.Cached))
	m.DocumentsWithError.Set(float64(s.DocumentsWithError))
}
