// Package metrics defines the Prometheus collectors of a spelling run and
// serves them for scraping.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds every collector of the pipeline.
type Metrics struct {
	RunsTotal          *prometheus.CounterVec
	StageDuration      *prometheus.HistogramVec
	ChunkDuration      *prometheus.HistogramVec
	ChunkFailuresTotal *prometheus.CounterVec
	DocumentsProcessed prometheus.Counter
	VocabularySize     prometheus.Gauge
	ErrorTokens        prometheus.Gauge
	TokensClassified   prometheus.Counter
	TokensCached       prometheus.Counter
	DocumentsWithError prometheus.Gauge
	SinkWritesTotal    *prometheus.CounterVec
	DependencyUp       *prometheus.GaugeVec
}

// New creates the collectors and registers them with reg. A nil reg uses
// the default registry.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		RunsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "spellcheck_runs_total",
				Help: "Pipeline runs by outcome (ok, error).",
			},
			[]string{"outcome"},
		),
		StageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "spellcheck_stage_duration_seconds",
				Help:    "Wall time of each pipeline stage.",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
			},
			[]string{"stage"},
		),
		ChunkDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "spellcheck_chunk_duration_seconds",
				Help:    "Wall time of one fork-join chunk.",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10},
			},
			[]string{"stage"},
		),
		ChunkFailuresTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "spellcheck_chunk_failures_total",
				Help: "Fork-join chunks that returned an error.",
			},
			[]string{"stage"},
		),
		DocumentsProcessed: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "spellcheck_documents_processed_total",
				Help: "Documents that received an error count.",
			},
		),
		VocabularySize: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "spellcheck_vocabulary_size",
				Help: "Distinct tokens in the last run.",
			},
		),
		ErrorTokens: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "spellcheck_error_tokens",
				Help: "Distinct tokens flagged as errors in the last run.",
			},
		),
		TokensClassified: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "spellcheck_tokens_classified_total",
				Help: "Tokens decided by the classifier.",
			},
		),
		TokensCached: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "spellcheck_tokens_cached_total",
				Help: "Tokens whose verdict came from the verdict cache.",
			},
		),
		DocumentsWithError: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "spellcheck_documents_with_error",
				Help: "Documents with at least one error in the last run.",
			},
		),
		SinkWritesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "spellcheck_sink_writes_total",
				Help: "Sink writes by sink and outcome.",
			},
			[]string{"sink", "outcome"},
		),
		DependencyUp: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "spellcheck_dependency_up",
				Help: "1 if the dependency answered the last probe.",
			},
			[]string{"dependency"},
		),
	}

	reg.MustRegister(
		m.RunsTotal,
		m.StageDuration,
		m.ChunkDuration,
		m.ChunkFailuresTotal,
		m.DocumentsProcessed,
		m.VocabularySize,
		m.ErrorTokens,
		m.TokensClassified,
		m.TokensCached,
		m.DocumentsWithError,
		m.SinkWritesTotal,
		m.DependencyUp,
	)
	return m
}

// ObserveChunk has the signature of forkjoin.Options.OnChunkDone.
func (m *Metrics) ObserveChunk(stage string, _ int, _ int, elapsed time.Duration, err error) {
	m.ChunkDuration.WithLabelValues(stage).Observe(elapsed.Seconds())
	if err != nil {
		m.ChunkFailuresTotal.WithLabelValues(stage).Inc()
	}
}

// ObserveSink records one sink write.
func (m *Metrics) ObserveSink(sink string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.SinkWritesTotal.WithLabelValues(sink, outcome).Inc()
}

// Handler returns the scrape handler of the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
