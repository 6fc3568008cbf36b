package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// counterValue returns the value of the counter series of family name whose
// labels contain every pair in labels.
func counterValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
	series:
		for _, m := range f.GetMetric() {
			for _, lp := range m.GetLabel() {
				if want, ok := labels[lp.GetName()]; ok && want != lp.GetValue() {
					continue series
				}
			}
			return m.GetCounter().GetValue()
		}
	}
	return 0
}

func TestObserveChunk(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.ObserveChunk("vocabulary", 0, 10, 5*time.Millisecond, nil)
	m.ObserveChunk("vocabulary", 1, 10, 5*time.Millisecond, errors.New("boom"))

	assert.Equal(t, 1.0, counterValue(t, reg, "spellcheck_chunk_failures_total", map[string]string{"stage": "vocabulary"}))

	families, err := reg.Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() == "spellcheck_chunk_duration_seconds" {
			assert.Equal(t, uint64(2), f.GetMetric()[0].GetHistogram().GetSampleCount())
		}
	}
}

func TestObserveSink(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.ObserveSink("csv", nil)
	m.ObserveSink("kafka", errors.New("down"))
	m.ObserveSink("kafka", errors.New("down"))

	assert.Equal(t, 1.0, counterValue(t, reg, "spellcheck_sink_writes_total", map[string]string{"sink": "csv", "outcome": "ok"}))
	assert.Equal(t, 2.0, counterValue(t, reg, "spellcheck_sink_writes_total", map[string]string{"sink": "kafka", "outcome": "error"}))
}

func TestNewOnSeparateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		New(prometheus.NewRegistry())
		New(prometheus.NewRegistry())
	})
}
