package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveVote(t *testing.T) {
	m := NewWithRegistry(prometheus.NewRegistry())
	m.ObserveVote("tennis", "Yes", 4, 0, true)
	m.ObserveVote("tennis", "Yes", 3, 1.0/3.0, false)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Predictions.WithLabelValues("tennis", "Yes")))
	assert.Equal(t, 7.0, testutil.ToFloat64(m.TreesEvaluated.WithLabelValues("tennis")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TieBreaks.WithLabelValues("tennis")))
}

func TestObserveTraining(t *testing.T) {
	m := NewWithRegistry(prometheus.NewRegistry())
	m.ObserveTraining("synthetic", nil, 1.5)
	m.ObserveTraining("synthetic", errors.New("boom"), 1.5)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TrainingRuns.WithLabelValues("synthetic", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TrainingRuns.WithLabelValues("synthetic", "error")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveVote("x", "y", 1, 0, false)
		m.ObserveTraining("x", nil, 0)
	})
}
