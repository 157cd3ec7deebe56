// Package metrics defines the Prometheus instruments exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Predictions    *prometheus.CounterVec   // forest votes served, by domain and label
	TreesEvaluated *prometheus.CounterVec   // synthetic trees walked, by domain
	VoteMargin     *prometheus.HistogramVec // |pos-neg|/n of each vote
	TieBreaks      *prometheus.CounterVec   // exactly split votes
	TrainingRuns   *prometheus.CounterVec   // training attempts by engine and outcome
	TrainingTime   prometheus.Histogram
	HTTPDuration   *prometheus.HistogramVec
	StreamClients  prometheus.Gauge
}

func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry registers on registerer, so tests can use a fresh registry.
func NewWithRegistry(registerer prometheus.Registerer) *Metrics {
	factory := promauto.With(registerer)
	return &Metrics{
		Predictions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "forest_predictions_total",
			Help: "Forest votes served",
		}, []string{"domain", "label"}),
		TreesEvaluated: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "forest_trees_evaluated_total",
			Help: "Synthetic trees evaluated",
		}, []string{"domain"}),
		VoteMargin: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "forest_vote_margin",
			Help:    "Share of trees separating the winning class from the other",
			Buckets: prometheus.LinearBuckets(0, 0.1, 11),
		}, []string{"domain"}),
		TieBreaks: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "forest_tie_breaks_total",
			Help: "Votes resolved by the favored class on an exact split",
		}, []string{"domain"}),
		TrainingRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "training_runs_total",
			Help: "Training runs by engine and outcome",
		}, []string{"engine", "outcome"}),
		TrainingTime: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "training_duration_seconds",
			Help:    "Wall time of training runs",
			Buckets: prometheus.DefBuckets,
		}),
		HTTPDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		StreamClients: factory.NewGauge(prometheus.GaugeOpts{
			Name: "forest_stream_clients",
			Help: "Open forest reveal websocket streams",
		}),
	}
}

// ObserveVote records one aggregated forest vote.
func (m *Metrics) ObserveVote(domain, label string, trees int, margin float64, tie bool) {
	if m == nil {
		return
	}
	m.Predictions.WithLabelValues(domain, label).Inc()
	m.TreesEvaluated.WithLabelValues(domain).Add(float64(trees))
	m.VoteMargin.WithLabelValues(domain).Observe(margin)
	if tie {
		m.TieBreaks.WithLabelValues(domain).Inc()
	}
}

func (m *Metrics) ObserveTraining(engine string, err error, seconds float64) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.TrainingRuns.WithLabelValues(engine, outcome).Inc()
	m.TrainingTime.Observe(seconds)
}
