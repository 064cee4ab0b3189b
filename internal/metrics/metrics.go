// Package metrics defines Prometheus metrics for action queries.
//
// Metric naming follows Prometheus conventions:
//   - actionrules_ prefix for all metrics
//   - _total suffix for counters
//   - _seconds suffix for duration histograms
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder holds the query metrics. A nil *Recorder records nothing.
type Recorder struct {
	// EnabledQueriesTotal counts enabled-action queries by action and result.
	EnabledQueriesTotal *prometheus.CounterVec

	// ProbabilityQueriesTotal counts probability queries by action and
	// probability kind (impossible, certain, unknown, not_implemented, ...).
	ProbabilityQueriesTotal *prometheus.CounterVec

	// QueryDurationSeconds is a histogram of query latency by query type.
	QueryDurationSeconds *prometheus.HistogramVec
}

// NewRecorder creates the metrics and registers them with reg.
func NewRecorder(reg prometheus.Registerer) (*Recorder, error) {
	r := &Recorder{
		EnabledQueriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "actionrules_enabled_queries_total",
				Help: "Total number of enabled-action queries by action and result.",
			},
			[]string{"action", "result"},
		),
		ProbabilityQueriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "actionrules_probability_queries_total",
				Help: "Total number of success probability queries by action and kind.",
			},
			[]string{"action", "kind"},
		),
		QueryDurationSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "actionrules_query_duration_seconds",
				Help:    "Duration of action queries in seconds.",
				Buckets: []float64{.00001, .00005, .0001, .0005, .001, .005, .01, .05},
			},
			[]string{"query"},
		),
	}
	for _, c := range []prometheus.Collector{
		r.EnabledQueriesTotal,
		r.ProbabilityQueriesTotal,
		r.QueryDurationSeconds,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// RecordEnabled records one enabled-action query.
func (r *Recorder) RecordEnabled(action, result string, took time.Duration) {
	if r == nil {
		return
	}
	r.EnabledQueriesTotal.WithLabelValues(action, result).Inc()
	r.QueryDurationSeconds.WithLabelValues("enabled").Observe(took.Seconds())
}

// RecordProbability records one probability query.
func (r *Recorder) RecordProbability(action, kind string, took time.Duration) {
	if r == nil {
		return
	}
	r.ProbabilityQueriesTotal.WithLabelValues(action, kind).Inc()
	r.QueryDurationSeconds.WithLabelValues("probability").Observe(took.Seconds())
}
