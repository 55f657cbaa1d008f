// Package metrics exposes prometheus collectors for the backward pass and
// gradient clipping.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics groups the collectors recorded by the precision plugin.
type Metrics struct {
	ClipCalls         prometheus.Counter
	ClipActivations   prometheus.Counter
	ClipErrors        *prometheus.CounterVec
	TotalNorm         prometheus.Gauge
	TotalNormHist     prometheus.Histogram
	BackwardPasses    *prometheus.CounterVec
	BackwardDurations prometheus.Summary
}

// New creates the collectors and registers them with reg.
// A nil reg creates unregistered collectors.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ClipCalls: factory.NewCounter(prometheus.CounterOpts{
			Name: "gradclip_calls_total",
			Help: "Gradient clipping calls that reached the norm computation",
		}),
		ClipActivations: factory.NewCounter(prometheus.CounterOpts{
			Name: "gradclip_clipped_total",
			Help: "Clipping calls that scaled gradients down",
		}),
		ClipErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "gradclip_errors_total",
			Help: "Gradient clipping failures by error kind",
		}, []string{"kind"}),
		TotalNorm: factory.NewGauge(prometheus.GaugeOpts{
			Name: "gradclip_total_norm",
			Help: "Total gradient norm observed by the last clipping call",
		}),
		TotalNormHist: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "gradclip_total_norm_distribution",
			Help:    "Distribution of total gradient norms before clipping",
			Buckets: []float64{0.01, 0.1, 0.5, 1, 2, 5, 10, 50, 100, 1000},
		}),
		BackwardPasses: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "backward_passes_total",
			Help: "Backward passes run by the precision plugin",
		}, []string{"mode"}),
		BackwardDurations: factory.NewSummary(prometheus.SummaryOpts{
			Name: "backward_duration_seconds",
			Help: "Duration of backward passes",
		}),
	}
}

// RecordClip records a completed clipping call.
func (m *Metrics) RecordClip(totalNorm, coef float64) {
	if m == nil {
		return
	}
	m.ClipCalls.Inc()
	m.TotalNorm.Set(totalNorm)
	m.TotalNormHist.Observe(totalNorm)
	if coef < 1 {
		m.ClipActivations.Inc()
	}
}

// RecordClipError counts a clipping failure of the given kind.
func (m *Metrics) RecordClipError(kind string) {
	if m == nil {
		return
	}
	m.ClipErrors.WithLabelValues(kind).Inc()
}

// RecordBackward records a backward pass in the given mode.
func (m *Metrics) RecordBackward(mode string, seconds float64) {
	if m == nil {
		return
	}
	m.BackwardPasses.WithLabelValues(mode).Inc()
	m.BackwardDurations.Observe(seconds)
}
