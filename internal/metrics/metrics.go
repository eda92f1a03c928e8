// Package metrics exposes prometheus instruments for the tool surface.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the instruments recorded by the tool handlers.
type Metrics struct {
	toolCalls     *prometheus.CounterVec
	toolErrors    *prometheus.CounterVec
	toolDurations *prometheus.HistogramVec
}

// New registers the filesearchd instruments on the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		toolCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "filesearchd",
			Name:      "tool_calls_total",
			Help:      "Total tool invocations by tool name.",
		}, []string{"tool"}),
		toolErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "filesearchd",
			Name:      "tool_errors_total",
			Help:      "Total failed tool invocations by tool name.",
		}, []string{"tool"}),
		toolDurations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "filesearchd",
			Name:      "tool_duration_seconds",
			Help:      "Tool invocation duration by tool name.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"tool"}),
	}
	reg.MustRegister(m.toolCalls, m.toolErrors, m.toolDurations)
	return m
}

// ObserveCall records one tool invocation.
func (m *Metrics) ObserveCall(tool string, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	m.toolCalls.WithLabelValues(tool).Inc()
	m.toolDurations.WithLabelValues(tool).Observe(elapsed.Seconds())
	if err != nil {
		m.toolErrors.WithLabelValues(tool).Inc()
	}
}
