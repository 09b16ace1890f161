// Package middleware provides cross-cutting concerns for the selection
// engine.
package middleware

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ahrav/go-muonsel/internal/ports"
)

// Metric names understood by PrometheusMetrics. Counters with any other
// name land in the generic operations counter.
const (
	outcomesMetric   = "muon_selection_outcomes_total"
	errorsMetric     = "muon_selection_errors_total"
	latencyMetric    = "muon_selection_duration_seconds"
	operationsMetric = "muon_selection_operations_total"
	stateMetric      = "muon_selection_state"
	valuesMetric     = "muon_selection_values"
)

// PrometheusMetrics implements the MetricsCollector interface using
// Prometheus. It tracks per-code selection outcomes, evaluation failures
// and evaluation latency for each identification/isolation pairing.
type PrometheusMetrics struct {
	outcomes         *prometheus.CounterVec
	failures         *prometheus.CounterVec
	executionLatency *prometheus.HistogramVec
	operationCounter *prometheus.CounterVec
	systemGauges     *prometheus.GaugeVec
	values           *prometheus.HistogramVec
}

// NewPrometheusMetrics creates the collectors and registers them with reg.
// A nil reg registers with the global Prometheus registry. A collector that
// cannot be registered, for example because the registry already holds one
// with the same name, is reported as a *ports.MetricsError.
func NewPrometheusMetrics(reg prometheus.Registerer) (*PrometheusMetrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	pm := &PrometheusMetrics{
		outcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: outcomesMetric,
				Help: "Muons judged, by outcome code and selection variant.",
			},
			[]string{"identification", "isolation", "code"},
		),
		failures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: errorsMetric,
				Help: "Muons that could not be judged, by failure reason.",
			},
			[]string{"identification", "isolation", "reason"},
		),
		executionLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: latencyMetric,
				Help: "Time spent judging a single muon.",
				// Evaluation is a handful of map reads; start at a microsecond.
				Buckets: prometheus.ExponentialBuckets(1e-6, 4, 10),
			},
			[]string{"operation", "identification", "isolation"},
		),
		operationCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: operationsMetric,
				Help: "Other counted selection events.",
			},
			[]string{"operation"},
		),
		systemGauges: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: stateMetric,
				Help: "Current state values reported by the selection engine.",
			},
			[]string{"metric"},
		),
		values: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    valuesMetric,
				Help:    "Distributions of selection quantities such as relative isolation.",
				Buckets: prometheus.LinearBuckets(0, 0.05, 20),
			},
			[]string{"metric"},
		),
	}

	collectors := []struct {
		name string
		c    prometheus.Collector
	}{
		{outcomesMetric, pm.outcomes},
		{errorsMetric, pm.failures},
		{latencyMetric, pm.executionLatency},
		{operationsMetric, pm.operationCounter},
		{stateMetric, pm.systemGauges},
		{valuesMetric, pm.values},
	}
	for _, col := range collectors {
		if err := reg.Register(col.c); err != nil {
			return nil, ports.NewMetricsError(col.name, "register", err)
		}
	}
	return pm, nil
}

func label(labels map[string]string, key string) string {
	if v := labels[key]; v != "" {
		return v
	}
	return "unknown"
}

// RecordLatency implements the MetricsCollector interface by recording
// execution latency in a Prometheus histogram.
func (pm *PrometheusMetrics) RecordLatency(
	operation string,
	duration time.Duration,
	labels map[string]string,
) {
	pm.executionLatency.WithLabelValues(
		operation,
		label(labels, "identification"),
		label(labels, "isolation"),
	).Observe(duration.Seconds())
}

// RecordCounter implements the MetricsCollector interface by incrementing
// Prometheus counters.
func (pm *PrometheusMetrics) RecordCounter(
	metric string, value float64, labels map[string]string,
) {
	switch metric {
	case outcomesMetric:
		pm.outcomes.WithLabelValues(
			label(labels, "identification"),
			label(labels, "isolation"),
			label(labels, "code"),
		).Add(value)
	case errorsMetric:
		pm.failures.WithLabelValues(
			label(labels, "identification"),
			label(labels, "isolation"),
			label(labels, "reason"),
		).Add(value)
	default:
		pm.operationCounter.WithLabelValues(metric).Add(value)
	}
}

// RecordGauge implements the MetricsCollector interface by setting
// Prometheus gauge values.
func (pm *PrometheusMetrics) RecordGauge(
	metric string, value float64, _ map[string]string,
) {
	pm.systemGauges.WithLabelValues(metric).Set(value)
}

// RecordHistogram implements the MetricsCollector interface by recording
// values in a Prometheus histogram.
func (pm *PrometheusMetrics) RecordHistogram(
	metric string, value float64, _ map[string]string,
) {
	pm.values.WithLabelValues(metric).Observe(value)
}

// Compile-time verification that PrometheusMetrics implements MetricsCollector.
var _ ports.MetricsCollector = (*PrometheusMetrics)(nil)
