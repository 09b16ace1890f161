package testutils

import (
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ahrav/go-muonsel/internal/ports"
)

var _ ports.MetricsCollector = (*MockMetricsCollector)(nil)

// MockMetricsCollector records every call keyed by metric name and sorted
// labels. It is safe for concurrent use.
type MockMetricsCollector struct {
	mu         sync.Mutex
	counters   map[string]float64
	gauges     map[string]float64
	histograms map[string][]float64
	latencies  map[string]int
}

// NewMockMetricsCollector creates an empty collector.
func NewMockMetricsCollector() *MockMetricsCollector {
	return &MockMetricsCollector{
		counters:   make(map[string]float64),
		gauges:     make(map[string]float64),
		histograms: make(map[string][]float64),
		latencies:  make(map[string]int),
	}
}

// MetricKey renders a metric name and labels the way the mock stores them,
// e.g. "outcomes{code=pass,isolation=PF}".
func MetricKey(metric string, labels map[string]string) string {
	parts := make([]string, 0, len(labels))
	for k, v := range labels {
		parts = append(parts, fmt.Sprintf("%s=%s", k, v))
	}
	sort.Strings(parts)
	return metric + "{" + strings.Join(parts, ",") + "}"
}

func (m *MockMetricsCollector) RecordLatency(operation string, _ time.Duration, labels map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.latencies[MetricKey(operation, labels)]++
}

func (m *MockMetricsCollector) RecordCounter(metric string, value float64, labels map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[MetricKey(metric, labels)] += value
}

func (m *MockMetricsCollector) RecordGauge(metric string, value float64, labels map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gauges[MetricKey(metric, labels)] = value
}

func (m *MockMetricsCollector) RecordHistogram(metric string, value float64, labels map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := MetricKey(metric, labels)
	m.histograms[key] = append(m.histograms[key], value)
}

// Counter returns the accumulated value of a counter series.
func (m *MockMetricsCollector) Counter(metric string, labels map[string]string) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counters[MetricKey(metric, labels)]
}

// Latencies returns how many latency samples a series received.
func (m *MockMetricsCollector) Latencies(operation string, labels map[string]string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.latencies[MetricKey(operation, labels)]
}

// Gauge returns the last value set on a gauge series.
func (m *MockMetricsCollector) Gauge(metric string, labels map[string]string) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gauges[MetricKey(metric, labels)]
}

// Observations returns a copy of the values recorded in a histogram series.
func (m *MockMetricsCollector) Observations(metric string, labels map[string]string) []float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.histograms[MetricKey(metric, labels)])
}
