package ports

import (
	"time"
)

// MetricsCollector defines the interface for collecting operational metrics.
// Implementations should integrate with observability platforms like
// Prometheus, OpenTelemetry, or custom monitoring solutions.
type MetricsCollector interface {
	// RecordLatency records the execution time of an operation.
	// The labels map provides additional context for the metric.
	RecordLatency(operation string, duration time.Duration, labels map[string]string)

	// RecordCounter increments a counter metric.
	// This is useful for tracking events like outcome codes and errors.
	RecordCounter(metric string, value float64, labels map[string]string)

	// RecordGauge sets the current value of a gauge metric.
	RecordGauge(metric string, value float64, labels map[string]string)

	// RecordHistogram records a value in a histogram.
	// This is useful for tracking distributions like relative isolation.
	RecordHistogram(metric string, value float64, labels map[string]string)
}

// ConfigSource is a string-keyed configuration surface with typed reads
// and optional defaults. Keys are dotted paths such as "Muon.pt.min".
//
// Each getter returns the stored value when the key is present, the first
// default when it is absent and a default was given, and an error wrapping
// ErrConfigNotFound otherwise. A present value of the wrong type is always
// an error, even when a default is supplied.
type ConfigSource interface {
	// Has reports whether the key is present.
	Has(key string) bool

	// Keys returns every present key in sorted order.
	Keys() []string

	// Raw returns the stored value without conversion.
	Raw(key string) (any, bool)

	// String reads a string value.
	String(key string, def ...string) (string, error)

	// Float reads a floating point value.
	Float(key string, def ...float64) (float64, error)

	// Int reads an integer value.
	Int(key string, def ...int) (int, error)

	// Bool reads a boolean value.
	Bool(key string, def ...bool) (bool, error)

	// Floats reads a list of floating point values. Lists may be given as
	// sequences or as whitespace/comma separated strings.
	Floats(key string, def ...[]float64) ([]float64, error)
}
