package ports

import (
	"errors"
	"fmt"
)

// Common errors that can occur while configuring or running the selection
// engine.
var (
	// ErrConfigNotFound indicates that required configuration is missing.
	ErrConfigNotFound = errors.New("configuration not found")

	// ErrInvalidIDVariant indicates an unknown identification selector.
	ErrInvalidIDVariant = errors.New("invalid identification variant")

	// ErrInvalidIsoVariant indicates an unknown isolation selector.
	ErrInvalidIsoVariant = errors.New("invalid isolation variant")

	// ErrConflictingCorrections indicates that delta-beta and rho pileup
	// corrections were both enabled for the same isolation variant.
	ErrConflictingCorrections = errors.New("delta-beta and rho corrections are mutually exclusive")

	// ErrMissingEffectiveArea indicates that rho correction was requested
	// without an effective-area table.
	ErrMissingEffectiveArea = errors.New("rho correction requires an effective area table")
)

// AttributeLookupError reports a particle record that could not be read.
// It is an external-collaborator failure: the reconstruction output did not
// carry the record the configured selection needs.
type AttributeLookupError struct {
	// Record is the canonical record name that was requested.
	Record string

	// Alternate is the legacy name that was also tried, if any.
	Alternate string

	// Err is the underlying cause, usually domain.ErrKeyNotFound or
	// domain.ErrTypeMismatch.
	Err error
}

// Error implements the error interface for AttributeLookupError.
func (e *AttributeLookupError) Error() string {
	if e.Alternate != "" {
		return fmt.Sprintf("attribute lookup failed: record=%s, alternate=%s, err=%v", e.Record, e.Alternate, e.Err)
	}
	return fmt.Sprintf("attribute lookup failed: record=%s, err=%v", e.Record, e.Err)
}

// Unwrap returns the underlying error.
func (e *AttributeLookupError) Unwrap() error { return e.Err }

// NewAttributeLookupError creates a new AttributeLookupError.
func NewAttributeLookupError(record, alternate string, err error) *AttributeLookupError {
	return &AttributeLookupError{
		Record:    record,
		Alternate: alternate,
		Err:       err,
	}
}

// MetricsError represents an error from metrics collection operations.
type MetricsError struct {
	// Metric is the name of the metric that was being collected when the
	// error occurred.
	Metric string

	// Operation is the name of the metrics operation that failed.
	Operation string

	// Err is the underlying error that caused the metrics operation to fail.
	Err error
}

// Error implements the error interface for MetricsError.
func (e *MetricsError) Error() string {
	return fmt.Sprintf("metrics error: operation=%s, metric=%s, err=%v", e.Operation, e.Metric, e.Err)
}

// Unwrap returns the underlying error.
func (e *MetricsError) Unwrap() error { return e.Err }

// NewMetricsError creates a new MetricsError with the given details.
func NewMetricsError(metric, operation string, err error) *MetricsError {
	return &MetricsError{
		Metric:    metric,
		Operation: operation,
		Err:       err,
	}
}
