package domain

import (
	"errors"
	"fmt"
)

// Common domain errors that can occur while reading particles or building
// lookup tables.
var (
	// ErrKeyNotFound indicates that a requested record does not exist on a
	// particle.
	ErrKeyNotFound = errors.New("key not found")

	// ErrTypeMismatch indicates that a record's type doesn't match the
	// expected type.
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrInvalidBinning indicates that bin edges or values are malformed.
	ErrInvalidBinning = errors.New("invalid binning")

	// ErrUnsupportedCategory indicates an effective-area lookup for a
	// category outside the fixed enumeration.
	ErrUnsupportedCategory = errors.New("unsupported effective area category")

	// ErrInvalidConfiguration indicates that configuration is invalid or
	// incomplete.
	ErrInvalidConfiguration = errors.New("invalid configuration")
)

// RecordError represents an error that occurred while reading or writing a
// named particle record. It provides context about which record and
// operation caused the error.
type RecordError struct {
	// Name is the record that was involved in the failed operation.
	Name string

	// Operation describes what was being performed when the error occurred.
	Operation string

	// Err is the underlying error that caused the operation to fail.
	Err error
}

// Error implements the error interface for RecordError.
func (e *RecordError) Error() string {
	return fmt.Sprintf("record error: operation=%s, name=%s, err=%v", e.Operation, e.Name, e.Err)
}

// Unwrap returns the underlying error, supporting Go 1.13+ error unwrapping.
func (e *RecordError) Unwrap() error { return e.Err }

// NewRecordError creates a new RecordError with the given details.
func NewRecordError(name, operation string, err error) *RecordError {
	return &RecordError{
		Name:      name,
		Operation: operation,
		Err:       err,
	}
}

// ValidationError represents an error that occurred during validation.
// It can contain multiple validation failures.
type ValidationError struct {
	// Entity is the name of the entity that failed validation.
	Entity string

	// Errors contains the list of validation error messages.
	Errors []string
}

// Error implements the error interface for ValidationError.
func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("validation error for %s: %s", e.Entity, e.Errors[0])
	}
	return fmt.Sprintf("validation errors for %s: %v", e.Entity, e.Errors)
}

// AddError adds a new error message to the validation error.
func (e *ValidationError) AddError(msg string) { e.Errors = append(e.Errors, msg) }

// HasErrors returns true if there are any validation errors.
func (e *ValidationError) HasErrors() bool { return len(e.Errors) > 0 }

// Unwrap lets callers match ValidationError against ErrInvalidConfiguration.
func (e *ValidationError) Unwrap() error { return ErrInvalidConfiguration }

// NewValidationError creates a new ValidationError for the given entity.
func NewValidationError(entity string) *ValidationError {
	return &ValidationError{
		Entity: entity,
		Errors: make([]string, 0),
	}
}

// ConfigError represents a fatal configuration problem: an unknown variant
// selector, an inconsistent bin table, or an out-of-range threshold. It is
// surfaced at construction time and is never retried.
type ConfigError struct {
	// ConfigKey is the configuration key that was involved in the failure.
	ConfigKey string

	// Err is the underlying error that caused the configuration failure.
	Err error

	// Suggestion optionally names the closest valid value.
	Suggestion string
}

// Error implements the error interface for ConfigError.
func (e *ConfigError) Error() string {
	msg := fmt.Sprintf("config error: key=%s, err=%v", e.ConfigKey, e.Err)
	if e.Suggestion != "" {
		msg += " (" + e.Suggestion + ")"
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *ConfigError) Unwrap() error { return e.Err }

// NewConfigError creates a new ConfigError with the given details.
func NewConfigError(key string, err error) *ConfigError {
	return &ConfigError{
		ConfigKey: key,
		Err:       err,
	}
}

// UnsupportedCategoryError reports an effective-area lookup for a category
// outside the fixed enumeration. It indicates a programming error.
type UnsupportedCategoryError struct {
	Category Category
}

// Error implements the error interface for UnsupportedCategoryError.
func (e *UnsupportedCategoryError) Error() string {
	return fmt.Sprintf("effective area: not supported type = %d", int(e.Category))
}

// Unwrap returns ErrUnsupportedCategory.
func (e *UnsupportedCategoryError) Unwrap() error { return ErrUnsupportedCategory }
