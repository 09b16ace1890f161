// Package domain contains pure, dependency-free domain models and types
// for the muon selection engine.
package domain

import (
	"encoding/json"
	"fmt"
	"maps"
	"math"
	"slices"
)

// Value constrains the types a particle record may hold. Reconstruction
// software only ever attaches booleans, 32-bit counters, and doubles.
type Value interface {
	bool | int32 | float64
}

// Key represents a type-safe generic key for reading a named record from a
// particle. The type parameter T ensures compile-time type safety when
// getting and setting values, eliminating runtime type assertions at call
// sites.
type Key[T Value] struct{ name string }

// NewKey creates a new Key with the specified record name and type.
func NewKey[T Value](name string) Key[T] {
	return Key[T]{name: name}
}

// Name returns the record name the key refers to.
func (k Key[T]) Name() string { return k.name }

// String implements fmt.Stringer.
func (k Key[T]) String() string { return k.name }

// Records is an immutable collection of named particle records ("user
// records" in reconstruction terms). It uses copy-on-write semantics so a
// Records value can be shared across goroutines without synchronization.
type Records struct {
	// data holds the name/value pairs. It is unexported to maintain
	// immutability guarantees.
	data map[string]any
}

// NewRecords creates a new empty Records.
func NewRecords() Records {
	return Records{data: make(map[string]any)}
}

// RecordsFrom builds Records from a plain map, normalizing numeric types
// into the three supported record types. Integers become int32 and floats
// become float64. Any other value type is rejected with ErrTypeMismatch.
func RecordsFrom(values map[string]any) (Records, error) {
	data := make(map[string]any, len(values))
	for name, v := range values {
		norm, err := normalizeValue(v)
		if err != nil {
			return Records{}, NewRecordError(name, "normalize", err)
		}
		data[name] = norm
	}
	return Records{data: data}, nil
}

// normalizeValue maps the numeric types produced by JSON and YAML decoders
// onto the record value set.
func normalizeValue(v any) (any, error) {
	switch val := v.(type) {
	case bool, int32, float64:
		return val, nil
	case int:
		return counter(int64(val))
	case int64:
		return counter(val)
	case uint8:
		return int32(val), nil
	case float32:
		return float64(val), nil
	case json.Number:
		// Integral literals become counters; Convert widens them when a
		// double is requested.
		if i, err := val.Int64(); err == nil && i >= math.MinInt32 && i <= math.MaxInt32 {
			return int32(i), nil
		}
		f, err := val.Float64()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrTypeMismatch, err)
		}
		return f, nil
	default:
		return nil, fmt.Errorf("%w: unsupported record type %T", ErrTypeMismatch, v)
	}
}

// counter narrows an integer record to int32, rejecting values that do not
// fit.
func counter(v int64) (any, error) {
	if v < math.MinInt32 || v > math.MaxInt32 {
		return nil, fmt.Errorf("%w: integer %d overflows int32", ErrTypeMismatch, v)
	}
	return int32(v), nil
}

// Get retrieves a value from Records with compile-time type safety.
// It returns the value and a boolean indicating whether the record exists
// and holds a value of the requested type.
//
// Example:
//
//	global, ok := Get(muon.Records, KeyIsGlobalMuon)
//	if !ok {
//	    // handle missing record
//	}
func Get[T Value](r Records, key Key[T]) (T, bool) {
	var zero T
	value, exists := r.data[key.name]
	if !exists {
		return zero, false
	}
	val, ok := value.(T)
	return val, ok
}

// Convert asserts a raw record value to T. Counter records widen to
// float64 when a double is requested; every other mismatch is an
// ErrTypeMismatch.
func Convert[T Value](raw any) (T, error) {
	var zero T
	if v, ok := raw.(T); ok {
		return v, nil
	}
	if _, wantFloat := any(zero).(float64); wantFloat {
		if i, ok := raw.(int32); ok {
			return any(float64(i)).(T), nil
		}
	}
	return zero, fmt.Errorf("%w: have %T, want %T", ErrTypeMismatch, raw, zero)
}

// Raw returns the stored value for a record name without type checking.
func (r Records) Raw(name string) (any, bool) {
	value, exists := r.data[name]
	return value, exists
}

// With creates a new Records with the specified key/value pair added or
// updated. The original Records is left unchanged.
//
// Example:
//
//	recs := With(NewRecords(), KeyIsGlobalMuon, true)
func With[T Value](r Records, key Key[T], value T) Records {
	newData := maps.Clone(r.data)
	if newData == nil {
		newData = make(map[string]any, 1)
	}
	newData[key.name] = value
	return Records{data: newData}
}

// Names returns all record names in sorted order. The returned slice is
// safe to modify.
func (r Records) Names() []string {
	names := make([]string, 0, len(r.data))
	for k := range r.data {
		names = append(names, k)
	}
	slices.Sort(names)
	return names
}

// Len returns the number of stored records.
func (r Records) Len() int { return len(r.data) }

// String returns a string representation of the records for debugging.
func (r Records) String() string {
	return fmt.Sprintf("Records%v", r.data)
}
