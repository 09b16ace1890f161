// Package criteria provides the identification and isolation variants that
// implement the ports.Criterion interface for the muon selection engine.
// Every variant owns an immutable, validated threshold struct.
package criteria

import (
	"bytes"
	"fmt"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/ahrav/go-muonsel/internal/domain"
	"github.com/ahrav/go-muonsel/internal/ports"
)

// Variant names reported by Name. They double as the configuration
// selector strings.
const (
	NameSoftID     = "SoftID"
	NameLooseID    = "LooseID"
	NameMediumID   = "MediumID"
	NameTightID    = "TightID"
	NameHighPtID   = "HighPtID"
	NameCombinedID = "CombinedID"
	NameNone       = "None"

	NameTrackerIso   = "Tracker"
	NamePFIso        = "PF"
	NameMiniIso      = "Mini"
	NameCombinedIso  = "Combined"
	NameGeneratorIso = "Generator"
)

// Boundary selects whether threshold comparisons on floating point
// quantities include the threshold itself.
type Boundary string

const (
	// BoundaryExclusive compares strictly: v < max, v > min.
	BoundaryExclusive Boundary = "exclusive"

	// BoundaryInclusive includes the threshold: v <= max, v >= min.
	BoundaryInclusive Boundary = "inclusive"
)

// OrDefault returns b, or def when b is unset.
func (b Boundary) OrDefault(def Boundary) Boundary {
	if b == "" {
		return def
	}
	return b
}

// Below reports whether v passes an upper cut at max.
func (b Boundary) Below(v, max float64) bool {
	if b == BoundaryInclusive {
		return v <= max
	}
	return v < max
}

// Above reports whether v passes a lower cut at min.
func (b Boundary) Above(v, min float64) bool {
	if b == BoundaryInclusive {
		return v >= min
	}
	return v > min
}

// Package-level validator instance for configuration validation.
// Uses go-playground/validator v10 for struct tag-based validation.
var validate = validator.New()

// decodeParams overlays a parameter map onto cfg. The map is re-encoded as
// YAML and decoded strictly so misspelled threshold names fail loudly
// instead of silently keeping their defaults.
func decodeParams(params map[string]any, cfg any) error {
	if len(params) == 0 {
		return nil
	}

	data, err := yaml.Marshal(params)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

// validateConfig runs struct validation and wraps failures consistently.
func validateConfig(cfg any) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	return nil
}

// lookupFailed annotates a record read failure with the criterion name.
func lookupFailed(criterion string, err error) error {
	return fmt.Errorf("%s: %w", criterion, err)
}

// recordReader wraps a candidate and latches the first read error. After a
// failure every further read returns the zero value, so a cut expression
// can be written as one boolean chain and checked once at the end.
type recordReader struct {
	c   ports.Candidate
	err error
}

func (r *recordReader) flag(key domain.Key[bool]) bool {
	if r.err != nil {
		return false
	}
	v, err := r.c.Bool(key)
	if err != nil {
		r.err = err
	}
	return v
}

func (r *recordReader) count(key domain.Key[int32]) int32 {
	if r.err != nil {
		return 0
	}
	v, err := r.c.Int(key)
	if err != nil {
		r.err = err
	}
	return v
}

func (r *recordReader) value(key domain.Key[float64]) float64 {
	if r.err != nil {
		return 0
	}
	v, err := r.c.Float(key)
	if err != nil {
		r.err = err
	}
	return v
}

// result returns pass unless a read failed, in which case the read error is
// returned annotated with the criterion name.
func (r *recordReader) result(criterion string, pass bool) (bool, error) {
	if r.err != nil {
		return false, lookupFailed(criterion, r.err)
	}
	return pass, nil
}

// passNamedFlag implements the shared use_bool path: the decision is a
// single boolean record produced upstream.
func passNamedFlag(criterion string, c ports.Candidate, name string) (bool, error) {
	v, err := c.Bool(domain.NewKey[bool](name))
	if err != nil {
		return false, lookupFailed(criterion, err)
	}
	return v, nil
}
