package application

import (
	"gopkg.in/yaml.v3"

	"github.com/ahrav/go-muonsel/infrastructure/criteria"
	"github.com/ahrav/go-muonsel/internal/domain"
)

// SelectorConfig defines the complete muon selection policy and serves as
// the primary configuration entry point for the engine. A SelectorConfig
// is validated once, turned into an Engine, and never consulted again.
type SelectorConfig struct {
	// Version specifies the configuration schema version using semantic
	// versioning.
	Version string `yaml:"version" json:"version" validate:"required,semver"`

	// Metadata carries descriptive information about the policy.
	Metadata Metadata `yaml:"metadata,omitempty" json:"metadata"`

	// Kinematics holds the transverse momentum and pseudorapidity window.
	Kinematics KinematicsConfig `yaml:"kinematics" json:"kinematics" validate:"required"`

	// Identification selects the identification variant and its
	// thresholds.
	Identification IdentificationConfig `yaml:"identification" json:"identification" validate:"required"`

	// Isolation selects the isolation variant, its maximum, and the
	// inversion flag.
	Isolation IsolationSelection `yaml:"isolation" json:"isolation" validate:"required"`

	// EffectiveArea supplies the ρ-correction tables. Required only when
	// the PF isolation variant enables rho correction.
	EffectiveArea *EffectiveAreaConfig `yaml:"effective_area,omitempty" json:"effective_area,omitempty"`

	// AttributeResolution chooses how record names are looked up.
	AttributeResolution ResolutionConfig `yaml:"attribute_resolution,omitempty" json:"attribute_resolution"`
}

// Metadata provides descriptive information about a selection policy.
type Metadata struct {
	// Name is the human-readable identifier for this policy.
	Name string `yaml:"name,omitempty" json:"name" validate:"max=255"`

	// Description explains the intended use of the policy.
	Description string `yaml:"description,omitempty" json:"description" validate:"max=1000"`
}

// KinematicsConfig is the acceptance window on pt and |eta|.
type KinematicsConfig struct {
	// PtMin is the minimum transverse momentum in GeV.
	PtMin float64 `yaml:"pt_min" json:"pt_min" validate:"gte=0"`

	// EtaMax is the maximum |eta|.
	EtaMax float64 `yaml:"eta_max" json:"eta_max" validate:"gt=0"`

	// Boundary controls whether the thresholds themselves pass.
	// Default: inclusive (pt >= PtMin, |eta| <= EtaMax).
	Boundary criteria.Boundary `yaml:"boundary,omitempty" json:"boundary,omitempty" validate:"omitempty,oneof=inclusive exclusive"`
}

// IdentificationConfig selects one identification variant.
type IdentificationConfig struct {
	// Type is the variant selector, e.g. "TightID".
	Type string `yaml:"type" json:"type" validate:"required"`

	// Parameters overlays the variant's default thresholds.
	Parameters yaml.Node `yaml:"parameters,omitempty" json:"-"`
}

// IsolationSelection selects one isolation variant.
type IsolationSelection struct {
	// Type is the variant selector, e.g. "PF".
	Type string `yaml:"type" json:"type" validate:"required"`

	// Max is the upper bound on the relative isolation. Required by every
	// variant that computes one; it also bounds generator isolation.
	Max float64 `yaml:"max" json:"max" validate:"gte=0"`

	// Invert negates the isolation result after evaluation.
	Invert bool `yaml:"invert,omitempty" json:"invert"`

	// Boundary controls the comparison against Max. Default: inclusive.
	Boundary criteria.Boundary `yaml:"boundary,omitempty" json:"boundary,omitempty" validate:"omitempty,oneof=inclusive exclusive"`

	// Parameters overlays the variant's remaining settings.
	Parameters yaml.Node `yaml:"parameters,omitempty" json:"-"`
}

// EffectiveAreaConfig is either an inline table definition or a path to a
// YAML file holding one.
type EffectiveAreaConfig struct {
	// File points to a YAML effective-area definition. Relative paths are
	// resolved against the selector file's directory.
	File string `yaml:"file,omitempty" json:"file,omitempty"`

	domain.EffectiveAreaDefinition `yaml:",inline"`
}

// Resolution modes.
const (
	ResolutionStrict = "strict"
	ResolutionLegacy = "legacy"
)

// ResolutionConfig chooses the attribute resolution strategy.
type ResolutionConfig struct {
	// Mode is "strict" (default) or "legacy".
	Mode string `yaml:"mode,omitempty" json:"mode" validate:"omitempty,oneof=strict legacy"`

	// Remap replaces DefaultLegacyRemap in legacy mode.
	Remap map[string]string `yaml:"remap,omitempty" json:"remap,omitempty" validate:"omitempty,dive,keys,required,endkeys,required"`
}

// Variants parses the identification and isolation selectors.
func (c *SelectorConfig) Variants() (IDVariant, IsoVariant, error) {
	id, err := ParseIDVariant("identification.type", c.Identification.Type)
	if err != nil {
		return "", "", err
	}
	iso, err := ParseIsoVariant("isolation.type", c.Isolation.Type)
	if err != nil {
		return "", "", err
	}
	return id, iso, nil
}

// DefaultSelectorConfig returns a TightID plus delta-beta corrected PF
// isolation policy with a 20 GeV, |eta| < 2.4 window.
func DefaultSelectorConfig() SelectorConfig {
	cfg := SelectorConfig{
		Version:    "1.0.0",
		Metadata:   Metadata{Name: "tight-pf"},
		Kinematics: KinematicsConfig{PtMin: 20, EtaMax: 2.4, Boundary: criteria.BoundaryInclusive},
		Identification: IdentificationConfig{
			Type: string(IDTight),
		},
		Isolation: IsolationSelection{
			Type:     string(IsoPF),
			Max:      0.15,
			Boundary: criteria.BoundaryInclusive,
		},
		AttributeResolution: ResolutionConfig{Mode: ResolutionStrict},
	}
	_ = cfg.Isolation.Parameters.Encode(map[string]any{"use_delta_beta_corr": true})
	return cfg
}
