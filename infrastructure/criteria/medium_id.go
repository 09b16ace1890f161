package criteria

import (
	"github.com/ahrav/go-muonsel/internal/domain"
	"github.com/ahrav/go-muonsel/internal/ports"
)

var _ ports.Criterion = (*MediumID)(nil)

// MediumID builds on the loose selection with a valid-hit fraction cut and
// one of two alternative quality rule sets.
//
// Rule (a): segment compatibility above SegCompTightMin passes on its own.
// Rule (b), only consulted when (a) fails: a global muon with good
// normalized chi2, local position chi2, track kink, and segment
// compatibility above the lower SegCompGlobalMin.
//
// The order is significant. A particle passing (a) is accepted without any
// of the records (b) reads being consulted.
type MediumID struct {
	config   MediumIDConfig
	boundary Boundary
}

// MediumIDConfig holds the medium identification thresholds.
type MediumIDConfig struct {
	// UseBool trusts the BoolName record instead of evaluating cuts.
	UseBool bool `yaml:"use_bool" json:"use_bool"`

	// BoolName is the boolean record consulted when UseBool is set.
	BoolName string `yaml:"bool_name" json:"bool_name" validate:"required_if=UseBool true"`

	// RequireLooseMuon requires the loose muon flag.
	RequireLooseMuon bool `yaml:"require_loose_muon" json:"require_loose_muon"`

	// ValidFractionMin is the lower bound on the inner-track valid hit
	// fraction.
	ValidFractionMin float64 `yaml:"valid_fraction_min" json:"valid_fraction_min" validate:"gte=0,lte=1"`

	// RequireGlobalMuon requires a global muon in rule (b).
	RequireGlobalMuon bool `yaml:"require_global_muon" json:"require_global_muon"`

	// NormalizedChi2Max bounds the global-track chi2/ndof in rule (b).
	NormalizedChi2Max float64 `yaml:"normalized_chi2_max" json:"normalized_chi2_max" validate:"gt=0"`

	// Chi2LocalPositionMax bounds the tracker/standalone position match
	// chi2 in rule (b).
	Chi2LocalPositionMax float64 `yaml:"chi2_local_position_max" json:"chi2_local_position_max" validate:"gt=0"`

	// TrackKinkMax bounds the kink finder output in rule (b).
	TrackKinkMax float64 `yaml:"trk_kink_max" json:"trk_kink_max" validate:"gt=0"`

	// SegCompGlobalMin is the segment compatibility floor for rule (b).
	SegCompGlobalMin float64 `yaml:"seg_comp_global_min" json:"seg_comp_global_min" validate:"gte=0,lte=1"`

	// SegCompTightMin is the segment compatibility floor for rule (a).
	SegCompTightMin float64 `yaml:"seg_comp_tight_min" json:"seg_comp_tight_min" validate:"gte=0,lte=1"`

	// Boundary controls the floating point comparisons. Default: exclusive.
	Boundary Boundary `yaml:"boundary" json:"boundary" validate:"omitempty,oneof=exclusive inclusive"`
}

// DefaultMediumIDConfig returns the standard medium muon working point.
func DefaultMediumIDConfig() MediumIDConfig {
	return MediumIDConfig{
		BoolName:             "isMediumMuon",
		RequireLooseMuon:     true,
		ValidFractionMin:     0.8,
		RequireGlobalMuon:    true,
		NormalizedChi2Max:    3,
		Chi2LocalPositionMax: 12,
		TrackKinkMax:         20,
		SegCompGlobalMin:     0.303,
		SegCompTightMin:      0.451,
		Boundary:             BoundaryExclusive,
	}
}

// NewMediumID creates a MediumID criterion from a validated configuration.
func NewMediumID(config MediumIDConfig) (*MediumID, error) {
	if err := validateConfig(config); err != nil {
		return nil, err
	}
	return &MediumID{config: config, boundary: config.Boundary.OrDefault(BoundaryExclusive)}, nil
}

// Name returns the variant name.
func (m *MediumID) Name() string { return NameMediumID }

// Config returns a copy of the configuration.
func (m *MediumID) Config() MediumIDConfig { return m.config }

// Pass evaluates the medium identification on one candidate.
func (m *MediumID) Pass(c ports.Candidate) (bool, error) {
	if m.config.UseBool {
		return passNamedFlag(m.Name(), c, m.config.BoolName)
	}

	cfg := m.config
	r := &recordReader{c: c}

	base := (!cfg.RequireLooseMuon || r.flag(domain.KeyIsLooseMuon)) &&
		m.boundary.Above(r.value(domain.KeyValidFraction), cfg.ValidFractionMin)
	if !base || r.err != nil {
		return r.result(m.Name(), false)
	}

	segComp := r.value(domain.KeySegmentCompatibility)
	if r.err != nil {
		return r.result(m.Name(), false)
	}

	// Rule (a) short-circuits.
	if m.boundary.Above(segComp, cfg.SegCompTightMin) {
		return true, nil
	}

	// Rule (b).
	pass := (!cfg.RequireGlobalMuon || r.flag(domain.KeyIsGlobalMuon)) &&
		m.boundary.Below(r.value(domain.KeyNormalizedChi2), cfg.NormalizedChi2Max) &&
		m.boundary.Below(r.value(domain.KeyChi2LocalPosition), cfg.Chi2LocalPositionMax) &&
		m.boundary.Below(r.value(domain.KeyTrackKink), cfg.TrackKinkMax) &&
		m.boundary.Above(segComp, cfg.SegCompGlobalMin)

	return r.result(m.Name(), pass)
}

// Requires lists the records read with the current configuration.
func (m *MediumID) Requires() []string {
	if m.config.UseBool {
		return []string{m.config.BoolName}
	}
	var names []string
	if m.config.RequireLooseMuon {
		names = append(names, domain.KeyIsLooseMuon.Name())
	}
	names = append(names, domain.KeyValidFraction.Name(), domain.KeySegmentCompatibility.Name())
	if m.config.RequireGlobalMuon {
		names = append(names, domain.KeyIsGlobalMuon.Name())
	}
	return append(names,
		domain.KeyNormalizedChi2.Name(),
		domain.KeyChi2LocalPosition.Name(),
		domain.KeyTrackKink.Name(),
	)
}

// Validate verifies the criterion is properly configured.
func (m *MediumID) Validate() error { return validateConfig(m.config) }

// NewMediumIDFromConfig creates a MediumID from a configuration map.
func NewMediumIDFromConfig(params map[string]any) (ports.Criterion, error) {
	cfg := DefaultMediumIDConfig()
	if err := decodeParams(params, &cfg); err != nil {
		return nil, err
	}
	return NewMediumID(cfg)
}
