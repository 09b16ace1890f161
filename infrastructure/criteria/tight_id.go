package criteria

import (
	"math"

	"github.com/ahrav/go-muonsel/internal/domain"
	"github.com/ahrav/go-muonsel/internal/ports"
)

var _ ports.Criterion = (*TightID)(nil)

// TightID is the standard prompt-muon identification: a global,
// particle-flow muon with a good global fit, muon-system and pixel hits,
// enough tracker layers, and a small impact parameter.
type TightID struct {
	config   TightIDConfig
	boundary Boundary
}

// TightIDConfig holds the nine tight identification cuts.
type TightIDConfig struct {
	// UseBool trusts the BoolName record instead of evaluating cuts.
	UseBool bool `yaml:"use_bool" json:"use_bool"`

	// BoolName is the boolean record consulted when UseBool is set.
	BoolName string `yaml:"bool_name" json:"bool_name" validate:"required_if=UseBool true"`

	// RequireGlobalMuon requires the global muon flag.
	RequireGlobalMuon bool `yaml:"require_global_muon" json:"require_global_muon"`

	// RequirePFMuon requires the particle-flow muon flag.
	RequirePFMuon bool `yaml:"require_pf_muon" json:"require_pf_muon"`

	// NormalizedChi2Max bounds the global-track chi2/ndof.
	NormalizedChi2Max float64 `yaml:"normalized_chi2_max" json:"normalized_chi2_max" validate:"gt=0"`

	// MuonHitsMin is the minimum number of valid muon-system hits.
	MuonHitsMin int32 `yaml:"muon_hits_min" json:"muon_hits_min" validate:"gte=0"`

	// MatchedStationsMin is the minimum number of matched muon stations.
	MatchedStationsMin int32 `yaml:"matched_stations_min" json:"matched_stations_min" validate:"gte=0"`

	// DxyMax bounds |dxy| in cm.
	DxyMax float64 `yaml:"dxy_max" json:"dxy_max" validate:"gt=0"`

	// DzMax bounds |dz| in cm.
	DzMax float64 `yaml:"dz_max" json:"dz_max" validate:"gt=0"`

	// PixelHitsMin is the minimum number of valid pixel hits.
	PixelHitsMin int32 `yaml:"pixel_hits_min" json:"pixel_hits_min" validate:"gte=0"`

	// TrackerLayersMin is the minimum number of tracker layers with hits.
	TrackerLayersMin int32 `yaml:"tracker_layers_min" json:"tracker_layers_min" validate:"gte=0"`

	// Boundary controls the floating point comparisons. Default: exclusive.
	Boundary Boundary `yaml:"boundary" json:"boundary" validate:"omitempty,oneof=exclusive inclusive"`
}

// DefaultTightIDConfig returns the standard tight muon working point.
func DefaultTightIDConfig() TightIDConfig {
	return TightIDConfig{
		BoolName:           "isTightMuon",
		RequireGlobalMuon:  true,
		RequirePFMuon:      true,
		NormalizedChi2Max:  10,
		MuonHitsMin:        1,
		MatchedStationsMin: 2,
		DxyMax:             0.2,
		DzMax:              0.5,
		PixelHitsMin:       1,
		TrackerLayersMin:   6,
		Boundary:           BoundaryExclusive,
	}
}

// NewTightID creates a TightID criterion from a validated configuration.
func NewTightID(config TightIDConfig) (*TightID, error) {
	if err := validateConfig(config); err != nil {
		return nil, err
	}
	return &TightID{config: config, boundary: config.Boundary.OrDefault(BoundaryExclusive)}, nil
}

// Name returns the variant name.
func (t *TightID) Name() string { return NameTightID }

// Config returns a copy of the configuration.
func (t *TightID) Config() TightIDConfig { return t.config }

// Pass evaluates the tight identification on one candidate.
func (t *TightID) Pass(c ports.Candidate) (bool, error) {
	if t.config.UseBool {
		return passNamedFlag(t.Name(), c, t.config.BoolName)
	}

	cfg := t.config
	r := &recordReader{c: c}
	pass := (!cfg.RequireGlobalMuon || r.flag(domain.KeyIsGlobalMuon)) &&
		(!cfg.RequirePFMuon || r.flag(domain.KeyIsPFMuon)) &&
		t.boundary.Below(r.value(domain.KeyNormalizedChi2), cfg.NormalizedChi2Max) &&
		r.count(domain.KeyValidMuonHits) >= cfg.MuonHitsMin &&
		r.count(domain.KeyMatchedStations) >= cfg.MatchedStationsMin &&
		t.boundary.Below(math.Abs(r.value(domain.KeyDxy)), cfg.DxyMax) &&
		t.boundary.Below(math.Abs(r.value(domain.KeyDz)), cfg.DzMax) &&
		r.count(domain.KeyValidPixelHits) >= cfg.PixelHitsMin &&
		r.count(domain.KeyTrackerLayersWithMeas) >= cfg.TrackerLayersMin

	return r.result(t.Name(), pass)
}

// Requires lists the records read with the current configuration.
func (t *TightID) Requires() []string {
	if t.config.UseBool {
		return []string{t.config.BoolName}
	}
	var names []string
	if t.config.RequireGlobalMuon {
		names = append(names, domain.KeyIsGlobalMuon.Name())
	}
	if t.config.RequirePFMuon {
		names = append(names, domain.KeyIsPFMuon.Name())
	}
	return append(names,
		domain.KeyNormalizedChi2.Name(),
		domain.KeyValidMuonHits.Name(),
		domain.KeyMatchedStations.Name(),
		domain.KeyDxy.Name(),
		domain.KeyDz.Name(),
		domain.KeyValidPixelHits.Name(),
		domain.KeyTrackerLayersWithMeas.Name(),
	)
}

// Validate verifies the criterion is properly configured.
func (t *TightID) Validate() error { return validateConfig(t.config) }

// NewTightIDFromConfig creates a TightID from a configuration map.
func NewTightIDFromConfig(params map[string]any) (ports.Criterion, error) {
	cfg := DefaultTightIDConfig()
	if err := decodeParams(params, &cfg); err != nil {
		return nil, err
	}
	return NewTightID(cfg)
}
