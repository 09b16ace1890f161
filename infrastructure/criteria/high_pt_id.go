package criteria

import (
	"math"

	"github.com/ahrav/go-muonsel/internal/domain"
	"github.com/ahrav/go-muonsel/internal/ports"
)

var _ ports.Criterion = (*HighPtID)(nil)

// HighPtID identifies high-momentum muons using the cocktail refit. A valid
// cocktail track is a hard precondition checked before either the boolean
// record or the cut-based path. The matched-station and muon-system hit
// counters come from the global track, not the cocktail one.
type HighPtID struct {
	config   HighPtIDConfig
	boundary Boundary
}

// HighPtIDConfig holds the high-pt identification thresholds.
type HighPtIDConfig struct {
	// UseBool trusts the BoolName record instead of evaluating cuts. The
	// validCocktail precondition still applies.
	UseBool bool `yaml:"use_bool" json:"use_bool"`

	// BoolName is the boolean record consulted when UseBool is set.
	BoolName string `yaml:"bool_name" json:"bool_name" validate:"required_if=UseBool true"`

	// RequireGlobalMuon requires the global muon flag.
	RequireGlobalMuon bool `yaml:"require_global_muon" json:"require_global_muon"`

	// RelPtErrorMax bounds ptErrorCocktail / ptCocktail.
	RelPtErrorMax float64 `yaml:"rel_pt_error_max" json:"rel_pt_error_max" validate:"gt=0"`

	// MatchedStationsMin is the minimum number of matched muon stations.
	MatchedStationsMin int32 `yaml:"matched_stations_min" json:"matched_stations_min" validate:"gte=0"`

	// MuonHitsMin is the minimum number of valid muon-system hits.
	MuonHitsMin int32 `yaml:"muon_hits_min" json:"muon_hits_min" validate:"gte=0"`

	// PixelHitsMin is the minimum number of valid pixel hits on the
	// cocktail track.
	PixelHitsMin int32 `yaml:"pixel_hits_min" json:"pixel_hits_min" validate:"gte=0"`

	// TrackerLayersMin is the minimum number of tracker layers with hits on
	// the cocktail track.
	TrackerLayersMin int32 `yaml:"tracker_layers_min" json:"tracker_layers_min" validate:"gte=0"`

	// DxyMax bounds |dxy| of the cocktail track in cm.
	DxyMax float64 `yaml:"dxy_max" json:"dxy_max" validate:"gt=0"`

	// DzMax bounds |dz| of the cocktail track in cm.
	DzMax float64 `yaml:"dz_max" json:"dz_max" validate:"gt=0"`

	// Boundary controls the floating point comparisons. Default: exclusive.
	Boundary Boundary `yaml:"boundary" json:"boundary" validate:"omitempty,oneof=exclusive inclusive"`
}

// DefaultHighPtIDConfig returns the standard high-pt muon working point.
func DefaultHighPtIDConfig() HighPtIDConfig {
	return HighPtIDConfig{
		BoolName:           "isHighPtMuon",
		RequireGlobalMuon:  true,
		RelPtErrorMax:      0.3,
		MatchedStationsMin: 2,
		MuonHitsMin:        1,
		PixelHitsMin:       1,
		TrackerLayersMin:   6,
		DxyMax:             0.2,
		DzMax:              0.5,
		Boundary:           BoundaryExclusive,
	}
}

// NewHighPtID creates a HighPtID criterion from a validated configuration.
func NewHighPtID(config HighPtIDConfig) (*HighPtID, error) {
	if err := validateConfig(config); err != nil {
		return nil, err
	}
	return &HighPtID{config: config, boundary: config.Boundary.OrDefault(BoundaryExclusive)}, nil
}

// Name returns the variant name.
func (h *HighPtID) Name() string { return NameHighPtID }

// Config returns a copy of the configuration.
func (h *HighPtID) Config() HighPtIDConfig { return h.config }

// Pass evaluates the high-pt identification on one candidate.
func (h *HighPtID) Pass(c ports.Candidate) (bool, error) {
	valid, err := c.Bool(domain.KeyValidCocktail)
	if err != nil {
		return false, lookupFailed(h.Name(), err)
	}
	if !valid {
		return false, nil
	}

	if h.config.UseBool {
		return passNamedFlag(h.Name(), c, h.config.BoolName)
	}

	cfg := h.config
	r := &recordReader{c: c}

	if cfg.RequireGlobalMuon && !r.flag(domain.KeyIsGlobalMuon) {
		return r.result(h.Name(), false)
	}

	ptCocktail := r.value(domain.KeyPtCocktail)
	ptError := r.value(domain.KeyPtErrorCocktail)
	if r.err != nil {
		return r.result(h.Name(), false)
	}
	// Without a positive cocktail pt the resolution cut cannot be met.
	if ptCocktail <= 0 {
		return false, nil
	}

	pass := h.boundary.Below(ptError/ptCocktail, cfg.RelPtErrorMax) &&
		r.count(domain.KeyMatchedStations) >= cfg.MatchedStationsMin &&
		r.count(domain.KeyValidMuonHits) >= cfg.MuonHitsMin &&
		r.count(domain.KeyValidPixelHitsCocktail) >= cfg.PixelHitsMin &&
		r.count(domain.KeyTrackerLayersWithMeasCocktail) >= cfg.TrackerLayersMin &&
		h.boundary.Below(math.Abs(r.value(domain.KeyDxyCocktail)), cfg.DxyMax) &&
		h.boundary.Below(math.Abs(r.value(domain.KeyDzCocktail)), cfg.DzMax)

	return r.result(h.Name(), pass)
}

// Requires lists the records read with the current configuration.
func (h *HighPtID) Requires() []string {
	names := []string{domain.KeyValidCocktail.Name()}
	if h.config.UseBool {
		return append(names, h.config.BoolName)
	}
	if h.config.RequireGlobalMuon {
		names = append(names, domain.KeyIsGlobalMuon.Name())
	}
	return append(names,
		domain.KeyPtCocktail.Name(),
		domain.KeyPtErrorCocktail.Name(),
		domain.KeyMatchedStations.Name(),
		domain.KeyValidMuonHits.Name(),
		domain.KeyValidPixelHitsCocktail.Name(),
		domain.KeyTrackerLayersWithMeasCocktail.Name(),
		domain.KeyDxyCocktail.Name(),
		domain.KeyDzCocktail.Name(),
	)
}

// Validate verifies the criterion is properly configured.
func (h *HighPtID) Validate() error { return validateConfig(h.config) }

// NewHighPtIDFromConfig creates a HighPtID from a configuration map.
func NewHighPtIDFromConfig(params map[string]any) (ports.Criterion, error) {
	cfg := DefaultHighPtIDConfig()
	if err := decodeParams(params, &cfg); err != nil {
		return nil, err
	}
	return NewHighPtID(cfg)
}
