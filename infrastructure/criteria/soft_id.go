package criteria

import (
	"math"

	"github.com/ahrav/go-muonsel/internal/domain"
	"github.com/ahrav/go-muonsel/internal/ports"
)

var _ ports.Criterion = (*SoftID)(nil)

// SoftID is the loose, low-momentum identification used for muons inside
// jets and from heavy-flavour decays. It either trusts a precomputed
// boolean record or evaluates a fixed conjunction of track quality cuts.
//
// Concurrency: SoftID is stateless and safe for concurrent use.
type SoftID struct {
	config   SoftIDConfig
	boundary Boundary
}

// SoftIDConfig holds the soft identification thresholds. Configuration is
// immutable after criterion creation.
type SoftIDConfig struct {
	// UseBool trusts the BoolName record instead of evaluating cuts.
	UseBool bool `yaml:"use_bool" json:"use_bool"`

	// BoolName is the boolean record consulted when UseBool is set.
	BoolName string `yaml:"bool_name" json:"bool_name" validate:"required_if=UseBool true"`

	// RequireOneStationTight requires the TMOneStationTight flag.
	RequireOneStationTight bool `yaml:"require_one_station_tight" json:"require_one_station_tight"`

	// TrackerLayersMin is the minimum number of tracker layers with hits.
	TrackerLayersMin int32 `yaml:"tracker_layers_min" json:"tracker_layers_min" validate:"gte=0"`

	// PixelLayersMin is the minimum number of pixel layers with hits.
	PixelLayersMin int32 `yaml:"pixel_layers_min" json:"pixel_layers_min" validate:"gte=0"`

	// RequireHighPurity requires a high-purity inner track.
	RequireHighPurity bool `yaml:"require_high_purity" json:"require_high_purity"`

	// DxyMax bounds the transverse impact parameter |dxy| in cm.
	DxyMax float64 `yaml:"dxy_max" json:"dxy_max" validate:"gt=0"`

	// DzMax bounds the longitudinal impact parameter |dz| in cm.
	DzMax float64 `yaml:"dz_max" json:"dz_max" validate:"gt=0"`

	// Boundary controls the floating point comparisons. Default: exclusive.
	Boundary Boundary `yaml:"boundary" json:"boundary" validate:"omitempty,oneof=exclusive inclusive"`
}

// DefaultSoftIDConfig returns the standard soft muon working point.
func DefaultSoftIDConfig() SoftIDConfig {
	return SoftIDConfig{
		BoolName:               "isSoftMuon",
		RequireOneStationTight: true,
		TrackerLayersMin:       6,
		PixelLayersMin:         1,
		RequireHighPurity:      true,
		DxyMax:                 0.3,
		DzMax:                  20,
		Boundary:               BoundaryExclusive,
	}
}

// NewSoftID creates a SoftID criterion from a validated configuration.
func NewSoftID(config SoftIDConfig) (*SoftID, error) {
	if err := validateConfig(config); err != nil {
		return nil, err
	}
	return &SoftID{config: config, boundary: config.Boundary.OrDefault(BoundaryExclusive)}, nil
}

// Name returns the variant name.
func (s *SoftID) Name() string { return NameSoftID }

// Config returns a copy of the configuration.
func (s *SoftID) Config() SoftIDConfig { return s.config }

// Pass evaluates the soft identification on one candidate.
func (s *SoftID) Pass(c ports.Candidate) (bool, error) {
	if s.config.UseBool {
		return passNamedFlag(s.Name(), c, s.config.BoolName)
	}

	cfg := s.config
	r := &recordReader{c: c}
	pass := (!cfg.RequireOneStationTight || r.flag(domain.KeyOneStationTight)) &&
		r.count(domain.KeyTrackerLayersWithMeas) >= cfg.TrackerLayersMin &&
		r.count(domain.KeyPixelLayersWithMeas) >= cfg.PixelLayersMin &&
		(!cfg.RequireHighPurity || r.flag(domain.KeyInnerTrackHighPurity)) &&
		s.boundary.Below(math.Abs(r.value(domain.KeyDxy)), cfg.DxyMax) &&
		s.boundary.Below(math.Abs(r.value(domain.KeyDz)), cfg.DzMax)

	return r.result(s.Name(), pass)
}

// Requires lists the records read with the current configuration.
func (s *SoftID) Requires() []string {
	if s.config.UseBool {
		return []string{s.config.BoolName}
	}
	names := make([]string, 0, 6)
	if s.config.RequireOneStationTight {
		names = append(names, domain.KeyOneStationTight.Name())
	}
	names = append(names, domain.KeyTrackerLayersWithMeas.Name(), domain.KeyPixelLayersWithMeas.Name())
	if s.config.RequireHighPurity {
		names = append(names, domain.KeyInnerTrackHighPurity.Name())
	}
	return append(names, domain.KeyDxy.Name(), domain.KeyDz.Name())
}

// Validate verifies the criterion is properly configured.
func (s *SoftID) Validate() error { return validateConfig(s.config) }

// NewSoftIDFromConfig creates a SoftID from a configuration map. Missing
// keys keep their DefaultSoftIDConfig values; unknown keys are rejected.
func NewSoftIDFromConfig(params map[string]any) (ports.Criterion, error) {
	cfg := DefaultSoftIDConfig()
	if err := decodeParams(params, &cfg); err != nil {
		return nil, err
	}
	return NewSoftID(cfg)
}
