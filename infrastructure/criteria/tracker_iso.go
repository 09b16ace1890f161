package criteria

import (
	"github.com/ahrav/go-muonsel/internal/domain"
	"github.com/ahrav/go-muonsel/internal/ports"
)

// IsolationConfig is the part every relative isolation variant shares.
type IsolationConfig struct {
	// Max is the upper bound on the relative isolation sum / pt.
	Max float64 `yaml:"max" json:"max" validate:"gt=0"`

	// Boundary controls the comparison against Max. Default: inclusive.
	Boundary Boundary `yaml:"boundary" json:"boundary" validate:"omitempty,oneof=exclusive inclusive"`
}

// pass compares sum / pt against the configured maximum.
func (c IsolationConfig) pass(sum, pt float64) bool {
	return relativeBelow(c.Boundary, sum, pt, c.Max)
}

// relativeBelow reports whether sum / pt lies below max. A particle with
// pt <= 0 has no finite relative isolation and fails.
func relativeBelow(b Boundary, sum, pt, max float64) bool {
	if pt <= 0 {
		return false
	}
	return b.OrDefault(BoundaryInclusive).Below(sum/pt, max)
}

var _ ports.Criterion = (*TrackerIso)(nil)

// TrackerIso compares the tracker isolation sum relative to pt.
type TrackerIso struct {
	config IsolationConfig
}

// DefaultTrackerIsoConfig returns the standard tracker isolation cut.
func DefaultTrackerIsoConfig() IsolationConfig {
	return IsolationConfig{Max: 0.1, Boundary: BoundaryInclusive}
}

// NewTrackerIso creates a TrackerIso criterion.
func NewTrackerIso(config IsolationConfig) (*TrackerIso, error) {
	if err := validateConfig(config); err != nil {
		return nil, err
	}
	return &TrackerIso{config: config}, nil
}

func (t *TrackerIso) Name() string { return NameTrackerIso }

// Config returns a copy of the configuration.
func (t *TrackerIso) Config() IsolationConfig { return t.config }

// Pass evaluates TrkIso / pt against the maximum.
func (t *TrackerIso) Pass(c ports.Candidate) (bool, error) {
	sum, err := c.Float(domain.KeyTrackIso)
	if err != nil {
		return false, lookupFailed(t.Name(), err)
	}
	return t.config.pass(sum, c.Pt()), nil
}

func (t *TrackerIso) Requires() []string { return []string{domain.KeyTrackIso.Name()} }

func (t *TrackerIso) Validate() error { return validateConfig(t.config) }

// NewTrackerIsoFromConfig creates a TrackerIso from a configuration map.
func NewTrackerIsoFromConfig(params map[string]any) (ports.Criterion, error) {
	cfg := DefaultTrackerIsoConfig()
	if err := decodeParams(params, &cfg); err != nil {
		return nil, err
	}
	return NewTrackerIso(cfg)
}
