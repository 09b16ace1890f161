package criteria

import (
	"github.com/ahrav/go-muonsel/internal/domain"
	"github.com/ahrav/go-muonsel/internal/ports"
)

var _ ports.Criterion = (*CombinedIso)(nil)

// CombinedIso sums the tracker, ECAL and HCAL detector isolation deposits
// and compares the total relative to pt. It predates particle-flow
// isolation and has no pileup correction.
type CombinedIso struct {
	config IsolationConfig
}

// DefaultCombinedIsoConfig returns the standard detector isolation cut.
func DefaultCombinedIsoConfig() IsolationConfig {
	return IsolationConfig{Max: 0.15, Boundary: BoundaryInclusive}
}

// NewCombinedIso creates a CombinedIso criterion.
func NewCombinedIso(config IsolationConfig) (*CombinedIso, error) {
	if err := validateConfig(config); err != nil {
		return nil, err
	}
	return &CombinedIso{config: config}, nil
}

func (ci *CombinedIso) Name() string { return NameCombinedIso }

// Config returns a copy of the configuration.
func (ci *CombinedIso) Config() IsolationConfig { return ci.config }

// Pass evaluates (TrkIso + ECALIso + HCALIso) / pt against the maximum.
func (ci *CombinedIso) Pass(c ports.Candidate) (bool, error) {
	r := &recordReader{c: c}
	sum := r.value(domain.KeyTrackIso) + r.value(domain.KeyECALIso) + r.value(domain.KeyHCALIso)
	if r.err != nil {
		return r.result(ci.Name(), false)
	}
	return ci.config.pass(sum, c.Pt()), nil
}

func (ci *CombinedIso) Requires() []string {
	return []string{domain.KeyTrackIso.Name(), domain.KeyECALIso.Name(), domain.KeyHCALIso.Name()}
}

func (ci *CombinedIso) Validate() error { return validateConfig(ci.config) }

// NewCombinedIsoFromConfig creates a CombinedIso from a configuration map.
func NewCombinedIsoFromConfig(params map[string]any) (ports.Criterion, error) {
	cfg := DefaultCombinedIsoConfig()
	if err := decodeParams(params, &cfg); err != nil {
		return nil, err
	}
	return NewCombinedIso(cfg)
}
