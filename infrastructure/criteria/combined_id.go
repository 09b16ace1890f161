package criteria

import (
	"fmt"

	"github.com/ahrav/go-muonsel/internal/ports"
)

var _ ports.Criterion = (*CombinedID)(nil)

// CombinedID applies TightID below a transverse momentum switch point and
// HighPtID at or above it.
type CombinedID struct {
	config CombinedIDConfig
	tight  *TightID
	highPt *HighPtID
}

// CombinedIDConfig carries the switch point and both sub-configurations.
type CombinedIDConfig struct {
	// SwitchPt is the pt in GeV at which HighPtID takes over.
	SwitchPt float64 `yaml:"switch_pt" json:"switch_pt" validate:"gt=0"`

	Tight  TightIDConfig  `yaml:"tight" json:"tight"`
	HighPt HighPtIDConfig `yaml:"high_pt" json:"high_pt"`
}

// DefaultCombinedIDConfig switches at 200 GeV with default sub-criteria.
func DefaultCombinedIDConfig() CombinedIDConfig {
	return CombinedIDConfig{
		SwitchPt: 200,
		Tight:    DefaultTightIDConfig(),
		HighPt:   DefaultHighPtIDConfig(),
	}
}

// NewCombinedID creates a CombinedID and both of its sub-criteria.
func NewCombinedID(config CombinedIDConfig) (*CombinedID, error) {
	if err := validateConfig(config); err != nil {
		return nil, err
	}
	tight, err := NewTightID(config.Tight)
	if err != nil {
		return nil, fmt.Errorf("tight: %w", err)
	}
	highPt, err := NewHighPtID(config.HighPt)
	if err != nil {
		return nil, fmt.Errorf("high_pt: %w", err)
	}
	return &CombinedID{config: config, tight: tight, highPt: highPt}, nil
}

// Name returns the variant name.
func (c *CombinedID) Name() string { return NameCombinedID }

// Config returns a copy of the configuration.
func (c *CombinedID) Config() CombinedIDConfig { return c.config }

// Pass delegates to the sub-criterion selected by the candidate's pt.
func (c *CombinedID) Pass(cand ports.Candidate) (bool, error) {
	if cand.Pt() < c.config.SwitchPt {
		return c.tight.Pass(cand)
	}
	return c.highPt.Pass(cand)
}

// Requires returns the union of both sub-criteria's records.
func (c *CombinedID) Requires() []string {
	seen := make(map[string]struct{})
	var names []string
	for _, n := range append(c.tight.Requires(), c.highPt.Requires()...) {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		names = append(names, n)
	}
	return names
}

// Validate verifies the criterion and both sub-criteria.
func (c *CombinedID) Validate() error {
	if err := validateConfig(c.config); err != nil {
		return err
	}
	if err := c.tight.Validate(); err != nil {
		return err
	}
	return c.highPt.Validate()
}

// NewCombinedIDFromConfig creates a CombinedID from a configuration map.
// Nested tight and high_pt maps overlay the default sub-configurations.
func NewCombinedIDFromConfig(params map[string]any) (ports.Criterion, error) {
	cfg := DefaultCombinedIDConfig()
	if err := decodeParams(params, &cfg); err != nil {
		return nil, err
	}
	return NewCombinedID(cfg)
}
