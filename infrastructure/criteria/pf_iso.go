package criteria

import (
	"fmt"
	"maps"
	"math"

	"github.com/ahrav/go-muonsel/internal/domain"
	"github.com/ahrav/go-muonsel/internal/ports"
)

// Cone selects the particle-flow isolation cone radius.
type Cone string

const (
	// ConeR04 is the ΔR < 0.4 cone.
	ConeR04 Cone = "R04"
	// ConeR03 is the ΔR < 0.3 cone.
	ConeR03 Cone = "R03"
)

// EffectiveAreaParam is the parameter key under which the registry injects
// the *domain.EffectiveAreaTable into NewPFIsoFromConfig.
const EffectiveAreaParam = "effective_area_table"

type pfKeys struct {
	charged, neutral, photons, pileup domain.Key[float64]
}

var coneKeys = map[Cone]pfKeys{
	ConeR04: {
		charged: domain.KeyPFIsoR04ChargedHadrons,
		neutral: domain.KeyPFIsoR04NeutralHadrons,
		photons: domain.KeyPFIsoR04Photons,
		pileup:  domain.KeyPFIsoR04PU,
	},
	ConeR03: {
		charged: domain.KeyPFIsoR03ChargedHadrons,
		neutral: domain.KeyPFIsoR03NeutralHadrons,
		photons: domain.KeyPFIsoR03Photons,
		pileup:  domain.KeyPFIsoR03PU,
	},
}

var _ ports.Criterion = (*PFIso)(nil)

// PFIso is the particle-flow relative isolation:
//
//	(charged + max(0, neutral + photons - pileup)) / pt
//
// The pileup term is 0.5 × the pileup charged sum with delta-beta
// correction, ρ × (EA_photon + EA_neutral) with rho correction, and zero
// with neither. Enabling both is a configuration error.
type PFIso struct {
	config PFIsoConfig
	keys   pfKeys
	table  *domain.EffectiveAreaTable
}

// PFIsoConfig holds the particle-flow isolation settings.
type PFIsoConfig struct {
	IsolationConfig `yaml:",inline"`

	// Cone selects the R04 or R03 isolation sums.
	Cone Cone `yaml:"cone" json:"cone" validate:"oneof=R04 R03"`

	// UseDeltaBetaCorrection subtracts DeltaBetaFactor × PU sum.
	UseDeltaBetaCorrection bool `yaml:"use_delta_beta_corr" json:"use_delta_beta_corr"`

	// UseRhoCorrection subtracts ρ × effective area.
	UseRhoCorrection bool `yaml:"use_rho_corr" json:"use_rho_corr"`

	// DeltaBetaFactor scales the pileup charged sum. Default 0.5.
	DeltaBetaFactor float64 `yaml:"delta_beta_factor" json:"delta_beta_factor" validate:"gt=0"`
}

// DefaultPFIsoConfig returns an uncorrected R04 cut.
func DefaultPFIsoConfig() PFIsoConfig {
	return PFIsoConfig{
		IsolationConfig: IsolationConfig{Max: 0.15, Boundary: BoundaryInclusive},
		Cone:            ConeR04,
		DeltaBetaFactor: 0.5,
	}
}

// NewPFIso creates a PFIso criterion. table may be nil unless rho
// correction is enabled.
func NewPFIso(config PFIsoConfig, table *domain.EffectiveAreaTable) (*PFIso, error) {
	if err := validateConfig(config); err != nil {
		return nil, err
	}
	if config.UseDeltaBetaCorrection && config.UseRhoCorrection {
		return nil, ports.ErrConflictingCorrections
	}
	if config.UseRhoCorrection && table == nil {
		return nil, ports.ErrMissingEffectiveArea
	}
	return &PFIso{config: config, keys: coneKeys[config.Cone], table: table}, nil
}

func (p *PFIso) Name() string { return NamePFIso }

// Config returns a copy of the configuration.
func (p *PFIso) Config() PFIsoConfig { return p.config }

// Correction names the active pileup correction for logging.
func (p *PFIso) Correction() string {
	switch {
	case p.config.UseDeltaBetaCorrection:
		return "delta_beta"
	case p.config.UseRhoCorrection:
		return "rho"
	default:
		return "none"
	}
}

// Pass evaluates the corrected relative isolation against the maximum.
func (p *PFIso) Pass(c ports.Candidate) (bool, error) {
	sum, err := p.Sum(c)
	if err != nil {
		return false, err
	}
	return p.config.pass(sum, c.Pt()), nil
}

// Sum returns the pileup-corrected absolute isolation sum.
func (p *PFIso) Sum(c ports.Candidate) (float64, error) {
	r := &recordReader{c: c}
	charged := r.value(p.keys.charged)
	neutral := r.value(p.keys.neutral) + r.value(p.keys.photons)
	if r.err != nil {
		return 0, lookupFailed(p.Name(), r.err)
	}

	var term float64
	switch {
	case p.config.UseDeltaBetaCorrection:
		term = p.config.DeltaBetaFactor * r.value(p.keys.pileup)
		if r.err != nil {
			return 0, lookupFailed(p.Name(), r.err)
		}
	case p.config.UseRhoCorrection:
		absEta := math.Abs(c.Eta())
		eaPhoton, err := p.table.EffectiveArea(absEta, domain.Photon)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", p.Name(), err)
		}
		eaNeutral, err := p.table.EffectiveArea(absEta, domain.NeutralHadron)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", p.Name(), err)
		}
		term = c.Rho() * (eaPhoton + eaNeutral)
	}

	return charged + math.Max(0, neutral-term), nil
}

func (p *PFIso) Requires() []string {
	names := []string{p.keys.charged.Name(), p.keys.neutral.Name(), p.keys.photons.Name()}
	if p.config.UseDeltaBetaCorrection {
		names = append(names, p.keys.pileup.Name())
	}
	return names
}

func (p *PFIso) Validate() error {
	if err := validateConfig(p.config); err != nil {
		return err
	}
	if p.config.UseDeltaBetaCorrection && p.config.UseRhoCorrection {
		return ports.ErrConflictingCorrections
	}
	return nil
}

// NewPFIsoFromConfig creates a PFIso from a configuration map. The
// effective-area table is taken from the EffectiveAreaParam entry and is
// not part of the decoded parameters.
func NewPFIsoFromConfig(params map[string]any) (ports.Criterion, error) {
	var table *domain.EffectiveAreaTable
	if raw, ok := params[EffectiveAreaParam]; ok {
		t, ok := raw.(*domain.EffectiveAreaTable)
		if !ok {
			return nil, fmt.Errorf("%s must be a *domain.EffectiveAreaTable", EffectiveAreaParam)
		}
		table = t
		params = maps.Clone(params)
		delete(params, EffectiveAreaParam)
	}

	cfg := DefaultPFIsoConfig()
	if err := decodeParams(params, &cfg); err != nil {
		return nil, err
	}
	return NewPFIso(cfg, table)
}
