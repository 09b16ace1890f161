package criteria

import (
	"github.com/ahrav/go-muonsel/internal/domain"
	"github.com/ahrav/go-muonsel/internal/ports"
)

var _ ports.Criterion = (*LooseID)(nil)

// LooseID requires a particle-flow muon that was also reconstructed as a
// global or tracker muon.
type LooseID struct {
	config LooseIDConfig
}

// LooseIDConfig holds the loose identification switches.
type LooseIDConfig struct {
	// UseBool trusts the BoolName record instead of evaluating cuts.
	UseBool bool `yaml:"use_bool" json:"use_bool"`

	// BoolName is the boolean record consulted when UseBool is set.
	BoolName string `yaml:"bool_name" json:"bool_name" validate:"required_if=UseBool true"`

	// RequirePFMuon requires the particle-flow muon flag.
	RequirePFMuon bool `yaml:"require_pf_muon" json:"require_pf_muon"`

	// AcceptGlobalMuon lets a global muon satisfy the reconstruction
	// requirement.
	AcceptGlobalMuon bool `yaml:"accept_global_muon" json:"accept_global_muon"`

	// AcceptTrackerMuon lets a tracker muon satisfy the reconstruction
	// requirement.
	AcceptTrackerMuon bool `yaml:"accept_tracker_muon" json:"accept_tracker_muon"`
}

// DefaultLooseIDConfig returns isPFMuon AND (isGlobalMuon OR isTrackerMuon).
func DefaultLooseIDConfig() LooseIDConfig {
	return LooseIDConfig{
		BoolName:          "isLooseMuon",
		RequirePFMuon:     true,
		AcceptGlobalMuon:  true,
		AcceptTrackerMuon: true,
	}
}

// NewLooseID creates a LooseID criterion from a validated configuration.
func NewLooseID(config LooseIDConfig) (*LooseID, error) {
	if err := validateConfig(config); err != nil {
		return nil, err
	}
	return &LooseID{config: config}, nil
}

// Name returns the variant name.
func (l *LooseID) Name() string { return NameLooseID }

// Config returns a copy of the configuration.
func (l *LooseID) Config() LooseIDConfig { return l.config }

// Pass evaluates the loose identification on one candidate. When neither
// global nor tracker muons are accepted the reconstruction requirement is
// dropped entirely.
func (l *LooseID) Pass(c ports.Candidate) (bool, error) {
	if l.config.UseBool {
		return passNamedFlag(l.Name(), c, l.config.BoolName)
	}

	cfg := l.config
	r := &recordReader{c: c}

	pass := !cfg.RequirePFMuon || r.flag(domain.KeyIsPFMuon)
	if pass && (cfg.AcceptGlobalMuon || cfg.AcceptTrackerMuon) {
		pass = (cfg.AcceptGlobalMuon && r.flag(domain.KeyIsGlobalMuon)) ||
			(cfg.AcceptTrackerMuon && r.flag(domain.KeyIsTrackerMuon))
	}

	return r.result(l.Name(), pass)
}

// Requires lists the records read with the current configuration.
func (l *LooseID) Requires() []string {
	if l.config.UseBool {
		return []string{l.config.BoolName}
	}
	var names []string
	if l.config.RequirePFMuon {
		names = append(names, domain.KeyIsPFMuon.Name())
	}
	if l.config.AcceptGlobalMuon {
		names = append(names, domain.KeyIsGlobalMuon.Name())
	}
	if l.config.AcceptTrackerMuon {
		names = append(names, domain.KeyIsTrackerMuon.Name())
	}
	return names
}

// Validate verifies the criterion is properly configured.
func (l *LooseID) Validate() error { return validateConfig(l.config) }

// NewLooseIDFromConfig creates a LooseID from a configuration map.
func NewLooseIDFromConfig(params map[string]any) (ports.Criterion, error) {
	cfg := DefaultLooseIDConfig()
	if err := decodeParams(params, &cfg); err != nil {
		return nil, err
	}
	return NewLooseID(cfg)
}
