package criteria

import (
	"github.com/ahrav/go-muonsel/internal/domain"
	"github.com/ahrav/go-muonsel/internal/ports"
)

var _ ports.Criterion = (*GeneratorIso)(nil)

// GeneratorIsoConfig bounds GenIso / pt. Unlike the reconstructed
// variants a zero maximum is allowed: it fails every muon with non-zero
// generator isolation.
type GeneratorIsoConfig struct {
	Max      float64  `yaml:"max" json:"max" validate:"gte=0"`
	Boundary Boundary `yaml:"boundary" json:"boundary" validate:"omitempty,oneof=exclusive inclusive"`
}

// GeneratorIso judges generator-level muons on the GenIso record relative
// to pt. The engine uses it in place of the configured isolation variant
// when a candidate carries domain.LevelGenerated, with the same maximum.
type GeneratorIso struct {
	config GeneratorIsoConfig
}

// NewGeneratorIso creates a GeneratorIso criterion.
func NewGeneratorIso(config GeneratorIsoConfig) (*GeneratorIso, error) {
	if err := validateConfig(config); err != nil {
		return nil, err
	}
	return &GeneratorIso{config: config}, nil
}

func (g *GeneratorIso) Name() string { return NameGeneratorIso }

// Pass evaluates GenIso / pt against the maximum.
func (g *GeneratorIso) Pass(c ports.Candidate) (bool, error) {
	sum, err := c.Float(domain.KeyGenIso)
	if err != nil {
		return false, lookupFailed(g.Name(), err)
	}
	return relativeBelow(g.config.Boundary, sum, c.Pt(), g.config.Max), nil
}

func (g *GeneratorIso) Requires() []string { return []string{domain.KeyGenIso.Name()} }

func (g *GeneratorIso) Validate() error { return validateConfig(g.config) }
