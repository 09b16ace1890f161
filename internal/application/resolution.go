package application

import (
	"maps"

	"github.com/ahrav/go-muonsel/internal/domain"
	"github.com/ahrav/go-muonsel/internal/ports"
)

var (
	_ ports.AttributeResolver = StrictResolver{}
	_ ports.AttributeResolver = (*LegacyFallbackResolver)(nil)
	_ ports.Candidate         = (*candidate)(nil)
)

// DefaultLegacyRemap returns the record names written by older
// reconstruction releases, keyed by the current canonical name.
func DefaultLegacyRemap() map[string]string {
	return map[string]string{
		"NormChi2":              "normalizedChi2",
		"VHitsMuonSys":          "numberOfValidMuonHits",
		"VHitsPixel":            "numberOfValidPixelHits",
		"NMatchedStations":      "numberOfMatchedStations",
		"TrackerLayersWithMeas": "trackerLayersWithMeasurement",
		"PixelLayersWithMeas":   "pixelLayersWithMeasurement",
		"Dxy":                   "dxy",
		"Dz":                    "dz",
	}
}

// StrictResolver looks records up under their canonical name only.
type StrictResolver struct{}

// Resolve implements ports.AttributeResolver.
func (StrictResolver) Resolve(m domain.Muon, name string) (any, string, error) {
	v, ok := m.Record(name)
	if !ok {
		return nil, name, ports.NewAttributeLookupError(name, "", domain.ErrKeyNotFound)
	}
	return v, name, nil
}

// Mode implements ports.AttributeResolver.
func (StrictResolver) Mode() string { return ResolutionStrict }

// LegacyFallbackResolver tries the canonical name first and, for names in
// its remap table only, the legacy alternate. The table is copied at
// construction and never changes, so every particle is resolved the same
// way regardless of evaluation order.
type LegacyFallbackResolver struct {
	remap map[string]string
}

// NewLegacyFallbackResolver creates a resolver over a copy of remap. A nil
// remap selects DefaultLegacyRemap.
func NewLegacyFallbackResolver(remap map[string]string) *LegacyFallbackResolver {
	if remap == nil {
		remap = DefaultLegacyRemap()
	}
	return &LegacyFallbackResolver{remap: maps.Clone(remap)}
}

// Resolve implements ports.AttributeResolver.
func (r *LegacyFallbackResolver) Resolve(m domain.Muon, name string) (any, string, error) {
	if v, ok := m.Record(name); ok {
		return v, name, nil
	}
	alt, ok := r.remap[name]
	if !ok {
		return nil, name, ports.NewAttributeLookupError(name, "", domain.ErrKeyNotFound)
	}
	if v, ok := m.Record(alt); ok {
		return v, alt, nil
	}
	return nil, name, ports.NewAttributeLookupError(name, alt, domain.ErrKeyNotFound)
}

// Mode implements ports.AttributeResolver.
func (r *LegacyFallbackResolver) Mode() string { return ResolutionLegacy }

// Remap returns a copy of the remap table.
func (r *LegacyFallbackResolver) Remap() map[string]string { return maps.Clone(r.remap) }

// newResolver builds the resolver named by cfg.
func newResolver(cfg ResolutionConfig) ports.AttributeResolver {
	if cfg.Mode == ResolutionLegacy {
		return NewLegacyFallbackResolver(cfg.Remap)
	}
	return StrictResolver{}
}

// candidate adapts a domain.Input to ports.Candidate through a resolver.
type candidate struct {
	in       domain.Input
	resolver ports.AttributeResolver
}

// NewCandidate returns the criterion view of in. Every record read goes
// through resolver.
func NewCandidate(in domain.Input, resolver ports.AttributeResolver) ports.Candidate {
	if resolver == nil {
		resolver = StrictResolver{}
	}
	return &candidate{in: in, resolver: resolver}
}

func (c *candidate) Pt() float64         { return c.in.Muon.Pt }
func (c *candidate) Eta() float64        { return c.in.Muon.Eta }
func (c *candidate) Rho() float64        { return c.in.Rho }
func (c *candidate) Level() domain.Level { return c.in.Muon.Level }

func (c *candidate) Bool(key domain.Key[bool]) (bool, error) { return resolve(c, key) }

func (c *candidate) Int(key domain.Key[int32]) (int32, error) { return resolve(c, key) }

func (c *candidate) Float(key domain.Key[float64]) (float64, error) { return resolve(c, key) }

func resolve[T domain.Value](c *candidate, key domain.Key[T]) (T, error) {
	var zero T
	raw, resolved, err := c.resolver.Resolve(c.in.Muon, key.Name())
	if err != nil {
		return zero, err
	}
	v, err := domain.Convert[T](raw)
	if err != nil {
		alt := ""
		if resolved != key.Name() {
			alt = resolved
		}
		return zero, ports.NewAttributeLookupError(key.Name(), alt, err)
	}
	return v, nil
}
