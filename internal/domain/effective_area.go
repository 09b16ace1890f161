package domain

import (
	"errors"
	"fmt"
	"math"
)

// Category identifies a particle-flow isolation category for which an
// effective area is tabulated. The set is fixed.
type Category int

// Supported effective-area categories. The numeric values match the
// historical table indices.
const (
	ChargedHadron Category = 0
	NeutralHadron Category = 1
	Photon        Category = 2
)

// String implements fmt.Stringer.
func (c Category) String() string {
	switch c {
	case ChargedHadron:
		return "charged_hadron"
	case NeutralHadron:
		return "neutral_hadron"
	case Photon:
		return "photon"
	default:
		return fmt.Sprintf("category(%d)", int(c))
	}
}

// EffectiveAreaDefinition describes the three per-category tables. All
// three share the same eta edges; each has its own value sequence.
type EffectiveAreaDefinition struct {
	// EtaEdges are the shared, strictly increasing bin edges.
	EtaEdges []float64 `yaml:"eta_edges" json:"eta_edges" validate:"required,min=2,ascending"`

	// ChargedHadrons holds one effective area per eta region.
	ChargedHadrons []float64 `yaml:"charged_hadrons" json:"charged_hadrons" validate:"required,dive,gte=0"`

	// NeutralHadrons holds one effective area per eta region.
	NeutralHadrons []float64 `yaml:"neutral_hadrons" json:"neutral_hadrons" validate:"required,dive,gte=0"`

	// Photons holds one effective area per eta region.
	Photons []float64 `yaml:"photons" json:"photons" validate:"required,dive,gte=0"`

	// AbsEta makes the table take the absolute value of the query
	// coordinate itself. Callers are expected to pass |eta| regardless.
	AbsEta bool `yaml:"abs_eta" json:"abs_eta"`
}

// EffectiveAreaTable holds one BinnedMapping per category and exposes a
// single category-indexed lookup. It is immutable and safe for concurrent
// use.
type EffectiveAreaTable struct {
	chargedHadrons *BinnedMapping
	neutralHadrons *BinnedMapping
	photons        *BinnedMapping
	absEta         bool
}

// NewEffectiveAreaTable builds the three mappings from a definition.
// Any malformed table is reported as a ConfigError naming the category.
func NewEffectiveAreaTable(def EffectiveAreaDefinition) (*EffectiveAreaTable, error) {
	ch, err := NewBinnedMapping(def.EtaEdges, def.ChargedHadrons)
	if err != nil {
		return nil, wrapTableError("charged_hadrons", err)
	}
	nh, err := NewBinnedMapping(def.EtaEdges, def.NeutralHadrons)
	if err != nil {
		return nil, wrapTableError("neutral_hadrons", err)
	}
	ph, err := NewBinnedMapping(def.EtaEdges, def.Photons)
	if err != nil {
		return nil, wrapTableError("photons", err)
	}

	return &EffectiveAreaTable{
		chargedHadrons: ch,
		neutralHadrons: nh,
		photons:        ph,
		absEta:         def.AbsEta,
	}, nil
}

func wrapTableError(category string, err error) error {
	var cfgErr *ConfigError
	if errors.As(err, &cfgErr) {
		return NewConfigError("effective_area."+category+"."+cfgErr.ConfigKey, cfgErr.Err)
	}
	return NewConfigError("effective_area."+category, err)
}

// Mapping returns the BinnedMapping behind one category.
func (t *EffectiveAreaTable) Mapping(category Category) (*BinnedMapping, error) {
	switch category {
	case ChargedHadron:
		return t.chargedHadrons, nil
	case NeutralHadron:
		return t.neutralHadrons, nil
	case Photon:
		return t.photons, nil
	default:
		return nil, &UnsupportedCategoryError{Category: category}
	}
}

// EffectiveArea returns the tabulated effective area for the given
// coordinate and category. The lookup for one category never touches the
// tables of another. Categories outside the fixed set fail with
// UnsupportedCategoryError.
func (t *EffectiveAreaTable) EffectiveArea(eta float64, category Category) (float64, error) {
	if t.absEta {
		eta = math.Abs(eta)
	}

	bm, err := t.Mapping(category)
	if err != nil {
		return 0, err
	}
	return bm.Lookup(eta), nil
}
