package application

import (
	"fmt"
	"maps"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/ahrav/go-muonsel/infrastructure/criteria"
	"github.com/ahrav/go-muonsel/internal/domain"
	"github.com/ahrav/go-muonsel/internal/ports"
)

// CriterionFactory builds a criterion from decoded variant parameters.
type CriterionFactory func(params map[string]any) (ports.Criterion, error)

// CriterionRegistry maps every identification and isolation variant to its
// factory. The variant set is closed: the registry is fully populated at
// construction and offers no way to add entries afterwards, so it needs no
// locking.
type CriterionRegistry struct {
	identification map[IDVariant]CriterionFactory
	isolation      map[IsoVariant]CriterionFactory
	// table is injected into the PF isolation factory.
	table *domain.EffectiveAreaTable
}

// NewCriterionRegistry creates the registry. table may be nil when no
// isolation variant needs rho correction.
func NewCriterionRegistry(table *domain.EffectiveAreaTable) *CriterionRegistry {
	r := &CriterionRegistry{table: table}

	r.identification = map[IDVariant]CriterionFactory{
		IDSoft:     criteria.NewSoftIDFromConfig,
		IDLoose:    criteria.NewLooseIDFromConfig,
		IDMedium:   criteria.NewMediumIDFromConfig,
		IDTight:    criteria.NewTightIDFromConfig,
		IDHighPt:   criteria.NewHighPtIDFromConfig,
		IDCombined: criteria.NewCombinedIDFromConfig,
		IDNone:     acceptFactory,
	}

	r.isolation = map[IsoVariant]CriterionFactory{
		IsoTracker:  criteria.NewTrackerIsoFromConfig,
		IsoCombined: criteria.NewCombinedIsoFromConfig,
		IsoPF: func(params map[string]any) (ports.Criterion, error) {
			// Inject the effective-area table into a copy of the params.
			withTable := maps.Clone(params)
			if withTable == nil {
				withTable = make(map[string]any, 1)
			}
			if r.table != nil {
				withTable[criteria.EffectiveAreaParam] = r.table
			}
			return criteria.NewPFIsoFromConfig(withTable)
		},
		IsoMini: func(params map[string]any) (ports.Criterion, error) {
			return criteria.NewMiniIso(), nil
		},
		IsoNone: acceptFactory,
	}

	return r
}

func acceptFactory(map[string]any) (ports.Criterion, error) {
	return criteria.NewAccept(), nil
}

// CreateIdentification builds the identification criterion for v.
func (r *CriterionRegistry) CreateIdentification(v IDVariant, params map[string]any) (ports.Criterion, error) {
	factory, ok := r.identification[v]
	if !ok {
		return nil, domain.NewConfigError("identification.type", fmt.Errorf("%w: %q", ports.ErrInvalidIDVariant, v))
	}
	c, err := factory(params)
	if err != nil {
		return nil, domain.NewConfigError("identification.parameters", fmt.Errorf("%s: %w", v, err))
	}
	return c, nil
}

// CreateIsolation builds the isolation criterion for v.
func (r *CriterionRegistry) CreateIsolation(v IsoVariant, params map[string]any) (ports.Criterion, error) {
	factory, ok := r.isolation[v]
	if !ok {
		return nil, domain.NewConfigError("isolation.type", fmt.Errorf("%w: %q", ports.ErrInvalidIsoVariant, v))
	}
	c, err := factory(params)
	if err != nil {
		return nil, domain.NewConfigError("isolation.parameters", fmt.Errorf("%s: %w", v, err))
	}
	return c, nil
}

// SupportedIdentification returns the registered identification variants
// in sorted order.
func (r *CriterionRegistry) SupportedIdentification() []IDVariant {
	return slices.Sorted(maps.Keys(r.identification))
}

// SupportedIsolation returns the registered isolation variants in sorted
// order.
func (r *CriterionRegistry) SupportedIsolation() []IsoVariant {
	return slices.Sorted(maps.Keys(r.isolation))
}

// decodeParameters converts a parameters node into a map. An absent node
// yields an empty map.
func decodeParameters(node yaml.Node) (map[string]any, error) {
	params := make(map[string]any)
	if node.Kind == 0 {
		return params, nil
	}
	if err := node.Decode(&params); err != nil {
		return nil, fmt.Errorf("failed to decode parameters: %w", err)
	}
	if params == nil {
		params = make(map[string]any)
	}
	return params, nil
}

// isolationParams merges the top-level isolation settings into the
// variant parameters. Explicit parameters win.
func isolationParams(sel IsolationSelection) (map[string]any, error) {
	params, err := decodeParameters(sel.Parameters)
	if err != nil {
		return nil, err
	}
	for k, v := range isoAliasParams(sel.Type) {
		if _, ok := params[k]; !ok {
			params[k] = v
		}
	}
	if _, ok := params["max"]; !ok && sel.Max > 0 {
		params["max"] = sel.Max
	}
	if _, ok := params["boundary"]; !ok && sel.Boundary != "" {
		params["boundary"] = string(sel.Boundary)
	}
	return params, nil
}
