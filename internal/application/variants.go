package application

import (
	"fmt"
	"maps"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/cases"

	"github.com/ahrav/go-muonsel/infrastructure/criteria"
	"github.com/ahrav/go-muonsel/internal/domain"
	"github.com/ahrav/go-muonsel/internal/ports"
)

// IDVariant is the closed set of identification algorithms.
type IDVariant string

// Identification variants.
const (
	IDSoft     IDVariant = criteria.NameSoftID
	IDLoose    IDVariant = criteria.NameLooseID
	IDMedium   IDVariant = criteria.NameMediumID
	IDTight    IDVariant = criteria.NameTightID
	IDHighPt   IDVariant = criteria.NameHighPtID
	IDCombined IDVariant = criteria.NameCombinedID
	IDNone     IDVariant = criteria.NameNone
)

// IsoVariant is the closed set of isolation algorithms.
type IsoVariant string

// Isolation variants.
const (
	IsoTracker  IsoVariant = criteria.NameTrackerIso
	IsoPF       IsoVariant = criteria.NamePFIso
	IsoMini     IsoVariant = criteria.NameMiniIso
	IsoCombined IsoVariant = criteria.NameCombinedIso
	IsoNone     IsoVariant = criteria.NameNone
)

// IDVariants lists every identification variant in display order.
func IDVariants() []IDVariant {
	return []IDVariant{IDSoft, IDLoose, IDMedium, IDTight, IDHighPt, IDCombined, IDNone}
}

// IsoVariants lists every isolation variant in display order.
func IsoVariants() []IsoVariant {
	return []IsoVariant{IsoTracker, IsoPF, IsoMini, IsoCombined, IsoNone}
}

// idAliases maps historical selector strings onto current variants.
var idAliases = map[string]IDVariant{
	"musicID": IDCombined,
}

// isoAlias is a historical isolation selector: the variant it names now and
// the parameters it implied.
type isoAlias struct {
	variant IsoVariant
	params  map[string]any
}

// isoAliases maps historical isolation selectors onto current variants.
var isoAliases = map[string]isoAlias{
	"PFCombined03": {variant: IsoPF, params: map[string]any{"cone": string(criteria.ConeR03)}},
}

// maxSuggestionDistance bounds how far a misspelled selector may be from a
// valid one for a suggestion to be offered.
const maxSuggestionDistance = 3

// ParseIDVariant converts a configuration selector into an IDVariant.
// Matching ignores case. Unknown selectors produce a *domain.ConfigError
// wrapping ports.ErrInvalidIDVariant, with a suggestion when a valid
// variant is close.
func ParseIDVariant(key, s string) (IDVariant, error) {
	names := make([]string, 0, len(idAliases)+len(IDVariants()))
	for _, v := range IDVariants() {
		names = append(names, string(v))
	}
	for alias := range idAliases {
		names = append(names, alias)
	}

	match, suggestion, ok := matchSelector(s, names)
	if !ok {
		return "", selectorError(key, s, ports.ErrInvalidIDVariant, suggestion)
	}
	if v, isAlias := idAliases[match]; isAlias {
		return v, nil
	}
	return IDVariant(match), nil
}

// ParseIsoVariant converts a configuration selector into an IsoVariant.
// Unknown selectors produce a *domain.ConfigError wrapping
// ports.ErrInvalidIsoVariant.
func ParseIsoVariant(key, s string) (IsoVariant, error) {
	names := make([]string, 0, len(isoAliases)+len(IsoVariants()))
	for _, v := range IsoVariants() {
		names = append(names, string(v))
	}
	for alias := range isoAliases {
		names = append(names, alias)
	}

	match, suggestion, ok := matchSelector(s, names)
	if !ok {
		return "", selectorError(key, s, ports.ErrInvalidIsoVariant, suggestion)
	}
	if a, isAlias := isoAliases[match]; isAlias {
		return a.variant, nil
	}
	return IsoVariant(match), nil
}

// isoAliasParams returns a copy of the parameters implied by a historical
// isolation selector, or nil when s is not one.
func isoAliasParams(s string) map[string]any {
	names := make([]string, 0, len(isoAliases))
	for alias := range isoAliases {
		names = append(names, alias)
	}
	match, _, ok := matchSelector(s, names)
	if !ok {
		return nil
	}
	return maps.Clone(isoAliases[match].params)
}

// matchSelector returns the candidate equal to s under case folding. When
// there is none it returns the closest candidate within
// maxSuggestionDistance as a suggestion.
func matchSelector(s string, candidates []string) (match, suggestion string, ok bool) {
	// A Caser carries state and must not be shared between goroutines.
	caser := cases.Fold()
	folded := caser.String(s)
	best := maxSuggestionDistance + 1
	for _, c := range candidates {
		fc := caser.String(c)
		if fc == folded {
			return c, "", true
		}
		if d := levenshtein.ComputeDistance(folded, fc); d < best {
			best = d
			suggestion = c
		}
	}
	return "", suggestion, false
}

func selectorError(key, s string, sentinel error, suggestion string) error {
	cerr := domain.NewConfigError(key, fmt.Errorf("%w: %q", sentinel, s))
	if suggestion != "" {
		cerr.Suggestion = fmt.Sprintf("Did you mean '%s'?", suggestion)
	}
	return cerr
}
