package application

import (
	"bytes"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ahrav/go-muonsel/infrastructure/criteria"
	"github.com/ahrav/go-muonsel/internal/domain"
	"github.com/ahrav/go-muonsel/internal/ports"
)

var _ ports.ConfigSource = (*KeyedConfig)(nil)

// KeyedConfig is a flat, dotted-key view of a YAML document. Nested maps
// are joined with "."; sequences are kept as leaf values. It is immutable
// after construction.
type KeyedConfig struct {
	values map[string]any
}

// NewKeyedConfig flattens values into a KeyedConfig.
func NewKeyedConfig(values map[string]any) *KeyedConfig {
	flat := make(map[string]any, len(values))
	flatten("", values, flat)
	return &KeyedConfig{values: flat}
}

// ParseKeyedConfig decodes a flat or nested YAML document.
func ParseKeyedConfig(data []byte) (*KeyedConfig, error) {
	var doc map[string]any
	if err := yaml.NewDecoder(bytes.NewReader(data)).Decode(&doc); err != nil {
		return nil, fmt.Errorf("YAML decode failed: %w", err)
	}
	return NewKeyedConfig(doc), nil
}

// LoadKeyedConfig reads and parses a keyed configuration file.
func LoadKeyedConfig(path string) (*KeyedConfig, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return ParseKeyedConfig(data)
}

func flatten(prefix string, in map[string]any, out map[string]any) {
	for k, v := range in {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch child := v.(type) {
		case map[string]any:
			flatten(key, child, out)
		case map[any]any:
			converted := make(map[string]any, len(child))
			for ck, cv := range child {
				converted[fmt.Sprint(ck)] = cv
			}
			flatten(key, converted, out)
		default:
			out[key] = v
		}
	}
}

func (k *KeyedConfig) Has(key string) bool {
	_, ok := k.values[key]
	return ok
}

func (k *KeyedConfig) Keys() []string { return slices.Sorted(maps.Keys(k.values)) }

func (k *KeyedConfig) Raw(key string) (any, bool) {
	v, ok := k.values[key]
	return v, ok
}

func (k *KeyedConfig) String(key string, def ...string) (string, error) {
	return lookup(k, key, def, "string", func(v any) (string, bool) {
		s, ok := v.(string)
		return s, ok
	})
}

func (k *KeyedConfig) Float(key string, def ...float64) (float64, error) {
	return lookup(k, key, def, "float", toFloat)
}

func (k *KeyedConfig) Int(key string, def ...int) (int, error) {
	return lookup(k, key, def, "int", func(v any) (int, bool) {
		i, ok := v.(int)
		return i, ok
	})
}

func (k *KeyedConfig) Bool(key string, def ...bool) (bool, error) {
	return lookup(k, key, def, "bool", func(v any) (bool, bool) {
		b, ok := v.(bool)
		return b, ok
	})
}

// Floats accepts a YAML sequence of numbers or a string of numbers
// separated by whitespace or commas.
func (k *KeyedConfig) Floats(key string, def ...[]float64) ([]float64, error) {
	return lookup(k, key, def, "float list", toFloats)
}

func lookup[T any](k *KeyedConfig, key string, def []T, want string, conv func(any) (T, bool)) (T, error) {
	var zero T
	raw, ok := k.values[key]
	if !ok {
		if len(def) > 0 {
			return def[0], nil
		}
		return zero, domain.NewConfigError(key, ports.ErrConfigNotFound)
	}
	v, ok := conv(raw)
	if !ok {
		return zero, domain.NewConfigError(key,
			fmt.Errorf("%w: have %T, want %s", domain.ErrTypeMismatch, raw, want))
	}
	return v, nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}

func toFloats(v any) ([]float64, bool) {
	switch list := v.(type) {
	case []any:
		out := make([]float64, 0, len(list))
		for _, item := range list {
			f, ok := toFloat(item)
			if !ok {
				return nil, false
			}
			out = append(out, f)
		}
		return out, true
	case string:
		fields := strings.FieldsFunc(list, func(r rune) bool {
			return r == ',' || r == ' ' || r == '\t' || r == '\n'
		})
		out := make([]float64, 0, len(fields))
		for _, field := range fields {
			f, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, false
			}
			out = append(out, f)
		}
		return out, true
	default:
		return nil, false
	}
}

// Keyed configuration names.
const (
	keyPtMin          = "Muon.pt.min"
	keyEtaMax         = "Muon.eta.max"
	keyKinBoundary    = "Muon.Kinematics.Boundary"
	keyInvertIso      = "Muon.InvertIsolation"
	keyIsoType        = "Muon.Iso.Type"
	keyIsoMax         = "Muon.Iso.max"
	keyIsoBoundary    = "Muon.Iso.Boundary"
	keyIsoDeltaBeta   = "Muon.Iso.UseDeltaBetaCorr"
	keyIsoRho         = "Muon.Iso.UseRhoCorr"
	keyIsoCone        = "Muon.Iso.Cone"
	keyIsoBetaFactor  = "Muon.Iso.DeltaBetaFactor"
	keyIDType         = "Muon.ID.Type"
	keyHighPtSwitchPt = "Muon.ID.HighPtSwitchPt"
	keyEAFile         = "Muon.EffectiveArea.File"
	keyEAPrefix       = "Muon.EffArea."
	keyResolutionMode = "Muon.AttributeResolution.Mode"
	keyRemapPrefix    = "Muon.AttributeResolution.Remap."
)

// keyedParamNames maps the CamelCase keyed names onto parameter names.
// Any other suffix is passed through unchanged.
var keyedParamNames = map[string]string{
	"UseBool":  "use_bool",
	"BoolName": "bool_name",
	"Boundary": "boundary",
}

// ConfigFromKeyed builds a SelectorConfig from the dotted-key surface.
// Thresholds for an identification variant live under
// "Muon.<Variant>.<param>"; CombinedID reads both the TightID and HighPtID
// blocks.
func ConfigFromKeyed(src ports.ConfigSource) (SelectorConfig, error) {
	var (
		cfg SelectorConfig
		err error
	)
	cfg.Version = "1.0.0"

	if cfg.Kinematics.PtMin, err = src.Float(keyPtMin); err != nil {
		return SelectorConfig{}, err
	}
	if cfg.Kinematics.EtaMax, err = src.Float(keyEtaMax); err != nil {
		return SelectorConfig{}, err
	}
	boundary, err := src.String(keyKinBoundary, "")
	if err != nil {
		return SelectorConfig{}, err
	}
	cfg.Kinematics.Boundary = criteria.Boundary(boundary)

	if err := keyedIdentification(src, &cfg); err != nil {
		return SelectorConfig{}, err
	}
	if err := keyedIsolation(src, &cfg); err != nil {
		return SelectorConfig{}, err
	}
	if err := keyedEffectiveArea(src, &cfg); err != nil {
		return SelectorConfig{}, err
	}
	if err := keyedResolution(src, &cfg); err != nil {
		return SelectorConfig{}, err
	}
	return cfg, nil
}

func keyedIdentification(src ports.ConfigSource, cfg *SelectorConfig) error {
	idType, err := src.String(keyIDType)
	if err != nil {
		return err
	}
	id, err := ParseIDVariant(keyIDType, idType)
	if err != nil {
		return err
	}
	cfg.Identification.Type = string(id)

	params := variantParams(src, string(id))
	if id == IDCombined {
		params = map[string]any{}
		if tight := variantParams(src, string(IDTight)); len(tight) > 0 {
			params["tight"] = tight
		}
		if highPt := variantParams(src, string(IDHighPt)); len(highPt) > 0 {
			params["high_pt"] = highPt
		}
		if src.Has(keyHighPtSwitchPt) {
			switchPt, err := src.Float(keyHighPtSwitchPt)
			if err != nil {
				return err
			}
			params["switch_pt"] = switchPt
		}
	}
	if len(params) == 0 {
		return nil
	}
	if err := cfg.Identification.Parameters.Encode(params); err != nil {
		return domain.NewConfigError("Muon."+string(id), err)
	}
	return nil
}

// variantParams collects every "Muon.<variant>.<param>" key.
func variantParams(src ports.ConfigSource, variant string) map[string]any {
	prefix := "Muon." + variant + "."
	params := make(map[string]any)
	for _, key := range src.Keys() {
		suffix, ok := strings.CutPrefix(key, prefix)
		if !ok {
			continue
		}
		v, _ := src.Raw(key)
		if name, ok := keyedParamNames[suffix]; ok {
			suffix = name
		}
		params[suffix] = v
	}
	return params
}

func keyedIsolation(src ports.ConfigSource, cfg *SelectorConfig) error {
	isoType, err := src.String(keyIsoType)
	if err != nil {
		return err
	}
	iso, err := ParseIsoVariant(keyIsoType, isoType)
	if err != nil {
		return err
	}
	cfg.Isolation.Type = string(iso)

	if cfg.Isolation.Max, err = src.Float(keyIsoMax, 0); err != nil {
		return err
	}
	if cfg.Isolation.Invert, err = src.Bool(keyInvertIso, false); err != nil {
		return err
	}
	boundary, err := src.String(keyIsoBoundary, "")
	if err != nil {
		return err
	}
	cfg.Isolation.Boundary = criteria.Boundary(boundary)

	if iso != IsoPF {
		return nil
	}
	params := isoAliasParams(isoType)
	if params == nil {
		params = make(map[string]any, 4)
	}
	if params["use_delta_beta_corr"], err = src.Bool(keyIsoDeltaBeta, false); err != nil {
		return err
	}
	if params["use_rho_corr"], err = src.Bool(keyIsoRho, false); err != nil {
		return err
	}
	if src.Has(keyIsoCone) {
		if params["cone"], err = src.String(keyIsoCone); err != nil {
			return err
		}
	}
	if src.Has(keyIsoBetaFactor) {
		if params["delta_beta_factor"], err = src.Float(keyIsoBetaFactor); err != nil {
			return err
		}
	}
	if err := cfg.Isolation.Parameters.Encode(params); err != nil {
		return domain.NewConfigError("Muon.Iso", err)
	}
	return nil
}

func keyedEffectiveArea(src ports.ConfigSource, cfg *SelectorConfig) error {
	if src.Has(keyEAPrefix + "eta_edges") {
		var (
			def domain.EffectiveAreaDefinition
			err error
		)
		if def.EtaEdges, err = src.Floats(keyEAPrefix + "eta_edges"); err != nil {
			return err
		}
		if def.ChargedHadrons, err = src.Floats(keyEAPrefix + "EA_charged_hadrons"); err != nil {
			return err
		}
		if def.NeutralHadrons, err = src.Floats(keyEAPrefix + "EA_neutral_hadrons"); err != nil {
			return err
		}
		if def.Photons, err = src.Floats(keyEAPrefix + "EA_photons"); err != nil {
			return err
		}
		if def.AbsEta, err = src.Bool(keyEAPrefix+"abs_eta", true); err != nil {
			return err
		}
		cfg.EffectiveArea = &EffectiveAreaConfig{EffectiveAreaDefinition: def}
		return nil
	}

	if src.Has(keyEAFile) {
		file, err := src.String(keyEAFile)
		if err != nil {
			return err
		}
		cfg.EffectiveArea = &EffectiveAreaConfig{File: file}
	}
	return nil
}

func keyedResolution(src ports.ConfigSource, cfg *SelectorConfig) error {
	mode, err := src.String(keyResolutionMode, ResolutionStrict)
	if err != nil {
		return err
	}
	cfg.AttributeResolution.Mode = mode

	for _, key := range src.Keys() {
		canonical, ok := strings.CutPrefix(key, keyRemapPrefix)
		if !ok {
			continue
		}
		alt, err := src.String(key)
		if err != nil {
			return err
		}
		if cfg.AttributeResolution.Remap == nil {
			cfg.AttributeResolution.Remap = make(map[string]string)
		}
		cfg.AttributeResolution.Remap[canonical] = alt
	}
	return nil
}
