package application

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-muonsel/internal/domain"
	"github.com/ahrav/go-muonsel/internal/testutils"
)

const rhoSelectorYAML = `
version: "1.0.0"
metadata:
  name: tight-pf-rho
kinematics:
  pt_min: 20
  eta_max: 2.4
identification:
  type: TightID
isolation:
  type: PF
  max: 0.15
  parameters:
    use_rho_corr: true
effective_area:
  file: areas/ea.yaml
`

const effectiveAreaYAML = `
eta_edges: [0.0, 1.0, 1.479, 2.5]
charged_hadrons: [0.0, 0.0, 0.0]
neutral_hadrons: [0.2, 0.2, 0.2]
photons: [0.1, 0.1, 0.1]
abs_eta: true
`

const trackerSelectorYAML = `
version: "1.0.0"
kinematics:
  pt_min: 20
  eta_max: 2.4
identification:
  type: MediumID
isolation:
  type: Tracker
  max: 0.1
`

// writeSelector lays out a selector file next to an areas/ directory and
// returns the selector path.
func writeSelector(t *testing.T, selector string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "areas"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "areas", "ea.yaml"), []byte(effectiveAreaYAML), 0o600))

	path := filepath.Join(dir, "selector.yaml")
	require.NoError(t, os.WriteFile(path, []byte(selector), 0o600))
	return path
}

func TestSelectorLoader_LoadFromFile_ResolvesEffectiveAreaRelativeToFile(t *testing.T) {
	path := writeSelector(t, rhoSelectorYAML)
	loader := NewSelectorLoader()

	e, err := loader.LoadFromFile(context.Background(), path)
	require.NoError(t, err)

	id, iso := e.Variants()
	assert.Equal(t, IDTight, id)
	assert.Equal(t, IsoPF, iso)
	require.NotNil(t, e.Config().EffectiveArea)
	assert.Equal(t, []float64{0.0, 1.0, 1.479, 2.5}, e.Config().EffectiveArea.EtaEdges)

	d, err := e.Evaluate(domain.Input{Muon: testutils.GoodMuon(), Rho: 10})
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomePass, d.Code)
}

func TestSelectorLoader_CachesByContent(t *testing.T) {
	loader := NewSelectorLoader()
	ctx := context.Background()

	first, err := loader.LoadFromReader(ctx, strings.NewReader(trackerSelectorYAML))
	require.NoError(t, err)

	// Same document with different formatting hits the cache.
	reformatted := strings.ReplaceAll(trackerSelectorYAML, "max: 0.1", "max: 0.10")
	second, err := loader.LoadFromReader(ctx, strings.NewReader(reformatted))
	require.NoError(t, err)
	assert.Same(t, first, second)

	changed := strings.ReplaceAll(trackerSelectorYAML, "max: 0.1", "max: 0.2")
	third, err := loader.LoadFromReader(ctx, strings.NewReader(changed))
	require.NoError(t, err)
	assert.NotSame(t, first, third)

	loader.ClearCache()
	fourth, err := loader.LoadFromReader(ctx, strings.NewReader(trackerSelectorYAML))
	require.NoError(t, err)
	assert.NotSame(t, first, fourth)
}

func TestSelectorLoader_ConcurrentLoadsShareEngine(t *testing.T) {
	loader := NewSelectorLoader()

	const n = 16
	engines := make([]*Engine, n)
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			e, err := loader.LoadFromReader(context.Background(), strings.NewReader(trackerSelectorYAML))
			assert.NoError(t, err)
			engines[i] = e
		}()
	}
	wg.Wait()

	for i := 1; i < n; i++ {
		assert.Same(t, engines[0], engines[i])
	}
}

func TestSelectorLoader_Errors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantMsg string
		wantKey string
	}{
		{
			name:    "unknown top-level key",
			yaml:    trackerSelectorYAML + "selection: tight\n",
			wantMsg: "failed to parse YAML",
		},
		{
			name:    "malformed yaml",
			yaml:    "version: [1.0.0\n",
			wantMsg: "failed to parse YAML",
		},
		{
			name:    "unknown identification variant",
			yaml:    strings.ReplaceAll(trackerSelectorYAML, "MediumID", "MedID"),
			wantMsg: "failed to build engine",
			wantKey: "identification.type",
		},
		{
			name:    "missing effective area file",
			yaml:    rhoSelectorYAML,
			wantKey: "effective_area.file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loader := NewSelectorLoader()
			// LoadFromReader resolves against the working directory, where
			// areas/ea.yaml does not exist.
			_, err := loader.LoadFromReader(context.Background(), strings.NewReader(tt.yaml))
			require.Error(t, err)
			if tt.wantMsg != "" {
				assert.Contains(t, err.Error(), tt.wantMsg)
			}
			if tt.wantKey != "" {
				var cfgErr *domain.ConfigError
				require.True(t, errors.As(err, &cfgErr))
				assert.Equal(t, tt.wantKey, cfgErr.ConfigKey)
			}
		})
	}
}

func TestSelectorLoader_LoadFromFile_Missing(t *testing.T) {
	_, err := NewSelectorLoader().LoadFromFile(context.Background(), filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestReadSelectorConfig(t *testing.T) {
	path := writeSelector(t, rhoSelectorYAML)

	cfg, err := ReadSelectorConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "tight-pf-rho", cfg.Metadata.Name)
	require.NotNil(t, cfg.EffectiveArea)
	assert.Equal(t, "areas/ea.yaml", cfg.EffectiveArea.File)
	assert.Equal(t, []float64{0.1, 0.1, 0.1}, cfg.EffectiveArea.Photons)
	assert.True(t, cfg.EffectiveArea.AbsEta)
}

func TestInlineEffectiveArea(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ea.yaml"), []byte(effectiveAreaYAML), 0o600))

	t.Run("does not modify the caller's table", func(t *testing.T) {
		original := &EffectiveAreaConfig{File: "ea.yaml"}
		cfg := SelectorConfig{EffectiveArea: original}

		require.NoError(t, InlineEffectiveArea(&cfg, dir))
		assert.Empty(t, original.EtaEdges)
		assert.Len(t, cfg.EffectiveArea.EtaEdges, 4)
	})

	t.Run("inline table wins over file", func(t *testing.T) {
		def := testutils.TestEffectiveAreaDefinition()
		def.Photons = []float64{0.3, 0.3, 0.3}
		cfg := SelectorConfig{EffectiveArea: &EffectiveAreaConfig{File: "missing.yaml", EffectiveAreaDefinition: def}}

		require.NoError(t, InlineEffectiveArea(&cfg, dir))
		assert.Equal(t, []float64{0.3, 0.3, 0.3}, cfg.EffectiveArea.Photons)
	})

	t.Run("no effective area", func(t *testing.T) {
		var cfg SelectorConfig
		require.NoError(t, InlineEffectiveArea(&cfg, dir))
		assert.Nil(t, cfg.EffectiveArea)
	})

	t.Run("unknown key in file", func(t *testing.T) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte(effectiveAreaYAML+"muons: 1\n"), 0o600))
		cfg := SelectorConfig{EffectiveArea: &EffectiveAreaConfig{File: "bad.yaml"}}

		err := InlineEffectiveArea(&cfg, dir)
		var cfgErr *domain.ConfigError
		require.True(t, errors.As(err, &cfgErr))
		assert.Equal(t, "effective_area.file", cfgErr.ConfigKey)
	})
}
