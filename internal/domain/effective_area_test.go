package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEffectiveAreaDefinition() EffectiveAreaDefinition {
	return EffectiveAreaDefinition{
		EtaEdges:       []float64{0, 1.0, 1.5, 2.5},
		ChargedHadrons: []float64{0.01, 0.02, 0.03},
		NeutralHadrons: []float64{0.2, 0.4, 0.6},
		Photons:        []float64{0.1, 0.3, 0.5},
	}
}

func TestNewEffectiveAreaTable(t *testing.T) {
	t.Run("valid definition", func(t *testing.T) {
		table, err := NewEffectiveAreaTable(testEffectiveAreaDefinition())
		require.NoError(t, err)
		assert.NotNil(t, table)
	})

	t.Run("malformed category table names the category", func(t *testing.T) {
		def := testEffectiveAreaDefinition()
		def.Photons = []float64{0.1}

		_, err := NewEffectiveAreaTable(def)
		require.Error(t, err)

		var cfgErr *ConfigError
		require.True(t, errors.As(err, &cfgErr))
		assert.Equal(t, "effective_area.photons.values", cfgErr.ConfigKey)
		assert.ErrorIs(t, err, ErrInvalidBinning)
	})

	t.Run("bad shared edges", func(t *testing.T) {
		def := testEffectiveAreaDefinition()
		def.EtaEdges = []float64{0, 2, 1, 3}

		_, err := NewEffectiveAreaTable(def)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "effective_area.charged_hadrons.edges")
	})
}

// TestEffectiveAreaTable_CategoriesAreIndependent checks that each category
// reads only its own value sequence.
func TestEffectiveAreaTable_CategoriesAreIndependent(t *testing.T) {
	table, err := NewEffectiveAreaTable(testEffectiveAreaDefinition())
	require.NoError(t, err)

	tests := []struct {
		eta      float64
		category Category
		want     float64
	}{
		{0.5, ChargedHadron, 0.01},
		{0.5, NeutralHadron, 0.2},
		{0.5, Photon, 0.1},
		{1.2, ChargedHadron, 0.02},
		{1.2, NeutralHadron, 0.4},
		{1.2, Photon, 0.3},
		{2.4, NeutralHadron, 0.6},
		{2.4, Photon, 0.5},
		{1.0, Photon, 0.3},
		{3.0, Photon, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.category.String(), func(t *testing.T) {
			got, err := table.EffectiveArea(tt.eta, tt.category)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEffectiveAreaTable_UnsupportedCategory(t *testing.T) {
	table, err := NewEffectiveAreaTable(testEffectiveAreaDefinition())
	require.NoError(t, err)

	for _, c := range []Category{-1, 3, 42} {
		got, err := table.EffectiveArea(0.5, c)
		require.Error(t, err)
		assert.Zero(t, got, "unsupported category must not return a default")
		assert.ErrorIs(t, err, ErrUnsupportedCategory)

		var catErr *UnsupportedCategoryError
		require.True(t, errors.As(err, &catErr))
		assert.Equal(t, c, catErr.Category)
	}
}

func TestEffectiveAreaTable_Mapping(t *testing.T) {
	def := testEffectiveAreaDefinition()
	table, err := NewEffectiveAreaTable(def)
	require.NoError(t, err)

	want := map[Category][]float64{
		ChargedHadron: def.ChargedHadrons,
		NeutralHadron: def.NeutralHadrons,
		Photon:        def.Photons,
	}
	for category, values := range want {
		bm, err := table.Mapping(category)
		require.NoError(t, err, category.String())
		assert.Equal(t, def.EtaEdges, bm.Edges())
		assert.Equal(t, values, bm.Values())
		assert.Equal(t, 3, bm.Bins())
	}

	_, err = table.Mapping(Category(7))
	assert.ErrorIs(t, err, ErrUnsupportedCategory)
}

func TestEffectiveAreaTable_AbsEta(t *testing.T) {
	def := testEffectiveAreaDefinition()

	signed, err := NewEffectiveAreaTable(def)
	require.NoError(t, err)
	got, err := signed.EffectiveArea(-1.2, Photon)
	require.NoError(t, err)
	assert.Equal(t, 0.1, got, "without abs_eta a negative coordinate clamps to the first region")

	def.AbsEta = true
	abs, err := NewEffectiveAreaTable(def)
	require.NoError(t, err)
	got, err = abs.EffectiveArea(-1.2, Photon)
	require.NoError(t, err)
	assert.Equal(t, 0.3, got)
}

func TestCategory_String(t *testing.T) {
	assert.Equal(t, "charged_hadron", ChargedHadron.String())
	assert.Equal(t, "neutral_hadron", NeutralHadron.String())
	assert.Equal(t, "photon", Photon.String())
	assert.Equal(t, "category(7)", Category(7).String())
}
