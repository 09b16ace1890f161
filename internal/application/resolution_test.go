package application

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-muonsel/internal/domain"
	"github.com/ahrav/go-muonsel/internal/ports"
	"github.com/ahrav/go-muonsel/internal/testutils"
)

func TestStrictResolver(t *testing.T) {
	m := testutils.MuonWith(50, 1.0, map[string]any{"NormChi2": 1.5, "normalizedChi2": 9.0})

	v, resolved, err := StrictResolver{}.Resolve(m, "NormChi2")
	require.NoError(t, err)
	assert.Equal(t, 1.5, v)
	assert.Equal(t, "NormChi2", resolved)

	_, _, err = StrictResolver{}.Resolve(m, "Dxy")
	var lookupErr *ports.AttributeLookupError
	require.True(t, errors.As(err, &lookupErr))
	assert.Equal(t, "Dxy", lookupErr.Record)
	assert.ErrorIs(t, err, domain.ErrKeyNotFound)
	assert.Equal(t, ResolutionStrict, StrictResolver{}.Mode())
}

func TestLegacyFallbackResolver(t *testing.T) {
	tests := []struct {
		name         string
		records      map[string]any
		lookup       string
		want         any
		wantResolved string
		wantAlt      string
		wantErr      bool
	}{
		{
			name:         "canonical name wins",
			records:      map[string]any{"NormChi2": 1.5, "normalizedChi2": 9.0},
			lookup:       "NormChi2",
			want:         1.5,
			wantResolved: "NormChi2",
		},
		{
			name:         "falls back to legacy name",
			records:      map[string]any{"normalizedChi2": 9.0},
			lookup:       "NormChi2",
			want:         9.0,
			wantResolved: "normalizedChi2",
		},
		{
			name:    "both names missing",
			records: map[string]any{},
			lookup:  "NormChi2",
			wantAlt: "normalizedChi2",
			wantErr: true,
		},
		{
			name:    "name without remap entry",
			records: map[string]any{"trkIso": 1.0},
			lookup:  "TrkIso",
			wantErr: true,
		},
	}

	r := NewLegacyFallbackResolver(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := testutils.MuonWith(50, 1.0, tt.records)
			v, resolved, err := r.Resolve(m, tt.lookup)
			if tt.wantErr {
				var lookupErr *ports.AttributeLookupError
				require.True(t, errors.As(err, &lookupErr))
				assert.Equal(t, tt.lookup, lookupErr.Record)
				assert.Equal(t, tt.wantAlt, lookupErr.Alternate)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, v)
			assert.Equal(t, tt.wantResolved, resolved)
		})
	}
}

func TestLegacyFallbackResolver_CopiesRemap(t *testing.T) {
	remap := map[string]string{"TrkIso": "trackIso"}
	r := NewLegacyFallbackResolver(remap)
	remap["TrkIso"] = "changed"

	assert.Equal(t, map[string]string{"TrkIso": "trackIso"}, r.Remap())
	assert.Equal(t, ResolutionLegacy, r.Mode())

	got := r.Remap()
	got["Dz"] = "dz"
	assert.NotContains(t, r.Remap(), "Dz")
}

func TestNewCandidate(t *testing.T) {
	in := domain.Input{
		Muon: testutils.MuonWith(42, -1.3, map[string]any{
			"isGlobalMuon":   true,
			"VHitsMuonSys":   int32(7),
			"normalizedChi2": 3.0,
			"Dxy":            int32(1),
		}),
		Rho: 12.5,
	}

	c := NewCandidate(in, NewLegacyFallbackResolver(nil))
	assert.Equal(t, 42.0, c.Pt())
	assert.Equal(t, -1.3, c.Eta())
	assert.Equal(t, 12.5, c.Rho())
	assert.Equal(t, domain.LevelReconstructed, c.Level())

	b, err := c.Bool(domain.KeyIsGlobalMuon)
	require.NoError(t, err)
	assert.True(t, b)

	n, err := c.Int(domain.KeyValidMuonHits)
	require.NoError(t, err)
	assert.Equal(t, int32(7), n)

	chi2, err := c.Float(domain.KeyNormalizedChi2)
	require.NoError(t, err)
	assert.Equal(t, 3.0, chi2)

	// Counters widen to doubles.
	dxy, err := c.Float(domain.KeyDxy)
	require.NoError(t, err)
	assert.Equal(t, 1.0, dxy)

	_, err = c.Bool(domain.NewKey[bool]("VHitsMuonSys"))
	assert.ErrorIs(t, err, domain.ErrTypeMismatch)
}

func TestNewCandidate_NilResolverIsStrict(t *testing.T) {
	in := domain.Input{Muon: testutils.MuonWith(42, 0, map[string]any{"normalizedChi2": 3.0})}

	_, err := NewCandidate(in, nil).Float(domain.KeyNormalizedChi2)
	assert.ErrorIs(t, err, domain.ErrKeyNotFound)
}
