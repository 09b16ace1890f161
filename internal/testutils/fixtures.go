package testutils

import (
	"maps"

	"github.com/ahrav/go-muonsel/internal/domain"
)

// GoodMuonRecords returns a record set that passes every default
// identification working point and the default isolation cuts for a
// 50 GeV muon. Callers may modify the returned map.
func GoodMuonRecords() map[string]any {
	return map[string]any{
		// Reconstruction flags.
		"isGlobalMuon":         true,
		"isTrackerMuon":        true,
		"isPFMuon":             true,
		"isLooseMuon":          true,
		"TMOneStationTight":    true,
		"innerTrackHighPurity": true,

		// Precomputed working points.
		"isSoftMuon":   true,
		"isMediumMuon": true,
		"isTightMuon":  true,
		"isHighPtMuon": true,

		// Track quality.
		"NormChi2":              1.2,
		"chi2LocalPosition":     2.0,
		"trkKink":               5.0,
		"segComp":               0.6,
		"validFraction":         0.95,
		"TrackerLayersWithMeas": int32(12),
		"PixelLayersWithMeas":   int32(3),
		"VHitsMuonSys":          int32(20),
		"VHitsPixel":            int32(3),
		"NMatchedStations":      int32(3),
		"Dxy":                   0.01,
		"Dz":                    0.02,

		// Cocktail refit.
		"validCocktail":                 true,
		"ptCocktail":                    50.0,
		"ptErrorCocktail":               2.5,
		"VHitsPixelCocktail":            int32(3),
		"TrackerLayersWithMeasCocktail": int32(12),
		"DxyCocktail":                   0.01,
		"DzCocktail":                    0.02,

		// Isolation sums in GeV.
		"TrkIso":                 2.5,
		"ECALIso":                0.5,
		"HCALIso":                0.5,
		"GenIso":                 1.0,
		"PFIsoR04ChargedHadrons": 1.0,
		"PFIsoR04NeutralHadrons": 2.0,
		"PFIsoR04Photons":        0.5,
		"PFIsoR04PU":             4.0,
		"PFIsoR03ChargedHadrons": 0.8,
		"PFIsoR03NeutralHadrons": 1.5,
		"PFIsoR03Photons":        0.4,
		"PFIsoR03PU":             3.0,
	}
}

// GoodMuonRecordsWith returns GoodMuonRecords with overrides applied. A nil
// override value deletes the record.
func GoodMuonRecordsWith(overrides map[string]any) map[string]any {
	recs := GoodMuonRecords()
	for k, v := range overrides {
		if v == nil {
			delete(recs, k)
			continue
		}
		recs[k] = v
	}
	return recs
}

// GoodMuon returns a 50 GeV, eta 1.0 reconstructed muon carrying
// GoodMuonRecords.
func GoodMuon() domain.Muon {
	recs, err := domain.RecordsFrom(GoodMuonRecords())
	if err != nil {
		panic(err)
	}
	return domain.Muon{Pt: 50, Eta: 1.0, Level: domain.LevelReconstructed, Records: recs}
}

// MuonWith returns a muon with the given kinematics and records.
func MuonWith(pt, eta float64, records map[string]any) domain.Muon {
	recs, err := domain.RecordsFrom(maps.Clone(records))
	if err != nil {
		panic(err)
	}
	return domain.Muon{Pt: pt, Eta: eta, Level: domain.LevelReconstructed, Records: recs}
}

// TestEffectiveAreaDefinition returns a three-bin table with photon EA 0.1
// and neutral hadron EA 0.2 in every bin.
func TestEffectiveAreaDefinition() domain.EffectiveAreaDefinition {
	return domain.EffectiveAreaDefinition{
		EtaEdges:       []float64{0, 1.0, 1.479, 2.5},
		ChargedHadrons: []float64{0.0, 0.0, 0.0},
		NeutralHadrons: []float64{0.2, 0.2, 0.2},
		Photons:        []float64{0.1, 0.1, 0.1},
		AbsEta:         true,
	}
}
