// Package testutils provides fixtures, mocks and synthetic data generators
// for the project's test suites and the sample command. It is not part of
// the public API.
package testutils

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"math/rand"
	"time"
)

// SampleParticle is one line of a JSON-lines particle file.
type SampleParticle struct {
	Pt      float64        `json:"pt"`
	Eta     float64        `json:"eta"`
	Rho     float64        `json:"rho"`
	Level   string         `json:"level"`
	Records map[string]any `json:"records"`
}

// SampleStatistics describes a generated sample.
type SampleStatistics struct {
	Total        int `json:"total"`
	Generated    int `json:"generated"`
	BadQuality   int `json:"bad_quality"`
	NonIsolated  int `json:"non_isolated"`
	OutOfWindow  int `json:"out_of_window"`
	LegacyNaming int `json:"legacy_naming"`
}

// Fractions of the sample that receive each degradation.
const (
	generatedFraction   = 0.10
	badQualityFraction  = 0.15
	nonIsolatedFraction = 0.20
	legacyFraction      = 0.05
)

// GenerateMuonSample creates size synthetic muons. The seed controls
// randomization; use a fixed value for reproducible tests. Roughly 10% are
// generator-level, and the reconstructed rest are degraded at random so
// every outcome code appears in a large enough sample.
// NOTE: the numbers are plausible, not physical.
func GenerateMuonSample(size int, seed int64) ([]SampleParticle, SampleStatistics) {
	rng := rand.New(rand.NewSource(seed))

	particles := make([]SampleParticle, 0, size)
	stats := SampleStatistics{Total: size}

	for range size {
		p := SampleParticle{
			Pt:    math.Round((3+rng.ExpFloat64()*35)*100) / 100,
			Eta:   math.Round((rng.Float64()*5.6-2.8)*1000) / 1000,
			Rho:   math.Round((5+rng.Float64()*35)*100) / 100,
			Level: "rec",
		}
		if p.Pt < 20 || math.Abs(p.Eta) > 2.4 {
			stats.OutOfWindow++
		}

		if rng.Float64() < generatedFraction {
			p.Level = "gen"
			p.Records = map[string]any{"GenIso": math.Round(rng.ExpFloat64()*3*100) / 100}
			stats.Generated++
			particles = append(particles, p)
			continue
		}

		recs := GoodMuonRecords()
		recs["ptCocktail"] = p.Pt
		recs["ptErrorCocktail"] = p.Pt * 0.05

		if rng.Float64() < badQualityFraction {
			degradeQuality(rng, recs)
			stats.BadQuality++
		}
		if rng.Float64() < nonIsolatedFraction {
			scaleIsolation(recs, 5+rng.Float64()*20)
			stats.NonIsolated++
		}
		if rng.Float64() < legacyFraction {
			renameLegacy(recs)
			stats.LegacyNaming++
		}

		p.Records = recs
		particles = append(particles, p)
	}

	return particles, stats
}

// GenerateMuonSampleDefault creates a sample with a time-based seed.
func GenerateMuonSampleDefault(size int) ([]SampleParticle, SampleStatistics) {
	return GenerateMuonSample(size, time.Now().UnixNano())
}

func degradeQuality(rng *rand.Rand, recs map[string]any) {
	switch rng.Intn(3) {
	case 0:
		recs["NormChi2"] = 15.0
		recs["isGlobalMuon"] = false
	case 1:
		recs["VHitsMuonSys"] = int32(0)
		recs["NMatchedStations"] = int32(1)
	default:
		recs["Dxy"] = 0.5
		recs["Dz"] = 1.2
	}
	for _, flag := range []string{"isSoftMuon", "isMediumMuon", "isTightMuon", "isHighPtMuon", "validCocktail"} {
		recs[flag] = false
	}
}

func scaleIsolation(recs map[string]any, factor float64) {
	for _, name := range []string{
		"TrkIso", "ECALIso", "HCALIso",
		"PFIsoR04ChargedHadrons", "PFIsoR04NeutralHadrons", "PFIsoR04Photons",
		"PFIsoR03ChargedHadrons", "PFIsoR03NeutralHadrons", "PFIsoR03Photons",
	} {
		recs[name] = recs[name].(float64) * factor
	}
}

// renameLegacy moves NormChi2 to its old reconstruction name.
func renameLegacy(recs map[string]any) {
	recs["normalizedChi2"] = recs["NormChi2"]
	delete(recs, "NormChi2")
}

// WriteMuonSample writes particles as JSON lines.
func WriteMuonSample(w io.Writer, particles []SampleParticle) error {
	enc := json.NewEncoder(w)
	for i, p := range particles {
		if err := enc.Encode(p); err != nil {
			return fmt.Errorf("particle %d: %w", i, err)
		}
	}
	return nil
}
