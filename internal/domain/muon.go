package domain

import (
	"fmt"
	"math"
)

// Level distinguishes reconstructed particles from generator-level truth
// particles. Generator particles carry no identification records and are
// judged on kinematics and generator isolation only.
type Level int

const (
	// LevelReconstructed is a particle produced by event reconstruction.
	LevelReconstructed Level = iota
	// LevelGenerated is a generator-level (truth) particle.
	LevelGenerated
)

// String implements fmt.Stringer.
func (l Level) String() string {
	switch l {
	case LevelReconstructed:
		return "rec"
	case LevelGenerated:
		return "gen"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}

// ParseLevel converts "rec"/"gen" (and the long forms) into a Level. The
// empty string means reconstructed.
func ParseLevel(s string) (Level, error) {
	switch s {
	case "", "rec", "reco", "reconstructed":
		return LevelReconstructed, nil
	case "gen", "generated", "generator":
		return LevelGenerated, nil
	default:
		return 0, fmt.Errorf("%w: unknown particle level %q", ErrInvalidConfiguration, s)
	}
}

// Muon is a read-only snapshot of one reconstructed or generated muon.
// The selection engine never mutates it.
type Muon struct {
	// Pt is the transverse momentum in GeV. Expected to be positive.
	Pt float64 `json:"pt"`

	// Eta is the pseudorapidity.
	Eta float64 `json:"eta"`

	// Level marks reconstructed versus generator-level particles.
	Level Level `json:"-"`

	// Records holds the named per-particle attributes.
	Records Records `json:"-"`
}

// AbsEta returns |eta|.
func (m Muon) AbsEta() float64 { return math.Abs(m.Eta) }

// Record returns the raw value stored under name.
func (m Muon) Record(name string) (any, bool) { return m.Records.Raw(name) }

// Input couples a particle with the event-level quantities needed to judge
// it. Rho is the event pileup energy density.
type Input struct {
	Muon Muon
	Rho  float64
}
