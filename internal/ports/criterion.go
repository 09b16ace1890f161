// Package ports defines the core interfaces that form the contract between
// the domain/application layers and the infrastructure layer.
// These interfaces enable dependency inversion and make the system testable.
package ports

import (
	"github.com/ahrav/go-muonsel/internal/domain"
)

// Candidate is the typed, read-only view of one particle handed to a
// criterion. Record reads go through typed keys so each criterion's
// dependencies are explicit; name resolution (including any legacy
// fallback) is decided by whoever builds the Candidate, never by the
// criterion itself.
type Candidate interface {
	// Pt returns the transverse momentum.
	Pt() float64

	// Eta returns the signed pseudorapidity.
	Eta() float64

	// Rho returns the event pileup energy density.
	Rho() float64

	// Level reports whether the particle is reconstructed or generated.
	Level() domain.Level

	// Bool reads a boolean record.
	Bool(key domain.Key[bool]) (bool, error)

	// Int reads a 32-bit counter record.
	Int(key domain.Key[int32]) (int32, error)

	// Float reads a double record. Counter records are widened.
	Float(key domain.Key[float64]) (float64, error)
}

// Criterion is one identification or isolation variant. A criterion owns
// its immutable thresholds and judges a single candidate at a time.
// Implementations must be stateless and safe for concurrent use.
type Criterion interface {
	// Name returns the variant name, e.g. "TightID" or "PF".
	Name() string

	// Pass reports whether the candidate satisfies the criterion.
	// Missing or mistyped records are returned as errors, never as a
	// silent failure of the cut.
	Pass(c Candidate) (bool, error)

	// Requires lists every record name the criterion may read with its
	// current configuration.
	Requires() []string

	// Validate checks that the criterion's configuration is usable.
	Validate() error
}

// AttributeResolver decides how a record name is looked up on a particle.
// A resolver is bound once at engine construction and never changes
// afterwards, so resolution is identical for every particle in a run.
type AttributeResolver interface {
	// Resolve returns the stored value for name and the record name it
	// was actually found under. A record that cannot be resolved yields an
	// *AttributeLookupError.
	Resolve(m domain.Muon, name string) (value any, resolved string, err error)

	// Mode names the strategy, for logging.
	Mode() string
}
