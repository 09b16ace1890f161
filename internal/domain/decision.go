package domain

// Outcome is the compact status code produced for every particle. Only five
// values exist; see Encode for the mapping.
type Outcome int

// Outcome codes. Downstream consumers depend on these exact values.
const (
	// OutcomePass means kinematics, identification, and isolation all pass.
	OutcomePass Outcome = 0
	// OutcomeFailIso means kinematics and identification pass but
	// isolation fails.
	OutcomeFailIso Outcome = 1
	// OutcomeFailID means kinematics and isolation pass but
	// identification fails.
	OutcomeFailID Outcome = 2
	// OutcomeFailKinematics means identification and isolation pass but
	// kinematics fails.
	OutcomeFailKinematics Outcome = 3
	// OutcomeFailMultiple covers every other combination.
	OutcomeFailMultiple Outcome = 4
)

// String implements fmt.Stringer.
func (o Outcome) String() string {
	switch o {
	case OutcomePass:
		return "pass"
	case OutcomeFailIso:
		return "fail_iso"
	case OutcomeFailID:
		return "fail_id"
	case OutcomeFailKinematics:
		return "fail_kinematics"
	default:
		return "fail_multiple"
	}
}

// Encode folds the three sub-results into an Outcome using a fixed
// priority table. The mapping is intentionally lossy: of the eight truth
// combinations only those with at most one failure are distinguished, and
// every combination with two or more failures collapses into
// OutcomeFailMultiple.
//
//	kin id  iso  code
//	 T  T   T    0
//	 T  T   F    1
//	 T  F   T    2
//	 F  T   T    3
//	 otherwise   4
func Encode(kinematics, identification, isolation bool) Outcome {
	switch {
	case kinematics && identification && isolation:
		return OutcomePass
	case kinematics && identification && !isolation:
		return OutcomeFailIso
	case kinematics && !identification && isolation:
		return OutcomeFailID
	case !kinematics && identification && isolation:
		return OutcomeFailKinematics
	default:
		return OutcomeFailMultiple
	}
}

// Decision is the full result of judging one particle.
type Decision struct {
	// Kinematics reports whether the pt and eta requirements passed.
	Kinematics bool `json:"kinematics"`

	// Identification reports whether the configured ID variant passed.
	Identification bool `json:"identification"`

	// Isolation reports the isolation result after optional inversion.
	Isolation bool `json:"isolation"`

	// Code is the encoded outcome.
	Code Outcome `json:"code"`
}

// NewDecision builds a Decision and fills in its code.
func NewDecision(kinematics, identification, isolation bool) Decision {
	return Decision{
		Kinematics:     kinematics,
		Identification: identification,
		Isolation:      isolation,
		Code:           Encode(kinematics, identification, isolation),
	}
}

// Passed reports whether the particle passed every requirement.
func (d Decision) Passed() bool { return d.Code == OutcomePass }
