package criteria

import "github.com/ahrav/go-muonsel/internal/ports"

var (
	_ ports.Criterion = (*Accept)(nil)
	_ ports.Criterion = (*MiniIso)(nil)
)

// Accept passes every candidate. It backs the None identification and
// isolation variants.
type Accept struct{}

// NewAccept returns the always-pass criterion.
func NewAccept() *Accept { return &Accept{} }

func (a *Accept) Name() string { return NameNone }

func (a *Accept) Pass(ports.Candidate) (bool, error) { return true, nil }

func (a *Accept) Requires() []string { return nil }

func (a *Accept) Validate() error { return nil }

// MiniIso is the mini-isolation variant. The cone-size-scaled isolation is
// not implemented and the variant passes every candidate; it is kept as its
// own type so a selection naming it is reported as such rather than being
// treated as None.
type MiniIso struct{}

// NewMiniIso returns the placeholder mini-isolation criterion.
func NewMiniIso() *MiniIso { return &MiniIso{} }

func (m *MiniIso) Name() string { return NameMiniIso }

func (m *MiniIso) Pass(ports.Candidate) (bool, error) { return true, nil }

func (m *MiniIso) Requires() []string { return nil }

func (m *MiniIso) Validate() error { return nil }

// Implemented reports false; callers use it to warn when selecting Mini.
func (m *MiniIso) Implemented() bool { return false }
