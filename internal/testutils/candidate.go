package testutils

import (
	"sync"

	"github.com/ahrav/go-muonsel/internal/domain"
	"github.com/ahrav/go-muonsel/internal/ports"
)

var _ ports.Candidate = (*MockCandidate)(nil)

// MockCandidate is a map-backed ports.Candidate for criterion tests. It
// resolves record names strictly and remembers every name it was asked
// for, so tests can assert which records a criterion actually consulted.
type MockCandidate struct {
	PtValue    float64
	EtaValue   float64
	RhoValue   float64
	LevelValue domain.Level
	Records    domain.Records

	mu    sync.Mutex
	reads []string
}

// NewMockCandidate builds a reconstructed candidate from a plain record
// map. It panics on unsupported record types, which is a test bug.
func NewMockCandidate(pt, eta float64, records map[string]any) *MockCandidate {
	recs, err := domain.RecordsFrom(records)
	if err != nil {
		panic(err)
	}
	return &MockCandidate{PtValue: pt, EtaValue: eta, Records: recs}
}

// WithRho sets the event pileup density and returns the candidate.
func (m *MockCandidate) WithRho(rho float64) *MockCandidate {
	m.RhoValue = rho
	return m
}

func (m *MockCandidate) Pt() float64         { return m.PtValue }
func (m *MockCandidate) Eta() float64        { return m.EtaValue }
func (m *MockCandidate) Rho() float64        { return m.RhoValue }
func (m *MockCandidate) Level() domain.Level { return m.LevelValue }

func (m *MockCandidate) Bool(key domain.Key[bool]) (bool, error) { return read(m, key) }

func (m *MockCandidate) Int(key domain.Key[int32]) (int32, error) { return read(m, key) }

func (m *MockCandidate) Float(key domain.Key[float64]) (float64, error) { return read(m, key) }

// Reads returns the record names requested so far, in order.
func (m *MockCandidate) Reads() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.reads...)
}

func read[T domain.Value](m *MockCandidate, key domain.Key[T]) (T, error) {
	m.mu.Lock()
	m.reads = append(m.reads, key.Name())
	m.mu.Unlock()

	var zero T
	raw, ok := m.Records.Raw(key.Name())
	if !ok {
		return zero, ports.NewAttributeLookupError(key.Name(), "", domain.ErrKeyNotFound)
	}
	v, err := domain.Convert[T](raw)
	if err != nil {
		return zero, ports.NewAttributeLookupError(key.Name(), "", err)
	}
	return v, nil
}
