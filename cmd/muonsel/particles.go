package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/ahrav/go-muonsel/internal/domain"
)

// maxLineSize bounds a single JSON-lines particle record.
const maxLineSize = 4 << 20

// particleLine is the JSON-lines input format.
type particleLine struct {
	Pt      float64        `json:"pt"`
	Eta     float64        `json:"eta"`
	Rho     float64        `json:"rho"`
	Level   string         `json:"level"`
	Records map[string]any `json:"records"`
}

// readParticles decodes one particle per line. Blank lines and lines
// starting with '#' are skipped. Integral record values become counters.
func readParticles(r io.Reader) ([]domain.Input, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var inputs []domain.Input
	for line := 1; sc.Scan(); line++ {
		text := bytes.TrimSpace(sc.Bytes())
		if len(text) == 0 || text[0] == '#' {
			continue
		}

		dec := json.NewDecoder(bytes.NewReader(text))
		dec.UseNumber()
		dec.DisallowUnknownFields()

		var p particleLine
		if err := dec.Decode(&p); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		level, err := domain.ParseLevel(p.Level)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		recs, err := domain.RecordsFrom(p.Records)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		inputs = append(inputs, domain.Input{
			Muon: domain.Muon{Pt: p.Pt, Eta: p.Eta, Level: level, Records: recs},
			Rho:  p.Rho,
		})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read particles: %w", err)
	}
	return inputs, nil
}
