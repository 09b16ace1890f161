package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-muonsel/internal/testutils"
)

const selectorYAML = `
version: "1.0.0"
kinematics:
  pt_min: 20
  eta_max: 2.4
identification:
  type: TightID
isolation:
  type: Tracker
  max: 0.15
`

const keyedYAML = `
Muon:
  pt.min: 20
  eta.max: 2.4
  ID.Type: TightID
  Iso.Type: Tracker
  Iso.max: 0.15
`

// execute runs the root command with args and returns stdout and stderr.
func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// particlesJSONL returns three particles: a passing muon, a non-isolated
// one, and a soft one.
func particlesJSONL(t *testing.T) string {
	t.Helper()
	lines := []testutils.SampleParticle{
		{Pt: 50, Eta: 1.0, Level: "rec", Records: testutils.GoodMuonRecords()},
		{Pt: 50, Eta: 1.0, Level: "rec", Records: testutils.GoodMuonRecordsWith(map[string]any{"TrkIso": 25.0})},
		{Pt: 8, Eta: 1.0, Level: "rec", Records: testutils.GoodMuonRecordsWith(map[string]any{"TrkIso": 0.1})},
	}
	var buf bytes.Buffer
	buf.WriteString("# comment lines are skipped\n\n")
	require.NoError(t, testutils.WriteMuonSample(&buf, lines))
	return buf.String()
}

func TestEvaluate_DecisionLines(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "selector.yaml", selectorYAML)
	input := writeFile(t, dir, "muons.jsonl", particlesJSONL(t))

	stdout, _, err := execute(t, "", "evaluate", "--config", cfg, "--input", input, "--log-level", "error")
	require.NoError(t, err)

	var codes []int
	sc := bufio.NewScanner(strings.NewReader(stdout))
	for sc.Scan() {
		var line struct {
			Index   int    `json:"index"`
			Outcome string `json:"outcome"`
			Code    int    `json:"code"`
		}
		require.NoError(t, json.Unmarshal(sc.Bytes(), &line))
		assert.Equal(t, len(codes), line.Index)
		codes = append(codes, line.Code)
	}
	assert.Equal(t, []int{0, 1, 3}, codes)
}

func TestEvaluate_SummaryFromStdin(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "selector.yaml", selectorYAML)
	metrics := filepath.Join(dir, "metrics.prom")

	stdout, stderr, err := execute(t, particlesJSONL(t),
		"evaluate", "-c", cfg, "--summary", "--workers", "2", "--metrics", metrics, "--log-format", "json")
	require.NoError(t, err)

	var report summaryReport
	require.NoError(t, json.Unmarshal([]byte(stdout), &report))
	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, "TightID", report.Identification)
	assert.Equal(t, 3, report.Total)
	assert.Equal(t, map[string]int{"pass": 1, "fail_iso": 1, "fail_kinematics": 1}, report.Counts)
	assert.Contains(t, stderr, `"msg":"evaluation finished"`)

	data, err := os.ReadFile(metrics)
	require.NoError(t, err)
	assert.Contains(t, string(data), `muon_selection_outcomes_total{code="pass",identification="TightID",isolation="Tracker"} 1`)
}

func TestEvaluate_KeyedConfig(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "muon.yaml", keyedYAML)

	stdout, _, err := execute(t, particlesJSONL(t), "evaluate", "--keyed", "-c", cfg, "--summary")
	require.NoError(t, err)
	assert.Contains(t, stdout, `"pass": 1`)
}

func TestEvaluate_Errors(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "selector.yaml", selectorYAML)

	tests := []struct {
		name    string
		stdin   string
		args    []string
		wantErr string
	}{
		{
			name:    "missing config flag",
			args:    []string{"evaluate"},
			wantErr: "--config is required",
		},
		{
			name:    "bad particle line",
			stdin:   `{"pt": 50, "eta": 1.0, "colour": "red"}`,
			args:    []string{"evaluate", "-c", cfg},
			wantErr: "line 1",
		},
		{
			name:    "missing record",
			stdin:   `{"pt": 50, "eta": 1.0, "records": {"isGlobalMuon": true}}`,
			args:    []string{"evaluate", "-c", cfg},
			wantErr: "muon 0",
		},
		{
			name:    "bad log level",
			args:    []string{"evaluate", "-c", cfg, "--log-level", "loud"},
			wantErr: "loud",
		},
		{
			name:    "missing input file",
			args:    []string{"evaluate", "-c", cfg, "-i", filepath.Join(dir, "nope.jsonl")},
			wantErr: "failed to open input",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(t, tt.stdin, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "selector.yaml", selectorYAML)
	bad := writeFile(t, dir, "bad.yaml", strings.ReplaceAll(selectorYAML, "TightID", "TigthID"))

	stdout, _, err := execute(t, "", "validate", "-c", good)
	require.NoError(t, err)
	assert.Contains(t, stdout, "valid")
	assert.Contains(t, stdout, "identification: TightID")
	assert.Contains(t, stdout, "TrkIso")

	_, _, err = execute(t, "", "validate", "-c", bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Did you mean 'TightID'?")
}

func TestValidate_DescribesEffectiveArea(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "selector.yaml", `
version: "1.0.0"
kinematics:
  pt_min: 20
  eta_max: 2.4
identification:
  type: TightID
isolation:
  type: PFCombined03
  max: 0.15
  parameters:
    use_rho_corr: true
effective_area:
  eta_edges: [0, 1.0, 2.5]
  charged_hadrons: [0, 0]
  neutral_hadrons: [0.2, 0.3]
  photons: [0.1, 0.15]
`)

	stdout, _, err := execute(t, "", "validate", "-c", cfg)
	require.NoError(t, err)
	assert.Contains(t, stdout, "isolation:      PF (max 0.15, invert false)")
	assert.Contains(t, stdout, "effective area: 2 bins, edges [0 1 2.5]")
	assert.Contains(t, stdout, "neutral_hadron: [0.2 0.3]")
	assert.Contains(t, stdout, "photon:         [0.1 0.15]")
	assert.Contains(t, stdout, "PFIsoR03Photons")
}

func TestVariants(t *testing.T) {
	stdout, _, err := execute(t, "", "variants")
	require.NoError(t, err)
	assert.Contains(t, stdout, "identification:\n  SoftID\n")
	assert.Contains(t, stdout, "  CombinedID\n")
	assert.Contains(t, stdout, "isolation:\n  Tracker\n")
}

func TestSample(t *testing.T) {
	stdout, stderr, err := execute(t, "", "sample", "-n", "10", "--seed", "3")
	require.NoError(t, err)
	assert.Equal(t, 10, strings.Count(stdout, "\n"))
	assert.Contains(t, stderr, "generated 10 muons (seed 3)")

	// The generated sample is valid evaluate input.
	dir := t.TempDir()
	legacy := strings.ReplaceAll(selectorYAML, "Tracker", "None") + "attribute_resolution:\n  mode: legacy\n"
	cfg := writeFile(t, dir, "selector.yaml", legacy)
	summary, _, err := execute(t, stdout, "evaluate", "-c", cfg, "--summary")
	require.NoError(t, err)
	assert.Contains(t, summary, `"total": 10`)
}
