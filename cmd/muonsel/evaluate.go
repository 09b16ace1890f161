package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	"github.com/ahrav/go-muonsel/infrastructure/middleware"
	"github.com/ahrav/go-muonsel/internal/application"
	"github.com/ahrav/go-muonsel/internal/domain"
)

type evaluateOptions struct {
	input       string
	summary     bool
	workers     int
	metricsPath string
}

func newEvaluateCmd(root *rootOptions) *cobra.Command {
	opts := &evaluateOptions{}

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Judge every muon in a JSON-lines file",
		Long: `Reads one particle per line:

  {"pt": 42.1, "eta": -0.7, "rho": 18.3, "level": "rec", "records": {...}}

and writes one decision per line, or a histogram of outcome codes with
--summary. The first particle that cannot be judged aborts the run.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runEvaluate(cmd.Context(), root, opts, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&opts.input, "input", "i", "-", "particle file, or - for stdin")
	cmd.Flags().BoolVar(&opts.summary, "summary", false, "print outcome counts instead of per-particle decisions")
	cmd.Flags().IntVarP(&opts.workers, "workers", "w", 0, "concurrent evaluations (default 2 x CPUs)")
	cmd.Flags().StringVar(&opts.metricsPath, "metrics", "", "write Prometheus text metrics to this file after the run")
	return cmd
}

// decisionLine is one line of per-particle output.
type decisionLine struct {
	Index   int    `json:"index"`
	Outcome string `json:"outcome"`
	domain.Decision
}

// summaryReport is the --summary output.
type summaryReport struct {
	RunID          string         `json:"run_id"`
	Identification string         `json:"identification"`
	Isolation      string         `json:"isolation"`
	Total          int            `json:"total"`
	Counts         map[string]int `json:"counts"`
}

func runEvaluate(ctx context.Context, root *rootOptions, opts *evaluateOptions, stdin io.Reader, out io.Writer) error {
	reg := prometheus.NewRegistry()
	metrics, err := middleware.NewPrometheusMetrics(reg)
	if err != nil {
		return err
	}
	engineOpts := []application.Option{application.WithMetrics(metrics)}
	if opts.workers > 0 {
		engineOpts = append(engineOpts, application.WithConcurrency(opts.workers))
	}

	engine, err := root.buildEngine(ctx, engineOpts...)
	if err != nil {
		return err
	}

	in := stdin
	if opts.input != "" && opts.input != "-" {
		f, err := os.Open(filepath.Clean(opts.input))
		if err != nil {
			return fmt.Errorf("failed to open input: %w", err)
		}
		defer f.Close()
		in = f
	}

	inputs, err := readParticles(in)
	if err != nil {
		return err
	}

	runID := uuid.New().String()
	start := time.Now()
	decisions, err := engine.EvaluateBatch(ctx, inputs)
	if err != nil {
		return err
	}

	// Decisions stream out as they are tallied; --summary only tallies.
	enc := json.NewEncoder(out)
	var summary application.Summary
	for i, d := range decisions {
		summary.Add(d)
		if opts.summary {
			continue
		}
		if err := enc.Encode(decisionLine{Index: i, Outcome: d.Code.String(), Decision: d}); err != nil {
			return fmt.Errorf("write decision %d: %w", i, err)
		}
	}
	root.logger.Info("evaluation finished",
		"run_id", runID,
		"particles", summary.Total,
		"passed", summary.Counts[domain.OutcomePass],
		"elapsed", time.Since(start),
	)

	if opts.metricsPath != "" {
		if err := writeMetrics(reg, opts.metricsPath); err != nil {
			return err
		}
	}

	if opts.summary {
		id, iso := engine.Variants()
		report := summaryReport{
			RunID:          runID,
			Identification: string(id),
			Isolation:      string(iso),
			Total:          summary.Total,
			Counts:         make(map[string]int, len(summary.Counts)),
		}
		for code, n := range summary.Counts {
			report.Counts[code.String()] = n
		}
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	return nil
}

// writeMetrics dumps every gathered family in the Prometheus text format.
func writeMetrics(reg *prometheus.Registry, path string) error {
	families, err := reg.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}

	f, err := os.Create(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("failed to create metrics file: %w", err)
	}
	defer f.Close()

	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(f, mf); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}
	return f.Close()
}
