package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/ahrav/go-muonsel/internal/testutils"
)

func newSampleCmd() *cobra.Command {
	var (
		size   int
		seed   int64
		output string
	)

	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Write a synthetic JSON-lines muon sample",
		Long: `Generates plausible but unphysical muons for exercising a selector. Some
particles are generator-level, and some carry poor track quality, large
isolation sums or legacy record names.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if seed == 0 {
				seed = time.Now().UnixNano()
			}
			particles, stats := testutils.GenerateMuonSample(size, seed)

			w := cmd.OutOrStdout()
			if output != "" && output != "-" {
				f, err := os.Create(filepath.Clean(output))
				if err != nil {
					return fmt.Errorf("failed to create output: %w", err)
				}
				defer f.Close()
				w = f
			}
			if err := testutils.WriteMuonSample(w, particles); err != nil {
				return err
			}

			fmt.Fprintf(cmd.ErrOrStderr(),
				"generated %d muons (seed %d): %d generator-level, %d bad quality, %d non-isolated, %d legacy names, %d outside 20 GeV / 2.4\n",
				stats.Total, seed, stats.Generated, stats.BadQuality, stats.NonIsolated, stats.LegacyNaming, stats.OutOfWindow)
			return nil
		},
	}

	cmd.Flags().IntVarP(&size, "size", "n", 500, "number of muons")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed (default time-based)")
	cmd.Flags().StringVarP(&output, "output", "o", "-", "output file, or - for stdout")
	return cmd
}
