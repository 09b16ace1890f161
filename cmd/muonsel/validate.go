package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ahrav/go-muonsel/infrastructure/watch"
	"github.com/ahrav/go-muonsel/internal/domain"
)

type validateOptions struct {
	watch    bool
	debounce time.Duration
}

func newValidateCmd(root *rootOptions) *cobra.Command {
	opts := &validateOptions{}

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Build the selector and report configuration errors",
		Long: `Parses, validates and builds the selector named by --config. On success it
prints the chosen variants and every record the policy reads.

With --watch the selector is validated again each time the file changes,
until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runValidate(cmd.Context(), root, opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().BoolVar(&opts.watch, "watch", false, "re-validate whenever the file changes")
	cmd.Flags().DurationVar(&opts.debounce, "debounce", watch.DefaultDebounce, "quiet period before re-validating")
	return cmd
}

func runValidate(ctx context.Context, root *rootOptions, opts *validateOptions, out io.Writer) error {
	check := func() error { return validateOnce(ctx, root, out) }

	if !opts.watch {
		return check()
	}

	if err := check(); err != nil {
		fmt.Fprintf(out, "%s: invalid: %v\n", root.configPath, err)
	}
	w := watch.NewFileWatcher(root.configPath, opts.debounce, root.logger)
	return w.Run(ctx, func() error {
		if err := check(); err != nil {
			fmt.Fprintf(out, "%s: invalid: %v\n", root.configPath, err)
			return err
		}
		return nil
	})
}

func validateOnce(ctx context.Context, root *rootOptions, out io.Writer) error {
	engine, err := root.buildEngine(ctx)
	if err != nil {
		return err
	}

	id, iso := engine.Variants()
	cfg := engine.Config()
	fmt.Fprintf(out, "%s: valid\n", root.configPath)
	fmt.Fprintf(out, "  identification: %s\n", id)
	fmt.Fprintf(out, "  isolation:      %s (max %g, invert %t)\n", iso, cfg.Isolation.Max, cfg.Isolation.Invert)
	fmt.Fprintf(out, "  kinematics:     pt_min %g, eta_max %g\n", cfg.Kinematics.PtMin, cfg.Kinematics.EtaMax)
	fmt.Fprintf(out, "  resolution:     %s\n", engine.Resolver().Mode())
	fmt.Fprintf(out, "  records:        %s\n", strings.Join(engine.Requires(), ", "))
	return describeEffectiveArea(out, engine.EffectiveArea())
}

// describeEffectiveArea prints the bin edges and every category's values.
func describeEffectiveArea(out io.Writer, table *domain.EffectiveAreaTable) error {
	if table == nil {
		return nil
	}
	for i, category := range []domain.Category{domain.ChargedHadron, domain.NeutralHadron, domain.Photon} {
		bm, err := table.Mapping(category)
		if err != nil {
			return err
		}
		if i == 0 {
			fmt.Fprintf(out, "  effective area: %d bins, edges %v\n", bm.Bins(), bm.Edges())
		}
		fmt.Fprintf(out, "    %-15s %v\n", category.String()+":", bm.Values())
	}
	return nil
}
