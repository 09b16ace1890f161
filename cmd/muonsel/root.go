package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ahrav/go-muonsel/internal/application"
	"github.com/ahrav/go-muonsel/internal/logging"
)

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	configPath string
	keyed      bool
	logLevel   string
	logFormat  string

	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "muonsel",
		Short: "Muon selection policy engine",
		Long: `muonsel applies a versioned identification and isolation policy to muons
and reports one outcome code per particle:

  0 pass, 1 fail isolation, 2 fail identification,
  3 fail kinematics, 4 fail more than one.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			level, err := logging.ParseLevel(opts.logLevel)
			if err != nil {
				return err
			}
			format, err := logging.ParseFormat(opts.logFormat)
			if err != nil {
				return err
			}
			opts.logger = logging.NewWithWriter(cmd.ErrOrStderr(), level, format)
			return nil
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "selector configuration file")
	flags.BoolVar(&opts.keyed, "keyed", false, "read --config as a dotted-key document (Muon.pt.min, ...)")
	flags.StringVar(&opts.logLevel, "log-level", "info", "log level: debug, info, warn, error")
	flags.StringVar(&opts.logFormat, "log-format", "text", "log format: text or json")

	cmd.AddCommand(
		newEvaluateCmd(opts),
		newValidateCmd(opts),
		newVariantsCmd(),
		newSampleCmd(),
	)
	return cmd
}

// buildEngine loads the configured selector. Keyed documents resolve a
// relative effective-area file against the document's directory, the same
// as selector files.
func (o *rootOptions) buildEngine(ctx context.Context, extra ...application.Option) (*application.Engine, error) {
	if o.configPath == "" {
		return nil, errors.New("--config is required")
	}
	opts := append([]application.Option{application.WithLogger(o.logger)}, extra...)

	if !o.keyed {
		return application.NewSelectorLoader(opts...).LoadFromFile(ctx, o.configPath)
	}

	src, err := application.LoadKeyedConfig(o.configPath)
	if err != nil {
		return nil, err
	}
	cfg, err := application.ConfigFromKeyed(src)
	if err != nil {
		return nil, fmt.Errorf("keyed config %s: %w", o.configPath, err)
	}
	if err := application.InlineEffectiveArea(&cfg, filepath.Dir(o.configPath)); err != nil {
		return nil, err
	}
	return application.NewEngine(cfg, opts...)
}
