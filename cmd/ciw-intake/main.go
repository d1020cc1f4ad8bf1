package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/upb/ciw-intake/config"
	"github.com/upb/ciw-intake/internal/observability"
	"github.com/upb/ciw-intake/utils"
	"go.uber.org/zap"
)

// errRejected marks a command that ran cleanly but whose result should fail
// the process, such as a worksheet that does not pass validation.
var errRejected = errors.New("rejected")

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Format   string // "json" | "text"
	LogLevel string
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{observability.FormatText, observability.FormatJSON}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		if !errors.Is(err, errRejected) {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(1)
	}
}

// newRootCommand creates the root command for the intake CLI.
func newRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "ciw-intake",
		Short: "Contractor Information Worksheet intake",
		Long: `Validates submitted Contractor Information Worksheets and records
accepted contractors in GCIMS. Every file in the inbox gets exactly one
terminal code and one notification.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return utils.ValidateOneOf(opts.Format, "format", ValidFormats)
		},
	}

	// Global flags
	cmd.PersistentFlags().StringVar(&opts.Format, "format", observability.FormatText, "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "override LOG_LEVEL")

	// Add subcommands
	cmd.AddCommand(newProcessCommand(opts))
	cmd.AddCommand(newMigrateCommand(opts))
	cmd.AddCommand(newValidateCommand(opts))

	return cmd
}

// setup loads configuration from the environment and builds the logger
func setup(ctx context.Context, opts *RootOptions) (*config.Config, *zap.Logger, error) {
	cfg, err := config.New(ctx)
	if err != nil {
		return nil, nil, err
	}
	if opts.LogLevel != "" {
		cfg.Observability.LogLevel = opts.LogLevel
	}

	logger, err := observability.NewLogger(cfg.Observability.LogLevel, cfg.Observability.LogFormat)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, logger, nil
}
