package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/upb/ciw-intake/app"
	"github.com/upb/ciw-intake/repositories/postgres"
	"go.uber.org/zap"
)

const shutdownTimeout = 15 * time.Second

type processOptions struct {
	Inbox   string
	Workers int
	Migrate bool
	NoOps   bool
}

func newProcessCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &processOptions{}

	cmd := &cobra.Command{
		Use:   "process",
		Short: "Process every unprocessed worksheet in the inbox",
		Long: `Process every worksheet in the inbox that has no entry in the
processed-files ledger. Files are handled concurrently; the run stops on
the first infrastructure failure.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProcess(cmd, rootOpts, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Inbox, "inbox", "", "override CIW_INBOX_DIR")
	cmd.Flags().IntVarP(&opts.Workers, "workers", "w", 0, "override CIW_WORKERS")
	cmd.Flags().BoolVar(&opts.Migrate, "migrate", false, "apply pending migrations first (also DB_AUTO_MIGRATE)")
	cmd.Flags().BoolVar(&opts.NoOps, "no-ops", false, "do not serve the ops endpoints")

	return cmd
}

func runProcess(cmd *cobra.Command, rootOpts *RootOptions, opts *processOptions) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, logger, err := setup(ctx, rootOpts)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if opts.Inbox != "" {
		cfg.Processing.InboxDir = opts.Inbox
	}
	if opts.Workers > 0 {
		cfg.Processing.Workers = opts.Workers
	}
	if opts.NoOps {
		cfg.Observability.OpsAddr = ""
	}

	if opts.Migrate || cfg.Database.AutoMigrate {
		if err := app.WithMigrator(cfg, logger, func(m *postgres.Migrator) error { return m.Up() }); err != nil {
			return err
		}
	}

	deps, err := app.NewDependencies(ctx, cfg, logger)
	if err != nil {
		return err
	}
	deps.StartOps()

	summary, runErr := deps.Runner.Run(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := deps.Close(shutdownCtx); err != nil {
		logger.Error("shutdown failed", zap.Error(err))
	}

	if runErr != nil {
		return fmt.Errorf("batch run failed: %w", runErr)
	}
	return writeSummary(cmd.OutOrStdout(), rootOpts.Format, summary)
}
