package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/upb/ciw-intake/app"
	"github.com/upb/ciw-intake/repositories/postgres"
)

func newMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the GCIMS schema and stored functions",
	}

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(cmd, rootOpts, func(m *postgres.Migrator) error {
				return m.Down(steps)
			})
		},
	}
	down.Flags().IntVarP(&steps, "steps", "n", 1, "number of migrations to roll back (0 for all)")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withMigrator(cmd, rootOpts, func(m *postgres.Migrator) error {
					return m.Up()
				})
			},
		},
		down,
		&cobra.Command{
			Use:   "version",
			Short: "Print the current schema version",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withMigrator(cmd, rootOpts, func(m *postgres.Migrator) error {
					version, dirty, err := m.Version()
					if err != nil {
						return err
					}
					return writeVersion(cmd.OutOrStdout(), rootOpts.Format, version, dirty)
				})
			},
		},
	)

	return cmd
}

func withMigrator(cmd *cobra.Command, rootOpts *RootOptions, fn func(*postgres.Migrator) error) error {
	cfg, logger, err := setup(cmd.Context(), rootOpts)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if err := app.WithMigrator(cfg, logger, fn); err != nil {
		return fmt.Errorf("migrate %s: %w", cmd.Name(), err)
	}
	return nil
}
