package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/upb/ciw-intake/models"
	"github.com/upb/ciw-intake/repositories/postgres"
	"github.com/upb/ciw-intake/services/extract"
	"github.com/upb/ciw-intake/services/pipeline"
	"github.com/upb/ciw-intake/services/validation"
)

func newValidateCommand(rootOpts *RootOptions) *cobra.Command {
	var submitter string

	cmd := &cobra.Command{
		Use:   "validate <worksheet>",
		Short: "Check one worksheet without recording it",
		Long: `Run a worksheet through every gate and print the result per section.

Lookups run against the configured database, but nothing is persisted, no
notification is sent, and the processed-files ledger is not touched.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, rootOpts, args[0], submitter)
		},
	}

	cmd.Flags().StringVar(&submitter, "submitter", "", "submitter address to attribute the worksheet to")

	return cmd
}

func runValidate(cmd *cobra.Command, rootOpts *RootOptions, path, submitter string) error {
	ctx := cmd.Context()

	cfg, logger, err := setup(ctx, rootOpts)
	if err != nil {
		return err
	}
	defer logger.Sync()

	factory, err := postgres.NewRepositoryFactory(cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer factory.Close()
	repos := factory.NewRepositories()

	validator := validation.NewValidator(repos.Lookups, logger, validation.WithHomeCountry(cfg.Processing.HomeCountry))
	p := pipeline.NewPipeline(
		pipeline.Config{
			ExpectedVersion: cfg.Processing.ExpectedVersion,
			ContractSource:  cfg.ContractSource(),
		},
		extract.NewDelimitedExtractor(logger),
		validator,
		nil, nil, nil, nil, nil,
		logger,
	)

	name := filepath.Base(path)
	out := p.Check(ctx, models.FileRef{ID: name, Name: name, Path: path, Submitter: submitter})

	if err := writeCheck(cmd.OutOrStdout(), rootOpts.Format, out); err != nil {
		return err
	}
	if !out.Succeeded() {
		return errRejected
	}
	return nil
}
