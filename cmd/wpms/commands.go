package main

import (
	"github.com/frhel/wp-migrate-sync/internal/report"
	"github.com/spf13/cobra"
)

func newRunCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the full workflow (the default)",
		Long: `Check dependencies, install WP-CLI if it is missing, then run the
preflight checks on the source and destination.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWorkflow(cmd, opts)
		},
	}
}

func newDepsCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "deps",
		Short: "Check that php, ssh, rsync and bash are available",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := setup(cmd, opts)
			if err != nil {
				return err
			}
			ctx, stop := signalContext(cmd)
			defer stop()

			rep, err := e.engine().CheckDependencies(ctx)
			return finish(cmd, opts, rep, err)
		},
	}
}

func newInstallCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "install",
		Short: "Install WP-CLI if it is not on PATH",
		Long: `Download wp-cli.phar with curl (or wget), make it executable and move it
to the install path (default /usr/local/bin/wp) using sudo. Partial
artifacts are removed if any step fails.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := setup(cmd, opts)
			if err != nil {
				return err
			}
			ctx, stop := signalContext(cmd)
			defer stop()

			rep, err := e.engine().EnsureTool(ctx)
			return finish(cmd, opts, rep, err)
		},
	}
}

func newPreflightCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "preflight",
		Short: "Check both WordPress installs without installing anything",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := setup(cmd, opts)
			if err != nil {
				return err
			}
			if err := e.cfg.Validate(); err != nil {
				return err
			}
			ctx, stop := signalContext(cmd)
			defer stop()

			rep, err := e.engine().Preflight(ctx)
			return finish(cmd, opts, rep, err)
		},
	}
}

func runWorkflow(cmd *cobra.Command, opts *options) error {
	e, err := setup(cmd, opts)
	if err != nil {
		return err
	}
	if err := e.cfg.Validate(); err != nil {
		return err
	}
	ctx, stop := signalContext(cmd)
	defer stop()

	rep, err := e.engine().Run(ctx)
	return finish(cmd, opts, rep, err)
}

// finish prints rep and passes err through so the exit status reflects it.
func finish(cmd *cobra.Command, opts *options, rep *report.Report, err error) error {
	if rep != nil {
		if printErr := printReport(cmd.OutOrStdout(), rep, opts.jsonOut); printErr != nil {
			return printErr
		}
	}
	return err
}
