package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	wpms "github.com/frhel/wp-migrate-sync"
	"github.com/frhel/wp-migrate-sync/internal/config"
	"github.com/frhel/wp-migrate-sync/internal/logger"
	"github.com/frhel/wp-migrate-sync/internal/report"
	"github.com/frhel/wp-migrate-sync/internal/runner"
	"github.com/frhel/wp-migrate-sync/internal/workflow"
	"github.com/spf13/cobra"
)

// options holds the persistent flags shared by every subcommand.
type options struct {
	configPath  string
	source      string
	destination string
	exclude     string
	dryRun      bool
	deleteExtra bool
	symUploads  string
	logLevel    string
	timeout     time.Duration
	jsonOut     bool
}

// siteFlags are the flags that describe the migration itself. Giving any
// of them disables the interactive prompt.
var siteFlags = []string{"source", "destination", "exclude", "dry-run", "delete", "sym-uploads"}

func newRootCommand() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "wpms",
		Short: "Prepare a WordPress migration between two installs",
		Long: `wpms checks that php, ssh, rsync and bash are available, installs WP-CLI
when it is missing, and verifies that both the source and the destination
hold a working WordPress install with a reachable database and a writable
uploads directory.

Sides are local paths or [user@]host[:port]:path for installs reached
over SSH. Settings come from flags, from a config file (wpms.conf in the
working directory by default) or, when neither is given and stdin is a
terminal, from interactive prompts.`,
		Version:       wpms.Version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWorkflow(cmd, opts)
		},
	}

	f := cmd.PersistentFlags()
	f.StringVarP(&opts.configPath, "config", "c", "", "config file (default ./"+config.DefaultFileName+" if present)")
	f.StringVar(&opts.source, "source", "", "source WordPress root, [user@]host[:port]:path or a local path (default ./)")
	f.StringVar(&opts.destination, "destination", "", "destination WordPress root, [user@]host[:port]:path or a local path")
	f.StringVar(&opts.exclude, "exclude", "", "directories to exclude, separated by commas or whitespace")
	f.BoolVar(&opts.dryRun, "dry-run", false, "run without transferring files")
	f.BoolVar(&opts.deleteExtra, "delete", false, "delete destination files that are not in the source")
	f.StringVar(&opts.symUploads, "sym-uploads", "", "symlink the destination uploads directory to this path")
	f.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn or error (default info)")
	f.DurationVar(&opts.timeout, "timeout", 0, "per-command timeout, overrides the configured value (e.g. 2m)")
	f.BoolVar(&opts.jsonOut, "json", false, "print the report as JSON")

	cmd.AddCommand(
		newRunCommand(opts),
		newDepsCommand(opts),
		newInstallCommand(opts),
		newPreflightCommand(opts),
		newReportCommand(opts),
		newMCPCommand(opts),
		newVersionCommand(),
	)
	return cmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), wpms.Version)
		},
	}
}

// env is everything a subcommand needs once flags and config are resolved.
type env struct {
	cfg     *config.Config
	workDir string
	runner  *runner.Runner
	disk    *report.DiskStore
	store   report.Store
	log     logger.Logger
}

// setup resolves configuration in order: file, then flags, then the
// interactive prompt, and builds the runner, report store and logger.
func setup(cmd *cobra.Command, opts *options) (*env, error) {
	workDir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("determining working directory: %w", err)
	}

	var loaded *config.LoadResult
	if opts.configPath != "" {
		loaded, err = config.Load(opts.configPath)
	} else {
		loaded, err = config.Discover(workDir)
	}
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	cfg := loaded.Config

	flagsGiven := applyFlags(cmd, opts, cfg)
	if promptsForSite(cmd) && config.ShouldPrompt(flagsGiven, loaded, os.Stdin) {
		if err := config.Prompt(cfg); err != nil {
			return nil, fmt.Errorf("reading settings: %w", err)
		}
	}

	if !logger.ValidLevel(cfg.LogLevel) {
		return nil, fmt.Errorf("invalid log level %q", cfg.LogLevel)
	}
	log := logger.NewConsoleLogger(cmd.ErrOrStderr(), cfg.LogLevel)
	for _, key := range loaded.Unknown {
		log.Warnf("%s: unknown key %q ignored", loaded.Path, key)
	}

	timeout := cfg.Timeout()
	if opts.timeout > 0 {
		timeout = opts.timeout
	}
	r := &runner.Runner{
		Shell:     cfg.ShellPath(),
		Dir:       workDir,
		Timeout:   timeout,
		MaxOutput: cfg.MaxOutputBytes(),
	}

	disk := report.NewDiskStore(cfg.ReportPath())
	return &env{
		cfg:     cfg,
		workDir: workDir,
		runner:  r,
		disk:    disk,
		store:   report.NewLRUStore(5, disk),
		log:     log,
	}, nil
}

// applyFlags copies explicitly set flags over cfg and reports whether any
// site flag was given.
func applyFlags(cmd *cobra.Command, opts *options, cfg *config.Config) bool {
	flags := cmd.Flags()
	if flags.Changed("source") {
		cfg.Source = opts.source
	}
	if flags.Changed("destination") {
		cfg.Destination = opts.destination
	}
	if flags.Changed("exclude") {
		cfg.Exclude = config.SplitList(opts.exclude)
	}
	if flags.Changed("dry-run") {
		cfg.DryRun = opts.dryRun
	}
	if flags.Changed("delete") {
		cfg.Delete = opts.deleteExtra
	}
	if flags.Changed("sym-uploads") {
		cfg.SymUploads = opts.symUploads
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = opts.logLevel
	}

	for _, name := range siteFlags {
		if flags.Changed(name) {
			return true
		}
	}
	return false
}

// promptsForSite reports whether cmd needs a source and destination, and
// so may ask for them interactively.
func promptsForSite(cmd *cobra.Command) bool {
	switch cmd.Name() {
	case "wpms", "run", "preflight":
		return true
	}
	return false
}

func (e *env) engine() *workflow.Engine {
	return workflow.NewEngine(e.cfg, e.runner, e.workDir, e.log, e.store)
}

// signalContext cancels on interrupt so running commands are killed.
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(cmd.Context(), os.Interrupt)
}
