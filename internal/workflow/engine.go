// Package workflow sequences the wpms stages: dependency check, WP-CLI
// install when missing, and the preflight content checks on both sides of
// the migration. It is consumed by both the CLI and the MCP server.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/frhel/wp-migrate-sync/internal/config"
	"github.com/frhel/wp-migrate-sync/internal/deps"
	"github.com/frhel/wp-migrate-sync/internal/logger"
	"github.com/frhel/wp-migrate-sync/internal/report"
	"github.com/frhel/wp-migrate-sync/internal/runner"
	"github.com/frhel/wp-migrate-sync/internal/wpcli"
	"github.com/google/uuid"
)

// PreflightError lists every failed content check.
type PreflightError struct {
	Failed []wpcli.CheckResult
}

func (e *PreflightError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d preflight check(s) failed", len(e.Failed))
	for _, c := range e.Failed {
		fmt.Fprintf(&b, "\n  %s", c.Message)
		if c.Detail != "" {
			fmt.Fprintf(&b, " (%s)", c.Detail)
		}
	}
	return b.String()
}

// Engine holds shared dependencies for all workflow operations.
type Engine struct {
	Config    *config.Config
	Deps      *deps.Checker
	WP        *wpcli.Client
	Installer *wpcli.Installer
	Store     report.Store // optional
	Log       logger.Logger
	now       func() time.Time
}

// NewEngine wires an Engine from cfg. workDir is where WP-CLI is
// downloaded during install and must match the runner's directory.
func NewEngine(cfg *config.Config, r runner.Executor, workDir string, log logger.Logger, store report.Store) *Engine {
	if log == nil {
		log = logger.Discard
	}
	checker := &deps.Checker{Runner: r, Concurrency: 4}
	client := &wpcli.Client{Runner: r}
	return &Engine{
		Config: cfg,
		Deps:   checker,
		WP:     client,
		Installer: &wpcli.Installer{
			Runner:      r,
			Deps:        checker,
			Client:      client,
			URL:         cfg.WPPharURL(),
			InstallPath: cfg.WPInstallPath(),
			WorkDir:     workDir,
			UseSudo:     cfg.Sudo(),
			Log:         log,
		},
		Store: store,
		Log:   log,
		now:   time.Now,
	}
}

// Run executes the whole workflow. The returned report is always non-nil
// and has been handed to the store; the error is the fatal condition that
// ended the run, if any.
func (e *Engine) Run(ctx context.Context) (*report.Report, error) {
	rep := e.newReport(report.Run)

	f, err := newFlow()
	if err != nil {
		return e.finish(rep, err), err
	}
	defer f.stop()

	err = e.run(ctx, f, rep)
	// The state reached before the fatal event names the failing stage.
	rep.State = f.current()
	if err != nil {
		f.send(EventFatal)
	}
	return e.finish(rep, err), err
}

func (e *Engine) run(ctx context.Context, f *flow, rep *report.Report) error {
	f.send(EventStart)

	e.Log.Infof("Checking dependencies: %s", strings.Join(deps.Prerequisites, ", "))
	if err := e.checkDependencies(ctx, rep); err != nil {
		return err
	}
	f.send(EventDepsOK)

	installed, err := e.WP.IsInstalled(ctx)
	if err != nil {
		return err
	}
	if installed {
		e.Log.Debugf("WP-CLI found")
		f.send(EventToolPresent)
	} else {
		f.send(EventToolMissing)
		e.Log.Infof("WP-CLI not found, trying to install it")
		if err := e.install(ctx, rep); err != nil {
			return err
		}
		f.send(EventInstalled)
	}

	if err := e.preflight(ctx, rep); err != nil {
		return err
	}
	f.send(EventChecksPassed)
	return nil
}

// CheckDependencies verifies the prerequisites only.
func (e *Engine) CheckDependencies(ctx context.Context) (*report.Report, error) {
	rep := e.newReport(report.Deps)
	rep.State = StateDependencies
	err := e.checkDependencies(ctx, rep)
	return e.finish(rep, err), err
}

// EnsureTool installs WP-CLI if it is not already on PATH.
func (e *Engine) EnsureTool(ctx context.Context) (*report.Report, error) {
	rep := e.newReport(report.Install)
	rep.State = StateTool

	installed, err := e.WP.IsInstalled(ctx)
	if err == nil && !installed {
		rep.State = StateInstall
		err = e.install(ctx, rep)
	}
	return e.finish(rep, err), err
}

// Preflight runs the content checks on both sides only.
func (e *Engine) Preflight(ctx context.Context) (*report.Report, error) {
	rep := e.newReport(report.Preflight)
	rep.State = StateContent
	err := e.preflight(ctx, rep)
	return e.finish(rep, err), err
}

func (e *Engine) checkDependencies(ctx context.Context, rep *report.Report) error {
	missing, err := e.Deps.Missing(ctx, deps.Prerequisites)
	if err != nil {
		return err
	}
	for _, name := range deps.Prerequisites {
		if !contains(missing, name) {
			rep.Available = append(rep.Available, name)
		}
	}
	rep.Missing = missing
	if len(missing) > 0 {
		return &deps.MissingError{Names: missing}
	}
	return nil
}

func (e *Engine) install(ctx context.Context, rep *report.Report) error {
	outcome, err := e.Installer.Install(ctx)
	if outcome != nil {
		for _, entry := range outcome.Entries {
			step := report.Step{
				Label:   entry.Label,
				Command: entry.Command,
				Failed:  entry.Failed,
			}
			if entry.Result != nil {
				step.ExitCode = entry.Result.ExitCode
			}
			if entry.Failed {
				step.Output = entry.FirstLine()
			}
			rep.InstallStep = append(rep.InstallStep, step)
		}
	}
	if err != nil {
		return err
	}
	rep.Installed = true
	return nil
}

func (e *Engine) preflight(ctx context.Context, rep *report.Report) error {
	if strings.TrimSpace(e.Config.Destination) == "" {
		return errors.New("destination is required")
	}
	sides := []struct {
		label string
		side  config.Side
	}{
		{"source", config.ParseSide(e.Config.SourcePath())},
		{"destination", config.ParseSide(e.Config.Destination)},
	}

	var failed []wpcli.CheckResult
	for _, s := range sides {
		e.Log.Infof("Running preflight checks on %s %s", s.label, s.side)
		results, err := e.WP.Preflight(ctx, s.label, s.side)
		for _, r := range results {
			rep.Checks = append(rep.Checks, report.Check(r))
			if !r.Passed {
				e.Log.Errorf("%s", r.Message)
				failed = append(failed, r)
			}
		}
		if err != nil {
			return err
		}
	}
	if len(failed) > 0 {
		return &PreflightError{Failed: failed}
	}
	return nil
}

func (e *Engine) newReport(kind report.Kind) *report.Report {
	return &report.Report{
		ID:      uuid.New().String(),
		Kind:    kind,
		Started: e.now(),
		Source:  e.Config.SourcePath(),
		Dest:    e.Config.Destination,
	}
}

// finish stamps the report, records err and saves it. Save failures are
// logged; they never mask the workflow's own outcome.
func (e *Engine) finish(rep *report.Report, err error) *report.Report {
	rep.Finished = e.now()
	if err != nil {
		rep.Error = err.Error()
	} else if rep.Kind == report.Run {
		rep.State = StateDone
	}
	if e.Store != nil {
		if saveErr := e.Store.Save(rep); saveErr != nil {
			e.Log.Warnf("saving report %s: %v", rep.ID, saveErr)
		}
	}
	return rep
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
