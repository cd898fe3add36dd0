package wpcli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/frhel/wp-migrate-sync/internal/deps"
	"github.com/frhel/wp-migrate-sync/internal/filelock"
	"github.com/frhel/wp-migrate-sync/internal/logger"
	"github.com/frhel/wp-migrate-sync/internal/queue"
	"github.com/frhel/wp-migrate-sync/internal/runner"
)

// PharName is the file the installer downloads into WorkDir.
const PharName = "wp-cli.phar"

// ErrNoDownloadTool is returned when neither curl nor wget is available.
var ErrNoDownloadTool = errors.New("no download tool found, install curl or wget to continue")

// InstallError reports a failed install. Outcome holds the per-step results.
type InstallError struct {
	Outcome *queue.Outcome
	Reason  string
}

func (e *InstallError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "failed to install WP-CLI: %s", e.Reason)
	if e.Outcome != nil {
		for _, f := range e.Outcome.Failures() {
			fmt.Fprintf(&b, "\n  %s: %s", f.Label, f.FirstLine())
		}
	}
	return b.String()
}

// Installer downloads the WP-CLI phar and moves it onto PATH.
type Installer struct {
	Runner      runner.Executor
	Classify    runner.Classifier
	Deps        *deps.Checker
	Client      *Client
	URL         string
	InstallPath string // e.g. /usr/local/bin/wp
	WorkDir     string // where the phar is downloaded; must match the runner's directory
	UseSudo     bool
	Log         logger.Logger
}

func (in *Installer) log() logger.Logger {
	if in.Log == nil {
		return logger.Discard
	}
	return in.Log
}

func (in *Installer) sudo(cmd string) string {
	if in.UseSudo {
		return "sudo " + cmd
	}
	return cmd
}

// DownloadCommand returns the command that fetches the phar with tool.
func DownloadCommand(tool, url string) (string, error) {
	switch tool {
	case "curl":
		return "curl -fsSL -o " + PharName + " " + Quote(url), nil
	case "wget":
		return "wget -q -O " + PharName + " " + Quote(url), nil
	default:
		return "", fmt.Errorf("unsupported download tool %q", tool)
	}
}

// Install downloads WP-CLI, makes it executable and moves it to
// InstallPath, then confirms wp resolves. On any failure the partial
// artifacts are removed and an *InstallError is returned. When no
// download tool exists, ErrNoDownloadTool is returned before anything
// is downloaded.
func (in *Installer) Install(ctx context.Context) (*queue.Outcome, error) {
	lock := filelock.NewFileLock(filepath.Join(in.WorkDir, ".wpms-install.lock"))
	if err := lock.Acquire(); err != nil {
		return nil, fmt.Errorf("another install is in progress: %w", err)
	}
	defer lock.Unlock()

	tool, err := in.Deps.Prefer(ctx, deps.DownloadTools)
	if err != nil {
		if errors.Is(err, deps.ErrNoneAvailable) {
			return nil, ErrNoDownloadTool
		}
		return nil, err
	}
	in.log().Infof("Using %s to download WP-CLI", tool)

	download, err := DownloadCommand(tool, in.URL)
	if err != nil {
		return nil, err
	}

	q := queue.New(in.Runner, in.Classify)
	q.Enqueue("download "+PharName, download)
	q.Enqueue("make "+PharName+" executable", in.sudo("chmod +x "+PharName))
	moveLabel := "move " + PharName + " to " + in.InstallPath
	q.Enqueue(moveLabel, in.sudo("mv "+PharName+" "+Quote(in.InstallPath)))

	outcome, err := q.Run(ctx)
	installed := moved(outcome, moveLabel)
	if err != nil {
		in.Cleanup(ctx, installed)
		return outcome, err
	}
	for _, e := range outcome.Entries {
		in.log().Debugf("%s: failed=%t exit=%d", e.Label, e.Failed, e.Result.ExitCode)
	}
	if !outcome.OK {
		in.Cleanup(ctx, installed)
		return outcome, &InstallError{Outcome: outcome, Reason: "install steps failed"}
	}

	ok, err := in.Client.IsInstalled(ctx)
	if err != nil {
		return outcome, err
	}
	if !ok {
		in.Cleanup(ctx, installed)
		return outcome, &InstallError{Outcome: outcome, Reason: "wp is not on PATH after install"}
	}

	in.log().Infof("WP-CLI installed successfully")
	return outcome, nil
}

// moved reports whether the move step ran and succeeded.
func moved(outcome *queue.Outcome, label string) bool {
	if outcome == nil {
		return false
	}
	for _, e := range outcome.Entries {
		if e.Label == label {
			return !e.Failed
		}
	}
	return false
}

// Cleanup removes a downloaded phar from WorkDir and, when installed is
// true, the binary this run moved to InstallPath. A file at InstallPath
// that the run did not put there is left alone. It is best-effort:
// failures are logged.
func (in *Installer) Cleanup(ctx context.Context, installed bool) {
	q := queue.New(in.Runner, runner.ExitCodeClassifier)
	if _, err := os.Stat(filepath.Join(in.WorkDir, PharName)); err == nil {
		q.Enqueue("remove downloaded "+PharName, in.sudo("rm -f "+PharName))
	}
	if _, err := os.Stat(in.InstallPath); err == nil && installed {
		q.Enqueue("remove "+in.InstallPath, in.sudo("rm -f "+Quote(in.InstallPath)))
	}
	if q.Len() == 0 {
		return
	}

	outcome, err := q.Run(ctx)
	if err != nil {
		in.log().Warnf("cleanup: %v", err)
		return
	}
	for _, f := range outcome.Failures() {
		in.log().Warnf("cleanup: %s: %s", f.Label, f.FirstLine())
	}
}
