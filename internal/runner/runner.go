// Package runner executes shell command strings and classifies their
// outcome. The execution context (shell, environment, working directory,
// timeout and output cap) is carried explicitly on the Runner value.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultShell is used when Runner.Shell is empty.
const DefaultShell = "bash"

// Executor runs a command string and returns its captured result.
// Implemented by Runner; tests substitute fakes.
type Executor interface {
	Execute(ctx context.Context, command string) (*Result, error)
}

// Runner executes command strings through "<shell> -c".
type Runner struct {
	Shell     string        // interpreter, resolved via PATH; DefaultShell if empty
	Env       []string      // KEY=VALUE entries appended to the parent environment
	Dir       string        // working directory; current directory if empty
	Timeout   time.Duration // 0 means no timeout
	MaxOutput int           // bytes per stream; 0 means unlimited
}

// SpawnError is returned when the shell itself could not be started.
// Nothing else works without a shell, so callers treat it as fatal.
type SpawnError struct {
	Shell string
	Err   error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("starting shell %s: %v", e.Shell, e.Err)
}

func (e *SpawnError) Unwrap() error { return e.Err }

// Execute runs command and waits for it to exit. A non-zero exit status
// is reported in the Result, not as an error. The error is non-nil only
// when command is empty or the shell could not be spawned.
func (r *Runner) Execute(ctx context.Context, command string) (*Result, error) {
	if strings.TrimSpace(command) == "" {
		return nil, fmt.Errorf("empty command")
	}

	shell := r.Shell
	if shell == "" {
		shell = DefaultShell
	}

	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, shell, "-c", command)
	cmd.Dir = r.Dir
	// Children of the shell may keep the output pipes open after a kill.
	cmd.WaitDelay = time.Second
	if len(r.Env) > 0 {
		cmd.Env = append(os.Environ(), r.Env...)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &limitWriter{buf: &stdout, limit: r.MaxOutput}
	cmd.Stderr = &limitWriter{buf: &stderr, limit: r.MaxOutput}

	start := time.Now()
	runErr := cmd.Run()
	elapsed := time.Since(start)

	exitCode := 0
	if runErr != nil {
		var exitErr *exec.ExitError
		switch {
		case errors.As(runErr, &exitErr):
			// -1 when killed by a signal, typically the timeout.
			exitCode = exitErr.ExitCode()
		case ctx.Err() != nil, errors.Is(runErr, exec.ErrWaitDelay):
			exitCode = -1
		default:
			return nil, &SpawnError{Shell: shell, Err: runErr}
		}
	}

	truncated := r.MaxOutput > 0 && (stdout.Len() >= r.MaxOutput || stderr.Len() >= r.MaxOutput)

	return &Result{
		RunID:     uuid.New().String(),
		Command:   command,
		ExitCode:  exitCode,
		Stdout:    stdout.Bytes(),
		Stderr:    stderr.Bytes(),
		Truncated: truncated,
		Duration:  elapsed,
	}, nil
}

// limitWriter writes up to limit bytes to buf, then silently discards the rest.
// A limit of 0 disables the cap.
type limitWriter struct {
	buf   *bytes.Buffer
	limit int
}

func (w *limitWriter) Write(p []byte) (int, error) {
	if w.limit <= 0 {
		return w.buf.Write(p)
	}
	remaining := w.limit - w.buf.Len()
	if remaining <= 0 {
		return len(p), nil // discard
	}
	if len(p) > remaining {
		// Report all bytes as consumed to avoid short write errors from io.Copy.
		w.buf.Write(p[:remaining])
		return len(p), nil
	}
	return w.buf.Write(p)
}
