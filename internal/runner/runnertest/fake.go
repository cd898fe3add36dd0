// Package runnertest provides a fake runner.Executor for tests.
package runnertest

import (
	"context"
	"strings"
	"sync"

	"github.com/frhel/wp-migrate-sync/internal/runner"
)

// Fake returns predetermined results keyed by the exact command string.
// Commands with no entry succeed with empty output, unless a prefix in
// Prefixes matches first.
type Fake struct {
	Results  map[string]*runner.Result
	Prefixes map[string]*runner.Result
	Err      map[string]error

	mu    sync.Mutex
	calls []string
}

// Execute records the call and returns the configured result.
func (f *Fake) Execute(_ context.Context, command string) (*runner.Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, command)
	f.mu.Unlock()

	if err, ok := f.Err[command]; ok {
		return nil, err
	}
	if r, ok := f.Results[command]; ok {
		return withCommand(r, command), nil
	}
	for prefix, r := range f.Prefixes {
		if strings.HasPrefix(command, prefix) {
			return withCommand(r, command), nil
		}
	}
	return &runner.Result{Command: command}, nil
}

// Calls returns the commands executed so far, in order.
func (f *Fake) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// Called reports whether any executed command starts with prefix.
func (f *Fake) Called(prefix string) bool {
	for _, c := range f.Calls() {
		if strings.HasPrefix(c, prefix) {
			return true
		}
	}
	return false
}

func withCommand(r *runner.Result, command string) *runner.Result {
	cp := *r
	cp.Command = command
	return &cp
}

// Missing is the result of "command -v" for an absent executable.
func Missing() *runner.Result {
	return &runner.Result{ExitCode: 1}
}

// Fail is a non-zero exit with the given stderr.
func Fail(stderr string) *runner.Result {
	return &runner.Result{ExitCode: 1, Stderr: []byte(stderr)}
}

// Out is a zero exit with the given stdout.
func Out(stdout string) *runner.Result {
	return &runner.Result{Stdout: []byte(stdout)}
}

// Absent builds a Results map marking each name as missing for "command -v".
func Absent(names ...string) map[string]*runner.Result {
	m := make(map[string]*runner.Result, len(names))
	for _, n := range names {
		m["command -v "+n] = Missing()
	}
	return m
}
