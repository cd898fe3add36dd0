// Package deps checks which executables are available on the host.
package deps

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/frhel/wp-migrate-sync/internal/runner"
	"golang.org/x/sync/errgroup"
)

// Prerequisites must all be present before a migration can start.
var Prerequisites = []string{"php", "ssh", "rsync", "bash"}

// DownloadTools lists the supported download tools in preference order.
var DownloadTools = []string{"curl", "wget"}

// ErrNoneAvailable is returned by Prefer when no candidate is installed.
var ErrNoneAvailable = errors.New("none of the candidates are available")

// MissingError reports prerequisites that could not be found.
type MissingError struct {
	Names []string
}

func (e *MissingError) Error() string {
	return fmt.Sprintf("missing dependencies: %s", strings.Join(e.Names, ", "))
}

// Checker probes for executables with "command -v <name>".
type Checker struct {
	Runner      runner.Executor
	Classify    runner.Classifier // nil uses runner.KeywordClassifier
	Concurrency int               // parallel probes; <= 1 runs them one at a time
}

// CheckAvailable returns the subsequence of names that resolve to an
// executable, in input order. The error is non-nil only when a probe
// could not be run at all.
func (c *Checker) CheckAvailable(ctx context.Context, names []string) ([]string, error) {
	found, err := c.probe(ctx, names)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(names))
	for i, name := range names {
		if found[i] {
			out = append(out, name)
		}
	}
	return out, nil
}

// Missing returns the names that do not resolve, in input order.
func (c *Checker) Missing(ctx context.Context, names []string) ([]string, error) {
	found, err := c.probe(ctx, names)
	if err != nil {
		return nil, err
	}
	var out []string
	for i, name := range names {
		if !found[i] {
			out = append(out, name)
		}
	}
	return out, nil
}

// Require returns a *MissingError when fewer names resolve than were requested.
func (c *Checker) Require(ctx context.Context, names []string) error {
	missing, err := c.Missing(ctx, names)
	if err != nil {
		return err
	}
	if len(missing) > 0 {
		return &MissingError{Names: missing}
	}
	return nil
}

// Prefer returns the first available name from an ordered preference list.
func (c *Checker) Prefer(ctx context.Context, names []string) (string, error) {
	available, err := c.CheckAvailable(ctx, names)
	if err != nil {
		return "", err
	}
	if len(available) == 0 {
		return "", fmt.Errorf("%w: %s", ErrNoneAvailable, strings.Join(names, ", "))
	}
	return available[0], nil
}

// probe fills one slot per name so concurrent probes cannot reorder results.
func (c *Checker) probe(ctx context.Context, names []string) ([]bool, error) {
	classify := c.Classify.OrDefault()
	found := make([]bool, len(names))

	check := func(ctx context.Context, i int) error {
		res, err := c.Runner.Execute(ctx, "command -v "+names[i])
		if err != nil {
			return fmt.Errorf("probing %s: %w", names[i], err)
		}
		found[i] = !classify(res)
		return nil
	}

	if c.Concurrency <= 1 {
		for i := range names {
			if err := check(ctx, i); err != nil {
				return nil, err
			}
		}
		return found, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.Concurrency)
	for i := range names {
		g.Go(func() error { return check(gctx, i) })
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return found, nil
}
