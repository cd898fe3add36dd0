// Package wpcli drives the WP-CLI executable: detecting it, installing it
// when missing, and running read-only preflight checks against a
// WordPress install.
package wpcli

import (
	"context"
	"strings"

	"github.com/frhel/wp-migrate-sync/internal/config"
	"github.com/frhel/wp-migrate-sync/internal/runner"
)

// DefaultBinary is the WP-CLI executable name.
const DefaultBinary = "wp"

// Client runs wp subcommands through a runner.Executor.
type Client struct {
	Runner   runner.Executor
	Classify runner.Classifier // nil uses runner.KeywordClassifier
	Binary   string            // DefaultBinary if empty
}

func (c *Client) binary() string {
	if c.Binary != "" {
		return c.Binary
	}
	return DefaultBinary
}

// IsInstalled reports whether the wp binary resolves on PATH.
func (c *Client) IsInstalled(ctx context.Context) (bool, error) {
	res, err := c.Runner.Execute(ctx, "command -v "+c.binary())
	if err != nil {
		return false, err
	}
	return !c.Classify.OrDefault()(res), nil
}

// command builds a wp invocation against side. Remote sides go through
// WP-CLI's own --ssh transport.
func (c *Client) command(side config.Side, args ...string) string {
	parts := []string{c.binary()}
	parts = append(parts, args...)
	if side.Remote() {
		parts = append(parts, "--ssh="+Quote(side.SSH))
	}
	parts = append(parts, "--path="+Quote(side.Path))
	return strings.Join(parts, " ")
}

// Quote single-quotes s for the shell unless it is made only of
// characters that need no quoting.
func Quote(s string) string {
	if s == "" {
		return "''"
	}
	safe := true
	for _, r := range s {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || strings.ContainsRune("@%+=:,./_-~", r)) {
			safe = false
			break
		}
	}
	if safe {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
