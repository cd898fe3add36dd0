package wpcli

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/frhel/wp-migrate-sync/internal/config"
	"github.com/frhel/wp-migrate-sync/internal/runner"
)

// Check names.
const (
	CheckCore    = "core"
	CheckDB      = "database"
	CheckUploads = "uploads"
)

// UploadsDir is the uploads folder relative to the WordPress root.
const UploadsDir = "wp-content/uploads"

// CheckResult is the outcome of one preflight check on one side.
type CheckResult struct {
	Side    string `json:"side"` // "source" or "destination"
	Path    string `json:"path"`
	Name    string `json:"name"`
	Passed  bool   `json:"passed"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"` // first line of the tool output on failure
}

// CoreInstalled checks that path holds a WordPress install.
func (c *Client) CoreInstalled(ctx context.Context, side config.Side) (*runner.Result, bool, error) {
	return c.run(ctx, c.command(side, "core", "is-installed"))
}

// DatabaseReachable checks that the install's database answers.
func (c *Client) DatabaseReachable(ctx context.Context, side config.Side) (*runner.Result, bool, error) {
	return c.run(ctx, c.command(side, "db", "check"))
}

// UploadsWritable checks that the uploads directory is writable. The test
// always exits 0, so the verdict comes from the echoed word.
func (c *Client) UploadsWritable(ctx context.Context, side config.Side) (*runner.Result, bool, error) {
	dir := Quote(path.Join(side.Path, UploadsDir))
	test := fmt.Sprintf("[ -w %s ] && echo true || echo false", dir)
	if side.Remote() {
		test = "ssh " + sshArgs(side.SSH) + " " + Quote(test)
	}
	res, err := c.Runner.Execute(ctx, test)
	if err != nil {
		return nil, false, err
	}
	ok := res.Success() && strings.TrimSpace(string(res.Stdout)) == "true"
	return res, ok, nil
}

// sshArgs turns "[user@]host[:port]" into ssh arguments.
func sshArgs(target string) string {
	host := target
	port := ""
	if i := strings.LastIndex(target, ":"); i > 0 {
		host, port = target[:i], target[i+1:]
	}
	if port != "" {
		return "-p " + Quote(port) + " " + Quote(host)
	}
	return Quote(host)
}

func (c *Client) run(ctx context.Context, command string) (*runner.Result, bool, error) {
	res, err := c.Runner.Execute(ctx, command)
	if err != nil {
		return nil, false, err
	}
	return res, !c.Classify.OrDefault()(res), nil
}

// Preflight runs every check against one side. All checks run even when
// an earlier one fails. The error is non-nil only when a command could not
// be spawned.
func (c *Client) Preflight(ctx context.Context, label string, side config.Side) ([]CheckResult, error) {
	checks := []struct {
		name string
		fail string
		fn   func(context.Context, config.Side) (*runner.Result, bool, error)
	}{
		{CheckCore, "is not a WordPress directory", c.CoreInstalled},
		{CheckDB, "has no reachable database", c.DatabaseReachable},
		{CheckUploads, "uploads directory is not writable", c.UploadsWritable},
	}

	results := make([]CheckResult, 0, len(checks))
	for _, chk := range checks {
		res, ok, err := chk.fn(ctx, side)
		if err != nil {
			return results, fmt.Errorf("%s %s check: %w", label, chk.name, err)
		}
		cr := CheckResult{Side: label, Path: side.Raw, Name: chk.name, Passed: ok, Message: "ok"}
		if !ok {
			cr.Message = fmt.Sprintf("%s %s %s", label, side.Raw, chk.fail)
			cr.Detail = res.FirstLine()
		}
		results = append(results, cr)
	}
	return results, nil
}
