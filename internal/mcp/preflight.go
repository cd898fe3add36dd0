package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/frhel/wp-migrate-sync/internal/config"
	"github.com/frhel/wp-migrate-sync/internal/report"
	"github.com/frhel/wp-migrate-sync/internal/workflow"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type preflightParams struct {
	Source      string `json:"source,omitempty" jsonschema:"WordPress root to migrate from: a local path or [user@]host[:port]:path. Defaults to the configured source."`
	Destination string `json:"destination,omitempty" jsonschema:"WordPress root to migrate to: a local path or [user@]host[:port]:path. Defaults to the configured destination."`
}

func (h *handler) preflightHandler(ctx context.Context, req *mcp.CallToolRequest, params preflightParams) (*mcp.CallToolResult, any, error) {
	e := h.engine(func(cfg *config.Config) {
		if params.Source != "" {
			cfg.Source = params.Source
		}
		if params.Destination != "" {
			cfg.Destination = params.Destination
		}
	})
	if err := e.Config.Validate(); err != nil {
		return errorResult(err.Error())
	}

	rep, err := e.Preflight(ctx)
	var pf *workflow.PreflightError
	if err != nil && !errors.As(err, &pf) {
		return errorResult(fmt.Sprintf("preflight failed: %v", err))
	}
	return textResult(formatPreflight(rep))
}

func formatPreflight(rep *report.Report) string {
	var b strings.Builder

	passed := 0
	for _, c := range rep.Checks {
		if c.Passed {
			passed++
		}
	}
	status := "PASS"
	if passed < len(rep.Checks) {
		status = "FAIL"
	}

	fmt.Fprintf(&b, "Preflight: %d/%d checks passed\n", passed, len(rep.Checks))
	fmt.Fprintf(&b, "Status: %s\n", status)
	fmt.Fprintf(&b, "Run: %s\n", rep.ID)
	fmt.Fprintln(&b)

	for _, c := range rep.Checks {
		if c.Passed {
			fmt.Fprintf(&b, "%s/%s: pass\n", c.Side, c.Name)
			continue
		}
		fmt.Fprintf(&b, "%s/%s: fail (%s)\n", c.Side, c.Name, c.Message)
	}

	if status == "FAIL" {
		fmt.Fprintln(&b)
		fmt.Fprintf(&b, "Inspect with wpms_inspect(run_id=%q, source=\"preflight\").\n", rep.ID)
	}
	return b.String()
}
