package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/frhel/wp-migrate-sync/internal/report"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type inspectParams struct {
	RunID  string `json:"run_id" jsonschema:"the run ID from a wpms_dependencies or wpms_preflight result"`
	Source string `json:"source,omitempty" jsonschema:"limit output to one failure source: dependency, install or preflight"`
}

func (h *handler) inspectHandler(ctx context.Context, req *mcp.CallToolRequest, params inspectParams) (*mcp.CallToolResult, any, error) {
	if params.RunID == "" {
		return errorResult("run_id is required")
	}
	switch params.Source {
	case "", "dependency", "install", "preflight":
	default:
		return errorResult(fmt.Sprintf("unknown source %q: want dependency, install or preflight", params.Source))
	}

	rep, err := h.store.Load(params.RunID)
	if err != nil {
		return errorResult(fmt.Sprintf("Failed to load run %s: %v", params.RunID, err))
	}

	diagnostics := report.BySource(rep, params.Source)
	if len(diagnostics) == 0 {
		scope := "run"
		if params.Source != "" {
			scope = params.Source
		}
		return textResult(fmt.Sprintf("No %s failures in run %s (%s).", scope, params.RunID, rep.Kind))
	}

	return textResult(formatInspectOutput(rep, diagnostics))
}

func formatInspectOutput(rep *report.Report, diagnostics []report.Diagnostic) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Run: %s (%s)\n", rep.ID, rep.Kind)
	if rep.State != "" {
		fmt.Fprintf(&b, "State: %s\n", rep.State)
	}
	if rep.Error != "" {
		fmt.Fprintf(&b, "Error: %s\n", firstLine(rep.Error))
	}
	fmt.Fprintln(&b)

	for _, d := range diagnostics {
		fmt.Fprintf(&b, "[%s] %s: %s\n", d.Source, d.Subject, d.Message)
		if d.Detail != "" {
			fmt.Fprintf(&b, "    %s\n", d.Detail)
		}
	}
	return b.String()
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
