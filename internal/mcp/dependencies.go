package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/frhel/wp-migrate-sync/internal/deps"
	"github.com/frhel/wp-migrate-sync/internal/report"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type dependenciesParams struct{}

func (h *handler) dependenciesHandler(ctx context.Context, req *mcp.CallToolRequest, _ dependenciesParams) (*mcp.CallToolResult, any, error) {
	rep, err := h.engine(nil).CheckDependencies(ctx)
	var missing *deps.MissingError
	if err != nil && !errors.As(err, &missing) {
		return errorResult(fmt.Sprintf("dependency check failed: %v", err))
	}
	return textResult(formatDependencies(rep))
}

func formatDependencies(rep *report.Report) string {
	var b strings.Builder

	status := "PASS"
	if len(rep.Missing) > 0 {
		status = "FAIL"
	}
	total := len(rep.Available) + len(rep.Missing)
	fmt.Fprintf(&b, "Dependencies: %d/%d available\n", len(rep.Available), total)
	fmt.Fprintf(&b, "Status: %s\n", status)
	fmt.Fprintf(&b, "Run: %s\n", rep.ID)
	fmt.Fprintln(&b)

	for _, name := range rep.Available {
		fmt.Fprintf(&b, "%s: ok\n", name)
	}
	for _, name := range rep.Missing {
		fmt.Fprintf(&b, "%s: missing\n", name)
	}
	return b.String()
}
