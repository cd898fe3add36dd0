// Package mcp provides the wpms MCP server. It exposes the read-only
// workflow stages and report inspection; installation is not exposed.
package mcp

import (
	"context"
	_ "embed"
	"net/url"
	"sync"
	"time"

	wpms "github.com/frhel/wp-migrate-sync"
	"github.com/frhel/wp-migrate-sync/internal/config"
	"github.com/frhel/wp-migrate-sync/internal/logger"
	"github.com/frhel/wp-migrate-sync/internal/report"
	"github.com/frhel/wp-migrate-sync/internal/runner"
	"github.com/frhel/wp-migrate-sync/internal/workflow"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

//go:embed instructions.md
var Instructions string

// handler holds shared dependencies for all tool handlers. cfg and
// workDir change when the client reports its roots; runner is never
// mutated after construction.
type handler struct {
	mu      sync.Mutex
	cfg     *config.Config
	runner  runner.Executor
	store   report.Store
	workDir string
	opts    serverOptions
}

// ServerOption configures the wpms MCP server.
type ServerOption func(*serverOptions)

type serverOptions struct {
	source      string
	destination string
}

// WithSides pins the source and destination given on the command line.
// They win over any wpms.conf discovered from the client's roots. Empty
// values are not pinned.
func WithSides(source, destination string) ServerOption {
	return func(o *serverOptions) {
		o.source = source
		o.destination = destination
	}
}

// NewServer creates an MCP server with all wpms tools registered.
func NewServer(cfg *config.Config, r runner.Executor, store report.Store, workDir string, opts ...ServerOption) *mcp.Server {
	if cfg == nil {
		cfg = &config.Config{}
	}
	h := &handler{
		cfg:     cfg,
		runner:  r,
		store:   store,
		workDir: workDir,
	}
	for _, o := range opts {
		o(&h.opts)
	}

	serverOpts := &mcp.ServerOptions{
		Instructions: Instructions,
		Capabilities: &mcp.ServerCapabilities{
			Tools: &mcp.ToolCapabilities{ListChanged: false},
		},
		InitializedHandler: func(ctx context.Context, req *mcp.InitializedRequest) {
			h.updateFromRoots(ctx, req.Session)
		},
	}
	s := mcp.NewServer(&mcp.Implementation{Name: "wpms", Version: wpms.Version}, serverOpts)

	mcp.AddTool(s, &mcp.Tool{
		Name: "wpms_dependencies",
		Description: `Check that php, ssh, rsync and bash are available on this machine.

Reports which prerequisites resolved and which are missing. The result is
stored for drill-down via wpms_inspect.`,
	}, h.dependenciesHandler)

	mcp.AddTool(s, &mcp.Tool{
		Name: "wpms_preflight",
		Description: `Run the WordPress content checks on the source and destination.

For each side, checks that WordPress core is installed, the database is
reachable and wp-content/uploads is writable. Every check runs even after a
failure. source and destination default to the configured values and accept
local paths or [user@]host[:port]:path. Results are stored for drill-down
via wpms_inspect.`,
	}, h.preflightHandler)

	mcp.AddTool(s, &mcp.Tool{
		Name: "wpms_inspect",
		Description: `Drill into a stored wpms report.

Use the run_id from a wpms_dependencies or wpms_preflight result, or from a
CLI run. source narrows the output to one kind of failure: dependency,
install or preflight.`,
	}, h.inspectHandler)

	return s
}

// engine builds a workflow engine over a snapshot of the handler config.
// overrides are applied to the snapshot only. A *runner.Runner is copied
// so that each engine runs in the current working directory without
// touching the shared value.
func (h *handler) engine(override func(*config.Config)) *workflow.Engine {
	h.mu.Lock()
	cfg := *h.cfg
	workDir := h.workDir
	h.mu.Unlock()

	if h.opts.source != "" {
		cfg.Source = h.opts.source
	}
	if h.opts.destination != "" {
		cfg.Destination = h.opts.destination
	}
	if override != nil {
		override(&cfg)
	}

	r := h.runner
	if rr, ok := h.runner.(*runner.Runner); ok {
		cp := *rr
		cp.Dir = workDir
		r = &cp
	}
	return workflow.NewEngine(&cfg, r, workDir, logger.Discard, h.store)
}

// updateFromRoots asks the client for its roots and, when the first one is
// a local directory, switches to it.
func (h *handler) updateFromRoots(ctx context.Context, session *mcp.ServerSession) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	roots, err := session.ListRoots(ctx, &mcp.ListRootsParams{})
	if err != nil || len(roots.Roots) == 0 {
		return
	}

	u, err := url.Parse(roots.Roots[0].URI)
	if err != nil || u.Scheme != "file" {
		return
	}
	_ = h.useDir(u.Path)
}

// useDir makes dir the working directory for later tool calls and loads
// wpms.conf from it when present.
func (h *handler) useDir(dir string) error {
	loaded, err := config.Discover(dir)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if loaded.Path != "" {
		h.cfg = loaded.Config
	}
	h.workDir = dir
	return nil
}

// textResult is a helper to build a text-only tool result.
func textResult(text string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}, nil, nil
}

// errorResult is a helper to build an error tool result.
func errorResult(text string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
		IsError: true,
	}, nil, nil
}
