package mcp

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/frhel/wp-migrate-sync/internal/config"
	"github.com/frhel/wp-migrate-sync/internal/report"
	"github.com/frhel/wp-migrate-sync/internal/runner"
	"github.com/frhel/wp-migrate-sync/internal/runner/runnertest"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// setup creates a full wpms MCP server + client over in-memory transports.
func setup(t *testing.T, cfg *config.Config, fake *runnertest.Fake) *mcp.ClientSession {
	t.Helper()
	ctx := context.Background()

	store := report.NewLRUStore(5, report.NewDiskStore(filepath.Join(t.TempDir(), "wpms", "runs")))
	server := NewServer(cfg, fake, store, t.TempDir())

	ct, st := mcp.NewInMemoryTransports()
	ss, err := server.Connect(ctx, st, nil)
	if err != nil {
		t.Fatalf("server.Connect: %v", err)
	}

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "v0.0.1"}, nil)
	cs, err := client.Connect(ctx, ct, nil)
	if err != nil {
		t.Fatalf("client.Connect: %v", err)
	}

	t.Cleanup(func() {
		_ = cs.Close()
		_ = ss.Wait()
	})

	return cs
}

func callTool(t *testing.T, cs *mcp.ClientSession, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	if err != nil {
		t.Fatalf("CallTool(%s): %v", name, err)
	}
	return res
}

func resultText(r *mcp.CallToolResult) string {
	var parts []string
	for _, c := range r.Content {
		if tc, ok := c.(*mcp.TextContent); ok {
			parts = append(parts, tc.Text)
		}
	}
	return strings.Join(parts, "\n")
}

func runID(t *testing.T, text string) string {
	t.Helper()
	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(line, "Run: ") {
			return strings.TrimPrefix(line, "Run: ")
		}
	}
	t.Fatalf("no Run ID found in output:\n%s", text)
	return ""
}

func siteConfig() *config.Config {
	return &config.Config{Source: "/srv/src", Destination: "/srv/dst"}
}

func writable() map[string]*runner.Result {
	return map[string]*runner.Result{"[ -w ": runnertest.Out("true\n")}
}

func TestListTools(t *testing.T) {
	cs := setup(t, siteConfig(), &runnertest.Fake{})
	res, err := cs.ListTools(context.Background(), nil)
	if err != nil {
		t.Fatalf("ListTools: %v", err)
	}
	got := make(map[string]bool)
	for _, tool := range res.Tools {
		got[tool.Name] = true
	}
	for _, name := range []string{"wpms_dependencies", "wpms_preflight", "wpms_inspect"} {
		if !got[name] {
			t.Errorf("tool %s not registered", name)
		}
	}
	if len(res.Tools) != 3 {
		t.Errorf("got %d tools, want 3", len(res.Tools))
	}
}

// --- wpms_dependencies ---

func TestDependencies_AllAvailable(t *testing.T) {
	cs := setup(t, siteConfig(), &runnertest.Fake{})
	res := callTool(t, cs, "wpms_dependencies", nil)
	text := resultText(res)
	if res.IsError {
		t.Fatalf("unexpected error: %s", text)
	}
	if !strings.Contains(text, "Dependencies: 4/4 available") {
		t.Errorf("expected 4/4 available, got:\n%s", text)
	}
	if !strings.Contains(text, "Status: PASS") {
		t.Errorf("expected Status: PASS, got:\n%s", text)
	}
}

func TestDependencies_MissingIsNotAnError(t *testing.T) {
	cs := setup(t, siteConfig(), &runnertest.Fake{Results: runnertest.Absent("rsync")})
	res := callTool(t, cs, "wpms_dependencies", nil)
	text := resultText(res)
	if res.IsError {
		t.Fatalf("a missing dependency is a result, not a tool error: %s", text)
	}
	if !strings.Contains(text, "Status: FAIL") {
		t.Errorf("expected Status: FAIL, got:\n%s", text)
	}
	if !strings.Contains(text, "rsync: missing") {
		t.Errorf("expected rsync: missing, got:\n%s", text)
	}
}

// --- wpms_preflight ---

func TestPreflight_Passing(t *testing.T) {
	cs := setup(t, siteConfig(), &runnertest.Fake{Prefixes: writable()})
	res := callTool(t, cs, "wpms_preflight", nil)
	text := resultText(res)
	if res.IsError {
		t.Fatalf("unexpected error: %s", text)
	}
	if !strings.Contains(text, "Preflight: 6/6 checks passed") {
		t.Errorf("expected 6/6 checks passed, got:\n%s", text)
	}
	if strings.Contains(text, "wpms_inspect") {
		t.Errorf("no inspect hint expected on success, got:\n%s", text)
	}
}

func TestPreflight_DestinationOverride(t *testing.T) {
	fake := &runnertest.Fake{Prefixes: writable()}
	cs := setup(t, siteConfig(), fake)
	res := callTool(t, cs, "wpms_preflight", map[string]any{"destination": "/srv/other"})
	if res.IsError {
		t.Fatalf("unexpected error: %s", resultText(res))
	}
	if !fake.Called("wp core is-installed --path=/srv/other") {
		t.Errorf("destination override not used; calls: %v", fake.Calls())
	}
	if fake.Called("wp core is-installed --path=/srv/dst") {
		t.Error("configured destination should have been replaced")
	}
}

func TestPreflight_RequiresDestination(t *testing.T) {
	cs := setup(t, &config.Config{}, &runnertest.Fake{})
	res := callTool(t, cs, "wpms_preflight", nil)
	if !res.IsError {
		t.Fatal("expected IsError without a destination")
	}
	if !strings.Contains(resultText(res), "destination is required") {
		t.Errorf("unexpected message: %s", resultText(res))
	}
}

func TestPreflight_FailureThenInspect(t *testing.T) {
	fake := &runnertest.Fake{
		Results: map[string]*runner.Result{
			"wp db check --path=/srv/src": runnertest.Fail("Error: Error establishing a database connection."),
		},
		Prefixes: writable(),
	}
	cs := setup(t, siteConfig(), fake)

	res := callTool(t, cs, "wpms_preflight", nil)
	text := resultText(res)
	if res.IsError {
		t.Fatalf("failed checks are a result, not a tool error: %s", text)
	}
	if !strings.Contains(text, "Status: FAIL") {
		t.Errorf("expected Status: FAIL, got:\n%s", text)
	}
	if !strings.Contains(text, "source/database: fail (source /srv/src has no reachable database)") {
		t.Errorf("expected database failure line, got:\n%s", text)
	}

	insp := callTool(t, cs, "wpms_inspect", map[string]any{
		"run_id": runID(t, text),
		"source": "preflight",
	})
	inspText := resultText(insp)
	if insp.IsError {
		t.Fatalf("unexpected error from wpms_inspect: %s", inspText)
	}
	if !strings.Contains(inspText, "[preflight] source/database: source /srv/src has no reachable database") {
		t.Errorf("expected preflight diagnostic, got:\n%s", inspText)
	}
	if !strings.Contains(inspText, "Error establishing a database connection.") {
		t.Errorf("expected command detail, got:\n%s", inspText)
	}
}

// --- wpms_inspect ---

func TestInspect_MissingRunID(t *testing.T) {
	cs := setup(t, siteConfig(), &runnertest.Fake{})
	_, err := cs.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "wpms_inspect",
		Arguments: map[string]any{"source": "preflight"},
	})
	if err == nil {
		t.Error("expected error for missing run_id")
	}
}

func TestInspect_InvalidRunID(t *testing.T) {
	cs := setup(t, siteConfig(), &runnertest.Fake{})
	res := callTool(t, cs, "wpms_inspect", map[string]any{"run_id": "nonexistent-id"})
	if !res.IsError {
		t.Error("expected IsError for invalid run_id")
	}
}

func TestInspect_UnknownSource(t *testing.T) {
	cs := setup(t, siteConfig(), &runnertest.Fake{})
	res := callTool(t, cs, "wpms_inspect", map[string]any{"run_id": "x", "source": "lint"})
	if !res.IsError {
		t.Error("expected IsError for unknown source")
	}
}

func TestInspect_NoFailures(t *testing.T) {
	cs := setup(t, siteConfig(), &runnertest.Fake{})
	deps := resultText(callTool(t, cs, "wpms_dependencies", nil))
	id := runID(t, deps)

	res := callTool(t, cs, "wpms_inspect", map[string]any{"run_id": id})
	text := resultText(res)
	if res.IsError {
		t.Fatalf("unexpected error: %s", text)
	}
	if !strings.Contains(text, "No run failures in run "+id+" (deps).") {
		t.Errorf("unexpected output:\n%s", text)
	}
}

// --- roots ---

func TestUseDir_LeavesSharedRunnerAlone(t *testing.T) {
	dir := t.TempDir()
	conf := "source = /srv/src\ndestination = /srv/dst\n"
	if err := os.WriteFile(filepath.Join(dir, config.DefaultFileName), []byte(conf), 0o644); err != nil {
		t.Fatal(err)
	}

	shared := &runner.Runner{Dir: "/start"}
	h := &handler{cfg: &config.Config{Destination: "/old"}, runner: shared, workDir: "/start"}
	if err := h.useDir(dir); err != nil {
		t.Fatalf("useDir: %v", err)
	}

	e := h.engine(nil)
	if shared.Dir != "/start" {
		t.Errorf("shared runner Dir = %q, want it untouched", shared.Dir)
	}
	got, ok := e.Deps.Runner.(*runner.Runner)
	if !ok {
		t.Fatalf("engine runner is %T, want *runner.Runner", e.Deps.Runner)
	}
	if got == shared || got.Dir != dir {
		t.Errorf("engine runner Dir = %q (shared=%t), want a copy in %q", got.Dir, got == shared, dir)
	}
	if e.Config.Source != "/srv/src" || e.Config.Destination != "/srv/dst" {
		t.Errorf("config from roots not loaded: source=%q destination=%q", e.Config.Source, e.Config.Destination)
	}
}

func TestUseDir_KeepsPinnedSides(t *testing.T) {
	dir := t.TempDir()
	conf := "source = /srv/src\ndestination = /srv/dst\n"
	if err := os.WriteFile(filepath.Join(dir, config.DefaultFileName), []byte(conf), 0o644); err != nil {
		t.Fatal(err)
	}

	h := &handler{cfg: &config.Config{}, runner: &runnertest.Fake{}}
	WithSides("", "deploy@example.com:/var/www")(&h.opts)
	if err := h.useDir(dir); err != nil {
		t.Fatalf("useDir: %v", err)
	}

	e := h.engine(nil)
	if e.Config.Destination != "deploy@example.com:/var/www" {
		t.Errorf("destination = %q, want the pinned flag value", e.Config.Destination)
	}
	if e.Config.Source != "/srv/src" {
		t.Errorf("source = %q, want the discovered value", e.Config.Source)
	}
}
