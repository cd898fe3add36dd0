// Package report persists the outcome of wpms runs so that failures can be
// inspected after the process has exited.
package report

import (
	"fmt"
	"time"
)

// Kind identifies the type of a run.
type Kind string

const (
	// Run is the full workflow.
	Run Kind = "run"
	// Deps is a dependency check only.
	Deps Kind = "deps"
	// Install is a WP-CLI install only.
	Install Kind = "install"
	// Preflight is the content checks only.
	Preflight Kind = "preflight"
)

// Store persists and retrieves reports.
type Store interface {
	Save(r *Report) error
	Load(id string) (*Report, error)
}

// Report holds the structured outcome of one run.
type Report struct {
	ID       string    `json:"id"`
	Kind     Kind      `json:"kind"`
	Started  time.Time `json:"started"`
	Finished time.Time `json:"finished"`
	State    string    `json:"state"` // last workflow state reached
	Source   string    `json:"source,omitempty"`
	Dest     string    `json:"destination,omitempty"`

	Available   []string `json:"available,omitempty"`
	Missing     []string `json:"missing,omitempty"`
	Installed   bool     `json:"installed,omitempty"` // WP-CLI was installed during this run
	InstallStep []Step   `json:"install_steps,omitempty"`
	Checks      []Check  `json:"checks,omitempty"`
	Error       string   `json:"error,omitempty"`
}

// OK reports whether the run finished without a fatal error.
func (r *Report) OK() bool {
	return r.Error == ""
}

// Step is one queued install command.
type Step struct {
	Label    string `json:"label"`
	Command  string `json:"command"`
	ExitCode int    `json:"exit_code"`
	Failed   bool   `json:"failed"`
	Output   string `json:"output,omitempty"` // first line of output on failure
}

// Check is one preflight check on one side.
type Check struct {
	Side    string `json:"side"`
	Path    string `json:"path"`
	Name    string `json:"name"`
	Passed  bool   `json:"passed"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// Diagnostic is a uniform view over every failure in a report.
type Diagnostic struct {
	Source  string // "dependency", "install", "preflight"
	Subject string // dependency name, step label, or "<side>/<check>"
	Message string
	Detail  string
}

// Diagnostics returns every failure recorded in r, in the order the
// workflow produced them.
func Diagnostics(r *Report) []Diagnostic {
	var out []Diagnostic
	for _, name := range r.Missing {
		out = append(out, Diagnostic{
			Source:  "dependency",
			Subject: name,
			Message: name + " is not installed",
		})
	}
	for _, s := range r.InstallStep {
		if !s.Failed {
			continue
		}
		out = append(out, Diagnostic{
			Source:  "install",
			Subject: s.Label,
			Message: fmt.Sprintf("%s exited %d", s.Command, s.ExitCode),
			Detail:  s.Output,
		})
	}
	for _, c := range r.Checks {
		if c.Passed {
			continue
		}
		out = append(out, Diagnostic{
			Source:  "preflight",
			Subject: c.Side + "/" + c.Name,
			Message: c.Message,
			Detail:  c.Detail,
		})
	}
	return out
}

// BySource filters diagnostics to one source. An empty source returns all.
func BySource(r *Report, source string) []Diagnostic {
	all := Diagnostics(r)
	if source == "" {
		return all
	}
	var out []Diagnostic
	for _, d := range all {
		if d.Source == source {
			out = append(out, d)
		}
	}
	return out
}
