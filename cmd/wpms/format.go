package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/frhel/wp-migrate-sync/internal/report"
)

var (
	okText   = color.New(color.FgGreen).SprintFunc()
	failText = color.New(color.FgRed, color.Bold).SprintFunc()
	dimText  = color.New(color.Faint).SprintFunc()
)

// printReport writes rep as indented JSON or as a human summary.
func printReport(w io.Writer, rep *report.Report, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	}
	_, err := io.WriteString(w, formatReport(rep))
	return err
}

func formatReport(rep *report.Report) string {
	var b []byte
	w := func(format string, args ...any) {
		b = fmt.Appendf(b, format, args...)
	}

	if rep.OK() {
		w("%s\n", okText("ok"))
	} else {
		w("%s\n", failText("FAIL"))
	}
	w("%s\n\n", dimText(fmt.Sprintf("run %s (%s)", rep.ID, rep.Kind)))

	if len(rep.Available)+len(rep.Missing) > 0 {
		w("Dependencies:\n")
		for _, name := range rep.Available {
			w("  %-15s %s\n", name, okText("ok"))
		}
		for _, name := range rep.Missing {
			w("  %-15s %s\n", name, failText("missing"))
		}
		w("\n")
	}

	if len(rep.InstallStep) > 0 {
		w("WP-CLI install:\n")
		for _, s := range rep.InstallStep {
			if s.Failed {
				w("  %-40s %s\n", s.Label, failText(fmt.Sprintf("FAIL (exit %d)", s.ExitCode)))
				if s.Output != "" {
					w("      %s\n", s.Output)
				}
				continue
			}
			w("  %-40s %s\n", s.Label, okText("ok"))
		}
		w("\n")
	}

	if len(rep.Checks) > 0 {
		w("Preflight:\n")
		for _, c := range rep.Checks {
			name := c.Side + "/" + c.Name
			if c.Passed {
				w("  %-25s %s\n", name, okText("ok"))
				continue
			}
			w("  %-25s %s\n", name, failText("FAIL"))
			w("      %s\n", c.Message)
			if c.Detail != "" {
				w("      %s\n", dimText(c.Detail))
			}
		}
		w("\n")
	}

	if rep.Error != "" && len(rep.Checks)+len(rep.Missing)+len(rep.InstallStep) == 0 {
		w("%s\n\n", firstLine(rep.Error))
	}
	if rep.OK() && rep.Kind == report.Run {
		w("Both sides are ready to migrate.\n")
	}
	return string(b)
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
