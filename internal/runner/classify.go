package runner

import (
	"bytes"
	"strings"
)

// Classifier decides whether a Result counts as a failure.
type Classifier func(*Result) bool

// FailureKeywords are matched against lowercased stdout by KeywordClassifier.
var FailureKeywords = []string{
	"error",
	"failed",
	"not found",
	"no such file or directory",
	"permission denied",
	"command not found",
}

// KeywordClassifier reports a failure when the exit status is non-zero or
// stdout contains one of FailureKeywords, case-insensitively.
//
// Some tools, WP-CLI behind a shell pipeline in particular, print errors to
// stdout and still exit 0, so the exit status alone is not enough. The scan
// is a heuristic: output that legitimately contains "error" (a post title,
// say) is reported as a failure too. Stderr is not scanned.
func KeywordClassifier(res *Result) bool {
	if res == nil {
		return true
	}
	if !res.Success() {
		return true
	}
	out := bytes.ToLower(res.Stdout)
	for _, kw := range FailureKeywords {
		if bytes.Contains(out, []byte(kw)) {
			return true
		}
	}
	return false
}

// ExitCodeClassifier reports a failure only on a non-zero exit status.
func ExitCodeClassifier(res *Result) bool {
	return res == nil || !res.Success()
}

// Failed applies the default classifier.
func Failed(res *Result) bool {
	return KeywordClassifier(res)
}

// OrDefault returns the default classifier when c is nil.
func (c Classifier) OrDefault() Classifier {
	if c == nil {
		return KeywordClassifier
	}
	return c
}

// FirstLine returns the first non-empty line of stderr, falling back to stdout.
func (r *Result) FirstLine() string {
	if line := firstLine(string(r.Stderr)); line != "" {
		return line
	}
	return firstLine(string(r.Stdout))
}

func firstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			return line
		}
	}
	return ""
}
