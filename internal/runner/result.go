package runner

import "time"

// Result holds the output of a single shell invocation.
type Result struct {
	RunID     string        // unique identifier for this invocation
	Command   string        // the command string passed to the shell
	ExitCode  int           // process exit code
	Stdout    []byte        // captured stdout (may be truncated)
	Stderr    []byte        // captured stderr (may be truncated)
	Truncated bool          // true if output exceeded the size cap
	Duration  time.Duration // wall time from spawn to exit
}

// Success reports whether the process exited with status 0.
func (r *Result) Success() bool {
	return r.ExitCode == 0
}
