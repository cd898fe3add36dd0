// Package queue runs a labelled sequence of shell commands and reports a
// single verdict alongside every per-command result.
package queue

import (
	"context"
	"fmt"

	"github.com/frhel/wp-migrate-sync/internal/runner"
)

type operation struct {
	label   string
	command string
}

// Entry is the outcome of one queued command.
type Entry struct {
	Label   string
	Command string
	Result  *runner.Result
	Failed  bool
}

// FirstLine returns the first line of the entry's error output.
func (e Entry) FirstLine() string {
	if e.Result == nil {
		return ""
	}
	return e.Result.FirstLine()
}

// Outcome is the aggregate result of a Run.
type Outcome struct {
	OK      bool
	Entries []Entry
}

// Failures returns the failed entries in execution order.
func (o *Outcome) Failures() []Entry {
	var out []Entry
	for _, e := range o.Entries {
		if e.Failed {
			out = append(out, e)
		}
	}
	return out
}

// Queue holds commands to run in insertion order.
type Queue struct {
	runner   runner.Executor
	classify runner.Classifier
	pending  []operation
}

// New creates an empty queue. A nil classify uses runner.KeywordClassifier.
func New(r runner.Executor, classify runner.Classifier) *Queue {
	return &Queue{runner: r, classify: classify.OrDefault()}
}

// Enqueue appends a command. The label describes the step to the user.
func (q *Queue) Enqueue(label, command string) {
	q.pending = append(q.pending, operation{label: label, command: command})
}

// Len returns the number of commands waiting to run.
func (q *Queue) Len() int {
	return len(q.pending)
}

// Run executes every pending command in order and clears the queue.
// A classified failure does not stop later commands; OK is false if any
// command failed. A spawn error aborts the run and is returned together
// with the entries that completed before it.
func (q *Queue) Run(ctx context.Context) (*Outcome, error) {
	ops := q.pending
	q.pending = nil

	out := &Outcome{OK: true, Entries: make([]Entry, 0, len(ops))}
	for _, op := range ops {
		res, err := q.runner.Execute(ctx, op.command)
		if err != nil {
			out.OK = false
			return out, fmt.Errorf("%s: %w", op.label, err)
		}
		failed := q.classify(res)
		if failed {
			out.OK = false
		}
		out.Entries = append(out.Entries, Entry{
			Label:   op.label,
			Command: op.command,
			Result:  res,
			Failed:  failed,
		})
	}
	return out, nil
}
