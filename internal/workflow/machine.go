package workflow

import (
	"fmt"

	"github.com/felixgeelhaar/statekit"
)

// Workflow states, in the order a successful run visits them.
const (
	StateIdle         = "idle"
	StateDependencies = "dependencies"
	StateTool         = "tool"
	StateInstall      = "install"
	StateContent      = "content"
	StateDone         = "done"
	StateFailed       = "failed"
)

// Workflow events.
const (
	EventStart        = "START"
	EventDepsOK       = "DEPS_OK"
	EventToolPresent  = "TOOL_PRESENT"
	EventToolMissing  = "TOOL_MISSING"
	EventInstalled    = "INSTALLED"
	EventChecksPassed = "CHECKS_PASSED"
	EventFatal        = "FATAL"
	EventReset        = "RESET"
)

// flowContext is empty: the report carries everything a run records.
type flowContext struct{}

// flow tracks which stage of the installer workflow is running. The
// machine is linear; any non-terminal state can fail.
type flow struct {
	interp *statekit.Interpreter[flowContext]
}

func newFlow() (*flow, error) {
	machine, err := statekit.NewMachine[flowContext]("wpms-workflow").
		WithInitial(StateIdle).
		WithContext(flowContext{}).
		State(StateIdle).
		On(EventStart).Target(StateDependencies).Done().
		State(StateDependencies).
		On(EventDepsOK).Target(StateTool).
		On(EventFatal).Target(StateFailed).Done().
		State(StateTool).
		On(EventToolPresent).Target(StateContent).
		On(EventToolMissing).Target(StateInstall).
		On(EventFatal).Target(StateFailed).Done().
		State(StateInstall).
		On(EventInstalled).Target(StateContent).
		On(EventFatal).Target(StateFailed).Done().
		State(StateContent).
		On(EventChecksPassed).Target(StateDone).
		On(EventFatal).Target(StateFailed).Done().
		State(StateDone).
		On(EventReset).Target(StateIdle).Done().
		State(StateFailed).
		On(EventReset).Target(StateIdle).Done().
		Build()
	if err != nil {
		return nil, fmt.Errorf("building workflow machine: %w", err)
	}

	interp := statekit.NewInterpreter(machine)
	interp.Start()
	return &flow{interp: interp}, nil
}

func (f *flow) send(event string) {
	f.interp.Send(statekit.Event{Type: statekit.EventType(event)})
}

func (f *flow) current() string {
	return string(f.interp.State().Value)
}

func (f *flow) stop() {
	f.interp.Stop()
}
