package domain

// State is a step of the provisioning state machine.
type State uint8

const (
	// StateInit is the state before any directory is prepared.
	StateInit State = iota
	// StateInstallingRuntime installs the binary-distribution runtime.
	StateInstallingRuntime
	// StateInstallingInterpreter builds and installs the interpreter.
	StateInstallingInterpreter
	// StateVerifying runs each tool's self-report command. It never fails.
	StateVerifying
	// StateEmitting writes the environment descriptor.
	StateEmitting
	// StateDone means both dependencies are installed and the descriptor is written.
	StateDone
	// StateFailed is absorbing and reachable from every non-terminal state.
	StateFailed
)

var stateNames = [...]string{
	StateInit:                  "init",
	StateInstallingRuntime:     "installing-runtime",
	StateInstallingInterpreter: "installing-interpreter",
	StateVerifying:             "verifying",
	StateEmitting:              "emitting",
	StateDone:                  "done",
	StateFailed:                "failed",
}

// String returns the state name as logged and written to the manifest.
func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed
}

// CanTransition reports whether moving from s to next is allowed.
func (s State) CanTransition(next State) bool {
	if s.Terminal() {
		return false
	}
	if next == StateFailed {
		return true
	}
	switch s {
	case StateInit:
		return next == StateInstallingRuntime
	case StateInstallingRuntime:
		return next == StateInstallingInterpreter
	case StateInstallingInterpreter:
		return next == StateVerifying
	case StateVerifying:
		return next == StateEmitting
	case StateEmitting:
		return next == StateDone
	default:
		return false
	}
}
