package build

import "fmt"

// State is the position of a build in the pipeline.
type State int

const (
	StateStart State = iota
	StateTranslated
	StateCompiled
	StateSupportResolved
	StateSupportCompiled
	StateLinked
	StateDone
	StateAborted
)

var stateNames = [...]string{
	StateStart:           "START",
	StateTranslated:      "TRANSLATED",
	StateCompiled:        "COMPILED",
	StateSupportResolved: "SUPPORT_RESOLVED",
	StateSupportCompiled: "SUPPORT_COMPILED",
	StateLinked:          "LINKED",
	StateDone:            "DONE",
	StateAborted:         "ABORTED",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return stateNames[s]
}

// IsTerminal reports whether no further transition is allowed from s.
func IsTerminal(s State) bool {
	return s == StateDone || s == StateAborted
}

// Transition validates a move from one state to the next.
//
// The happy path is strictly linear. Aborted is reachable from every
// non-terminal state. A compile-only build stops in Compiled without a
// transition.
func Transition(from, to State) error {
	if IsTerminal(from) {
		return fmt.Errorf("invalid transition from terminal state %s to %s", from, to)
	}
	if to == StateAborted || to == from+1 {
		return nil
	}
	return fmt.Errorf("disallowed transition: %s -> %s", from, to)
}
