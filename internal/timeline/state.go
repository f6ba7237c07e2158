package timeline

import "strings"

// State is the lifecycle state of a composition.
type State int

const (
	StateNull State = iota
	StateReady
	StatePaused
	StatePlaying
)

var stateNames = [...]string{
	StateNull:    "null",
	StateReady:   "ready",
	StatePaused:  "paused",
	StatePlaying: "playing",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// ParseState maps a state name to a State.
func ParseState(name string) (State, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range stateNames {
		if n == name {
			return State(i), true
		}
	}
	return StateNull, false
}

// validTransition reports whether from -> to moves exactly one step.
func validTransition(from, to State) bool {
	switch {
	case from == StateNull && to == StateReady,
		from == StateReady && to == StatePaused,
		from == StatePaused && to == StatePlaying,
		from == StatePlaying && to == StatePaused,
		from == StatePaused && to == StateReady,
		from == StateReady && to == StateNull:
		return true
	}
	return false
}
