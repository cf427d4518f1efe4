package ingest

import (
	"github.com/rotisserie/eris"
)

// State is the lifecycle state of a Controller.
type State int

const (
	StateIdle State = iota
	StateBackfilling
	StateListening
	StateShuttingDown
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateBackfilling:
		return "backfilling"
	case StateListening:
		return "listening"
	case StateShuttingDown:
		return "shutting_down"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// ErrIllegalTransition is returned when a state change is not allowed.
var ErrIllegalTransition = eris.New("illegal state transition")

// transitions lists the allowed next states. Backfill only ever precedes
// listening.
var transitions = map[State][]State{
	StateIdle:         {StateBackfilling, StateListening, StateShuttingDown},
	StateBackfilling:  {StateListening, StateShuttingDown},
	StateListening:    {StateShuttingDown},
	StateShuttingDown: {StateStopped},
}

func canTransition(from, to State) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}
