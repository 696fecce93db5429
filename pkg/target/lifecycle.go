package target

import (
	"go.uber.org/atomic"
)

// State is a phase in the life of the stopthread process.
type State int32

const (
	Startup State = iota
	ProcessingArguments
	AwaitingTermination
	Terminated
)

func (s State) String() string {
	switch s {
	case Startup:
		return "startup"
	case ProcessingArguments:
		return "processing-arguments"
	case AwaitingTermination:
		return "awaiting-termination"
	case Terminated:
		return "terminated"
	}
	return "unknown"
}

// Lifecycle tracks the process state. It only moves forward.
type Lifecycle struct {
	state *atomic.Int32
}

func NewLifecycle() *Lifecycle {
	return &Lifecycle{state: atomic.NewInt32(int32(Startup))}
}

func (l *Lifecycle) State() State {
	return State(l.state.Load())
}

// Advance moves to next and reports whether it did. Moving backwards or
// staying put is refused.
func (l *Lifecycle) Advance(next State) bool {
	for {
		cur := l.state.Load()
		if int32(next) <= cur {
			return false
		}
		if l.state.CAS(cur, int32(next)) {
			return true
		}
	}
}
