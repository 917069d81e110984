package control

import "sync/atomic"

// GateState is the state of a one-shot Gate.
type GateState int32

const (
	NotTriggered GateState = iota
	Triggered
)

func (s GateState) String() string {
	switch s {
	case NotTriggered:
		return "not-triggered"
	case Triggered:
		return "triggered"
	default:
		return "unknown"
	}
}

// Gate opens exactly once over its lifetime. The zero value is NotTriggered.
type Gate struct {
	state atomic.Int32
}

// Trigger moves the gate to Triggered and reports whether this call did it.
// Among concurrent callers exactly one gets true.
func (g *Gate) Trigger() bool {
	return g.state.CompareAndSwap(int32(NotTriggered), int32(Triggered))
}

// State returns the current state.
func (g *Gate) State() GateState {
	return GateState(g.state.Load())
}
