package motion

import (
	"gonum.org/v1/gonum/spatial/r2"
)

// Phase is the occlusion state the scheduler wants the ball to seek.
type Phase int

const (
	PhaseShielded Phase = iota // seek barrier cell centres
	PhaseExposed               // seek open grid intersections
)

func (p Phase) String() string {
	if p == PhaseExposed {
		return "exposed"
	}
	return "shielded"
}

// Opposite returns the other phase.
func (p Phase) Opposite() Phase {
	if p == PhaseExposed {
		return PhaseShielded
	}
	return PhaseExposed
}

// Target is a selected goal. Targets are replaced on every selection and
// never modified in place.
type Target struct {
	ID    string    // unique per selection
	Key   AnchorKey // re-resolved every tick
	Phase Phase
	Pos   r2.Vec // coordinates captured at selection
}

// MotionState is a snapshot of the controller's per-ball state.
type MotionState struct {
	Pos             r2.Vec
	Target          Target
	HasTarget       bool
	Dwell           float64 // seconds since selection
	InitialDistance float64 // first non-zero distance after selection
	Rotation        float64 // orbit phase in [0, 2π)
	AtDestination   bool
}
