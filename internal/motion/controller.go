package motion

import (
	"errors"
	"math"
	"math/rand/v2"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/banshee-data/shieldball/internal/geom"
	"github.com/banshee-data/shieldball/internal/monitoring"
)

// ErrNoCandidates is returned by Select when the candidate set is empty.
// The caller retries on a later tick.
var ErrNoCandidates = errors.New("motion: no candidates to select from")

// Controller moves one ball toward randomly selected anchors with an
// escalating speed ramp. It owns the MotionState exclusively and is not
// safe for concurrent use.
//
// Per tick, Advance:
//  1. Re-resolves the target key against the current anchors.
//  2. Adds an orbit offset of the phase radius at the rotation angle.
//  3. Measures the displacement d to that goal.
//  4. Latches the initial distance on the first non-zero d.
//  5. Accumulates dwell time.
//  6. Derives a time factor, linear in dwell and capped at MaxSpeedFactor.
//  7. Derives a distance factor; the near-field stall term is uncapped.
//  8. Interpolates by BaseSpeed × time factor × distance factor, clamped to
//     the goal.
//  9. Flags arrival from the pre-step distance.
type Controller struct {
	cfg   Config
	rng   *rand.Rand
	state MotionState

	timeFactor     float64
	distanceFactor float64
}

// NewController returns a Controller placed at start. A nil rng draws from
// a randomly seeded source.
func NewController(cfg Config, start r2.Vec, rng *rand.Rand) *Controller {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Controller{
		cfg:            cfg,
		rng:            rng,
		state:          MotionState{Pos: start},
		timeFactor:     1,
		distanceFactor: 1,
	}
}

// Config returns the controller configuration.
func (c *Controller) Config() Config { return c.cfg }

// Select picks a uniformly random anchor from set as the new target for
// phase. Dwell time and initial distance are reset. On an empty set the
// state is left untouched and ErrNoCandidates is returned.
func (c *Controller) Select(set *CandidateSet, phase Phase) (Target, error) {
	n := set.Len()
	if n == 0 {
		return Target{}, ErrNoCandidates
	}
	a := set.At(c.rng.IntN(n))
	t := Target{
		ID:    "tgt_" + uuid.NewString(),
		Key:   a.Key,
		Phase: phase,
		Pos:   a.Pos,
	}
	c.state.Target = t
	c.state.HasTarget = true
	c.state.Dwell = 0
	c.state.InitialDistance = 0
	c.state.AtDestination = false
	c.timeFactor, c.distanceFactor = 1, 1
	return t, nil
}

// Advance runs one tick of dt seconds and returns the new position. A
// non-positive dt, a missing target or a key that no longer resolves leaves
// the state unchanged.
func (c *Controller) Advance(dt float64, resolver AnchorResolver) r2.Vec {
	s := &c.state
	if dt <= 0 {
		return s.Pos
	}
	if !s.HasTarget {
		monitoring.Recoverablef("motion", "advance without a target at (%.1f, %.1f)", s.Pos.X, s.Pos.Y)
		return s.Pos
	}
	var (
		anchor r2.Vec
		ok     bool
	)
	if resolver != nil {
		anchor, ok = resolver.Resolve(s.Target.Key)
	}
	if !ok {
		monitoring.Recoverablef("resolve", "target %s no longer resolves, holding (%.1f, %.1f)", s.Target.Key, s.Pos.X, s.Pos.Y)
		return s.Pos
	}

	s.Rotation = math.Mod(s.Rotation+c.cfg.AngularSpeed*dt, 2*math.Pi)
	goal := geom.Polar(anchor, s.Rotation, c.cfg.orbitRadius(s.Target.Phase))

	disp := r2.Sub(goal, s.Pos)
	d := r2.Norm(disp)
	if s.InitialDistance == 0 && d > 0 {
		s.InitialDistance = d
	}
	s.Dwell += dt

	c.timeFactor = c.timeFactorFor(s.Dwell)
	c.distanceFactor = c.distanceFactorFor(d, s.InitialDistance, s.Dwell)

	frac := math.Min(c.cfg.BaseSpeed*c.timeFactor*c.distanceFactor, 1)
	s.Pos = r2.Add(s.Pos, r2.Scale(frac, disp))
	s.AtDestination = d <= c.cfg.ArrivalThreshold
	return s.Pos
}

func (c *Controller) timeFactorFor(dwell float64) float64 {
	return math.Min(1+c.cfg.TimeRate*dwell, c.cfg.MaxSpeedFactor)
}

// distanceFactorFor is neutral until the initial distance is latched. Inside
// the near field it overrides the ratio factors and, past StallAfter, grows
// without bound.
func (c *Controller) distanceFactorFor(d, initial, dwell float64) float64 {
	if initial <= 0 {
		return 1
	}
	if d < c.cfg.NearFieldDistance {
		f := c.cfg.NearFieldBase + (c.cfg.NearFieldDistance-d)*c.cfg.NearFieldSlope
		if stall := c.cfg.StallAfter.Seconds(); dwell > stall {
			f += (dwell - stall) * c.cfg.StallRate
		}
		return f
	}
	switch {
	case d < c.cfg.CloseRatio*initial:
		return c.cfg.CloseFactor
	case d < c.cfg.ApproachRatio*initial:
		return c.cfg.ApproachFactor
	}
	return 1
}

// AtTarget reports whether the last tick started within the arrival
// threshold.
func (c *Controller) AtTarget() bool { return c.state.AtDestination }

// ResetDwell zeroes the dwell time without changing the target.
func (c *Controller) ResetDwell() { c.state.Dwell = 0 }

// HasTarget reports whether a target is held.
func (c *Controller) HasTarget() bool { return c.state.HasTarget }

// Target returns the held target.
func (c *Controller) Target() (Target, bool) { return c.state.Target, c.state.HasTarget }

// ClearTarget drops the held target so the next tick selects a new one.
func (c *Controller) ClearTarget() {
	c.state.Target = Target{}
	c.state.HasTarget = false
	c.state.AtDestination = false
}

// Position returns the current position.
func (c *Controller) Position() r2.Vec { return c.state.Pos }

// State returns a copy of the motion state.
func (c *Controller) State() MotionState { return c.state }

// Factors returns the time and distance factors applied on the last tick.
func (c *Controller) Factors() (timeFactor, distanceFactor float64) {
	return c.timeFactor, c.distanceFactor
}
