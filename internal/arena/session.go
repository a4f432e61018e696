package arena

import (
	"errors"
	"fmt"
	"time"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/banshee-data/shieldball/internal/config"
	"github.com/banshee-data/shieldball/internal/geom"
	"github.com/banshee-data/shieldball/internal/monitoring"
	"github.com/banshee-data/shieldball/internal/motion"
	"github.com/banshee-data/shieldball/internal/occlusion"
)

// SessionConfig holds the scheduler timings.
type SessionConfig struct {
	MaxFrameDelta     time.Duration // Clamp on the per-tick delta (default: 100ms)
	ShieldedPhaseHold time.Duration // Time at target before leaving cover (default: 2s)
	ExposedPhaseHold  time.Duration // Time at target before seeking cover (default: 1.5s)
	BallRadius        float64       // Hit-test radius of the ball (default: 6)
	StartPhase        motion.Phase
}

// SessionConfigFromTuning builds a SessionConfig from a loaded TuningConfig.
func SessionConfigFromTuning(cfg *config.TuningConfig) SessionConfig {
	return SessionConfig{
		MaxFrameDelta:     cfg.GetMaxFrameDelta(),
		ShieldedPhaseHold: cfg.GetShieldedPhaseHold(),
		ExposedPhaseHold:  cfg.GetExposedPhaseHold(),
		BallRadius:        cfg.GetBallRadius(),
		StartPhase:        motion.PhaseShielded,
	}
}

func (c SessionConfig) hold(p motion.Phase) time.Duration {
	if p == motion.PhaseExposed {
		return c.ExposedPhaseHold
	}
	return c.ShieldedPhaseHold
}

// TickReport describes one Session tick.
type TickReport struct {
	Tick           int
	Elapsed        time.Duration
	Delta          time.Duration // after clamping
	Phase          motion.Phase  // phase in force at the end of the tick
	Pos            r2.Vec
	Target         motion.Target
	HasTarget      bool
	AtTarget       bool
	Selected       bool // a new target was selected this tick
	PhaseChanged   bool
	Result         occlusion.ClassificationResult
	TimeFactor     float64
	DistanceFactor float64
}

// ShotResult is the outcome of Session.Shoot.
type ShotResult struct {
	Hit     bool
	Blocked bool // the shot reached the ball but a barrier covered it
	Depth   float64
}

// Session is the per-frame scheduler around one ball. It is not safe for
// concurrent use; the caller drives Tick from a single loop.
type Session struct {
	cfg     SessionConfig
	clock   Clock
	lattice *Lattice
	raster  *Raster
	ctrl    *motion.Controller
	cls     *occlusion.Classifier

	phase   motion.Phase
	started bool
	paused  bool
	last    int64
	elapsed time.Duration
	held    time.Duration // accumulated time at target in the current phase
	tick    int
	snap    Snapshot
	stats   Stats
}

// NewSession wires a session. The lattice is posed and rasterised at
// time zero so Shoot and Snapshot are usable before the first Tick.
func NewSession(cfg SessionConfig, clock Clock, lattice *Lattice, raster *Raster, ctrl *motion.Controller, cls *occlusion.Classifier) (*Session, error) {
	if clock == nil || lattice == nil || raster == nil || ctrl == nil || cls == nil {
		return nil, errors.New("arena: session needs a clock, lattice, raster, controller and classifier")
	}
	if cfg.MaxFrameDelta <= 0 {
		return nil, fmt.Errorf("MaxFrameDelta must be positive, got %s", cfg.MaxFrameDelta)
	}
	s := &Session{
		cfg:     cfg,
		clock:   clock,
		lattice: lattice,
		raster:  raster,
		ctrl:    ctrl,
		cls:     cls,
		phase:   cfg.StartPhase,
	}
	s.pose()
	return s, nil
}

func (s *Session) pose() {
	s.lattice.Update(s.elapsed)
	s.snap = s.lattice.Snapshot()
	s.raster.Draw(s.snap.Barriers)
}

// Tick advances the session by the clock delta since the previous tick.
// The first tick has a zero delta.
func (s *Session) Tick() TickReport {
	now := s.clock.NowMillis()
	if !s.started {
		s.started = true
		s.last = now
	}
	delta := time.Duration(now-s.last) * time.Millisecond
	s.last = now
	if delta < 0 {
		delta = 0
	}
	if delta > s.cfg.MaxFrameDelta {
		delta = s.cfg.MaxFrameDelta
	}

	rep := TickReport{Tick: s.tick}
	s.tick++
	if s.paused {
		delta = 0
	}
	s.elapsed += delta
	s.pose()

	if !s.ctrl.HasTarget() {
		rep.Selected = s.selectTarget()
	}
	set := s.snap.Candidates(s.phase)
	pos := s.ctrl.Advance(delta.Seconds(), set)

	if s.ctrl.AtTarget() && delta > 0 {
		s.held += delta
		if s.held >= s.cfg.hold(s.phase) {
			s.phase = s.phase.Opposite()
			s.held = 0
			s.ctrl.ClearTarget()
			rep.PhaseChanged = true
			rep.Selected = s.selectTarget() || rep.Selected
		}
	}

	res := s.cls.Classify(pos, s.snap.Exposed.Points(), s.snap.Shielded.Points(), s.raster)

	rep.Elapsed = s.elapsed
	rep.Delta = delta
	rep.Phase = s.phase
	rep.Pos = pos
	rep.Target, rep.HasTarget = s.ctrl.Target()
	rep.AtTarget = s.ctrl.AtTarget()
	rep.Result = res
	rep.TimeFactor, rep.DistanceFactor = s.ctrl.Factors()
	s.stats.observe(rep)
	return rep
}

// selectTarget picks a target for the current phase. An empty set is
// logged and retried on the next tick.
func (s *Session) selectTarget() bool {
	if _, err := s.ctrl.Select(s.snap.Candidates(s.phase), s.phase); err != nil {
		monitoring.Recoverablef("select", "%s phase: %v", s.phase, err)
		return false
	}
	return true
}

// Pause freezes the simulation; ticks keep classifying the frozen frame.
func (s *Session) Pause() { s.paused = true }

// Resume continues after Pause. The speed ramp restarts from its base.
func (s *Session) Resume() {
	if !s.paused {
		return
	}
	s.paused = false
	s.ctrl.ResetDwell()
}

// Paused reports whether the session is paused.
func (s *Session) Paused() bool { return s.paused }

// Shoot tests a shot of radius r at p. A shot hits when it overlaps the
// ball and the ball does not overlap any barrier.
func (s *Session) Shoot(p r2.Vec, r float64) ShotResult {
	ball := geom.NewCircle(s.ctrl.Position(), s.cfg.BallRadius)
	resp := geom.TestOverlap(geom.NewCircle(p, r), ball)
	res := ShotResult{}
	if resp.Overlapping {
		res.Depth = resp.Overlap
		res.Hit = true
		for _, b := range s.snap.Barriers {
			if geom.Overlaps(ball, b) {
				res.Hit = false
				res.Blocked = true
				break
			}
		}
	}
	s.stats.observeShot(res)
	return res
}

// Phase returns the phase currently sought.
func (s *Session) Phase() motion.Phase { return s.phase }

// Snapshot returns the lattice snapshot of the latest tick.
func (s *Session) Snapshot() Snapshot { return s.snap }

// Raster returns the frame buffer.
func (s *Session) Raster() *Raster { return s.raster }

// Position returns the ball position.
func (s *Session) Position() r2.Vec { return s.ctrl.Position() }

// BallRadius returns the hit-test radius of the ball.
func (s *Session) BallRadius() float64 { return s.cfg.BallRadius }

// Stats returns a copy of the running statistics.
func (s *Session) Stats() Stats { return s.stats }
