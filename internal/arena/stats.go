package arena

import (
	"github.com/banshee-data/shieldball/internal/motion"
	"github.com/banshee-data/shieldball/internal/occlusion"
)

// Stats accumulates per-session counters.
type Stats struct {
	Ticks        int
	Shielded     int // ticks classified Shielded
	Exposed      int // ticks classified Exposed
	Undetermined int // ticks classified Undetermined
	AtTarget     int // ticks that started within the arrival threshold
	Agreed       int // at-target ticks whose classification matched the phase
	Selections   int
	PhaseChanges int
	Shots        int
	Hits         int
	Blocked      int
}

func (s *Stats) observe(r TickReport) {
	s.Ticks++
	switch r.Result.Final {
	case occlusion.Shielded:
		s.Shielded++
	case occlusion.Exposed:
		s.Exposed++
	default:
		s.Undetermined++
	}
	if r.Selected {
		s.Selections++
	}
	if r.PhaseChanged {
		s.PhaseChanges++
	}
	if r.AtTarget && !r.PhaseChanged {
		s.AtTarget++
		if matches(r.Phase, r.Result.Final) {
			s.Agreed++
		}
	}
}

func (s *Stats) observeShot(r ShotResult) {
	s.Shots++
	if r.Hit {
		s.Hits++
	}
	if r.Blocked {
		s.Blocked++
	}
}

// Agreement returns the fraction of at-target ticks whose observed state
// matched the phase being sought, or 0 before any such tick.
func (s Stats) Agreement() float64 {
	if s.AtTarget == 0 {
		return 0
	}
	return float64(s.Agreed) / float64(s.AtTarget)
}

func matches(p motion.Phase, st occlusion.State) bool {
	switch p {
	case motion.PhaseShielded:
		return st == occlusion.Shielded
	case motion.PhaseExposed:
		return st == occlusion.Exposed
	}
	return false
}
