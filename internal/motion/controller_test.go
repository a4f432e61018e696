package motion

import (
	"math"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/banshee-data/shieldball/internal/geom"
	"github.com/banshee-data/shieldball/internal/monitoring"
	"github.com/banshee-data/shieldball/internal/testutil"
)

const frame = 1.0 / 60

func testConfig() Config {
	return Config{
		BaseSpeed:         0.05,
		MaxSpeedFactor:    5,
		TimeRate:          0.2,
		ArrivalThreshold:  4,
		NearFieldDistance: 10,
		NearFieldBase:     2.0,
		NearFieldSlope:    0.3,
		StallAfter:        3 * time.Second,
		StallRate:         0.5,
		CloseRatio:        0.3,
		CloseFactor:       1.5,
		ApproachRatio:     0.8,
		ApproachFactor:    1.2,
		AngularSpeed:      3.0,
		ShieldedRadius:    1.5,
		ExposedRadius:     2.0,
	}
}

func seeded() *rand.Rand { return rand.New(rand.NewPCG(1, 2)) }

func single(key AnchorKey, pos r2.Vec) *CandidateSet {
	return NewCandidateSet([]Anchor{{Key: key, Pos: pos}})
}

func TestAdvance_ArrivalIsBoundedForAnyDistance(t *testing.T) {
	for _, d := range []float64{50, 500, 5000} {
		for _, phase := range []Phase{PhaseShielded, PhaseExposed} {
			set := single(CellKey(0, 0), r2.Vec{X: d, Y: 0})
			c := NewController(testConfig(), r2.Vec{}, seeded())
			_, err := c.Select(set, phase)
			require.NoError(t, err)

			arrived := -1
			for tick := 0; tick < 20*60; tick++ {
				c.Advance(frame, set)
				if c.AtTarget() {
					arrived = tick
					break
				}
			}
			assert.GreaterOrEqual(t, arrived, 0, "D=%.0f %s: no arrival within 20s", d, phase)
		}
	}
}

func TestAdvance_ZeroDeltaIsIdempotent(t *testing.T) {
	set := single(CellKey(1, 2), r2.Vec{X: 100, Y: 40})
	c := NewController(testConfig(), r2.Vec{X: 3, Y: 4}, seeded())
	_, err := c.Select(set, PhaseShielded)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		c.Advance(frame, set)
	}

	before := c.State()
	for i := 0; i < 100; i++ {
		assert.Equal(t, before.Pos, c.Advance(0, set))
		c.Advance(-frame, set)
	}
	assert.Equal(t, before, c.State())
}

func TestSelect_SingleCandidate(t *testing.T) {
	key := IntersectionKey(3, 4)
	set := single(key, r2.Vec{X: 7, Y: 9})
	c := NewController(testConfig(), r2.Vec{}, seeded())

	for i := 0; i < 50; i++ {
		tgt, err := c.Select(set, PhaseExposed)
		require.NoError(t, err)
		assert.Equal(t, key, tgt.Key)
		assert.Equal(t, r2.Vec{X: 7, Y: 9}, tgt.Pos)
		assert.Equal(t, PhaseExposed, tgt.Phase)
	}
}

func TestSelect_EmptySetYieldsNoTarget(t *testing.T) {
	c := NewController(testConfig(), r2.Vec{}, seeded())

	for _, set := range []*CandidateSet{nil, NewCandidateSet(nil)} {
		tgt, err := c.Select(set, PhaseShielded)
		assert.ErrorIs(t, err, ErrNoCandidates)
		assert.Equal(t, Target{}, tgt)
		assert.False(t, c.HasTarget())
	}
}

func TestSelect_EmptySetKeepsHeldTarget(t *testing.T) {
	c := NewController(testConfig(), r2.Vec{}, seeded())
	held, err := c.Select(single(CellKey(0, 0), r2.Vec{X: 10}), PhaseShielded)
	require.NoError(t, err)

	_, err = c.Select(NewCandidateSet(nil), PhaseExposed)
	assert.ErrorIs(t, err, ErrNoCandidates)

	got, ok := c.Target()
	assert.True(t, ok)
	assert.Equal(t, held, got)
}

func TestSelect_IsUniform(t *testing.T) {
	set := NewCandidateSet([]Anchor{
		{Key: CellKey(0, 0)}, {Key: CellKey(0, 1)}, {Key: CellKey(0, 2)},
	})
	c := NewController(testConfig(), r2.Vec{}, seeded())

	counts := map[AnchorKey]int{}
	for i := 0; i < 3000; i++ {
		tgt, err := c.Select(set, PhaseShielded)
		require.NoError(t, err)
		counts[tgt.Key]++
	}
	for k, n := range counts {
		assert.InDelta(t, 1000, n, 150, "key %s", k)
	}
	assert.Len(t, counts, 3)
}

func TestSelect_ResetsTrackers(t *testing.T) {
	set := single(CellKey(0, 0), r2.Vec{X: 100})
	c := NewController(testConfig(), r2.Vec{}, seeded())
	first, err := c.Select(set, PhaseShielded)
	require.NoError(t, err)
	for i := 0; i < 30; i++ {
		c.Advance(frame, set)
	}
	require.Greater(t, c.State().Dwell, 0.0)
	require.Greater(t, c.State().InitialDistance, 0.0)

	second, err := c.Select(set, PhaseShielded)
	require.NoError(t, err)

	st := c.State()
	assert.Zero(t, st.Dwell)
	assert.Zero(t, st.InitialDistance)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestAdvance_ResolutionFailureHoldsPosition(t *testing.T) {
	testutil.QuietLogs(t)
	c := NewController(testConfig(), r2.Vec{X: 1, Y: 1}, seeded())
	_, err := c.Select(single(CellKey(2, 2), r2.Vec{X: 50, Y: 50}), PhaseShielded)
	require.NoError(t, err)

	other := single(CellKey(3, 3), r2.Vec{X: 50, Y: 50})
	before := c.State()
	for _, resolver := range []AnchorResolver{other, NewCandidateSet(nil), nil} {
		assert.Equal(t, r2.Vec{X: 1, Y: 1}, c.Advance(frame, resolver))
	}
	assert.Equal(t, before, c.State())
	assert.Equal(t, 3, monitoring.RecoverableCount("resolve"))
}

func TestAdvance_WithoutTargetHoldsPosition(t *testing.T) {
	testutil.QuietLogs(t)
	c := NewController(testConfig(), r2.Vec{X: 5}, seeded())
	assert.Equal(t, r2.Vec{X: 5}, c.Advance(frame, single(CellKey(0, 0), r2.Vec{})))
	assert.Equal(t, 1, monitoring.RecoverableCount("motion"))
}

func TestAdvance_FollowsDriftingAnchor(t *testing.T) {
	cfg := testConfig()
	cfg.AngularSpeed = 0
	cfg.ShieldedRadius = 0
	key := CellKey(1, 1)
	c := NewController(cfg, r2.Vec{}, seeded())
	_, err := c.Select(single(key, r2.Vec{X: 100}), PhaseShielded)
	require.NoError(t, err)

	// The anchor has since moved; the controller must steer at the new spot.
	moved := single(key, r2.Vec{X: 0, Y: 100})
	p := c.Advance(frame, moved)
	assert.InDelta(t, 0, p.X, 1e-9)
	assert.Greater(t, p.Y, 0.0)
}

func TestAdvance_ArrivalUsesPreStepDistance(t *testing.T) {
	cfg := testConfig()
	cfg.BaseSpeed = 1 // fraction clamps to 1: one tick lands on the goal
	cfg.AngularSpeed = 0
	cfg.ShieldedRadius = 0
	set := single(CellKey(0, 0), r2.Vec{X: 4.5})
	c := NewController(cfg, r2.Vec{}, seeded())
	_, err := c.Select(set, PhaseShielded)
	require.NoError(t, err)

	p := c.Advance(frame, set)
	assert.InDelta(t, 4.5, p.X, 1e-9)
	assert.False(t, c.AtTarget(), "pre-step distance 4.5 is outside the threshold")

	c.Advance(frame, set)
	assert.True(t, c.AtTarget())
}

func TestAdvance_StallFactorIsUncapped(t *testing.T) {
	cfg := testConfig()
	cfg.BaseSpeed = 1e-7 // keep the ball parked in the near field
	cfg.AngularSpeed = 0
	cfg.ShieldedRadius = 0
	set := single(CellKey(0, 0), r2.Vec{X: 5})
	c := NewController(cfg, r2.Vec{}, seeded())
	_, err := c.Select(set, PhaseShielded)
	require.NoError(t, err)

	prev := 0.0
	for i := 0; i < 1000; i++ {
		c.Advance(0.1, set)
		_, df := c.Factors()
		assert.GreaterOrEqual(t, df, prev)
		prev = df
	}

	tf, df := c.Factors()
	assert.Equal(t, cfg.MaxSpeedFactor, tf, "time factor is capped")
	// 2.0 + (10-5)*0.3 + (100-3)*0.5
	assert.Greater(t, df, 50.0, "distance factor keeps growing")
}

func TestDistanceFactor(t *testing.T) {
	c := NewController(testConfig(), r2.Vec{}, nil)
	tests := []struct {
		name             string
		d, initial, dwel float64
		want             float64
	}{
		{"not latched", 5, 0, 10, 1},
		{"far", 90, 100, 0, 1},
		{"approach", 70, 100, 0, 1.2},
		{"close", 20, 100, 0, 1.5},
		{"near field", 5, 100, 0, 3.5},
		{"near field at stall boundary", 5, 100, 3, 3.5},
		{"near field stalled", 5, 100, 7, 5.5},
		{"near field overrides ratio", 9, 1000, 1, 2.3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, c.distanceFactorFor(tt.d, tt.initial, tt.dwel), 1e-9)
		})
	}
}

func TestTimeFactor(t *testing.T) {
	c := NewController(testConfig(), r2.Vec{}, nil)
	assert.InDelta(t, 1, c.timeFactorFor(0), 1e-12)
	assert.InDelta(t, 3, c.timeFactorFor(10), 1e-12)
	assert.InDelta(t, 5, c.timeFactorFor(20), 1e-12)
	assert.InDelta(t, 5, c.timeFactorFor(1e6), 1e-12)
}

func TestAdvance_FactorsNeutralBeforeLatch(t *testing.T) {
	cfg := testConfig()
	cfg.AngularSpeed = 0
	cfg.ShieldedRadius = 0
	set := single(CellKey(0, 0), r2.Vec{X: 2, Y: 2})
	c := NewController(cfg, r2.Vec{X: 2, Y: 2}, seeded())
	_, err := c.Select(set, PhaseShielded)
	require.NoError(t, err)

	c.Advance(frame, set)
	_, df := c.Factors()
	assert.Equal(t, 1.0, df)
	assert.Zero(t, c.State().InitialDistance)
	assert.True(t, c.AtTarget())
}

func TestAdvance_OrbitsAtPhaseRadius(t *testing.T) {
	set := single(CellKey(0, 0), r2.Vec{X: 20, Y: 20})
	for _, phase := range []Phase{PhaseShielded, PhaseExposed} {
		c := NewController(testConfig(), r2.Vec{X: 20, Y: 20}, seeded())
		_, err := c.Select(set, phase)
		require.NoError(t, err)
		for i := 0; i < 600; i++ {
			c.Advance(frame, set)
		}
		st := c.State()
		assert.GreaterOrEqual(t, st.Rotation, 0.0)
		assert.Less(t, st.Rotation, 2*math.Pi)
		r := testConfig().orbitRadius(phase)
		assert.InDelta(t, r, geom.Dist(st.Pos, r2.Vec{X: 20, Y: 20}), r, "ball stays near its orbit")
	}
}

func TestResetDwellAndClearTarget(t *testing.T) {
	set := single(CellKey(0, 0), r2.Vec{X: 50})
	c := NewController(testConfig(), r2.Vec{}, seeded())
	_, err := c.Select(set, PhaseShielded)
	require.NoError(t, err)
	c.Advance(frame, set)

	c.ResetDwell()
	assert.Zero(t, c.State().Dwell)
	assert.True(t, c.HasTarget())

	c.ClearTarget()
	assert.False(t, c.HasTarget())
	_, ok := c.Target()
	assert.False(t, ok)
}

func TestState_IsACopy(t *testing.T) {
	c := NewController(testConfig(), r2.Vec{X: 1}, seeded())
	st := c.State()
	st.Pos = r2.Vec{X: 99}
	assert.Equal(t, r2.Vec{X: 1}, c.Position())
}
