// Package monitor turns recorded simulation ticks into offline artefacts:
// a PNG of the ball trajectory over the barrier outlines, and an HTML page
// charting the speed ramp and observed states.
package monitor

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/banshee-data/shieldball/internal/arena"
	"github.com/banshee-data/shieldball/internal/geom"
	"github.com/banshee-data/shieldball/internal/motion"
	"github.com/banshee-data/shieldball/internal/occlusion"
)

// Sample is one recorded tick.
type Sample struct {
	Tick           int
	Elapsed        time.Duration
	Pos            r2.Vec
	Phase          motion.Phase
	Final          occlusion.State
	AtTarget       bool
	PhaseChanged   bool
	TimeFactor     float64
	DistanceFactor float64
}

// TrajectoryPlotter records ticks and the latest lattice scene for
// plotting after a run. It is safe for concurrent use.
type TrajectoryPlotter struct {
	mu      sync.Mutex
	enabled bool
	samples []Sample

	outlines []geom.Contour
	shielded []r2.Vec
	exposed  []r2.Vec
}

// NewTrajectoryPlotter returns an enabled plotter.
func NewTrajectoryPlotter() *TrajectoryPlotter {
	return &TrajectoryPlotter{enabled: true}
}

// Stop disables recording. Plots can still be generated.
func (tp *TrajectoryPlotter) Stop() {
	tp.mu.Lock()
	defer tp.mu.Unlock()
	tp.enabled = false
}

// IsEnabled returns true if the plotter is currently recording.
func (tp *TrajectoryPlotter) IsEnabled() bool {
	tp.mu.Lock()
	defer tp.mu.Unlock()
	return tp.enabled
}

// Record appends a tick report.
func (tp *TrajectoryPlotter) Record(rep arena.TickReport) {
	tp.mu.Lock()
	defer tp.mu.Unlock()
	if !tp.enabled {
		return
	}
	tp.samples = append(tp.samples, Sample{
		Tick:           rep.Tick,
		Elapsed:        rep.Elapsed,
		Pos:            rep.Pos,
		Phase:          rep.Phase,
		Final:          rep.Result.Final,
		AtTarget:       rep.AtTarget,
		PhaseChanged:   rep.PhaseChanged,
		TimeFactor:     rep.TimeFactor,
		DistanceFactor: rep.DistanceFactor,
	})
}

// SetScene stores the outlines and anchors drawn under the trajectory.
func (tp *TrajectoryPlotter) SetScene(snap arena.Snapshot) {
	tp.mu.Lock()
	defer tp.mu.Unlock()
	tp.outlines = snap.Outlines
	tp.shielded = snap.Shielded.Points()
	tp.exposed = snap.Exposed.Points()
}

// Samples returns a copy of the recorded samples.
func (tp *TrajectoryPlotter) Samples() []Sample {
	tp.mu.Lock()
	defer tp.mu.Unlock()
	return append([]Sample(nil), tp.samples...)
}

var (
	outlineColor  = color.RGBA{R: 0x3a, G: 0x5f, B: 0x8a, A: 0xff}
	pathColor     = color.RGBA{R: 0x88, G: 0x88, B: 0x88, A: 0xff}
	stateColors   = map[occlusion.State]color.RGBA{occlusion.Shielded: {R: 0x1f, G: 0x77, B: 0xb4, A: 0xff}, occlusion.Exposed: {R: 0xd6, G: 0x27, B: 0x28, A: 0xff}, occlusion.Undetermined: {R: 0xbc, G: 0xbd, B: 0x22, A: 0xff}}
	shieldedColor = color.RGBA{R: 0x2c, G: 0xa0, B: 0x2c, A: 0xff}
	exposedColor  = color.RGBA{R: 0xff, G: 0x7f, B: 0x0e, A: 0xff}
)

func toXYs(pts []r2.Vec) plotter.XYs {
	xys := make(plotter.XYs, len(pts))
	for i, p := range pts {
		xys[i] = plotter.XY{X: p.X, Y: p.Y}
	}
	return xys
}

// SaveTrajectory writes a PNG (or any format gonum/plot infers from the
// extension) of the recorded trajectory over the scene.
func (tp *TrajectoryPlotter) SaveTrajectory(path string) error {
	tp.mu.Lock()
	defer tp.mu.Unlock()

	if len(tp.samples) == 0 {
		return fmt.Errorf("no samples recorded")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Ball trajectory (%d ticks)", len(tp.samples))
	p.X.Label.Text = "x (px)"
	p.Y.Label.Text = "y (px)"
	// Screen coordinates grow downward.
	p.Y.Scale = plot.InvertedScale{Normalizer: p.Y.Scale}

	for i, o := range tp.outlines {
		pts := o.Points
		if o.Closed && len(pts) > 0 {
			pts = append(append([]r2.Vec(nil), pts...), pts[0])
		}
		line, err := plotter.NewLine(toXYs(pts))
		if err != nil {
			return fmt.Errorf("outline %d: %w", i, err)
		}
		line.Color = outlineColor
		line.Width = vg.Points(1.5)
		p.Add(line)
		if i == 0 {
			p.Legend.Add("barrier outline", line)
		}
	}

	for _, a := range []struct {
		name  string
		pts   []r2.Vec
		color color.RGBA
		shape draw.GlyphDrawer
	}{
		{"shielded anchor", tp.shielded, shieldedColor, draw.SquareGlyph{}},
		{"exposed anchor", tp.exposed, exposedColor, draw.CrossGlyph{}},
	} {
		if len(a.pts) == 0 {
			continue
		}
		sc, err := plotter.NewScatter(toXYs(a.pts))
		if err != nil {
			return fmt.Errorf("%s: %w", a.name, err)
		}
		sc.GlyphStyle.Color = a.color
		sc.GlyphStyle.Shape = a.shape
		sc.GlyphStyle.Radius = vg.Points(2)
		p.Add(sc)
		p.Legend.Add(a.name, sc)
	}

	trail := make([]r2.Vec, len(tp.samples))
	byState := map[occlusion.State][]r2.Vec{}
	for i, s := range tp.samples {
		trail[i] = s.Pos
		byState[s.Final] = append(byState[s.Final], s.Pos)
	}
	line, err := plotter.NewLine(toXYs(trail))
	if err != nil {
		return fmt.Errorf("trajectory: %w", err)
	}
	line.Color = pathColor
	line.Width = vg.Points(0.5)
	p.Add(line)

	for _, st := range []occlusion.State{occlusion.Shielded, occlusion.Exposed, occlusion.Undetermined} {
		pts := byState[st]
		if len(pts) == 0 {
			continue
		}
		sc, err := plotter.NewScatter(toXYs(pts))
		if err != nil {
			return fmt.Errorf("%s samples: %w", st, err)
		}
		sc.GlyphStyle.Color = stateColors[st]
		sc.GlyphStyle.Shape = draw.CircleGlyph{}
		sc.GlyphStyle.Radius = vg.Points(1)
		p.Add(sc)
		p.Legend.Add(st.String(), sc)
	}

	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10

	if err := p.Save(8*vg.Inch, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("failed to save trajectory plot: %w", err)
	}
	return nil
}
