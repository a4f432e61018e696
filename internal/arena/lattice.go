package arena

import (
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/banshee-data/shieldball/internal/config"
	"github.com/banshee-data/shieldball/internal/geom"
	"github.com/banshee-data/shieldball/internal/motion"
)

// LatticeConfig describes the barrier lattice and its motion.
type LatticeConfig struct {
	Rows, Cols       int
	CellSize         float64       // Side of a cell in pixels (default: 40)
	Origin           r2.Vec        // World position of the unswayed top-left corner
	SwayAmplitude    float64       // Horizontal sway in pixels (default: 12)
	SwayPeriod       time.Duration // Full sway cycle (default: 6s)
	RockAmplitudeDeg float64       // Peak rotation about the lattice centre (default: 4)

	ContourTolerance   float64 // Outline simplification tolerance in cells (default: 0.25)
	ContourHighQuality bool    // Skip the radial pre-pass when simplifying outlines
}

// LatticeConfigFromTuning builds a LatticeConfig from a loaded TuningConfig.
// The origin leaves room for the full sway and one cell of margin.
func LatticeConfigFromTuning(cfg *config.TuningConfig) LatticeConfig {
	margin := cfg.GetSwayAmplitude() + cfg.GetCellSize()
	return LatticeConfig{
		Rows:               cfg.GetRows(),
		Cols:               cfg.GetCols(),
		CellSize:           cfg.GetCellSize(),
		Origin:             r2.Vec{X: margin, Y: margin},
		SwayAmplitude:      cfg.GetSwayAmplitude(),
		SwayPeriod:         cfg.GetSwayPeriod(),
		RockAmplitudeDeg:   cfg.GetRockAmplitudeDeg(),
		ContourTolerance:   cfg.GetContourTolerance(),
		ContourHighQuality: cfg.GetContourHighQuality(),
	}
}

// Validate checks the lattice geometry.
func (c LatticeConfig) Validate() error {
	if c.Rows <= 0 || c.Cols <= 0 {
		return fmt.Errorf("lattice must have at least one row and column, got %dx%d", c.Rows, c.Cols)
	}
	if c.CellSize <= 0 {
		return fmt.Errorf("CellSize must be positive, got %f", c.CellSize)
	}
	if c.SwayPeriod <= 0 {
		return fmt.Errorf("SwayPeriod must be positive, got %s", c.SwayPeriod)
	}
	return nil
}

// Extent returns the canvas size needed to hold the lattice at any sway
// or rock angle, keeping the origin margin on both sides.
func (c LatticeConfig) Extent() (w, h int) {
	return int(math.Ceil(2*c.Origin.X + float64(c.Cols)*c.CellSize)),
		int(math.Ceil(2*c.Origin.Y + float64(c.Rows)*c.CellSize))
}

// RandomBarriers returns a rows×cols occupancy grid with roughly density
// of the cells set. At least one cell is always set and at least one left
// open so both phases have somewhere to go.
func RandomBarriers(rows, cols int, density float64, rng *rand.Rand) geom.BinaryGrid {
	g := geom.NewBinaryGrid(rows, cols)
	n := rows * cols
	if n == 0 {
		return g
	}
	set := 0
	for i := range g.Cells {
		if rng.Float64() < density {
			g.Cells[i] = 1
			set++
		}
	}
	switch {
	case set == 0:
		g.Cells[rng.IntN(n)] = 1
	case set == n && n > 1:
		g.Cells[rng.IntN(n)] = 0
	}
	return g
}

// Lattice is a grid of barrier cells in continuous motion. It is not safe
// for concurrent use.
type Lattice struct {
	cfg      LatticeConfig
	barriers geom.BinaryGrid

	// Outlines in local lattice coordinates, traced once.
	outlines []geom.Contour

	sway  r2.Vec
	angle float64
}

// NewLattice creates a lattice over a copy of barriers. The grid must
// match the configured rows and columns.
func NewLattice(cfg LatticeConfig, barriers geom.BinaryGrid) (*Lattice, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if barriers.Rows != cfg.Rows || barriers.Cols != cfg.Cols {
		return nil, fmt.Errorf("barrier grid is %dx%d, lattice is %dx%d", barriers.Rows, barriers.Cols, cfg.Rows, cfg.Cols)
	}
	g := geom.BinaryGrid{Rows: barriers.Rows, Cols: barriers.Cols, Cells: append([]uint8(nil), barriers.Cells...)}
	l := &Lattice{cfg: cfg, barriers: g}
	l.outlines = l.traceOutlines()
	return l, nil
}

// Config returns the lattice configuration.
func (l *Lattice) Config() LatticeConfig { return l.cfg }

// Barriers returns a copy of the occupancy grid.
func (l *Lattice) Barriers() geom.BinaryGrid {
	return geom.BinaryGrid{Rows: l.barriers.Rows, Cols: l.barriers.Cols, Cells: append([]uint8(nil), l.barriers.Cells...)}
}

// Update poses the lattice for the given elapsed time. Sway follows the
// sway period; rocking runs at half that rate.
func (l *Lattice) Update(elapsed time.Duration) {
	phase := 2 * math.Pi * elapsed.Seconds() / l.cfg.SwayPeriod.Seconds()
	l.sway = r2.Vec{X: l.cfg.SwayAmplitude * math.Sin(phase)}
	l.angle = l.cfg.RockAmplitudeDeg * math.Pi / 180 * math.Sin(phase/2)
}

// Angle returns the current rotation in radians.
func (l *Lattice) Angle() float64 { return l.angle }

// Sway returns the current translation.
func (l *Lattice) Sway() r2.Vec { return l.sway }

// center returns the unswayed world centre of the lattice.
func (l *Lattice) center() r2.Vec {
	return r2.Add(l.cfg.Origin, r2.Vec{
		X: float64(l.cfg.Cols) * l.cfg.CellSize / 2,
		Y: float64(l.cfg.Rows) * l.cfg.CellSize / 2,
	})
}

// world maps a point given relative to the unswayed origin into world
// space under the current pose.
func (l *Lattice) world(local r2.Vec) r2.Vec {
	p := r2.Add(l.cfg.Origin, local)
	return r2.Add(r2.Rotate(p, l.angle, l.center()), l.sway)
}

func (l *Lattice) cellCenter(row, col int) r2.Vec {
	cs := l.cfg.CellSize
	return r2.Vec{X: (float64(col) + 0.5) * cs, Y: (float64(row) + 0.5) * cs}
}

// touchesBarrier reports whether the crossing of vertical line v and
// horizontal line h is a corner of any barrier cell.
func (l *Lattice) touchesBarrier(v, h int) bool {
	return l.barriers.At(h-1, v-1) != 0 || l.barriers.At(h-1, v) != 0 ||
		l.barriers.At(h, v-1) != 0 || l.barriers.At(h, v) != 0
}

// traceOutlines traces the barrier boundary on the padded grid and maps
// the sample coordinates back to local cell-centre positions.
func (l *Lattice) traceOutlines() []geom.Contour {
	contours := geom.TraceContours(geom.PadGrid(l.barriers))
	contours = geom.SimplifyContours(contours, l.cfg.ContourTolerance, l.cfg.ContourHighQuality)
	cs := l.cfg.CellSize
	for i := range contours {
		for j, p := range contours[i].Points {
			contours[i].Points[j] = r2.Vec{X: (p.X - 0.5) * cs, Y: (p.Y - 0.5) * cs}
		}
	}
	return contours
}

// Snapshot is the lattice as seen on one tick. It shares nothing with the
// Lattice and may be retained.
type Snapshot struct {
	Shielded *motion.CandidateSet // barrier cell centres keyed by row and column
	Exposed  *motion.CandidateSet // open grid crossings keyed by line pair
	Barriers []*geom.Polygon
	Outlines []geom.Contour
	Angle    float64
	Sway     r2.Vec
}

// Candidates returns the anchor set the given phase seeks.
func (s Snapshot) Candidates(p motion.Phase) *motion.CandidateSet {
	if p == motion.PhaseExposed {
		return s.Exposed
	}
	return s.Shielded
}

// Snapshot computes anchors, barrier polygons and outlines for the
// current pose.
func (l *Lattice) Snapshot() Snapshot {
	cs := l.cfg.CellSize
	rows, cols := l.cfg.Rows, l.cfg.Cols
	center := l.center()
	pos := r2.Add(center, l.sway)

	var shielded []motion.Anchor
	var barriers []*geom.Polygon
	corners := []r2.Vec{{X: -cs / 2, Y: -cs / 2}, {X: cs / 2, Y: -cs / 2}, {X: cs / 2, Y: cs / 2}, {X: -cs / 2, Y: cs / 2}}
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			if l.barriers.At(r, c) == 0 {
				continue
			}
			local := l.cellCenter(r, c)
			shielded = append(shielded, motion.Anchor{Key: motion.CellKey(r, c), Pos: l.world(local)})
			poly := geom.NewPolygon(pos, corners).
				SetOffset(r2.Sub(r2.Add(l.cfg.Origin, local), center)).
				SetAngle(l.angle)
			barriers = append(barriers, poly)
		}
	}

	var exposed []motion.Anchor
	for h := 0; h <= rows; h++ {
		for v := 0; v <= cols; v++ {
			if l.touchesBarrier(v, h) {
				continue
			}
			local := r2.Vec{X: float64(v) * cs, Y: float64(h) * cs}
			exposed = append(exposed, motion.Anchor{Key: motion.IntersectionKey(v, h), Pos: l.world(local)})
		}
	}

	outlines := make([]geom.Contour, len(l.outlines))
	for i, o := range l.outlines {
		pts := make([]r2.Vec, len(o.Points))
		for j, p := range o.Points {
			pts[j] = l.world(p)
		}
		outlines[i] = geom.Contour{Points: pts, Closed: o.Closed}
	}

	return Snapshot{
		Shielded: motion.NewCandidateSet(shielded),
		Exposed:  motion.NewCandidateSet(exposed),
		Barriers: barriers,
		Outlines: outlines,
		Angle:    l.angle,
		Sway:     l.sway,
	}
}
