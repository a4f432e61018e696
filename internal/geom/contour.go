package geom

import "gonum.org/v1/gonum/spatial/r2"

// StitchTolerance is the absolute distance within which two segment
// endpoints are treated as the same point while stitching contours.
const StitchTolerance = 0.01

// BinaryGrid is a rows×cols occupancy grid stored row-major. Any non-zero
// cell counts as occupied.
type BinaryGrid struct {
	Rows, Cols int
	Cells      []uint8
}

// NewBinaryGrid returns an all-zero grid.
func NewBinaryGrid(rows, cols int) BinaryGrid {
	if rows < 0 {
		rows = 0
	}
	if cols < 0 {
		cols = 0
	}
	return BinaryGrid{Rows: rows, Cols: cols, Cells: make([]uint8, rows*cols)}
}

// GridFromRows builds a grid from row slices. Short rows are zero-filled
// to the width of the longest row.
func GridFromRows(rows [][]uint8) BinaryGrid {
	cols := 0
	for _, r := range rows {
		if len(r) > cols {
			cols = len(r)
		}
	}
	g := NewBinaryGrid(len(rows), cols)
	for r, row := range rows {
		for c, v := range row {
			g.Set(r, c, v != 0)
		}
	}
	return g
}

// At returns 1 if the cell is occupied and 0 otherwise, including for
// coordinates outside the grid.
func (g BinaryGrid) At(r, c int) uint8 {
	if r < 0 || c < 0 || r >= g.Rows || c >= g.Cols {
		return 0
	}
	if g.Cells[r*g.Cols+c] != 0 {
		return 1
	}
	return 0
}

// Set marks a cell occupied or empty. Out-of-range coordinates are ignored.
func (g BinaryGrid) Set(r, c int, occupied bool) {
	if r < 0 || c < 0 || r >= g.Rows || c >= g.Cols {
		return
	}
	if occupied {
		g.Cells[r*g.Cols+c] = 1
	} else {
		g.Cells[r*g.Cols+c] = 0
	}
}

// PadGrid returns a copy of g surrounded by a one-cell empty border, so
// that occupancy touching the edge still produces closed contours. Cell
// (r, c) of g becomes (r+1, c+1).
func PadGrid(g BinaryGrid) BinaryGrid {
	out := NewBinaryGrid(g.Rows+2, g.Cols+2)
	for r := 0; r < g.Rows; r++ {
		for c := 0; c < g.Cols; c++ {
			out.Set(r+1, c+1, g.At(r, c) == 1)
		}
	}
	return out
}

// Contour is a traced polyline. Closed contours do not repeat their first
// point at the end.
type Contour struct {
	Points []r2.Vec
	Closed bool
}

type segment struct{ a, b r2.Vec }

// Edge midpoints of the unit cell, x right and y down.
var (
	midTop    = r2.Vec{X: 0.5, Y: 0}
	midRight  = r2.Vec{X: 1, Y: 0.5}
	midBottom = r2.Vec{X: 0.5, Y: 1}
	midLeft   = r2.Vec{X: 0, Y: 0.5}
)

// cellSegments maps a 4-bit corner code (TL=8, TR=4, BR=2, BL=1) to unit
// cell segments. The saddles 5 and 10 always emit both diagonals; there is
// no centre-sample disambiguation.
var cellSegments = [16][]segment{
	0:  nil,
	1:  {{midLeft, midBottom}},
	2:  {{midBottom, midRight}},
	3:  {{midLeft, midRight}},
	4:  {{midTop, midRight}},
	5:  {{midLeft, midTop}, {midBottom, midRight}},
	6:  {{midTop, midBottom}},
	7:  {{midLeft, midTop}},
	8:  {{midLeft, midTop}},
	9:  {{midTop, midBottom}},
	10: {{midLeft, midBottom}, {midTop, midRight}},
	11: {{midTop, midRight}},
	12: {{midLeft, midRight}},
	13: {{midBottom, midRight}},
	14: {{midLeft, midBottom}},
	15: nil,
}

// cellCode returns the marching-squares configuration of the 2×2
// neighbourhood whose top-left sample is (r, c).
func cellCode(g BinaryGrid, r, c int) int {
	return int(g.At(r, c))<<3 | int(g.At(r, c+1))<<2 | int(g.At(r+1, c+1))<<1 | int(g.At(r+1, c))
}

// gridSegments emits every segment in absolute grid coordinates, where
// sample (r, c) sits at (x=c, y=r).
func gridSegments(g BinaryGrid) []segment {
	var segs []segment
	for r := 0; r+1 < g.Rows; r++ {
		for c := 0; c+1 < g.Cols; c++ {
			origin := r2.Vec{X: float64(c), Y: float64(r)}
			for _, s := range cellSegments[cellCode(g, r, c)] {
				segs = append(segs, segment{a: r2.Add(origin, s.a), b: r2.Add(origin, s.b)})
			}
		}
	}
	return segs
}

// TraceContours extracts iso-contours from a binary grid with marching
// squares.
//
// Algorithm:
//  1. Compute the 4-bit corner code of every 2×2 neighbourhood and look up
//     its segments.
//  2. Translate segments to absolute grid coordinates.
//  3. Greedily stitch: from each unused segment, keep appending an unused
//     segment sharing the current endpoint (within StitchTolerance) until
//     the walk returns to its start or no continuation exists.
//  4. Discard paths with fewer than 3 points.
//
// TraceContours is a pure function of g.
func TraceContours(g BinaryGrid) []Contour {
	segs := gridSegments(g)
	if len(segs) == 0 {
		return nil
	}

	used := make([]bool, len(segs))
	var contours []Contour
	for i := range segs {
		if used[i] {
			continue
		}
		used[i] = true
		path := []r2.Vec{segs[i].a, segs[i].b}
		closed := false

		for {
			cur := path[len(path)-1]
			if len(path) > 2 && Near(cur, path[0], StitchTolerance) {
				path = path[:len(path)-1]
				closed = true
				break
			}
			next, ok := nextSegmentPoint(segs, used, cur)
			if !ok {
				break
			}
			path = append(path, next)
		}

		if len(path) < 3 {
			continue
		}
		contours = append(contours, Contour{Points: path, Closed: closed})
	}
	return contours
}

// nextSegmentPoint finds an unused segment touching cur, marks it used and
// returns its far endpoint.
func nextSegmentPoint(segs []segment, used []bool, cur r2.Vec) (r2.Vec, bool) {
	for j, s := range segs {
		if used[j] {
			continue
		}
		if Near(s.a, cur, StitchTolerance) {
			used[j] = true
			return s.b, true
		}
		if Near(s.b, cur, StitchTolerance) {
			used[j] = true
			return s.a, true
		}
	}
	return r2.Vec{}, false
}

// SimplifyContours applies Simplify to every contour, dropping any that
// collapse below 3 points. Closed contours keep their closure flag.
func SimplifyContours(contours []Contour, tolerance float64, highQuality bool) []Contour {
	out := make([]Contour, 0, len(contours))
	for _, c := range contours {
		pts := c.Points
		if c.Closed && len(pts) > 0 {
			// Close the ring so the seam vertex is judged like any other.
			ring := append(append([]r2.Vec(nil), pts...), pts[0])
			pts = Simplify(ring, tolerance, highQuality)
			pts = pts[:len(pts)-1]
		} else {
			pts = Simplify(pts, tolerance, highQuality)
		}
		if len(pts) < 3 {
			continue
		}
		out = append(out, Contour{Points: pts, Closed: c.Closed})
	}
	return out
}
