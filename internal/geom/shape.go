package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Shape is a convex shape that can take part in a separating-axis test.
// The set of implementations is closed: Circle and Polygon.
type Shape interface {
	// Center returns a representative interior point in world space.
	Center() r2.Vec
	// Project returns the interval covered by the shape on axis, which must
	// be a unit vector.
	Project(axis r2.Vec) (min, max float64)
	// candidateAxes returns the separating-axis candidates this shape
	// contributes when tested against other.
	candidateAxes(other Shape) []r2.Vec
}

// Circle is a disc given by its world-space centre and radius.
type Circle struct {
	Pos r2.Vec
	R   float64
}

// NewCircle creates a circle at pos with radius r.
func NewCircle(pos r2.Vec, r float64) *Circle {
	return &Circle{Pos: pos, R: r}
}

// Center returns the circle centre.
func (c *Circle) Center() r2.Vec { return c.Pos }

// Project returns the circle's extent along axis.
func (c *Circle) Project(axis r2.Vec) (float64, float64) {
	d := r2.Dot(c.Pos, axis)
	return d - c.R, d + c.R
}

// candidateAxes returns the axis from the circle centre to the nearest
// polygon vertex, or the centre-to-centre axis against another circle.
func (c *Circle) candidateAxes(other Shape) []r2.Vec {
	switch o := other.(type) {
	case *Polygon:
		pts := o.Points()
		if len(pts) == 0 {
			return nil
		}
		nearest := pts[0]
		best := DistSq(c.Pos, nearest)
		for _, p := range pts[1:] {
			if d := DistSq(c.Pos, p); d < best {
				best, nearest = d, p
			}
		}
		if axis := unit(r2.Sub(nearest, c.Pos)); axis != (r2.Vec{}) {
			return []r2.Vec{axis}
		}
		return nil
	case *Circle:
		axis := unit(r2.Sub(o.Pos, c.Pos))
		if axis == (r2.Vec{}) {
			// Concentric: any axis decides.
			axis = r2.Vec{X: 1}
		}
		return []r2.Vec{axis}
	}
	return nil
}

// Polygon is a convex polygon defined by local-space points and a
// position, rotation and offset. World-space points, edges and outward unit
// normals are recomputed in full whenever any of those change.
type Polygon struct {
	pos    r2.Vec
	angle  float64
	offset r2.Vec
	points []r2.Vec

	calcPoints []r2.Vec
	edges      []r2.Vec
	normals    []r2.Vec
}

// NewPolygon creates a polygon at pos from local points in either winding.
// The points are copied.
func NewPolygon(pos r2.Vec, points []r2.Vec) *Polygon {
	p := &Polygon{pos: pos}
	p.SetPoints(points)
	return p
}

// NewBox creates an axis-aligned w×h rectangle centred on pos.
func NewBox(pos r2.Vec, w, h float64) *Polygon {
	hw, hh := w/2, h/2
	return NewPolygon(pos, []r2.Vec{
		{X: -hw, Y: -hh},
		{X: hw, Y: -hh},
		{X: hw, Y: hh},
		{X: -hw, Y: hh},
	})
}

// SetPoints replaces the local points and recomputes derived data.
func (p *Polygon) SetPoints(points []r2.Vec) *Polygon {
	p.points = append(p.points[:0:0], points...)
	p.recalc()
	return p
}

// SetPosition moves the polygon and recomputes derived data.
func (p *Polygon) SetPosition(pos r2.Vec) *Polygon {
	p.pos = pos
	p.recalc()
	return p
}

// SetAngle sets the rotation (radians, about the local origin) and
// recomputes derived data.
func (p *Polygon) SetAngle(angle float64) *Polygon {
	p.angle = angle
	p.recalc()
	return p
}

// SetOffset sets a local translation applied before rotation and
// recomputes derived data.
func (p *Polygon) SetOffset(offset r2.Vec) *Polygon {
	p.offset = offset
	p.recalc()
	return p
}

// Position returns the polygon position.
func (p *Polygon) Position() r2.Vec { return p.pos }

// Angle returns the polygon rotation in radians.
func (p *Polygon) Angle() float64 { return p.angle }

// Offset returns the local offset.
func (p *Polygon) Offset() r2.Vec { return p.offset }

// Points returns a copy of the world-space vertices.
func (p *Polygon) Points() []r2.Vec { return append([]r2.Vec(nil), p.calcPoints...) }

// Edges returns a copy of the world-space edge vectors; edge i runs from
// vertex i to vertex i+1.
func (p *Polygon) Edges() []r2.Vec { return append([]r2.Vec(nil), p.edges...) }

// Normals returns a copy of the outward unit normals, one per edge.
func (p *Polygon) Normals() []r2.Vec { return append([]r2.Vec(nil), p.normals...) }

// recalc derives world points, edges and outward normals.
func (p *Polygon) recalc() {
	n := len(p.points)
	p.calcPoints = p.calcPoints[:0]
	p.edges = p.edges[:0]
	p.normals = p.normals[:0]

	for _, lp := range p.points {
		wp := r2.Add(r2.Rotate(r2.Add(lp, p.offset), p.angle, r2.Vec{}), p.pos)
		p.calcPoints = append(p.calcPoints, wp)
	}
	if n < 2 {
		return
	}

	// Winding decides which perpendicular points outward.
	sign := 1.0
	if signedArea(p.calcPoints) < 0 {
		sign = -1.0
	}
	for i := 0; i < n; i++ {
		e := r2.Sub(p.calcPoints[(i+1)%n], p.calcPoints[i])
		p.edges = append(p.edges, e)
		p.normals = append(p.normals, r2.Scale(sign, unit(perp(e))))
	}
}

// signedArea returns the shoelace area, positive for counter-clockwise
// winding in a y-up frame.
func signedArea(pts []r2.Vec) float64 {
	var a float64
	n := len(pts)
	for i := 0; i < n; i++ {
		a += r2.Cross(pts[i], pts[(i+1)%n])
	}
	return a / 2
}

// Center returns the vertex centroid.
func (p *Polygon) Center() r2.Vec {
	if len(p.calcPoints) == 0 {
		return p.pos
	}
	var sum r2.Vec
	for _, v := range p.calcPoints {
		sum = r2.Add(sum, v)
	}
	return r2.Scale(1/float64(len(p.calcPoints)), sum)
}

// Project returns the polygon's extent along axis.
func (p *Polygon) Project(axis r2.Vec) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range p.calcPoints {
		d := r2.Dot(v, axis)
		lo = math.Min(lo, d)
		hi = math.Max(hi, d)
	}
	return lo, hi
}

func (p *Polygon) candidateAxes(Shape) []r2.Vec {
	axes := make([]r2.Vec, 0, len(p.normals))
	for _, n := range p.normals {
		if n != (r2.Vec{}) {
			axes = append(axes, n)
		}
	}
	return axes
}

// ContainsPoint reports whether pt lies inside or on the polygon boundary.
func (p *Polygon) ContainsPoint(pt r2.Vec) bool {
	if len(p.calcPoints) < 3 {
		return false
	}
	const eps = 1e-9
	for i, n := range p.normals {
		if r2.Dot(r2.Sub(pt, p.calcPoints[i]), n) > eps {
			return false
		}
	}
	return true
}

// Bounds returns the axis-aligned bounding box of the world-space vertices.
func (p *Polygon) Bounds() r2.Box {
	if len(p.calcPoints) == 0 {
		return r2.Box{Min: p.pos, Max: p.pos}
	}
	b := r2.Box{Min: p.calcPoints[0], Max: p.calcPoints[0]}
	for _, v := range p.calcPoints[1:] {
		b.Min.X = math.Min(b.Min.X, v.X)
		b.Min.Y = math.Min(b.Min.Y, v.Y)
		b.Max.X = math.Max(b.Max.X, v.X)
		b.Max.Y = math.Max(b.Max.Y, v.Y)
	}
	return b
}
