package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Response describes the outcome of an overlap test.
type Response struct {
	Overlapping bool

	// Overlap is the magnitude of MTV and Normal its unit direction.
	Overlap float64
	Normal  r2.Vec

	// MTV is the minimum translation vector. For partially overlapping
	// shapes it points from A toward B, so subtracting it from A's position
	// separates the shapes. When one shape lies wholly inside the other it is
	// instead the smallest clearance between the inner shape and the
	// container's boundary, pointing from the inner shape toward that
	// boundary.
	MTV r2.Vec

	// AInB and BInA report containment.
	AInB bool
	BInA bool
}

// TestOverlap runs a separating-axis test between two convex shapes.
//
// Algorithm:
//  1. Collect candidate axes from both shapes (polygon edge normals, the
//     circle-to-nearest-vertex axis, or the centre-to-centre axis).
//  2. Project both shapes onto each axis; any gap proves separation.
//  3. Track the smallest penetration and, per containment direction, the
//     smallest clearance.
//  4. Report clearance when one shape is contained on every axis,
//     penetration otherwise.
//
// Using the union of both shapes' axes makes the Overlapping result
// independent of argument order.
func TestOverlap(a, b Shape) Response {
	axes := append(a.candidateAxes(b), b.candidateAxes(a)...)
	if len(axes) == 0 {
		return Response{}
	}

	resp := Response{AInB: true, BInA: true}

	pen := math.Inf(1)
	var penN r2.Vec
	clearA := math.Inf(1) // A inside B
	var clearAN r2.Vec
	clearB := math.Inf(1) // B inside A
	var clearBN r2.Vec

	for _, axis := range axes {
		amin, amax := a.Project(axis)
		bmin, bmax := b.Project(axis)
		if amax < bmin || bmax < amin {
			return Response{}
		}

		if amin < bmin || amax > bmax {
			resp.AInB = false
		} else {
			lo, hi := amin-bmin, bmax-amax
			if hi <= lo && hi < clearA {
				clearA, clearAN = hi, axis
			} else if lo < hi && lo < clearA {
				clearA, clearAN = lo, r2.Scale(-1, axis)
			}
		}
		if bmin < amin || bmax > amax {
			resp.BInA = false
		} else {
			lo, hi := bmin-amin, amax-bmax
			if hi <= lo && hi < clearB {
				clearB, clearBN = hi, axis
			} else if lo < hi && lo < clearB {
				clearB, clearBN = lo, r2.Scale(-1, axis)
			}
		}

		// A below B on this axis moves back along -axis; above moves along +axis.
		o1, o2 := amax-bmin, bmax-amin
		if o1 <= o2 && o1 < pen {
			pen, penN = o1, axis
		} else if o2 < o1 && o2 < pen {
			pen, penN = o2, r2.Scale(-1, axis)
		}
	}

	resp.Overlapping = true
	switch {
	case resp.AInB:
		resp.Overlap, resp.Normal = clearA, clearAN
	case resp.BInA:
		resp.Overlap, resp.Normal = clearB, clearBN
	default:
		resp.Overlap, resp.Normal = pen, penN
	}
	resp.MTV = r2.Scale(resp.Overlap, resp.Normal)
	return resp
}

// Overlaps is shorthand for TestOverlap(a, b).Overlapping.
func Overlaps(a, b Shape) bool {
	return TestOverlap(a, b).Overlapping
}
