package geom

import "gonum.org/v1/gonum/spatial/r2"

// DefaultSimplifyTolerance is used when Simplify is given a non-positive
// tolerance.
const DefaultSimplifyTolerance = 1.0

// Simplify reduces the number of points in a polyline while keeping every
// removed point within tolerance of the result.
//
// When highQuality is false a radial-distance pass first drops consecutive
// points closer than tolerance, which shrinks the input for the
// Douglas–Peucker pass at a small cost in fidelity. Polylines of two or
// fewer points are returned unchanged. The result is a new slice.
func Simplify(points []r2.Vec, tolerance float64, highQuality bool) []r2.Vec {
	if len(points) <= 2 {
		return append([]r2.Vec(nil), points...)
	}
	if tolerance <= 0 {
		tolerance = DefaultSimplifyTolerance
	}
	sqTolerance := tolerance * tolerance

	pts := points
	if !highQuality {
		pts = simplifyRadialDist(points, sqTolerance)
	}
	return simplifyDouglasPeucker(pts, sqTolerance)
}

// simplifyRadialDist keeps a point only when it is farther than the
// tolerance from the previously kept point. The last point is always kept.
func simplifyRadialDist(points []r2.Vec, sqTolerance float64) []r2.Vec {
	prev := points[0]
	out := []r2.Vec{prev}
	var p r2.Vec
	for i := 1; i < len(points); i++ {
		p = points[i]
		if DistSq(p, prev) > sqTolerance {
			out = append(out, p)
			prev = p
		}
	}
	if prev != p {
		out = append(out, p)
	}
	return out
}

// simplifyDouglasPeucker runs Douglas–Peucker with an explicit stack so
// pathological inputs cannot exhaust the goroutine stack.
func simplifyDouglasPeucker(points []r2.Vec, sqTolerance float64) []r2.Vec {
	n := len(points)
	if n <= 2 {
		return append([]r2.Vec(nil), points...)
	}

	keep := make([]bool, n)
	keep[0], keep[n-1] = true, true

	type span struct{ first, last int }
	stack := []span{{0, n - 1}}
	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		maxSqDist := 0.0
		index := -1
		for i := s.first + 1; i < s.last; i++ {
			if d := sqSegDist(points[i], points[s.first], points[s.last]); d > maxSqDist {
				index, maxSqDist = i, d
			}
		}
		if index >= 0 && maxSqDist > sqTolerance {
			keep[index] = true
			stack = append(stack, span{s.first, index}, span{index, s.last})
		}
	}

	out := make([]r2.Vec, 0, n)
	for i, k := range keep {
		if k {
			out = append(out, points[i])
		}
	}
	return out
}

// sqSegDist returns the squared distance from p to segment ab. A
// zero-length segment degrades to point distance.
func sqSegDist(p, a, b r2.Vec) float64 {
	closest := a
	d := r2.Sub(b, a)
	if d.X != 0 || d.Y != 0 {
		t := r2.Dot(r2.Sub(p, a), d) / r2.Norm2(d)
		if t > 1 {
			closest = b
		} else if t > 0 {
			closest = r2.Add(a, r2.Scale(t, d))
		}
	}
	return DistSq(p, closest)
}
