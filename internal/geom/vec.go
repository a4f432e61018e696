package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// unit returns the unit vector colinear to v, or the zero vector when v has
// no length. r2.Unit yields NaN components for the zero vector.
func unit(v r2.Vec) r2.Vec {
	if v.X == 0 && v.Y == 0 {
		return r2.Vec{}
	}
	return r2.Unit(v)
}

// perp returns v rotated a quarter turn so that (x, y) -> (y, -x).
func perp(v r2.Vec) r2.Vec {
	return r2.Vec{X: v.Y, Y: -v.X}
}

// Dist returns the Euclidean distance between p and q.
func Dist(p, q r2.Vec) float64 {
	return r2.Norm(r2.Sub(p, q))
}

// DistSq returns the squared Euclidean distance between p and q.
func DistSq(p, q r2.Vec) float64 {
	return r2.Norm2(r2.Sub(p, q))
}

// Near reports whether p and q coincide within tol.
func Near(p, q r2.Vec, tol float64) bool {
	return DistSq(p, q) <= tol*tol
}

// Polar returns the point at angle theta (radians) and radius r around c.
func Polar(c r2.Vec, theta, r float64) r2.Vec {
	return r2.Vec{X: c.X + math.Cos(theta)*r, Y: c.Y + math.Sin(theta)*r}
}
