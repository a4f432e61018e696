// Package geom owns the 2D geometry primitives used by the simulation.
//
// Responsibilities: convex shape representation (Circle, Polygon),
// separating-axis overlap testing with minimum translation vectors,
// polyline simplification, and marching-squares contour tracing over a
// binary occupancy grid.
// Key types: Shape, Circle, Polygon, Response, BinaryGrid, Contour.
//
// Points are gonum r2.Vec values and are copied by value everywhere. No
// function in this package retains its inputs between calls.
package geom
