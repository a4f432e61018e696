// Package arena drives the occlusion and motion packages frame by frame.
//
// A Lattice of barrier cells sways and rocks over time. Every tick the
// Session snapshots the lattice into keyed anchor sets, rasterises the
// barriers, advances the ball toward its target and classifies where the
// ball ended up. Shots are hit-tested against the ball and the barriers.
package arena
