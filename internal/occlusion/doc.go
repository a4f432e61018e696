// Package occlusion classifies the ball as shielded by a barrier, exposed in
// the open, or undetermined.
//
// Two independent signals are computed on every call:
//
//  1. Geometric: distance from the ball to the nearest exposed and shielded
//     anchors, tested against per-set margins. Exposed is checked first.
//  2. Pixel: a ring of samples around the ball read from a rasterised frame
//     and matched against the barrier colour.
//
// The geometric answer wins whenever it is conclusive; the pixel answer is
// the fallback for positions between anchors. A failing pixel buffer only
// degrades its own signal.
package occlusion
