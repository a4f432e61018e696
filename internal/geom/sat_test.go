package geom

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"
)

func TestTestOverlap_PolygonPolygon(t *testing.T) {
	a := NewBox(r2.Vec{X: 0, Y: 0}, 10, 10)
	b := NewBox(r2.Vec{X: 8, Y: 0}, 10, 10)

	resp := TestOverlap(a, b)
	require.True(t, resp.Overlapping)
	assert.InDelta(t, 2.0, resp.Overlap, 1e-9)
	// MTV points from A toward B; subtracting it separates the shapes.
	assert.InDelta(t, 2.0, resp.MTV.X, 1e-9)
	assert.InDelta(t, 0.0, resp.MTV.Y, 1e-9)
	assert.False(t, resp.AInB)
	assert.False(t, resp.BInA)

	a.SetPosition(r2.Sub(a.Position(), resp.MTV))
	resp = TestOverlap(a, b)
	assert.InDelta(t, 0.0, resp.Overlap, 1e-9, "shapes should be just touching")
}

func TestTestOverlap_Separated(t *testing.T) {
	a := NewBox(r2.Vec{}, 2, 2)
	b := NewBox(r2.Vec{X: 5}, 2, 2)
	c := NewCircle(r2.Vec{X: 0, Y: 10}, 1)

	assert.False(t, Overlaps(a, b))
	assert.False(t, Overlaps(a, c))
	assert.False(t, Overlaps(c, a))
	assert.Equal(t, r2.Vec{}, TestOverlap(a, b).MTV)
}

func TestTestOverlap_CircleNearCornerUsesVertexAxis(t *testing.T) {
	box := NewBox(r2.Vec{}, 2, 2)
	// Diagonally off the (1,1) corner: edge normals alone would report a
	// false overlap; the vertex axis separates.
	c := NewCircle(r2.Vec{X: 1.8, Y: 1.8}, 1)
	assert.False(t, Overlaps(c, box))
	assert.False(t, Overlaps(box, c))

	c.Pos = r2.Vec{X: 1.5, Y: 1.5}
	assert.True(t, Overlaps(c, box))
}

func TestTestOverlap_Symmetry(t *testing.T) {
	poly := NewPolygon(r2.Vec{X: 2, Y: 1}, []r2.Vec{
		{X: 0, Y: -3}, {X: 3, Y: -1}, {X: 2, Y: 3}, {X: -2, Y: 2}, {X: -3, Y: -1},
	}).SetAngle(0.4)

	for x := -8.0; x <= 8; x += 0.5 {
		for y := -8.0; y <= 8; y += 0.5 {
			c := NewCircle(r2.Vec{X: x, Y: y}, 1.25)
			ab := TestOverlap(c, poly)
			ba := TestOverlap(poly, c)
			if ab.Overlapping != ba.Overlapping {
				t.Fatalf("asymmetric result at (%.1f, %.1f): circle-first=%v polygon-first=%v",
					x, y, ab.Overlapping, ba.Overlapping)
			}
			if ab.Overlapping {
				assert.InDelta(t, ab.Overlap, ba.Overlap, 1e-9)
			}
		}
	}
}

func TestTestOverlap_CircleInsidePolygon(t *testing.T) {
	square := NewBox(r2.Vec{}, 20, 20)

	tests := []struct {
		name   string
		center r2.Vec
		radius float64
	}{
		{"centred", r2.Vec{}, 2},
		{"near right edge", r2.Vec{X: 3}, 2},
		{"near top-left", r2.Vec{X: -6, Y: -5}, 1.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCircle(tt.center, tt.radius)
			nearest := math.Min(10-math.Abs(tt.center.X), 10-math.Abs(tt.center.Y))
			want := nearest - tt.radius

			resp := TestOverlap(c, square)
			require.True(t, resp.Overlapping)
			assert.True(t, resp.AInB)
			assert.False(t, resp.BInA)
			assert.InDelta(t, want, r2.Norm(resp.MTV), 1e-9)

			rev := TestOverlap(square, c)
			require.True(t, rev.Overlapping)
			assert.True(t, rev.BInA)
			assert.InDelta(t, want, r2.Norm(rev.MTV), 1e-9)
		})
	}
}

func TestTestOverlap_CircleCircle(t *testing.T) {
	a := NewCircle(r2.Vec{}, 3)
	b := NewCircle(r2.Vec{X: 4}, 2)

	resp := TestOverlap(a, b)
	require.True(t, resp.Overlapping)
	assert.InDelta(t, 1.0, resp.Overlap, 1e-9)
	assert.InDelta(t, 1.0, resp.MTV.X, 1e-9)

	b.Pos = r2.Vec{X: 6}
	assert.False(t, Overlaps(a, b))

	// Concentric circles still resolve without a NaN axis.
	b.Pos = r2.Vec{}
	b.R = 1
	resp = TestOverlap(a, b)
	require.True(t, resp.Overlapping)
	assert.True(t, resp.BInA)
	assert.InDelta(t, 2.0, resp.Overlap, 1e-9)
}

func TestTestOverlap_PolygonInsidePolygon(t *testing.T) {
	outer := NewBox(r2.Vec{}, 10, 10)
	inner := NewBox(r2.Vec{X: 2}, 2, 2)

	resp := TestOverlap(inner, outer)
	require.True(t, resp.Overlapping)
	assert.True(t, resp.AInB)
	// Inner right edge at x=3, outer at x=5.
	assert.InDelta(t, 2.0, resp.Overlap, 1e-9)
	assert.InDelta(t, 1.0, resp.Normal.X, 1e-9)
}
