package geom

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"
)

func TestTraceContours_AllZero(t *testing.T) {
	g := NewBinaryGrid(6, 7)
	assert.Empty(t, TraceContours(g))
}

func TestTraceContours_AllOneHasNoInteriorSegments(t *testing.T) {
	g := NewBinaryGrid(4, 4)
	for i := range g.Cells {
		g.Cells[i] = 1
	}
	assert.Empty(t, TraceContours(g), "a fully occupied grid has no iso-line inside it")
}

func TestTraceContours_PaddedBlockBoundaryOnly(t *testing.T) {
	block := NewBinaryGrid(3, 3)
	for i := range block.Cells {
		block.Cells[i] = 1
	}
	g := PadGrid(block)
	require.Equal(t, 5, g.Rows)
	require.Equal(t, 5, g.Cols)

	contours := TraceContours(g)
	require.Len(t, contours, 1)
	c := contours[0]
	assert.True(t, c.Closed)
	assert.Len(t, c.Points, 12)

	for _, p := range c.Points {
		onBoundary := p.X == 0.5 || p.X == 3.5 || p.Y == 0.5 || p.Y == 3.5
		if !onBoundary {
			t.Errorf("point %v is not on the block boundary", p)
		}
	}
}

func TestTraceContours_SingleCellDiamond(t *testing.T) {
	g := GridFromRows([][]uint8{
		{0, 0, 0},
		{0, 1, 0},
		{0, 0, 0},
	})

	contours := TraceContours(g)
	require.Len(t, contours, 1)
	assert.True(t, contours[0].Closed)
	assert.ElementsMatch(t, []r2.Vec{
		{X: 1, Y: 0.5}, {X: 1.5, Y: 1}, {X: 1, Y: 1.5}, {X: 0.5, Y: 1},
	}, contours[0].Points)
}

func TestTraceContours_OpenContourAtEdge(t *testing.T) {
	// Occupancy touching the grid edge leaves the contour open.
	g := GridFromRows([][]uint8{
		{1, 1, 1, 1},
		{1, 1, 1, 1},
		{0, 0, 0, 0},
	})

	contours := TraceContours(g)
	require.Len(t, contours, 1)
	assert.False(t, contours[0].Closed)
	for _, p := range contours[0].Points {
		assert.Equal(t, 1.5, p.Y)
	}
}

func TestTraceContours_TwoIslands(t *testing.T) {
	g := GridFromRows([][]uint8{
		{0, 0, 0, 0, 0, 0},
		{0, 1, 0, 0, 0, 0},
		{0, 0, 0, 0, 1, 0},
		{0, 0, 0, 0, 1, 0},
		{0, 0, 0, 0, 0, 0},
	})

	contours := TraceContours(g)
	require.Len(t, contours, 2)
	for _, c := range contours {
		assert.True(t, c.Closed)
	}
}

func TestCellSegments_SaddlesEmitBothDiagonals(t *testing.T) {
	tests := []struct {
		name string
		rows [][]uint8
		code int
		want []segment
	}{
		{
			name: "code 5 (TR+BL)",
			rows: [][]uint8{{0, 1}, {1, 0}},
			code: 5,
			want: []segment{{midLeft, midTop}, {midBottom, midRight}},
		},
		{
			name: "code 10 (TL+BR)",
			rows: [][]uint8{{1, 0}, {0, 1}},
			code: 10,
			want: []segment{{midLeft, midBottom}, {midTop, midRight}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := GridFromRows(tt.rows)
			assert.Equal(t, tt.code, cellCode(g, 0, 0))
			got := gridSegments(g)
			if diff := cmp.Diff(tt.want, got, cmp.AllowUnexported(segment{})); diff != "" {
				t.Errorf("segments mismatch (-want +got):\n%s", diff)
			}
			// Each diagonal alone has only two points, so nothing survives stitching.
			assert.Empty(t, TraceContours(g))
		})
	}
}

func TestCellCode_BitOrder(t *testing.T) {
	assert.Equal(t, 8, cellCode(GridFromRows([][]uint8{{1, 0}, {0, 0}}), 0, 0))
	assert.Equal(t, 4, cellCode(GridFromRows([][]uint8{{0, 1}, {0, 0}}), 0, 0))
	assert.Equal(t, 2, cellCode(GridFromRows([][]uint8{{0, 0}, {0, 1}}), 0, 0))
	assert.Equal(t, 1, cellCode(GridFromRows([][]uint8{{0, 0}, {1, 0}}), 0, 0))
}

func TestTraceContours_IsPure(t *testing.T) {
	g := PadGrid(GridFromRows([][]uint8{{1, 1, 0}, {0, 1, 1}}))
	before := append([]uint8(nil), g.Cells...)

	first := TraceContours(g)
	second := TraceContours(g)

	assert.Equal(t, before, g.Cells)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("repeated trace differs (-first +second):\n%s", diff)
	}
}

func TestSimplifyContours(t *testing.T) {
	block := NewBinaryGrid(6, 6)
	for i := range block.Cells {
		block.Cells[i] = 1
	}
	traced := TraceContours(PadGrid(block))
	require.Len(t, traced, 1)

	simplified := SimplifyContours(traced, 1, true)
	require.Len(t, simplified, 1)
	assert.True(t, simplified[0].Closed)
	assert.Less(t, len(simplified[0].Points), len(traced[0].Points))
	assert.GreaterOrEqual(t, len(simplified[0].Points), 4)
}

func TestBinaryGrid_OutOfRange(t *testing.T) {
	g := NewBinaryGrid(2, 2)
	g.Set(5, 5, true)
	assert.Equal(t, uint8(0), g.At(5, 5))
	assert.Equal(t, uint8(0), g.At(-1, 0))

	g.Set(1, 1, true)
	assert.Equal(t, uint8(1), g.At(1, 1))
}
