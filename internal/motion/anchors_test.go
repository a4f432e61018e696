package motion

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/spatial/r2"
)

func TestCandidateSet_Resolve(t *testing.T) {
	set := NewCandidateSet([]Anchor{
		{Key: CellKey(0, 1), Pos: r2.Vec{X: 1, Y: 2}},
		{Key: IntersectionKey(0, 1), Pos: r2.Vec{X: 3, Y: 4}},
	})

	p, ok := set.Resolve(CellKey(0, 1))
	assert.True(t, ok)
	assert.Equal(t, r2.Vec{X: 1, Y: 2}, p)

	p, ok = set.Resolve(IntersectionKey(0, 1))
	assert.True(t, ok, "same indices in another family are distinct keys")
	assert.Equal(t, r2.Vec{X: 3, Y: 4}, p)

	_, ok = set.Resolve(CellKey(1, 0))
	assert.False(t, ok)
}

func TestCandidateSet_DuplicateKeepsFirst(t *testing.T) {
	set := NewCandidateSet([]Anchor{
		{Key: CellKey(0, 0), Pos: r2.Vec{X: 1}},
		{Key: CellKey(0, 0), Pos: r2.Vec{X: 2}},
	})
	assert.Equal(t, 1, set.Len())
	p, _ := set.Resolve(CellKey(0, 0))
	assert.Equal(t, r2.Vec{X: 1}, p)
}

func TestCandidateSet_CopiesInput(t *testing.T) {
	in := []Anchor{{Key: CellKey(0, 0), Pos: r2.Vec{X: 1}}}
	set := NewCandidateSet(in)
	in[0].Pos = r2.Vec{X: 42}

	p, _ := set.Resolve(CellKey(0, 0))
	assert.Equal(t, r2.Vec{X: 1}, p)
}

func TestCandidateSet_Points(t *testing.T) {
	set := NewCandidateSet([]Anchor{
		{Key: CellKey(0, 0), Pos: r2.Vec{X: 1}},
		{Key: CellKey(0, 1), Pos: r2.Vec{X: 2}},
	})
	want := []r2.Vec{{X: 1}, {X: 2}}
	if diff := cmp.Diff(want, set.Points()); diff != "" {
		t.Errorf("Points() mismatch (-want +got):\n%s", diff)
	}
}

func TestCandidateSet_NilIsEmpty(t *testing.T) {
	var set *CandidateSet
	assert.Zero(t, set.Len())
	assert.Nil(t, set.Points())
	_, ok := set.Resolve(CellKey(0, 0))
	assert.False(t, ok)
}

func TestAnchorKeyString(t *testing.T) {
	assert.Equal(t, "cell(2,3)", CellKey(2, 3).String())
	assert.Equal(t, "cross(4,5)", IntersectionKey(4, 5).String())
	assert.Equal(t, "key(0:1,1)", AnchorKey{I: 1, J: 1}.String())
}

func TestPhase(t *testing.T) {
	assert.Equal(t, PhaseExposed, PhaseShielded.Opposite())
	assert.Equal(t, PhaseShielded, PhaseExposed.Opposite())
	assert.Equal(t, "shielded", PhaseShielded.String())
	assert.Equal(t, "exposed", PhaseExposed.String())
}
