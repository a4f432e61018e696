package motion

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r2"
)

// KeyKind distinguishes the two anchor families of the lattice.
type KeyKind uint8

const (
	// KeyCell keys a cell centre by row and column.
	KeyCell KeyKind = iota + 1
	// KeyIntersection keys a grid-line crossing by vertical and horizontal
	// line index.
	KeyIntersection
)

// AnchorKey is the structural identity of an anchor. It survives lattice
// motion, so a target selected on one tick can be re-resolved on the next.
type AnchorKey struct {
	Kind KeyKind
	I, J int
}

// CellKey returns the key of the cell at row, col.
func CellKey(row, col int) AnchorKey { return AnchorKey{Kind: KeyCell, I: row, J: col} }

// IntersectionKey returns the key of the crossing of vertical line v and
// horizontal line h.
func IntersectionKey(v, h int) AnchorKey { return AnchorKey{Kind: KeyIntersection, I: v, J: h} }

func (k AnchorKey) String() string {
	switch k.Kind {
	case KeyCell:
		return fmt.Sprintf("cell(%d,%d)", k.I, k.J)
	case KeyIntersection:
		return fmt.Sprintf("cross(%d,%d)", k.I, k.J)
	default:
		return fmt.Sprintf("key(%d:%d,%d)", k.Kind, k.I, k.J)
	}
}

// Anchor is a keyed point supplied by the lattice for the current tick.
type Anchor struct {
	Key AnchorKey
	Pos r2.Vec
}

// AnchorResolver maps a structural key to its current coordinates.
type AnchorResolver interface {
	Resolve(key AnchorKey) (r2.Vec, bool)
}

// CandidateSet is an ordered, indexed collection of anchors for one tick.
// It is immutable after construction.
type CandidateSet struct {
	anchors []Anchor
	index   map[AnchorKey]int
}

// NewCandidateSet copies anchors into a new set. When a key repeats, the
// first occurrence is kept.
func NewCandidateSet(anchors []Anchor) *CandidateSet {
	s := &CandidateSet{
		anchors: make([]Anchor, 0, len(anchors)),
		index:   make(map[AnchorKey]int, len(anchors)),
	}
	for _, a := range anchors {
		if _, dup := s.index[a.Key]; dup {
			continue
		}
		s.index[a.Key] = len(s.anchors)
		s.anchors = append(s.anchors, a)
	}
	return s
}

// Len returns the number of anchors. A nil set is empty.
func (s *CandidateSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.anchors)
}

// At returns the i-th anchor.
func (s *CandidateSet) At(i int) Anchor { return s.anchors[i] }

// Resolve returns the current coordinates of key.
func (s *CandidateSet) Resolve(key AnchorKey) (r2.Vec, bool) {
	if s == nil {
		return r2.Vec{}, false
	}
	i, ok := s.index[key]
	if !ok {
		return r2.Vec{}, false
	}
	return s.anchors[i].Pos, true
}

// Points returns a copy of the anchor coordinates in set order.
func (s *CandidateSet) Points() []r2.Vec {
	if s == nil {
		return nil
	}
	pts := make([]r2.Vec, len(s.anchors))
	for i, a := range s.anchors {
		pts[i] = a.Pos
	}
	return pts
}
