package graph

import "github.com/joshuapare/catalogkit/internal/format"

// VisitedSet records raw offsets already processed during one traversal.
// It is seeded with format.NullOffset so absent references always read as visited.
//
// Each traversal owns its own set; nothing is shared between walks.
type VisitedSet struct {
	seen map[int32]struct{}
}

// NewVisitedSet returns a set containing only format.NullOffset.
func NewVisitedSet() *VisitedSet {
	return &VisitedSet{seen: map[int32]struct{}{format.NullOffset: {}}}
}

// Visit marks off as visited and reports whether it was new.
func (v *VisitedSet) Visit(off int32) bool {
	if _, ok := v.seen[off]; ok {
		return false
	}
	v.seen[off] = struct{}{}
	return true
}

// Seen reports whether off has been visited.
func (v *VisitedSet) Seen(off int32) bool {
	_, ok := v.seen[off]
	return ok
}

// Len returns the number of visited offsets, not counting the null seed.
func (v *VisitedSet) Len() int {
	return len(v.seen) - 1
}
