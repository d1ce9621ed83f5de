// Package inplace applies a checksum plan to a writable catalog image.
//
// Writes are 4-byte point stores in the catalog's byte order. Every store is
// reported to a dirty.Adder so the owner of the image can flush only the
// touched pages.
package inplace

import (
	"encoding/binary"
	"fmt"

	"github.com/joshuapare/catalogkit/catalog/dirty"
	"github.com/joshuapare/catalogkit/catalog/graph"
	"github.com/joshuapare/catalogkit/internal/buf"
	"github.com/joshuapare/catalogkit/internal/format"
)

// Patcher zeroes checksum words in place.
type Patcher struct {
	data  []byte
	order binary.ByteOrder
	dirty dirty.Adder

	// BeforeWrite, when set, runs once before the first store. An error
	// aborts the patch with the image untouched.
	BeforeWrite func() error
	wrote       bool
}

// New returns a Patcher over data. tracker may be nil.
func New(data []byte, order binary.ByteOrder, tracker dirty.Adder) *Patcher {
	return &Patcher{data: data, order: order, dirty: tracker}
}

// Zero clears the word at off and returns its previous value. A word that is
// already zero is left alone and does not trigger BeforeWrite.
func (p *Patcher) Zero(off int64) (int32, error) {
	word, ok := buf.Slice(p.data, int(off), format.WordSize)
	if !ok {
		return 0, fmt.Errorf("inplace: word at 0x%x (size %d): %w", off, len(p.data), format.ErrTruncated)
	}
	old := buf.I32(word, p.order)
	if old == 0 {
		return 0, nil
	}
	if !p.wrote {
		if p.BeforeWrite != nil {
			if err := p.BeforeWrite(); err != nil {
				return old, err
			}
		}
		p.wrote = true
	}
	p.order.PutUint32(word, 0)
	if p.dirty != nil {
		p.dirty.Add(int(off), format.WordSize)
	}
	return old, nil
}

// Apply zeroes every field of plan and returns how many words changed.
// Fields are validated against the image size before anything is written.
func (p *Patcher) Apply(plan *graph.Plan) (int, error) {
	for _, f := range plan.Fields {
		if !buf.Has(p.data, int(f.Offset), format.WordSize) {
			return 0, fmt.Errorf("inplace: field 0x%x outside image (size %d): %w", f.Offset, len(p.data), format.ErrTruncated)
		}
	}
	changed := 0
	for _, f := range plan.Fields {
		old, err := p.Zero(f.Offset)
		if err != nil {
			return changed, err
		}
		if old != 0 {
			changed++
		}
	}
	return changed, nil
}

// Wrote reports whether any store happened.
func (p *Patcher) Wrote() bool { return p.wrote }
