package graph

import (
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/encoding/unicode"

	"github.com/joshuapare/catalogkit/catalog/stream"
	"github.com/joshuapare/catalogkit/internal/buf"
	"github.com/joshuapare/catalogkit/internal/format"
)

// StringDecoder decodes offset-tagged strings from a binary catalog.
//
// Static strings store their byte length in the word before the string. With
// the unicode flag set the bytes are UTF-16 code units in the catalog's byte
// order, otherwise UTF-8.
//
// Dynamic strings are only recognised when the caller passes a separator. The
// reference then points at a chain of (partRef, nextRef) nodes; each partRef
// is a static string carrying its own flags, and nextRef == -1 ends the chain.
// More than one fragment is joined in reverse with '.' on catalog versions
// above 1, and in chain order with the caller's separator on version 1.
type StringDecoder struct {
	r       *stream.Reader
	version int32
}

// NewStringDecoder creates a decoder for a catalog of the given version.
func NewStringDecoder(r *stream.Reader, version int32) *StringDecoder {
	return &StringDecoder{r: r, version: version}
}

// Decode decodes the string referenced by ref. A zero sep disables dynamic
// string handling. A null reference decodes to the empty string.
func (d *StringDecoder) Decode(ref int32, sep rune) (string, error) {
	if ref == format.NullOffset {
		return "", nil
	}
	if sep != 0 && uint32(ref)&format.StringFlagDynamic != 0 {
		return d.decodeDynamic(ref, sep)
	}
	return d.decodeStatic(ref)
}

func (d *StringDecoder) decodeStatic(ref int32) (string, error) {
	off := int64(uint32(ref) & format.StringOffsetMask)
	n, err := d.r.ObjectSizeAt(off)
	if err != nil {
		return "", fmt.Errorf("graph: string at 0x%x: %w", off, err)
	}
	raw, err := d.r.BytesAt(off, int(n))
	if err != nil {
		return "", fmt.Errorf("graph: string at 0x%x: %w", off, err)
	}
	if uint32(ref)&format.StringFlagUnicode == 0 {
		return string(raw), nil
	}
	if d.r.Reversed() {
		buf.SwapUTF16Units(raw)
	}
	text, err := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder().Bytes(raw)
	if err != nil {
		return "", fmt.Errorf("graph: utf-16 string at 0x%x: %w", off, err)
	}
	return string(text), nil
}

func (d *StringDecoder) decodeDynamic(ref int32, sep rune) (string, error) {
	var parts []string
	nodes := make(map[int64]struct{})
	off := int64(uint32(ref) & format.StringOffsetMask)
	for {
		if _, dup := nodes[off]; dup {
			return "", fmt.Errorf("graph: fragment chain revisits 0x%x: %w", off, format.ErrBadOffset)
		}
		if len(nodes) >= format.MaxFragments {
			return "", fmt.Errorf("graph: fragment chain at 0x%x too long: %w", ref, format.ErrBadOffset)
		}
		nodes[off] = struct{}{}

		partRef, err := d.r.Int32At(off)
		if err != nil {
			return "", fmt.Errorf("graph: fragment node at 0x%x: %w", off, err)
		}
		next, err := d.r.Int32At(off + format.WordSize)
		if err != nil {
			return "", fmt.Errorf("graph: fragment node at 0x%x: %w", off, err)
		}
		if partRef != format.NullOffset {
			part, err := d.decodeStatic(partRef)
			if err != nil {
				return "", err
			}
			parts = append(parts, part)
		}
		if next == format.NullOffset {
			break
		}
		off = int64(uint32(next) & format.StringOffsetMask)
	}

	if len(parts) == 1 {
		return parts[0], nil
	}
	if d.version > format.BinaryVersion1 {
		slices.Reverse(parts)
		return strings.Join(parts, string(format.FragmentSeparatorV2)), nil
	}
	return strings.Join(parts, string(sep)), nil
}
