// Package testutil builds synthetic catalogs for tests.
package testutil

import (
	"encoding/binary"
	"strings"
	"unicode/utf16"

	"github.com/joshuapare/catalogkit/internal/buf"
	"github.com/joshuapare/catalogkit/internal/format"
)

// BinaryCatalog assembles a binary catalog object by object. Every object is
// preceded by its byte length, matching how the loader finds string and
// array lengths.
//
// Offsets returned by the builder are payload offsets and can be stored in
// other objects directly, which makes sharing (interning) trivial.
type BinaryCatalog struct {
	Order   binary.ByteOrder
	Version int32
	buf     []byte
}

// NewBinaryCatalog starts a catalog with a header and no keys.
func NewBinaryCatalog(order binary.ByteOrder, version int32) *BinaryCatalog {
	c := &BinaryCatalog{Order: order, Version: version, buf: make([]byte, format.BinaryHeaderSize)}
	order.PutUint32(c.buf[format.BinaryMagicOffset:], format.BinaryMagic)
	order.PutUint32(c.buf[format.BinaryVersionOffset:], uint32(version))
	format.PutI32(c.buf, format.BinaryKeysOffsetOffset, format.NullOffset, order)
	return c
}

// Bytes returns a copy of the catalog image.
func (c *BinaryCatalog) Bytes() []byte {
	out := make([]byte, len(c.buf))
	copy(out, c.buf)
	return out
}

// Put overwrites the word at off. Use it to corrupt images in tests.
func (c *BinaryCatalog) Put(off int64, v int32) {
	format.PutI32(c.buf, int(off), v, c.Order)
}

// Word reads the word at off.
func (c *BinaryCatalog) Word(off int64) int32 {
	return format.ReadI32(c.buf, int(off), c.Order)
}

// Alloc appends a length-prefixed object padded to a word boundary and
// returns the payload offset.
func (c *BinaryCatalog) Alloc(payload []byte) int32 {
	c.appendWord(int32(len(payload)))
	off := int32(len(c.buf))
	c.buf = append(c.buf, payload...)
	if pad := buf.AlignUp(len(payload), format.WordSize) - len(payload); pad > 0 {
		c.buf = append(c.buf, make([]byte, pad)...)
	}
	return off
}

func (c *BinaryCatalog) appendWord(v int32) {
	var w [format.WordSize]byte
	c.Order.PutUint32(w[:], uint32(v))
	c.buf = append(c.buf, w[:]...)
}

func (c *BinaryCatalog) words(vals ...int32) []byte {
	out := make([]byte, len(vals)*format.WordSize)
	for i, v := range vals {
		c.Order.PutUint32(out[i*format.WordSize:], uint32(v))
	}
	return out
}

// Int32Array stores a length-prefixed int32 array.
func (c *BinaryCatalog) Int32Array(vals ...int32) int32 {
	return c.Alloc(c.words(vals...))
}

// ASCII stores s as a static 8-bit string reference.
func (c *BinaryCatalog) ASCII(s string) int32 {
	return c.Alloc([]byte(s))
}

// Unicode stores s as UTF-16 in catalog byte order and returns a flagged reference.
func (c *BinaryCatalog) Unicode(s string) int32 {
	units := utf16.Encode([]rune(s))
	raw := make([]byte, 2*len(units))
	for i, u := range units {
		c.Order.PutUint16(raw[2*i:], u)
	}
	return int32(uint32(c.Alloc(raw)) | format.StringFlagUnicode)
}

// Fragmented links the given part references into a dynamic string and
// returns its flagged reference. format.NullOffset parts are allowed.
func (c *BinaryCatalog) Fragmented(parts ...int32) int32 {
	next := format.NullOffset
	for i := len(parts) - 1; i >= 0; i-- {
		next = c.Alloc(c.words(parts[i], next))
	}
	return int32(uint32(next) | format.StringFlagDynamic)
}

// DottedName stores a dotted type name the way the serializer does: split on
// '.', fragments reversed for versions above 1.
func (c *BinaryCatalog) DottedName(name string) int32 {
	segs := strings.Split(name, ".")
	refs := make([]int32, len(segs))
	for i, s := range segs {
		refs[i] = c.ASCII(s)
	}
	if c.Version > format.BinaryVersion1 {
		for i, j := 0, len(refs)-1; i < j; i, j = i+1, j-1 {
			refs[i], refs[j] = refs[j], refs[i]
		}
	}
	return c.Fragmented(refs...)
}

// Provider stores the AssetBundleProvider type name.
func (c *BinaryCatalog) Provider() int32 {
	return c.DottedName(format.AssetBundleProviderType)
}

// Location stores a resource location record with the given provider and
// extra data references.
func (c *BinaryCatalog) Location(provider, data int32) int32 {
	return c.Alloc(c.words(
		format.NullOffset, // primary key
		format.NullOffset, // internal id
		provider,
		format.NullOffset, // dependencies
		0,                 // dependency hash
		data,
		format.NullOffset, // resource type
	))
}

// RequestOptions stores a bundle request options object whose first field is
// crc and an extra data record pointing at it. It returns the data reference
// and the absolute offset of the checksum word.
func (c *BinaryCatalog) RequestOptions(crc int32) (data int32, crcOffset int64) {
	obj := c.Alloc(c.words(crc, 0x1000, 0, 0))
	data = c.Alloc(c.words(format.NullOffset, obj-format.DataObjectHeaderSize))
	return data, int64(obj)
}

// SetKeys stores the key/location-list pair array and points the header at it.
func (c *BinaryCatalog) SetKeys(pairs ...int32) {
	off := c.Int32Array(pairs...)
	c.Put(format.BinaryKeysOffsetOffset, off)
}

// KeyedLists stores one key string per location list and wires the pair array.
func (c *BinaryCatalog) KeyedLists(lists ...int32) {
	pairs := make([]int32, 0, 2*len(lists))
	for i, l := range lists {
		pairs = append(pairs, c.ASCII("key"+string(rune('a'+i%26))), l)
	}
	c.SetKeys(pairs...)
}
