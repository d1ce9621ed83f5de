// Package serialized reads the object table of a SerializedFile and
// replaces object payloads.
//
// Only format versions 17 and later are understood. The header is always
// big-endian; the metadata and objects use the order named by the header's
// endian byte (0 = little-endian).
//
// Header (version < 22):
//
//	0x00 uint32 metadata size
//	0x04 uint32 file size
//	0x08 uint32 version
//	0x0C uint32 data offset
//	0x10 uint8  endian, 3 reserved
//
// Version 22 and later append uint32 metadata size, int64 file size,
// int64 data offset and an unused int64.
package serialized

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sort"

	"github.com/joshuapare/catalogkit/internal/buf"
	"github.com/joshuapare/catalogkit/internal/format"
)

const (
	MinVersion        = 17
	VersionLargeFiles = 22
	versionNodeHash   = 19
	versionTypeDeps   = 21
	monoBehaviourID   = 114
	objectAlignment   = 8
	hashSize          = 16
)

// ErrObjectRange is returned for object indexes or extents outside the file.
var ErrObjectRange = errors.New("serialized: object out of range")

// Header is the decoded file header.
type Header struct {
	MetadataSize uint32
	FileSize     int64
	Version      uint32
	DataOffset   int64
	BigEndian    bool
}

// Type is one entry of the type table.
type Type struct {
	ClassID         int32
	Stripped        bool
	ScriptTypeIndex int16
}

// Object is one entry of the object table.
type Object struct {
	PathID    int64
	ByteStart int64 // absolute
	ByteSize  uint32
	TypeID    int32
	ClassID   int32

	startPos int // position of the byteStart field
	sizePos  int
}

// File is a parsed SerializedFile.
type File struct {
	Header       Header
	UnityVersion string
	Platform     int32
	Types        []Type
	Objects      []Object

	order binary.ByteOrder
	data  []byte
}

// Parse decodes the header, type table and object table of b. b is copied.
func Parse(b []byte) (*File, error) {
	f := &File{data: append([]byte(nil), b...)}
	c := buf.NewCursor(f.data, binary.BigEndian)
	if err := f.parseHeader(c); err != nil {
		return nil, err
	}
	if err := f.parseMetadata(c); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *File) parseHeader(c *buf.Cursor) error {
	h := &f.Header
	metadataSize, err := c.U32()
	if err != nil {
		return fmt.Errorf("serialized: header: %w", err)
	}
	fileSize, err := c.U32()
	if err != nil {
		return fmt.Errorf("serialized: header: %w", err)
	}
	if h.Version, err = c.U32(); err != nil {
		return fmt.Errorf("serialized: header: %w", err)
	}
	dataOffset, err := c.U32()
	if err != nil {
		return fmt.Errorf("serialized: header: %w", err)
	}
	if h.Version < MinVersion || h.Version > 100 {
		return fmt.Errorf("serialized: version %d: %w", h.Version, format.ErrUnsupported)
	}
	endian, err := c.U8()
	if err != nil {
		return fmt.Errorf("serialized: header: %w", err)
	}
	if _, err := c.Bytes(3); err != nil {
		return fmt.Errorf("serialized: header: %w", err)
	}
	h.MetadataSize, h.FileSize, h.DataOffset = metadataSize, int64(fileSize), int64(dataOffset)
	if h.Version >= VersionLargeFiles {
		if h.MetadataSize, err = c.U32(); err != nil {
			return fmt.Errorf("serialized: header: %w", err)
		}
		if h.FileSize, err = c.I64(); err != nil {
			return fmt.Errorf("serialized: header: %w", err)
		}
		if h.DataOffset, err = c.I64(); err != nil {
			return fmt.Errorf("serialized: header: %w", err)
		}
		if _, err = c.I64(); err != nil {
			return fmt.Errorf("serialized: header: %w", err)
		}
	}
	h.BigEndian = endian != 0
	f.order = binary.LittleEndian
	if h.BigEndian {
		f.order = binary.BigEndian
	}
	if h.DataOffset < 0 || h.DataOffset > int64(len(f.data)) {
		return fmt.Errorf("serialized: data offset 0x%x of %d: %w", h.DataOffset, len(f.data), format.ErrTruncated)
	}
	return nil
}

func (f *File) parseMetadata(c *buf.Cursor) error {
	c.Order = f.order
	var err error
	if f.UnityVersion, err = c.CString(); err != nil {
		return fmt.Errorf("serialized: unity version: %w", err)
	}
	if f.Platform, err = c.I32(); err != nil {
		return fmt.Errorf("serialized: platform: %w", err)
	}
	typeTree, err := c.Bool()
	if err != nil {
		return fmt.Errorf("serialized: type tree flag: %w", err)
	}

	n, err := c.Count(1)
	if err != nil {
		return fmt.Errorf("serialized: type count: %w", err)
	}
	f.Types = make([]Type, n)
	for i := range f.Types {
		if f.Types[i], err = f.readType(c, typeTree); err != nil {
			return fmt.Errorf("serialized: type %d: %w", i, err)
		}
	}

	n, err = c.Count(20)
	if err != nil {
		return fmt.Errorf("serialized: object count: %w", err)
	}
	f.Objects = make([]Object, n)
	for i := range f.Objects {
		if f.Objects[i], err = f.readObject(c); err != nil {
			return fmt.Errorf("serialized: object %d: %w", i, err)
		}
	}
	return nil
}

func (f *File) readType(c *buf.Cursor, typeTree bool) (Type, error) {
	var t Type
	var err error
	if t.ClassID, err = c.I32(); err != nil {
		return t, err
	}
	if t.Stripped, err = c.Bool(); err != nil {
		return t, err
	}
	if t.ScriptTypeIndex, err = c.I16(); err != nil {
		return t, err
	}
	if t.ClassID == monoBehaviourID {
		if _, err = c.Bytes(hashSize); err != nil { // script id
			return t, err
		}
	}
	if _, err = c.Bytes(hashSize); err != nil { // old type hash
		return t, err
	}
	if !typeTree {
		return t, nil
	}

	nodes, err := c.I32()
	if err != nil {
		return t, err
	}
	strBuf, err := c.I32()
	if err != nil {
		return t, err
	}
	nodeSize := 24
	if f.Header.Version >= versionNodeHash {
		nodeSize = 32
	}
	if nodes < 0 || strBuf < 0 {
		return t, fmt.Errorf("type tree %d nodes, %d string bytes: %w", nodes, strBuf, format.ErrBadOffset)
	}
	if _, err = c.Bytes(int(nodes)*nodeSize + int(strBuf)); err != nil {
		return t, err
	}
	if f.Header.Version >= versionTypeDeps {
		deps, err := c.Count(4)
		if err != nil {
			return t, err
		}
		if _, err = c.Bytes(deps * 4); err != nil {
			return t, err
		}
	}
	return t, nil
}

func (f *File) readObject(c *buf.Cursor) (Object, error) {
	var o Object
	var err error
	c.Align(4)
	if o.PathID, err = c.I64(); err != nil {
		return o, err
	}
	o.startPos = c.Pos()
	if f.Header.Version >= VersionLargeFiles {
		o.ByteStart, err = c.I64()
	} else {
		var v uint32
		v, err = c.U32()
		o.ByteStart = int64(v)
	}
	if err != nil {
		return o, err
	}
	o.ByteStart += f.Header.DataOffset
	o.sizePos = c.Pos()
	if o.ByteSize, err = c.U32(); err != nil {
		return o, err
	}
	if o.TypeID, err = c.I32(); err != nil {
		return o, err
	}
	o.ClassID = -1
	if o.TypeID >= 0 && int(o.TypeID) < len(f.Types) {
		o.ClassID = f.Types[o.TypeID].ClassID
	}
	if o.ByteStart < 0 || o.ByteStart+int64(o.ByteSize) > int64(len(f.data)) {
		return o, fmt.Errorf("%w: path id %d [0x%x+%d] of %d", ErrObjectRange, o.PathID, o.ByteStart, o.ByteSize, len(f.data))
	}
	return o, nil
}

// Order returns the byte order of the metadata and objects.
func (f *File) Order() binary.ByteOrder { return f.order }

// ObjectData returns the payload of object i. The slice aliases the file.
func (f *File) ObjectData(i int) ([]byte, error) {
	if i < 0 || i >= len(f.Objects) {
		return nil, fmt.Errorf("%w: index %d of %d", ErrObjectRange, i, len(f.Objects))
	}
	o := f.Objects[i]
	return f.data[o.ByteStart : o.ByteStart+int64(o.ByteSize)], nil
}

// Bytes returns the file image.
func (f *File) Bytes() []byte { return f.data }

// Replace swaps the payload of object i. Objects are re-laid out in their
// original order at 8-byte aligned starts, and the object table and file
// size are rewritten.
func (f *File) Replace(i int, payload []byte) error {
	if i < 0 || i >= len(f.Objects) {
		return fmt.Errorf("%w: index %d of %d", ErrObjectRange, i, len(f.Objects))
	}
	order := make([]int, len(f.Objects))
	for j := range order {
		order[j] = j
	}
	sort.SliceStable(order, func(a, b int) bool {
		return f.Objects[order[a]].ByteStart < f.Objects[order[b]].ByteStart
	})

	base := f.Header.DataOffset
	out := append([]byte(nil), f.data[:base]...)
	for _, j := range order {
		o := &f.Objects[j]
		body := f.data[o.ByteStart : o.ByteStart+int64(o.ByteSize)]
		if j == i {
			body = payload
		}
		rel := buf.AlignUp(len(out)-int(base), objectAlignment)
		for len(out) < int(base)+rel {
			out = append(out, 0)
		}
		o.ByteStart = base + int64(rel)
		o.ByteSize = uint32(len(body))
		out = append(out, body...)
	}

	for _, o := range f.Objects {
		rel := o.ByteStart - base
		if f.Header.Version >= VersionLargeFiles {
			f.order.PutUint64(out[o.startPos:], uint64(rel))
		} else {
			f.order.PutUint32(out[o.startPos:], uint32(rel))
		}
		f.order.PutUint32(out[o.sizePos:], o.ByteSize)
	}

	f.Header.FileSize = int64(len(out))
	if f.Header.Version >= VersionLargeFiles {
		binary.BigEndian.PutUint64(out[0x18:], uint64(len(out)))
	} else {
		binary.BigEndian.PutUint32(out[0x04:], uint32(len(out)))
	}
	f.data = out
	return nil
}
