// Package stream reads fixed-width integers and byte spans from a positioned
// byte source in a byte order fixed for the lifetime of the reader.
package stream

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/joshuapare/catalogkit/internal/format"
)

// Reader is an endian-aware view over an io.ReaderAt of known size.
//
// Reads never move a shared cursor, so one Reader can be used while other code
// writes to disjoint ranges of the same backing buffer.
type Reader struct {
	src   io.ReaderAt
	size  int64
	order binary.ByteOrder
}

// New creates a Reader over src. size bounds every read.
func New(src io.ReaderAt, size int64, order binary.ByteOrder) *Reader {
	return &Reader{src: src, size: size, order: order}
}

// Order returns the byte order used for integer reads.
func (r *Reader) Order() binary.ByteOrder { return r.order }

// Size returns the number of readable bytes.
func (r *Reader) Size() int64 { return r.size }

// Reversed reports whether the byte order differs from little-endian, the
// order catalogs are produced in on common targets.
func (r *Reader) Reversed() bool { return r.order == binary.BigEndian }

// BytesAt reads n bytes at off into a fresh slice.
func (r *Reader) BytesAt(off int64, n int) ([]byte, error) {
	if off < 0 || n < 0 || off > r.size || int64(n) > r.size-off {
		return nil, fmt.Errorf("stream: read %d bytes at 0x%x (size %d): %w", n, off, r.size, format.ErrTruncated)
	}
	out := make([]byte, n)
	if n == 0 {
		return out, nil
	}
	if got, err := r.src.ReadAt(out, off); got < n {
		return nil, fmt.Errorf("stream: read at 0x%x: %w", off, err)
	}
	return out, nil
}

// Uint32At reads a uint32 at off.
func (r *Reader) Uint32At(off int64) (uint32, error) {
	var b [format.WordSize]byte
	if off < 0 || off > r.size-format.WordSize {
		return 0, fmt.Errorf("stream: word at 0x%x (size %d): %w", off, r.size, format.ErrTruncated)
	}
	if got, err := r.src.ReadAt(b[:], off); got < len(b) {
		return 0, fmt.Errorf("stream: read at 0x%x: %w", off, err)
	}
	return r.order.Uint32(b[:]), nil
}

// Int32At reads an int32 at off.
func (r *Reader) Int32At(off int64) (int32, error) {
	v, err := r.Uint32At(off)
	return int32(v), err
}

// ObjectSizeAt returns the byte length stored in the word preceding off.
func (r *Reader) ObjectSizeAt(off int64) (int32, error) {
	n, err := r.Int32At(off - format.WordSize)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("stream: negative length %d before 0x%x: %w", n, off, format.ErrBadOffset)
	}
	return n, nil
}

// Int32ArrayAt reads the length-prefixed int32 array at off. The byte length
// of the array lives in the word before off.
func (r *Reader) Int32ArrayAt(off int64) ([]int32, error) {
	n, err := r.ObjectSizeAt(off)
	if err != nil {
		return nil, err
	}
	raw, err := r.BytesAt(off, int(n))
	if err != nil {
		return nil, err
	}
	out := make([]int32, len(raw)/format.WordSize)
	for i := range out {
		out[i] = int32(r.order.Uint32(raw[i*format.WordSize:]))
	}
	return out, nil
}
