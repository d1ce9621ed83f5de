package buf

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrShort is returned by Cursor reads that run past the end of the buffer.
var ErrShort = errors.New("buf: read past end")

// Cursor reads sequential fields from a byte slice. The byte order can be
// switched mid-stream, which headers written big-endian in front of a
// little-endian body need.
type Cursor struct {
	b     []byte
	pos   int
	Order binary.ByteOrder
}

// NewCursor returns a cursor at the start of b.
func NewCursor(b []byte, order binary.ByteOrder) *Cursor {
	return &Cursor{b: b, Order: order}
}

// Pos returns the current offset.
func (c *Cursor) Pos() int { return c.pos }

// Seek moves to an absolute offset.
func (c *Cursor) Seek(pos int) error {
	if pos < 0 || pos > len(c.b) {
		return fmt.Errorf("seek to 0x%x of %d bytes: %w", pos, len(c.b), ErrShort)
	}
	c.pos = pos
	return nil
}

// Remaining returns the number of unread bytes.
func (c *Cursor) Remaining() int { return len(c.b) - c.pos }

// Align advances to the next multiple of n, measured from the buffer start.
func (c *Cursor) Align(n int) {
	c.pos = AlignUp(c.pos, n)
}

// Bytes returns the next n bytes without copying.
func (c *Cursor) Bytes(n int) ([]byte, error) {
	out, ok := Slice(c.b, c.pos, n)
	if !ok {
		return nil, fmt.Errorf("%d bytes at 0x%x of %d: %w", n, c.pos, len(c.b), ErrShort)
	}
	c.pos += n
	return out, nil
}

// U8 reads one byte.
func (c *Cursor) U8() (byte, error) {
	b, err := c.Bytes(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// Bool reads one byte as a boolean.
func (c *Cursor) Bool() (bool, error) {
	v, err := c.U8()
	return v != 0, err
}

// U16 reads a uint16.
func (c *Cursor) U16() (uint16, error) {
	b, err := c.Bytes(2)
	if err != nil {
		return 0, err
	}
	return c.Order.Uint16(b), nil
}

// I16 reads an int16.
func (c *Cursor) I16() (int16, error) {
	v, err := c.U16()
	return int16(v), err
}

// U32 reads a uint32.
func (c *Cursor) U32() (uint32, error) {
	b, err := c.Bytes(4)
	if err != nil {
		return 0, err
	}
	return c.Order.Uint32(b), nil
}

// I32 reads an int32.
func (c *Cursor) I32() (int32, error) {
	v, err := c.U32()
	return int32(v), err
}

// I64 reads an int64.
func (c *Cursor) I64() (int64, error) {
	b, err := c.Bytes(8)
	if err != nil {
		return 0, err
	}
	return int64(c.Order.Uint64(b)), nil
}

// CString reads a NUL-terminated string and consumes the terminator.
func (c *Cursor) CString() (string, error) {
	if c.pos > len(c.b) {
		return "", fmt.Errorf("string at 0x%x of %d bytes: %w", c.pos, len(c.b), ErrShort)
	}
	i := bytes.IndexByte(c.b[c.pos:], 0)
	if i < 0 {
		return "", fmt.Errorf("unterminated string at 0x%x: %w", c.pos, ErrShort)
	}
	s := string(c.b[c.pos : c.pos+i])
	c.pos += i + 1
	return s, nil
}

// Count reads an int32 element count and checks that count elements of
// elemSize bytes can still follow.
func (c *Cursor) Count(elemSize int) (int, error) {
	n, err := c.I32()
	if err != nil {
		return 0, err
	}
	if _, err := CheckListBounds(len(c.b), c.pos, int(n), elemSize); err != nil {
		return 0, fmt.Errorf("count %d at 0x%x: %w (%v)", n, c.pos-4, ErrShort, err)
	}
	return int(n), nil
}
