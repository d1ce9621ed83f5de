package buf

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCursorMixedOrder(t *testing.T) {
	b := []byte{
		0x00, 0x00, 0x00, 0x16, // BE 22
		0x2A, 0x00, 0x00, 0x00, // LE 42
		'a', 'b', 0,
		0xFF, // padding
		0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	}
	c := NewCursor(b, binary.BigEndian)
	v, err := c.U32()
	require.NoError(t, err)
	require.Equal(t, uint32(22), v)

	c.Order = binary.LittleEndian
	i, err := c.I32()
	require.NoError(t, err)
	require.Equal(t, int32(42), i)

	s, err := c.CString()
	require.NoError(t, err)
	require.Equal(t, "ab", s)

	c.Align(4)
	require.Equal(t, 12, c.Pos())
	n, err := c.I64()
	require.NoError(t, err)
	require.Equal(t, int64(1), n)
	require.Equal(t, 0, c.Remaining())

	_, err = c.U8()
	require.ErrorIs(t, err, ErrShort)
}

func TestCursorErrors(t *testing.T) {
	c := NewCursor([]byte{'x', 'y'}, binary.LittleEndian)
	_, err := c.CString()
	require.ErrorIs(t, err, ErrShort)

	require.Error(t, c.Seek(3))
	require.NoError(t, c.Seek(2))

	c = NewCursor([]byte{0x10, 0, 0, 0, 1, 2}, binary.LittleEndian)
	_, err = c.Count(4)
	require.ErrorIs(t, err, ErrShort)

	c = NewCursor([]byte{0x02, 0, 0, 0, 1, 2}, binary.LittleEndian)
	n, err := c.Count(1)
	require.NoError(t, err)
	require.Equal(t, 2, n)
}
