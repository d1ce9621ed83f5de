package format

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseBinaryHeaderLittleEndian(t *testing.T) {
	b := make([]byte, BinaryHeaderSize)
	binary.LittleEndian.PutUint32(b[BinaryMagicOffset:], BinaryMagic)
	binary.LittleEndian.PutUint32(b[BinaryVersionOffset:], 2)
	binary.LittleEndian.PutUint32(b[BinaryKeysOffsetOffset:], 0x40)

	hdr, err := ParseBinaryHeader(b)
	require.NoError(t, err)
	require.Equal(t, binary.ByteOrder(binary.LittleEndian), hdr.Order)
	require.Equal(t, int32(2), hdr.Version)
	require.Equal(t, int32(0x40), hdr.KeysOffset)
	require.True(t, hdr.Known())
}

func TestParseBinaryHeaderBigEndian(t *testing.T) {
	b := make([]byte, BinaryHeaderSize)
	binary.BigEndian.PutUint32(b[BinaryMagicOffset:], BinaryMagic)
	binary.BigEndian.PutUint32(b[BinaryVersionOffset:], 7)
	binary.BigEndian.PutUint32(b[BinaryKeysOffsetOffset:], 0xFFFFFFFF)

	hdr, err := ParseBinaryHeader(b)
	require.NoError(t, err)
	require.Equal(t, binary.ByteOrder(binary.BigEndian), hdr.Order)
	require.Equal(t, int32(7), hdr.Version)
	require.Equal(t, NullOffset, hdr.KeysOffset)
	require.False(t, hdr.Known())
}

func TestParseBinaryHeaderErrors(t *testing.T) {
	_, err := ParseBinaryHeader([]byte{1, 2, 3})
	require.ErrorIs(t, err, ErrTruncated)

	_, err = ParseBinaryHeader([]byte(`{"m_LocatorId":""}`))
	require.ErrorIs(t, err, ErrSignatureMismatch)
}
