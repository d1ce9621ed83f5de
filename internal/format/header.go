package format

import (
	"encoding/binary"
	"fmt"

	"github.com/joshuapare/catalogkit/internal/buf"
)

// DetectBinaryOrder inspects the first word of b and reports the byte order of
// a binary catalog, or ok = false when the magic does not match either order.
func DetectBinaryOrder(b []byte) (order binary.ByteOrder, ok bool) {
	if len(b) < WordSize {
		return nil, false
	}
	switch binary.LittleEndian.Uint32(b) {
	case BinaryMagic:
		return binary.LittleEndian, true
	case BinaryMagicSwapped:
		return binary.BigEndian, true
	}
	return nil, false
}

// BinaryHeader is the fixed prefix of a binary catalog.
type BinaryHeader struct {
	Order      binary.ByteOrder
	Version    int32
	KeysOffset int32
}

// Known reports whether the header version has a known layout.
func (h BinaryHeader) Known() bool {
	return h.Version == BinaryVersion1 || h.Version == BinaryVersion2
}

// ParseBinaryHeader validates the magic and extracts the header fields.
func ParseBinaryHeader(b []byte) (BinaryHeader, error) {
	if len(b) < BinaryHeaderSize {
		return BinaryHeader{}, fmt.Errorf("binary header: %w", ErrTruncated)
	}
	order, ok := DetectBinaryOrder(b)
	if !ok {
		return BinaryHeader{}, fmt.Errorf("binary header: %w", ErrSignatureMismatch)
	}
	return BinaryHeader{
		Order:      order,
		Version:    buf.I32(b[BinaryVersionOffset:], order),
		KeysOffset: buf.I32(b[BinaryKeysOffsetOffset:], order),
	}, nil
}
