package format

import (
	"encoding/binary"
	"fmt"

	"github.com/joshuapare/catalogkit/internal/buf"
)

// TextAsset record layout inside a SerializedFile object:
//
//	int32   name length
//	bytes   name (UTF-8), zero-padded to a 4-byte boundary
//	int32   payload length
//	bytes   payload, zero-padded to a 4-byte boundary
//
// The loader rejects records whose prefixes disagree with this layout, so
// EncodeTextAsset must reproduce it byte for byte.

// DecodeTextAsset splits a TextAsset record into its name and payload.
func DecodeTextAsset(b []byte, order binary.ByteOrder) (name string, payload []byte, err error) {
	off := 0
	nameBytes, off, err := readAlignedString(b, off, order)
	if err != nil {
		return "", nil, fmt.Errorf("text asset name: %w", err)
	}
	payload, _, err = readAlignedString(b, off, order)
	if err != nil {
		return "", nil, fmt.Errorf("text asset payload: %w", err)
	}
	return string(nameBytes), payload, nil
}

// EncodeTextAsset builds a TextAsset record from name and payload.
func EncodeTextAsset(name string, payload []byte, order binary.ByteOrder) []byte {
	nameLen := buf.AlignUp(len(name), TextAssetAlignment)
	payloadLen := buf.AlignUp(len(payload), TextAssetAlignment)
	out := make([]byte, WordSize+nameLen+WordSize+payloadLen)
	PutI32(out, 0, int32(len(name)), order)
	copy(out[WordSize:], name)
	off := WordSize + nameLen
	PutI32(out, off, int32(len(payload)), order)
	copy(out[off+WordSize:], payload)
	return out
}

func readAlignedString(b []byte, off int, order binary.ByteOrder) ([]byte, int, error) {
	head, ok := buf.Slice(b, off, WordSize)
	if !ok {
		return nil, 0, ErrTruncated
	}
	n := int(buf.I32(head, order))
	body, ok := buf.Slice(b, off+WordSize, n)
	if !ok {
		return nil, 0, fmt.Errorf("length %d at 0x%x: %w", n, off, ErrTruncated)
	}
	next := off + WordSize + buf.AlignUp(n, TextAssetAlignment)
	if next > len(b) {
		next = len(b)
	}
	return body, next, nil
}
