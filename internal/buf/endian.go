// Package buf contains bounds and byte-order helpers shared by the catalog decoders.
package buf

import "encoding/binary"

// I32 reads an int32 from b in the given byte order. Returns 0 when b is too short.
func I32(b []byte, order binary.ByteOrder) int32 {
	if len(b) < 4 {
		return 0
	}
	return int32(order.Uint32(b))
}

// I32LE reads a little-endian int32 from b. Returns 0 when b is too short.
func I32LE(b []byte) int32 {
	return I32(b, binary.LittleEndian)
}

// SwapUTF16Units swaps each 2-byte unit of b in place. A trailing odd byte is left alone.
func SwapUTF16Units(b []byte) {
	for i := 0; i+1 < len(b); i += 2 {
		b[i], b[i+1] = b[i+1], b[i]
	}
}
