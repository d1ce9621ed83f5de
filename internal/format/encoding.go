package format

import "encoding/binary"

// PutI32 writes v at off in the given byte order.
func PutI32(b []byte, off int, v int32, order binary.ByteOrder) {
	order.PutUint32(b[off:off+4], uint32(v))
}

// ReadI32 reads an int32 at off in the given byte order.
func ReadI32(b []byte, off int, order binary.ByteOrder) int32 {
	return int32(order.Uint32(b[off : off+4]))
}

// PutI32LE writes a little-endian int32 at off.
func PutI32LE(b []byte, off int, v int32) {
	binary.LittleEndian.PutUint32(b[off:off+4], uint32(v))
}
