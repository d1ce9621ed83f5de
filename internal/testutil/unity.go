package testutil

import (
	"bytes"
	"encoding/binary"

	"github.com/joshuapare/catalogkit/internal/buf"
	"github.com/joshuapare/catalogkit/internal/format"
	"github.com/joshuapare/catalogkit/internal/unityfs"
)

// SerializedObject is one object of a synthetic SerializedFile.
type SerializedObject struct {
	PathID  int64
	ClassID int32
	Data    []byte
}

// SerializedFile builds a SerializedFile without type trees. Objects are
// stored in the given order at 8-byte aligned offsets.
func SerializedFile(version uint32, order binary.ByteOrder, objs ...SerializedObject) []byte {
	headerLen := 20
	if version >= 22 {
		headerLen = 48
	}

	var classes []int32
	typeIndex := map[int32]int32{}
	for _, o := range objs {
		if _, ok := typeIndex[o.ClassID]; !ok {
			typeIndex[o.ClassID] = int32(len(classes))
			classes = append(classes, o.ClassID)
		}
	}

	// Object starts relative to the data offset.
	starts := make([]int, len(objs))
	dataLen := 0
	for i, o := range objs {
		dataLen = buf.AlignUp(dataLen, 8)
		starts[i] = dataLen
		dataLen += len(o.Data)
	}

	m := &metaWriter{order: order, base: headerLen}
	m.cstring("2022.3.10f1")
	m.i32(19) // platform
	m.u8(0)   // no type trees
	m.i32(int32(len(classes)))
	for _, id := range classes {
		m.i32(id)
		m.u8(0)
		m.i16(-1)
		if id == 114 {
			m.raw(make([]byte, 16))
		}
		m.raw(make([]byte, 16))
	}
	m.i32(int32(len(objs)))
	for i, o := range objs {
		m.align(4)
		m.i64(o.PathID)
		if version >= 22 {
			m.i64(int64(starts[i]))
		} else {
			m.i32(int32(starts[i]))
		}
		m.i32(int32(len(o.Data)))
		m.i32(typeIndex[o.ClassID])
	}
	m.i32(0) // script types
	m.i32(0) // externals
	if version >= 20 {
		m.i32(0) // ref types
	}
	m.cstring("")

	metadata := m.b.Bytes()
	dataOffset := buf.AlignUp(headerLen+len(metadata), 16)
	fileSize := dataOffset + dataLen

	out := make([]byte, fileSize)
	be := binary.BigEndian
	be.PutUint32(out[0x00:], uint32(len(metadata)))
	be.PutUint32(out[0x08:], version)
	if version >= 22 {
		be.PutUint32(out[0x14:], uint32(len(metadata)))
		be.PutUint64(out[0x18:], uint64(fileSize))
		be.PutUint64(out[0x20:], uint64(dataOffset))
	} else {
		be.PutUint32(out[0x04:], uint32(fileSize))
		be.PutUint32(out[0x0C:], uint32(dataOffset))
	}
	if order == binary.BigEndian {
		out[0x10] = 1
	}
	copy(out[headerLen:], metadata)
	for i, o := range objs {
		copy(out[dataOffset+starts[i]:], o.Data)
	}
	return out
}

// TextAsset encodes a TextAsset object.
func TextAsset(name string, payload []byte, order binary.ByteOrder) []byte {
	return format.EncodeTextAsset(name, payload, order)
}

// Bundle wraps the given serialized files in an LZ4HC-compressed UnityFS
// bundle, one node per file.
func Bundle(files ...[]byte) []byte {
	names := make([]string, len(files))
	flags := make([]uint32, len(files))
	for i := range files {
		names[i] = "CAB-" + string(rune('a'+i))
		flags[i] = unityfs.NodeFlagSerialized
	}
	h := unityfs.Header{Version: 8, PlayerVersion: "5.x.x", EngineVersion: "2022.3.10f1"}
	img, err := unityfs.New(h, unityfs.CompressionLZ4HC, names, files, flags).Bytes()
	if err != nil {
		panic(err)
	}
	return img
}

type metaWriter struct {
	b     bytes.Buffer
	order binary.ByteOrder
	base  int
}

func (m *metaWriter) raw(p []byte) { m.b.Write(p) }
func (m *metaWriter) u8(v byte)    { m.b.WriteByte(v) }

func (m *metaWriter) i16(v int16) {
	var b [2]byte
	m.order.PutUint16(b[:], uint16(v))
	m.b.Write(b[:])
}

func (m *metaWriter) i32(v int32) {
	var b [4]byte
	m.order.PutUint32(b[:], uint32(v))
	m.b.Write(b[:])
}

func (m *metaWriter) i64(v int64) {
	var b [8]byte
	m.order.PutUint64(b[:], uint64(v))
	m.b.Write(b[:])
}

func (m *metaWriter) cstring(s string) {
	m.b.WriteString(s)
	m.b.WriteByte(0)
}

// align pads to n relative to the start of the file.
func (m *metaWriter) align(n int) {
	for (m.base+m.b.Len())%n != 0 {
		m.b.WriteByte(0)
	}
}
