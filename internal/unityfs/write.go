package unityfs

import (
	"bytes"
	"encoding/binary"

	"github.com/joshuapare/catalogkit/internal/buf"
	"github.com/joshuapare/catalogkit/internal/format"
)

// Bytes serializes the bundle. The node stream is re-chunked into ChunkSize
// blocks compressed with bu.Compression; the blocks info follows the header
// directly. Unsupported codecs fall back to LZ4HC.
func (bu *Bundle) Bytes() ([]byte, error) {
	codec := bu.Compression
	if codec == CompressionLZMA {
		codec = CompressionLZ4HC
	}

	var payload bytes.Buffer
	blocks := make([]Block, 0, len(bu.data)/ChunkSize+1)
	for start := 0; start < len(bu.data); start += ChunkSize {
		end := min(start+ChunkSize, len(bu.data))
		chunk, used, err := compress(bu.data[start:end], codec)
		if err != nil {
			return nil, err
		}
		payload.Write(chunk)
		blocks = append(blocks, Block{
			UncompressedSize: uint32(end - start),
			CompressedSize:   uint32(len(chunk)),
			Flags:            uint16(used),
		})
	}
	bu.Blocks = blocks

	info := bu.encodeInfo()
	packedInfo, infoCodec, err := compress(info, codec)
	if err != nil {
		return nil, err
	}

	h := bu.Header
	h.Flags &^= FlagCompressionMask | FlagBlocksInfoAtEnd
	h.Flags |= uint32(infoCodec) | FlagBlocksAndDirInfo

	var out bytes.Buffer
	out.Write(format.ContainerSignature)
	out.WriteByte(0)
	writeU32(&out, h.Version)
	writeCString(&out, h.PlayerVersion)
	writeCString(&out, h.EngineVersion)
	sizePos := out.Len()
	writeU64(&out, 0)
	writeU32(&out, uint32(len(packedInfo)))
	writeU32(&out, uint32(len(info)))
	writeU32(&out, h.Flags)
	if h.Version >= 7 {
		pad(&out, 16)
	}
	out.Write(packedInfo)
	if h.Flags&FlagBlockInfoPadding != 0 {
		pad(&out, 16)
	}
	out.Write(payload.Bytes())

	img := out.Bytes()
	binary.BigEndian.PutUint64(img[sizePos:], uint64(len(img)))
	h.Size = int64(len(img))
	bu.Header = h
	return img, nil
}

func (bu *Bundle) encodeInfo() []byte {
	var w bytes.Buffer
	w.Write(bu.Hash[:])
	writeU32(&w, uint32(len(bu.Blocks)))
	for _, b := range bu.Blocks {
		writeU32(&w, b.UncompressedSize)
		writeU32(&w, b.CompressedSize)
		var f [2]byte
		binary.BigEndian.PutUint16(f[:], b.Flags)
		w.Write(f[:])
	}
	writeU32(&w, uint32(len(bu.Nodes)))
	for _, n := range bu.Nodes {
		writeU64(&w, uint64(n.Offset))
		writeU64(&w, uint64(n.Size))
		writeU32(&w, n.Flags)
		writeCString(&w, n.Path)
	}
	return w.Bytes()
}

// New builds a bundle from named node contents laid out back to back.
func New(h Header, codec Compression, names []string, contents [][]byte, flags []uint32) *Bundle {
	bu := &Bundle{Header: h, Compression: codec}
	for i, name := range names {
		var f uint32
		if i < len(flags) {
			f = flags[i]
		}
		bu.Nodes = append(bu.Nodes, Node{Offset: int64(len(bu.data)), Size: int64(len(contents[i])), Flags: f, Path: name})
		bu.data = append(bu.data, contents[i]...)
	}
	return bu
}

func writeU32(w *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	w.Write(b[:])
}

func writeU64(w *bytes.Buffer, v uint64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	w.Write(b[:])
}

func writeCString(w *bytes.Buffer, s string) {
	w.WriteString(s)
	w.WriteByte(0)
}

func pad(w *bytes.Buffer, align int) {
	for w.Len() != buf.AlignUp(w.Len(), align) {
		w.WriteByte(0)
	}
}
