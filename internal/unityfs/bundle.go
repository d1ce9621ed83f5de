// Package unityfs reads and writes UnityFS asset bundles.
//
// Layout (all integers big-endian):
//
//	"UnityFS\0"
//	uint32   format version (6 to 8)
//	cstring  player version
//	cstring  engine revision
//	int64    total bundle size
//	uint32   compressed blocks-info size
//	uint32   uncompressed blocks-info size
//	uint32   flags
//	         (version >= 7: pad to 16)
//	blocks info, unless FlagBlocksInfoAtEnd
//	         (FlagBlockInfoPadding: pad to 16)
//	storage blocks
//	blocks info, if FlagBlocksInfoAtEnd
//
// The blocks info holds a 16-byte hash, the storage block table and the node
// directory. Nodes address the concatenation of all decompressed blocks.
package unityfs

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/joshuapare/catalogkit/internal/buf"
	"github.com/joshuapare/catalogkit/internal/format"
)

// Compression is the codec of a storage block or of the blocks info.
type Compression uint32

const (
	CompressionNone  Compression = 0
	CompressionLZMA  Compression = 1
	CompressionLZ4   Compression = 2
	CompressionLZ4HC Compression = 3
)

// Archive flags.
const (
	FlagCompressionMask   uint32 = 0x3f
	FlagBlocksAndDirInfo  uint32 = 0x40
	FlagBlocksInfoAtEnd   uint32 = 0x80
	FlagOldWebPlugin      uint32 = 0x100
	FlagBlockInfoPadding  uint32 = 0x200
	blockFlagCompressMask uint16 = 0x3f
)

// NodeFlagSerialized marks nodes holding a SerializedFile.
const NodeFlagSerialized uint32 = 0x4

// ChunkSize is the uncompressed size of blocks written by Bytes.
const ChunkSize = 0x20000

const hashSize = 16

// maxExpansion bounds the decompressed size relative to the bundle size.
const maxExpansion = 256

var (
	// ErrSignature is returned for data that does not start with "UnityFS".
	ErrSignature = fmt.Errorf("unityfs: %w", format.ErrSignatureMismatch)
	// ErrNodeRange is returned for node indexes or extents outside the bundle.
	ErrNodeRange = errors.New("unityfs: node out of range")
)

// Header is the fixed bundle header.
type Header struct {
	Version       uint32
	PlayerVersion string
	EngineVersion string
	Size          int64
	Flags         uint32
}

// Block is one storage block entry.
type Block struct {
	UncompressedSize uint32
	CompressedSize   uint32
	Flags            uint16
}

// Node is one directory entry.
type Node struct {
	Offset int64
	Size   int64
	Flags  uint32
	Path   string
}

// Bundle is a decoded bundle. Node contents live in one decompressed stream.
type Bundle struct {
	Header Header
	Hash   [hashSize]byte
	Blocks []Block
	Nodes  []Node
	// Compression used by Bytes for storage blocks and the blocks info.
	Compression Compression
	data        []byte
}

// Sniff reports whether b starts with the UnityFS signature.
func Sniff(b []byte) bool {
	return bytes.HasPrefix(b, format.ContainerSignature)
}

// Parse decodes a bundle image.
func Parse(b []byte) (*Bundle, error) {
	c := buf.NewCursor(b, binary.BigEndian)
	sig, err := c.CString()
	if err != nil || sig != string(format.ContainerSignature) {
		return nil, ErrSignature
	}
	bu := &Bundle{}
	h := &bu.Header
	if h.Version, err = c.U32(); err != nil {
		return nil, fmt.Errorf("unityfs: header: %w", err)
	}
	if h.Version < 6 {
		return nil, fmt.Errorf("unityfs: version %d: %w", h.Version, format.ErrUnsupported)
	}
	if h.PlayerVersion, err = c.CString(); err != nil {
		return nil, fmt.Errorf("unityfs: header: %w", err)
	}
	if h.EngineVersion, err = c.CString(); err != nil {
		return nil, fmt.Errorf("unityfs: header: %w", err)
	}
	if h.Size, err = c.I64(); err != nil {
		return nil, fmt.Errorf("unityfs: header: %w", err)
	}
	compressedInfo, err := c.U32()
	if err != nil {
		return nil, fmt.Errorf("unityfs: header: %w", err)
	}
	uncompressedInfo, err := c.U32()
	if err != nil {
		return nil, fmt.Errorf("unityfs: header: %w", err)
	}
	if h.Flags, err = c.U32(); err != nil {
		return nil, fmt.Errorf("unityfs: header: %w", err)
	}
	if h.Version >= 7 {
		c.Align(16)
	}

	infoPos := c.Pos()
	dataPos := infoPos + int(compressedInfo)
	if h.Flags&FlagBlocksInfoAtEnd != 0 {
		infoPos = len(b) - int(compressedInfo)
		dataPos = c.Pos()
	}
	raw, ok := buf.Slice(b, infoPos, int(compressedInfo))
	if !ok {
		return nil, fmt.Errorf("unityfs: blocks info at 0x%x: %w", infoPos, format.ErrTruncated)
	}
	infoCodec := Compression(h.Flags & FlagCompressionMask)
	info, err := decompress(raw, int(uncompressedInfo), infoCodec)
	if err != nil {
		return nil, fmt.Errorf("unityfs: blocks info: %w", err)
	}
	if err := bu.parseInfo(info); err != nil {
		return nil, err
	}
	if h.Flags&FlagBlockInfoPadding != 0 {
		dataPos = buf.AlignUp(dataPos, 16)
	}
	bu.Compression = infoCodec
	if err := bu.readBlocks(b, dataPos); err != nil {
		return nil, err
	}
	for i, n := range bu.Nodes {
		if n.Offset < 0 || n.Size < 0 || n.Offset+n.Size > int64(len(bu.data)) {
			return nil, fmt.Errorf("%w: node %d %q [0x%x+%d] of %d", ErrNodeRange, i, n.Path, n.Offset, n.Size, len(bu.data))
		}
	}
	return bu, nil
}

func (bu *Bundle) parseInfo(info []byte) error {
	c := buf.NewCursor(info, binary.BigEndian)
	hash, err := c.Bytes(hashSize)
	if err != nil {
		return fmt.Errorf("unityfs: blocks info hash: %w", err)
	}
	copy(bu.Hash[:], hash)

	n, err := c.Count(10)
	if err != nil {
		return fmt.Errorf("unityfs: block count: %w", err)
	}
	bu.Blocks = make([]Block, n)
	for i := range bu.Blocks {
		blk := &bu.Blocks[i]
		if blk.UncompressedSize, err = c.U32(); err != nil {
			return err
		}
		if blk.CompressedSize, err = c.U32(); err != nil {
			return err
		}
		if blk.Flags, err = c.U16(); err != nil {
			return err
		}
	}

	n, err = c.Count(21)
	if err != nil {
		return fmt.Errorf("unityfs: node count: %w", err)
	}
	bu.Nodes = make([]Node, n)
	for i := range bu.Nodes {
		node := &bu.Nodes[i]
		if node.Offset, err = c.I64(); err != nil {
			return err
		}
		if node.Size, err = c.I64(); err != nil {
			return err
		}
		if node.Flags, err = c.U32(); err != nil {
			return err
		}
		if node.Path, err = c.CString(); err != nil {
			return err
		}
	}
	return nil
}

func (bu *Bundle) readBlocks(b []byte, pos int) error {
	var total int64
	for _, blk := range bu.Blocks {
		total += int64(blk.UncompressedSize)
	}
	// LZ4 expands at most ~255x; anything claiming more cannot decode.
	if total > int64(len(b))*maxExpansion {
		return fmt.Errorf("unityfs: blocks claim %d bytes from a %d byte bundle: %w", total, len(b), format.ErrTruncated)
	}
	out := make([]byte, 0, total)
	for i, blk := range bu.Blocks {
		raw, ok := buf.Slice(b, pos, int(blk.CompressedSize))
		if !ok {
			return fmt.Errorf("unityfs: block %d at 0x%x: %w", i, pos, format.ErrTruncated)
		}
		pos += int(blk.CompressedSize)
		dec, err := decompress(raw, int(blk.UncompressedSize), Compression(blk.Flags&blockFlagCompressMask))
		if err != nil {
			return fmt.Errorf("unityfs: block %d: %w", i, err)
		}
		out = append(out, dec...)
		if codec := Compression(blk.Flags & blockFlagCompressMask); codec != CompressionNone && i == 0 {
			bu.Compression = codec
		}
	}
	bu.data = out
	return nil
}

// NodeData returns the contents of node i. The slice aliases the bundle.
func (bu *Bundle) NodeData(i int) ([]byte, error) {
	if i < 0 || i >= len(bu.Nodes) {
		return nil, fmt.Errorf("%w: index %d of %d", ErrNodeRange, i, len(bu.Nodes))
	}
	n := bu.Nodes[i]
	return bu.data[n.Offset : n.Offset+n.Size], nil
}

// ReplaceNode swaps the contents of node i. Later nodes are shifted; their
// relative order in the stream is kept.
func (bu *Bundle) ReplaceNode(i int, data []byte) error {
	if i < 0 || i >= len(bu.Nodes) {
		return fmt.Errorf("%w: index %d of %d", ErrNodeRange, i, len(bu.Nodes))
	}
	target := bu.Nodes[i]
	start, end := target.Offset, target.Offset+target.Size
	delta := int64(len(data)) - target.Size

	out := make([]byte, 0, int64(len(bu.data))+delta)
	out = append(out, bu.data[:start]...)
	out = append(out, data...)
	out = append(out, bu.data[end:]...)
	bu.data = out

	bu.Nodes[i].Size = int64(len(data))
	for j := range bu.Nodes {
		if j != i && bu.Nodes[j].Offset >= end {
			bu.Nodes[j].Offset += delta
		}
	}
	return nil
}
