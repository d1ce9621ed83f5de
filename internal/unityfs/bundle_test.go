package unityfs

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/catalogkit/internal/buf"
	"github.com/joshuapare/catalogkit/internal/format"
)

var testHeader = Header{Version: 8, PlayerVersion: "5.x.x", EngineVersion: "2022.3.10f1"}

func sample() (names []string, contents [][]byte) {
	big := bytes.Repeat([]byte("catalog-entry;"), 20000) // spans several chunks
	return []string{"CAB-0001", "CAB-0001.resS"}, [][]byte{big, []byte("raw resource bytes")}
}

func TestRoundTrip(t *testing.T) {
	for _, codec := range []Compression{CompressionNone, CompressionLZ4, CompressionLZ4HC} {
		names, contents := sample()
		bu := New(testHeader, codec, names, contents, []uint32{NodeFlagSerialized, 0})
		img, err := bu.Bytes()
		require.NoError(t, err)
		require.True(t, Sniff(img))
		require.Equal(t, int64(len(img)), bu.Header.Size)

		got, err := Parse(img)
		require.NoError(t, err, "codec %d", codec)
		require.Equal(t, testHeader.PlayerVersion, got.Header.PlayerVersion)
		require.Equal(t, testHeader.EngineVersion, got.Header.EngineVersion)
		require.Len(t, got.Nodes, 2)
		require.Equal(t, NodeFlagSerialized, got.Nodes[0].Flags)
		for i := range names {
			data, err := got.NodeData(i)
			require.NoError(t, err)
			require.Equal(t, contents[i], data)
		}
		if codec != CompressionNone {
			require.Less(t, len(img), len(contents[0]), "codec %d should shrink", codec)
		}
	}
}

func TestReplaceNode(t *testing.T) {
	names, contents := sample()
	bu := New(testHeader, CompressionLZ4HC, names, contents, nil)
	require.NoError(t, bu.ReplaceNode(0, []byte("short")))

	img, err := bu.Bytes()
	require.NoError(t, err)
	got, err := Parse(img)
	require.NoError(t, err)

	first, err := got.NodeData(0)
	require.NoError(t, err)
	require.Equal(t, "short", string(first))
	second, err := got.NodeData(1)
	require.NoError(t, err)
	require.Equal(t, contents[1], second)

	require.ErrorIs(t, bu.ReplaceNode(5, nil), ErrNodeRange)
	_, err = got.NodeData(-1)
	require.ErrorIs(t, err, ErrNodeRange)
}

// flagsOffset returns the position of the flags word in an image written by Bytes.
func flagsOffset(h Header) int {
	return len("UnityFS") + 1 + 4 + len(h.PlayerVersion) + 1 + len(h.EngineVersion) + 1 + 8 + 4 + 4
}

// headerEnd returns where the blocks info starts in an image written by Bytes.
func headerEnd(h Header) int {
	return buf.AlignUp(flagsOffset(h)+4, 16)
}

func TestParseBlocksInfoAtEnd(t *testing.T) {
	names, contents := sample()
	bu := New(testHeader, CompressionNone, names[1:], contents[1:], nil)
	img, err := bu.Bytes()
	require.NoError(t, err)

	start := headerEnd(testHeader)
	flagsPos := flagsOffset(testHeader)
	infoLen := int(binary.BigEndian.Uint32(img[flagsPos-8:]))
	info := append([]byte(nil), img[start:start+infoLen]...)

	moved := append([]byte(nil), img[:start]...)
	moved = append(moved, img[start+infoLen:]...)
	moved = append(moved, info...)
	flags := binary.BigEndian.Uint32(moved[flagsPos:]) | FlagBlocksInfoAtEnd
	binary.BigEndian.PutUint32(moved[flagsPos:], flags)

	got, err := Parse(moved)
	require.NoError(t, err)
	data, err := got.NodeData(0)
	require.NoError(t, err)
	require.Equal(t, contents[1], data)
}

func TestParseRejectsLZMA(t *testing.T) {
	bu := New(testHeader, CompressionNone, []string{"a"}, [][]byte{[]byte("payload")}, nil)
	img, err := bu.Bytes()
	require.NoError(t, err)

	// First block's flags: hash(16) + count(4) + sizes(8).
	binary.BigEndian.PutUint16(img[headerEnd(testHeader)+28:], uint16(CompressionLZMA))
	_, err = Parse(img)
	require.ErrorIs(t, err, format.ErrUnsupported)
}

func TestParseErrors(t *testing.T) {
	_, err := Parse([]byte("UnityWeb\x00"))
	require.ErrorIs(t, err, format.ErrSignatureMismatch)

	bu := New(testHeader, CompressionLZ4, []string{"a"}, [][]byte{bytes.Repeat([]byte{7}, 4096)}, nil)
	img, err := bu.Bytes()
	require.NoError(t, err)
	_, err = Parse(img[:len(img)-10])
	require.ErrorIs(t, err, format.ErrTruncated)

	old := append([]byte(nil), img...)
	binary.BigEndian.PutUint32(old[8:], 5)
	_, err = Parse(old)
	require.ErrorIs(t, err, format.ErrUnsupported)
}

func TestParseRejectsOversizedBlocks(t *testing.T) {
	bu := New(testHeader, CompressionNone, []string{"a"}, [][]byte{[]byte("payload")}, nil)
	img, err := bu.Bytes()
	require.NoError(t, err)

	// First block's uncompressed size: hash(16) + count(4).
	binary.BigEndian.PutUint32(img[headerEnd(testHeader)+20:], 0xFFFFFFF0)
	_, err = Parse(img)
	require.ErrorIs(t, err, format.ErrTruncated)
}
