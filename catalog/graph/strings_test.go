package graph

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/catalogkit/catalog/stream"
	"github.com/joshuapare/catalogkit/internal/format"
	"github.com/joshuapare/catalogkit/internal/testutil"
)

func decoderFor(c *testutil.BinaryCatalog) *StringDecoder {
	img := c.Bytes()
	return NewStringDecoder(stream.New(bytes.NewReader(img), int64(len(img)), c.Order), c.Version)
}

func TestDecodeStatic(t *testing.T) {
	for _, order := range []binary.ByteOrder{binary.LittleEndian, binary.BigEndian} {
		c := testutil.NewBinaryCatalog(order, format.BinaryVersion2)
		ascii := c.ASCII("bundles/ui.bundle")
		wide := c.Unicode("ünïcode ✓")
		d := decoderFor(c)

		got, err := d.Decode(ascii, 0)
		require.NoError(t, err)
		require.Equal(t, "bundles/ui.bundle", got)

		got, err = d.Decode(wide, 0)
		require.NoError(t, err, "order %v", order)
		require.Equal(t, "ünïcode ✓", got, "order %v", order)
	}
}

func TestDecodeNull(t *testing.T) {
	c := testutil.NewBinaryCatalog(binary.LittleEndian, format.BinaryVersion2)
	got, err := decoderFor(c).Decode(format.NullOffset, '.')
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestDecodeFragmentJoinOrder(t *testing.T) {
	tests := []struct {
		name    string
		version int32
		sep     rune
		want    string
	}{
		{"v2 reverses with dot", format.BinaryVersion2, '/', "a.b"},
		{"v1 keeps order with separator", format.BinaryVersion1, '/', "b/a"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := testutil.NewBinaryCatalog(binary.LittleEndian, tt.version)
			ref := c.Fragmented(c.ASCII("b"), c.ASCII("a"))
			got, err := decoderFor(c).Decode(ref, tt.sep)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeFragmentSingleAndNullParts(t *testing.T) {
	c := testutil.NewBinaryCatalog(binary.BigEndian, format.BinaryVersion2)
	single := c.Fragmented(format.NullOffset, c.ASCII("only"), format.NullOffset)
	mixed := c.Fragmented(c.Unicode("x"), format.NullOffset, c.ASCII("y"))
	d := decoderFor(c)

	got, err := d.Decode(single, '.')
	require.NoError(t, err)
	require.Equal(t, "only", got)

	got, err = d.Decode(mixed, '.')
	require.NoError(t, err)
	require.Equal(t, "y.x", got)
}

func TestDecodeDynamicWithoutSeparator(t *testing.T) {
	// Without a separator the reference is read as a static string at the
	// masked offset: the node words themselves.
	c := testutil.NewBinaryCatalog(binary.LittleEndian, format.BinaryVersion2)
	ref := c.Fragmented(c.ASCII("a"))
	got, err := decoderFor(c).Decode(ref, 0)
	require.NoError(t, err)
	require.Len(t, got, 2*format.WordSize)
}

func TestDecodeFragmentCycle(t *testing.T) {
	c := testutil.NewBinaryCatalog(binary.LittleEndian, format.BinaryVersion2)
	part := c.ASCII("loop")
	node := c.Int32Array(part, format.NullOffset)
	c.Put(int64(node)+format.WordSize, node)

	_, err := decoderFor(c).Decode(int32(uint32(node)|format.StringFlagDynamic), '.')
	require.ErrorIs(t, err, format.ErrBadOffset)
}

func TestDecodeOutOfBounds(t *testing.T) {
	c := testutil.NewBinaryCatalog(binary.LittleEndian, format.BinaryVersion2)
	_, err := decoderFor(c).Decode(0x1000, 0)
	require.ErrorIs(t, err, format.ErrTruncated)
}
