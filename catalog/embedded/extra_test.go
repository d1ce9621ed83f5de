package embedded

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tailscale/hujson"

	"github.com/joshuapare/catalogkit/internal/format"
	"github.com/joshuapare/catalogkit/internal/testutil"
)

func TestCapacityGuardLeavesBufferUntouched(t *testing.T) {
	c := &testutil.JSONCatalog{}
	small := c.AddJSONObject(`{"m_Crc":5}`, true, 0)
	first := c.AddJSONObject(`{"m_Crc":1234567890123}`, true, 0)
	c.AddEntry(0, first)
	c.AddEntry(0, small)

	extra := append([]byte(nil), c.Extra...)
	// A replacement longer than the original literal cannot fit the small slot.
	_, err := patchExtraData(extra, c.Entries, 0, Options{}, hujson.Literal("1234567890"))
	require.ErrorIs(t, err, ErrCapacityExceeded)
	require.Equal(t, c.Extra, extra, "no slot may be written when any slot overflows")
}

func TestCapacityExactFit(t *testing.T) {
	c := &testutil.JSONCatalog{}
	off := c.AddJSONObject(`{"m_Crc":5}`, false, 0)
	c.AddEntry(0, off)

	patches, err := patchExtraData(c.Extra, c.Entries, 0, Options{Encoding: EncodingUTF8}, hujson.Literal("7"))
	require.NoError(t, err)
	require.Len(t, patches, 1)
	require.Equal(t, patches[0].OldLen, patches[0].NewLen)
}

func TestPatchExtraDataNegativeProvider(t *testing.T) {
	patches, err := PatchExtraData(nil, []format.EntryData{{ProviderIndex: -1}}, -1, Options{})
	require.NoError(t, err)
	require.Empty(t, patches)
}

func TestProviderIndex(t *testing.T) {
	ids := []string{"A.BundledAssetProvider", "B.AssetBundleProvider", format.AssetBundleProviderType}
	require.Equal(t, 1, ProviderIndex(ids, Options{}))
	require.Equal(t, 2, ProviderIndex(ids, Options{ProviderMatch: MatchExact}))
	require.Equal(t, -1, ProviderIndex(ids[:1], Options{}))
}

func TestParseOptions(t *testing.T) {
	m, err := ParseProviderMatch("EXACT")
	require.NoError(t, err)
	require.Equal(t, MatchExact, m)
	_, err = ParseProviderMatch("fuzzy")
	require.Error(t, err)

	e, err := ParseEncoding("utf-8")
	require.NoError(t, err)
	require.Equal(t, EncodingUTF8, e)
	_, err = ParseEncoding("latin1")
	require.Error(t, err)
}
