package catalog

import (
	"context"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/cespare/xxhash/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/catalogkit/catalog/container"
	"github.com/joshuapare/catalogkit/catalog/embedded"
	"github.com/joshuapare/catalogkit/internal/format"
	"github.com/joshuapare/catalogkit/internal/testutil"
)

const otherProvider = "UnityEngine.ResourceManagement.ResourceProviders.BundledAssetProvider"

// binaryCatalog returns a catalog image with two bundle checksums and one
// foreign location, plus the offsets of all three checksum words.
func binaryCatalog(order binary.ByteOrder) (img []byte, bundle []int64, foreign int64) {
	c := testutil.NewBinaryCatalog(order, format.BinaryVersion2)
	provider := c.Provider()
	other := c.DottedName(otherProvider)
	d1, crc1 := c.RequestOptions(0x11223344)
	d2, crc2 := c.RequestOptions(-0x55667788)
	d3, crc3 := c.RequestOptions(0x7A7B7C7D)
	shared := c.Int32Array(c.Location(provider, d1), c.Location(other, d3))
	c.KeyedLists(shared, shared, c.Int32Array(c.Location(provider, d2)))
	return c.Bytes(), []int64{crc1, crc2}, crc3
}

func jsonCatalog() []byte {
	c := &testutil.JSONCatalog{ProviderIDs: []string{format.AssetBundleProviderType, otherProvider}}
	off := c.AddJSONObject(`{"m_Crc": 12345, "m_Hash": "abc"}`, true, 40)
	c.AddEntry(0, off)
	foreign := c.AddJSONObject(`{"m_Crc": 777}`, true, 0)
	c.AddEntry(1, foreign)
	return c.Document()
}

func bundleCatalog(t *testing.T) []byte {
	t.Helper()
	le := binary.LittleEndian
	file := testutil.SerializedFile(22, le,
		testutil.SerializedObject{PathID: 1, ClassID: 142, Data: []byte("asset bundle")},
		testutil.SerializedObject{PathID: 2, ClassID: format.TextAssetClassID, Data: testutil.TextAsset("catalog", jsonCatalog(), le)},
	)
	return testutil.Bundle(file)
}

func TestPatchBinaryLocality(t *testing.T) {
	for _, order := range []binary.ByteOrder{binary.LittleEndian, binary.BigEndian} {
		img, crcs, foreign := binaryCatalog(order)
		path := testutil.WriteTemp(t, "catalog.bin", img)

		res, err := New(Options{}).PatchFile(context.Background(), path)
		require.NoError(t, err)
		require.True(t, res.Modified)
		require.Equal(t, SourceRawBinaryGraph, res.Source)
		require.Equal(t, format.BinaryVersion2, res.Version)
		require.Len(t, res.Fields, 2)

		after := testutil.ReadFile(t, path)
		require.Len(t, after, len(img))
		for _, off := range testutil.DiffRanges(img, after) {
			inField := false
			for _, crc := range crcs {
				if int64(off) >= crc && int64(off) < crc+format.WordSize {
					inField = true
				}
			}
			require.True(t, inField, "byte 0x%x changed outside checksum fields", off)
		}
		for _, crc := range crcs {
			require.Zero(t, format.ReadI32(after, int(crc), order))
		}
		require.Equal(t, int32(0x7A7B7C7D), format.ReadI32(after, int(foreign), order))

		require.Equal(t, xxhash.Sum64(img), res.Before)
		require.Equal(t, xxhash.Sum64(after), res.After)
		require.Equal(t, path+DefaultBackupSuffix, res.Backup)
		require.Equal(t, img, testutil.ReadFile(t, res.Backup))
	}
}

func TestPatchIdempotentNoSecondBackup(t *testing.T) {
	img, _, _ := binaryCatalog(binary.LittleEndian)
	path := testutil.WriteTemp(t, "catalog.bin", img)
	p := New(Options{})

	_, err := p.PatchFile(context.Background(), path)
	require.NoError(t, err)
	first := testutil.ReadFile(t, path)
	require.NoError(t, os.Remove(path+DefaultBackupSuffix))

	res, err := p.PatchFile(context.Background(), path)
	require.NoError(t, err)
	require.False(t, res.Modified)
	require.Empty(t, res.Backup)
	require.Equal(t, res.Before, res.After)
	require.Equal(t, first, testutil.ReadFile(t, path))
	require.NoFileExists(t, path+DefaultBackupSuffix)
}

func TestPatchNothingToDoLeavesOldBackup(t *testing.T) {
	c := testutil.NewBinaryCatalog(binary.LittleEndian, format.BinaryVersion1)
	path := testutil.WriteTemp(t, "catalog.bin", c.Bytes())
	stale := []byte("older backup")
	require.NoError(t, os.WriteFile(path+".orig", stale, 0o644))

	res, err := New(Options{BackupSuffix: ".orig"}).PatchFile(context.Background(), path)
	require.NoError(t, err)
	require.False(t, res.Modified)
	require.Equal(t, stale, testutil.ReadFile(t, path+".orig"))
}

func TestPatchBackupOverwritten(t *testing.T) {
	img, _, _ := binaryCatalog(binary.BigEndian)
	path := testutil.WriteTemp(t, "catalog.bin", img)
	require.NoError(t, os.WriteFile(path+DefaultBackupSuffix, []byte("stale"), 0o644))

	res, err := New(Options{}).PatchFile(context.Background(), path)
	require.NoError(t, err)
	require.True(t, res.Modified)
	require.Equal(t, img, testutil.ReadFile(t, res.Backup))
}

func TestPatchDryRun(t *testing.T) {
	img, crcs, _ := binaryCatalog(binary.LittleEndian)
	path := testutil.WriteTemp(t, "catalog.bin", img)

	res, err := New(Options{DryRun: true}).PatchFile(context.Background(), path)
	require.NoError(t, err)
	require.False(t, res.Modified)
	require.Empty(t, res.Backup)
	require.Len(t, res.Fields, len(crcs))
	require.Equal(t, img, testutil.ReadFile(t, path))
	require.NoFileExists(t, path+DefaultBackupSuffix)

	jpath := testutil.WriteTemp(t, "catalog.json", jsonCatalog())
	res, err = New(Options{DryRun: true}).PatchFile(context.Background(), jpath)
	require.NoError(t, err)
	require.Len(t, res.Entries, 1)
	require.False(t, res.Modified)
	require.Equal(t, jsonCatalog(), testutil.ReadFile(t, jpath))
}

func TestPatchJSON(t *testing.T) {
	doc := jsonCatalog()
	path := testutil.WriteTemp(t, "catalog.json", doc)

	res, err := New(Options{}).PatchFile(context.Background(), path)
	require.NoError(t, err)
	require.Equal(t, SourcePlainJSONText, res.Source)
	require.True(t, res.Modified)
	require.Len(t, res.Entries, 1)
	assert.Equal(t, "12345", res.Entries[0].OldValue)
	require.Equal(t, doc, testutil.ReadFile(t, res.Backup))

	patched := testutil.ReadFile(t, path)
	again, err := embedded.Inspect(patched, embedded.Options{})
	require.NoError(t, err)
	require.False(t, again.Changed())

	res, err = New(Options{}).PatchFile(context.Background(), path)
	require.NoError(t, err)
	require.False(t, res.Modified)
	require.Equal(t, patched, testutil.ReadFile(t, path))
}

func TestPatchContainer(t *testing.T) {
	img := bundleCatalog(t)
	path := testutil.WriteTemp(t, "catalog.bundle", img)

	res, err := New(Options{}).PatchFile(context.Background(), path)
	require.NoError(t, err)
	require.Equal(t, SourceCompressedContainer, res.Source)
	require.True(t, res.Modified)
	require.Len(t, res.Entries, 1)
	require.Equal(t, img, testutil.ReadFile(t, res.Backup))

	c, err := container.UnityFS{}.OpenContainer(path)
	require.NoError(t, err)
	recs, err := c.Records()
	require.NoError(t, err)
	require.Len(t, recs, 2)
	require.Equal(t, []byte("asset bundle"), recs[0].Payload)
	require.Equal(t, "catalog", recs[1].Name)

	name, doc, err := format.DecodeTextAsset(recs[1].Payload, recs[1].Order)
	require.NoError(t, err)
	require.Equal(t, "catalog", name)
	check, err := embedded.Inspect(doc, embedded.Options{})
	require.NoError(t, err)
	require.False(t, check.Changed())

	res, err = New(Options{}).PatchFile(context.Background(), path)
	require.NoError(t, err)
	require.False(t, res.Modified)
}

func TestPatchContainerWithoutText(t *testing.T) {
	file := testutil.SerializedFile(22, binary.LittleEndian,
		testutil.SerializedObject{PathID: 1, ClassID: 142, Data: []byte("asset bundle")})
	path := testutil.WriteTemp(t, "plain.bundle", testutil.Bundle(file))

	_, err := New(Options{}).PatchFile(context.Background(), path)
	require.ErrorIs(t, err, ErrNoTextRecord)
	require.NoFileExists(t, path+DefaultBackupSuffix)
}

func TestPatchNotFound(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.bin")
	_, err := New(Options{}).PatchFile(context.Background(), path)
	require.ErrorIs(t, err, ErrNotFound)
	require.Contains(t, err.Error(), path)
}

func TestPatchMalformedJSON(t *testing.T) {
	c := &testutil.JSONCatalog{ProviderIDs: []string{format.AssetBundleProviderType}}
	off := c.AddJSONObject(`[1, 2, 3]`, true, 0)
	c.AddEntry(0, off)
	doc := c.Document()
	path := testutil.WriteTemp(t, "catalog.json", doc)

	_, err := New(Options{}).PatchFile(context.Background(), path)
	require.ErrorIs(t, err, ErrMalformedEmbeddedDocument)
	require.Equal(t, doc, testutil.ReadFile(t, path))
	require.NoFileExists(t, path+DefaultBackupSuffix)
}

func TestPatchCanceled(t *testing.T) {
	img, _, _ := binaryCatalog(binary.LittleEndian)
	path := testutil.WriteTemp(t, "catalog.bin", img)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(Options{}).PatchFile(ctx, path)
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, img, testutil.ReadFile(t, path))
}
