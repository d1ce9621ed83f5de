package mmfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.bin")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestMapReadOnly(t *testing.T) {
	want := []byte{0xde, 0xad, 0xbe, 0xef, 0x42}
	data, cleanup, err := Map(writeFile(t, want))
	require.NoError(t, err)
	defer func() { require.NoError(t, cleanup()) }()
	require.Equal(t, want, data)
}

func TestMapZeroLength(t *testing.T) {
	data, cleanup, err := Map(writeFile(t, nil))
	require.NoError(t, err)
	require.Empty(t, data)
	require.NotNil(t, cleanup)
	require.NoError(t, cleanup())
}

func TestOpenRWWriteBack(t *testing.T) {
	orig := make([]byte, 3*4096+10)
	for i := range orig {
		orig[i] = byte(i)
	}
	path := writeFile(t, orig)

	f, err := OpenRW(path)
	require.NoError(t, err)
	data := f.Bytes()
	require.Len(t, data, len(orig))

	copy(data[4100:], []byte{0, 0, 0, 0})
	copy(data[len(data)-2:], []byte{0xff, 0xff})
	require.NoError(t, f.SyncRange(4096, 4096))
	require.NoError(t, f.SyncRange(3*4096, 4096)) // clamped to file size
	require.NoError(t, f.Sync())
	require.NoError(t, f.Close())

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	want := append([]byte(nil), orig...)
	copy(want[4100:], []byte{0, 0, 0, 0})
	copy(want[len(want)-2:], []byte{0xff, 0xff})
	require.Equal(t, want, got)
}

func TestOpenRWEmpty(t *testing.T) {
	f, err := OpenRW(writeFile(t, nil))
	require.NoError(t, err)
	require.Empty(t, f.Bytes())
	require.False(t, f.Mapped())
	require.NoError(t, f.SyncRange(0, 4096))
	require.NoError(t, f.Close())
}

func TestOpenRWMissing(t *testing.T) {
	_, err := OpenRW(filepath.Join(t.TempDir(), "missing"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestSyncRangeUnalignedStart(t *testing.T) {
	page := os.Getpagesize()
	orig := make([]byte, 2*page+64)
	path := writeFile(t, orig)

	f, err := OpenRW(path)
	require.NoError(t, err)
	off := page + 13
	copy(f.Bytes()[off:], []byte{1, 2, 3, 4})
	require.NoError(t, f.SyncRange(int64(off), 4))
	require.NoError(t, f.Sync())
	require.NoError(t, f.Close())

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2, 3, 4}, got[off:off+4])
}
