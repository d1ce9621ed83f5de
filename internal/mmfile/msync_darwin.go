//go:build darwin

package mmfile

import (
	"os"

	"golang.org/x/sys/unix"
)

// msyncRange flushes the whole mapping. macOS msync wants the original mmap
// address, so sub-slices are rejected; the kernel only writes dirty pages anyway.
func msyncRange(data []byte, _, _ int64) error {
	return unix.Msync(data, unix.MS_SYNC)
}

// fdatasync uses F_FULLFSYNC so the data reaches the platter, not just the
// drive cache.
func fdatasync(f *os.File) error {
	if _, err := unix.FcntlInt(f.Fd(), unix.F_FULLFSYNC, 0); err != nil {
		return unix.Fsync(int(f.Fd()))
	}
	return nil
}
