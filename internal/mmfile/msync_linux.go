//go:build linux || freebsd

package mmfile

import (
	"os"

	"golang.org/x/sys/unix"
)

// msyncRange flushes data[off:end]. Linux and FreeBSD accept sub-slices of a
// mapping whose start is aligned to the kernel page size, so off is rounded
// down to it.
func msyncRange(data []byte, off, end int64) error {
	page := int64(os.Getpagesize())
	off -= off % page
	return unix.Msync(data[off:end], unix.MS_SYNC)
}

func fdatasync(f *os.File) error {
	return unix.Fdatasync(int(f.Fd()))
}
