// Package mmfile maps catalog files into memory for in-place patching.
//
// On Linux, FreeBSD and macOS files are mapped MAP_SHARED, so stores into the
// returned slice land in the page cache and are pushed to disk by msync.
// Elsewhere, or when mapping fails, the file is read onto the heap and synced
// back with positioned writes. Callers see the same API either way.
package mmfile

import (
	"errors"
	"fmt"
	"os"
)

var errNoMmap = errors.New("mmfile: mmap unavailable")

// File is a writable in-memory view of a file.
type File struct {
	f      *os.File
	data   []byte
	mapped bool
}

// OpenRW opens path read-write and maps it. The file must already exist.
func OpenRW(path string) (*File, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	size := info.Size()
	if size > int64(^uint(0)>>1) {
		_ = f.Close()
		return nil, fmt.Errorf("mmfile: file too large to map (%d bytes)", size)
	}
	if size > 0 {
		if data, mapErr := mapFile(f, int(size), true); mapErr == nil {
			return &File{f: f, data: data, mapped: true}, nil
		}
	}
	data := make([]byte, size)
	if _, err := f.ReadAt(data, 0); err != nil && size > 0 {
		_ = f.Close()
		return nil, fmt.Errorf("mmfile: read %s: %w", path, err)
	}
	return &File{f: f, data: data}, nil
}

// Map maps the file at path read-only and returns its contents with a
// cleanup func. Without mmap the file is read onto the heap.
func Map(path string) ([]byte, func() error, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close() // mapping keeps pages alive

	info, err := f.Stat()
	if err != nil {
		return nil, nil, err
	}
	size := info.Size()
	if size == 0 {
		return []byte{}, func() error { return nil }, nil
	}
	if size > int64(^uint(0)>>1) {
		return nil, nil, fmt.Errorf("mmfile: file too large to map (%d bytes)", size)
	}
	if data, mapErr := mapFile(f, int(size), false); mapErr == nil {
		return data, func() error { return unmap(data) }, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	return data, func() error { return nil }, nil
}

// Bytes returns the writable view. It is invalid after Close.
func (m *File) Bytes() []byte { return m.data }

// Mapped reports whether the view is a shared mapping rather than a heap copy.
func (m *File) Mapped() bool { return m.mapped }

// Name returns the path the file was opened with.
func (m *File) Name() string { return m.f.Name() }

// SyncRange pushes data[off:off+length] to the file. The range is clamped to
// the file size.
func (m *File) SyncRange(off, length int64) error {
	size := int64(len(m.data))
	if off < 0 || off >= size || length <= 0 {
		return nil
	}
	end := off + length
	if end > size {
		end = size
	}
	if m.mapped {
		return msyncRange(m.data, off, end)
	}
	_, err := m.f.WriteAt(m.data[off:end], off)
	return err
}

// Sync makes previously synced ranges durable.
func (m *File) Sync() error {
	if m.mapped {
		return fdatasync(m.f)
	}
	return m.f.Sync()
}

// Close unmaps and closes the file. Unflushed heap changes are discarded.
func (m *File) Close() error {
	var err error
	if m.mapped && m.data != nil {
		err = unmap(m.data)
	}
	m.data = nil
	if cerr := m.f.Close(); err == nil {
		err = cerr
	}
	return err
}
