//go:build !linux && !freebsd && !darwin

package mmfile

import "os"

func mapFile(*os.File, int, bool) ([]byte, error) { return nil, errNoMmap }

func unmap([]byte) error { return nil }

func msyncRange([]byte, int64, int64) error { return errNoMmap }

func fdatasync(f *os.File) error { return f.Sync() }
