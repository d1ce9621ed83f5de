// Package writer replaces files atomically.
package writer

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// FileWriter writes bytes to a filesystem path atomically.
type FileWriter struct {
	Path string
	// Perm is applied to newly created files. Zero keeps the mode of an
	// existing file at Path, or 0o644.
	Perm os.FileMode
}

// Write writes buf to the configured path atomically via temp file + rename.
func (w *FileWriter) Write(buf []byte) error {
	return w.WriteFrom(func(dst io.Writer) error {
		_, err := dst.Write(buf)
		return err
	})
}

// WriteFrom streams fill's output to the configured path atomically.
func (w *FileWriter) WriteFrom(fill func(io.Writer) error) error {
	// Create temp file in same directory to ensure atomic rename
	dir := filepath.Dir(w.Path)
	tmpFile, err := os.CreateTemp(dir, ".catalogkit-tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	// Clean up temp file on error
	defer func() {
		if tmpFile != nil {
			_ = tmpFile.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if writeErr := fill(tmpFile); writeErr != nil {
		return fmt.Errorf("write temp file: %w", writeErr)
	}
	if chmodErr := tmpFile.Chmod(w.mode()); chmodErr != nil {
		return fmt.Errorf("chmod temp file: %w", chmodErr)
	}
	if syncErr := tmpFile.Sync(); syncErr != nil {
		return fmt.Errorf("sync temp file: %w", syncErr)
	}
	if closeErr := tmpFile.Close(); closeErr != nil {
		return fmt.Errorf("close temp file: %w", closeErr)
	}
	tmpFile = nil // Don't clean up in defer

	if renameErr := os.Rename(tmpPath, w.Path); renameErr != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", renameErr)
	}
	return nil
}

func (w *FileWriter) mode() os.FileMode {
	if w.Perm != 0 {
		return w.Perm
	}
	if info, err := os.Stat(w.Path); err == nil {
		return info.Mode().Perm()
	}
	return 0o644
}

// CopyFile copies src to dst atomically, replacing dst if it exists. The
// copy gets src's permission bits.
func CopyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}
	w := &FileWriter{Path: dst, Perm: info.Mode().Perm()}
	return w.WriteFrom(func(out io.Writer) error {
		_, err := io.Copy(out, in)
		return err
	})
}
