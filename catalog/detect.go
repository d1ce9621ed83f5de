package catalog

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/joshuapare/catalogkit/internal/format"
)

// Source is the on-disk shape of a catalog.
type Source int

const (
	SourcePlainJSONText Source = iota
	SourceRawBinaryGraph
	SourceCompressedContainer
)

func (s Source) String() string {
	switch s {
	case SourceRawBinaryGraph:
		return "binary"
	case SourceCompressedContainer:
		return "bundle"
	default:
		return "json"
	}
}

// MarshalText renders the source name in JSON output.
func (s Source) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Detect sniffs the first bytes of r. The byte order is only set for
// SourceRawBinaryGraph.
func Detect(r io.ReaderAt, size int64) (Source, binary.ByteOrder, error) {
	n := int64(len(format.ContainerSignature))
	if size < n {
		n = size
	}
	head := make([]byte, n)
	if _, err := r.ReadAt(head, 0); err != nil && !errors.Is(err, io.EOF) {
		return SourcePlainJSONText, nil, fmt.Errorf("catalog: sniff: %w", err)
	}
	if bytes.Equal(head, format.ContainerSignature) {
		return SourceCompressedContainer, nil, nil
	}
	if order, ok := format.DetectBinaryOrder(head); ok {
		return SourceRawBinaryGraph, order, nil
	}
	return SourcePlainJSONText, nil, nil
}

// DetectFile sniffs the catalog at path.
func DetectFile(path string) (Source, binary.ByteOrder, error) {
	f, err := os.Open(path)
	if err != nil {
		return SourcePlainJSONText, nil, openError(path, err)
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return SourcePlainJSONText, nil, err
	}
	return Detect(f, info.Size())
}

func openError(path string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	return err
}
