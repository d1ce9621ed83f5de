package unityfs

import (
	"fmt"

	"github.com/pierrec/lz4/v4"

	"github.com/joshuapare/catalogkit/internal/format"
)

// lz4HCLevel matches the level the engine's own packer uses.
const lz4HCLevel = 12

func decompress(src []byte, size int, c Compression) ([]byte, error) {
	switch c {
	case CompressionNone:
		if len(src) != size {
			return nil, fmt.Errorf("stored block is %d bytes, want %d: %w", len(src), size, format.ErrTruncated)
		}
		return append([]byte(nil), src...), nil
	case CompressionLZ4, CompressionLZ4HC:
		dst := make([]byte, size)
		n, err := lz4.UncompressBlock(src, dst)
		if err != nil {
			return nil, fmt.Errorf("lz4: %w", err)
		}
		if n != size {
			return nil, fmt.Errorf("lz4: decoded %d bytes, want %d: %w", n, size, format.ErrTruncated)
		}
		return dst, nil
	case CompressionLZMA:
		return nil, fmt.Errorf("lzma: %w", format.ErrUnsupported)
	}
	return nil, fmt.Errorf("compression %d: %w", c, format.ErrUnsupported)
}

// compress encodes src with c and reports the codec actually used. Data
// that does not shrink is stored raw.
func compress(src []byte, c Compression) ([]byte, Compression, error) {
	if c != CompressionLZ4 && c != CompressionLZ4HC {
		return append([]byte(nil), src...), CompressionNone, nil
	}
	dst := make([]byte, lz4.CompressBlockBound(len(src)))
	var (
		n   int
		err error
	)
	if c == CompressionLZ4HC {
		n, err = lz4.CompressBlockHC(src, dst, lz4HCLevel, nil, nil)
	} else {
		n, err = lz4.CompressBlock(src, dst, nil)
	}
	if err != nil {
		return nil, 0, fmt.Errorf("lz4: %w", err)
	}
	if n == 0 || n >= len(src) {
		return append([]byte(nil), src...), CompressionNone, nil
	}
	return dst[:n], c, nil
}
