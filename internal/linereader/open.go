package linereader

import (
	"compress/bzip2"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/ulikunitz/xz"
)

// Compression identifies how a source file is encoded on disk.
type Compression int

const (
	// CompressionNone reads the file as-is.
	CompressionNone Compression = iota
	// CompressionGzip reads .gz files.
	CompressionGzip
	// CompressionZstd reads .zst and .zstd files.
	CompressionZstd
	// CompressionLZ4 reads .lz4 files.
	CompressionLZ4
	// CompressionXZ reads .xz files.
	CompressionXZ
	// CompressionBzip2 reads .bz2 files.
	CompressionBzip2
)

// String returns the conventional file extension without the dot.
func (c Compression) String() string {
	switch c {
	case CompressionGzip:
		return "gz"
	case CompressionZstd:
		return "zst"
	case CompressionLZ4:
		return "lz4"
	case CompressionXZ:
		return "xz"
	case CompressionBzip2:
		return "bz2"
	default:
		return "none"
	}
}

// DetectCompression picks a decoder from the file extension.
func DetectCompression(path string) Compression {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz", ".gzip":
		return CompressionGzip
	case ".zst", ".zstd":
		return CompressionZstd
	case ".lz4":
		return CompressionLZ4
	case ".xz":
		return CompressionXZ
	case ".bz2":
		return CompressionBzip2
	default:
		return CompressionNone
	}
}

// openSource opens path and wraps it in the decoder its extension calls for.
// The returned closer releases both the decoder and the file.
func openSource(path string) (io.Reader, io.Closer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}

	r, closeDecoder, err := decompress(f, DetectCompression(path))
	if err != nil {
		_ = f.Close()
		return nil, nil, fmt.Errorf("opening %s: %w", path, err)
	}
	return r, closerFunc(func() error {
		if closeDecoder != nil {
			closeDecoder()
		}
		return f.Close()
	}), nil
}

func decompress(r io.Reader, c Compression) (io.Reader, func(), error) {
	switch c {
	case CompressionGzip:
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, nil, fmt.Errorf("creating gzip reader: %w", err)
		}
		return gz, func() { _ = gz.Close() }, nil
	case CompressionZstd:
		dec, err := zstd.NewReader(r, zstd.WithDecoderConcurrency(1))
		if err != nil {
			return nil, nil, fmt.Errorf("creating zstd reader: %w", err)
		}
		return dec, dec.Close, nil
	case CompressionLZ4:
		return lz4.NewReader(r), nil, nil
	case CompressionXZ:
		xr, err := xz.NewReader(r)
		if err != nil {
			return nil, nil, fmt.Errorf("creating xz reader: %w", err)
		}
		return xr, nil, nil
	case CompressionBzip2:
		return bzip2.NewReader(r), nil, nil
	default:
		return r, nil, nil
	}
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }
