// Package io writes loaded DataFrames to other formats and reads them back.
//
// Key components:
//   - DataReader/DataWriter interfaces for pluggable I/O backends
//   - ParquetWriter/ParquetReader on arrow-go's pqarrow
//   - IPCWriter/IPCReader for the Arrow IPC stream format
//   - CSVWriter producing text the loader reads back unchanged
//   - JSONWriter for JSON Lines output
//
// Memory management: readers allocate from the allocator they are given and
// the returned DataFrame must be released by the caller.
package io

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/csvread/internal/dataframe"
)

// DefaultBatchSize is the default batch size for I/O operations
const DefaultBatchSize = 64 * 1024

// DataReader defines the interface for reading data from various sources
type DataReader interface {
	// Read reads data from the source and returns a DataFrame
	Read() (*dataframe.DataFrame, error)
}

// DataWriter defines the interface for writing data to various destinations
type DataWriter interface {
	// Write writes the DataFrame to the destination
	Write(df *dataframe.DataFrame) error
}

// Format identifies an output format.
type Format string

// Supported formats.
const (
	FormatCSV     Format = "csv"
	FormatParquet Format = "parquet"
	FormatIPC     Format = "arrow"
	FormatJSON    Format = "jsonl"
)

// ParseFormat resolves a format name. Aliases: "ipc" and "feather" for
// arrow, "json" and "ndjson" for jsonl.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(name) {
	case "csv", "txt":
		return FormatCSV, nil
	case "parquet", "pq":
		return FormatParquet, nil
	case "arrow", "ipc", "feather", "arrows":
		return FormatIPC, nil
	case "jsonl", "json", "ndjson":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported output format %q", name)
	}
}

// FormatFromPath resolves the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return "", fmt.Errorf("no extension on %s", path)
	}
	return ParseFormat(ext)
}

// CSVOptions contains configuration options for CSV output
type CSVOptions struct {
	// Delimiter is the field delimiter (default: comma)
	Delimiter byte
	// Header writes the column names as the first line
	Header bool
	// NAText is written for missing values
	NAText string
}

// DefaultCSVOptions returns default CSV options
func DefaultCSVOptions() CSVOptions {
	return CSVOptions{
		Delimiter: ',',
		Header:    true,
		NAText:    "NA",
	}
}

// ParquetOptions contains configuration options for Parquet operations
type ParquetOptions struct {
	// Compression codec: snappy, gzip, lz4, zstd or uncompressed
	Compression string
	// BatchSize for reading/writing operations
	BatchSize int
}

// DefaultParquetOptions returns default Parquet options
func DefaultParquetOptions() ParquetOptions {
	return ParquetOptions{
		Compression: "snappy",
		BatchSize:   DefaultBatchSize,
	}
}

// NewWriter returns the writer for format. naText is used by the text
// formats for missing values.
func NewWriter(w io.Writer, format Format, naText string) (DataWriter, error) {
	switch format {
	case FormatCSV:
		opts := DefaultCSVOptions()
		opts.NAText = naText
		return NewCSVWriter(w, opts), nil
	case FormatParquet:
		return NewParquetWriter(w, DefaultParquetOptions()), nil
	case FormatIPC:
		return NewIPCWriter(w, memory.DefaultAllocator), nil
	case FormatJSON:
		return NewJSONWriter(w), nil
	default:
		return nil, fmt.Errorf("unsupported output format %q", format)
	}
}
