package io

import (
	"fmt"
	"io"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/csvread/internal/dataframe"
)

// IPCWriter writes DataFrames in the Arrow IPC stream format.
type IPCWriter struct {
	writer io.Writer
	mem    memory.Allocator
}

// NewIPCWriter creates an IPC stream writer.
func NewIPCWriter(writer io.Writer, mem memory.Allocator) *IPCWriter {
	if mem == nil {
		mem = memory.DefaultAllocator
	}
	return &IPCWriter{writer: writer, mem: mem}
}

// Write writes df as a single record batch stream.
func (w *IPCWriter) Write(df *dataframe.DataFrame) error {
	rec := df.ToRecord()
	defer rec.Release()

	writer := ipc.NewWriter(w.writer, ipc.WithSchema(rec.Schema()), ipc.WithAllocator(w.mem))
	if err := writer.Write(rec); err != nil {
		_ = writer.Close()
		return fmt.Errorf("writing record: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("closing ipc writer: %w", err)
	}
	return nil
}

// IPCReader reads an Arrow IPC stream into a DataFrame.
type IPCReader struct {
	reader io.Reader
	mem    memory.Allocator
}

// NewIPCReader creates an IPC stream reader.
func NewIPCReader(reader io.Reader, mem memory.Allocator) *IPCReader {
	if mem == nil {
		mem = memory.DefaultAllocator
	}
	return &IPCReader{reader: reader, mem: mem}
}

// Read reads every record batch of the stream.
func (r *IPCReader) Read() (*dataframe.DataFrame, error) {
	rdr, err := ipc.NewReader(r.reader, ipc.WithAllocator(r.mem))
	if err != nil {
		return nil, fmt.Errorf("creating ipc reader: %w", err)
	}
	defer rdr.Release()

	var records []arrow.Record
	defer func() {
		for _, rec := range records {
			rec.Release()
		}
	}()
	for rdr.Next() {
		rec := rdr.Record()
		rec.Retain()
		records = append(records, rec)
	}
	if err := rdr.Err(); err != nil {
		return nil, fmt.Errorf("reading record batches: %w", err)
	}

	table := array.NewTableFromRecords(rdr.Schema(), records)
	defer table.Release()
	return tableToDataFrame(table, r.mem)
}
