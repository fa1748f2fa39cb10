package io

import (
	"bufio"
	"fmt"
	"io"

	"github.com/paveg/csvread/internal/dataframe"
)

// CSVWriter writes DataFrames as delimited text that the loader reads back
// into the same values: missing values are written as NAText and int64
// columns in their base.
type CSVWriter struct {
	writer  io.Writer
	options CSVOptions
}

// NewCSVWriter creates a new CSV writer with the specified options
func NewCSVWriter(writer io.Writer, options CSVOptions) *CSVWriter {
	if options.Delimiter == 0 {
		options.Delimiter = ','
	}
	return &CSVWriter{
		writer:  writer,
		options: options,
	}
}

// Write writes the DataFrame to CSV format. A field is written verbatim
// unless it holds a newline or a delimiter the loader would split on, in
// which case it is wrapped in double quotes. Quotes kept by the loader are
// therefore written back as they were read. There is no quote escaping, so
// a field whose own quotes leave a delimiter unprotected cannot round-trip.
func (w *CSVWriter) Write(df *dataframe.DataFrame) error {
	bw := bufio.NewWriter(w.writer)
	delim := w.options.Delimiter

	if w.options.Header {
		for i, name := range df.Columns() {
			if i > 0 {
				_ = bw.WriteByte(delim)
			}
			w.writeField(bw, name)
		}
		_ = bw.WriteByte('\n')
	}

	columns := make([]dataframe.ISeries, df.Width())
	for i := range columns {
		columns[i], _ = df.ColumnAt(i)
	}

	for row := range df.Len() {
		for i, col := range columns {
			if i > 0 {
				_ = bw.WriteByte(delim)
			}
			text, err := col.GetAsString(row, w.options.NAText)
			if err != nil {
				return fmt.Errorf("writing column %s row %d: %w", col.Name(), row+1, err)
			}
			w.writeField(bw, text)
		}
		_ = bw.WriteByte('\n')
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flushing csv output: %w", err)
	}
	return nil
}

func (w *CSVWriter) writeField(bw *bufio.Writer, text string) {
	if !w.needsQuotes(text) {
		_, _ = bw.WriteString(text)
		return
	}
	_ = bw.WriteByte('"')
	_, _ = bw.WriteString(text)
	_ = bw.WriteByte('"')
}

// needsQuotes reports whether text, read back with quote toggling, would
// split at a delimiter or break the line.
func (w *CSVWriter) needsQuotes(text string) bool {
	inQuotes := false
	for i := 0; i < len(text); i++ {
		switch c := text[i]; {
		case c == '\n' || c == '\r':
			return true
		case c == '"':
			inQuotes = !inQuotes
		case c == w.options.Delimiter && !inQuotes:
			return true
		}
	}
	return false
}
