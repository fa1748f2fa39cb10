// Package dataframe provides the host table built from loaded columns.
package dataframe

import (
	"fmt"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/paveg/csvread/internal/loader"
	"github.com/paveg/csvread/internal/series"
	"github.com/paveg/csvread/internal/validation"
)

// DataFrame represents an ordered table of typed columns. Column names need
// not be unique.
type DataFrame struct {
	columns []ISeries
	rows    int
}

// New creates a DataFrame from series. The DataFrame takes ownership of the
// series; the row count is the length of the first one.
func New(columns ...ISeries) *DataFrame {
	df := &DataFrame{columns: append([]ISeries(nil), columns...)}
	if len(columns) > 0 {
		df.rows = columns[0].Len()
	}
	return df
}

// FromResult builds a DataFrame over the storage of a load result without
// copying values. The DataFrame holds its own buffer references, so res can
// be released independently.
func FromResult(res *loader.Result) *DataFrame {
	columns := make([]ISeries, len(res.Columns))
	for i, c := range res.Columns {
		columns[i] = series.FromStorage(c.Name, c.Type, c.Storage, c.Len)
	}
	df := New(columns...)
	df.rows = res.Rows
	return df
}

// Validate checks that every column has the frame's row count.
func (df *DataFrame) Validate() error {
	for _, s := range df.columns {
		if err := validation.ValidateLength(df.rows, s.Len(), "DataFrame", s.Name()); err != nil {
			return fmt.Errorf("column %s: %w", s.Name(), err)
		}
	}
	return nil
}

// Columns returns the names of all columns in order
func (df *DataFrame) Columns() []string {
	names := make([]string, len(df.columns))
	for i, s := range df.columns {
		names[i] = s.Name()
	}
	return names
}

// Len returns the number of rows
func (df *DataFrame) Len() int {
	return df.rows
}

// Width returns the number of columns
func (df *DataFrame) Width() int {
	return len(df.columns)
}

// RowNames returns the row labels 1..Len().
func (df *DataFrame) RowNames() []int {
	names := make([]int, df.rows)
	for i := range names {
		names[i] = i + 1
	}
	return names
}

// Column returns the first column with the given name.
func (df *DataFrame) Column(name string) (ISeries, bool) {
	for _, s := range df.columns {
		if s.Name() == name {
			return s, true
		}
	}
	return nil, false
}

// ColumnAt returns the column at position i.
func (df *DataFrame) ColumnAt(i int) (ISeries, bool) {
	if i < 0 || i >= len(df.columns) {
		return nil, false
	}
	return df.columns[i], true
}

// HasColumn checks if a column exists
func (df *DataFrame) HasColumn(name string) bool {
	_, ok := df.Column(name)
	return ok
}

// Select returns a new DataFrame with the first column matching each name.
// Unknown names are skipped.
func (df *DataFrame) Select(names ...string) *DataFrame {
	selected := make([]ISeries, 0, len(names))
	for _, name := range names {
		if s, ok := df.Column(name); ok {
			selected = append(selected, share(s))
		}
	}
	out := New(selected...)
	out.rows = df.rows
	return out
}

// Drop returns a new DataFrame without the specified columns
func (df *DataFrame) Drop(names ...string) *DataFrame {
	dropSet := make(map[string]bool, len(names))
	for _, name := range names {
		dropSet[name] = true
	}

	kept := make([]ISeries, 0, len(df.columns))
	for _, s := range df.columns {
		if !dropSet[s.Name()] {
			kept = append(kept, share(s))
		}
	}
	out := New(kept...)
	out.rows = df.rows
	return out
}

// Slice creates a new DataFrame containing rows from start (inclusive) to
// end (exclusive). The range is clamped to the frame.
func (df *DataFrame) Slice(start, end int) *DataFrame {
	start = max(0, min(start, df.rows))
	end = max(start, min(end, df.rows))

	sliced := make([]ISeries, len(df.columns))
	for i, s := range df.columns {
		arr := s.Array()
		sliced[i] = series.FromArray(s.Field(), array.NewSlice(arr, int64(start), int64(end)))
		arr.Release()
	}
	out := New(sliced...)
	out.rows = end - start
	return out
}

// Head returns the first n rows.
func (df *DataFrame) Head(n int) *DataFrame {
	return df.Slice(0, n)
}

// Schema returns the Arrow schema of the frame, field metadata included.
func (df *DataFrame) Schema() *arrow.Schema {
	fields := make([]arrow.Field, len(df.columns))
	for i, s := range df.columns {
		fields[i] = s.Field()
	}
	return arrow.NewSchema(fields, nil)
}

// ToRecord returns the frame as an Arrow record. The caller must release it.
func (df *DataFrame) ToRecord() arrow.Record {
	cols := make([]arrow.Array, len(df.columns))
	for i, s := range df.columns {
		cols[i] = s.Array()
	}
	rec := array.NewRecord(df.Schema(), cols, int64(df.rows))
	for _, c := range cols {
		c.Release()
	}
	return rec
}

// String returns a string representation of the DataFrame
func (df *DataFrame) String() string {
	if len(df.columns) == 0 {
		return "DataFrame[empty]"
	}

	parts := []string{fmt.Sprintf("DataFrame[%dx%d]", df.Len(), df.Width())}
	for _, s := range df.columns {
		parts = append(parts, fmt.Sprintf("  %s: %s", s.Name(), typeLabel(s)))
	}
	return strings.Join(parts, "\n")
}

// Release releases all columns.
func (df *DataFrame) Release() {
	for _, s := range df.columns {
		s.Release()
	}
	df.columns = nil
	df.rows = 0
}

func share(s ISeries) ISeries {
	return series.FromArray(s.Field(), s.Array())
}

func typeLabel(s ISeries) string {
	field := s.Field()
	if class, ok := field.Metadata.GetValue(series.MetaClass); ok {
		if base, ok := field.Metadata.GetValue(series.MetaBase); ok && base != "10" {
			return fmt.Sprintf("%s(base %s)", class, base)
		}
		return class
	}
	return s.DataType().String()
}
