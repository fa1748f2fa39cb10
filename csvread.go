// Package csvread loads delimited text files into typed, Arrow-backed
// columns according to a caller-supplied schema.
//
// A load counts the lines of the file (unless the row count is given),
// allocates one column per declared type, and fills them in a single pass.
// Fields that match the NA strings or fail to parse become missing values.
// This package is the sole public API for the library.
package csvread

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/hashicorp/go-multierror"
	"github.com/paveg/csvread/internal/column"
	"github.com/paveg/csvread/internal/config"
	"github.com/paveg/csvread/internal/dataframe"
	csvio "github.com/paveg/csvread/internal/io"
	"github.com/paveg/csvread/internal/linereader"
	"github.com/paveg/csvread/internal/loader"
	"github.com/paveg/csvread/internal/monitoring"
	"github.com/paveg/csvread/internal/parallel"
	"github.com/paveg/csvread/internal/series"
	"github.com/prometheus/client_golang/prometheus"
)

// Schema describes one load: the file, its column types, and how to read it.
type Schema = loader.Schema

// ColumnStats counts NA fields, parse failures and dropped lines of a column.
type ColumnStats = column.Stats

// Column types accepted in Schema.ColTypes.
const (
	TypeInteger = column.TypeInteger
	TypeDouble  = column.TypeDouble
	TypeLong    = column.TypeLong
	TypeLongHex = column.TypeLongHex
	TypeString  = column.TypeString
)

// String NA policies accepted in Schema.StringNAPolicy.
const (
	PolicyNASet      = "na-set"
	PolicyLegacyNull = "legacy-null"
)

// ISeries provides a type-erased interface for a named Arrow column.
type ISeries = dataframe.ISeries

// Option configures a load.
type Option = loader.Option

// WithAllocator allocates column storage from mem.
func WithAllocator(mem memory.Allocator) Option { return loader.WithAllocator(mem) }

// WithLogger sends load progress to l instead of slog.Default().
func WithLogger(l *slog.Logger) Option { return loader.WithLogger(l) }

// WithChunkSize sets the number of bytes read from the file at a time.
func WithChunkSize(n int) Option { return loader.WithChunkSize(n) }

// WithMetrics records each load into m.
func WithMetrics(m *Metrics) Option { return loader.WithMetrics(m) }

// Metrics holds the Prometheus collectors updated by loads.
type Metrics = monitoring.Metrics

// NewMetrics creates the load collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	return monitoring.NewMetrics(reg)
}

// DataFrame is the public type for a loaded table.
// It wraps the internal dataframe.DataFrame to hide implementation details.
type DataFrame struct {
	df *dataframe.DataFrame
}

// ColumnReport describes how one column was loaded.
type ColumnReport struct {
	Name  string      `json:"name"`
	Type  string      `json:"type"`
	Base  int         `json:"base"`
	Stats ColumnStats `json:"stats"`
}

// Report summarizes a load.
type Report struct {
	File string `json:"file"`
	Rows int    `json:"rows"`
	// Lines is the counted line total, or -1 when the row count was given.
	Lines    int            `json:"lines"`
	Dropped  int            `json:"dropped"`
	Duration time.Duration  `json:"duration"`
	Columns  []ColumnReport `json:"columns"`
}

// Load reads the file described by schema. The schema is used as given:
// NAStrings must be set, even if only to an empty list.
func Load(schema Schema, opts ...Option) (*DataFrame, *Report, error) {
	res, err := loader.Load(schema, opts...)
	if err != nil {
		return nil, nil, err
	}
	defer res.Release()

	report := &Report{
		File:     schema.Filename,
		Rows:     res.Rows,
		Lines:    res.Lines,
		Dropped:  res.Dropped,
		Duration: res.Duration,
		Columns:  make([]ColumnReport, len(res.Columns)),
	}
	for i, c := range res.Columns {
		report.Columns[i] = ColumnReport{
			Name:  c.Name,
			Type:  c.Type.String(),
			Base:  c.Base(),
			Stats: c.Stats,
		}
	}
	return &DataFrame{df: dataframe.FromResult(res)}, report, nil
}

// LoadAll loads every schema, running up to workers loads at once
// (non-positive means GOMAXPROCS). Each file is still read by a single
// goroutine. Frames and reports come back in schema order. If any load
// fails, every loaded frame is released and the returned error lists each
// failing file. Loads not yet started when ctx ends are skipped.
func LoadAll(ctx context.Context, schemas []Schema, workers int, opts ...Option) ([]*DataFrame, []*Report, error) {
	type loaded struct {
		df     *DataFrame
		report *Report
		err    error
	}

	pool := parallel.NewWorkerPoolContext(ctx, workers)
	defer pool.Close()

	results, err := parallel.ProcessIndexed(pool, schemas, func(_ int, s Schema) loaded {
		df, report, err := Load(s, opts...)
		return loaded{df: df, report: report, err: err}
	})

	var errs *multierror.Error
	if err != nil {
		errs = multierror.Append(errs, err)
	}
	frames := make([]*DataFrame, len(results))
	reports := make([]*Report, len(results))
	for i, r := range results {
		if r.err != nil {
			errs = multierror.Append(errs, fmt.Errorf("loading %s: %w", schemas[i].Filename, r.err))
		}
		frames[i], reports[i] = r.df, r.report
	}
	if err := errs.ErrorOrNil(); err != nil {
		for _, df := range frames {
			if df != nil {
				df.Release()
			}
		}
		return nil, nil, err
	}
	return frames, reports, nil
}

// Read loads filename with colTypes, taking every other setting from the
// global configuration.
func Read(filename string, colTypes ...string) (*DataFrame, error) {
	cfg := config.GetGlobalConfig()
	schema := cfg.ApplyTo(Schema{Filename: filename, ColTypes: colTypes})
	df, _, err := Load(schema, WithChunkSize(cfg.ChunkSize))
	return df, err
}

// CountLines returns the number of lines in path, decompressing it first
// when its extension names a codec. A final line without a newline counts.
func CountLines(path string) (int, error) {
	return linereader.CountFileLines(path, config.GetGlobalConfig().ChunkSize)
}

// NewDataFrame creates a new DataFrame from series. It takes ownership of
// the series.
func NewDataFrame(series ...ISeries) *DataFrame {
	return &DataFrame{df: dataframe.New(series...)}
}

// NewSeries creates a new Series from values; valid may be nil.
func NewSeries[T series.Value](name string, values []T, valid []bool, mem memory.Allocator) ISeries {
	return series.New(name, values, valid, mem)
}

// NewInt64Series creates an int64 Series rendered in base. Elements equal
// to NAInt64 are missing.
func NewInt64Series(name string, values []int64, base int, mem memory.Allocator) ISeries {
	return series.NewInt64(name, values, base, mem)
}

// Columns returns the column names in order.
func (d *DataFrame) Columns() []string {
	return d.df.Columns()
}

// Len returns the number of rows.
func (d *DataFrame) Len() int {
	return d.df.Len()
}

// Width returns the number of columns.
func (d *DataFrame) Width() int {
	return d.df.Width()
}

// RowNames returns the row labels 1..Len().
func (d *DataFrame) RowNames() []int {
	return d.df.RowNames()
}

// Column returns the first column with the given name.
func (d *DataFrame) Column(name string) (ISeries, bool) {
	return d.df.Column(name)
}

// ColumnAt returns the column at position i.
func (d *DataFrame) ColumnAt(i int) (ISeries, bool) {
	return d.df.ColumnAt(i)
}

// HasColumn checks if a column exists.
func (d *DataFrame) HasColumn(name string) bool {
	return d.df.HasColumn(name)
}

// Select returns a new DataFrame with only the specified columns.
func (d *DataFrame) Select(names ...string) *DataFrame {
	return &DataFrame{df: d.df.Select(names...)}
}

// Drop returns a new DataFrame without the specified columns.
func (d *DataFrame) Drop(names ...string) *DataFrame {
	return &DataFrame{df: d.df.Drop(names...)}
}

// Slice returns rows [start, end) sharing the same buffers.
func (d *DataFrame) Slice(start, end int) *DataFrame {
	return &DataFrame{df: d.df.Slice(start, end)}
}

// Head returns the first n rows.
func (d *DataFrame) Head(n int) *DataFrame {
	return &DataFrame{df: d.df.Head(n)}
}

// Schema returns the Arrow schema, field metadata included.
func (d *DataFrame) Schema() *arrow.Schema {
	return d.df.Schema()
}

// ToRecord returns the frame as an Arrow record. The caller must release it.
func (d *DataFrame) ToRecord() arrow.Record {
	return d.df.ToRecord()
}

// Write writes the frame to w in format: csv, parquet, arrow or jsonl.
// naText is written for missing values by the text formats.
func (d *DataFrame) Write(w io.Writer, format, naText string) error {
	f, err := csvio.ParseFormat(format)
	if err != nil {
		return err
	}
	writer, err := csvio.NewWriter(w, f, naText)
	if err != nil {
		return err
	}
	if err := writer.Write(d.df); err != nil {
		return fmt.Errorf("writing %s: %w", f, err)
	}
	return nil
}

// String returns a string representation of the DataFrame.
func (d *DataFrame) String() string {
	return d.df.String()
}

// Release releases the memory held by the DataFrame.
func (d *DataFrame) Release() {
	d.df.Release()
}
