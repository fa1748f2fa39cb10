// Package loader reads a delimited file into typed columns in two passes.
//
// The first pass only counts newlines in raw chunks to size every column
// exactly. The second pass splits each line and hands field i to the
// collector of column i. Columns are allocated once; lines beyond the
// predicted count are dropped and a short file shrinks the final length.
package loader

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/csvread/internal/column"
	"github.com/paveg/csvread/internal/errors"
	"github.com/paveg/csvread/internal/linereader"
	"github.com/paveg/csvread/internal/monitoring"
	"github.com/paveg/csvread/internal/record"
)

// Column is one loaded column.
type Column struct {
	Name    string
	Type    column.Type
	Storage *column.Storage
	Len     int
	Stats   column.Stats
}

// Base returns the numeric base of an int64 column, or 10.
func (c Column) Base() int {
	if c.Type.Kind == column.KindInt64 && c.Type.Base != 0 {
		return c.Type.Base
	}
	return 10
}

// Result is the outcome of a successful load. The caller owns the column
// storage and must call Release.
type Result struct {
	Columns []Column
	Rows    int
	// Lines is the line count of the counting pass, or -1 when the row
	// count was given.
	Lines int
	// Dropped counts lines that did not fit in the allocated rows.
	Dropped  int
	Duration time.Duration
}

// Names returns the column names in order.
func (r *Result) Names() []string {
	names := make([]string, len(r.Columns))
	for i, c := range r.Columns {
		names[i] = c.Name
	}
	return names
}

// Release frees every column's storage.
func (r *Result) Release() {
	for _, c := range r.Columns {
		if c.Storage != nil {
			c.Storage.Release()
		}
	}
	r.Columns = nil
}

type options struct {
	provider  column.Provider
	logger    *slog.Logger
	chunkSize int
	collector *monitoring.MetricsCollector
	metrics   *monitoring.Metrics
}

// Option configures Load.
type Option func(*options)

// WithAllocator allocates column storage from mem.
func WithAllocator(mem memory.Allocator) Option {
	return func(o *options) {
		o.provider = column.ArrowProvider(mem)
	}
}

// WithProvider lets the caller supply storage for every column.
func WithProvider(p column.Provider) Option {
	return func(o *options) {
		o.provider = p
	}
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithChunkSize sets the read chunk size of both passes.
func WithChunkSize(n int) Option {
	return func(o *options) {
		o.chunkSize = n
	}
}

// WithMetricsCollector records every load in c.
func WithMetricsCollector(c *monitoring.MetricsCollector) Option {
	return func(o *options) {
		o.collector = c
	}
}

// WithMetrics feeds every load into m.
func WithMetrics(m *monitoring.Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

func newOptions(opts []Option) *options {
	o := &options{chunkSize: linereader.DefaultChunkSize}
	for _, opt := range opts {
		opt(o)
	}
	if o.provider == nil {
		o.provider = column.ArrowProvider(memory.DefaultAllocator)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	return o
}

// Load reads the file described by schema. On error nothing is returned and
// all storage allocated so far has been released.
func Load(schema Schema, opts ...Option) (*Result, error) {
	o := newOptions(opts)

	var res *Result
	run := func(m *monitoring.OperationMetrics) error {
		var err error
		res, err = load(schema, o)
		m.File = schema.Filename
		if res != nil {
			m.RowsLoaded = int64(res.Rows)
			m.LinesCounted = int64(res.Lines)
			m.Columns = columnMetrics(res)
		}
		return err
	}

	var err error
	if o.collector != nil {
		err = o.collector.RecordOperation("load", run)
	} else {
		err = monitoring.RecordGlobalOperation("load", run)
	}
	if o.metrics != nil {
		m := monitoring.OperationMetrics{Operation: "load", Failed: err != nil}
		if res != nil {
			m.RowsLoaded = int64(res.Rows)
			m.Duration = res.Duration
			m.Columns = columnMetrics(res)
		}
		o.metrics.Observe(m)
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}

// columnError reports a storage failure of the named column.
func columnError(name string, cause error) error {
	err := errors.NewInternalError("Load", cause)
	err.Column = name
	return err
}

func columnMetrics(res *Result) []monitoring.ColumnMetrics {
	cols := make([]monitoring.ColumnMetrics, len(res.Columns))
	for i, c := range res.Columns {
		cols[i] = monitoring.ColumnMetrics{
			Name:    c.Name,
			Type:    c.Type.String(),
			NA:      c.Stats.NA,
			Failed:  c.Stats.Failed,
			Dropped: c.Stats.Dropped,
		}
	}
	return cols
}

func load(schema Schema, o *options) (*Result, error) {
	start := time.Now()
	if err := schema.Validate(); err != nil {
		return nil, err
	}
	types, err := schema.Types()
	if err != nil {
		return nil, err
	}
	policy, err := column.ParseStringNAPolicy(schema.StringNAPolicy)
	if err != nil {
		return nil, err
	}

	level := slog.LevelDebug
	if schema.Verbose {
		level = slog.LevelInfo
	}
	logger := o.logger.With("file", schema.Filename)
	ctx := context.Background()

	nas := column.NewNASet(schema.NAStrings)
	splitter := record.NewSplitter(
		record.WithDelimiter(schema.DelimiterByte()),
		record.WithStripQuotes(schema.StripQuotes),
	)
	readerOpts := []linereader.Option{linereader.WithChunkSize(o.chunkSize)}

	// Opening up front reports an unreadable file before anything is
	// allocated, and gives us the header.
	headers, err := readHeader(schema, splitter, readerOpts)
	if err != nil {
		return nil, err
	}

	rows, lines := schema.NRows, -1
	if rows == 0 {
		lines, err = linereader.CountFileLines(schema.Filename, o.chunkSize)
		if err != nil {
			return nil, fmt.Errorf("counting lines of %s: %w", schema.Filename, err)
		}
		rows = lines
		if schema.HasHeader() {
			rows--
		}
		rows = max(rows, 0)
		logger.Log(ctx, level, "counted lines", "lines", lines)
	}

	names := ResolveNames(schema.ColNames, headers, len(types))
	logger.Log(ctx, level, "resolved columns", "names", names, "types", schema.ColTypes, "rows", rows)

	collectors := make([]*column.Collector, 0, len(types))
	releaseAll := func() {
		for _, c := range collectors {
			c.Storage().Release()
		}
	}
	for i, t := range types {
		s, err := o.provider.Allocate(names[i], t, rows)
		if err != nil {
			releaseAll()
			return nil, columnError(names[i], err)
		}
		c := column.NewCollector(t, column.WithStringNAPolicy(policy))
		if err := c.Attach(s); err != nil {
			s.Release()
			releaseAll()
			return nil, columnError(names[i], err)
		}
		collectors = append(collectors, c)
	}

	filled, err := fill(schema, splitter, readerOpts, collectors, nas)
	if err != nil {
		releaseAll()
		return nil, err
	}

	final := min(filled, rows)
	res := &Result{
		Columns: make([]Column, len(collectors)),
		Rows:    final,
		Lines:   lines,
		Dropped: filled - final,
	}
	for i, c := range collectors {
		c.Resize(final)
		res.Columns[i] = Column{
			Name:    names[i],
			Type:    c.Type(),
			Storage: c.Storage(),
			Len:     c.Size(),
			Stats:   c.Stats(),
		}
		logger.Log(ctx, level, "column loaded",
			"column", names[i], "type", c.Type().String(),
			"na", c.Stats().NA, "failed", c.Stats().Failed)
	}
	res.Duration = time.Since(start)
	logger.Log(ctx, level, "load finished", "rows", final, "dropped", res.Dropped, "duration", res.Duration)
	return res, nil
}

func readHeader(schema Schema, splitter *record.Splitter, opts []linereader.Option) ([]string, error) {
	r, err := linereader.Open(schema.Filename, opts...)
	if err != nil {
		return nil, errors.NewIOError("Load", schema.Filename, err)
	}
	defer r.Close()

	if !schema.HasHeader() {
		return nil, nil
	}
	line, ok := r.Next()
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("reading header of %s: %w", schema.Filename, err)
	}
	if !ok {
		return nil, nil
	}
	splitter.Split(line)
	return splitter.Strings(), nil
}

// fill runs the second pass and returns the number of data lines read.
func fill(schema Schema, splitter *record.Splitter, opts []linereader.Option,
	collectors []*column.Collector, nas *column.NASet,
) (int, error) {
	r, err := linereader.Open(schema.Filename, opts...)
	if err != nil {
		return 0, errors.NewIOError("Load", schema.Filename, err)
	}
	defer r.Close()

	if schema.HasHeader() {
		r.Next()
	}
	n := 0
	for line, ok := r.Next(); ok; line, ok = r.Next() {
		nf := splitter.Split(line)
		for i, c := range collectors {
			var field []byte
			if i < nf {
				field = splitter.Field(i)
			}
			c.Append(field, nas)
		}
		n++
	}
	if err := r.Err(); err != nil {
		return 0, fmt.Errorf("reading %s: %w", schema.Filename, err)
	}
	return n, nil
}
