package csvread_test

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/csvread"
	"github.com/paveg/csvread/internal/config"
	"github.com/paveg/csvread/internal/testutil"
	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	path := testutil.WriteCSV(t, "a,b\n1,2\n3,NA\n")
	df, report, err := csvread.Load(csvread.Schema{
		Filename:  path,
		ColTypes:  []string{csvread.TypeInteger, csvread.TypeInteger},
		NAStrings: []string{"NA"},
	}, csvread.WithAllocator(mem))
	require.NoError(t, err)
	defer df.Release()

	testutil.AssertFrameShape(t, df, []string{"a", "b"}, 2)
	assert.Equal(t, []int{1, 2}, df.RowNames())

	b, ok := df.Column("b")
	require.True(t, ok)
	testutil.AssertColumnText(t, b, "NA", "2", "NA")

	assert.Equal(t, path, report.File)
	assert.Equal(t, 2, report.Rows)
	assert.Equal(t, 2, report.Lines)
	require.Len(t, report.Columns, 2)
	assert.Equal(t, "b", report.Columns[1].Name)
	assert.Equal(t, csvread.TypeInteger, report.Columns[1].Type)
	assert.Equal(t, csvread.ColumnStats{NA: 1}, report.Columns[1].Stats)
}

func TestLoadInt64Columns(t *testing.T) {
	path := testutil.WriteCSV(t, "id,mask\n9007199254740993,ff\n-5,NA\n")
	df, report, err := csvread.Load(csvread.Schema{
		Filename:  path,
		ColTypes:  []string{csvread.TypeLong, csvread.TypeLongHex},
		NAStrings: []string{"NA"},
	})
	require.NoError(t, err)
	defer df.Release()

	assert.Equal(t, 16, report.Columns[1].Base)

	schema := df.Schema()
	assert.Equal(t, arrow.PrimitiveTypes.Int64, schema.Field(0).Type)
	base, ok := schema.Field(1).Metadata.GetValue("csvread.base")
	require.True(t, ok)
	assert.Equal(t, "16", base)

	slots, err := df.Int64Slots("id")
	require.NoError(t, err)
	assert.Equal(t, []string{"9007199254740993", "-5"}, csvread.Int64ToChar(slots))

	slots, err = df.Int64Slots("mask")
	require.NoError(t, err)
	assert.Equal(t, []bool{false, true}, csvread.IsNAInt64(slots))

	_, err = df.Int64Slots("missing")
	require.Error(t, err)
}

func TestLoadErrors(t *testing.T) {
	_, _, err := csvread.Load(csvread.Schema{
		Filename: testutil.WriteCSV(t, "a\n1\n"),
		ColTypes: []string{csvread.TypeInteger},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "na.strings")

	_, _, err = csvread.Load(csvread.Schema{
		Filename:  testutil.WriteCSV(t, "a\n1\n"),
		ColTypes:  []string{"factor"},
		NAStrings: []string{},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported column type 'factor'")
}

func TestLoadAll(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	schemas := make([]csvread.Schema, 5)
	for i := range schemas {
		var body bytes.Buffer
		body.WriteString("n,label\n")
		for r := 0; r <= i; r++ {
			fmt.Fprintf(&body, "%d,file%d\n", r, i)
		}
		schemas[i] = csvread.Schema{
			Filename:  testutil.WriteCSV(t, body.String()),
			ColTypes:  []string{csvread.TypeInteger, csvread.TypeString},
			NAStrings: []string{"NA"},
		}
	}

	frames, reports, err := csvread.LoadAll(context.Background(), schemas, 2, csvread.WithAllocator(mem))
	require.NoError(t, err)
	require.Len(t, frames, 5)
	require.Len(t, reports, 5)
	for i, df := range frames {
		assert.Equal(t, i+1, df.Len())
		assert.Equal(t, schemas[i].Filename, reports[i].File)
		label, ok := df.Column("label")
		require.True(t, ok)
		testutil.AssertColumnText(t, label, "NA", repeat(fmt.Sprintf("file%d", i), i+1)...)
		df.Release()
	}
}

func TestLoadAllFailure(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	good := csvread.Schema{
		Filename:  testutil.WriteCSV(t, "a\n1\n"),
		ColTypes:  []string{csvread.TypeInteger},
		NAStrings: []string{"NA"},
	}
	missing := good
	missing.Filename = filepath.Join(t.TempDir(), "missing.csv")
	absent := good
	absent.Filename = filepath.Join(t.TempDir(), "absent.csv")

	frames, reports, err := csvread.LoadAll(context.Background(), []csvread.Schema{good, missing, good, absent}, 0, csvread.WithAllocator(mem))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.csv")
	assert.Contains(t, err.Error(), "absent.csv")
	assert.Nil(t, frames)
	assert.Nil(t, reports)
}

func TestLoadAllCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	schema := csvread.Schema{
		Filename:  testutil.WriteCSV(t, "a\n1\n"),
		ColTypes:  []string{csvread.TypeInteger},
		NAStrings: []string{"NA"},
	}
	_, _, err := csvread.LoadAll(ctx, []csvread.Schema{schema, schema}, 1)
	require.ErrorIs(t, err, context.Canceled)
}

func repeat(s string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = s
	}
	return out
}

func TestRead(t *testing.T) {
	original := config.GetGlobalConfig()
	defer config.SetGlobalConfig(original)

	cfg := config.NewConfig()
	cfg.Delimiter = ";"
	cfg.NAStrings = []string{"-"}
	config.SetGlobalConfig(cfg)

	df, err := csvread.Read(testutil.WriteCSV(t, "x;y\n1.5;a\n-;-\n"), csvread.TypeDouble, csvread.TypeString)
	require.NoError(t, err)
	defer df.Release()

	x, _ := df.Column("x")
	testutil.AssertColumnText(t, x, "NA", "1.5", "NA")
	y, _ := df.Column("y")
	testutil.AssertColumnText(t, y, "NA", "a", "NA")
}

func TestCountLines(t *testing.T) {
	for _, name := range []string{"data.csv.gz", "data.csv.xz"} {
		n, err := csvread.CountLines(testutil.WriteFile(t, name, "a\n1\n2"))
		require.NoError(t, err)
		assert.Equal(t, 3, n, name)
	}
}

func TestDataFrameWrite(t *testing.T) {
	df, _, err := csvread.Load(csvread.Schema{
		Filename:  testutil.WriteCSV(t, "a,b\n1,x\nNA,y\n"),
		ColTypes:  []string{csvread.TypeInteger, csvread.TypeString},
		NAStrings: []string{"NA"},
	})
	require.NoError(t, err)
	defer df.Release()

	var buf bytes.Buffer
	require.NoError(t, df.Write(&buf, "csv", "NA"))
	assert.Equal(t, "a,b\n1,x\nNA,y\n", buf.String())

	buf.Reset()
	require.NoError(t, df.Write(&buf, "jsonl", "NA"))
	assert.Equal(t, "{\"a\":1,\"b\":\"x\"}\n{\"a\":null,\"b\":\"y\"}\n", buf.String())

	require.Error(t, df.Write(&buf, "xlsx", "NA"))
}

func TestDataFrameOperations(t *testing.T) {
	a := csvread.NewSeries("a", []int32{1, 2, 3}, nil, nil)
	h := csvread.NewInt64Series("h", []int64{10, csvread.NAInt64, 255}, 16, nil)
	df := csvread.NewDataFrame(a, h)
	defer df.Release()

	assert.Equal(t, 2, df.Width())
	assert.True(t, df.HasColumn("h"))
	assert.Equal(t, "DataFrame[3x2]\n  a: int32\n  h: int64(base 16)", df.String())

	head := df.Head(2)
	defer head.Release()
	assert.Equal(t, 2, head.Len())

	sel := df.Select("h")
	defer sel.Release()
	col, ok := sel.ColumnAt(0)
	require.True(t, ok)
	testutil.AssertColumnText(t, col, "NA", "a", "NA", "ff")

	dropped := df.Drop("h")
	defer dropped.Release()
	assert.Equal(t, []string{"a"}, dropped.Columns())

	sliced := df.Slice(1, 3)
	defer sliced.Release()
	rec := sliced.ToRecord()
	defer rec.Release()
	assert.Equal(t, int64(2), rec.NumRows())
}

func TestLoadMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := csvread.NewMetrics(reg)

	df, _, err := csvread.Load(csvread.Schema{
		Filename:  testutil.WriteCSV(t, "a\n1\nx\n"),
		ColTypes:  []string{csvread.TypeInteger},
		NAStrings: []string{"NA"},
	}, csvread.WithMetrics(metrics))
	require.NoError(t, err)
	df.Release()

	assert.InDelta(t, 1, promtestutil.ToFloat64(metrics.Loads.WithLabelValues("ok")), 0)
	assert.InDelta(t, 2, promtestutil.ToFloat64(metrics.RowsLoaded), 0)
	assert.InDelta(t, 1, promtestutil.ToFloat64(metrics.ParseFailures.WithLabelValues("a", "integer")), 0)
}
