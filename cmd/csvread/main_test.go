package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	gojson "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paveg/csvread"
	"github.com/paveg/csvread/internal/config"
	csvio "github.com/paveg/csvread/internal/io"
	"github.com/paveg/csvread/internal/testutil"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	original := config.GetGlobalConfig()
	t.Cleanup(func() { config.SetGlobalConfig(original) })

	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestLoadCommand(t *testing.T) {
	path := testutil.WriteCSV(t, "a,b\n1,x\nzz,NA\n3,z\n")

	out, err := run(t, "load", path, "--types", "integer,string", "--head", "2")
	require.NoError(t, err)

	assert.Contains(t, out, "rows: 3\n")
	assert.Contains(t, out, "lines: 3\n")
	assert.Regexp(t, `a\s+integer\s+1\s+1`, out)
	assert.Regexp(t, `b\s+string\s+1\s+0`, out)
	assert.True(t, strings.HasSuffix(out, "a,b\n1,x\nNA,NA\n"), out)
}

func TestLoadCommandJSON(t *testing.T) {
	path := testutil.WriteCSV(t, "1;ff\n2;NA\n")

	out, err := run(t, "load", path, "-t", "long,longhex", "--names", "id",
		"--header=false", "--delimiter", ";", "--json")
	require.NoError(t, err)

	var report csvread.Report
	require.NoError(t, gojson.Unmarshal([]byte(out), &report))
	assert.Equal(t, 2, report.Rows)
	require.Len(t, report.Columns, 2)
	assert.Equal(t, "id", report.Columns[0].Name)
	assert.Equal(t, "COL2", report.Columns[1].Name)
	assert.Equal(t, 16, report.Columns[1].Base)
	assert.Equal(t, 1, report.Columns[1].Stats.NA)
}

func TestLoadCommandSchemaFile(t *testing.T) {
	data := testutil.WriteCSV(t, "n\n1\n-\n")
	schema := testutil.WriteFile(t, "schema.yaml",
		"filename: "+data+"\ncoltypes: [double]\nna.strings: [\"-\"]\n")

	out, err := run(t, "load", "--schema", schema, "--json")
	require.NoError(t, err)

	var report csvread.Report
	require.NoError(t, gojson.Unmarshal([]byte(out), &report))
	assert.Equal(t, 2, report.Rows)
	assert.Equal(t, 1, report.Columns[0].Stats.NA)
	assert.Equal(t, 0, report.Columns[0].Stats.Failed)
}

func TestLoadCommandConfigFile(t *testing.T) {
	data := testutil.WriteCSV(t, "a,b\n1,2\n3,4\n")

	t.Run("header kept when omitted", func(t *testing.T) {
		cfg := testutil.WriteFile(t, "csvread.yaml", "log_level: info\n")

		out, err := run(t, "--config", cfg, "load", data, "-t", "integer,integer", "--json")
		require.NoError(t, err)

		var report csvread.Report
		require.NoError(t, gojson.Unmarshal([]byte(out), &report))
		assert.Equal(t, 2, report.Rows)
		require.Len(t, report.Columns, 2)
		assert.Equal(t, "a", report.Columns[0].Name)
		assert.Equal(t, "b", report.Columns[1].Name)
		assert.Zero(t, report.Columns[0].Stats.NA)
	})

	t.Run("header disabled", func(t *testing.T) {
		cfg := testutil.WriteFile(t, "csvread.json", `{"header": false}`)

		out, err := run(t, "--config", cfg, "load", data, "-t", "integer,integer", "--json")
		require.NoError(t, err)

		var report csvread.Report
		require.NoError(t, gojson.Unmarshal([]byte(out), &report))
		assert.Equal(t, 3, report.Rows)
		assert.Equal(t, "COL1", report.Columns[0].Name)
		assert.Equal(t, 1, report.Columns[0].Stats.Failed)
	})
}

func TestLoadCommandEnvironment(t *testing.T) {
	t.Setenv("CSVREAD_DELIMITER", "|")
	t.Setenv("CSVREAD_NA_STRINGS", "?")
	path := testutil.WriteCSV(t, "a|b\n?|2\n")

	out, err := run(t, "load", path, "-t", "integer,integer", "--json")
	require.NoError(t, err)

	var report csvread.Report
	require.NoError(t, gojson.Unmarshal([]byte(out), &report))
	assert.Equal(t, 1, report.Columns[0].Stats.NA)
	assert.Equal(t, 0, report.Columns[1].Stats.NA)
}

func TestLoadCommandErrors(t *testing.T) {
	path := testutil.WriteCSV(t, "a\n1\n")

	_, err := run(t, "load", path, "-t", "factor")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported column type 'factor'")

	_, err = run(t, "load", path, "-t", "integer", "--delimiter", "::")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "delimiter must be a single character")

	_, err = run(t, "load", filepath.Join(t.TempDir(), "absent.csv"), "-t", "integer")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "can't open file")
}

func TestCountCommand(t *testing.T) {
	path := testutil.WriteFile(t, "data.csv.zst", "a\n1\n2\n3")

	out, err := run(t, "count", path)
	require.NoError(t, err)
	assert.Equal(t, "4\n", out)

	out, err = run(t, "count", "--exact", path)
	require.NoError(t, err)
	assert.Equal(t, "4\n", out)

	other := testutil.WriteCSV(t, "a\n1\n")
	out, err = run(t, "count", "-j", "2", path, other)
	require.NoError(t, err)
	assert.Equal(t, "4\t"+path+"\n2\t"+other+"\n", out)

	_, err = run(t, "count", path, filepath.Join(t.TempDir(), "absent.csv"))
	require.Error(t, err)
}

func TestConvertCommand(t *testing.T) {
	path := testutil.WriteCSV(t, "id,label\nff,a\nNA,b\n")
	dir := t.TempDir()

	parquetPath := filepath.Join(dir, "out.parquet")
	_, err := run(t, "convert", path, parquetPath, "-t", "longhex,string")
	require.NoError(t, err)

	f, err := os.Open(parquetPath)
	require.NoError(t, err)
	defer f.Close()
	df, err := csvio.NewParquetReader(f, csvio.DefaultParquetOptions(), nil).Read()
	require.NoError(t, err)
	defer df.Release()
	testutil.AssertFrameShape(t, df, []string{"id", "label"}, 2)

	csvPath := filepath.Join(dir, "out.txt")
	_, err = run(t, "convert", path, csvPath, "-t", "longhex,string", "--format", "csv")
	require.NoError(t, err)
	written, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	assert.Equal(t, "id,label\nff,a\nNA,b\n", string(written))

	_, err = run(t, "convert", path, filepath.Join(dir, "out.xlsx"), "-t", "longhex,string")
	require.Error(t, err)
}

func TestInt64Command(t *testing.T) {
	out, err := run(t, "int64", "--from", "16", "ff", "7fffffffffffffff", "zz")
	require.NoError(t, err)
	assert.Equal(t, "255\n9223372036854775807\nNA\n", out)

	out, err = run(t, "int64", "--to", "2", "5")
	require.NoError(t, err)
	assert.Equal(t, "101\n", out)

	_, err = run(t, "int64", "--to", "16", "-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "item 1")

	_, err = run(t, "int64", "--from", "20", "1")
	require.Error(t, err)
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "csvread "), out)

	out, err = run(t, "version", "--json")
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, gojson.Unmarshal([]byte(out), &decoded))
	assert.Contains(t, decoded, "version")
	assert.Contains(t, decoded, "release")
}

func TestMetricsTextfile(t *testing.T) {
	path := testutil.WriteCSV(t, "a\n1\nx\n")
	metricsPath := filepath.Join(t.TempDir(), "csvread.prom")

	_, err := run(t, "load", path, "-t", "integer", "--metrics-textfile", metricsPath)
	require.NoError(t, err)

	data, err := os.ReadFile(metricsPath)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, `csvread_loads_total{status="ok"} 1`)
	assert.Contains(t, text, `csvread_parse_failures_total{column="a",type="integer"} 1`)
}

func TestLogFile(t *testing.T) {
	path := testutil.WriteCSV(t, "a\n1\n")
	logPath := filepath.Join(t.TempDir(), "csvread.log")

	_, err := run(t, "load", path, "-t", "integer", "--verbose", "--log-file", logPath)
	require.NoError(t, err)

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)

	var sawFinish bool
	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		var entry map[string]any
		require.NoError(t, gojson.Unmarshal([]byte(line), &entry))
		if entry["msg"] == "load finished" {
			sawFinish = true
		}
	}
	assert.True(t, sawFinish, string(data))
}

func TestMetricsSummary(t *testing.T) {
	first := testutil.WriteCSV(t, "a\n1\nNA\n")
	second := testutil.WriteCSV(t, "a\n2\n3\n4\n")
	logPath := filepath.Join(t.TempDir(), "csvread.log")

	_, err := run(t, "count", first, second, "--metrics", "--log-file", logPath)
	require.NoError(t, err)
	_, err = run(t, "load", first, "-t", "integer", "--metrics", "--log-file", logPath)
	require.NoError(t, err)

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)

	var summaries []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		var entry map[string]any
		require.NoError(t, gojson.Unmarshal([]byte(line), &entry))
		if entry["msg"] == "load summary" {
			summaries = append(summaries, entry)
		}
	}
	require.Len(t, summaries, 2, string(data))
	assert.InDelta(t, 0, summaries[0]["loads"], 0)
	assert.InDelta(t, 1, summaries[1]["loads"], 0)
	assert.InDelta(t, 0, summaries[1]["failed"], 0)
	assert.InDelta(t, 2, summaries[1]["rows"], 0)
	assert.InDelta(t, 1, summaries[1]["na"], 0)
}
