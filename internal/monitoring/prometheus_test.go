//nolint:testpackage // requires internal access to unexported types and functions
package monitoring

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsObserve(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.Observe(OperationMetrics{
		Operation:  "load",
		Duration:   20 * time.Millisecond,
		RowsLoaded: 2,
		Columns: []ColumnMetrics{
			{Name: "a", Type: "integer", NA: 0},
			{Name: "b", Type: "integer", NA: 1, Failed: 1, Dropped: 3},
		},
	})
	m.Observe(OperationMetrics{Operation: "load", Failed: true})

	assert.Equal(t, float64(1), testutil.ToFloat64(m.Loads.WithLabelValues("ok")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Loads.WithLabelValues("error")))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.RowsLoaded))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.ColumnNA.WithLabelValues("b", "integer")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.ParseFailures.WithLabelValues("b", "integer")))
	assert.Equal(t, float64(3), testutil.ToFloat64(m.RowsDropped))
}

func TestMetricsRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	// Vec families are only gathered once a child exists.
	m.Loads.WithLabelValues("ok").Add(0)
	m.ColumnNA.WithLabelValues("a", "integer").Add(0)
	m.ParseFailures.WithLabelValues("a", "integer").Add(0)

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make(map[string]bool)
	for _, mf := range families {
		names[mf.GetName()] = true
	}
	assert.True(t, names["csvread_loads_total"])
	assert.True(t, names["csvread_rows_loaded_total"])
	assert.True(t, names["csvread_load_duration_seconds"])
	assert.True(t, names["csvread_column_na_total"])
	assert.True(t, names["csvread_parse_failures_total"])
	assert.True(t, names["csvread_rows_dropped_total"])
}

func TestWriteTextfile(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	m.RowsLoaded.Add(42)

	path := filepath.Join(t.TempDir(), "csvread.prom")
	require.NoError(t, WriteTextfile(reg, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "csvread_rows_loaded_total 42")
}
