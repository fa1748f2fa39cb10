package monitoring_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paveg/csvread/internal/monitoring"
)

func TestGlobalCollector(t *testing.T) {
	t.Cleanup(func() { monitoring.SetGlobalCollector(nil) })

	t.Run("nothing recorded without a collector", func(t *testing.T) {
		monitoring.SetGlobalCollector(nil)

		called := false
		err := monitoring.RecordGlobalOperation("load", func(m *monitoring.OperationMetrics) error {
			called = true
			assert.Equal(t, "load", m.Operation)
			return nil
		})

		require.NoError(t, err)
		assert.True(t, called)
		assert.Nil(t, monitoring.GetGlobalCollector())
		assert.Equal(t, monitoring.MetricsSummary{}, monitoring.DisableGlobalMonitoring())
	})

	t.Run("enabled collector records loads", func(t *testing.T) {
		c := monitoring.EnableGlobalMonitoring()
		assert.Same(t, c, monitoring.GetGlobalCollector())

		require.NoError(t, monitoring.RecordGlobalOperation("load", func(m *monitoring.OperationMetrics) error {
			m.RowsLoaded = 7
			m.Columns = []monitoring.ColumnMetrics{{Name: "a", NA: 2}}
			return nil
		}))
		err := monitoring.RecordGlobalOperation("load", func(*monitoring.OperationMetrics) error {
			return errors.New("unreadable")
		})
		require.Error(t, err)

		require.Len(t, c.GetMetrics(), 2)

		summary := monitoring.DisableGlobalMonitoring()
		assert.Equal(t, 2, summary.TotalOperations)
		assert.Equal(t, 1, summary.FailedOperations)
		assert.Equal(t, int64(7), summary.TotalRows)
		assert.Equal(t, int64(2), summary.TotalNA)
		assert.Nil(t, monitoring.GetGlobalCollector())
	})
}
