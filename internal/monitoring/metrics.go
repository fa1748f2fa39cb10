// Package monitoring records what each load did: timings, row counts and
// per-column NA outcomes. Records are kept in memory by a MetricsCollector
// and can be exported as Prometheus metrics.
package monitoring

import (
	"runtime"
	"sync"
	"time"
)

// ColumnMetrics describes how the fields of one column were resolved.
type ColumnMetrics struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	NA      int    `json:"na"`
	Failed  int    `json:"failed"`
	Dropped int    `json:"dropped"`
}

// OperationMetrics represents one recorded operation, usually a load.
type OperationMetrics struct {
	Operation    string          `json:"operation"`
	File         string          `json:"file,omitempty"`
	Duration     time.Duration   `json:"duration"`
	MemoryUsed   int64           `json:"memory_used"`
	RowsLoaded   int64           `json:"rows_loaded"`
	LinesCounted int64           `json:"lines_counted"`
	Columns      []ColumnMetrics `json:"columns,omitempty"`
	Failed       bool            `json:"failed"`
}

// MetricsCollector collects and stores operation metrics.
type MetricsCollector struct {
	mu      sync.RWMutex
	metrics []OperationMetrics
	enabled bool
}

// NewMetricsCollector creates a new metrics collector.
func NewMetricsCollector(enabled bool) *MetricsCollector {
	return &MetricsCollector{
		metrics: make([]OperationMetrics, 0),
		enabled: enabled,
	}
}

// IsEnabled returns whether metrics collection is enabled.
func (mc *MetricsCollector) IsEnabled() bool {
	mc.mu.RLock()
	defer mc.mu.RUnlock()
	return mc.enabled
}

// SetEnabled enables or disables metrics collection.
func (mc *MetricsCollector) SetEnabled(enabled bool) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.enabled = enabled
}

// RecordOperation runs fn and records its duration and approximate heap
// growth. fn may fill in the remaining fields through the pointer it is
// given. Nothing is recorded when the collector is disabled, but fn still
// runs.
func (mc *MetricsCollector) RecordOperation(operation string, fn func(*OperationMetrics) error) error {
	m := OperationMetrics{Operation: operation}
	if !mc.IsEnabled() {
		return fn(&m)
	}

	var before runtime.MemStats
	runtime.ReadMemStats(&before)
	start := time.Now()

	err := fn(&m)

	m.Duration = time.Since(start)
	var after runtime.MemStats
	runtime.ReadMemStats(&after)
	m.MemoryUsed = int64(after.TotalAlloc - before.TotalAlloc) //nolint:gosec // TotalAlloc is monotonic
	m.Failed = err != nil

	mc.Record(m)
	return err
}

// Record stores m if the collector is enabled.
func (mc *MetricsCollector) Record(m OperationMetrics) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	if mc.enabled {
		mc.metrics = append(mc.metrics, m)
	}
}

// GetMetrics returns a copy of all collected metrics.
func (mc *MetricsCollector) GetMetrics() []OperationMetrics {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	result := make([]OperationMetrics, len(mc.metrics))
	copy(result, mc.metrics)
	return result
}

// Clear removes all collected metrics.
func (mc *MetricsCollector) Clear() {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.metrics = mc.metrics[:0]
}

// GetSummary returns aggregate statistics over the collected metrics.
func (mc *MetricsCollector) GetSummary() MetricsSummary {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	if len(mc.metrics) == 0 {
		return MetricsSummary{}
	}

	summary := MetricsSummary{
		TotalOperations: len(mc.metrics),
		OperationCounts: make(map[string]int),
	}
	for _, m := range mc.metrics {
		summary.TotalDuration += m.Duration
		summary.TotalMemory += m.MemoryUsed
		summary.TotalRows += m.RowsLoaded
		summary.OperationCounts[m.Operation]++
		if m.Failed {
			summary.FailedOperations++
		}
		for _, c := range m.Columns {
			summary.TotalNA += int64(c.NA)
		}
	}
	summary.AverageDuration = summary.TotalDuration / time.Duration(len(mc.metrics))
	return summary
}

// MetricsSummary provides aggregate statistics for collected metrics.
type MetricsSummary struct {
	TotalOperations  int            `json:"total_operations"`
	FailedOperations int            `json:"failed_operations"`
	TotalDuration    time.Duration  `json:"total_duration"`
	TotalMemory      int64          `json:"total_memory"`
	TotalRows        int64          `json:"total_rows"`
	TotalNA          int64          `json:"total_na"`
	OperationCounts  map[string]int `json:"operation_counts"`
	AverageDuration  time.Duration  `json:"average_duration"`
}
