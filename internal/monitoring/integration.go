package monitoring

import "sync/atomic"

// process is the collector that loads without their own collector report
// to. It is nil until EnableGlobalMonitoring is called.
var process atomic.Pointer[MetricsCollector] //nolint:gochecknoglobals // process-wide load log

// SetGlobalCollector installs c as the process-wide collector; nil removes
// it.
func SetGlobalCollector(c *MetricsCollector) {
	process.Store(c)
}

// GetGlobalCollector returns the process-wide collector, or nil.
func GetGlobalCollector() *MetricsCollector {
	return process.Load()
}

// RecordGlobalOperation runs fn, recording it in the process-wide collector
// when one is installed.
func RecordGlobalOperation(operation string, fn func(*OperationMetrics) error) error {
	if c := process.Load(); c != nil {
		return c.RecordOperation(operation, fn)
	}
	return fn(&OperationMetrics{Operation: operation})
}

// EnableGlobalMonitoring installs a fresh enabled collector and returns it.
func EnableGlobalMonitoring() *MetricsCollector {
	c := NewMetricsCollector(true)
	process.Store(c)
	return c
}

// DisableGlobalMonitoring removes the process-wide collector and returns
// the summary of what it recorded.
func DisableGlobalMonitoring() MetricsSummary {
	c := process.Swap(nil)
	if c == nil {
		return MetricsSummary{}
	}
	return c.GetSummary()
}
