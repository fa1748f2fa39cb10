package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus metrics for loads.
type Metrics struct {
	Loads         *prometheus.CounterVec
	RowsLoaded    prometheus.Counter
	LoadDuration  prometheus.Histogram
	ColumnNA      *prometheus.CounterVec
	ParseFailures *prometheus.CounterVec
	RowsDropped   prometheus.Counter
}

// NewMetrics creates and registers all metrics with the provided registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	loads := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "csvread_loads_total",
		Help: "Total loads by outcome",
	}, []string{"status"})

	rowsLoaded := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "csvread_rows_loaded_total",
		Help: "Total rows stored by successful loads",
	})

	loadDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "csvread_load_duration_seconds",
		Help:    "Wall time of a load including the counting pass",
		Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
	})

	columnNA := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "csvread_column_na_total",
		Help: "Fields stored as NA per column",
	}, []string{"column", "type"})

	parseFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "csvread_parse_failures_total",
		Help: "Non-empty fields that could not be parsed per column",
	}, []string{"column", "type"})

	rowsDropped := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "csvread_rows_dropped_total",
		Help: "Lines beyond the allocated row count",
	})

	reg.MustRegister(loads, rowsLoaded, loadDuration, columnNA, parseFailures, rowsDropped)

	return &Metrics{
		Loads:         loads,
		RowsLoaded:    rowsLoaded,
		LoadDuration:  loadDuration,
		ColumnNA:      columnNA,
		ParseFailures: parseFailures,
		RowsDropped:   rowsDropped,
	}
}

// Observe folds one recorded operation into the Prometheus metrics.
func (m *Metrics) Observe(op OperationMetrics) {
	if op.Failed {
		m.Loads.WithLabelValues("error").Inc()
		return
	}
	m.Loads.WithLabelValues("ok").Inc()
	m.RowsLoaded.Add(float64(op.RowsLoaded))
	m.LoadDuration.Observe(op.Duration.Seconds())

	dropped := 0
	for _, c := range op.Columns {
		m.ColumnNA.WithLabelValues(c.Name, c.Type).Add(float64(c.NA))
		m.ParseFailures.WithLabelValues(c.Name, c.Type).Add(float64(c.Failed))
		// Every column refuses the same overflowing lines.
		dropped = max(dropped, c.Dropped)
	}
	m.RowsDropped.Add(float64(dropped))
}

// WriteTextfile writes everything g gathers to path in the text exposition
// format, for pickup by a node exporter textfile collector.
func WriteTextfile(g prometheus.Gatherer, path string) error {
	return prometheus.WriteToTextfile(path, g)
}
