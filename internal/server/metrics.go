package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics are the server's collectors, registered on their own registry so
// several servers can coexist in one process.
type Metrics struct {
	Registry *prometheus.Registry

	ExportsTotal   *prometheus.CounterVec
	ExportRows     *prometheus.CounterVec
	ExportDuration *prometheus.HistogramVec
}

// NewMetrics creates and registers the collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		ExportsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "smartgwiza",
			Subsystem: "reports",
			Name:      "exports_total",
			Help:      "Report downloads served, labeled by kind, format and result.",
		}, []string{"kind", "format", "result"}),
		ExportRows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "smartgwiza",
			Subsystem: "reports",
			Name:      "export_rows_total",
			Help:      "Data rows written to successful downloads.",
		}, []string{"kind"}),
		ExportDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "smartgwiza",
			Subsystem: "reports",
			Name:      "export_duration_seconds",
			Help:      "Time to fetch data and build a report.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		}, []string{"kind"}),
	}
	m.Registry.MustRegister(
		m.ExportsTotal,
		m.ExportRows,
		m.ExportDuration,
		collectors.NewGoCollector(),
	)
	return m
}
