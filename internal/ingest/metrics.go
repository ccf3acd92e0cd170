package ingest

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Import outcomes recorded by Metrics.
const (
	OutcomeComplete   = "complete"
	OutcomeIncomplete = "incomplete"
	OutcomeRejected   = "rejected"
)

// Metrics holds the import Prometheus collectors. A nil *Metrics records
// nothing.
type Metrics struct {
	ImportsTotal        *prometheus.CounterVec
	ImportDuration      prometheus.Histogram
	ActiveImports       prometheus.Gauge
	RowsTotal           *prometheus.CounterVec
	BatchDuration       prometheus.Histogram
	BytesRead           prometheus.Counter
	UnrecognizedColumns prometheus.Counter
	RowFailuresTotal    *prometheus.CounterVec
}

// NewMetrics registers the import collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		ImportsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "signsurvey_imports_total",
			Help: "Survey imports by outcome (complete, incomplete, rejected)",
		}, []string{"outcome"}),

		ImportDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "signsurvey_import_duration_seconds",
			Help:    "Wall time of a survey import from header to complete message",
			Buckets: []float64{0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300, 600},
		}),

		ActiveImports: factory.NewGauge(prometheus.GaugeOpts{
			Name: "signsurvey_imports_active",
			Help: "Survey imports currently running",
		}),

		RowsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "signsurvey_rows_total",
			Help: "Data rows processed by result (success, failure)",
		}, []string{"result"}),

		BatchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "signsurvey_batch_duration_seconds",
			Help:    "Time to reconstruct and persist one batch",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}),

		BytesRead: factory.NewCounter(prometheus.CounterOpts{
			Name: "signsurvey_import_bytes_total",
			Help: "Bytes of survey export read",
		}),

		UnrecognizedColumns: factory.NewCounter(prometheus.CounterOpts{
			Name: "signsurvey_unrecognized_columns_total",
			Help: "Header columns that matched no classification rule",
		}),

		RowFailuresTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "signsurvey_row_failures_total",
			Help: "Failed rows by error code",
		}, []string{"code"}),
	}
}

func (m *Metrics) importStarted(unrecognized int) {
	if m == nil {
		return
	}
	m.ActiveImports.Inc()
	m.UnrecognizedColumns.Add(float64(unrecognized))
}

func (m *Metrics) importFinished(outcome string, started time.Time, bytes int64) {
	if m == nil {
		return
	}
	m.ActiveImports.Dec()
	m.ImportsTotal.WithLabelValues(outcome).Inc()
	m.ImportDuration.Observe(time.Since(started).Seconds())
	m.BytesRead.Add(float64(bytes))
}

// Rejected records an import refused before it started.
func (m *Metrics) Rejected() {
	if m == nil {
		return
	}
	m.ImportsTotal.WithLabelValues(OutcomeRejected).Inc()
}

func (m *Metrics) batchDone(started time.Time, succeeded, failed int) {
	if m == nil {
		return
	}
	m.BatchDuration.Observe(time.Since(started).Seconds())
	m.RowsTotal.WithLabelValues("success").Add(float64(succeeded))
	m.RowsTotal.WithLabelValues("failure").Add(float64(failed))
}

func (m *Metrics) rowFailed(code string) {
	if m == nil {
		return
	}
	m.RowFailuresTotal.WithLabelValues(code).Inc()
}
