package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/jhoicas/pipr-api/internal/application/inventory"
	"github.com/jhoicas/pipr-api/internal/domain/stockimport"
)

var _ inventory.Observer = (*StockImportMetrics)(nil)

// StockImportMetrics colectores Prometheus del pipeline de carga masiva.
type StockImportMetrics struct {
	rows     *prometheus.CounterVec
	batches  *prometheus.CounterVec
	duration prometheus.Histogram
}

// NewStockImportMetrics registra los colectores en reg.
func NewStockImportMetrics(reg prometheus.Registerer) *StockImportMetrics {
	m := &StockImportMetrics{
		rows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pipr",
			Subsystem: "stock_import",
			Name:      "rows_total",
			Help:      "Filas procesadas por estado.",
		}, []string{"status"}),
		batches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pipr",
			Subsystem: "stock_import",
			Name:      "batches_total",
			Help:      "Lotes terminados por resultado.",
		}, []string{"outcome"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "pipr",
			Subsystem: "stock_import",
			Name:      "batch_duration_seconds",
			Help:      "Duración de los lotes.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12),
		}),
	}
	reg.MustRegister(m.rows, m.batches, m.duration)
	return m
}

// NewRegistry crea un registro con los colectores de proceso y runtime de Go.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

func (m *StockImportMetrics) RowProcessed(status stockimport.Status) {
	m.rows.WithLabelValues(string(status)).Inc()
}

func (m *StockImportMetrics) BatchFinished(outcome string, elapsed time.Duration) {
	m.batches.WithLabelValues(outcome).Inc()
	m.duration.Observe(elapsed.Seconds())
}
