// Package metrics exposes Prometheus instrumentation for the order bridge.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service's Prometheus collectors on a private registry.
type Metrics struct {
	reg *prometheus.Registry

	// OrdersSubmitted counts import rows by outcome ("submitted", "failed").
	OrdersSubmitted *prometheus.CounterVec

	// ImportBatches counts completed import batches.
	ImportBatches prometheus.Counter

	// ExportPages counts upstream pages fetched during exports.
	ExportPages prometheus.Counter

	// ExportRows counts CSV rows emitted by exports.
	ExportRows prometheus.Counter

	// CatalogSize is the SKU count of the last catalog fetch.
	CatalogSize prometheus.Gauge

	// CatalogRefreshes counts product catalog rebuilds.
	CatalogRefreshes prometheus.Counter
}

// New creates a Metrics with all collectors registered.
func New() *Metrics {
	r := prometheus.NewRegistry()

	ordersSubmitted := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orderbridge_orders_submitted_total",
		Help: "Import rows pushed to the order API, by outcome.",
	}, []string{"status"})
	importBatches := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orderbridge_import_batches_total",
		Help: "Completed CSV import batches.",
	})
	exportPages := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orderbridge_export_pages_total",
		Help: "Upstream pages fetched by the CSV export driver.",
	})
	exportRows := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orderbridge_export_rows_total",
		Help: "CSV rows emitted by exports.",
	})
	catalogSize := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "orderbridge_catalog_skus",
		Help: "SKU count of the current product catalog cache.",
	})
	catalogRefreshes := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orderbridge_catalog_refreshes_total",
		Help: "Product catalog cache rebuilds.",
	})

	r.MustRegister(ordersSubmitted, importBatches, exportPages, exportRows, catalogSize, catalogRefreshes)
	return &Metrics{
		reg:              r,
		OrdersSubmitted:  ordersSubmitted,
		ImportBatches:    importBatches,
		ExportPages:      exportPages,
		ExportRows:       exportRows,
		CatalogSize:      catalogSize,
		CatalogRefreshes: catalogRefreshes,
	}
}

// Handler serves the registry for GET /metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}
