package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "crash_dashboard"

// Metrics holds the Prometheus counters, histograms, and gauges for the dashboard.
type Metrics struct {
	// Dataset loading.
	RecordsLoaded      prometheus.Gauge
	RecordsExcluded    prometheus.Counter
	DatasetLoadErrors  *prometheus.CounterVec // labels: dataset={crashes,wards}
	DatasetReady       prometheus.Gauge
	BoundaryFeatures   prometheus.Gauge
	DatasetLoadSeconds *prometheus.HistogramVec // labels: dataset={crashes,wards}

	// View computation and dispatch.
	Recomputes        prometheus.Counter
	RecomputeDuration prometheus.Histogram
	RenderErrors      *prometheus.CounterVec // labels: view={points,severity,trend,kpis}
	Exports           prometheus.Counter
}

// NewMetrics creates and registers all dashboard metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.RecordsLoaded,
		m.RecordsExcluded,
		m.DatasetLoadErrors,
		m.DatasetReady,
		m.BoundaryFeatures,
		m.DatasetLoadSeconds,
		m.Recomputes,
		m.RecomputeDuration,
		m.RenderErrors,
		m.Exports,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		RecordsLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "records_loaded",
			Help:      "Crash records held in memory after load-time cleaning.",
		}),
		RecordsExcluded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_excluded_total",
			Help:      "Rows dropped at load because their year is excluded.",
		}),
		DatasetLoadErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dataset_load_errors_total",
			Help:      "Failed one-shot dataset loads by dataset.",
		}, []string{"dataset"}),
		DatasetReady: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dataset_ready",
			Help:      "1 once the crash dataset has loaded, 0 otherwise.",
		}),
		BoundaryFeatures: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "ward_boundary_features",
			Help:      "Features in the loaded ward boundary collection.",
		}),
		DatasetLoadSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "dataset_load_duration_seconds",
			Help:      "Duration of a one-shot dataset fetch and parse.",
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"dataset"}),
		Recomputes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recomputes_total",
			Help:      "View recomputations across all entry points.",
		}),
		RecomputeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "recompute_duration_seconds",
			Help:      "Duration of one four-view recomputation.",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}),
		RenderErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "render_errors_total",
			Help:      "Renderer dispatch failures by view.",
		}, []string{"view"}),
		Exports: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exports_total",
			Help:      "Spreadsheet exports served.",
		}),
	}
}
