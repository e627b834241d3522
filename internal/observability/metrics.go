package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "climate_snapshot"

// Metrics holds the Prometheus counters, histograms, and gauges for the loader and read API.
type Metrics struct {
	YearFetches       *prometheus.CounterVec // labels: outcome={loaded,absent,failed,malformed}
	YearFetchDuration prometheus.Histogram
	SnapshotEvents    prometheus.Gauge
	LoadedYears       prometheus.Gauge
	RegionsCrossed    prometheus.Gauge
	LoaderRunning     prometheus.Gauge

	// Read API and publishing.
	ResolveRequests *prometheus.CounterVec // labels: endpoint
	PublishErrors   prometheus.Counter
}

func newMetrics() *Metrics {
	return &Metrics{
		YearFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "year_fetch_total",
			Help:      "Yearly document fetches by outcome.",
		}, []string{"outcome"}),
		YearFetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "year_fetch_duration_seconds",
			Help:      "Duration of fetching and building one yearly snapshot.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		SnapshotEvents: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "snapshot_events",
			Help:      "Catastrophe events held across all loaded years.",
		}),
		LoadedYears: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "loaded_years",
			Help:      "Years whose document loaded successfully.",
		}),
		RegionsCrossed: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "regions_crossed",
			Help:      "Regions with a warming threshold crossing year.",
		}),
		LoaderRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "loader_running",
			Help:      "1 while the loader is active, 0 when shut down.",
		}),
		ResolveRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resolve_requests_total",
			Help:      "Read API requests by endpoint.",
		}, []string{"endpoint"}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_errors_total",
			Help:      "Load reports that could not be published.",
		}),
	}
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.YearFetches,
		m.YearFetchDuration,
		m.SnapshotEvents,
		m.LoadedYears,
		m.RegionsCrossed,
		m.LoaderRunning,
		m.ResolveRequests,
		m.PublishErrors,
	)
	return m
}

// NewMetricsForTesting creates Metrics that are not registered anywhere, to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}
