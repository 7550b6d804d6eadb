// Package prometheus exports page cache metrics to Prometheus.
package prometheus

import (
	"net/http"
	"time"

	"github.com/fwojciec/folio/cache"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Ensure Metrics implements cache.Metrics at compile time.
var _ cache.Metrics = (*Metrics)(nil)

// Metrics is the Prometheus implementation of cache.Metrics.
type Metrics struct {
	materialized        prometheus.Counter
	failures            prometheus.Counter
	retries             prometheus.Counter
	materializeDuration prometheus.Histogram
	waitDuration        *prometheus.HistogramVec
	queueDepth          prometheus.Gauge
}

// NewMetrics creates Metrics registered on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		materialized: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "folio_pages_materialized_total",
			Help: "Total number of pages downloaded and rendered",
		}),
		failures: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "folio_page_failures_total",
			Help: "Total number of pages abandoned after all attempts failed",
		}),
		retries: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "folio_page_retries_total",
			Help: "Total number of page materialization retries",
		}),
		materializeDuration: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Name: "folio_page_materialize_duration_seconds",
			Help: "Time to download and render a page",
			Buckets: []float64{
				0.05, // local artifacts
				0.1,
				0.25,
				0.5,
				1,
				2.5,
				5, // slow network
				10,
				30,
			},
		}),
		waitDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "folio_page_wait_duration_seconds",
				Help:    "Time a reader waited for a page by result",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"}, // hit, miss, timeout, canceled
		),
		queueDepth: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "folio_request_queue_depth",
			Help: "Page requests waiting behind the one being served",
		}),
	}
}

// ObserveMaterialized counts a page that became Ready and records how long it took.
func (m *Metrics) ObserveMaterialized(d time.Duration) {
	m.materialized.Inc()
	m.materializeDuration.Observe(d.Seconds())
}

// ObserveFailure counts a page abandoned after its last attempt.
func (m *Metrics) ObserveFailure() {
	m.failures.Inc()
}

// ObserveRetry counts a failed attempt that will be retried.
func (m *Metrics) ObserveRetry() {
	m.retries.Inc()
}

// ObserveWait records how long GetPage blocked, labelled by result.
func (m *Metrics) ObserveWait(result string, d time.Duration) {
	m.waitDuration.WithLabelValues(result).Observe(d.Seconds())
}

// RecordQueueDepth sets the request queue depth gauge.
func (m *Metrics) RecordQueueDepth(n int) {
	m.queueDepth.Set(float64(n))
}

// Handler returns an HTTP handler serving the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
