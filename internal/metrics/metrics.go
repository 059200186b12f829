// Package metrics exposes Prometheus instrumentation for the upstream
// client and its caches.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Collector struct {
	reg *prometheus.Registry

	CacheEvents *prometheus.CounterVec // labels: tier (origin|result), event (hit|miss|eviction|update)
	CacheSize   *prometheus.GaugeVec   // label: tier

	UpstreamRequests *prometheus.CounterVec // label: outcome (fresh|not_modified|error)
	InflightRequests prometheus.Gauge

	BoardRefreshes  *prometheus.CounterVec // label: result (ok|error)
	TripsReturned   prometheus.Gauge
	RefreshDuration prometheus.Histogram
}

func NewCollector() *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		reg: reg,
		CacheEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mbtaboard_cache_events_total",
			Help: "Cache events by tier and event type.",
		}, []string{"tier", "event"}),
		CacheSize: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "mbtaboard_cache_entries",
			Help: "Number of entries currently held per cache tier.",
		}, []string{"tier"}),
		UpstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mbtaboard_upstream_requests_total",
			Help: "Requests to the MBTA v3 API by outcome.",
		}, []string{"outcome"}),
		InflightRequests: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "mbtaboard_upstream_inflight_requests",
			Help: "Outbound requests currently holding a semaphore slot.",
		}),
		BoardRefreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mbtaboard_board_refreshes_total",
			Help: "Board update cycles by result.",
		}, []string{"result"}),
		TripsReturned: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "mbtaboard_trips_returned",
			Help: "Trips returned by the most recent board refresh.",
		}),
		RefreshDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "mbtaboard_refresh_duration_seconds",
			Help:    "Duration of full board update cycles.",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		}),
	}

	reg.MustRegister(
		c.CacheEvents, c.CacheSize,
		c.UpstreamRequests, c.InflightRequests,
		c.BoardRefreshes, c.TripsReturned, c.RefreshDuration,
	)

	return c
}

func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{})
}
