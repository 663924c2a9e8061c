package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds the Prometheus metrics of the service. A nil *Collector is
// valid and records nothing.
type Collector struct {
	registry *prometheus.Registry

	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	Reconciliations   *prometheus.CounterVec
	ReconcileDuration prometheus.Histogram
	OracleCalls       *prometheus.CounterVec
	ItemLookups       *prometheus.CounterVec
	ItemStatuses      *prometheus.CounterVec
	OracleRemovals    *prometheus.CounterVec

	CacheHits   prometheus.Counter
	CacheMisses prometheus.Counter
}

// NewCollector creates a collector with its own registry under namespace.
func NewCollector(namespace string) *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		Reconciliations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reconciliations_total",
			Help:      "Trip reconciliations by outcome",
		}, []string{"outcome"}),
		ReconcileDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "reconcile_duration_seconds",
			Help:      "End-to-end trip reconciliation duration in seconds",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2, 5, 10, 20},
		}),
		OracleCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "oracle_calls_total",
			Help:      "Decision oracle calls by provider and result",
		}, []string{"provider", "result"}),
		ItemLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "item_lookups_total",
			Help:      "Item document lookups by kind and result",
		}, []string{"kind", "result"}),
		ItemStatuses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "item_statuses_total",
			Help:      "Statuses assigned during reconciliation",
		}, []string{"kind", "status"}),
		OracleRemovals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "oracle_removals_total",
			Help:      "Existing items dropped on oracle decision",
		}, []string{"kind"}),
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "summary_cache_hits_total",
			Help:      "Compact summary cache hits",
		}),
		CacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "summary_cache_misses_total",
			Help:      "Compact summary cache misses",
		}),
	}

	registry.MustRegister(
		c.HTTPRequests,
		c.HTTPDuration,
		c.Reconciliations,
		c.ReconcileDuration,
		c.OracleCalls,
		c.ItemLookups,
		c.ItemStatuses,
		c.OracleRemovals,
		c.CacheHits,
		c.CacheMisses,
	)
	return c
}

// Registry exposes the underlying registry.
func (c *Collector) Registry() *prometheus.Registry { return c.registry }

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// ObserveReconcile counts one reconciliation by outcome (ok or failed) and
// records its duration.
func (c *Collector) ObserveReconcile(outcome string, d time.Duration) {
	if c == nil {
		return
	}
	c.Reconciliations.WithLabelValues(outcome).Inc()
	c.ReconcileDuration.Observe(d.Seconds())
}

// OracleCall counts one decision oracle call; result is parsed, parse_failed,
// error or breaker_open.
func (c *Collector) OracleCall(provider, result string) {
	if c == nil {
		return
	}
	c.OracleCalls.WithLabelValues(provider, result).Inc()
}

// ItemLookup counts one item document read by result (hit, miss or error).
func (c *Collector) ItemLookup(kind, result string) {
	if c == nil {
		return
	}
	c.ItemLookups.WithLabelValues(kind, result).Inc()
}

// ItemStatus counts a status written to the trip record.
func (c *Collector) ItemStatus(kind, status string) {
	if c == nil {
		return
	}
	c.ItemStatuses.WithLabelValues(kind, status).Inc()
}

// OracleRemoval adds n existing items dropped on the oracle's decision.
func (c *Collector) OracleRemoval(kind string, n int) {
	if c == nil || n == 0 {
		return
	}
	c.OracleRemovals.WithLabelValues(kind).Add(float64(n))
}

// CacheResult counts a summary cache hit or miss.
func (c *Collector) CacheResult(hit bool) {
	if c == nil {
		return
	}
	if hit {
		c.CacheHits.Inc()
		return
	}
	c.CacheMisses.Inc()
}

// ObserveHTTP records one HTTP request under its route pattern.
func (c *Collector) ObserveHTTP(method, route, status string, d time.Duration) {
	if c == nil {
		return
	}
	c.HTTPRequests.WithLabelValues(method, route, status).Inc()
	c.HTTPDuration.WithLabelValues(method, route).Observe(d.Seconds())
}
