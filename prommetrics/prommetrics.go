// Package prommetrics exports kdmap metrics to Prometheus.
//
//	c := prommetrics.New("kdmap")
//	m, _ := kdmap.Open(ctx, store, name, kdmap.WithMetricsCollector(c))
//	http.Handle("/metrics", c.Handler())
package prommetrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/hupe1980/kdmap"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ kdmap.MetricsCollector = (*Collector)(nil)

// Collector implements kdmap.MetricsCollector on a private registry.
type Collector struct {
	registry *prometheus.Registry

	loads        *prometheus.CounterVec
	tilesLoaded  prometheus.Gauge
	buildSeconds prometheus.Histogram
	queries      *prometheus.CounterVec
	queryLatency *prometheus.HistogramVec
	queryResults *prometheus.HistogramVec
	requests     *prometheus.CounterVec
	reqLatency   *prometheus.HistogramVec
}

// New creates a Collector whose metric names start with namespace.
// The registry also carries the Go runtime and process collectors.
func New(namespace string) *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		loads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "map_loads_total",
			Help:      "Map files loaded, by status",
		}, []string{"status"}),
		tilesLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "map_tiles",
			Help:      "Tiles in the most recently loaded map",
		}),
		buildSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "index_build_seconds",
			Help:      "Time spent building the spatial index",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}),
		queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queries_total",
			Help:      "Queries answered, by operation and status",
		}, []string{"op", "status"}),
		queryLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "query_duration_seconds",
			Help:      "Query latency",
			Buckets:   prometheus.ExponentialBuckets(0.000001, 4, 12),
		}, []string{"op"}),
		queryResults: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "query_results",
			Help:      "Tiles returned per query",
			Buckets:   []float64{0, 1, 2, 5, 10, 20, 50, 100, 500, 1000},
		}, []string{"op"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests served, by route and status code",
		}, []string{"route", "code"}),
		reqLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}

	c.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		c.loads,
		c.tilesLoaded,
		c.buildSeconds,
		c.queries,
		c.queryLatency,
		c.queryResults,
		c.requests,
		c.reqLatency,
	)
	return c
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// RecordLoad implements kdmap.MetricsCollector.
func (c *Collector) RecordLoad(tiles int, _ time.Duration, err error) {
	c.loads.WithLabelValues(status(err)).Inc()
	if err == nil {
		c.tilesLoaded.Set(float64(tiles))
	}
}

// RecordBuild implements kdmap.MetricsCollector.
func (c *Collector) RecordBuild(_ int, duration time.Duration) {
	c.buildSeconds.Observe(duration.Seconds())
}

// RecordQuery implements kdmap.MetricsCollector.
func (c *Collector) RecordQuery(op string, results int, duration time.Duration, err error) {
	c.queries.WithLabelValues(op, status(err)).Inc()
	c.queryLatency.WithLabelValues(op).Observe(duration.Seconds())
	if err == nil {
		c.queryResults.WithLabelValues(op).Observe(float64(results))
	}
}

// RecordRequest records one HTTP request served on route.
func (c *Collector) RecordRequest(route string, code int, duration time.Duration) {
	c.requests.WithLabelValues(route, strconv.Itoa(code)).Inc()
	c.reqLatency.WithLabelValues(route).Observe(duration.Seconds())
}

// Registry returns the registry the metrics are registered on.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}
