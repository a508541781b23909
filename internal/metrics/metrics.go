package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "projectsapi_requests_total",
		Help: "Total number of API requests by endpoint",
	}, []string{"endpoint"})
	RequestDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "projectsapi_request_duration_ms",
		Help:    "Request duration in milliseconds",
		Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000},
	}, []string{"endpoint"})
	NotReadyTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "projectsapi_not_ready_total",
		Help: "Total number of 202 responses served while the cache was loading",
	})
	CacheBuildsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "projectsapi_cache_builds_total",
		Help: "Total number of successful cache populations",
	})
	CacheBuildFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "projectsapi_cache_build_failures_total",
		Help: "Total number of failed cache populations",
	})
	CacheBuildDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "projectsapi_cache_build_duration_ms",
		Help:    "Full cache population duration in milliseconds",
		Buckets: []float64{1000, 5000, 10000, 30000, 60000, 120000, 300000},
	})
	FetchDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "projectsapi_fetch_duration_ms",
		Help:    "Airtable dataset fetch duration in milliseconds",
		Buckets: []float64{100, 500, 1000, 2000, 5000, 10000, 30000, 60000},
	}, []string{"dataset"})
	FetchFailuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "projectsapi_fetch_failures_total",
		Help: "Total Airtable fetch failures by dataset",
	}, []string{"dataset"})
	RecordsFetchedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "projectsapi_records_fetched_total",
		Help: "Total raw records fetched by dataset",
	}, []string{"dataset"})
	FormatFailuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "projectsapi_format_failures_total",
		Help: "Total records dropped by the formatter by dataset",
	}, []string{"dataset"})
	RedisHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "projectsapi_redis_hits_total",
		Help: "Total redis cache hits on by-id lookups",
	})
	RedisMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "projectsapi_redis_misses_total",
		Help: "Total redis cache misses on by-id lookups",
	})
)

func init() {
	prometheus.MustRegister(RequestsTotal)
	prometheus.MustRegister(RequestDurationMs)
	prometheus.MustRegister(NotReadyTotal)
	prometheus.MustRegister(CacheBuildsTotal)
	prometheus.MustRegister(CacheBuildFailuresTotal)
	prometheus.MustRegister(CacheBuildDurationMs)
	prometheus.MustRegister(FetchDurationMs)
	prometheus.MustRegister(FetchFailuresTotal)
	prometheus.MustRegister(RecordsFetchedTotal)
	prometheus.MustRegister(FormatFailuresTotal)
	prometheus.MustRegister(RedisHitsTotal)
	prometheus.MustRegister(RedisMissesTotal)
}

// Handler exposes the registered metrics for Prometheus scraping; mounted on
// /metrics by the main entry point.
func Handler() http.Handler { return promhttp.Handler() }
