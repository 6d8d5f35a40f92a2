package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	ProviderRequestsTotal   *prometheus.CounterVec
	ProviderRequestDuration *prometheus.HistogramVec

	CacheHitsTotal   prometheus.Counter
	CacheMissesTotal prometheus.Counter

	SearchSessionsTotal *prometheus.CounterVec

	BusinessesPersistedTotal prometheus.Counter
	EstimatedCostUSD         prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{
		ProviderRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "placeradar_provider_requests_total",
				Help: "Total number of places provider API requests",
			},
			[]string{"operation", "status"},
		),
		ProviderRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "placeradar_provider_request_duration_seconds",
				Help:    "Places provider request duration in seconds",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
			},
			[]string{"operation"},
		),

		CacheHitsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "placeradar_cache_hits_total",
				Help: "Total number of per-category cache hits",
			},
		),
		CacheMissesTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "placeradar_cache_misses_total",
				Help: "Total number of per-category cache misses",
			},
		),

		SearchSessionsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "placeradar_search_sessions_total",
				Help: "Total number of search sessions processed",
			},
			[]string{"status"},
		),

		BusinessesPersistedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "placeradar_businesses_persisted_total",
				Help: "Total number of businesses appended to the output store",
			},
		),
		EstimatedCostUSD: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "placeradar_estimated_cost_usd",
				Help: "Estimated provider spend for the current process",
			},
		),
	}

	return m
}

func Handler() http.Handler {
	return promhttp.Handler()
}

func (m *Metrics) RecordProviderRequest(operation, status string, duration time.Duration) {
	m.ProviderRequestsTotal.WithLabelValues(operation, status).Inc()
	m.ProviderRequestDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

func (m *Metrics) RecordCacheHit() {
	m.CacheHitsTotal.Inc()
}

func (m *Metrics) RecordCacheMiss() {
	m.CacheMissesTotal.Inc()
}

func (m *Metrics) RecordSearchSession(status string) {
	m.SearchSessionsTotal.WithLabelValues(status).Inc()
}

func (m *Metrics) AddBusinessesPersisted(count int) {
	m.BusinessesPersistedTotal.Add(float64(count))
}

func (m *Metrics) SetEstimatedCost(usd float64) {
	m.EstimatedCostUSD.Set(usd)
}
