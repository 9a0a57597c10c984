package repository

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	// QueryNameLabel is the label for DB metrics, representing the query name (e.g., "CreateLink").
	QueryNameLabel = "query_name"
	// StatusLabel is the label for DB metrics, representing the outcome.
	StatusLabel = "status"

	StatusSuccess   = "success"
	StatusError     = "error"
	StatusNotFound  = "not_found"
	StatusCollision = "collision"
)

// Metrics holds the prometheus collectors updated by the store and the link cache.
// A nil *Metrics records nothing.
type Metrics struct {
	QueryDuration *prometheus.HistogramVec
	QueryTotal    *prometheus.CounterVec
	CacheHits     prometheus.Counter
	CacheMisses   prometheus.Counter
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		QueryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "The latency of database queries in seconds.",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{QueryNameLabel}),
		QueryTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "db_query_total",
			Help: "The total number of database queries.",
		}, []string{QueryNameLabel, StatusLabel}),
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "link_cache_hit_count",
			Help: "The number of link cache hits",
		}),
		CacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "link_cache_miss_count",
			Help: "The number of link cache misses",
		}),
	}

	for _, c := range []prometheus.Collector{m.QueryDuration, m.QueryTotal, m.CacheHits, m.CacheMisses} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// observe records one query; err is expected to be already translated.
func (m *Metrics) observe(queryName string, start time.Time, err error) {
	if m == nil {
		return
	}
	m.QueryDuration.WithLabelValues(queryName).Observe(time.Since(start).Seconds())
	m.QueryTotal.WithLabelValues(queryName, statusOf(err)).Inc()
}

func (m *Metrics) cacheHit(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.CacheHits.Inc()
		return
	}
	m.CacheMisses.Inc()
}

func statusOf(err error) string {
	switch {
	case err == nil:
		return StatusSuccess
	case errors.Is(err, ErrNotFound):
		return StatusNotFound
	case errors.Is(err, ErrDuplicateKey):
		return StatusCollision
	default:
		return StatusError
	}
}
