// Package metrics counts catalog operations for the process lifetime and
// mirrors them into Prometheus collectors.
package metrics

import (
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Tracker holds monotonic operation counters. It has no reset operation.
type Tracker struct {
	created     atomic.Int64
	updated     atomic.Int64
	deleted     atomic.Int64
	searches    atomic.Int64
	cacheHits   atomic.Int64
	searchNanos atomic.Int64

	operations     *prometheus.CounterVec
	searchTotal    *prometheus.CounterVec
	searchDuration prometheus.Histogram
}

// Snapshot is a point-in-time copy of every counter and derived value.
type Snapshot struct {
	CreateCount             int64   `json:"createCount"`
	UpdateCount             int64   `json:"updateCount"`
	DeleteCount             int64   `json:"deleteCount"`
	SearchCount             int64   `json:"searchCount"`
	CacheHitCount           int64   `json:"cacheHitCount"`
	AverageSearchTimeMillis float64 `json:"averageSearchTimeMillis"`
	CacheHitRatio           float64 `json:"cacheHitRatio"`
}

// NewTracker creates a Tracker and registers its Prometheus collectors on reg.
// A nil reg keeps the collectors unregistered.
func NewTracker(reg prometheus.Registerer) *Tracker {
	t := &Tracker{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "catalog_product_operations_total",
			Help: "Successful product mutations by operation.",
		}, []string{"operation"}),
		searchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "catalog_searches_total",
			Help: "Product searches by cache outcome.",
		}, []string{"cache"}),
		searchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "catalog_search_duration_seconds",
			Help:    "Duration of product searches.",
			Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10),
		}),
	}
	if reg != nil {
		reg.MustRegister(t.operations, t.searchTotal, t.searchDuration)
	}
	return t
}

func (t *Tracker) RecordCreate() {
	t.created.Add(1)
	t.operations.WithLabelValues("create").Inc()
}

func (t *Tracker) RecordUpdate() {
	t.updated.Add(1)
	t.operations.WithLabelValues("update").Inc()
}

func (t *Tracker) RecordDelete() {
	t.deleted.Add(1)
	t.operations.WithLabelValues("delete").Inc()
}

// RecordSearch registers one completed search and whether it was served from cache.
func (t *Tracker) RecordSearch(d time.Duration, fromCache bool) {
	if d < 0 {
		d = 0
	}
	t.searches.Add(1)
	t.searchNanos.Add(d.Nanoseconds())
	outcome := "miss"
	if fromCache {
		t.cacheHits.Add(1)
		outcome = "hit"
	}
	t.searchTotal.WithLabelValues(outcome).Inc()
	t.searchDuration.Observe(d.Seconds())
}

func (t *Tracker) CreateCount() int64   { return t.created.Load() }
func (t *Tracker) UpdateCount() int64   { return t.updated.Load() }
func (t *Tracker) DeleteCount() int64   { return t.deleted.Load() }
func (t *Tracker) SearchCount() int64   { return t.searches.Load() }
func (t *Tracker) CacheHitCount() int64 { return t.cacheHits.Load() }

// AverageSearchTimeMillis is 0 until the first search.
func (t *Tracker) AverageSearchTimeMillis() float64 {
	n := t.searches.Load()
	if n == 0 {
		return 0
	}
	return float64(t.searchNanos.Load()) / float64(n) / 1e6
}

// CacheHitRatio is in [0, 1] and 0 until the first search.
func (t *Tracker) CacheHitRatio() float64 {
	n := t.searches.Load()
	if n == 0 {
		return 0
	}
	return float64(t.cacheHits.Load()) / float64(n)
}

func (t *Tracker) Snapshot() Snapshot {
	return Snapshot{
		CreateCount:             t.CreateCount(),
		UpdateCount:             t.UpdateCount(),
		DeleteCount:             t.DeleteCount(),
		SearchCount:             t.SearchCount(),
		CacheHitCount:           t.CacheHitCount(),
		AverageSearchTimeMillis: t.AverageSearchTimeMillis(),
		CacheHitRatio:           t.CacheHitRatio(),
	}
}
