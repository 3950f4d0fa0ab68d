package metrics

import (
	"sync"
	"sync/atomic"
)

// MetricKey is a strongly typed metric identifier.
type MetricKey string

// Metric keys (centralized)
const (
	// Reads
	CacheGetsTotal    MetricKey = "cache_gets_total"
	CacheHitsTotal    MetricKey = "cache_hits_total"
	CacheMissesTotal  MetricKey = "cache_misses_total"
	CacheExpiredTotal MetricKey = "cache_expired_total"

	// Writes
	CacheSetsTotal   MetricKey = "cache_sets_total"
	CacheUnsetsTotal MetricKey = "cache_unsets_total"
	CacheClearsTotal MetricKey = "cache_clears_total"
	CachePrunedTotal MetricKey = "cache_pruned_total"

	// Persistence
	CacheCommitsTotal        MetricKey = "cache_commits_total"
	CacheCommitFailuresTotal MetricKey = "cache_commit_failures_total"
	CacheLoadsTotal          MetricKey = "cache_loads_total"
	CacheLoadFailuresTotal   MetricKey = "cache_load_failures_total"
)

// Registry stores all metrics.
type Registry struct {
	mu       sync.RWMutex
	counters map[MetricKey]*int64
}

// NewRegistry creates a metrics registry.
func NewRegistry() *Registry {
	return &Registry{
		counters: make(map[MetricKey]*int64),
	}
}

// Inc increments a metric by 1.
func (r *Registry) Inc(key MetricKey) {
	r.Add(key, 1)
}

// Add increments a metric by delta.
func (r *Registry) Add(key MetricKey, delta int64) {
	r.mu.RLock()
	ptr, ok := r.counters[key]
	r.mu.RUnlock()

	if ok {
		atomic.AddInt64(ptr, delta)
		return
	}

	// Slow path: metric not yet initialized
	r.mu.Lock()
	defer r.mu.Unlock()

	// Double-check after acquiring write lock
	if ptr, ok = r.counters[key]; ok {
		atomic.AddInt64(ptr, delta)
		return
	}

	var val int64
	r.counters[key] = &val
	atomic.AddInt64(&val, delta)
}

// Get returns the current value of a metric, zero when it was never touched.
func (r *Registry) Get(key MetricKey) int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if ptr, ok := r.counters[key]; ok {
		return atomic.LoadInt64(ptr)
	}
	return 0
}
