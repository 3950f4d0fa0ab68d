package store

import (
	"iter"
	"path/filepath"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/jmgilman/go/errors"
	"github.com/sirupsen/logrus"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"file-cache/internal/logs"
	"file-cache/internal/metrics"
	"file-cache/internal/ttl"
)

// ErrNotFound is returned by Get when the key is absent or dead.
var ErrNotFound = errors.New(errors.CodeNotFound, "cache entry not found")

// Store is a file-persisted key/value cache with per-entry TTL.
//
// Design principles:
// - Lazy expiry: no sweeper, dead entries are found by the reader
// - Has/Get delete what they find dead; Keys/All/Iter only filter
// - Auto-commit rewrites the whole snapshot inline, inside the mutating call
type Store[V any] struct {
	items *orderedmap.OrderedMap[string, Entry[V]]

	dir        string
	name       string
	persistent bool
	ttl        ttl.TTL
	autoCommit bool

	fs      billy.Filesystem
	now     func() time.Time
	logger  logrus.FieldLogger
	metrics *metrics.Registry
}

// New builds a Store from defaults overridden by opts and loads the snapshot
// when persistence is enabled. Load failures leave the store empty.
func New[V any](opts ...Option) *Store[V] {
	cfg := defaultSettings()
	for _, opt := range opts {
		opt(&cfg)
	}

	s := &Store[V]{
		items:      orderedmap.New[string, Entry[V]](),
		ttl:        cfg.ttl,
		autoCommit: cfg.autoCommit,
		fs:         cfg.fs,
		now:        cfg.now,
		logger:     cfg.logger,
		metrics:    cfg.metrics,
	}

	if cfg.dir != nil && cfg.name != nil {
		dir := *cfg.dir
		if abs, err := filepath.Abs(dir); err == nil {
			dir = abs
		}
		s.dir = dir
		s.name = *cfg.name
		s.persistent = true
		s.load()
	}

	return s
}

// Persistent reports whether commits reach the filesystem.
func (s *Store[V]) Persistent() bool {
	return s.persistent
}

// Path returns the snapshot location, or "" when persistence is disabled.
func (s *Store[V]) Path() string {
	if !s.persistent {
		return ""
	}
	return filepath.Join(s.dir, s.name)
}

// Has reports whether key holds a live entry.
//
// A dead entry is deleted on the spot and, with auto-commit, the deletion is
// persisted before Has returns. The returned error is that commit's failure.
func (s *Store[V]) Has(key string) (bool, error) {
	entry, ok := s.items.Get(key)
	if !ok {
		return false, nil
	}

	if !entry.IsExpired(s.now()) {
		return true, nil
	}

	s.items.Delete(key)
	s.metrics.Inc(metrics.CacheExpiredTotal)
	s.logger.WithFields(logs.KeyFields("expire", s.Path(), key)).Debug("removed expired entry")

	return false, s.maybeCommit()
}

// Get returns the live value for key, or ErrNotFound.
func (s *Store[V]) Get(key string) (V, error) {
	var zero V
	s.metrics.Inc(metrics.CacheGetsTotal)

	live, err := s.Has(key)
	if err != nil {
		return zero, err
	}
	if !live {
		s.metrics.Inc(metrics.CacheMissesTotal)
		return zero, ErrNotFound
	}

	entry, _ := s.items.Get(key)
	s.metrics.Inc(metrics.CacheHitsTotal)
	return entry.Value, nil
}

// Set stores value under key with the default TTL.
func (s *Store[V]) Set(key string, value V) error {
	return s.SetTTL(key, value, s.ttl)
}

// SetTTL stores value under key, replacing any previous entry.
//
// Negative lifetimes count as zero, and a zero lifetime produces an entry that
// is already dead. ttl.Never stores an entry that does not expire.
func (s *Store[V]) SetTTL(key string, value V, lifetime ttl.TTL) error {
	s.items.Set(key, Entry[V]{
		Expires: lifetime.ExpiresAt(s.now()),
		Value:   value,
	})
	s.metrics.Inc(metrics.CacheSetsTotal)

	return s.maybeCommit()
}

// Unset removes key. Removing a missing key is not an error, and with
// auto-commit the snapshot is rewritten either way.
func (s *Store[V]) Unset(key string) error {
	if _, ok := s.items.Delete(key); ok {
		s.metrics.Inc(metrics.CacheUnsetsTotal)
	}
	return s.maybeCommit()
}

// Clear drops every entry.
func (s *Store[V]) Clear() error {
	s.items = orderedmap.New[string, Entry[V]]()
	s.metrics.Inc(metrics.CacheClearsTotal)
	return s.maybeCommit()
}

// Prune deletes every dead entry and returns how many were removed.
// It only runs when called; nothing schedules it.
func (s *Store[V]) Prune() (int, error) {
	now := s.now()

	var dead []string
	for pair := s.items.Oldest(); pair != nil; pair = pair.Next() {
		if pair.Value.IsExpired(now) {
			dead = append(dead, pair.Key)
		}
	}
	if len(dead) == 0 {
		return 0, nil
	}

	for _, key := range dead {
		s.items.Delete(key)
	}
	s.metrics.Add(metrics.CachePrunedTotal, int64(len(dead)))
	s.logger.WithFields(logs.Fields("prune", s.Path())).WithField("removed", len(dead)).Debug("pruned expired entries")

	return len(dead), s.maybeCommit()
}

// Keys returns the live keys in insertion order. Dead entries are skipped but
// stay in the store.
func (s *Store[V]) Keys() []string {
	keys := make([]string, 0, s.items.Len())
	for key := range s.Iter() {
		keys = append(keys, key)
	}
	return keys
}

// Len returns the number of live keys.
func (s *Store[V]) Len() int {
	return len(s.Keys())
}

// All returns a snapshot of live key/value pairs. Dead entries stay in the store.
func (s *Store[V]) All() map[string]V {
	out := make(map[string]V, s.items.Len())
	for key, value := range s.Iter() {
		out[key] = value
	}
	return out
}

// Iter yields live key/value pairs in insertion order without mutating the
// store. Liveness is evaluated once per iteration, so every run sees the
// clock afresh.
func (s *Store[V]) Iter() iter.Seq2[string, V] {
	return func(yield func(string, V) bool) {
		now := s.now()
		for pair := s.items.Oldest(); pair != nil; {
			next := pair.Next()
			if !pair.Value.IsExpired(now) {
				if !yield(pair.Key, pair.Value.Value) {
					return
				}
			}
			pair = next
		}
	}
}

func (s *Store[V]) maybeCommit() error {
	if !s.autoCommit {
		return nil
	}
	return s.Commit()
}
