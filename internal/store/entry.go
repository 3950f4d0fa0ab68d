package store

import (
	"time"

	"file-cache/internal/ttl"
)

// Entry represents a single value stored in the cache.
//
// Design choices:
// - Expires is an absolute Unix-seconds timestamp so it survives restarts.
// - Zero value of Expires means "no expiration".
// - Field order matches the on-disk form {"expires": ..., "value": ...}.
type Entry[V any] struct {
	Expires ttl.Expiry `json:"expires"`
	Value   V          `json:"value"`
}

// IsExpired checks whether the entry is dead at the given time.
func (e Entry[V]) IsExpired(now time.Time) bool {
	return e.Expires.IsExpired(now)
}
