package ttl

import (
	"math"
	"time"
)

// TTL is the lifetime requested for a cache entry.
//
// A TTL is either a finite duration or Never. The zero value is a
// zero-second lifetime, which makes an entry dead as soon as it is written.
type TTL struct {
	d     time.Duration
	never bool
}

// Never is the lifetime of entries that do not expire.
var Never = TTL{never: true}

// maxSeconds is the largest whole-second count a time.Duration can hold.
const maxSeconds = int64(math.MaxInt64 / time.Second)

// Seconds returns a TTL of n seconds. Counts beyond the range of
// time.Duration (about 292 years) saturate instead of wrapping.
func Seconds(n int64) TTL {
	switch {
	case n > maxSeconds:
		return TTL{d: math.MaxInt64}
	case n < -maxSeconds:
		return TTL{d: math.MinInt64}
	}
	return TTL{d: time.Duration(n) * time.Second}
}

// FloatSeconds returns a TTL of f seconds, saturating like Seconds.
// NaN yields a zero lifetime.
func FloatSeconds(f float64) TTL {
	ns := f * float64(time.Second)
	switch {
	case math.IsNaN(ns):
		return TTL{}
	case ns >= math.MaxInt64:
		return TTL{d: math.MaxInt64}
	case ns <= math.MinInt64:
		return TTL{d: math.MinInt64}
	}
	return TTL{d: time.Duration(ns)}
}

// Of returns a TTL of the given duration.
func Of(d time.Duration) TTL {
	return TTL{d: d}
}

// IsNever reports whether t is the never-expires lifetime.
func (t TTL) IsNever() bool {
	return t.never
}

// Duration returns the finite lifetime. It is zero for Never.
func (t TTL) Duration() time.Duration {
	if t.never {
		return 0
	}
	return t.d
}

// Normalize clamps negative lifetimes to zero.
func (t TTL) Normalize() TTL {
	if !t.never && t.d < 0 {
		return TTL{}
	}
	return t
}

// ExpiresAt computes the expiry of an entry written at now.
func (t TTL) ExpiresAt(now time.Time) Expiry {
	t = t.Normalize()
	if t.never {
		return NoExpiry
	}
	return At(now.Add(t.d))
}

func (t TTL) String() string {
	if t.never {
		return "never"
	}
	return t.d.String()
}
