package ttl

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"time"
)

// Expiry is the absolute instant after which an entry is gone.
//
// Design choices:
// - Precision is whole Unix seconds (UTC), the unit written to disk.
// - Zero value means "never expires".
// - JSON form is an integer number of seconds, or false for never.
type Expiry struct {
	unix int64
	set  bool
}

// NoExpiry is the never-expires sentinel.
var NoExpiry = Expiry{}

// At returns the expiry for instant t, truncated to whole seconds.
func At(t time.Time) Expiry {
	return Expiry{unix: t.Unix(), set: true}
}

// Unix returns the expiry for a Unix timestamp in seconds.
func Unix(sec int64) Expiry {
	return Expiry{unix: sec, set: true}
}

// Never reports whether e is the never-expires sentinel.
func (e Expiry) Never() bool {
	return !e.set
}

// Unix returns the expiry in Unix seconds. It is zero for NoExpiry.
func (e Expiry) Unix() int64 {
	return e.unix
}

// Time returns the expiry as a UTC time. It is the zero time for NoExpiry.
func (e Expiry) Time() time.Time {
	if !e.set {
		return time.Time{}
	}
	return time.Unix(e.unix, 0).UTC()
}

// IsExpired checks whether the expiry has been reached at now.
// An entry expiring at second s is dead from s onwards.
func (e Expiry) IsExpired(now time.Time) bool {
	return e.set && e.unix <= now.Unix()
}

func (e Expiry) MarshalJSON() ([]byte, error) {
	if !e.set {
		return []byte("false"), nil
	}
	return strconv.AppendInt(nil, e.unix, 10), nil
}

func (e *Expiry) UnmarshalJSON(data []byte) error {
	raw := bytes.TrimSpace(data)

	switch string(raw) {
	case "false":
		*e = NoExpiry
		return nil
	case "null", "true", "":
		return fmt.Errorf("invalid expiry %q", raw)
	}

	if sec, err := strconv.ParseInt(string(raw), 10, 64); err == nil {
		*e = Unix(sec)
		return nil
	}

	// Writers other than this package may emit fractional or exponent forms.
	f, err := strconv.ParseFloat(string(raw), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("invalid expiry %q", raw)
	}
	*e = Unix(int64(math.Floor(f)))
	return nil
}
