package ttl

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Parse reads a TTL from text.
//
// Accepted forms:
//   - "never" or "false": Never
//   - Go durations such as "90m" or "1h30m"
//   - plain seconds such as "3600" or "1.5"
func Parse(raw string) (TTL, error) {
	value := strings.ToLower(strings.TrimSpace(raw))
	switch value {
	case "":
		return TTL{}, fmt.Errorf("empty ttl")
	case "never", "false":
		return Never, nil
	}

	if d, err := time.ParseDuration(value); err == nil {
		return Of(d), nil
	}
	if n, err := strconv.ParseInt(value, 10, 64); err == nil {
		return Seconds(n), nil
	}
	if f, err := strconv.ParseFloat(value, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return FloatSeconds(f), nil
	}

	return TTL{}, fmt.Errorf("invalid ttl value: %s", raw)
}
