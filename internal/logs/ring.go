package logs

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Entry is one log line retained by a RingHook.
type Entry struct {
	TimeStamp time.Time     `json:"timestamp"`
	Level     logrus.Level  `json:"level"`
	Message   string        `json:"message"`
	Fields    logrus.Fields `json:"fields,omitempty"`
}

// RingHook keeps the most recent log entries in memory.
//
// level: least severe level to record (e.g. logrus.InfoLevel keeps INFO, WARN, ERROR...)
//
// maxSize: maximum number of log entries kept in memory
type RingHook struct {
	mu      sync.Mutex
	entries []Entry
	maxSize int
	levels  []logrus.Level
}

// NewRingHook creates a hook recording entries at level or more severe.
func NewRingHook(maxSize int, level logrus.Level) *RingHook {
	levels := make([]logrus.Level, 0, len(logrus.AllLevels))
	for _, l := range logrus.AllLevels {
		if l <= level {
			levels = append(levels, l)
		}
	}

	return &RingHook{
		entries: make([]Entry, 0, maxSize),
		maxSize: maxSize,
		levels:  levels,
	}
}

// Levels implements logrus.Hook.
func (h *RingHook) Levels() []logrus.Level {
	return h.levels
}

// Fire implements logrus.Hook with ring buffer behavior.
func (h *RingHook) Fire(e *logrus.Entry) error {
	if h.maxSize <= 0 {
		return nil
	}

	fields := make(logrus.Fields, len(e.Data))
	for k, v := range e.Data {
		fields[k] = v
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.entries) >= h.maxSize {
		// drop oldest entry
		h.entries = h.entries[1:]
	}

	h.entries = append(h.entries, Entry{
		TimeStamp: e.Time,
		Level:     e.Level,
		Message:   e.Message,
		Fields:    fields,
	})
	return nil
}

// GetLast returns up to n of the newest entries, oldest first.
func (h *RingHook) GetLast(n int) []Entry {
	h.mu.Lock()
	defer h.mu.Unlock()

	if n > len(h.entries) {
		n = len(h.entries)
	}
	if n < 0 {
		n = 0
	}

	start := len(h.entries) - n
	out := make([]Entry, n)
	copy(out, h.entries[start:])
	return out
}
