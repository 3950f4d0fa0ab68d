package store

import (
	"os"
	"path/filepath"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/sirupsen/logrus"

	"file-cache/internal/logs"
	"file-cache/internal/metrics"
	"file-cache/internal/ttl"
)

const (
	// DefaultDirName is the directory created under the working directory when no
	// directory is configured.
	DefaultDirName = ".cache"
	// DefaultName is the snapshot file name used when no name is configured.
	DefaultName = "cache.json"
	// DefaultTTL applies to Set when the store is built without WithDefaultTTL.
	DefaultTTL = 3600
)

// Option configures a Store at construction.
type Option func(*settings)

// settings is the merged configuration. A nil dir or name disables persistence.
type settings struct {
	dir        *string
	name       *string
	ttl        ttl.TTL
	autoCommit bool
	fs         billy.Filesystem
	now        func() time.Time
	logger     logrus.FieldLogger
	metrics    *metrics.Registry
}

func defaultSettings() settings {
	dir := DefaultDirName
	if wd, err := os.Getwd(); err == nil {
		dir = filepath.Join(wd, DefaultDirName)
	}
	name := DefaultName

	return settings{
		dir:        &dir,
		name:       &name,
		ttl:        ttl.Seconds(DefaultTTL),
		autoCommit: true,
		fs:         osfs.New("/"),
		now:        time.Now,
		logger:     logs.Discard(),
		metrics:    metrics.NewRegistry(),
	}
}

// WithDir sets the directory holding the snapshot file.
// Relative paths are resolved against the working directory.
func WithDir(dir string) Option {
	return func(s *settings) {
		s.dir = &dir
	}
}

// WithoutDir disables persistence.
func WithoutDir() Option {
	return func(s *settings) {
		s.dir = nil
	}
}

// WithName sets the snapshot file name.
func WithName(name string) Option {
	return func(s *settings) {
		s.name = &name
	}
}

// WithoutName disables persistence.
func WithoutName() Option {
	return func(s *settings) {
		s.name = nil
	}
}

// WithDefaultTTL sets the lifetime used by Set.
func WithDefaultTTL(t ttl.TTL) Option {
	return func(s *settings) {
		s.ttl = t
	}
}

// WithAutoCommit controls whether every mutation rewrites the snapshot.
func WithAutoCommit(enabled bool) Option {
	return func(s *settings) {
		s.autoCommit = enabled
	}
}

// WithFilesystem replaces the local filesystem, e.g. with memfs in tests.
func WithFilesystem(fs billy.Filesystem) Option {
	return func(s *settings) {
		if fs != nil {
			s.fs = fs
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *settings) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger routes the store's debug logging.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(s *settings) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics shares a metrics registry with the caller.
func WithMetrics(reg *metrics.Registry) Option {
	return func(s *settings) {
		if reg != nil {
			s.metrics = reg
		}
	}
}
