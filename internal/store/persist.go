package store

import (
	"encoding/json"
	"os"

	"github.com/go-git/go-billy/v5/util"
	"github.com/jmgilman/go/errors"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"file-cache/internal/logs"
	"file-cache/internal/metrics"
)

const (
	dirPerm  os.FileMode = 0o755
	filePerm os.FileMode = 0o644
)

// Commit writes the full mapping, dead entries included, to <dir>/<name>.
//
// The file is overwritten in place. When persistence is disabled Commit does
// nothing. A failed commit leaves the in-memory mapping untouched.
func (s *Store[V]) Commit() error {
	if !s.persistent {
		return nil
	}

	path := s.Path()
	fields := logs.Fields("commit", path)

	data, err := json.Marshal(s.items)
	if err != nil {
		s.metrics.Inc(metrics.CacheCommitFailuresTotal)
		return errors.Wrap(err, errors.CodeInvalidInput, "encode cache snapshot")
	}
	data = append(data, '\n')

	if err := s.fs.MkdirAll(s.dir, dirPerm); err != nil {
		s.metrics.Inc(metrics.CacheCommitFailuresTotal)
		s.logger.WithFields(fields).WithError(err).Debug("create cache directory failed")
		return errors.Wrapf(err, errors.CodeInternal, "create cache directory %s", s.dir)
	}

	if err := util.WriteFile(s.fs, path, data, filePerm); err != nil {
		s.metrics.Inc(metrics.CacheCommitFailuresTotal)
		s.logger.WithFields(fields).WithError(err).Debug("write cache snapshot failed")
		return errors.Wrapf(err, errors.CodeInternal, "write cache snapshot %s", path)
	}

	s.metrics.Inc(metrics.CacheCommitsTotal)
	s.logger.WithFields(fields).WithField("entries", s.items.Len()).Debug("committed cache snapshot")
	return nil
}

// load replaces the mapping with the snapshot on disk. Every failure is
// absorbed: the store simply starts empty.
func (s *Store[V]) load() {
	path := s.Path()
	fields := logs.Fields("load", path)
	s.metrics.Inc(metrics.CacheLoadsTotal)

	if _, err := s.fs.Stat(path); err != nil {
		s.logger.WithFields(fields).WithError(err).Debug("no cache snapshot, starting empty")
		return
	}

	data, err := util.ReadFile(s.fs, path)
	if err != nil {
		s.metrics.Inc(metrics.CacheLoadFailuresTotal)
		s.logger.WithFields(fields).WithError(err).Debug("read cache snapshot failed, starting empty")
		return
	}

	items := orderedmap.New[string, Entry[V]]()
	if err := json.Unmarshal(data, items); err != nil {
		s.metrics.Inc(metrics.CacheLoadFailuresTotal)
		s.logger.WithFields(fields).WithError(err).Debug("decode cache snapshot failed, starting empty")
		return
	}

	s.items = items
	s.logger.WithFields(fields).WithField("entries", items.Len()).Debug("loaded cache snapshot")
}
