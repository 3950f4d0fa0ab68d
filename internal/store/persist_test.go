package store

import (
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/jmgilman/go/errors"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"file-cache/internal/logs"
	"file-cache/internal/metrics"
	"file-cache/internal/ttl"
)

func TestStoreDefaults(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)

	s := New[string](WithFilesystem(memfs.New()))

	assert.True(t, s.Persistent())
	assert.Equal(t, filepath.Join(wd, ".cache", "cache.json"), s.Path())
	assert.Equal(t, 0, s.Len())
}

func TestStoreRelativeDirIsResolved(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)

	s := New[string](WithFilesystem(memfs.New()), WithDir("data"), WithName("kv.json"))
	assert.Equal(t, filepath.Join(wd, "data", "kv.json"), s.Path())
}

func TestStoreDisabledPersistence(t *testing.T) {
	tests := []struct {
		name string
		opts []Option
	}{
		{name: "without dir", opts: []Option{WithoutDir()}},
		{name: "without name", opts: []Option{WithoutName()}},
		{name: "without dir and name", opts: []Option{WithoutDir(), WithoutName()}},
		{name: "without dir, custom name", opts: []Option{WithName("other.json"), WithoutDir()}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := newRecordingFS()
			opts := append([]Option{WithFilesystem(fs), WithAutoCommit(true)}, tt.opts...)
			s := New[string](opts...)

			assert.False(t, s.Persistent())
			assert.Equal(t, "", s.Path())
			assert.Equal(t, 0, s.Len())

			require.NoError(t, s.Set("foo", "bar"))
			assert.Equal(t, 1, s.Len())

			val, err := s.Get("foo")
			require.NoError(t, err)
			assert.Equal(t, "bar", val)

			require.NoError(t, s.Unset("nope"))
			require.NoError(t, s.Clear())
			require.NoError(t, s.Commit())

			assert.Equal(t, 0, fs.writes)
			assert.Equal(t, 0, fs.mkdirs)
		})
	}
}

func TestStoreDisabledPersistenceIgnoresExistingFile(t *testing.T) {
	fs := memfs.New()
	writeSnapshot(t, fs, `{"foo":{"expires":false,"value":"bar"}}`)

	s := New[string](WithFilesystem(fs), WithDir(testDir), WithoutName())
	assert.Equal(t, 0, s.Len())
}

func TestStoreLoadOnInit(t *testing.T) {
	t.Run("custom dir", func(t *testing.T) {
		fs := memfs.New()
		writeSnapshot(t, fs, `{"foo":{"expires":false,"value":"bar"}}`)

		s := New[string](WithFilesystem(fs), WithDir(testDir))

		val, err := s.Get("foo")
		require.NoError(t, err)
		assert.Equal(t, "bar", val)
		assert.Equal(t, 1, s.Len())
	})

	t.Run("custom dir and name", func(t *testing.T) {
		fs := memfs.New()
		require.NoError(t, fs.MkdirAll(testDir, 0o755))
		f, err := fs.Create(testDir + "/store.db")
		require.NoError(t, err)
		_, err = f.Write([]byte(`{"foo":{"expires":false,"value":{"bar":"baz"}}}`))
		require.NoError(t, err)
		require.NoError(t, f.Close())

		s := New[map[string]string](WithFilesystem(fs), WithDir(testDir), WithName("store.db"))

		val, err := s.Get("foo")
		require.NoError(t, err)
		assert.Equal(t, map[string]string{"bar": "baz"}, val)
	})

	t.Run("custom dir without file", func(t *testing.T) {
		fs := memfs.New()
		s := New[string](WithFilesystem(fs), WithDir(testDir))

		assert.Equal(t, 0, s.Len())
		_, err := fs.Stat(testDir)
		assert.ErrorIs(t, err, os.ErrNotExist, "loading never creates the directory")
	})
}

func TestStoreLoadFailuresStartEmpty(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "malformed json", content: `{"foo":`},
		{name: "empty file", content: ``},
		{name: "array", content: `[1,2,3]`},
		{name: "bad expiry", content: `{"foo":{"expires":"tomorrow","value":"bar"}}`},
		{name: "wrong value type", content: `{"foo":{"expires":false,"value":42}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := memfs.New()
			writeSnapshot(t, fs, tt.content)
			reg := metrics.NewRegistry()

			s := New[string](WithFilesystem(fs), WithDir(testDir), WithMetrics(reg), WithAutoCommit(false))

			assert.Equal(t, 0, s.Len())
			assert.Equal(t, int64(1), reg.Get(metrics.CacheLoadFailuresTotal))
			assert.Equal(t, tt.content, readSnapshot(t, fs), "a failed load leaves the file alone")

			require.NoError(t, s.Set("foo", "fresh"))
			val, err := s.Get("foo")
			require.NoError(t, err)
			assert.Equal(t, "fresh", val)
		})
	}
}

func TestStoreLoadFailureIsLogged(t *testing.T) {
	fs := memfs.New()
	writeSnapshot(t, fs, `not json`)

	logger := logs.Discard()
	logger.SetLevel(logrus.DebugLevel)
	hook := logs.NewRingHook(10, logrus.DebugLevel)
	logger.AddHook(hook)

	s := New[string](WithFilesystem(fs), WithDir(testDir), WithLogger(logger))
	assert.Equal(t, 0, s.Len())

	entries := hook.GetLast(10)
	require.NotEmpty(t, entries)
	last := entries[len(entries)-1]
	assert.Equal(t, "load", last.Fields["action"])
	assert.Equal(t, snapshotPath(), last.Fields["path"])
	assert.Contains(t, last.Message, "starting empty")
}

func TestStoreExpirationOnInit(t *testing.T) {
	clock := newFakeClock()
	fs := memfs.New()
	content := fmt.Sprintf(
		`{"apple":{"expires":%d,"value":"pie"},"foo":{"expires":%d,"value":"bar"},"strawberry":{"expires":%d,"value":"cake"}}`,
		testStart.Add(2*time.Hour).Unix(), testStart.Add(time.Hour).Unix(), testStart.Add(time.Hour).Unix())
	writeSnapshot(t, fs, content)

	s := newTestStore(t, fs, clock, WithDefaultTTL(ttl.Seconds(3600)))

	assert.Equal(t, []string{"apple", "foo", "strawberry"}, s.Keys())

	clock.Advance(30 * time.Minute)
	assert.Equal(t, 3, s.Len())
	assert.Equal(t, content, readSnapshot(t, fs), "file is untouched without auto-commit")

	clock.Advance(time.Hour)
	for key, want := range map[string]bool{"apple": true, "strawberry": false, "foo": false} {
		live, err := s.Has(key)
		require.NoError(t, err)
		assert.Equal(t, want, live, key)
	}
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, content, readSnapshot(t, fs))

	clock.Advance(2 * time.Hour)
	live, err := s.Has("apple")
	require.NoError(t, err)
	assert.False(t, live)
	assert.Equal(t, 0, s.Len())
	assert.Equal(t, content, readSnapshot(t, fs))

	require.NoError(t, s.Commit())
	assert.JSONEq(t, `{}`, readSnapshot(t, fs))
}

func TestStoreExpirationOnInitAutoCommit(t *testing.T) {
	clock := newFakeClock()
	fs := memfs.New()
	writeSnapshot(t, fs, fmt.Sprintf(
		`{"apple":{"expires":%d,"value":"pie"},"foo":{"expires":%d,"value":"bar"}}`,
		testStart.Add(2*time.Hour).Unix(), testStart.Add(time.Hour).Unix()))

	s := newTestStore(t, fs, clock, WithAutoCommit(true))

	clock.Advance(90 * time.Minute)
	live, err := s.Has("foo")
	require.NoError(t, err)
	assert.False(t, live)
	assert.JSONEq(t, fmt.Sprintf(`{"apple":{"expires":%d,"value":"pie"}}`, testStart.Add(2*time.Hour).Unix()),
		readSnapshot(t, fs))

	clock.Advance(time.Hour)
	live, err = s.Has("apple")
	require.NoError(t, err)
	assert.False(t, live)
	assert.JSONEq(t, `{}`, readSnapshot(t, fs))
}

func TestStorePreloadedExpiredEntry(t *testing.T) {
	clock := newFakeClock()
	fs := memfs.New()
	content := fmt.Sprintf(
		`{"old":{"expires":%d,"value":"gone"},"new":{"expires":%d,"value":"here"}}`,
		testStart.Add(-time.Minute).Unix(), testStart.Add(time.Minute).Unix())
	writeSnapshot(t, fs, content)

	s := newTestStore(t, fs, clock, WithAutoCommit(true))

	assert.Equal(t, 1, s.Len())
	assert.Equal(t, []string{"new"}, s.Keys())
	assert.Equal(t, map[string]string{"new": "here"}, s.All())
	assert.Equal(t, content, readSnapshot(t, fs), "enumeration never commits")
}

func TestStoreRoundTripOnDisk(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "cache")
	clock := newFakeClock()
	opts := []Option{
		WithFilesystem(osfs.New("/")),
		WithDir(dir),
		WithClock(clock.Now),
		WithAutoCommit(false),
	}

	s := New[string](opts...)
	require.NoError(t, s.Set("zeta", "1"))
	require.NoError(t, s.SetTTL("alpha", "2", ttl.Never))
	require.NoError(t, s.SetTTL("short", "3", ttl.Seconds(60)))
	require.NoError(t, s.SetTTL("dead", "4", ttl.Seconds(0)))
	require.NoError(t, s.Commit())

	_, err := os.Stat(filepath.Join(dir, DefaultName))
	require.NoError(t, err, "commit creates missing directories")

	reloaded := New[string](opts...)
	assert.Equal(t, s.All(), reloaded.All())
	assert.Equal(t, []string{"zeta", "alpha", "short"}, reloaded.Keys(), "order survives a round trip")

	clock.Advance(time.Minute)
	later := New[string](opts...)
	assert.Equal(t, map[string]string{"zeta": "1", "alpha": "2"}, later.All())
}

func TestStoreCommitFailures(t *testing.T) {
	boom := stderrors.New("disk full")

	t.Run("write failure propagates from set", func(t *testing.T) {
		fs := newRecordingFS()
		fs.failWrite = boom
		reg := metrics.NewRegistry()
		s := newTestStore(t, fs, newFakeClock(), WithAutoCommit(true), WithMetrics(reg))

		err := s.Set("foo", "bar")
		require.Error(t, err)
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, errors.CodeInternal, errors.GetCode(err))
		assert.Equal(t, int64(1), reg.Get(metrics.CacheCommitFailuresTotal))

		val, err := s.Get("foo")
		require.NoError(t, err, "reading a live key never commits")
		assert.Equal(t, "bar", val)
	})

	t.Run("in-memory state survives a failed commit", func(t *testing.T) {
		fs := newRecordingFS()
		s := newTestStore(t, fs, newFakeClock())

		require.NoError(t, s.Set("foo", "bar"))
		fs.failWrite = boom

		err := s.Commit()
		assert.ErrorIs(t, err, boom)

		val, err := s.Get("foo")
		require.NoError(t, err)
		assert.Equal(t, "bar", val)
	})

	t.Run("directory failure propagates", func(t *testing.T) {
		fs := newRecordingFS()
		fs.failMkdir = boom
		s := newTestStore(t, fs, newFakeClock(), WithAutoCommit(true))

		assert.ErrorIs(t, s.Clear(), boom)
		assert.ErrorIs(t, s.Unset("missing"), boom)
		assert.Equal(t, 0, fs.writes)
	})

	t.Run("lazy expiry commit failure propagates", func(t *testing.T) {
		clock := newFakeClock()
		fs := newRecordingFS()
		s := newTestStore(t, fs, clock, WithAutoCommit(true))

		require.NoError(t, s.SetTTL("k", "v", ttl.Seconds(1)))
		fs.failWrite = boom
		clock.Advance(time.Second)

		live, err := s.Has("k")
		assert.False(t, live)
		assert.ErrorIs(t, err, boom)

		live, err = s.Has("k")
		assert.False(t, live)
		assert.NoError(t, err, "the entry is already gone from memory")
	})
}
