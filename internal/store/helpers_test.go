package store

import (
	"os"
	"testing"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/require"

	"file-cache/internal/ttl"
)

const testDir = "/var/cache/app"

var testStart = time.Date(2019, time.January, 1, 14, 0, 0, 0, time.UTC)

/* ---------------- Fake clock ---------------- */

type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: testStart}
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

/* ---------------- Recording filesystem ---------------- */

// recordingFS counts snapshot writes and directory creation, and can be told
// to fail either of them.
type recordingFS struct {
	billy.Filesystem

	writes    int
	mkdirs    int
	failWrite error
	failMkdir error
}

func newRecordingFS() *recordingFS {
	return &recordingFS{Filesystem: memfs.New()}
}

func (r *recordingFS) OpenFile(name string, flag int, perm os.FileMode) (billy.File, error) {
	if flag&(os.O_WRONLY|os.O_RDWR) != 0 {
		r.writes++
		if r.failWrite != nil {
			return nil, r.failWrite
		}
	}
	return r.Filesystem.OpenFile(name, flag, perm)
}

func (r *recordingFS) MkdirAll(path string, perm os.FileMode) error {
	r.mkdirs++
	if r.failMkdir != nil {
		return r.failMkdir
	}
	return r.Filesystem.MkdirAll(path, perm)
}

/* ---------------- Helpers ---------------- */

// newTestStore returns a string store on fs with auto-commit off and no expiry,
// the baseline most tests start from.
func newTestStore(t *testing.T, fs billy.Filesystem, clock *fakeClock, opts ...Option) *Store[string] {
	t.Helper()
	base := []Option{
		WithFilesystem(fs),
		WithClock(clock.Now),
		WithDir(testDir),
		WithAutoCommit(false),
		WithDefaultTTL(ttl.Never),
	}
	return New[string](append(base, opts...)...)
}

func snapshotPath() string {
	return testDir + "/" + DefaultName
}

func readSnapshot(t *testing.T, fs billy.Filesystem) string {
	t.Helper()
	data, err := util.ReadFile(fs, snapshotPath())
	require.NoError(t, err)
	return string(data)
}

func writeSnapshot(t *testing.T, fs billy.Filesystem, content string) {
	t.Helper()
	require.NoError(t, fs.MkdirAll(testDir, 0o755))
	require.NoError(t, util.WriteFile(fs, snapshotPath(), []byte(content), 0o644))
}

func snapshotExists(fs billy.Filesystem) bool {
	_, err := fs.Stat(snapshotPath())
	return err == nil
}
