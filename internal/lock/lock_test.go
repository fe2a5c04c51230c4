package lock

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hostbench/hostbench/internal/errors"
)

func testOptions(dir string) Options {
	return Options{
		Dir:     dir,
		Timeout: 100 * time.Millisecond,
		Stale:   time.Hour,
	}
}

func TestAcquireAndRelease(t *testing.T) {
	dir := t.TempDir()

	l, err := Acquire(testOptions(dir))
	require.NoError(t, err)
	require.NotNil(t, l)

	assert.DirExists(t, l.Dir)
	assert.FileExists(t, filepath.Join(l.Dir, "info.json"))
	assert.NotEmpty(t, l.Info.RunID)

	require.NoError(t, l.Release())
	assert.NoDirExists(t, l.Dir)
}

func TestAcquireBusyTimesOut(t *testing.T) {
	dir := t.TempDir()

	first, err := Acquire(testOptions(dir))
	require.NoError(t, err)
	defer first.Release()

	_, err = Acquire(testOptions(dir))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrLock))
	// The error names the holder.
	assert.Contains(t, err.Error(), "pid")
}

func TestAcquireAfterRelease(t *testing.T) {
	dir := t.TempDir()

	first, err := Acquire(testOptions(dir))
	require.NoError(t, err)
	require.NoError(t, first.Release())

	second, err := Acquire(testOptions(dir))
	require.NoError(t, err)
	defer second.Release()

	assert.NotEqual(t, first.Info.RunID, second.Info.RunID)
}

func TestStaleLockTakenOver(t *testing.T) {
	dir := t.TempDir()
	lockDir := filepath.Join(dir, "hostbench-run.lock")

	// Plant a lock whose holder started long ago.
	require.NoError(t, os.Mkdir(lockDir, 0o755))
	old := NewInfo()
	old.Started = time.Now().Add(-2 * time.Hour)
	data, err := old.Marshal()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(lockDir, "info.json"), data, 0o644))

	l, err := Acquire(testOptions(dir))
	require.NoError(t, err)
	defer l.Release()

	assert.NotEqual(t, old.RunID, l.Info.RunID)
}

func TestFreshLockNotTakenOver(t *testing.T) {
	dir := t.TempDir()

	first, err := Acquire(testOptions(dir))
	require.NoError(t, err)
	defer first.Release()

	opts := testOptions(dir)
	opts.Stale = time.Hour
	_, err = Acquire(opts)
	require.Error(t, err)
}

func TestZeroStaleDisablesTakeover(t *testing.T) {
	dir := t.TempDir()
	lockDir := filepath.Join(dir, "hostbench-run.lock")

	require.NoError(t, os.Mkdir(lockDir, 0o755))
	old := NewInfo()
	old.Started = time.Now().Add(-48 * time.Hour)
	data, err := old.Marshal()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(lockDir, "info.json"), data, 0o644))

	opts := testOptions(dir)
	opts.Stale = 0
	_, err = Acquire(opts)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrLock))
}

func TestParseInfoRoundTrip(t *testing.T) {
	info := NewInfo()
	data, err := info.Marshal()
	require.NoError(t, err)

	parsed, err := ParseInfo(data)
	require.NoError(t, err)
	assert.Equal(t, info.RunID, parsed.RunID)
	assert.Equal(t, info.PID, parsed.PID)
}

func TestReleaseNil(t *testing.T) {
	var l *Lock
	assert.NoError(t, l.Release())
}
