package daemon

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPIDFileLifecycle(t *testing.T) {
	d := New(filepath.Join(t.TempDir(), "activitymon.pid"))

	pid, err := d.ReadPID()
	require.NoError(t, err)
	assert.Zero(t, pid, "missing file reads as no daemon")

	require.NoError(t, d.WritePID())
	pid, err = d.ReadPID()
	require.NoError(t, err)
	assert.Equal(t, os.Getpid(), pid)

	running, pid, err := d.IsRunning()
	require.NoError(t, err)
	assert.True(t, running)
	assert.Equal(t, os.Getpid(), pid)

	require.NoError(t, d.RemovePID())
	require.NoError(t, d.RemovePID(), "removing twice is fine")
}

func TestInvalidPID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "activitymon.pid")
	require.NoError(t, os.WriteFile(path, []byte("garbage"), 0o644))

	_, err := New(path).ReadPID()
	assert.ErrorContains(t, err, "invalid PID in file")
}

func TestStalePIDFileIsRemoved(t *testing.T) {
	path := filepath.Join(t.TempDir(), "activitymon.pid")
	// PIDs are capped well below this on every supported platform.
	require.NoError(t, os.WriteFile(path, []byte("2147483600\n"), 0o644))

	d := New(path)
	running, _, err := d.IsRunning()
	require.NoError(t, err)
	assert.False(t, running)
	assert.NoFileExists(t, path)
}

func TestReusedPIDIsNotOurs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "activitymon.pid")
	// The parent is the test runner: alive, but a different executable.
	require.NoError(t, os.WriteFile(path, fmt.Appendf(nil, "%d", os.Getppid()), 0o644))

	d := New(path)
	require.NotEmpty(t, d.name)
	running, _, err := d.IsRunning()
	require.NoError(t, err)
	assert.False(t, running)
	assert.NoFileExists(t, path)
	assert.ErrorIs(t, d.Stop(), ErrNotRunning)
}

func TestPIDFileAccessor(t *testing.T) {
	path := filepath.Join(t.TempDir(), "activitymon.pid")
	assert.Equal(t, path, New(path).PIDFile())
}

func TestStopWithoutDaemon(t *testing.T) {
	d := New(filepath.Join(t.TempDir(), "activitymon.pid"))
	assert.ErrorIs(t, d.Stop(), ErrNotRunning)
}
