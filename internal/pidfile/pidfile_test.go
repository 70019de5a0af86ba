package pidfile

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquireAndRelease(t *testing.T) {
	path := filepath.Join(t.TempDir(), "workhubd.pid")

	p, err := Acquire(path)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, strconv.Itoa(os.Getpid()), string(data))

	require.NoError(t, p.Release())
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestAcquireRejectsLiveProcess(t *testing.T) {
	path := filepath.Join(t.TempDir(), "workhubd.pid")

	// Our own PID is certainly alive.
	require.NoError(t, os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())), 0644))

	_, err := Acquire(path)
	assert.Error(t, err)
}

func TestAcquireReplacesStaleFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "workhubd.pid")

	require.NoError(t, os.WriteFile(path, []byte("not-a-pid"), 0644))

	p, err := Acquire(path)
	require.NoError(t, err)
	require.NoError(t, p.Release())
}

func TestReleaseIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "workhubd.pid")

	p, err := Acquire(path)
	require.NoError(t, err)
	require.NoError(t, p.Release())
	require.NoError(t, p.Release())
}
