package pidfile_test

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riceops/production-planning/internal/infrastructure/pidfile"
)

func TestAcquireAndRelease(t *testing.T) {
	// Arrange
	path := filepath.Join(t.TempDir(), "worker.pid")
	pf := pidfile.New(path)

	// Act
	require.NoError(t, pf.Acquire())

	// Assert
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, strconv.Itoa(os.Getpid())+"\n", string(data))

	require.NoError(t, pf.Release())
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestAcquire_LiveHolderWins(t *testing.T) {
	// Arrange: pid 1 is always alive
	path := filepath.Join(t.TempDir(), "worker.pid")
	require.NoError(t, os.WriteFile(path, []byte("1\n"), 0o644))

	// Act
	err := pidfile.New(path).Acquire()

	// Assert
	require.ErrorIs(t, err, pidfile.ErrAlreadyRunning)
}

func TestAcquire_TakesOverGarbage(t *testing.T) {
	// Arrange
	path := filepath.Join(t.TempDir(), "worker.pid")
	require.NoError(t, os.WriteFile(path, []byte("not a pid"), 0o644))

	// Act
	err := pidfile.New(path).Acquire()

	// Assert
	require.NoError(t, err)
}

func TestRelease_LeavesForeignFile(t *testing.T) {
	// Arrange
	path := filepath.Join(t.TempDir(), "worker.pid")
	require.NoError(t, os.WriteFile(path, []byte("1\n"), 0o644))

	// Act
	err := pidfile.New(path).Release()

	// Assert
	require.NoError(t, err)
	_, statErr := os.Stat(path)
	assert.NoError(t, statErr)
}
