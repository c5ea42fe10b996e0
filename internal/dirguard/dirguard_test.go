package dirguard

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquireCreatesAndLocks(t *testing.T) {
	root := filepath.Join(t.TempDir(), "a", "b", "store")

	guard, err := Acquire(root, 104)
	require.NoError(t, err)
	require.DirExists(t, root)
	assert.Equal(t, root, guard.Root())

	_, err = Acquire(root, 104)
	require.ErrorIs(t, err, ErrLocked)

	require.NoError(t, guard.Release())
	assert.NoDirExists(t, root)
}

func TestAcquireClearsDirectory(t *testing.T) {
	root := filepath.Join(t.TempDir(), "store")
	require.NoError(t, os.MkdirAll(root, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "leftover"), []byte("x"), 0644))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "leftover-dir"), 0755))

	guard, err := Acquire(root, 104)
	require.NoError(t, err)
	defer guard.Release()

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, LockFileName, entries[0].Name())
}

func TestProbeFileDoesNotSurvive(t *testing.T) {
	root := filepath.Join(t.TempDir(), "store")

	guard, err := Acquire(root, 104)
	require.NoError(t, err)
	defer guard.Release()

	probe := filepath.Join(root, strings.Repeat("0", 104))
	assert.NoFileExists(t, probe)
}

func TestReacquireAfterRelease(t *testing.T) {
	root := filepath.Join(t.TempDir(), "store")

	guard, err := Acquire(root, 104)
	require.NoError(t, err)
	require.NoError(t, guard.Release())

	guard, err = Acquire(root, 104)
	require.NoError(t, err)
	require.NoError(t, guard.Release())
}
