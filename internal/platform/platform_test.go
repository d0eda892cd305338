package platform

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreallocateKeepsLength(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dst")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	Preallocate(f, 1<<20)

	info, err := f.Stat()
	require.NoError(t, err)
	assert.Equal(t, int64(0), info.Size(), "preallocation must not change the visible size")

	_, err = f.Write([]byte("data"))
	require.NoError(t, err)
	info, err = f.Stat()
	require.NoError(t, err)
	assert.Equal(t, int64(4), info.Size())
}

func TestPreallocateZeroSize(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "empty"))
	require.NoError(t, err)
	defer f.Close()

	assert.NotPanics(t, func() { Preallocate(f, 0) })
}

func TestAdviseSequential(t *testing.T) {
	path := filepath.Join(t.TempDir(), "src")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o644))
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	assert.NotPanics(t, func() { AdviseSequential(f) })

	buf := make([]byte, 5)
	n, err := f.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(buf[:n]))
}
