package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "cache.json")
	store := NewFileStore(path)

	exists, err := store.Exists(ctx)
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = store.Read(ctx)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Write(ctx, []byte(nbuSample)))

	exists, err = store.Exists(ctx)
	require.NoError(t, err)
	assert.True(t, exists)

	data, err := store.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, []byte(nbuSample), data)
}

func TestFileStore_WriteReplacesWholeFile(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "cache.json")
	store := NewFileStore(path)

	require.NoError(t, store.Write(ctx, []byte(nbuSample)))
	require.NoError(t, store.Write(ctx, []byte(`[]`)))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data), "shorter payload must not leave a tail of the old one")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files are renamed away")

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())
}

func TestFileStore_CreatesParentDir(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "dir", "cache.json")
	store := NewFileStore(path)

	require.NoError(t, store.Write(ctx, []byte(nbuSample)))
	assert.FileExists(t, path)
}

func TestFileStore_DirectoryIsNotASnapshot(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore(dir)

	_, err := store.Exists(context.Background())
	assert.Error(t, err)
}

func TestFileStore_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	store := NewFileStore(filepath.Join(t.TempDir(), "cache.json"))

	assert.ErrorIs(t, store.Write(ctx, []byte(nbuSample)), context.Canceled)
	_, err := store.Read(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewFileStore_DefaultPath(t *testing.T) {
	assert.Equal(t, DefaultCachePath, NewFileStore("").Path())
}
