package cache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFileStoreCreatesDirectoryAndRoundTrips(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "nested", "cache")
	fs, err := NewFileStore(dir)
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	require.True(t, info.IsDir())

	entry := NewCachedResult([]int{1, 2, 3}, "success", false)
	require.NoError(t, fs.Write("load", entry))

	exists, err := fs.Exists("load")
	require.NoError(t, err)
	require.True(t, exists)

	got, err := fs.Read("load")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, entry.Status, got.Status)
}

func TestFileStoreKeyIsHashedFilename(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	fs, err := NewFileStore(dir)
	require.NoError(t, err)

	require.NoError(t, fs.Write("transform", NewCachedResult(1, "success", false)))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.True(t, len(entries[0].Name()) > len(".cache"))
	require.Regexp(t, `^[0-9a-f]{64}\.cache$`, entries[0].Name())
}

func TestFileStoreReadOnMissingKeyIsNilNotError(t *testing.T) {
	t.Parallel()

	fs, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	got, err := fs.Read("never-written")
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestFileStoreReadOnCorruptedEntryDegradesToMiss(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	fs, err := NewFileStore(dir)
	require.NoError(t, err)

	require.NoError(t, fs.Write("key", NewCachedResult(1, "success", false)))

	// Corrupt the file on disk directly.
	keys, err := fs.Keys()
	require.NoError(t, err)
	require.Len(t, keys, 1)
	corruptPath := filepath.Join(dir, keys[0]+cacheFileSuffix)
	require.NoError(t, os.WriteFile(corruptPath, []byte("{not json"), 0o644))

	got, err := fs.Read("key")
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestFileStoreDeleteIsNoOpOnMissingKey(t *testing.T) {
	t.Parallel()

	fs, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, fs.Delete("absent"))
}

func TestFileStoreClearOnlyRemovesCacheSuffixedFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	fs, err := NewFileStore(dir)
	require.NoError(t, err)

	require.NoError(t, fs.Write("a", NewCachedResult(1, "success", false)))
	require.NoError(t, fs.Write("b", NewCachedResult(2, "success", false)))

	sentinel := filepath.Join(dir, "README.md")
	require.NoError(t, os.WriteFile(sentinel, []byte("keep me"), 0o644))

	require.NoError(t, fs.Clear())

	keys, err := fs.Keys()
	require.NoError(t, err)
	require.Empty(t, keys)

	_, err = os.Stat(sentinel)
	require.NoError(t, err)
}
