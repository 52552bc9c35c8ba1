package engine

import (
	"testing"

	"github.com/flowmesh/flowmesh/cache"
	"github.com/stretchr/testify/require"
)

func newFileStoreForTest(t *testing.T, dir string) *cache.FileStore {
	t.Helper()
	store, err := cache.NewFileStore(dir)
	require.NoError(t, err)
	return store
}
