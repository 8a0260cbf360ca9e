package bootstrap

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blockpeer/syncengine/pkg/bep"
	"github.com/blockpeer/syncengine/pkg/config"
	"github.com/blockpeer/syncengine/pkg/indexstore"
)

func testConfig() *config.Config {
	cfg := config.GetDefaultConfig()
	cfg.Device.ID = "deadbeef"
	return cfg
}

func TestStart_InMemoryIndexStore(t *testing.T) {
	idx, shutdown, err := Start(context.Background(), testConfig())
	require.NoError(t, err)
	require.NotNil(t, shutdown)

	_, ok := idx.(*indexstore.MemStore)
	assert.True(t, ok, "expected an in-memory index store when Index.Dir is unset")

	assert.NoError(t, shutdown(context.Background()))
}

func TestStart_DurableIndexStore(t *testing.T) {
	cfg := testConfig()
	cfg.Index.Dir = filepath.Join(t.TempDir(), "index")

	idx, shutdown, err := Start(context.Background(), cfg)
	require.NoError(t, err)
	require.NotNil(t, shutdown)

	_, ok := idx.(*indexstore.BadgerStore)
	assert.True(t, ok, "expected a Badger-backed index store when Index.Dir is set")

	require.NoError(t, idx.PushRecord("default", bep.FileInfo{Name: "a.txt", Type: bep.FileTypeFile, Size: 4}))

	assert.NoError(t, shutdown(context.Background()))
}
