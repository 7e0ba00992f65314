package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/remup-cli/internal/core/ports/driven"
)

func TestNewConfigStore_Success(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewConfigStore(tmpDir)

	require.NoError(t, err)
	require.NotNil(t, store)
	assert.Equal(t, filepath.Join(tmpDir, "config.toml"), store.Path())
}

func TestConfigStore_SetAndGet(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	err = store.Set(driven.KeyTheme, "dark")
	require.NoError(t, err)

	val, ok := store.Get(driven.KeyTheme)
	assert.True(t, ok)
	assert.Equal(t, "dark", val)
	assert.Equal(t, "dark", store.GetString(driven.KeyTheme))
}

func TestConfigStore_GetInt(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set(driven.KeyPreviewPort, 8123))
	assert.Equal(t, 8123, store.GetInt(driven.KeyPreviewPort))

	// Missing or mistyped keys return zero values
	assert.Equal(t, 0, store.GetInt("missing"))
	require.NoError(t, store.Set("not_an_int", "text"))
	assert.Equal(t, 0, store.GetInt("not_an_int"))
}

func TestConfigStore_GetBool(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("flag", true))
	assert.True(t, store.GetBool("flag"))
	assert.False(t, store.GetBool("missing"))
}

func TestConfigStore_PersistsAcrossLoads(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)
	require.NoError(t, store.Set(driven.KeyOutputDir, "build"))
	require.NoError(t, store.Set(driven.KeyReloadPort, 8001))

	reloaded, err := NewConfigStore(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, "build", reloaded.GetString(driven.KeyOutputDir))
	assert.Equal(t, 8001, reloaded.GetInt(driven.KeyReloadPort))
}

func TestConfigStore_NestedKeysFlatten(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[preview]\nport = 9000\n"), 0600))

	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, 9000, store.GetInt("preview.port"))
}

func TestConfigStore_LoadMissingFile(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Load())
	_, ok := store.Get("anything")
	assert.False(t, ok)
}
