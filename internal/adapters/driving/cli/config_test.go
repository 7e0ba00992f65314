package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigCmd_HasSubcommands(t *testing.T) {
	commands := configCmd.Commands()
	names := make([]string, 0, len(commands))
	for _, cmd := range commands {
		names = append(names, cmd.Name())
	}

	assert.Contains(t, names, "get")
	assert.Contains(t, names, "set")
	assert.Contains(t, names, "path")
}

func TestConfigSetCmd_StoresValue(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "config", "set", "compile.theme", "academic")
	require.NoError(t, err)
	assert.Contains(t, out, "compile.theme = academic")

	out, err = execute(t, "config", "get", "compile.theme")
	require.NoError(t, err)
	assert.Contains(t, out, "academic")
}

func TestConfigSetCmd_CoercesIntegers(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	_, err := execute(t, "config", "set", "preview.port", "9001")
	require.NoError(t, err)

	assert.Equal(t, 9001, configStore.GetInt("preview.port"))
}

func TestConfigSetCmd_CoercesBooleans(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	_, err := execute(t, "config", "set", "preview.autoreload", "true")
	require.NoError(t, err)

	assert.True(t, configStore.GetBool("preview.autoreload"))
}

func TestConfigGetCmd_UnknownKey(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	_, err := execute(t, "config", "get", "no.such.key")
	assert.Error(t, err)
}

func TestConfigPathCmd_PrintsPath(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "config", "path")
	require.NoError(t, err)
	assert.Contains(t, out, ":memory:")
}

func TestConfigCmd_NotConfigured(t *testing.T) {
	_, err := execute(t, "config", "get", "compile.theme")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}
