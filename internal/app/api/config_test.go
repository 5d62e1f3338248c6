package api

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/client"
)

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, env := range configKeys {
		t.Setenv(env, "")
		require.NoError(t, os.Unsetenv(env))
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearConfigEnv(t)

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Empty(t, cfg.PostgresDSN)
	assert.Equal(t, client.DefaultHostPort, cfg.TemporalAddress)
	assert.Equal(t, client.DefaultNamespace, cfg.TemporalNamespace)
	assert.False(t, cfg.TemporalDisabled)
	assert.Equal(t, 10, cfg.PageSize)
	assert.Equal(t, 100, cfg.MaxPageSize)
	assert.True(t, cfg.MetricsEnabled)
}

func TestLoadConfig_FileThenEnvironment(t *testing.T) {
	clearConfigEnv(t)
	path := filepath.Join(t.TempDir(), "pets.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: \"9090\"\npage_size: 20\ntemporal_disabled: true\n"), 0o600))
	t.Setenv("PAGE_SIZE", "25")
	t.Setenv("POSTGRES_DSN", "  postgres://pets@localhost/pets  ")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 25, cfg.PageSize)
	assert.True(t, cfg.TemporalDisabled)
	assert.Equal(t, "postgres://pets@localhost/pets", cfg.PostgresDSN)
}

func TestLoadConfig_RejectsInvalidSizes(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("PAGE_SIZE", "0")
	_, err := LoadConfig("")
	require.ErrorContains(t, err, "PAGE_SIZE must be a positive integer")

	t.Setenv("PAGE_SIZE", "50")
	t.Setenv("MAX_PAGE_SIZE", "20")
	_, err = LoadConfig("")
	require.ErrorContains(t, err, "must not exceed")
}

func TestLoadConfig_MissingFile(t *testing.T) {
	clearConfigEnv(t)
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}
