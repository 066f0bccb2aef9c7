package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestGetServerConfigFromFile(t *testing.T) {
	path := writeConfig(t, `
idlease:
  server:
    host: "127.0.0.1"
    port: "8080"
    id_min: 100
    id_max: 200
    lease_timeout_ms: 5000
    log_level: "debug"
`)

	cfg, err := GetServerConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1", cfg.Host)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 100, cfg.IDMin)
	assert.Equal(t, 200, cfg.IDMax)
	assert.Equal(t, int64(5000), cfg.LeaseTimeoutMs)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestGetServerConfigFromEnv(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("ID_MAX", "500")
	t.Setenv("TIMEOUT", "1500")

	cfg, err := GetServerConfig("")
	require.NoError(t, err)
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, 1, cfg.IDMin)
	assert.Equal(t, 500, cfg.IDMax)
	assert.Equal(t, int64(1500), cfg.LeaseTimeoutMs)
}

func TestGetServerConfigDefaults(t *testing.T) {
	cfg, err := GetServerConfig("")
	require.NoError(t, err)
	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, 1, cfg.IDMin)
	assert.Equal(t, 65535, cfg.IDMax)
	assert.Equal(t, int64(3000), cfg.LeaseTimeoutMs)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestGetServerConfigMissingSection(t *testing.T) {
	path := writeConfig(t, `
idlease:
  client:
    server_host: "10.0.0.1"
`)

	_, err := GetServerConfig(path)
	require.Error(t, err)
}

func TestGetClientConfig(t *testing.T) {
	path := writeConfig(t, `
idlease:
  client:
    server_host: "10.0.0.1"
    server_port: "8080"
`)

	cfg, err := GetClientConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.1", cfg.ServerHost)
	assert.Equal(t, "8080", cfg.ServerPort)
}
