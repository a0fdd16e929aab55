package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "0.0.0.0", cfg.Server.Host)
	require.Equal(t, 8080, cfg.Server.Port)
	require.Equal(t, "rackforge.db", cfg.DB.Path)
	require.Equal(t, "info", cfg.Log.Level)
	require.Equal(t, "http", cfg.Transport.Mode)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("RACKFORGE_SERVER_HOST", "127.0.0.1")
	t.Setenv("RACKFORGE_SERVER_PORT", "9000")
	t.Setenv("RACKFORGE_DB_PATH", "/tmp/rf.db")
	t.Setenv("RACKFORGE_LOG_LEVEL", "debug")
	t.Setenv("RACKFORGE_TRANSPORT_MODE", "stdio")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1", cfg.Server.Host)
	require.Equal(t, 9000, cfg.Server.Port)
	require.Equal(t, "/tmp/rf.db", cfg.DB.Path)
	require.Equal(t, "debug", cfg.Log.Level)
	require.Equal(t, "stdio", cfg.Transport.Mode)
}

func TestLoadYAMLFileWithEnvPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte("server:\n  port: 4000\nlog:\n  level: warn\n")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	t.Setenv("RACKFORGE_CONFIG_PATH", path)
	t.Setenv("RACKFORGE_LOG_LEVEL", "error")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 4000, cfg.Server.Port)
	require.Equal(t, "error", cfg.Log.Level)
}

func TestLoadRejectsBadPort(t *testing.T) {
	t.Setenv("RACKFORGE_SERVER_PORT", "not-a-port")
	_, err := Load()
	require.Error(t, err)
}

func TestLoadRejectsBadTransportMode(t *testing.T) {
	t.Setenv("RACKFORGE_TRANSPORT_MODE", "carrier-pigeon")
	_, err := Load()
	require.Error(t, err)
}
