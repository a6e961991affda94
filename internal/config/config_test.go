package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ganot/feedline/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)
	require.Equal(t, "0.0.0.0", cfg.Server.Host)
	require.Equal(t, 8080, cfg.Server.Port)
	require.Equal(t, "feedline.db", cfg.DB.Path)
	require.Equal(t, "info", cfg.Log.Level)
	require.Equal(t, "stdio", cfg.Transport.Mode)
	require.Empty(t, cfg.Enrichment.BaseURL)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("FEEDLINE_SERVER_HOST", "127.0.0.1")
	t.Setenv("FEEDLINE_SERVER_PORT", "9090")
	t.Setenv("FEEDLINE_DB_PATH", ":memory:")
	t.Setenv("FEEDLINE_LOG_LEVEL", "debug")
	t.Setenv("FEEDLINE_TRANSPORT", "http")
	t.Setenv("FEEDLINE_ENRICHMENT_URL", "http://localhost:3000")

	cfg, err := config.Load()
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1", cfg.Server.Host)
	require.Equal(t, 9090, cfg.Server.Port)
	require.Equal(t, ":memory:", cfg.DB.Path)
	require.Equal(t, "debug", cfg.Log.Level)
	require.Equal(t, "http", cfg.Transport.Mode)
	require.Equal(t, "http://localhost:3000", cfg.Enrichment.BaseURL)
}

func TestLoad_InvalidPort(t *testing.T) {
	t.Setenv("FEEDLINE_SERVER_PORT", "not-a-port")
	_, err := config.Load()
	require.Error(t, err)
}

func TestLoad_YAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  host: 10.0.0.1
  port: 7070
db:
  path: /tmp/feedline-test.db
transport:
  mode: http
enrichment:
  base_url: http://localhost:4100
`), 0o644))
	t.Setenv("FEEDLINE_CONFIG_PATH", path)

	cfg, err := config.Load()
	require.NoError(t, err)
	require.Equal(t, "10.0.0.1", cfg.Server.Host)
	require.Equal(t, 7070, cfg.Server.Port)
	require.Equal(t, "/tmp/feedline-test.db", cfg.DB.Path)
	require.Equal(t, "http", cfg.Transport.Mode)
	require.Equal(t, "http://localhost:4100", cfg.Enrichment.BaseURL)
}

func TestLoad_EnvWinsOverFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: warn\n"), 0o644))
	t.Setenv("FEEDLINE_CONFIG_PATH", path)
	t.Setenv("FEEDLINE_LOG_LEVEL", "error")

	cfg, err := config.Load()
	require.NoError(t, err)
	require.Equal(t, "error", cfg.Log.Level)
}
