package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.HTTP.Addr)
	require.Equal(t, float64(20), cfg.HTTP.RateLimit)
	require.Equal(t, 40, cfg.HTTP.RateBurst)
	require.Equal(t, "HH:MM:SS", cfg.Import.TimeFormat)
	require.NotEmpty(t, cfg.Postgres.DSN)
}

func TestLoadConfig_FileAndEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
postgres:
  dsn: postgres://file/db
http:
  addr: ":9000"
  rate_limit: 5
  rate_burst: 10
import:
  strict: true
observability:
  log_level: debug
`), 0o644))

	t.Setenv("DATABASE_URL", "postgres://env/db")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, "postgres://env/db", cfg.Postgres.DSN)
	require.Equal(t, ":9000", cfg.HTTP.Addr)
	require.Equal(t, float64(5), cfg.HTTP.RateLimit)
	require.Equal(t, 10, cfg.HTTP.RateBurst)
	require.True(t, cfg.Import.Strict)
	require.Equal(t, "debug", cfg.Observability.LogLevel)
}

func TestLoadConfig_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("::not yaml"), 0o644))

	_, err := LoadConfig(path)
	require.Error(t, err)
}
