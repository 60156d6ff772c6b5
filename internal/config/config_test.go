package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromEnvDefaults(t *testing.T) {
	for _, k := range []string{"WORKTIME_DB_PATH", "LISTEN_ADDR", "LOG_LEVEL", "ENV", "BATCH_SIZE", "CORS_ALLOWED_ORIGINS", "WORKTIME_TZ"} {
		t.Setenv(k, "")
	}

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "worktime.sqlite", cfg.DBPath)
	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 1000, cfg.DefaultBatchSize)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	assert.False(t, cfg.IsProduction())
}

func TestLoadFromEnvOverrides(t *testing.T) {
	t.Setenv("WORKTIME_DB_PATH", "/tmp/wt.sqlite")
	t.Setenv("BATCH_SIZE", "250")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "/tmp/wt.sqlite", cfg.DBPath)
	assert.Equal(t, 250, cfg.DefaultBatchSize)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
}

func TestLoadFromEnvBadBatchSizeWarns(t *testing.T) {
	t.Setenv("BATCH_SIZE", "lots")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, 1000, cfg.DefaultBatchSize)
	assert.NotEmpty(t, cfg.Warnings)
}

func TestProductionRejectsCORSWildcard(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("CORS_ALLOWED_ORIGINS", "")

	_, err := LoadFromEnv()
	require.Error(t, err)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte(
		"# comment\nWORKTIME_TEST_KEY=\"quoted value\"\n\nBROKEN LINE\n"), 0o600))
	t.Setenv("WORKTIME_TEST_KEY", "")

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "quoted value", os.Getenv("WORKTIME_TEST_KEY"))

	// Missing file is not an error.
	require.NoError(t, LoadDotEnv(filepath.Join(dir, "missing.env")))
}

func TestSlogLevel(t *testing.T) {
	cfg := &Config{LogLevel: "warn"}
	assert.Equal(t, "WARN", cfg.SlogLevel().String())
	cfg.LogLevel = "nonsense"
	assert.Equal(t, "INFO", cfg.SlogLevel().String())
}
