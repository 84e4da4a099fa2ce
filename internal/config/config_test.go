package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("BLOGLY_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadYAMLOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte("server:\n  port: 9001\nlogging:\n  level: debug\n")
	require.NoError(t, os.WriteFile(path, data, 0o600))
	t.Setenv("BLOGLY_CONFIG", path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9001, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
	// Untouched sections keep their defaults.
	assert.Equal(t, "postgres", cfg.Database.Driver)
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 9001\n"), 0o600))
	t.Setenv("BLOGLY_CONFIG", path)
	t.Setenv("BLOGLY_PORT", "9002")
	t.Setenv("DATABASE_URL", "postgres://db.example/blogly")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9002, cfg.Server.Port)
	assert.Equal(t, "postgres://db.example/blogly", cfg.Database.DSN)
}

func TestLoadRejectsInvalidPort(t *testing.T) {
	t.Setenv("BLOGLY_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("BLOGLY_PORT", "-1")

	_, err := Load()
	assert.Error(t, err)
}
