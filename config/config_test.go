package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0o644))
	t.Setenv("FORUM_CONFIG_PATH", dir)
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	writeConfig(t, `
server:
  port: 9090
database:
  driver: sqlite
  dsn: test.db
redis:
  ttl: 1m
`)
	t.Setenv("FORUM_DATABASE_DSN", "override.db")
	t.Setenv("FORUM_JWT_TTL", "2h")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "override.db", cfg.Database.DSN)
	assert.Equal(t, time.Minute, cfg.Redis.TTL)
	assert.Equal(t, 2*time.Hour, cfg.JWT.TTL)

	// 默认值
	assert.Equal(t, 20, cfg.Pagination.DefaultLimit)
	assert.Equal(t, "local", cfg.Storage.Driver)
	assert.Equal(t, 12, cfg.Bcrypt.Cost)
	assert.Equal(t, 5, cfg.RateLimit.Auth.Burst)
	assert.False(t, cfg.IsProduction())
}

func TestLoadRejectsInvalid(t *testing.T) {
	writeConfig(t, "database:\n  driver: oracle\n")
	_, err := Load()
	assert.ErrorContains(t, err, "unsupported database driver")

	writeConfig(t, "storage:\n  driver: ftp\n")
	_, err = Load()
	assert.ErrorContains(t, err, "unsupported storage driver")

	writeConfig(t, "env: production\n")
	_, err = Load()
	assert.ErrorContains(t, err, "jwt secret")

	writeConfig(t, "env: production\njwt:\n  secret: s3cr3t\n")
	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
}
