package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_DefaultsAndEnvOverride(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("SERVER_UPLOAD_DIR", "/tmp/avatars")
	t.Setenv("DB_MAX_OPEN_CONNS", "7")
	t.Setenv("SERVER_MAX_UPLOAD_SIZE", "2048")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "/tmp/avatars", cfg.Server.UploadDir)
	assert.Equal(t, "/img/member/member-default.png", cfg.Server.DefaultImagePath)
	assert.Equal(t, int64(2048), cfg.Server.MaxUploadSize)
	assert.Equal(t, 7, cfg.Database.MaxOpenConns)
	assert.Equal(t, "test-secret", cfg.JWT.Secret)
	assert.Empty(t, cfg.Redis.Addr)
}

func TestLoadConfig_YAMLFile(t *testing.T) {
	t.Setenv("JWT_SECRET", "from-env")

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte(`
server:
  port: "9090"
  image_url_prefix: /avatars
redis:
  addr: localhost:6379
jwt:
  secret: from-file
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "/avatars", cfg.Server.ImageURLPrefix)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	// environment wins over the file
	assert.Equal(t, "from-env", cfg.JWT.Secret)
}

func TestLoadConfig_RequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT secret is required")
}

func TestLoadConfig_InvalidEnvInteger(t *testing.T) {
	t.Setenv("JWT_SECRET", "x")
	t.Setenv("DB_MAX_IDLE_CONNS", "many")

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_MAX_IDLE_CONNS")
}
