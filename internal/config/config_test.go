package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, 24*time.Hour, cfg.JWTExpiry)
	assert.Equal(t, int64(10*1024*1024), cfg.MaxUploadBytes())
	assert.Nil(t, cfg.AllowedOrigins)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("ACCESS_CACHE_TTL", "5s")
	t.Setenv("ALLOWED_ORIGINS", " https://school.example , ,https://admin.school.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.ServerPort)
	assert.Equal(t, 5*time.Second, cfg.AccessCacheTTL)
	assert.Equal(t, []string{"https://school.example", "https://admin.school.example"}, cfg.AllowedOrigins)
}

func TestLoadRejectsDefaultSecretInRelease(t *testing.T) {
	t.Setenv("GIN_MODE", "release")

	_, err := Load()
	require.Error(t, err)
}
