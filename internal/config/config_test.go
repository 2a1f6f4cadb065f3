package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.ServerAddr)
	assert.Equal(t, "development", cfg.Env)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, "log", cfg.NotifierType)
	assert.Equal(t, "kavach:alerts", cfg.AlertQueueKey)
	assert.Equal(t, 120, cfg.RateLimitPerMin)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SERVER_ADDR", "127.0.0.1:9000")
	t.Setenv("APP_ENV", "production")
	t.Setenv("RATE_LIMIT_PER_MIN", "30")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", cfg.ServerAddr)
	assert.False(t, cfg.IsDevelopment())
	assert.Equal(t, 30, cfg.RateLimitPerMin)
}

func TestLoad_RedisNotifierRequiresURL(t *testing.T) {
	t.Setenv("NOTIFIER_TYPE", "redis")
	t.Setenv("REDIS_URL", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_RedisNotifierWithURL(t *testing.T) {
	t.Setenv("NOTIFIER_TYPE", "redis")
	t.Setenv("REDIS_URL", "redis://localhost:6379")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "redis", cfg.NotifierType)
}

func TestLoad_InvalidIntFallsBack(t *testing.T) {
	t.Setenv("RATE_LIMIT_PER_MIN", "lots")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 120, cfg.RateLimitPerMin)
}
