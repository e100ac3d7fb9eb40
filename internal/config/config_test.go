package config_test

import (
	"testing"
	"time"

	"github.com/aretw0/shablon/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := config.LoadFrom(map[string]string{})
	require.NoError(t, err)
	assert.Equal(t, config.Config{
		DBPath:    "shablon.db",
		LogLevel:  "info",
		LogFormat: "text",
		HTTPAddr:  ":8080",
		LockTTL:   30 * time.Second,
		OwnerID:   1,
	}, cfg)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("SHABLON_DB", "/tmp/x.db")
	t.Setenv("SHABLON_LOG_LEVEL", "debug")
	t.Setenv("SHABLON_LOG_FORMAT", "json")
	t.Setenv("SHABLON_HTTP_ADDR", ":9000")
	t.Setenv("SHABLON_REDIS_ADDR", "localhost:6379")
	t.Setenv("SHABLON_LOCK_TTL", "5s")
	t.Setenv("SHABLON_OWNER_ID", "42")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, config.Config{
		DBPath:    "/tmp/x.db",
		LogLevel:  "debug",
		LogFormat: "json",
		HTTPAddr:  ":9000",
		RedisAddr: "localhost:6379",
		LockTTL:   5 * time.Second,
		OwnerID:   42,
	}, cfg)

	logger, err := cfg.Logger()
	require.NoError(t, err)
	assert.NotNil(t, logger)
}

func TestLoad_Invalid(t *testing.T) {
	_, err := config.LoadFrom(map[string]string{"SHABLON_OWNER_ID": "not-a-number"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse env:")
}

func TestLogger_Invalid(t *testing.T) {
	_, err := config.Config{LogLevel: "loud", LogFormat: "text"}.Logger()
	assert.Error(t, err)
	_, err = config.Config{LogLevel: "info", LogFormat: "xml"}.Logger()
	assert.Error(t, err)
}
