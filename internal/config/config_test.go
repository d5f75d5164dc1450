package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "")
	t.Setenv("APP_PORT", "")
	t.Setenv("LOG_FORMAT", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.AppPort)
	assert.Equal(t, DriverSQLite, cfg.DBDriver)
	assert.False(t, cfg.RuleCacheEnabled)
	assert.Empty(t, cfg.RabbitMQURL)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("DB_DRIVER", "Memory")
	t.Setenv("RULE_CACHE_ENABLED", "true")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("LOG_FORMAT", " Console")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.AppPort)
	assert.Equal(t, DriverMemory, cfg.DBDriver)
	assert.True(t, cfg.RuleCacheEnabled)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.Equal(t, "console", cfg.LogFormat)
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Setenv("DB_DRIVER", "oracle")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRequiresPostgresDSN(t *testing.T) {
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DATABASE_DSN", "")

	_, err := Load()
	assert.Error(t, err)
}
