package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Supported database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config is the application configuration, read from the environment.
type Config struct {
	AppPort   string
	LogLevel  string
	LogFormat string

	DBDriver    string
	DatabaseDSN string
	SeedData    bool

	RabbitMQURL string

	RuleCacheEnabled bool
	RedisAddr        string
	RedisPassword    string
	RedisDB          int
}

// Load reads the configuration. Unset keys fall back to local development defaults.
func Load() (Config, error) {
	v := viper.New()
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("DB_DRIVER", DriverSQLite)
	v.SetDefault("DATABASE_DSN", "")
	v.SetDefault("SEED_DATA", false)
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("RULE_CACHE_ENABLED", false)
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.AutomaticEnv() // Load environment variables

	cfg := Config{
		AppPort:          v.GetString("APP_PORT"),
		LogLevel:         v.GetString("LOG_LEVEL"),
		LogFormat:        strings.ToLower(strings.TrimSpace(v.GetString("LOG_FORMAT"))),
		DBDriver:         strings.ToLower(strings.TrimSpace(v.GetString("DB_DRIVER"))),
		DatabaseDSN:      v.GetString("DATABASE_DSN"),
		SeedData:         v.GetBool("SEED_DATA"),
		RabbitMQURL:      strings.TrimSpace(v.GetString("RABBITMQ_URL")),
		RuleCacheEnabled: v.GetBool("RULE_CACHE_ENABLED"),
		RedisAddr:        strings.TrimSpace(v.GetString("REDIS_ADDR")),
		RedisPassword:    v.GetString("REDIS_PASSWORD"),
		RedisDB:          v.GetInt("REDIS_DB"),
	}

	switch cfg.DBDriver {
	case DriverSQLite, DriverPostgres, DriverMemory:
	default:
		return Config{}, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
	if cfg.DBDriver == DriverSQLite && cfg.DatabaseDSN == "" {
		cfg.DatabaseDSN = "grosir.db"
	}
	if cfg.DBDriver == DriverPostgres && cfg.DatabaseDSN == "" {
		return Config{}, fmt.Errorf("DATABASE_DSN is required for postgres")
	}
	if !strings.HasPrefix(cfg.AppPort, ":") {
		cfg.AppPort = ":" + cfg.AppPort
	}
	return cfg, nil
}
