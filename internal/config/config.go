package config

import (
	"os"
	"strconv"
	"time"

	"gobandit/internal"
	"gobandit/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Bandit   BanditConfig
	Sweep    SweepConfig
	Log      LogConfig
}

// DatabaseConfig holds database connection settings. An empty URL keeps runs in memory.
type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

// Enabled reports whether runs are persisted to Postgres
func (d DatabaseConfig) Enabled() bool {
	return d.URL != ""
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port            string
	GinMode         string
	ReportPort      string
	ShutdownTimeout time.Duration
}

// BanditConfig holds defaults for new ensembles and live sessions
type BanditConfig struct {
	Window      int
	Seed        int64
	MaxSessions int
}

// SweepConfig holds multi-seed evaluation settings
type SweepConfig struct {
	Workers int
}

// LogConfig holds logging settings
type LogConfig struct {
	Level internal.LogLevel
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Database: DatabaseConfig{
			URL:             getEnvOrDefault("DATABASE_URL", ""),
			MaxOpenConns:    getEnvIntOrDefault("DB_MAX_OPEN_CONNS", 10),
			ConnMaxLifetime: getEnvDurationOrDefault("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		Server: ServerConfig{
			Port:            getEnvOrDefault("PORT", "8080"),
			GinMode:         getEnvOrDefault("GIN_MODE", "debug"),
			ReportPort:      getEnvOrDefault("REPORT_PORT", "8081"),
			ShutdownTimeout: getEnvDurationOrDefault("SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Bandit: BanditConfig{
			Window:      getEnvIntOrDefault("BANDIT_WINDOW", 120),
			Seed:        getEnvInt64OrDefault("BANDIT_SEED", 0),
			MaxSessions: getEnvIntOrDefault("MAX_SESSIONS", 1000),
		},
		Sweep: SweepConfig{
			Workers: getEnvIntOrDefault("SWEEP_WORKERS", 4),
		},
		Log: LogConfig{
			Level: internal.ParseLogLevel(getEnvOrDefault("LOG_LEVEL", "info")),
		},
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func validateConfig(config *Config) error {
	if config.Server.Port == "" {
		return errors.ConfigInvalid("PORT is required")
	}
	if config.Server.Port == config.Server.ReportPort {
		return errors.ConfigInvalidf("PORT and REPORT_PORT must differ, both are %s", config.Server.Port)
	}
	if config.Bandit.Window <= 0 {
		return errors.ConfigInvalidf("BANDIT_WINDOW must be positive, got %d", config.Bandit.Window)
	}
	if config.Sweep.Workers <= 0 {
		return errors.ConfigInvalidf("SWEEP_WORKERS must be positive, got %d", config.Sweep.Workers)
	}
	if config.Database.MaxOpenConns <= 0 {
		return errors.ConfigInvalidf("DB_MAX_OPEN_CONNS must be positive, got %d", config.Database.MaxOpenConns)
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64OrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
