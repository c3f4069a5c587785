// Package config loads the service settings from the environment and an
// optional dotenv file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ErrMissingDatabaseURL is returned by Load when DATABASE_URL is not set.
var ErrMissingDatabaseURL = errors.New("DATABASE_URL must be set in the environment or the .env file")

type (
	Config struct {
		HTTP
		Database
		Global
	}

	HTTP struct {
		Host string
		Port int
	}
	Database struct {
		URL          string
		MaxOpenConns int
		MaxIdleConns int
		MaxIdleTime  time.Duration
		AutoMigrate  bool // Create the books table at startup if missing
	}
	Global struct {
		Environment     string // development, staging or production
		LogLevel        string
		ShutdownTimeout time.Duration
	}
)

// Addr is the listen address built from Host and Port.
func (h HTTP) Addr() string {
	return fmt.Sprintf("%s:%d", h.Host, h.Port)
}

// Load reads the configuration once. Environment variables win over values
// from the dotenv file named by ENV_FILE (default ".env"); a missing dotenv
// file is not an error.
func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("env_file", ".env")
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("port", 3030)
	v.SetDefault("env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("db_max_open_conns", 25)
	v.SetDefault("db_max_idle_conns", 25)
	v.SetDefault("db_max_idle_time", "15m")
	v.SetDefault("db_auto_migrate", true)
	v.SetDefault("shutdown_timeout", "20s")

	if err := readEnvFile(v, v.GetString("ENV_FILE")); err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTP: HTTP{
			Host: v.GetString("HOST"),
			Port: v.GetInt("PORT"),
		},
		Database: Database{
			URL:          strings.TrimSpace(v.GetString("DATABASE_URL")),
			MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
			MaxIdleTime:  v.GetDuration("DB_MAX_IDLE_TIME"),
			AutoMigrate:  v.GetBool("DB_AUTO_MIGRATE"),
		},
		Global: Global{
			Environment:     v.GetString("ENV"),
			LogLevel:        strings.ToLower(v.GetString("LOG_LEVEL")),
			ShutdownTimeout: v.GetDuration("SHUTDOWN_TIMEOUT"),
		},
	}

	if cfg.Database.URL == "" {
		return nil, ErrMissingDatabaseURL
	}
	return cfg, nil
}

func readEnvFile(v *viper.Viper, path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}

	v.SetConfigFile(path)
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	return nil
}
