// Package config loads runtime settings from the environment (and an optional .env file).
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Driver selects the storage backend.
type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

// Config holds every setting read at startup.
type Config struct {
	Driver         Driver
	DatabaseURL    string // postgres only
	SQLitePath     string // sqlite only
	ServerPort     string
	AllowedOrigins string
	LogLevel       string
	LogFormat      string // json | console
}

// Load reads .env (if present) and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from getenv and validates it.
func FromEnv(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		Driver:         Driver(strings.ToLower(strings.TrimSpace(getenv("DB_DRIVER")))),
		DatabaseURL:    getenv("DATABASE_URL"),
		SQLitePath:     getenv("SQLITE_PATH"),
		ServerPort:     getenv("SERVER_PORT"),
		AllowedOrigins: getenv("ALLOWED_ORIGINS"),
		LogLevel:       strings.ToLower(getenv("LOG_LEVEL")),
		LogFormat:      strings.ToLower(getenv("LOG_FORMAT")),
	}
	if cfg.Driver == "" {
		cfg.Driver = DriverSQLite
	}
	if cfg.SQLitePath == "" {
		cfg.SQLitePath = "uniforms.db"
	}
	if cfg.ServerPort == "" {
		cfg.ServerPort = "8080"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "console"
	}
	return cfg, cfg.Validate()
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch c.Driver {
	case DriverSQLite:
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL environment variable not set (required for DB_DRIVER=postgres)")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q: expected sqlite or postgres", c.Driver)
	}
	switch c.LogFormat {
	case "json", "console":
	default:
		return fmt.Errorf("unsupported LOG_FORMAT %q: expected json or console", c.LogFormat)
	}
	return nil
}
