package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds the runtime settings of the inventory API.
type Config struct {
	Port            string
	Env             string
	DBDriver        string
	DatabaseURL     string
	MaxOpenConns    int
	ShutdownTimeout time.Duration
}

// IsDevelopment reports whether the service runs with development logging.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + c.Port
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:            "3003",
		Env:             "production",
		DBDriver:        DriverSQLite,
		DatabaseURL:     "data/inventory.db",
		MaxOpenConns:    10,
		ShutdownTimeout: 10 * time.Second,
	}

	if port := os.Getenv("PORT"); port != "" {
		if _, err := strconv.Atoi(port); err != nil {
			return nil, fmt.Errorf("PORT must be numeric: %w", err)
		}
		cfg.Port = port
	}

	if env := os.Getenv("APP_ENV"); env != "" {
		cfg.Env = env
	}

	if driver := os.Getenv("DB_DRIVER"); driver != "" {
		switch driver {
		case DriverSQLite, DriverPostgres:
			cfg.DBDriver = driver
		default:
			return nil, fmt.Errorf("unsupported DB_DRIVER %q", driver)
		}
	}

	if url := os.Getenv("DATABASE_URL"); url != "" {
		cfg.DatabaseURL = url
	}

	if raw := os.Getenv("DB_MAX_OPEN_CONNS"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("DB_MAX_OPEN_CONNS must be a positive integer, got %q", raw)
		}
		cfg.MaxOpenConns = n
	}

	if raw := os.Getenv("SHUTDOWN_TIMEOUT"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("SHUTDOWN_TIMEOUT: %w", err)
		}
		cfg.ShutdownTimeout = d
	}

	// sqlite serialises writers; a single connection keeps transactions from hitting SQLITE_BUSY.
	if cfg.DBDriver == DriverSQLite {
		cfg.MaxOpenConns = 1
	}

	return cfg, nil
}
