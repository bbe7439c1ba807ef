package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"

	"github.com/plantbygpt/plantbygpt/internal/localstate"
)

// Environment represents different deployment environments
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvTesting     Environment = "testing"
	EnvProduction  Environment = "production"
)

// Store drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config holds the configuration for the journal service.
// Environment variables are parsed from the PLANTBY_ prefix.
type Config struct {
	Environment Environment `envconfig:"ENVIRONMENT" default:"development"`
	LogLevel    string      `envconfig:"LOG_LEVEL" default:"info"`

	// HTTP Configuration
	HTTPPort int `envconfig:"HTTP_PORT" default:"8080"`

	// Storage: sqlite (single file under DataDir), postgres, or memory
	StoreDriver string `envconfig:"STORE_DRIVER" default:"sqlite"`
	DataDir     string `envconfig:"DATA_DIR" default:""`
	PostgresDSN string `envconfig:"POSTGRES_DSN" default:""`

	// Branding used in archive file names
	AppName string `envconfig:"APP_NAME" default:"PlantByGPT"`

	// Limits
	MaxImageBytes     int64 `envconfig:"MAX_IMAGE_BYTES" default:"8388608"`
	MaxArchiveBytes   int64 `envconfig:"MAX_ARCHIVE_BYTES" default:"536870912"`
	ExportConcurrency int   `envconfig:"EXPORT_CONCURRENCY" default:"4"`

	// Health
	HealthIntervalSeconds     int `envconfig:"HEALTH_INTERVAL_SECONDS" default:"30"`
	HealthProbeTimeoutSeconds int `envconfig:"HEALTH_PROBE_TIMEOUT_SECONDS" default:"2"`
}

// ResolveDefaults validates the driver choice and fills in the data directory.
func (c *Config) ResolveDefaults() error {
	switch c.StoreDriver {
	case "", DriverSQLite:
		c.StoreDriver = DriverSQLite
		if c.DataDir == "" {
			dir, err := localstate.DataDir()
			if err != nil {
				return fmt.Errorf("resolve data dir: %w", err)
			}
			c.DataDir = dir
		}
	case DriverPostgres:
		if c.PostgresDSN == "" {
			return fmt.Errorf("STORE_DRIVER=postgres requires POSTGRES_DSN")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unsupported STORE_DRIVER: %s", c.StoreDriver)
	}

	if c.AppName == "" {
		c.AppName = "PlantByGPT"
	}
	if c.MaxImageBytes <= 0 {
		return fmt.Errorf("MAX_IMAGE_BYTES must be positive, got %d", c.MaxImageBytes)
	}
	if c.MaxArchiveBytes <= 0 {
		return fmt.Errorf("MAX_ARCHIVE_BYTES must be positive, got %d", c.MaxArchiveBytes)
	}
	if c.ExportConcurrency <= 0 {
		c.ExportConcurrency = 1
	}
	return nil
}

// New creates a new Config by parsing environment variables
// Example: PLANTBY_HTTP_PORT, PLANTBY_STORE_DRIVER
func New() (*Config, error) {
	return Load(nil)
}

// Load is New with override applied after the environment is read and before
// defaults are resolved, so command-line flags win without touching the process
// environment.
func Load(override func(*Config)) (*Config, error) {
	var cfg Config

	if err := envconfig.Process("PLANTBY", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}
	if override != nil {
		override(&cfg)
	}

	if err := cfg.ResolveDefaults(); err != nil {
		return nil, err
	}

	log.Info().
		Str("environment", string(cfg.Environment)).
		Int("port", cfg.HTTPPort).
		Str("store_driver", cfg.StoreDriver).
		Str("data_dir", cfg.DataDir).
		Bool("postgres_dsn_present", cfg.PostgresDSN != "").
		Int64("max_image_bytes", cfg.MaxImageBytes).
		Int64("max_archive_bytes", cfg.MaxArchiveBytes).
		Int("export_concurrency", cfg.ExportConcurrency).
		Msg("Configuration loaded")

	return &cfg, nil
}

// NewForTesting creates a config specifically for testing
func NewForTesting() *Config {
	return &Config{
		Environment:               EnvTesting,
		LogLevel:                  "debug",
		HTTPPort:                  8080,
		StoreDriver:               DriverMemory,
		AppName:                   "PlantByGPT",
		MaxImageBytes:             8 << 20,
		MaxArchiveBytes:           512 << 20,
		ExportConcurrency:         4,
		HealthIntervalSeconds:     1,
		HealthProbeTimeoutSeconds: 1,
	}
}

// IsTesting returns true if the environment is set to testing
func (c *Config) IsTesting() bool {
	return c.Environment == EnvTesting
}

// IsProduction returns true if the environment is set to production
func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

// GetHTTPAddr returns the HTTP server address
func (c *Config) GetHTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

// HealthInterval returns the health polling interval.
func (c *Config) HealthInterval() time.Duration {
	if c.HealthIntervalSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.HealthIntervalSeconds) * time.Second
}

// HealthProbeTimeout returns the per-probe timeout.
func (c *Config) HealthProbeTimeout() time.Duration {
	if c.HealthProbeTimeoutSeconds <= 0 {
		return 2 * time.Second
	}
	return time.Duration(c.HealthProbeTimeoutSeconds) * time.Second
}
