// Package config provides configuration loading and validation for the service and CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// StoreDriver selects the candidate store backend.
type StoreDriver string

const (
	StorePostgres StoreDriver = "postgres"
	StoreSQLite   StoreDriver = "sqlite"
)

const (
	defaultPort          = 8080
	defaultSQLitePath    = "talent_pool.db"
	defaultServiceName   = "talent-pool"
	defaultRecomputeMax  = 1000
	defaultRecomputeSize = 200
	defaultConcurrency   = 4
	defaultTimeout       = 60 * time.Second
)

// RecomputeSettings bounds recompute batches.
type RecomputeSettings struct {
	DefaultLimit int
	MaxLimit     int
	Concurrency  int
	Timeout      time.Duration
}

// OTelConfig holds the OTLP exporter settings.
type OTelConfig struct {
	Endpoint    string
	Headers     string
	ServiceName string
}

// ServiceConfig is the process configuration gathered from the environment.
type ServiceConfig struct {
	Env         string
	Port        int
	StoreDriver StoreDriver
	DatabaseURL string
	SQLitePath  string
	LogLevel    string
	Recompute   RecomputeSettings
	OTel        OTelConfig
}

// NewServiceConfig reads the service configuration from environment variables.
func NewServiceConfig() (*ServiceConfig, error) {
	cfg := &ServiceConfig{
		Env:         getEnv("ENV", "development"),
		StoreDriver: StoreDriver(strings.ToLower(getEnv("STORE_DRIVER", string(StorePostgres)))),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		SQLitePath:  getEnv("SQLITE_PATH", defaultSQLitePath),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		OTel: OTelConfig{
			Endpoint:    os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
			Headers:     os.Getenv("OTEL_EXPORTER_OTLP_HEADERS"),
			ServiceName: getEnv("OTEL_SERVICE_NAME", defaultServiceName),
		},
	}

	var err error
	if cfg.Port, err = getEnvInt("PORT", defaultPort); err != nil {
		return nil, err
	}
	if cfg.Recompute.DefaultLimit, err = getEnvInt("RECOMPUTE_DEFAULT_LIMIT", defaultRecomputeSize); err != nil {
		return nil, err
	}
	if cfg.Recompute.MaxLimit, err = getEnvInt("RECOMPUTE_MAX_LIMIT", defaultRecomputeMax); err != nil {
		return nil, err
	}
	if cfg.Recompute.Concurrency, err = getEnvInt("RECOMPUTE_CONCURRENCY", defaultConcurrency); err != nil {
		return nil, err
	}
	if cfg.Recompute.Timeout, err = getEnvDuration("RECOMPUTE_TIMEOUT", defaultTimeout); err != nil {
		return nil, err
	}

	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// normalize validates the configuration.
func (c *ServiceConfig) normalize() error {
	switch c.StoreDriver {
	case StorePostgres, StoreSQLite:
	default:
		return fmt.Errorf("STORE_DRIVER must be %q or %q, got: %q", StorePostgres, StoreSQLite, c.StoreDriver)
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("PORT out of range: %d", c.Port)
	}
	if c.Recompute.MaxLimit < 1 {
		return fmt.Errorf("RECOMPUTE_MAX_LIMIT must be at least 1, got: %d", c.Recompute.MaxLimit)
	}
	if c.Recompute.DefaultLimit < 1 || c.Recompute.DefaultLimit > c.Recompute.MaxLimit {
		return fmt.Errorf("RECOMPUTE_DEFAULT_LIMIT must be between 1 and %d, got: %d", c.Recompute.MaxLimit, c.Recompute.DefaultLimit)
	}
	if c.Recompute.Concurrency < 1 {
		return fmt.Errorf("RECOMPUTE_CONCURRENCY must be at least 1, got: %d", c.Recompute.Concurrency)
	}
	if c.Recompute.Timeout < 0 {
		return fmt.Errorf("RECOMPUTE_TIMEOUT cannot be negative")
	}
	return nil
}

// IsProduction reports whether ENV is production.
func (c *ServiceConfig) IsProduction() bool {
	return c.Env == "production"
}

// IsDevelopment reports whether ENV is development.
func (c *ServiceConfig) IsDevelopment() bool {
	return c.Env == "development"
}

// ApplyFile overrides settings with the non-empty values of a JSON config file.
func (c *ServiceConfig) ApplyFile(f *Config) error {
	if f == nil {
		return nil
	}
	if f.StoreDriver != "" {
		c.StoreDriver = StoreDriver(strings.ToLower(f.StoreDriver))
	}
	if f.DatabaseURL != "" {
		c.DatabaseURL = f.DatabaseURL
	}
	if f.SQLitePath != "" {
		c.SQLitePath = f.SQLitePath
	}
	if f.LogLevel != "" {
		c.LogLevel = f.LogLevel
	}
	if f.DefaultLimit != 0 {
		c.Recompute.DefaultLimit = f.DefaultLimit
	}
	if f.MaxLimit != 0 {
		c.Recompute.MaxLimit = f.MaxLimit
	}
	if f.Concurrency != 0 {
		c.Recompute.Concurrency = f.Concurrency
	}
	if f.Timeout != "" {
		d, err := time.ParseDuration(f.Timeout)
		if err != nil {
			return fmt.Errorf("config error: invalid 'timeout': %w", err)
		}
		c.Recompute.Timeout = d
	}
	return c.normalize()
}

// Config represents the CLI configuration that can be loaded from a JSON file.
// All fields are optional; missing values fall back to the environment.
type Config struct {
	// Store
	StoreDriver string `json:"store_driver,omitempty"` // "postgres" or "sqlite"
	DatabaseURL string `json:"database_url,omitempty"` // PostgreSQL connection URL
	SQLitePath  string `json:"sqlite_path,omitempty"`  // SQLite database file

	// Recompute batch bounds
	DefaultLimit int    `json:"default_limit,omitempty"`
	MaxLimit     int    `json:"max_limit,omitempty"`
	Concurrency  int    `json:"concurrency,omitempty"`
	Timeout      string `json:"timeout,omitempty"` // Go duration, e.g. "90s"

	LogLevel string `json:"log_level,omitempty"`
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if c.StoreDriver != "" {
		switch StoreDriver(strings.ToLower(c.StoreDriver)) {
		case StorePostgres, StoreSQLite:
		default:
			return fmt.Errorf("config error: unknown 'store_driver' %q", c.StoreDriver)
		}
	}
	if c.DefaultLimit < 0 {
		return fmt.Errorf("config error: 'default_limit' must be non-negative")
	}
	if c.MaxLimit < 0 {
		return fmt.Errorf("config error: 'max_limit' must be non-negative")
	}
	if c.Concurrency < 0 {
		return fmt.Errorf("config error: 'concurrency' must be non-negative")
	}
	if c.Timeout != "" {
		if _, err := time.ParseDuration(c.Timeout); err != nil {
			return fmt.Errorf("config error: invalid 'timeout': %v", err)
		}
	}
	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.StoreDriver == "" {
		result.StoreDriver = defaults.StoreDriver
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.SQLitePath == "" {
		result.SQLitePath = defaults.SQLitePath
	}
	if result.LogLevel == "" {
		result.LogLevel = defaults.LogLevel
	}
	if result.Timeout == "" {
		result.Timeout = defaults.Timeout
	}

	// Int fields: use default if zero
	if result.DefaultLimit == 0 {
		result.DefaultLimit = defaults.DefaultLimit
	}
	if result.MaxLimit == 0 {
		result.MaxLimit = defaults.MaxLimit
	}
	if result.Concurrency == 0 {
		result.Concurrency = defaults.Concurrency
	}

	return result
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %v", key, err)
	}
	return n, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %v", key, err)
	}
	return d, nil
}
