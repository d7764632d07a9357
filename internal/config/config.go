package config

import (
	"os"
	"strconv"
	"time"

	"sheetcharts/internal/errors"

	"gopkg.in/yaml.v3"
)

// Config represents the complete application configuration
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Server   ServerConfig   `yaml:"server"`
	Limits   LimitsConfig   `yaml:"limits"`
	Admin    AdminConfig    `yaml:"admin"`
	Export   ExportConfig   `yaml:"export"`
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	URL             string        `yaml:"url"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

// ServerConfig holds API server settings
type ServerConfig struct {
	Port            string        `yaml:"port"`
	GinMode         string        `yaml:"gin_mode"`
	MaxUploadMB     int           `yaml:"max_upload_mb"`
	MaxUploadRows   int           `yaml:"max_upload_rows"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// LimitsConfig bounds the cost of a single chart request
type LimitsConfig struct {
	DefaultRowLimit           int `yaml:"default_row_limit"`
	MaxRowLimit               int `yaml:"max_row_limit"`
	DefaultBinCount           int `yaml:"default_bin_count"`
	MinBinCount               int `yaml:"min_bin_count"`
	MaxBinCount               int `yaml:"max_bin_count"`
	MaxConcurrentAggregations int `yaml:"max_concurrent_aggregations"`
	PreviewRows               int `yaml:"preview_rows"`
}

// AdminConfig holds the health and pprof listener settings
type AdminConfig struct {
	Port    string `yaml:"port"`
	Enabled bool   `yaml:"enabled"`
}

// ExportConfig holds rendered image dimensions
type ExportConfig struct {
	ChartWidth  int `yaml:"chart_width"`
	ChartHeight int `yaml:"chart_height"`
}

// Default returns the built-in configuration. DATABASE_URL has no default.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{
			MaxOpenConns:    20,
			MaxIdleConns:    5,
			ConnMaxLifetime: 30 * time.Minute,
		},
		Server: ServerConfig{
			Port:            "8080",
			GinMode:         "debug",
			MaxUploadMB:     10,
			MaxUploadRows:   50000,
			ShutdownTimeout: 10 * time.Second,
		},
		Limits: LimitsConfig{
			DefaultRowLimit:           1000,
			MaxRowLimit:               10000,
			DefaultBinCount:           10,
			MinBinCount:               5,
			MaxBinCount:               100,
			MaxConcurrentAggregations: 8,
			PreviewRows:               20,
		},
		Admin: AdminConfig{
			Port:    "6060",
			Enabled: true,
		},
		Export: ExportConfig{
			ChartWidth:  1024,
			ChartHeight: 576,
		},
	}
}

// Load builds the configuration from defaults, the optional YAML file named
// by CONFIG_FILE, and environment variables, in increasing precedence.
func Load() (*Config, error) {
	config, err := read()
	if err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

// LoadLocal is Load without the database requirement, for tools that keep
// everything in memory.
func LoadLocal() (*Config, error) {
	config, err := read()
	if err != nil {
		return nil, err
	}
	if err := config.Limits.Validate(); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

func read() (*Config, error) {
	config := Default()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadFile(path, config); err != nil {
			return nil, errors.Wrap(err, "failed to load configuration file")
		}
	}
	applyEnv(config)
	return config, nil
}

func loadFile(path string, config *Config) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return errors.ConfigInvalid("cannot read " + path + ": " + err.Error())
	}
	if err := yaml.Unmarshal(raw, config); err != nil {
		return errors.ConfigInvalid("invalid YAML in " + path + ": " + err.Error())
	}
	return nil
}

func applyEnv(c *Config) {
	c.Database.URL = getEnvOrDefault("DATABASE_URL", c.Database.URL)
	c.Database.MaxOpenConns = getEnvIntOrDefault("DB_MAX_OPEN_CONNS", c.Database.MaxOpenConns)
	c.Database.MaxIdleConns = getEnvIntOrDefault("DB_MAX_IDLE_CONNS", c.Database.MaxIdleConns)
	c.Database.ConnMaxLifetime = getEnvDurationOrDefault("DB_CONN_MAX_LIFETIME", c.Database.ConnMaxLifetime)

	c.Server.Port = getEnvOrDefault("PORT", c.Server.Port)
	c.Server.GinMode = getEnvOrDefault("GIN_MODE", c.Server.GinMode)
	c.Server.MaxUploadMB = getEnvIntOrDefault("MAX_UPLOAD_MB", c.Server.MaxUploadMB)
	c.Server.MaxUploadRows = getEnvIntOrDefault("MAX_UPLOAD_ROWS", c.Server.MaxUploadRows)
	c.Server.ShutdownTimeout = getEnvDurationOrDefault("SHUTDOWN_TIMEOUT", c.Server.ShutdownTimeout)

	c.Limits.DefaultRowLimit = getEnvIntOrDefault("DEFAULT_ROW_LIMIT", c.Limits.DefaultRowLimit)
	c.Limits.MaxRowLimit = getEnvIntOrDefault("MAX_ROW_LIMIT", c.Limits.MaxRowLimit)
	c.Limits.DefaultBinCount = getEnvIntOrDefault("DEFAULT_BIN_COUNT", c.Limits.DefaultBinCount)
	c.Limits.MinBinCount = getEnvIntOrDefault("MIN_BIN_COUNT", c.Limits.MinBinCount)
	c.Limits.MaxBinCount = getEnvIntOrDefault("MAX_BIN_COUNT", c.Limits.MaxBinCount)
	c.Limits.MaxConcurrentAggregations = getEnvIntOrDefault("MAX_CONCURRENT_AGGREGATIONS", c.Limits.MaxConcurrentAggregations)
	c.Limits.PreviewRows = getEnvIntOrDefault("PREVIEW_ROWS", c.Limits.PreviewRows)

	c.Admin.Port = getEnvOrDefault("ADMIN_PORT", c.Admin.Port)
	c.Admin.Enabled = getEnvBoolOrDefault("ADMIN_ENABLED", c.Admin.Enabled)

	c.Export.ChartWidth = getEnvIntOrDefault("CHART_WIDTH", c.Export.ChartWidth)
	c.Export.ChartHeight = getEnvIntOrDefault("CHART_HEIGHT", c.Export.ChartHeight)
}

// Validate checks required fields and the consistency of the limits
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return errors.ConfigInvalid("DATABASE_URL is required")
	}
	if c.Server.Port == "" {
		return errors.ConfigInvalid("server port is required")
	}
	if c.Server.MaxUploadMB <= 0 || c.Server.MaxUploadRows <= 0 {
		return errors.ConfigInvalid("upload limits must be positive")
	}
	return c.Limits.Validate()
}

// Validate checks that the row and bin bounds are usable
func (l LimitsConfig) Validate() error {
	if l.MaxRowLimit < 1 || l.DefaultRowLimit < 1 || l.DefaultRowLimit > l.MaxRowLimit {
		return errors.ConfigInvalid("row limits must satisfy 1 <= DEFAULT_ROW_LIMIT <= MAX_ROW_LIMIT")
	}
	if l.MinBinCount < 1 || l.MinBinCount > l.MaxBinCount {
		return errors.ConfigInvalid("bin limits must satisfy 1 <= MIN_BIN_COUNT <= MAX_BIN_COUNT")
	}
	if l.DefaultBinCount < l.MinBinCount || l.DefaultBinCount > l.MaxBinCount {
		return errors.ConfigInvalid("DEFAULT_BIN_COUNT must lie within the bin limits")
	}
	if l.MaxConcurrentAggregations < 1 {
		return errors.ConfigInvalid("MAX_CONCURRENT_AGGREGATIONS must be positive")
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

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
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
