// Package config loads and validates the worker's single YAML configuration
// file, layered over in-code defaults and a handful of environment
// variable overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config is the root of the worker's configuration.
type Config struct {
	Environment string         `yaml:"environment"` // "development" or "production"
	Database    DatabaseConfig `yaml:"database"`
	S3          S3Config       `yaml:"s3"`
	Logging     LoggingConfig  `yaml:"logging"`
	Documents   DocumentsConfig `yaml:"documents"`
	Externals   ExternalsConfig `yaml:"externals"`
	Experimental ExperimentalConfig `yaml:"experimental"`
}

type DatabaseConfig struct {
	ConnectionString string `yaml:"connectionString" validate:"required"`
	QueueChannel     string `yaml:"queueChannel"`

	// ConnectionTimeout bounds each individual connection attempt (the
	// query connection, the LISTEN connection, and every reconnect).
	ConnectionTimeout time.Duration `yaml:"connectionTimeout"`
	// QueueTimeout bounds WaitForNotification: when no NOTIFY arrives
	// within this window, the listener goes back to its drain step
	// regardless, rather than blocking forever.
	QueueTimeout time.Duration `yaml:"queueTimeout"`
}

type S3Config struct {
	URL             string `yaml:"url" validate:"required"`
	AccessKeyID     string `yaml:"accessKeyId" validate:"required"`
	SecretAccessKey string `yaml:"secretAccessKey" validate:"required"`
	Region          string `yaml:"region"`
	Bucket          string `yaml:"bucket" validate:"required"`
}

type LoggingConfig struct {
	Level      string `yaml:"level"`      // "debug", "info", "warn", "error"
	Format     string `yaml:"format"`     // "json" or "text"
	Output     []string `yaml:"output"`   // "stdout", "file"
	TimeFormat string `yaml:"timeFormat"`
}

// DocumentsConfig controls file-naming strategy and tenant config caching.
type DocumentsConfig struct {
	NamingStrategy string        `yaml:"namingStrategy" validate:"oneof=uuid sanitize slugify"`
	TenantCacheTTL time.Duration `yaml:"tenantCacheTtl"`
}

// ExternalsConfig gives the converter drivers their subprocess binaries and
// extra invocation args.
type ExternalsConfig struct {
	Pandoc      ExternalTool `yaml:"pandoc"`
	WkHtmlToPdf ExternalTool `yaml:"wkhtmltopdf"`
	Prince      ExternalTool `yaml:"prince"`
	Relaxed     ExternalTool `yaml:"relaxed"`
}

type ExternalTool struct {
	Command string        `yaml:"command"`
	Args    []string      `yaml:"args"`
	Timeout time.Duration `yaml:"timeout"`
}

// ExperimentalConfig is a grab-bag of global opt-in behaviors, matching the
// source's Context.get().app.cfg.experimental.* usage.
type ExperimentalConfig struct {
	// MoreAppsEnabled is the worker's multi-tenant switch: object keys and
	// tenant config/limits lookups are scoped by app_uuid when set.
	MoreAppsEnabled bool `yaml:"moreAppsEnabled"`
	// JobTimeout is the default per-job wall-clock timeout, used when a
	// tenant's AppLimits row doesn't set its own job_timeout_seconds.
	JobTimeout time.Duration `yaml:"jobTimeout"`
	// PDFWatermark is the default watermark image path, used when a
	// tenant's AppConfig row doesn't set its own watermark_path.
	PDFWatermark string `yaml:"pdfWatermark"`
	// PDFWatermarkTop is the default watermark vertical offset, paired
	// with PDFWatermark.
	PDFWatermarkTop float64 `yaml:"pdfWatermarkTop"`
}

// NewDefault returns a Config populated with the worker's built-in defaults.
// File contents and environment overrides are layered on top of this.
func NewDefault() *Config {
	return &Config{
		Environment: "development",
		Database: DatabaseConfig{
			QueueChannel:      "document_queue_channel",
			ConnectionTimeout: 10 * time.Second,
			QueueTimeout:      120 * time.Second,
		},
		S3: S3Config{
			Region: "us-east-1",
		},
		Experimental: ExperimentalConfig{
			MoreAppsEnabled: true,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "text",
			Output:     []string{"stdout"},
			TimeFormat: "15:04:05.000",
		},
		Documents: DocumentsConfig{
			NamingStrategy: "uuid",
			TenantCacheTTL: 5 * time.Minute,
		},
		Externals: ExternalsConfig{
			Pandoc:      ExternalTool{Command: "pandoc", Timeout: 30 * time.Second},
			WkHtmlToPdf: ExternalTool{Command: "wkhtmltopdf", Timeout: 60 * time.Second},
			Prince:      ExternalTool{Command: "prince", Timeout: 60 * time.Second},
			Relaxed:     ExternalTool{Command: "chromium", Timeout: 90 * time.Second},
		},
	}
}

// Load reads the YAML file at path over the defaults, applies
// DOCWORKER_* environment overrides, then validates the result.
func Load(path string) (*Config, error) {
	cfg := NewDefault()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file %q: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %q: %w", path, err)
	}

	applyEnvOverrides(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies a DOCWORKER_ prefixed environment override for
// the handful of values operators most commonly need to change without
// editing the file (credentials, connection strings, log level).
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("DOCWORKER_DATABASE_CONNECTION_STRING"); v != "" {
		cfg.Database.ConnectionString = v
	}
	if v := os.Getenv("DOCWORKER_S3_URL"); v != "" {
		cfg.S3.URL = v
	}
	if v := os.Getenv("DOCWORKER_S3_ACCESS_KEY_ID"); v != "" {
		cfg.S3.AccessKeyID = v
	}
	if v := os.Getenv("DOCWORKER_S3_SECRET_ACCESS_KEY"); v != "" {
		cfg.S3.SecretAccessKey = v
	}
	if v := os.Getenv("DOCWORKER_S3_BUCKET"); v != "" {
		cfg.S3.Bucket = v
	}
	if v := os.Getenv("DOCWORKER_LOGGING_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("DOCWORKER_ENVIRONMENT"); v != "" {
		cfg.Environment = v
	}
	if v := os.Getenv("DOCWORKER_EXPERIMENTAL_MORE_APPS_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Experimental.MoreAppsEnabled = b
		}
	}
}

func validate(cfg *Config) error {
	return validator.New().Struct(cfg)
}

// IsProduction reports whether the worker is running in production mode.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}
