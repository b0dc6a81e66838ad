// Package config loads the pagetree configuration: storage, sites and their
// languages, the path codec, retry policy, logging, metrics, notifications
// and the integrity monitor.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/pagetree/internal/foundation/errors"
)

// CurrentVersion is the only configuration format version accepted by Load.
const CurrentVersion = "1.0"

// Config is the root of the configuration file.
type Config struct {
	Version string        `yaml:"version"`
	Storage StorageConfig `yaml:"storage"`
	Events  EventsConfig  `yaml:"events"`
	Sites   []SiteConfig  `yaml:"sites"`
	Tree    TreeConfig    `yaml:"tree"`
	Retry   RetryConfig   `yaml:"retry"`
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
	Notify  NotifyConfig  `yaml:"notify"`
	Monitor MonitorConfig `yaml:"monitor"`
}

// StorageConfig selects the page store backend.
type StorageConfig struct {
	Driver StorageDriver `yaml:"driver"` // sqlite|memory
	Path   string        `yaml:"path"`   // database file, ":memory:" allowed
}

// EventsConfig controls the lifecycle event log.
type EventsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// SiteConfig describes one site and the languages its content exists in.
type SiteConfig struct {
	ID              string           `yaml:"id"`
	Name            string           `yaml:"name,omitempty"`
	DefaultLanguage string           `yaml:"default_language"`
	Languages       []LanguageConfig `yaml:"languages"`
}

// LanguageConfig is a site language and the ordered languages whose paths
// it may borrow when a parent page lacks a translation.
type LanguageConfig struct {
	Code      string   `yaml:"code"`
	Fallbacks []string `yaml:"fallbacks,omitempty"`
}

// TreeConfig parameterizes the materialized path codec.
type TreeConfig struct {
	Alphabet string `yaml:"alphabet"`
	StepLen  int    `yaml:"steplen"`
}

// RetryConfig governs retries of operations aborted by a concurrent writer.
type RetryConfig struct {
	Backoff      RetryBackoffMode `yaml:"backoff"`
	InitialDelay string           `yaml:"initial_delay"`
	MaxDelay     string           `yaml:"max_delay"`
	MaxRetries   int              `yaml:"max_retries"`
}

// LoggingConfig configures the slog handler.
type LoggingConfig struct {
	Level  LogLevel  `yaml:"level"`
	Format LogFormat `yaml:"format"`
}

// MetricsConfig configures the Prometheus endpoint served by the monitor.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Listen  string `yaml:"listen"`
	Path    string `yaml:"path"`
}

// NotifyConfig configures change notifications over NATS JetStream.
type NotifyConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"nats_url"`
	SubjectPrefix string `yaml:"subject_prefix"`
	Timeout       string `yaml:"timeout"`
}

// MonitorConfig configures the periodic tree integrity check.
type MonitorConfig struct {
	Interval string `yaml:"interval"`
	Repair   bool   `yaml:"repair"`
}

// Load reads, expands, normalizes, defaults and validates the configuration file.
func Load(configPath string) (*Config, error) {
	// Load .env file if it exists
	if err := loadEnvFile(); err != nil {
		fmt.Fprintf(os.Stderr, "Note: .env file not found or couldn't be loaded: %v\n", err)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, errors.ConfigError("configuration file not found").WithContext("path", configPath).Build()
	}
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to read config file").WithContext("path", configPath).Fatal().Build()
	}
	return Parse(data)
}

// Parse is Load without the file system: data is expanded and processed the same way.
func Parse(data []byte) (*Config, error) {
	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))

	var config Config
	if err := yaml.Unmarshal([]byte(expandedData), &config); err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to unmarshal config").Fatal().Build()
	}
	if config.Version != CurrentVersion {
		return nil, errors.ConfigError("unsupported configuration version").
			WithContext("version", config.Version).
			WithContext("expected", CurrentVersion).
			Build()
	}

	// Normalization pass (case-fold enumerations, bounds, early coercions)
	nres, err := NormalizeConfig(&config)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "normalize").Fatal().Build()
	}
	for _, w := range nres.Warnings {
		fmt.Fprintf(os.Stderr, "config normalization: %s\n", w)
	}
	// Apply defaults (after normalization so canonical values drive defaults)
	if err := applyDefaults(&config); err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to apply defaults").Fatal().Build()
	}
	if err := ValidateConfig(&config); err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "configuration validation failed").Fatal().Build()
	}
	return &config, nil
}

// MonitorInterval returns the parsed monitor interval.
func (c *Config) MonitorInterval() time.Duration {
	d, err := time.ParseDuration(c.Monitor.Interval)
	if err != nil {
		return defaultMonitorInterval
	}
	return d
}

// NotifyTimeout returns the parsed publish timeout for notifications.
func (c *Config) NotifyTimeout() time.Duration {
	d, err := time.ParseDuration(c.Notify.Timeout)
	if err != nil {
		return defaultNotifyTimeout
	}
	return d
}

func applyDefaults(config *Config) error {
	applier := NewDefaultApplier()
	return applier.ApplyDefaults(config)
}
