package config

import (
	"time"

	"git.home.luguber.info/inful/pagetree/internal/treepath"
)

const (
	defaultStoragePath     = "pagetree.db"
	defaultEventsPath      = "pagetree-events.db"
	defaultMetricsListen   = ":9090"
	defaultMetricsPath     = "/metrics"
	defaultSubjectPrefix   = "pagetree.changes"
	defaultMonitorInterval = 5 * time.Minute
	defaultNotifyTimeout   = 5 * time.Second
)

// DefaultApplier applies defaults for a specific configuration domain.
type DefaultApplier interface {
	ApplyDefaults(cfg *Config) error
	Domain() string
}

// StorageDefaultApplier handles storage and event log defaults.
type StorageDefaultApplier struct{}

func (StorageDefaultApplier) Domain() string { return "storage" }

func (StorageDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = StorageDriverSQLite
	}
	if cfg.Storage.Path == "" && cfg.Storage.Driver == StorageDriverSQLite {
		cfg.Storage.Path = defaultStoragePath
	}
	if cfg.Events.Enabled && cfg.Events.Path == "" {
		cfg.Events.Path = defaultEventsPath
	}
	return nil
}

// TreeDefaultApplier fills in the path codec parameters.
type TreeDefaultApplier struct{}

func (TreeDefaultApplier) Domain() string { return "tree" }

func (TreeDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Tree.Alphabet == "" {
		cfg.Tree.Alphabet = treepath.DefaultAlphabet
	}
	if cfg.Tree.StepLen <= 0 {
		cfg.Tree.StepLen = treepath.DefaultStepLen
	}
	return nil
}

// SiteDefaultApplier completes site language lists.
type SiteDefaultApplier struct{}

func (SiteDefaultApplier) Domain() string { return "sites" }

func (SiteDefaultApplier) ApplyDefaults(cfg *Config) error {
	for i := range cfg.Sites {
		s := &cfg.Sites[i]
		if s.Name == "" {
			s.Name = s.ID
		}
		if s.DefaultLanguage == "" && len(s.Languages) > 0 {
			s.DefaultLanguage = s.Languages[0].Code
		}
		if len(s.Languages) == 0 && s.DefaultLanguage != "" {
			s.Languages = []LanguageConfig{{Code: s.DefaultLanguage}}
		}
	}
	return nil
}

// RetryDefaultApplier fills in the concurrency retry policy.
type RetryDefaultApplier struct{}

func (RetryDefaultApplier) Domain() string { return "retry" }

func (RetryDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Retry.Backoff == "" {
		cfg.Retry.Backoff = RetryBackoffExponential
	}
	if cfg.Retry.InitialDelay == "" {
		cfg.Retry.InitialDelay = "50ms"
	}
	if cfg.Retry.MaxDelay == "" {
		cfg.Retry.MaxDelay = "2s"
	}
	if cfg.Retry.MaxRetries == 0 {
		cfg.Retry.MaxRetries = 3
	}
	return nil
}

// ObservabilityDefaultApplier handles logging, metrics, notify and monitor.
type ObservabilityDefaultApplier struct{}

func (ObservabilityDefaultApplier) Domain() string { return "observability" }

func (ObservabilityDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = LogLevelInfo
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = LogFormatText
	}
	if cfg.Metrics.Listen == "" {
		cfg.Metrics.Listen = defaultMetricsListen
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = defaultMetricsPath
	}
	if cfg.Notify.SubjectPrefix == "" {
		cfg.Notify.SubjectPrefix = defaultSubjectPrefix
	}
	if cfg.Notify.Timeout == "" {
		cfg.Notify.Timeout = defaultNotifyTimeout.String()
	}
	if cfg.Monitor.Interval == "" {
		cfg.Monitor.Interval = defaultMonitorInterval.String()
	}
	return nil
}

// CompositeDefaultApplier runs the domain appliers in order.
type CompositeDefaultApplier struct {
	appliers []DefaultApplier
}

// NewDefaultApplier returns the applier for every configuration domain.
func NewDefaultApplier() *CompositeDefaultApplier {
	return &CompositeDefaultApplier{appliers: []DefaultApplier{
		StorageDefaultApplier{},
		TreeDefaultApplier{},
		SiteDefaultApplier{},
		RetryDefaultApplier{},
		ObservabilityDefaultApplier{},
	}}
}

// ApplyDefaults runs every domain applier, stopping at the first error.
func (c *CompositeDefaultApplier) ApplyDefaults(cfg *Config) error {
	for _, a := range c.appliers {
		if err := a.ApplyDefaults(cfg); err != nil {
			return err
		}
	}
	return nil
}
