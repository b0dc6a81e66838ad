package config

import (
	"errors"
	"fmt"
	"time"

	"git.home.luguber.info/inful/pagetree/internal/treepath"
)

// ValidateConfig validates a normalized and defaulted configuration.
func ValidateConfig(cfg *Config) error {
	validator := newConfigurationValidator(cfg)
	return validator.validate()
}

// configurationValidator coordinates validation across configuration domains.
type configurationValidator struct {
	config *Config
}

func newConfigurationValidator(config *Config) *configurationValidator {
	return &configurationValidator{config: config}
}

func (cv *configurationValidator) validate() error {
	if err := cv.validateSites(); err != nil {
		return err
	}
	if err := cv.validateTree(); err != nil {
		return err
	}
	if err := cv.validateDurations(); err != nil {
		return err
	}
	return cv.validateIntegrations()
}

func (cv *configurationValidator) validateSites() error {
	if len(cv.config.Sites) == 0 {
		return errors.New("at least one site must be configured")
	}
	seen := make(map[string]struct{}, len(cv.config.Sites))
	for _, s := range cv.config.Sites {
		if s.ID == "" {
			return errors.New("site id cannot be empty")
		}
		if _, dup := seen[s.ID]; dup {
			return fmt.Errorf("duplicate site id: %s", s.ID)
		}
		seen[s.ID] = struct{}{}

		if len(s.Languages) == 0 {
			return fmt.Errorf("site %s: at least one language is required", s.ID)
		}
		codes := make(map[string]struct{}, len(s.Languages))
		for _, l := range s.Languages {
			if l.Code == "" {
				return fmt.Errorf("site %s: language code cannot be empty", s.ID)
			}
			if _, dup := codes[l.Code]; dup {
				return fmt.Errorf("site %s: duplicate language %s", s.ID, l.Code)
			}
			codes[l.Code] = struct{}{}
		}
		if _, ok := codes[s.DefaultLanguage]; !ok {
			return fmt.Errorf("site %s: default language %s is not one of its languages", s.ID, s.DefaultLanguage)
		}
		for _, l := range s.Languages {
			for _, fb := range l.Fallbacks {
				if fb == l.Code {
					return fmt.Errorf("site %s: language %s lists itself as fallback", s.ID, l.Code)
				}
				if _, ok := codes[fb]; !ok {
					return fmt.Errorf("site %s: language %s has unknown fallback %s", s.ID, l.Code, fb)
				}
			}
		}
	}
	return nil
}

func (cv *configurationValidator) validateTree() error {
	if _, err := treepath.New(cv.config.Tree.Alphabet, cv.config.Tree.StepLen); err != nil {
		return fmt.Errorf("tree: %w", err)
	}
	return nil
}

func (cv *configurationValidator) validateDurations() error {
	durations := map[string]string{
		"retry.initial_delay": cv.config.Retry.InitialDelay,
		"retry.max_delay":     cv.config.Retry.MaxDelay,
		"monitor.interval":    cv.config.Monitor.Interval,
		"notify.timeout":      cv.config.Notify.Timeout,
	}
	for field, raw := range durations {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", field, err)
		}
		if d <= 0 {
			return fmt.Errorf("%s must be positive", field)
		}
	}
	return nil
}

func (cv *configurationValidator) validateIntegrations() error {
	if cv.config.Notify.Enabled && cv.config.Notify.URL == "" {
		return errors.New("notify.nats_url is required when notifications are enabled")
	}
	if cv.config.Storage.Driver == StorageDriverSQLite && cv.config.Storage.Path == "" {
		return errors.New("storage.path is required for the sqlite driver")
	}
	return nil
}
