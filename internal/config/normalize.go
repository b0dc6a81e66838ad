package config

import (
	"fmt"
	"strings"

	"git.home.luguber.info/inful/pagetree/internal/foundation/normalization"
)

// NormalizationResult captures adjustments & warnings from normalization pass.
type NormalizationResult struct{ Warnings []string }

// NormalizeConfig canonicalizes enumerations, language codes and bounds
// before defaults are applied. It mutates c in place.
func NormalizeConfig(c *Config) (*NormalizationResult, error) {
	if c == nil {
		return nil, fmt.Errorf("config nil")
	}
	res := &NormalizationResult{}
	if err := normalizeStorage(&c.Storage, res); err != nil {
		return nil, err
	}
	normalizeRetry(&c.Retry, res)
	normalizeLogging(&c.Logging, res)
	for i := range c.Sites {
		normalizeSite(&c.Sites[i])
	}
	return res, nil
}

func normalizeStorage(s *StorageConfig, res *NormalizationResult) error {
	if strings.TrimSpace(string(s.Driver)) == "" {
		return nil
	}
	d, err := NormalizeStorageDriver(string(s.Driver))
	if err != nil {
		return err
	}
	if d != s.Driver {
		res.Warnings = append(res.Warnings, warnChanged("storage.driver", s.Driver, d))
		s.Driver = d
	}
	return nil
}

func normalizeRetry(r *RetryConfig, res *NormalizationResult) {
	if rb := NormalizeRetryBackoff(string(r.Backoff)); rb != "" {
		if r.Backoff != rb {
			res.Warnings = append(res.Warnings, warnChanged("retry.backoff", r.Backoff, rb))
			r.Backoff = rb
		}
	} else if strings.TrimSpace(string(r.Backoff)) != "" {
		res.Warnings = append(res.Warnings, warnUnknown("retry.backoff", string(r.Backoff), string(RetryBackoffExponential)))
		r.Backoff = RetryBackoffExponential
	}
	if r.MaxRetries < 0 {
		r.MaxRetries = 0
	}
}

func normalizeLogging(l *LoggingConfig, res *NormalizationResult) {
	if raw := strings.TrimSpace(string(l.Level)); raw != "" {
		if lvl := NormalizeLogLevel(raw); lvl != l.Level {
			res.Warnings = append(res.Warnings, warnChanged("logging.level", l.Level, lvl))
			l.Level = lvl
		}
	}
	if raw := strings.TrimSpace(string(l.Format)); raw != "" {
		if f := NormalizeLogFormat(raw); f != l.Format {
			res.Warnings = append(res.Warnings, warnChanged("logging.format", l.Format, f))
			l.Format = f
		}
	}
}

// normalizeSite trims identifiers and lower-cases language codes so that
// lookups are case-insensitive.
func normalizeSite(s *SiteConfig) {
	s.ID = strings.TrimSpace(s.ID)
	s.DefaultLanguage = normalizeLanguage(s.DefaultLanguage)
	for i := range s.Languages {
		l := &s.Languages[i]
		l.Code = normalizeLanguage(l.Code)
		for j := range l.Fallbacks {
			l.Fallbacks[j] = normalizeLanguage(l.Fallbacks[j])
		}
	}
}

func normalizeLanguage(code string) string {
	return normalization.LanguageCode(code)
}

func warnChanged[T ~string](field string, from, to T) string {
	return fmt.Sprintf("normalized %s from '%s' to '%s'", field, string(from), string(to))
}

func warnUnknown(field, value, def string) string {
	return fmt.Sprintf("unknown %s '%s', using default '%s'", field, value, def)
}
