package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/pagetree/internal/foundation/errors"
	"git.home.luguber.info/inful/pagetree/internal/treepath"
)

const sampleConfig = `
version: "1.0"
storage:
  driver: SQLite
  path: ${PAGETREE_TEST_DB}
sites:
  - id: main
    languages:
      - code: EN
      - code: de
        fallbacks: [en]
      - code: fr
retry:
  backoff: Linear
logging:
  level: DEBUG
notify:
  enabled: true
  nats_url: nats://localhost:4222
monitor:
  interval: 30s
`

func TestParseAppliesNormalizationAndDefaults(t *testing.T) {
	t.Setenv("PAGETREE_TEST_DB", "/tmp/pages.db")

	cfg, err := Parse([]byte(sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, StorageDriverSQLite, cfg.Storage.Driver)
	assert.Equal(t, "/tmp/pages.db", cfg.Storage.Path)
	assert.Equal(t, RetryBackoffLinear, cfg.Retry.Backoff)
	assert.Equal(t, 3, cfg.Retry.MaxRetries)
	assert.Equal(t, LogLevelDebug, cfg.Logging.Level)
	assert.Equal(t, LogFormatText, cfg.Logging.Format)
	assert.Equal(t, treepath.DefaultAlphabet, cfg.Tree.Alphabet)
	assert.Equal(t, treepath.DefaultStepLen, cfg.Tree.StepLen)
	assert.Equal(t, 30*time.Second, cfg.MonitorInterval())
	assert.Equal(t, defaultNotifyTimeout, cfg.NotifyTimeout())
	assert.Equal(t, "pagetree.changes", cfg.Notify.SubjectPrefix)

	site, ok := cfg.Site("main")
	require.True(t, ok)
	assert.Equal(t, "en", site.DefaultLanguage)
	assert.Equal(t, "main", site.Name)
}

func TestFallbacks(t *testing.T) {
	t.Setenv("PAGETREE_TEST_DB", "pages.db")
	cfg, err := Parse([]byte(sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, []string{"en"}, cfg.Fallbacks("main", "de"))
	assert.Equal(t, []string{"en"}, cfg.Fallbacks("main", "fr"), "default language is the implicit fallback")
	assert.Empty(t, cfg.Fallbacks("main", "en"))
	assert.Empty(t, cfg.Fallbacks("main", "xx"))
	assert.Empty(t, cfg.Fallbacks("other", "de"))

	assert.True(t, cfg.HasLanguage("main", "DE"))
	assert.False(t, cfg.HasLanguage("main", "it"))
}

func TestParseRejectsInvalidConfigs(t *testing.T) {
	tests := map[string]string{
		"version":          `version: "0.9"`,
		"no sites":         `version: "1.0"`,
		"unknown fallback": "version: \"1.0\"\nsites:\n  - id: a\n    languages:\n      - code: en\n        fallbacks: [de]\n",
		"self fallback":    "version: \"1.0\"\nsites:\n  - id: a\n    languages:\n      - code: en\n        fallbacks: [en]\n",
		"duplicate site":   "version: \"1.0\"\nsites:\n  - id: a\n    default_language: en\n  - id: a\n    default_language: en\n",
		"bad alphabet":     "version: \"1.0\"\nsites:\n  - id: a\n    default_language: en\ntree:\n  alphabet: \"ba\"\n",
		"bad duration":     "version: \"1.0\"\nsites:\n  - id: a\n    default_language: en\nmonitor:\n  interval: soon\n",
		"notify no url":    "version: \"1.0\"\nsites:\n  - id: a\n    default_language: en\nnotify:\n  enabled: true\n",
		"unknown driver":   "version: \"1.0\"\nstorage:\n  driver: postgres\nsites:\n  - id: a\n    default_language: en\n",
	}
	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(raw))
			require.Error(t, err)
			assert.Equal(t, errors.CategoryConfig, errors.GetCategory(err))
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryConfig))
}

func TestLoadReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pagetree.yaml")
	require.NoError(t, os.WriteFile(path, []byte("version: \"1.0\"\nstorage:\n  driver: memory\nsites:\n  - id: docs\n    default_language: en\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, StorageDriverMemory, cfg.Storage.Driver)
	assert.Empty(t, cfg.Storage.Path)
	assert.Equal(t, []string{"docs"}, cfg.SiteIDs())

	codec, err := cfg.Codec()
	require.NoError(t, err)
	assert.Equal(t, treepath.Default.Max(), codec.Max())
}
