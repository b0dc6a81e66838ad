package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const watchedConfig = `
version: "1.0"
storage:
  driver: memory
sites:
  - id: docs
    languages:
      - code: en
monitor:
  interval: %s
`

func writeWatched(t *testing.T, path, interval string) {
	t.Helper()
	data := []byte(fmt.Sprintf(watchedConfig, interval))
	require.NoError(t, os.WriteFile(path, data, 0o600))
}

func TestWatcherReloadsOnChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pagetree.yaml")
	writeWatched(t, path, "5m")

	var mu sync.Mutex
	var seen []time.Duration
	w, err := NewWatcher(path, 20*time.Millisecond, nil, func(cfg *Config) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, cfg.MonitorInterval())
	})
	require.NoError(t, err)

	go w.Run(t.Context())

	// A broken file is skipped; the next valid write is delivered.
	require.NoError(t, os.WriteFile(path, []byte("version: ["), 0o600))
	time.Sleep(100 * time.Millisecond)
	writeWatched(t, path, "30s")

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) > 0 && seen[len(seen)-1] == 30*time.Second
	}, 5*time.Second, 10*time.Millisecond)

	mu.Lock()
	for _, d := range seen {
		assert.Equal(t, 30*time.Second, d, "only valid configurations reach the callback")
	}
	mu.Unlock()
}

func TestWatcherStopsWithContext(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pagetree.yaml")
	writeWatched(t, path, "5m")

	w, err := NewWatcher(path, time.Millisecond, nil, func(*Config) {})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop after cancel")
	}
}
