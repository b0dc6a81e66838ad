package config

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/pagetree/internal/foundation/errors"
)

// Watcher reloads a configuration file when it changes on disk and hands
// every successfully loaded Config to a callback. A file that fails to load
// is logged and the previous configuration stays in effect.
type Watcher struct {
	path     string
	debounce time.Duration
	logger   *slog.Logger
	onChange func(*Config)
	fsw      *fsnotify.Watcher
}

// NewWatcher watches the directory of path, since editors commonly replace
// a file by rename rather than writing it in place.
func NewWatcher(path string, debounce time.Duration, logger *slog.Logger, onChange func(*Config)) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to resolve config path").
			WithContext("path", path).Build()
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryRuntime, "failed to create file watcher").Build()
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		_ = fsw.Close()
		return nil, errors.WrapError(err, errors.CategoryRuntime, "failed to watch config directory").
			WithContext("dir", filepath.Dir(abs)).Build()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{path: abs, debounce: debounce, logger: logger, onChange: onChange, fsw: fsw}, nil
}

// Run processes file events until ctx is done, then closes the watcher.
// Bursts of events within the debounce window cause one reload.
func (w *Watcher) Run(ctx context.Context) {
	defer func() { _ = w.fsw.Close() }()

	name := filepath.Base(w.path)
	reload := time.NewTimer(w.debounce)
	reload.Stop()
	defer reload.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Base(ev.Name) != name {
				continue
			}
			if ev.Has(fsnotify.Remove) {
				w.logger.Warn("Config file removed", slog.String("path", w.path))
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
				reload.Reset(w.debounce)
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Error("Config watcher error", slog.Any("error", err))
		case <-reload.C:
			cfg, err := Load(w.path)
			if err != nil {
				w.logger.Error("Config reload failed, keeping previous configuration",
					slog.String("path", w.path), slog.Any("error", err))
				continue
			}
			w.logger.Info("Configuration reloaded", slog.String("path", w.path))
			w.onChange(cfg)
		}
	}
}
