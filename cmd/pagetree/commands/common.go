// Package commands implements the pagetree command line.
package commands

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/pagetree/internal/config"
	"git.home.luguber.info/inful/pagetree/internal/eventstore"
	"git.home.luguber.info/inful/pagetree/internal/foundation/errors"
	"git.home.luguber.info/inful/pagetree/internal/metrics"
	"git.home.luguber.info/inful/pagetree/internal/notify"
	"git.home.luguber.info/inful/pagetree/internal/pages"
	"git.home.luguber.info/inful/pagetree/internal/store"
)

// Global holds state shared by every command.
type Global struct {
	Logger *slog.Logger
}

// CLI definition and global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"pagetree.yaml" env:"PAGETREE_CONFIG"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Check   CheckCmd   `cmd:"" help:"Audit the draft and public trees of every site"`
	Tree    TreeCmd    `cmd:"" help:"Print the draft tree of a site with paths and publish states"`
	Resolve ResolveCmd `cmd:"" help:"Resolve a public path to the page serving it"`
	History HistoryCmd `cmd:"" help:"Show the publish history of a page language"`
	Monitor MonitorCmd `cmd:"" help:"Run the periodic tree audit and serve metrics"`
}

// AfterApply runs after flag parsing; a provisional logger is installed
// until the configuration is loaded.
func (c *CLI) AfterApply(g *Global) error {
	g.Logger = newLogger(os.Stderr, config.LogLevelInfo, config.LogFormatText, c.Verbose)
	slog.SetDefault(g.Logger)
	return nil
}

func newLogger(w io.Writer, level config.LogLevel, format config.LogFormat, verbose bool) *slog.Logger {
	var lvl slog.Level
	switch level {
	case config.LogLevelDebug:
		lvl = slog.LevelDebug
	case config.LogLevelWarn:
		lvl = slog.LevelWarn
	case config.LogLevelError:
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	if verbose {
		lvl = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if format == config.LogFormatJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// runtime is the page service and the resources behind it.
type runtime struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    store.Store
	events   eventstore.Store
	notifier notify.Notifier
	registry *prom.Registry
	service  *pages.Service
}

// openRuntime loads the configuration and wires the page service to the
// configured store, event log, notifier and metrics registry.
func openRuntime(g *Global, root *CLI) (*runtime, error) {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return nil, err
	}
	g.Logger = newLogger(os.Stderr, cfg.Logging.Level, cfg.Logging.Format, root.Verbose)
	slog.SetDefault(g.Logger)

	rt := &runtime{cfg: cfg, logger: g.Logger}
	ok := false
	defer func() {
		if !ok {
			rt.Close()
		}
	}()

	switch cfg.Storage.Driver {
	case config.StorageDriverMemory:
		rt.store = store.NewMemoryStore()
	default:
		st, err := store.NewSQLiteStore(cfg.Storage.Path)
		if err != nil {
			return nil, err
		}
		rt.store = st
	}

	opts := []pages.Option{pages.WithLogger(g.Logger)}
	if cfg.Events.Enabled {
		es, err := eventstore.NewSQLiteStore(cfg.Events.Path)
		if err != nil {
			return nil, err
		}
		rt.events = es
		opts = append(opts, pages.WithEventStore(es))
	}
	if cfg.Notify.Enabled {
		n, err := notify.NewNATSNotifier(cfg)
		if err != nil {
			return nil, err
		}
		rt.notifier = n
		opts = append(opts, pages.WithNotifier(n))
	}
	if cfg.Metrics.Enabled {
		rt.registry = prom.NewRegistry()
		opts = append(opts, pages.WithRecorder(metrics.NewPrometheusRecorder(rt.registry)))
	}

	if rt.service, err = pages.New(rt.store, cfg, opts...); err != nil {
		return nil, err
	}
	ok = true
	return rt, nil
}

// Close releases the runtime's resources, logging failures.
func (rt *runtime) Close() {
	closers := []struct {
		name string
		c    io.Closer
	}{{"notifier", rt.notifier}, {"event store", rt.events}, {"store", rt.store}}
	for _, c := range closers {
		if c.c == nil {
			continue
		}
		if err := c.c.Close(); err != nil {
			rt.logger.Warn("Failed to close resource", slog.String("resource", c.name), slog.Any("error", err))
		}
	}
}

// sites returns only when it is configured, or every site.
func (rt *runtime) sites(only string) ([]string, error) {
	if only == "" {
		return rt.service.Sites(), nil
	}
	if _, ok := rt.cfg.Site(only); !ok {
		return nil, pages.ErrUnknownSite.WithContext("site", only)
	}
	return []string{only}, nil
}

// defaultSite picks the site for single-site commands.
func (rt *runtime) defaultSite(site string) (string, error) {
	if site != "" {
		return site, nil
	}
	ids := rt.service.Sites()
	if len(ids) != 1 {
		return "", errors.ValidationError("--site is required when several sites are configured").Build()
	}
	return ids[0], nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
