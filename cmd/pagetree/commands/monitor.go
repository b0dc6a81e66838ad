package commands

import (
	"context"
	stderrors "errors"
	"log/slog"
	"net"
	"net/http"
	"slices"
	"time"

	"git.home.luguber.info/inful/pagetree/internal/config"
	"git.home.luguber.info/inful/pagetree/internal/foundation/errors"
	"git.home.luguber.info/inful/pagetree/internal/metrics"
	"git.home.luguber.info/inful/pagetree/internal/monitor"
)

// MonitorCmd implements the 'monitor' command.
type MonitorCmd struct {
	Interval time.Duration `help:"Audit interval (default: monitor.interval)"`
	Repair   bool          `help:"Repair numbering defects (also enabled by monitor.repair)"`
	Watch    bool          `default:"true" negatable:"" help:"Apply monitor settings when the config file changes"`
}

const configReloadDebounce = 2 * time.Second

func (c *MonitorCmd) Run(g *Global, root *CLI) error {
	rt, err := openRuntime(g, root)
	if err != nil {
		return err
	}
	defer rt.Close()

	interval := c.Interval
	if interval <= 0 {
		interval = rt.cfg.MonitorInterval()
	}
	m, err := monitor.New(rt.service, interval, c.Repair || rt.cfg.Monitor.Repair, g.Logger)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	var srv *http.Server
	if rt.registry != nil {
		if srv, err = rt.serveMetrics(); err != nil {
			return err
		}
	}
	if err := m.Start(ctx); err != nil {
		return err
	}
	if c.Watch {
		w, err := config.NewWatcher(root.Config, configReloadDebounce, g.Logger, rt.monitorReloader(ctx, m, c))
		if err != nil {
			_ = m.Stop()
			return err
		}
		go w.Run(ctx)
	}
	<-ctx.Done()
	g.Logger.Info("Shutdown signal received, stopping monitor")

	stopErr := m.Stop()
	if srv != nil {
		shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
		defer stop()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			g.Logger.Warn("Metrics server shutdown failed", slog.Any("error", err))
		}
	}
	return stopErr
}

func (rt *runtime) serveMetrics() (*http.Server, error) {
	ln, err := net.Listen("tcp", rt.cfg.Metrics.Listen)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryRuntime, "failed to listen for metrics").
			WithContext("listen", rt.cfg.Metrics.Listen).Build()
	}
	mux := http.NewServeMux()
	mux.Handle(rt.cfg.Metrics.Path, metrics.HTTPHandler(rt.registry))
	srv := &http.Server{Handler: mux, ReadTimeout: 30 * time.Second, WriteTimeout: 30 * time.Second, IdleTimeout: 120 * time.Second}
	go func() {
		if err := srv.Serve(ln); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			rt.logger.Error("Metrics server failed", slog.Any("error", err))
		}
	}()
	rt.logger.Info("Serving metrics", slog.String("listen", ln.Addr().String()), slog.String("path", rt.cfg.Metrics.Path))
	return srv, nil
}

// monitorReloader applies a reloaded configuration to a running monitor.
// Flags given on the command line keep precedence over the file. Sites are
// bound to the open store and service, so a changed site list only takes
// effect after a restart.
func (rt *runtime) monitorReloader(ctx context.Context, m *monitor.Monitor, c *MonitorCmd) func(*config.Config) {
	return func(cfg *config.Config) {
		interval := c.Interval
		if interval <= 0 {
			interval = cfg.MonitorInterval()
		}
		if err := m.Reconfigure(ctx, interval, c.Repair || cfg.Monitor.Repair); err != nil {
			rt.logger.Error("Failed to apply reloaded monitor settings", slog.Any("error", err))
		}
		if !slices.Equal(siteIDs(rt.cfg), siteIDs(cfg)) {
			rt.logger.Warn("Site list changed; restart pagetree monitor to audit the new sites",
				slog.Any("running", siteIDs(rt.cfg)), slog.Any("configured", siteIDs(cfg)))
		}
	}
}

func siteIDs(cfg *config.Config) []string {
	ids := make([]string, len(cfg.Sites))
	for i, s := range cfg.Sites {
		ids[i] = s.ID
	}
	return ids
}
