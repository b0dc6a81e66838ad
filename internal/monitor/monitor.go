// Package monitor periodically audits the page trees of every site and
// optionally repairs numbering defects.
package monitor

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"

	"git.home.luguber.info/inful/pagetree/internal/foundation/errors"
	"git.home.luguber.info/inful/pagetree/internal/logfields"
	"git.home.luguber.info/inful/pagetree/internal/tree"
)

// Auditor is the part of the page service the monitor drives.
type Auditor interface {
	Sites() []string
	Check(ctx context.Context, site string) ([]tree.Violation, error)
	Repair(ctx context.Context, site string) (int, error)
}

// Report is the outcome of auditing one site.
type Report struct {
	Site       string
	Violations []tree.Violation
	// Rewritten is the number of nodes renumbered by a repair.
	Rewritten int
	Err       error
}

// Monitor runs Check, and Repair when enabled, on a fixed interval.
type Monitor struct {
	auditor   Auditor
	interval  time.Duration
	repair    bool
	logger    *slog.Logger
	scheduler gocron.Scheduler

	// mu guards interval, repair, job and last.
	mu   sync.Mutex
	job  gocron.Job
	last []Report
}

// New returns a stopped Monitor.
func New(auditor Auditor, interval time.Duration, repair bool, logger *slog.Logger) (*Monitor, error) {
	if auditor == nil {
		return nil, errors.InternalError("monitor requires an auditor").Build()
	}
	if interval <= 0 {
		return nil, errors.ValidationError("monitor interval must be positive").
			WithContext("interval", interval.String()).Build()
	}
	if logger == nil {
		logger = slog.Default()
	}
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryRuntime, "failed to create scheduler").Build()
	}
	return &Monitor{auditor: auditor, interval: interval, repair: repair, logger: logger, scheduler: s}, nil
}

// Start schedules the audit, running it once immediately. Runs never
// overlap; a run still in progress delays the next one.
func (m *Monitor) Start(ctx context.Context) error {
	interval := m.Interval()
	job, err := m.scheduler.NewJob(
		gocron.DurationJob(interval),
		m.task(ctx),
		m.jobOptions(gocron.WithStartAt(gocron.WithStartImmediately()))...,
	)
	if err != nil {
		return errors.WrapError(err, errors.CategoryRuntime, "failed to schedule tree audit").Build()
	}
	m.mu.Lock()
	m.job = job
	m.mu.Unlock()
	m.logger.Info("Starting tree monitor", slog.Duration("interval", interval), slog.Bool("repair", m.repairEnabled()))
	m.scheduler.Start()
	return nil
}

// Reconfigure changes the interval and repair mode. A started monitor is
// rescheduled; its next run follows the new interval.
func (m *Monitor) Reconfigure(ctx context.Context, interval time.Duration, repair bool) error {
	if interval <= 0 {
		return errors.ValidationError("monitor interval must be positive").
			WithContext("interval", interval.String()).Build()
	}
	m.mu.Lock()
	m.repair = repair
	job, current := m.job, m.interval
	m.mu.Unlock()

	if job != nil && interval != current {
		updated, err := m.scheduler.Update(job.ID(), gocron.DurationJob(interval), m.task(ctx), m.jobOptions()...)
		if err != nil {
			return errors.WrapError(err, errors.CategoryRuntime, "failed to reschedule tree audit").Build()
		}
		job = updated
	}
	m.mu.Lock()
	m.job, m.interval = job, interval
	m.mu.Unlock()
	m.logger.Info("Tree monitor reconfigured", slog.Duration("interval", interval), slog.Bool("repair", repair))
	return nil
}

// Interval returns the current audit interval.
func (m *Monitor) Interval() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.interval
}

func (m *Monitor) task(ctx context.Context) gocron.Task {
	return gocron.NewTask(func() { m.RunOnce(ctx) })
}

func (m *Monitor) jobOptions(extra ...gocron.JobOption) []gocron.JobOption {
	return append([]gocron.JobOption{
		gocron.WithName("tree-audit"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	}, extra...)
}

func (m *Monitor) repairEnabled() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.repair
}

// Stop shuts the scheduler down, waiting for a running audit.
func (m *Monitor) Stop() error {
	m.logger.Info("Stopping tree monitor")
	return m.scheduler.Shutdown()
}

// RunOnce audits every site and returns one report per site.
func (m *Monitor) RunOnce(ctx context.Context) []Report {
	sites := m.auditor.Sites()
	reports := make([]Report, 0, len(sites))
	for _, site := range sites {
		reports = append(reports, m.audit(ctx, site))
	}
	m.mu.Lock()
	m.last = reports
	m.mu.Unlock()
	return reports
}

// Last returns the reports of the most recent run.
func (m *Monitor) Last() []Report {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Report(nil), m.last...)
}

func (m *Monitor) audit(ctx context.Context, site string) Report {
	logger := m.logger.With(logfields.Site(site))
	r := Report{Site: site}

	r.Violations, r.Err = m.auditor.Check(ctx, site)
	if r.Err != nil {
		logger.Error("Tree audit failed", logfields.Error(r.Err))
		return r
	}
	if len(r.Violations) == 0 {
		logger.Debug("Tree audit clean")
		return r
	}
	for _, v := range r.Violations {
		logger.Warn("Tree invariant violated",
			logfields.Scope(string(v.Scope)),
			logfields.NodeID(v.NodeID),
			logfields.Path(v.Path),
			slog.String("kind", string(v.Kind)),
			slog.String("detail", v.Detail))
	}
	if !m.repairEnabled() {
		return r
	}

	if r.Rewritten, r.Err = m.auditor.Repair(ctx, site); r.Err != nil {
		logger.Error("Tree repair failed", logfields.Error(r.Err))
		return r
	}
	if r.Violations, r.Err = m.auditor.Check(ctx, site); r.Err != nil {
		logger.Error("Tree audit after repair failed", logfields.Error(r.Err))
		return r
	}
	logger.Info("Tree repaired", logfields.Count(r.Rewritten), slog.Int("remaining", len(r.Violations)))
	return r
}
