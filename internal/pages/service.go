// Package pages is the boundary of the page tree: every operation runs in
// one store transaction under a per-site writer lock, is retried after a
// concurrent modification, and on commit emits lifecycle events, change
// notifications and metrics.
package pages

import (
	"context"
	stderrors "errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/pagetree/internal/config"
	"git.home.luguber.info/inful/pagetree/internal/eventstore"
	"git.home.luguber.info/inful/pagetree/internal/foundation/errors"
	"git.home.luguber.info/inful/pagetree/internal/foundation/normalization"
	"git.home.luguber.info/inful/pagetree/internal/logfields"
	"git.home.luguber.info/inful/pagetree/internal/metrics"
	"git.home.luguber.info/inful/pagetree/internal/model"
	"git.home.luguber.info/inful/pagetree/internal/notify"
	"git.home.luguber.info/inful/pagetree/internal/pathresolver"
	"git.home.luguber.info/inful/pagetree/internal/publisher"
	"git.home.luguber.info/inful/pagetree/internal/retry"
	"git.home.luguber.info/inful/pagetree/internal/store"
	"git.home.luguber.info/inful/pagetree/internal/tree"
	"git.home.luguber.info/inful/pagetree/internal/treepath"
)

// Option configures a Service.
type Option func(*Service)

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(s *Service) { s.recorder = r }
}

// WithEventStore enables the lifecycle event log and the publish history.
func WithEventStore(es eventstore.Store) Option {
	return func(s *Service) { s.events = es }
}

// WithNotifier sets the change notifier.
func WithNotifier(n notify.Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

// WithLogger sets the logger; slog.Default is used otherwise.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithRetryPolicy overrides the policy built from the retry configuration.
func WithRetryPolicy(p retry.Policy) Option {
	return func(s *Service) { s.policy = p }
}

// Service exposes the page tree operations of every configured site.
type Service struct {
	store     store.Store
	cfg       *config.Config
	codec     *treepath.Codec
	draft     *tree.Tree
	public    *tree.Tree
	resolver  *pathresolver.Resolver
	publisher *publisher.Publisher

	recorder metrics.Recorder
	events   eventstore.Store
	history  *eventstore.PublishHistory
	notifier notify.Notifier
	logger   *slog.Logger
	now      func() time.Time
	policy   retry.Policy

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New returns a Service over st configured by cfg.
func New(st store.Store, cfg *config.Config, opts ...Option) (*Service, error) {
	if st == nil || cfg == nil {
		return nil, errors.InternalError("pages service requires a store and a configuration").Build()
	}
	codec, err := cfg.Codec()
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "invalid tree codec").Build()
	}
	s := &Service{
		store:    st,
		cfg:      cfg,
		codec:    codec,
		recorder: metrics.NoopRecorder{},
		notifier: notify.NoopNotifier{},
		logger:   slog.Default(),
		now:      time.Now,
		policy:   retry.FromConfig(cfg.Retry),
		locks:    make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.events != nil {
		s.history = eventstore.NewPublishHistory(s.events, 0)
	}
	s.draft = tree.New(model.ScopeDraft, codec)
	s.public = tree.New(model.ScopePublic, codec)
	s.resolver = pathresolver.New(codec, cfg)
	s.publisher = publisher.New(codec, s.resolver, publisher.WithClock(s.now))
	return s, nil
}

// Config returns the configuration the service was built with.
func (s *Service) Config() *config.Config { return s.cfg }

// record collects the side effects of one attempt of an operation. They are
// only delivered once the transaction committed.
type record struct {
	events   []pendingEvent
	notices  []notify.Change
	cascaded int
}

type pendingEvent struct {
	eventType string
	change    eventstore.PageChange
}

func (r *record) event(eventType string, change eventstore.PageChange) {
	r.events = append(r.events, pendingEvent{eventType: eventType, change: change})
}

func (r *record) notify(change notify.Change) {
	if len(change.Paths) == 0 {
		return
	}
	r.notices = append(r.notices, change)
}

func (s *Service) siteLock(site string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[site]
	if !ok {
		l = &sync.Mutex{}
		s.locks[site] = l
	}
	return l
}

func (s *Service) checkSite(site string) error {
	if _, ok := s.cfg.Site(site); !ok {
		return ErrUnknownSite.WithContext("site", site)
	}
	return nil
}

func (s *Service) checkLanguage(site, language string) (string, error) {
	if err := s.checkSite(site); err != nil {
		return "", err
	}
	language = normalization.LanguageCode(language)
	if !s.cfg.HasLanguage(site, language) {
		return "", ErrUnknownLanguage.WithContext("site", site).WithContext("language", language)
	}
	return language, nil
}

// write runs fn in a write transaction of site, retrying the whole attempt
// after a concurrent modification. Side effects recorded by the successful
// attempt are delivered after commit.
func (s *Service) write(ctx context.Context, op, site string, fn func(tx store.Tx, rec *record) error) error {
	if err := s.checkSite(site); err != nil {
		return err
	}
	opID := uuid.NewString()
	logger := s.logger.With(logfields.Operation(op), logfields.OperationID(opID), logfields.Site(site))

	lock := s.siteLock(site)
	lock.Lock()
	defer lock.Unlock()

	start := time.Now()
	var rec *record
	err := retry.Do(ctx, s.policy, func(ctx context.Context) error {
		rec = &record{}
		return s.store.Update(ctx, site, func(tx store.Tx) error {
			return fn(tx, rec)
		})
	}, func(attempt int, err error) {
		s.recorder.IncRetry(op)
		logger.Warn("Retrying page operation", logfields.Attempt(attempt), logfields.Error(err))
	})
	elapsed := time.Since(start)
	s.recorder.ObserveOperation(op, elapsed)
	s.recorder.IncOperationResult(op, resultLabel(err))

	if err != nil {
		level := slog.LevelError
		if resultLabel(err) != metrics.ResultFailed {
			level = slog.LevelWarn
		}
		logger.Log(ctx, level, "Page operation failed", logfields.Error(err), logfields.DurationMS(float64(elapsed.Microseconds())/1000))
		return err
	}

	s.recorder.AddCascade(op, rec.cascaded)
	logger.Info("Page operation committed", logfields.Count(rec.cascaded), logfields.DurationMS(float64(elapsed.Microseconds())/1000))
	s.deliver(ctx, logger, opID, rec)
	return nil
}

// deliver appends events and sends notifications for a committed operation.
// The operation already happened, so failures are logged rather than returned.
func (s *Service) deliver(ctx context.Context, logger *slog.Logger, opID string, rec *record) {
	if s.events != nil {
		for _, pe := range rec.events {
			entry, err := eventstore.NewRecord(opID, pe.eventType, pe.change)
			if err == nil {
				err = s.events.Append(ctx, entry)
			}
			if err == nil {
				err = s.history.Apply(entry)
			}
			if err != nil {
				logger.Error("Failed to record page event", slog.String("type", pe.eventType), logfields.Error(err))
			}
		}
	}
	for _, change := range rec.notices {
		change.OperationID = opID
		change.At = s.now().UTC()
		if err := s.notifier.Notify(ctx, change); err != nil {
			logger.Warn("Failed to send change notification", slog.String("kind", string(change.Kind)), logfields.Error(err))
		}
	}
}

// read runs fn in a read-only transaction of site.
func (s *Service) read(ctx context.Context, site string, fn func(tx store.Tx) error) error {
	if err := s.checkSite(site); err != nil {
		return err
	}
	return s.store.View(ctx, site, fn)
}

func resultLabel(err error) metrics.ResultLabel {
	switch {
	case err == nil:
		return metrics.ResultSuccess
	case stderrors.Is(err, context.Canceled), stderrors.Is(err, context.DeadlineExceeded):
		return metrics.ResultCanceled
	}
	if ce, ok := errors.AsClassified(err); ok {
		switch ce.RetryStrategy() {
		case errors.RetryUserAction:
			return metrics.ResultRejected
		}
		switch ce.Category() {
		case errors.CategoryNotFound, errors.CategoryAlreadyExists:
			return metrics.ResultRejected
		}
	}
	return metrics.ResultFailed
}

// transitionRecords converts publisher transitions for the event log.
func transitionRecords(ts []publisher.Transition) []eventstore.TransitionRecord {
	if len(ts) == 0 {
		return nil
	}
	out := make([]eventstore.TransitionRecord, len(ts))
	for i, t := range ts {
		out[i] = eventstore.TransitionRecord{PageID: t.PageID, Language: t.Language, From: string(t.From), To: string(t.To)}
	}
	return out
}

// targetNode maps a target page id to its draft node id; 0 stays 0 (root level).
func targetNode(tx store.Tx, targetPageID int64) (int64, error) {
	if targetPageID == 0 {
		return 0, nil
	}
	target, err := tx.DraftPage(targetPageID)
	if err != nil {
		return 0, err
	}
	return target.NodeID, nil
}

// publicPaths returns the public paths of the draft subtree rooted at
// pageID, in language or in every language when language is empty.
// Hidden public versions are included: their paths stop resolving.
func (s *Service) publicPaths(tx store.Tx, pageID int64, language string, subtree bool) ([]string, error) {
	page, err := tx.DraftPage(pageID)
	if err != nil {
		return nil, err
	}
	if !page.HasPublic() {
		return nil, nil
	}
	pub, err := tx.PublicPage(*page.PublicID)
	if err != nil {
		return nil, err
	}
	root, err := tx.Node(pub.NodeID)
	if err != nil {
		return nil, err
	}
	nodes := []*model.TreeNode{root}
	if subtree {
		if nodes, err = tx.Nodes(store.NodeQuery{Scope: model.ScopePublic, PathPrefix: root.Path}); err != nil {
			return nil, err
		}
	}
	var paths []string
	for _, n := range nodes {
		pp, err := tx.PublicPageByNode(n.ID)
		if stderrors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		versions, err := tx.Versions(store.VersionQuery{Scope: model.ScopePublic, PageID: pp.ID, Language: language})
		if err != nil {
			return nil, err
		}
		for _, v := range versions {
			paths = append(paths, v.Path)
		}
	}
	return paths, nil
}

// transitionPaths returns the public paths of the pages a publisher result touched.
func (s *Service) transitionPaths(tx store.Tx, res *publisher.Result) ([]string, error) {
	seen := make(map[string]struct{})
	var paths []string
	for _, t := range res.Transitions {
		ps, err := s.publicPaths(tx, t.PageID, t.Language, false)
		if err != nil {
			return nil, err
		}
		for _, p := range ps {
			if _, dup := seen[p]; !dup {
				seen[p] = struct{}{}
				paths = append(paths, p)
			}
		}
	}
	return paths, nil
}

func mergePaths(a, b []string) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, p := range append(append([]string(nil), a...), b...) {
		if _, dup := seen[p]; !dup {
			seen[p] = struct{}{}
			out = append(out, p)
		}
	}
	return out
}
