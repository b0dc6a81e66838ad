// Package publisher implements the per-language draft/public state machine:
// publishing copies a draft onto its public counterpart, unpublishing hides
// it, and both cascade through the subtree so that a page is never visible
// while its parent is not.
//
// Every function takes the caller's transaction and returns the transitions
// it made. Nothing here commits, logs, or emits events.
package publisher

import (
	stderrors "errors"
	"time"

	"git.home.luguber.info/inful/pagetree/internal/foundation/errors"
	"git.home.luguber.info/inful/pagetree/internal/model"
	"git.home.luguber.info/inful/pagetree/internal/pathresolver"
	"git.home.luguber.info/inful/pagetree/internal/store"
	"git.home.luguber.info/inful/pagetree/internal/tree"
	"git.home.luguber.info/inful/pagetree/internal/treepath"
)

var (
	// ErrNoDraftContent is returned when publishing a language the draft has no version for.
	ErrNoDraftContent = errors.PublishError("no draft content for language").Build()

	// ErrNotPublished is returned when unpublishing a page that is not public.
	ErrNotPublished = errors.PublishError("page is not published in language").Build()

	// ErrNoPublicVersion is returned by RevertToLive when there is nothing to revert to.
	ErrNoPublicVersion = errors.PublishError("no public version to revert to").Build()
)

// Transition records one state change of a (page, language) pair.
type Transition struct {
	PageID   int64              `json:"page_id"`
	Language string             `json:"language"`
	From     model.PublishState `json:"from"`
	To       model.PublishState `json:"to"`
}

// Result is the outcome of a publisher call: the resulting state of the
// requested page and every transition made, the requested page's first.
type Result struct {
	PageID      int64              `json:"page_id"`
	Language    string             `json:"language,omitempty"`
	State       model.PublishState `json:"state,omitempty"`
	Transitions []Transition       `json:"transitions"`
}

func (r *Result) record(pageID int64, language string, from, to model.PublishState) {
	if from == to {
		return
	}
	r.Transitions = append(r.Transitions, Transition{PageID: pageID, Language: language, From: from, To: to})
}

// Cascaded is the number of transitions on pages other than the requested one.
func (r *Result) Cascaded() int {
	n := 0
	for _, t := range r.Transitions {
		if t.PageID != r.PageID {
			n++
		}
	}
	return n
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithClock overrides the time source used for creation dates.
func WithClock(now func() time.Time) Option {
	return func(p *Publisher) { p.now = now }
}

// Publisher drives the state machine over the draft and public trees of a site.
type Publisher struct {
	draft    *tree.Tree
	public   *tree.Tree
	resolver *pathresolver.Resolver
	now      func() time.Time
}

// New returns a Publisher using codec for both scopes.
func New(codec *treepath.Codec, resolver *pathresolver.Resolver, opts ...Option) *Publisher {
	p := &Publisher{
		draft:    tree.New(model.ScopeDraft, codec),
		public:   tree.New(model.ScopePublic, codec),
		resolver: resolver,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// State returns the state of pageID in language.
func (p *Publisher) State(tx store.Tx, pageID int64, language string) (model.PublishState, error) {
	dv, err := tx.VersionFor(model.ScopeDraft, pageID, language)
	if err != nil {
		return "", err
	}
	return dv.State, nil
}

// Publish makes pageID public in language. When the parent page is not
// visible in language the page becomes pending instead and no public copy
// is made. On success every pending child is published too, depth first.
func (p *Publisher) Publish(tx store.Tx, pageID int64, language string) (*Result, error) {
	res := &Result{PageID: pageID, Language: language}
	state, err := p.publish(tx, pageID, language, res)
	if err != nil {
		return nil, err
	}
	res.State = state
	return res, nil
}

func (p *Publisher) publish(tx store.Tx, pageID int64, language string, res *Result) (model.PublishState, error) {
	draft, err := tx.DraftPage(pageID)
	if err != nil {
		return "", err
	}
	dv, err := tx.VersionFor(model.ScopeDraft, pageID, language)
	if stderrors.Is(err, store.ErrNotFound) {
		return "", ErrNoDraftContent.WithContext("page_id", pageID).WithContext("language", language)
	}
	if err != nil {
		return "", err
	}
	from := dv.State

	visible, err := p.parentVisible(tx, draft, language)
	if err != nil {
		return "", err
	}
	if !visible {
		if err := p.suspend(tx, draft, dv, model.StatePending, res); err != nil {
			return "", err
		}
		return model.StatePending, nil
	}

	pub, err := p.ensurePublicPage(tx, draft)
	if err != nil {
		return "", err
	}
	if err := p.copyVersion(tx, pub, dv); err != nil {
		return "", err
	}
	if _, err := p.resolver.RecomputeSubtree(tx, model.ScopePublic, pub.ID, "", false); err != nil {
		return "", err
	}

	dv.Published = true
	dv.State = model.StatePublished
	if err := tx.UpdateVersion(dv); err != nil {
		return "", err
	}
	res.record(pageID, language, from, model.StatePublished)

	children, err := p.childPages(tx, draft)
	if err != nil {
		return "", err
	}
	for _, child := range children {
		cv, err := tx.VersionFor(model.ScopeDraft, child.ID, language)
		if stderrors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return "", err
		}
		if cv.State != model.StatePending {
			continue
		}
		if _, err := p.publish(tx, child.ID, language, res); err != nil {
			return "", err
		}
	}
	return model.StatePublished, nil
}

// copyVersion writes the draft version dv onto pub's version of the same
// language, creating it when missing, and makes it visible.
func (p *Publisher) copyVersion(tx store.Tx, pub *model.PublicPage, dv *model.ContentVersion) error {
	pv, err := tx.VersionFor(model.ScopePublic, pub.ID, dv.Language)
	isNew := stderrors.Is(err, store.ErrNotFound)
	if err != nil && !isNew {
		return err
	}
	if isNew {
		pv = &model.ContentVersion{
			PageID:       pub.ID,
			Scope:        model.ScopePublic,
			Site:         pub.Site,
			Language:     dv.Language,
			CreationDate: p.now(),
		}
	}
	pv.CopyContentFrom(dv)
	pv.Published = true
	pv.State = model.StatePublished

	path, err := p.resolver.ComputePath(tx, pv)
	if err != nil {
		return err
	}
	if err := p.resolver.ValidateUniqueness(tx, model.ScopePublic, path, pv.Language, pv.ID); err != nil {
		return err
	}
	pv.Path = path
	if isNew {
		return tx.InsertVersion(pv)
	}
	return tx.UpdateVersion(pv)
}

// Unpublish hides pageID's public version in language and moves every
// visible descendant to pending. Public versions are kept for revert.
// Descendants that are never_published, pending or unpublished keep their
// state, since pending only applies to pages that were public at some point.
func (p *Publisher) Unpublish(tx store.Tx, pageID int64, language string) (*Result, error) {
	draft, err := tx.DraftPage(pageID)
	if err != nil {
		return nil, err
	}
	dv, err := tx.VersionFor(model.ScopeDraft, pageID, language)
	if stderrors.Is(err, store.ErrNotFound) {
		return nil, ErrNotPublished.WithContext("page_id", pageID).WithContext("language", language)
	}
	if err != nil {
		return nil, err
	}
	if !dv.State.WantsPublic() {
		return nil, ErrNotPublished.WithContext("page_id", pageID).WithContext("state", string(dv.State))
	}

	res := &Result{PageID: pageID, Language: language, State: model.StateUnpublished}
	if err := p.suspend(tx, draft, dv, model.StateUnpublished, res); err != nil {
		return nil, err
	}
	return res, nil
}

// suspend moves dv to state (pending or unpublished), hides its public
// version and moves visible descendants to pending. Descendants that are
// already hidden keep their state.
func (p *Publisher) suspend(tx store.Tx, draft *model.DraftPage, dv *model.ContentVersion, state model.PublishState, res *Result) error {
	wasVisible := dv.State.Visible()
	from := dv.State
	dv.State = state
	dv.Published = state == model.StatePending
	if err := tx.UpdateVersion(dv); err != nil {
		return err
	}
	res.record(draft.ID, dv.Language, from, state)
	if err := p.hidePublic(tx, draft, dv.Language, state); err != nil {
		return err
	}
	if !wasVisible {
		return nil
	}
	return p.suspendDescendants(tx, draft, dv.Language, res)
}

func (p *Publisher) suspendDescendants(tx store.Tx, draft *model.DraftPage, language string, res *Result) error {
	descendants, err := p.descendantPages(tx, draft)
	if err != nil {
		return err
	}
	for _, d := range descendants {
		v, err := tx.VersionFor(model.ScopeDraft, d.ID, language)
		if stderrors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return err
		}
		if !v.State.Visible() {
			continue
		}
		from := v.State
		v.State = model.StatePending
		if err := tx.UpdateVersion(v); err != nil {
			return err
		}
		res.record(d.ID, language, from, model.StatePending)
		if err := p.hidePublic(tx, d, language, model.StatePending); err != nil {
			return err
		}
	}
	return nil
}

func (p *Publisher) hidePublic(tx store.Tx, draft *model.DraftPage, language string, state model.PublishState) error {
	if !draft.HasPublic() {
		return nil
	}
	pv, err := tx.VersionFor(model.ScopePublic, *draft.PublicID, language)
	if stderrors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if !pv.Published && pv.State == state {
		return nil
	}
	pv.Published = false
	pv.State = state
	return tx.UpdateVersion(pv)
}

// RevertToLive overwrites the draft version of language with the public
// version's content, discarding unpublished edits.
func (p *Publisher) RevertToLive(tx store.Tx, pageID int64, language string) (*Result, error) {
	draft, err := tx.DraftPage(pageID)
	if err != nil {
		return nil, err
	}
	if !draft.HasPublic() {
		return nil, ErrNoPublicVersion.WithContext("page_id", pageID)
	}
	pv, err := tx.VersionFor(model.ScopePublic, *draft.PublicID, language)
	if stderrors.Is(err, store.ErrNotFound) {
		return nil, ErrNoPublicVersion.WithContext("page_id", pageID).WithContext("language", language)
	}
	if err != nil {
		return nil, err
	}

	dv, err := tx.VersionFor(model.ScopeDraft, pageID, language)
	isNew := stderrors.Is(err, store.ErrNotFound)
	if err != nil && !isNew {
		return nil, err
	}
	if isNew {
		dv = &model.ContentVersion{
			PageID:       pageID,
			Scope:        model.ScopeDraft,
			Site:         draft.Site,
			Language:     language,
			State:        model.StateNeverPublished,
			CreationDate: p.now(),
		}
	}

	from := dv.State
	dv.CopyContentFrom(pv)
	switch {
	case pv.Published:
		dv.State = model.StatePublished
	case from == model.StatePending:
		dv.State = model.StatePending
	default:
		dv.State = model.StateUnpublished
	}
	dv.Published = dv.State.WantsPublic()

	path, err := p.resolver.ComputePath(tx, dv)
	if err != nil {
		return nil, err
	}
	if err := p.resolver.ValidateUniqueness(tx, model.ScopeDraft, path, language, dv.ID); err != nil {
		return nil, err
	}
	dv.Path = path
	if isNew {
		err = tx.InsertVersion(dv)
	} else {
		err = tx.UpdateVersion(dv)
	}
	if err != nil {
		return nil, err
	}
	if _, err := p.resolver.RecomputeSubtree(tx, model.ScopeDraft, pageID, "", false); err != nil {
		return nil, err
	}

	res := &Result{PageID: pageID, Language: language, State: dv.State}
	res.record(pageID, language, from, dv.State)
	return res, nil
}

// MarkDirty updates the state of an edited draft version in place: a
// visible version whose fingerprint differs from its public copy is dirty,
// and one that matches again is published. Descendants are not affected.
// The caller stores dv.
func (p *Publisher) MarkDirty(tx store.Tx, dv *model.ContentVersion) (*Transition, error) {
	if !dv.State.Visible() {
		return nil, nil
	}
	draft, err := tx.DraftPage(dv.PageID)
	if err != nil {
		return nil, err
	}
	want := model.StateDirty
	if draft.HasPublic() {
		pv, err := tx.VersionFor(model.ScopePublic, *draft.PublicID, dv.Language)
		if err != nil && !stderrors.Is(err, store.ErrNotFound) {
			return nil, err
		}
		if err == nil && pv.Fingerprint == dv.Fingerprint {
			want = model.StatePublished
		}
	}
	if dv.State == want {
		return nil, nil
	}
	t := &Transition{PageID: dv.PageID, Language: dv.Language, From: dv.State, To: want}
	dv.State = want
	return t, nil
}

// DeleteTranslation removes the draft and public versions of language.
// When the public version was visible, descendants go pending as on
// unpublish. Descendant paths are recomputed in both scopes.
func (p *Publisher) DeleteTranslation(tx store.Tx, pageID int64, language string) (*Result, error) {
	draft, err := tx.DraftPage(pageID)
	if err != nil {
		return nil, err
	}
	dv, err := tx.VersionFor(model.ScopeDraft, pageID, language)
	if err != nil {
		return nil, err
	}

	res := &Result{PageID: pageID, Language: language}
	wasVisible := dv.State.Visible()
	if draft.HasPublic() {
		pv, err := tx.VersionFor(model.ScopePublic, *draft.PublicID, language)
		switch {
		case err == nil:
			if err := tx.DeleteVersion(pv.ID); err != nil {
				return nil, err
			}
		case !stderrors.Is(err, store.ErrNotFound):
			return nil, err
		}
	}
	if err := tx.DeleteVersion(dv.ID); err != nil {
		return nil, err
	}
	if wasVisible {
		if err := p.suspendDescendants(tx, draft, language, res); err != nil {
			return nil, err
		}
	}

	if _, err := p.resolver.RecomputeSubtree(tx, model.ScopeDraft, pageID, "", false); err != nil {
		return nil, err
	}
	if draft.HasPublic() {
		if _, err := p.resolver.RecomputeSubtree(tx, model.ScopePublic, *draft.PublicID, "", false); err != nil {
			return nil, err
		}
	}
	return res, nil
}
