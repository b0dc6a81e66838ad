package pages

import (
	"context"

	"git.home.luguber.info/inful/pagetree/internal/eventstore"
	"git.home.luguber.info/inful/pagetree/internal/model"
	"git.home.luguber.info/inful/pagetree/internal/notify"
	"git.home.luguber.info/inful/pagetree/internal/publisher"
	"git.home.luguber.info/inful/pagetree/internal/store"
)

// Publish makes a page public in language, or pending when its parent is
// not visible. Pending descendants are published along with it.
func (s *Service) Publish(ctx context.Context, site string, pageID int64, language string) (*publisher.Result, error) {
	return s.transition(ctx, "publish", site, pageID, language, eventstore.TypePagePublished, notify.KindPublished,
		func(tx store.Tx, lang string) (*publisher.Result, error) {
			return s.publisher.Publish(tx, pageID, lang)
		})
}

// Unpublish hides a page in language and suspends its visible descendants.
func (s *Service) Unpublish(ctx context.Context, site string, pageID int64, language string) (*publisher.Result, error) {
	return s.transition(ctx, "unpublish", site, pageID, language, eventstore.TypePageUnpublished, notify.KindUnpublished,
		func(tx store.Tx, lang string) (*publisher.Result, error) {
			return s.publisher.Unpublish(tx, pageID, lang)
		})
}

// RevertToLive discards draft edits of language by copying the public
// version back onto the draft. Only the draft side changes.
func (s *Service) RevertToLive(ctx context.Context, site string, pageID int64, language string) (*publisher.Result, error) {
	return s.transition(ctx, "revert", site, pageID, language, eventstore.TypePageReverted, "",
		func(tx store.Tx, lang string) (*publisher.Result, error) {
			return s.publisher.RevertToLive(tx, pageID, lang)
		})
}

func (s *Service) transition(
	ctx context.Context, op, site string, pageID int64, language, eventType string, kind notify.Kind,
	fn func(tx store.Tx, language string) (*publisher.Result, error),
) (*publisher.Result, error) {
	language, err := s.checkLanguage(site, language)
	if err != nil {
		return nil, err
	}
	var res *publisher.Result
	err = s.write(ctx, op, site, func(tx store.Tx, rec *record) error {
		var err error
		if res, err = fn(tx, language); err != nil {
			return err
		}
		rec.cascaded += res.Cascaded()
		rec.event(eventType, eventstore.PageChange{
			Site: site, PageID: pageID, Language: language,
			Transitions: transitionRecords(res.Transitions),
		})
		if kind == "" {
			return nil
		}
		paths, err := s.transitionPaths(tx, res)
		if err != nil {
			return err
		}
		rec.notify(notify.Change{Site: site, PageID: pageID, Language: language, Kind: kind, Paths: paths})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// State returns the publish state of a page in language.
func (s *Service) State(ctx context.Context, site string, pageID int64, language string) (model.PublishState, error) {
	language, err := s.checkLanguage(site, language)
	if err != nil {
		return "", err
	}
	var state model.PublishState
	err = s.read(ctx, site, func(tx store.Tx) error {
		var err error
		state, err = s.publisher.State(tx, pageID, language)
		return err
	})
	return state, err
}
