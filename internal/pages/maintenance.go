package pages

import (
	"context"

	"git.home.luguber.info/inful/pagetree/internal/eventstore"
	"git.home.luguber.info/inful/pagetree/internal/store"
	"git.home.luguber.info/inful/pagetree/internal/tree"
)

// Check audits the draft and public trees of site and reports every
// invariant violation. It does not modify anything.
func (s *Service) Check(ctx context.Context, site string) ([]tree.Violation, error) {
	var violations []tree.Violation
	err := s.read(ctx, site, func(tx store.Tx) error {
		violations = nil
		for _, t := range []*tree.Tree{s.draft, s.public} {
			vs, err := t.Check(tx)
			if err != nil {
				return err
			}
			s.recorder.SetTreeViolations(site, string(t.Scope()), len(vs))
			violations = append(violations, vs...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return violations, nil
}

// Repair renumbers both trees of site so that sibling indexes are gap free
// and child counts match. It returns the number of nodes rewritten.
func (s *Service) Repair(ctx context.Context, site string) (int, error) {
	total := 0
	err := s.write(ctx, "repair", site, func(tx store.Tx, rec *record) error {
		total = 0
		for _, t := range []*tree.Tree{s.draft, s.public} {
			n, err := t.RenumberAll(tx)
			if err != nil {
				return err
			}
			total += n
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}

// Sites lists the configured site ids.
func (s *Service) Sites() []string {
	return s.cfg.SiteIDs()
}

// History returns the publish state changes of a page language, oldest
// first. It is empty when no event store is configured.
func (s *Service) History(ctx context.Context, site string, pageID int64, language string) ([]eventstore.HistoryEntry, error) {
	language, err := s.checkLanguage(site, language)
	if err != nil {
		return nil, err
	}
	if s.history == nil {
		return nil, nil
	}
	if err := s.history.CatchUp(ctx); err != nil {
		return nil, err
	}
	return s.history.History(site, pageID, language), nil
}

