package pages

import (
	"context"

	"git.home.luguber.info/inful/pagetree/internal/eventstore"
	"git.home.luguber.info/inful/pagetree/internal/model"
	"git.home.luguber.info/inful/pagetree/internal/notify"
	"git.home.luguber.info/inful/pagetree/internal/store"
	"git.home.luguber.info/inful/pagetree/internal/tree"
)

// CreateNode adds a draft page at position relative to the page targetPageID.
// A zero target with a child position creates a root-level page.
func (s *Service) CreateNode(ctx context.Context, site string, targetPageID int64, pos tree.Position, attrs model.PageAttributes) (*model.DraftPage, error) {
	var page *model.DraftPage
	err := s.write(ctx, "create_node", site, func(tx store.Tx, rec *record) error {
		target, err := targetNode(tx, targetPageID)
		if err != nil {
			return err
		}
		node, err := s.draft.AddChild(tx, target, pos)
		if err != nil {
			return err
		}
		now := s.now().UTC()
		a := attrs
		if a.CreatedAt.IsZero() {
			a.CreatedAt = now
		}
		if a.ChangedAt.IsZero() {
			a.ChangedAt = now
		}
		if a.ChangedBy == "" {
			a.ChangedBy = a.CreatedBy
		}
		page = &model.DraftPage{NodeID: node.ID, Site: site, PageAttributes: a}
		if err := tx.InsertDraftPage(page); err != nil {
			return err
		}
		rec.event(eventstore.TypePageCreated, eventstore.PageChange{
			Site: site, PageID: page.ID, Path: node.Path, TargetID: targetPageID, Position: string(pos),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return page, nil
}

// MoveNode moves a page and its subtree to position relative to the page
// targetPageID, recomputes the draft paths of the subtree and brings the
// public side in line. A path collision at the destination aborts the move.
func (s *Service) MoveNode(ctx context.Context, site string, pageID, targetPageID int64, pos tree.Position) (*model.DraftPage, error) {
	var page *model.DraftPage
	err := s.write(ctx, "move_node", site, func(tx store.Tx, rec *record) error {
		p, err := tx.DraftPage(pageID)
		if err != nil {
			return err
		}
		target, err := targetNode(tx, targetPageID)
		if err != nil {
			return err
		}
		before, err := s.publicPaths(tx, pageID, "", true)
		if err != nil {
			return err
		}
		node, err := s.draft.Move(tx, p.NodeID, target, pos)
		if err != nil {
			return err
		}
		if _, err := s.resolver.RecomputeSubtree(tx, model.ScopeDraft, pageID, "", true); err != nil {
			return err
		}
		res, err := s.publisher.SyncMove(tx, pageID)
		if err != nil {
			return err
		}
		after, err := s.publicPaths(tx, pageID, "", true)
		if err != nil {
			return err
		}
		if page, err = tx.DraftPage(pageID); err != nil {
			return err
		}

		rec.cascaded += res.Cascaded()
		rec.event(eventstore.TypePageMoved, eventstore.PageChange{
			Site: site, PageID: pageID, Path: node.Path, TargetID: targetPageID, Position: string(pos),
			Transitions: transitionRecords(res.Transitions),
		})
		rec.notify(notify.Change{Site: site, PageID: pageID, Kind: notify.KindMoved, Paths: mergePaths(before, after)})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return page, nil
}

// DeleteNode removes a page and its whole subtree: public counterparts
// first, then every draft page with its versions, then the tree nodes. It
// returns the number of draft pages removed.
func (s *Service) DeleteNode(ctx context.Context, site string, pageID int64) (int, error) {
	removed := 0
	err := s.write(ctx, "delete_node", site, func(tx store.Tx, rec *record) error {
		p, err := tx.DraftPage(pageID)
		if err != nil {
			return err
		}
		paths, err := s.publicPaths(tx, pageID, "", true)
		if err != nil {
			return err
		}
		if _, err := s.publisher.TearDown(tx, pageID); err != nil {
			return err
		}
		descendants, err := s.draft.Descendants(tx, p.NodeID)
		if err != nil {
			return err
		}
		pageIDs := []int64{pageID}
		for _, n := range descendants {
			dp, err := tx.DraftPageByNode(n.ID)
			if err != nil {
				return err
			}
			pageIDs = append(pageIDs, dp.ID)
		}
		for _, id := range pageIDs {
			versions, err := tx.Versions(store.VersionQuery{Scope: model.ScopeDraft, PageID: id})
			if err != nil {
				return err
			}
			for _, v := range versions {
				if err := tx.DeleteVersion(v.ID); err != nil {
					return err
				}
			}
			if err := tx.DeletePage(id); err != nil {
				return err
			}
		}
		if _, err := s.draft.Delete(tx, p.NodeID); err != nil {
			return err
		}

		removed = len(pageIDs)
		rec.cascaded += removed - 1
		for i, id := range pageIDs {
			change := eventstore.PageChange{Site: site, PageID: id}
			if i == 0 {
				change.Count = removed
			}
			rec.event(eventstore.TypePageDeleted, change)
		}
		rec.notify(notify.Change{Site: site, PageID: pageID, Kind: notify.KindDeleted, Paths: paths})
		return nil
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

// Page returns a draft page.
func (s *Service) Page(ctx context.Context, site string, pageID int64) (*model.DraftPage, error) {
	var page *model.DraftPage
	err := s.read(ctx, site, func(tx store.Tx) error {
		var err error
		page, err = tx.DraftPage(pageID)
		return err
	})
	return page, err
}

// Children returns the draft pages directly below pageID in sibling order.
// pageID 0 lists the root level.
func (s *Service) Children(ctx context.Context, site string, pageID int64) ([]*model.DraftPage, error) {
	var children []*model.DraftPage
	err := s.read(ctx, site, func(tx store.Tx) error {
		parent, err := targetNode(tx, pageID)
		if err != nil {
			return err
		}
		nodes, err := s.draft.Children(tx, parent)
		if err != nil {
			return err
		}
		children = make([]*model.DraftPage, 0, len(nodes))
		for _, n := range nodes {
			p, err := tx.DraftPageByNode(n.ID)
			if err != nil {
				return err
			}
			children = append(children, p)
		}
		return nil
	})
	return children, err
}
