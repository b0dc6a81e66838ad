package publisher

import (
	stderrors "errors"

	"git.home.luguber.info/inful/pagetree/internal/model"
	"git.home.luguber.info/inful/pagetree/internal/store"
	"git.home.luguber.info/inful/pagetree/internal/tree"
)

// parentDraft returns the draft page above draft, or nil at root level.
func (p *Publisher) parentDraft(tx store.Tx, draft *model.DraftPage) (*model.DraftPage, error) {
	node, err := p.draft.Get(tx, draft.NodeID)
	if err != nil {
		return nil, err
	}
	parent, err := p.draft.Parent(tx, node)
	if err != nil || parent == nil {
		return nil, err
	}
	return tx.DraftPageByNode(parent.ID)
}

// parentVisible reports whether draft may be public in language: it is at
// root level, or its parent has a public counterpart and a visible version
// in language.
func (p *Publisher) parentVisible(tx store.Tx, draft *model.DraftPage, language string) (bool, error) {
	parent, err := p.parentDraft(tx, draft)
	if err != nil {
		return false, err
	}
	if parent == nil {
		return true, nil
	}
	if !parent.HasPublic() {
		return false, nil
	}
	pv, err := tx.VersionFor(model.ScopeDraft, parent.ID, language)
	if stderrors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return pv.State.Visible(), nil
}

func (p *Publisher) childPages(tx store.Tx, draft *model.DraftPage) ([]*model.DraftPage, error) {
	nodes, err := p.draft.Children(tx, draft.NodeID)
	if err != nil {
		return nil, err
	}
	return p.pagesAt(tx, nodes)
}

func (p *Publisher) descendantPages(tx store.Tx, draft *model.DraftPage) ([]*model.DraftPage, error) {
	nodes, err := p.draft.Descendants(tx, draft.NodeID)
	if err != nil {
		return nil, err
	}
	return p.pagesAt(tx, nodes)
}

func (p *Publisher) pagesAt(tx store.Tx, nodes []*model.TreeNode) ([]*model.DraftPage, error) {
	pages := make([]*model.DraftPage, 0, len(nodes))
	for _, n := range nodes {
		page, err := tx.DraftPageByNode(n.ID)
		if stderrors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		pages = append(pages, page)
	}
	return pages, nil
}

// publicSlot returns where draft's public node belongs so that the public
// tree mirrors the draft order: right of the nearest preceding draft sibling
// that has a public counterpart, otherwise first child of the parent's
// public node (0 at root level).
func (p *Publisher) publicSlot(tx store.Tx, draft *model.DraftPage) (int64, tree.Position, error) {
	var parentNodeID int64
	parent, err := p.parentDraft(tx, draft)
	if err != nil {
		return 0, "", err
	}
	if parent != nil {
		if !parent.HasPublic() {
			return 0, "", tree.ErrOrphanedParent.WithContext("page_id", draft.ID).WithContext("parent_page_id", parent.ID)
		}
		pubParent, err := tx.PublicPage(*parent.PublicID)
		if err != nil {
			return 0, "", err
		}
		parentNodeID = pubParent.NodeID
	}

	siblings, err := p.draft.Siblings(tx, draft.NodeID)
	if err != nil {
		return 0, "", err
	}
	idx := -1
	for i, s := range siblings {
		if s.ID == draft.NodeID {
			idx = i
			break
		}
	}
	for i := idx - 1; i >= 0; i-- {
		sib, err := tx.DraftPageByNode(siblings[i].ID)
		if stderrors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return 0, "", err
		}
		if !sib.HasPublic() {
			continue
		}
		pubSib, err := tx.PublicPage(*sib.PublicID)
		if err != nil {
			return 0, "", err
		}
		return pubSib.NodeID, tree.Right, nil
	}
	return parentNodeID, tree.FirstChild, nil
}

// ensurePublicPage returns draft's public counterpart with the draft's page
// attributes, creating it at the mirrored position when missing.
func (p *Publisher) ensurePublicPage(tx store.Tx, draft *model.DraftPage) (*model.PublicPage, error) {
	if draft.HasPublic() {
		pub, err := tx.PublicPage(*draft.PublicID)
		if err != nil {
			return nil, err
		}
		pub.PageAttributes = draft.Clone().PageAttributes
		if err := tx.UpdatePublicPage(pub); err != nil {
			return nil, err
		}
		return pub, nil
	}

	target, pos, err := p.publicSlot(tx, draft)
	if err != nil {
		return nil, err
	}
	node, err := p.public.AddChild(tx, target, pos)
	if err != nil {
		return nil, err
	}
	pub := &model.PublicPage{NodeID: node.ID, DraftID: draft.ID, PageAttributes: draft.Clone().PageAttributes}
	if err := tx.InsertPublicPage(pub); err != nil {
		return nil, err
	}
	draft.PublicID = &pub.ID
	if err := tx.UpdateDraftPage(draft); err != nil {
		return nil, err
	}
	return pub, nil
}

// SyncMove brings the public side in line after pageID's draft node moved.
// If the new parent has a public counterpart the public subtree is moved to
// the mirrored position and its paths recomputed; otherwise the public
// subtree is torn down and its visible pages become pending. Each language
// of the moved page is then reconciled with the visibility of its new
// parent: pending pages are published, visible pages are suspended.
func (p *Publisher) SyncMove(tx store.Tx, pageID int64) (*Result, error) {
	draft, err := tx.DraftPage(pageID)
	if err != nil {
		return nil, err
	}
	res := &Result{PageID: pageID}

	if draft.HasPublic() {
		parent, err := p.parentDraft(tx, draft)
		if err != nil {
			return nil, err
		}
		if parent != nil && !parent.HasPublic() {
			if err := p.tearDownToPending(tx, draft, res); err != nil {
				return nil, err
			}
		} else if err := p.movePublic(tx, draft); err != nil {
			return nil, err
		}
		if draft, err = tx.DraftPage(pageID); err != nil {
			return nil, err
		}
	}

	versions, err := tx.Versions(store.VersionQuery{Scope: model.ScopeDraft, PageID: pageID})
	if err != nil {
		return nil, err
	}
	for _, dv := range versions {
		visible, err := p.parentVisible(tx, draft, dv.Language)
		if err != nil {
			return nil, err
		}
		switch {
		case visible && dv.State == model.StatePending:
			if _, err := p.publish(tx, pageID, dv.Language, res); err != nil {
				return nil, err
			}
			if draft, err = tx.DraftPage(pageID); err != nil {
				return nil, err
			}
		case !visible && dv.State.Visible():
			if err := p.suspend(tx, draft, dv, model.StatePending, res); err != nil {
				return nil, err
			}
		}
	}
	return res, nil
}

func (p *Publisher) movePublic(tx store.Tx, draft *model.DraftPage) error {
	pub, err := tx.PublicPage(*draft.PublicID)
	if err != nil {
		return err
	}
	target, pos, err := p.publicSlot(tx, draft)
	if err != nil {
		return err
	}
	if _, err := p.public.Move(tx, pub.NodeID, target, pos); err != nil {
		return err
	}
	_, err = p.resolver.RecomputeSubtree(tx, model.ScopePublic, pub.ID, "", true)
	return err
}

// tearDownToPending removes the public subtree of draft and moves every
// visible version in the draft subtree to pending.
func (p *Publisher) tearDownToPending(tx store.Tx, draft *model.DraftPage, res *Result) error {
	descendants, err := p.descendantPages(tx, draft)
	if err != nil {
		return err
	}
	subtree := append([]*model.DraftPage{draft}, descendants...)
	if _, err := p.TearDown(tx, draft.ID); err != nil {
		return err
	}
	for _, d := range subtree {
		versions, err := tx.Versions(store.VersionQuery{Scope: model.ScopeDraft, PageID: d.ID})
		if err != nil {
			return err
		}
		for _, v := range versions {
			if !v.State.Visible() {
				continue
			}
			from := v.State
			v.State = model.StatePending
			v.Published = true
			if err := tx.UpdateVersion(v); err != nil {
				return err
			}
			res.record(d.ID, v.Language, from, model.StatePending)
		}
	}
	return nil
}

// TearDown deletes the public counterparts of the draft subtree rooted at
// pageID: their versions, pages and public tree nodes. Draft pages lose
// their public link; draft states are left to the caller. It returns the
// number of public pages removed.
func (p *Publisher) TearDown(tx store.Tx, pageID int64) (int, error) {
	draft, err := tx.DraftPage(pageID)
	if err != nil {
		return 0, err
	}
	if !draft.HasPublic() {
		return 0, nil
	}
	pub, err := tx.PublicPage(*draft.PublicID)
	if err != nil {
		return 0, err
	}
	root, err := p.public.Get(tx, pub.NodeID)
	if err != nil {
		return 0, err
	}
	nodes, err := tx.Nodes(store.NodeQuery{Scope: model.ScopePublic, PathPrefix: root.Path})
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, n := range nodes {
		pp, err := tx.PublicPageByNode(n.ID)
		if stderrors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return removed, err
		}
		versions, err := tx.Versions(store.VersionQuery{Scope: model.ScopePublic, PageID: pp.ID})
		if err != nil {
			return removed, err
		}
		for _, v := range versions {
			if err := tx.DeleteVersion(v.ID); err != nil {
				return removed, err
			}
		}
		if err := tx.DeletePage(pp.ID); err != nil {
			return removed, err
		}
		owner, err := tx.DraftPage(pp.DraftID)
		switch {
		case err == nil:
			owner.PublicID = nil
			if err := tx.UpdateDraftPage(owner); err != nil {
				return removed, err
			}
		case !stderrors.Is(err, store.ErrNotFound):
			return removed, err
		}
		removed++
	}
	if _, err := p.public.Delete(tx, root.ID); err != nil {
		return removed, err
	}
	return removed, nil
}
