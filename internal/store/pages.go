package store

import (
	"git.home.luguber.info/inful/pagetree/internal/model"
)

// PageNode returns the tree node a page of scope is attached to.
func PageNode(tx Tx, scope model.Scope, pageID int64) (*model.TreeNode, error) {
	var nodeID int64
	switch scope {
	case model.ScopePublic:
		p, err := tx.PublicPage(pageID)
		if err != nil {
			return nil, err
		}
		nodeID = p.NodeID
	default:
		p, err := tx.DraftPage(pageID)
		if err != nil {
			return nil, err
		}
		nodeID = p.NodeID
	}
	return tx.Node(nodeID)
}

// PageIDAt returns the id of the page of scope attached to nodeID.
func PageIDAt(tx Tx, scope model.Scope, nodeID int64) (int64, error) {
	if scope == model.ScopePublic {
		p, err := tx.PublicPageByNode(nodeID)
		if err != nil {
			return 0, err
		}
		return p.ID, nil
	}
	p, err := tx.DraftPageByNode(nodeID)
	if err != nil {
		return 0, err
	}
	return p.ID, nil
}
