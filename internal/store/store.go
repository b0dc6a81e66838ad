// Package store persists tree nodes, pages and content versions per site and
// provides the atomic multi-row transactions the tree and publishing layers
// rely on.
package store

import (
	"context"

	"git.home.luguber.info/inful/pagetree/internal/model"
)

// Store opens site-scoped transactions.
//
// Update runs fn in one write transaction: if fn returns an error nothing it
// did is visible afterwards. Writers on the same site are serialized; View
// observes a consistent snapshot.
type Store interface {
	Update(ctx context.Context, site string, fn func(tx Tx) error) error
	View(ctx context.Context, site string, fn func(tx Tx) error) error

	// Sites lists every site that owns at least one tree node.
	Sites(ctx context.Context) ([]string, error)

	Close() error
}

// NodeQuery selects tree nodes of one scope. Results are ordered by path.
type NodeQuery struct {
	Scope model.Scope
	// PathPrefix matches the node at the prefix and everything below it.
	PathPrefix string
	// Depth restricts results to one level; 0 means any depth.
	Depth int
}

// VersionQuery selects content versions of one scope. Zero fields match anything.
type VersionQuery struct {
	Scope    model.Scope
	Language string
	PageID   int64
	Path     string
}

// Tx is the set of row operations available inside a transaction. All lookups
// return ErrNotFound when the row does not exist in the transaction's site.
type Tx interface {
	Node(id int64) (*model.TreeNode, error)
	NodeByPath(scope model.Scope, path string) (*model.TreeNode, error)
	Nodes(q NodeQuery) ([]*model.TreeNode, error)
	InsertNode(n *model.TreeNode) error
	AdjustNumChild(id int64, delta int) error
	// RewritePrefix replaces oldPrefix with newPrefix on every node of scope whose
	// path starts with oldPrefix, adding depthDelta to their depth. The suffix of
	// each path is kept verbatim. It returns the number of rewritten nodes.
	RewritePrefix(scope model.Scope, oldPrefix, newPrefix string, depthDelta int) (int, error)
	// DeleteNodes removes every node of scope whose path starts with prefix.
	DeleteNodes(scope model.Scope, prefix string) (int, error)

	DraftPage(id int64) (*model.DraftPage, error)
	DraftPageByNode(nodeID int64) (*model.DraftPage, error)
	DraftPages() ([]*model.DraftPage, error)
	InsertDraftPage(p *model.DraftPage) error
	UpdateDraftPage(p *model.DraftPage) error

	PublicPage(id int64) (*model.PublicPage, error)
	PublicPageByNode(nodeID int64) (*model.PublicPage, error)
	InsertPublicPage(p *model.PublicPage) error
	UpdatePublicPage(p *model.PublicPage) error

	// DeletePage removes a draft or public page row by id.
	DeletePage(id int64) error

	Version(id int64) (*model.ContentVersion, error)
	VersionFor(scope model.Scope, pageID int64, language string) (*model.ContentVersion, error)
	Versions(q VersionQuery) ([]*model.ContentVersion, error)
	InsertVersion(v *model.ContentVersion) error
	UpdateVersion(v *model.ContentVersion) error
	DeleteVersion(id int64) error
}
