package tree

import (
	"strings"

	"git.home.luguber.info/inful/pagetree/internal/model"
	"git.home.luguber.info/inful/pagetree/internal/store"
)

// Get returns the node with id, or store.ErrNotFound when it does not belong
// to this tree's scope.
func (t *Tree) Get(tx store.Tx, id int64) (*model.TreeNode, error) {
	n, err := tx.Node(id)
	if err != nil {
		return nil, err
	}
	if n.Scope != t.scope {
		return nil, store.ErrNotFound.WithContext("kind", "tree_node").WithContext("id", id).WithContext("scope", string(t.scope))
	}
	return n, nil
}

// Parent returns the parent of node, or nil for a root-level node.
func (t *Tree) Parent(tx store.Tx, node *model.TreeNode) (*model.TreeNode, error) {
	return t.nodeAt(tx, t.codec.Parent(node.Path))
}

// Children returns the direct children of id in sibling order. An id of 0
// returns the root-level nodes.
func (t *Tree) Children(tx store.Tx, id int64) ([]*model.TreeNode, error) {
	if id == 0 {
		return t.Roots(tx)
	}
	n, err := t.Get(tx, id)
	if err != nil {
		return nil, err
	}
	return t.childrenOf(tx, n.Path)
}

// Roots returns the root-level nodes in order.
func (t *Tree) Roots(tx store.Tx) ([]*model.TreeNode, error) {
	return t.childrenOf(tx, "")
}

// Descendants returns every node below id in pre-order (path order).
func (t *Tree) Descendants(tx store.Tx, id int64) ([]*model.TreeNode, error) {
	n, err := t.Get(tx, id)
	if err != nil {
		return nil, err
	}
	nodes, err := tx.Nodes(store.NodeQuery{Scope: t.scope, PathPrefix: n.Path})
	if err != nil {
		return nil, err
	}
	out := make([]*model.TreeNode, 0, len(nodes))
	for _, d := range nodes {
		if d.ID != n.ID {
			out = append(out, d)
		}
	}
	return out, nil
}

// DescendantCount is the number of nodes strictly below id.
func (t *Tree) DescendantCount(tx store.Tx, id int64) (int, error) {
	d, err := t.Descendants(tx, id)
	return len(d), err
}

// Ancestors returns the ancestors of id, root first.
func (t *Tree) Ancestors(tx store.Tx, id int64) ([]*model.TreeNode, error) {
	n, err := t.Get(tx, id)
	if err != nil {
		return nil, err
	}
	paths := t.codec.Ancestors(n.Path)
	out := make([]*model.TreeNode, 0, len(paths))
	for _, p := range paths {
		a, err := t.nodeAt(tx, p)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

// Siblings returns all children of id's parent, id included, in order.
func (t *Tree) Siblings(tx store.Tx, id int64) ([]*model.TreeNode, error) {
	n, err := t.Get(tx, id)
	if err != nil {
		return nil, err
	}
	return t.childrenOf(tx, t.codec.Parent(n.Path))
}

// Index returns the 1-based position of node among its siblings.
func (t *Tree) Index(node *model.TreeNode) (int, error) {
	return t.codec.Index(node.Path)
}

// IsAncestor reports whether a lies strictly above d.
func (t *Tree) IsAncestor(a, d *model.TreeNode) bool {
	return a.Scope == d.Scope && len(d.Path) > len(a.Path) && strings.HasPrefix(d.Path, a.Path)
}
