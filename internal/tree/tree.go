package tree

import (
	stderrors "errors"
	"sort"
	"strings"

	"git.home.luguber.info/inful/pagetree/internal/model"
	"git.home.luguber.info/inful/pagetree/internal/store"
	"git.home.luguber.info/inful/pagetree/internal/treepath"
)

// Tree operates on the nodes of one scope. It holds no state of its own
// beyond the scope and the path codec; all data lives in the transaction.
type Tree struct {
	scope model.Scope
	codec *treepath.Codec
}

// New returns a Tree for scope. A nil codec selects treepath.Default.
func New(scope model.Scope, codec *treepath.Codec) *Tree {
	if codec == nil {
		codec = treepath.Default
	}
	return &Tree{scope: scope, codec: codec}
}

// Scope returns the scope the tree operates on.
func (t *Tree) Scope() model.Scope { return t.scope }

// Codec returns the path codec.
func (t *Tree) Codec() *treepath.Codec { return t.codec }

// slot is a position between siblings: the parent (nil at root level), its
// path, the 1-based index the new node takes, and the current siblings.
type slot struct {
	parent     *model.TreeNode
	parentPath string
	index      int
	siblings   []*model.TreeNode
}

func (s slot) path(c *treepath.Codec) (string, error) {
	return c.Encode(s.parentPath, s.index)
}

// AddChild inserts a new node at pos relative to targetID. A targetID of 0
// with FirstChild or LastChild addresses the root level.
func (t *Tree) AddChild(tx store.Tx, targetID int64, pos Position) (*model.TreeNode, error) {
	s, err := t.resolveSlot(tx, targetID, pos)
	if err != nil {
		return nil, err
	}
	if len(s.siblings)+1 > t.codec.Max() {
		return nil, treepath.ErrCapacityExceeded.WithContext("parent", s.parentPath).WithContext("max", t.codec.Max())
	}
	path, err := s.path(t.codec)
	if err != nil {
		return nil, err
	}
	if err := t.openSlot(tx, s); err != nil {
		return nil, err
	}

	node := &model.TreeNode{Scope: t.scope, Path: path, Depth: t.codec.Depth(path)}
	if err := tx.InsertNode(node); err != nil {
		return nil, err
	}
	if s.parent != nil {
		if err := tx.AdjustNumChild(s.parent.ID, 1); err != nil {
			return nil, err
		}
	}
	return node, nil
}

// Move detaches the subtree rooted at nodeID and reattaches it at pos
// relative to targetID. Descendants keep their relative order and depth
// differences. Moving a node next to itself is a no-op.
func (t *Tree) Move(tx store.Tx, nodeID, targetID int64, pos Position) (*model.TreeNode, error) {
	if !pos.Valid() {
		return nil, ErrInvalidPosition.WithContext("position", string(pos))
	}
	node, err := t.Get(tx, nodeID)
	if err != nil {
		return nil, err
	}

	var destParentPath string
	switch {
	case targetID == 0:
		if !pos.isChild() {
			return nil, ErrInvalidPosition.WithContext("position", string(pos))
		}
	case targetID == nodeID:
		if pos.isChild() {
			return nil, ErrCyclicMove.WithContext("node_id", nodeID)
		}
		return node, nil
	default:
		target, err := t.Get(tx, targetID)
		if err != nil {
			return nil, err
		}
		if t.codec.IsDescendant(target.Path, node.Path) {
			return nil, ErrCyclicMove.WithContext("node_id", nodeID).WithContext("target_id", targetID)
		}
		destParentPath = target.Path
		if !pos.isChild() {
			destParentPath = t.codec.Parent(target.Path)
		}
	}

	oldParentPath := t.codec.Parent(node.Path)
	if destParentPath != oldParentPath {
		siblings, err := t.childrenOf(tx, destParentPath)
		if err != nil {
			return nil, err
		}
		if len(siblings)+1 > t.codec.Max() {
			return nil, treepath.ErrCapacityExceeded.WithContext("parent", destParentPath).WithContext("max", t.codec.Max())
		}
	}

	oldParent, err := t.nodeAt(tx, oldParentPath)
	if err != nil {
		return nil, err
	}
	oldIndex, err := t.codec.Index(node.Path)
	if err != nil {
		return nil, err
	}

	park := t.codec.ParkPrefix()
	if _, err := tx.RewritePrefix(t.scope, node.Path, park, 0); err != nil {
		return nil, err
	}
	if err := t.closeGap(tx, oldParentPath, oldIndex); err != nil {
		return nil, err
	}
	if oldParent != nil {
		if err := tx.AdjustNumChild(oldParent.ID, -1); err != nil {
			return nil, err
		}
	}

	// The target may have shifted while the gap closed.
	s, err := t.resolveSlot(tx, targetID, pos)
	if err != nil {
		return nil, err
	}
	newPath, err := s.path(t.codec)
	if err != nil {
		return nil, err
	}
	if err := t.openSlot(tx, s); err != nil {
		return nil, err
	}
	if _, err := tx.RewritePrefix(t.scope, park, newPath, t.codec.Depth(newPath)-node.Depth); err != nil {
		return nil, err
	}
	if s.parent != nil {
		if err := tx.AdjustNumChild(s.parent.ID, 1); err != nil {
			return nil, err
		}
	}
	return tx.Node(nodeID)
}

// Delete removes the node and all of its descendants, closes the gap among
// its former siblings and returns the number of removed nodes.
func (t *Tree) Delete(tx store.Tx, nodeID int64) (int, error) {
	node, err := t.Get(tx, nodeID)
	if err != nil {
		return 0, err
	}
	parentPath := t.codec.Parent(node.Path)
	parent, err := t.nodeAt(tx, parentPath)
	if err != nil {
		return 0, err
	}
	index, err := t.codec.Index(node.Path)
	if err != nil {
		return 0, err
	}

	removed, err := tx.DeleteNodes(t.scope, node.Path)
	if err != nil {
		return 0, err
	}
	if err := t.closeGap(tx, parentPath, index); err != nil {
		return 0, err
	}
	if parent != nil {
		if err := tx.AdjustNumChild(parent.ID, -1); err != nil {
			return 0, err
		}
	}
	return removed, nil
}

// Renumber compacts the children of parentID (0 for the root level) to
// indexes 1..n in their current order and corrects the parent's NumChild.
// It returns the number of children whose path changed.
func (t *Tree) Renumber(tx store.Tx, parentID int64) (int, error) {
	var parent *model.TreeNode
	parentPath := ""
	if parentID != 0 {
		var err error
		if parent, err = t.Get(tx, parentID); err != nil {
			return 0, err
		}
		parentPath = parent.Path
	}
	children, err := t.childrenOf(tx, parentPath)
	if err != nil {
		return 0, err
	}

	changed := 0
	for i, child := range children {
		want, err := t.codec.Encode(parentPath, i+1)
		if err != nil {
			return changed, err
		}
		if child.Path == want {
			continue
		}
		if _, err := tx.RewritePrefix(t.scope, child.Path, want, t.codec.Depth(want)-child.Depth); err != nil {
			return changed, err
		}
		changed++
	}
	if parent != nil && parent.NumChild != len(children) {
		if err := tx.AdjustNumChild(parent.ID, len(children)-parent.NumChild); err != nil {
			return changed, err
		}
	}
	return changed, nil
}

// RenumberAll renumbers every level top-down and returns the number of
// rewritten nodes. Orphans are left for Check to report.
func (t *Tree) RenumberAll(tx store.Tx) (int, error) {
	total, err := t.Renumber(tx, 0)
	if err != nil {
		return total, err
	}
	for depth := 1; ; depth++ {
		level, err := tx.Nodes(store.NodeQuery{Scope: t.scope, Depth: depth})
		if err != nil {
			return total, err
		}
		if len(level) == 0 {
			return total, nil
		}
		for _, n := range level {
			changed, err := t.Renumber(tx, n.ID)
			total += changed
			if err != nil {
				return total, err
			}
		}
	}
}

func (t *Tree) resolveSlot(tx store.Tx, targetID int64, pos Position) (slot, error) {
	if !pos.Valid() {
		return slot{}, ErrInvalidPosition.WithContext("position", string(pos))
	}
	if targetID == 0 {
		if !pos.isChild() {
			return slot{}, ErrInvalidPosition.WithContext("position", string(pos))
		}
		return t.childSlot(tx, nil, pos)
	}

	target, err := t.Get(tx, targetID)
	if err != nil {
		return slot{}, err
	}
	if pos.isChild() {
		return t.childSlot(tx, target, pos)
	}

	parentPath := t.codec.Parent(target.Path)
	parent, err := t.nodeAt(tx, parentPath)
	if err != nil {
		return slot{}, err
	}
	siblings, err := t.childrenOf(tx, parentPath)
	if err != nil {
		return slot{}, err
	}
	index, err := t.codec.Index(target.Path)
	if err != nil {
		return slot{}, err
	}
	if pos == Right {
		index++
	}
	return slot{parent: parent, parentPath: parentPath, index: index, siblings: siblings}, nil
}

func (t *Tree) childSlot(tx store.Tx, parent *model.TreeNode, pos Position) (slot, error) {
	parentPath := ""
	if parent != nil {
		parentPath = parent.Path
	}
	siblings, err := t.childrenOf(tx, parentPath)
	if err != nil {
		return slot{}, err
	}
	index := 1
	if pos == LastChild {
		index = len(siblings) + 1
		if len(siblings) > 0 {
			last, err := t.codec.Index(siblings[len(siblings)-1].Path)
			if err != nil {
				return slot{}, err
			}
			index = last + 1
		}
	}
	return slot{parent: parent, parentPath: parentPath, index: index, siblings: siblings}, nil
}

// openSlot shifts siblings at or after s.index one position up, last first,
// so that no intermediate path collides.
func (t *Tree) openSlot(tx store.Tx, s slot) error {
	for i := len(s.siblings) - 1; i >= 0; i-- {
		sib := s.siblings[i]
		idx, err := t.codec.Index(sib.Path)
		if err != nil {
			return err
		}
		if idx < s.index {
			break
		}
		next, err := t.codec.Encode(s.parentPath, idx+1)
		if err != nil {
			return err
		}
		if _, err := tx.RewritePrefix(t.scope, sib.Path, next, 0); err != nil {
			return err
		}
	}
	return nil
}

// closeGap shifts siblings after index one position down, first first.
func (t *Tree) closeGap(tx store.Tx, parentPath string, index int) error {
	siblings, err := t.childrenOf(tx, parentPath)
	if err != nil {
		return err
	}
	for _, sib := range siblings {
		idx, err := t.codec.Index(sib.Path)
		if err != nil {
			return err
		}
		if idx <= index {
			continue
		}
		prev, err := t.codec.Encode(parentPath, idx-1)
		if err != nil {
			return err
		}
		if _, err := tx.RewritePrefix(t.scope, sib.Path, prev, 0); err != nil {
			return err
		}
	}
	return nil
}

// childrenOf lists the direct children of parentPath ("" for roots) in
// sibling order, skipping a parked subtree.
func (t *Tree) childrenOf(tx store.Tx, parentPath string) ([]*model.TreeNode, error) {
	nodes, err := tx.Nodes(store.NodeQuery{
		Scope:      t.scope,
		PathPrefix: parentPath,
		Depth:      t.codec.Depth(parentPath) + 1,
	})
	if err != nil {
		return nil, err
	}
	park := t.codec.ParkPrefix()
	out := nodes[:0]
	for _, n := range nodes {
		if !strings.HasPrefix(n.Path, park) {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

// nodeAt returns the node at path, nil for the root level, or ErrOrphanedParent.
func (t *Tree) nodeAt(tx store.Tx, path string) (*model.TreeNode, error) {
	if path == "" {
		return nil, nil
	}
	n, err := tx.NodeByPath(t.scope, path)
	if stderrors.Is(err, store.ErrNotFound) {
		return nil, ErrOrphanedParent.WithContext("path", path)
	}
	return n, err
}
