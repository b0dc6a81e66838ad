package tree

import (
	"fmt"
	"sort"

	"git.home.luguber.info/inful/pagetree/internal/model"
	"git.home.luguber.info/inful/pagetree/internal/store"
)

// ViolationKind names a broken structural invariant.
type ViolationKind string

const (
	ViolationInvalidPath   ViolationKind = "invalid_path"
	ViolationDepth         ViolationKind = "depth_mismatch"
	ViolationOrphan        ViolationKind = "orphan"
	ViolationNumChild      ViolationKind = "numchild_mismatch"
	ViolationGap           ViolationKind = "sibling_gap"
	ViolationDuplicatePath ViolationKind = "duplicate_path"
)

// Violation is one invariant failure found by Check.
type Violation struct {
	Scope  model.Scope   `json:"scope"`
	NodeID int64         `json:"node_id"`
	Path   string        `json:"path"`
	Kind   ViolationKind `json:"kind"`
	Detail string        `json:"detail"`
}

func (v Violation) String() string {
	return fmt.Sprintf("%s node %d (%s): %s: %s", v.Scope, v.NodeID, v.Path, v.Kind, v.Detail)
}

// Check audits every node of the scope and returns the violations found, in
// path order. An empty result means the tree is consistent.
func (t *Tree) Check(tx store.Tx) ([]Violation, error) {
	nodes, err := tx.Nodes(store.NodeQuery{Scope: t.scope})
	if err != nil {
		return nil, err
	}

	var out []Violation
	report := func(n *model.TreeNode, kind ViolationKind, format string, args ...any) {
		out = append(out, Violation{
			Scope:  t.scope,
			NodeID: n.ID,
			Path:   n.Path,
			Kind:   kind,
			Detail: fmt.Sprintf(format, args...),
		})
	}

	byPath := make(map[string]*model.TreeNode, len(nodes))
	children := make(map[string][]*model.TreeNode)
	for _, n := range nodes {
		if prev, dup := byPath[n.Path]; dup {
			report(n, ViolationDuplicatePath, "path also used by node %d", prev.ID)
			continue
		}
		byPath[n.Path] = n
		if err := t.codec.Validate(n.Path); err != nil {
			report(n, ViolationInvalidPath, "path is not made of whole segments")
			continue
		}
		if want := t.codec.Depth(n.Path); n.Depth != want {
			report(n, ViolationDepth, "depth %d, path implies %d", n.Depth, want)
		}
		parent := t.codec.Parent(n.Path)
		children[parent] = append(children[parent], n)
	}

	for _, n := range nodes {
		if byPath[n.Path] != n || t.codec.Validate(n.Path) != nil {
			continue
		}
		if parent := t.codec.Parent(n.Path); parent != "" {
			if _, ok := byPath[parent]; !ok {
				report(n, ViolationOrphan, "no node at parent path %s", parent)
			}
		}
		if got := len(children[n.Path]); n.NumChild != got {
			report(n, ViolationNumChild, "numchild %d, has %d children", n.NumChild, got)
		}
	}

	for parent, kids := range children {
		for i, kid := range kids {
			idx, err := t.codec.Index(kid.Path)
			if err != nil {
				continue
			}
			if idx != i+1 {
				report(kid, ViolationGap, "sibling index %d under %q, expected %d", idx, parent, i+1)
				break
			}
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}
