package model

// Scope names one of the two independent path namespaces of a site.
type Scope string

const (
	ScopeDraft  Scope = "draft"
	ScopePublic Scope = "public"
)

// Valid reports whether s is a known scope.
func (s Scope) Valid() bool {
	return s == ScopeDraft || s == ScopePublic
}

// TreeNode is one position in a site's hierarchy.
type TreeNode struct {
	ID       int64  `json:"id"`
	Site     string `json:"site"`
	Scope    Scope  `json:"scope"`
	Path     string `json:"path"`
	Depth    int    `json:"depth"`
	NumChild int    `json:"numchild"`
}

// Clone returns a copy safe to mutate.
func (n *TreeNode) Clone() *TreeNode {
	if n == nil {
		return nil
	}
	c := *n
	return &c
}
