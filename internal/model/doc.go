// Package model holds the plain records shared by the tree, path and
// publishing layers: tree nodes, the draft and public page variants, and the
// per-language content versions attached to them.
//
// Draft and public pages are distinct types. A DraftPage may point at its
// public counterpart; a PublicPage only points back at its draft and has no
// way to reference a further public copy.
package model
