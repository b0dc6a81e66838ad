// Package tree maintains the structural invariants of one scope of a site's
// page hierarchy on top of materialized paths.
//
// Every node's path is its parent's path plus one fixed-width segment, and
// the segments of a parent's children are numbered 1..n without gaps. All
// mutations run inside the caller's store transaction, so a failed insert,
// move or delete leaves no partial renumbering behind.
package tree
