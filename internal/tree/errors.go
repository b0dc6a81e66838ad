package tree

import "git.home.luguber.info/inful/pagetree/internal/foundation/errors"

var (
	// ErrCyclicMove is returned when a node would be moved into its own subtree.
	ErrCyclicMove = errors.StructuralViolation("cannot move a node into its own subtree").Build()

	// ErrOrphanedParent is returned when a node's parent path has no node.
	ErrOrphanedParent = errors.StructuralViolation("parent node missing").Build()

	// ErrInvalidPosition is returned for unknown positions or a left/right
	// position without a sibling target.
	ErrInvalidPosition = errors.StructuralViolation("invalid tree position").Build()
)
