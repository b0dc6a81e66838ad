// Package errors provides the classified error primitives used across pagetree.
//
// Every failure surfaced by the tree, path and publishing layers is a
// ClassifiedError carrying a category, a severity and a retry strategy, so
// callers can decide between aborting (structure), asking the user for a
// different input (path_collision, publish) or retrying the whole operation
// from a fresh read (concurrency).
//
// Example usage:
//
//	err := errors.StructuralViolation("cannot move a node into its own subtree").
//		WithContext("node_id", id).
//		WithCause(cause).
//		Build()
package errors
