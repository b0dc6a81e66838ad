package store

import (
	"git.home.luguber.info/inful/pagetree/internal/foundation/errors"
)

var (
	// ErrNotFound indicates the requested row does not exist in the site.
	ErrNotFound = errors.NotFoundError("record not found").Build()

	// ErrReadOnly is returned by mutating calls inside View.
	ErrReadOnly = errors.InternalError("write attempted in read-only transaction").Build()

	// ErrConcurrentModification indicates a conflicting writer; retry from a fresh read.
	ErrConcurrentModification = errors.ConcurrencyError("concurrent modification detected").Build()

	// ErrDuplicate indicates a uniqueness constraint of the persisted layout was violated.
	ErrDuplicate = errors.StructuralViolation("duplicate row").Build()

	// ErrEmptySite is returned when a transaction is opened without a site.
	ErrEmptySite = errors.ValidationError("site is required").Build()

	// ErrClosed is returned after Close.
	ErrClosed = errors.StoreError("store is closed").Build()
)

func notFound(kind string, id any) error {
	return ErrNotFound.WithContext("kind", kind).WithContext("id", id)
}
