package eventstore

import (
	"git.home.luguber.info/inful/pagetree/internal/foundation/errors"
)

var (
	// ErrOpen is returned when the event database cannot be opened or migrated.
	ErrOpen = errors.EventStoreError("cannot open event log").Build()

	// ErrAppend is returned when a record could not be written.
	ErrAppend = errors.EventStoreError("cannot append to event log").Build()

	// ErrRead is returned when records could not be queried or scanned.
	ErrRead = errors.EventStoreError("cannot read event log").Build()

	// ErrPayload is returned for a payload that does not encode or decode.
	ErrPayload = errors.EventStoreError("malformed event payload").Build()

	// ErrUnknownEventType is returned for event types outside the page lifecycle.
	ErrUnknownEventType = errors.EventStoreError("unknown event type").Build()
)
