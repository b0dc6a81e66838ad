package eventstore

import (
	"context"
	"encoding/json"
	"time"
)

// Record is one committed page lifecycle event as stored in the log.
type Record struct {
	// ID increases with every append; it orders the log.
	ID          int64
	OperationID string
	Site        string
	Type        string
	// At is set by the store on append.
	At      time.Time
	Payload json.RawMessage
}

// Change decodes the payload of r.
func (r *Record) Change() (PageChange, error) {
	var change PageChange
	if err := json.Unmarshal(r.Payload, &change); err != nil {
		return PageChange{}, ErrPayload.WithCause(err).WithContext("event_id", r.ID)
	}
	return change, nil
}

// Store is an append-only log of page lifecycle records.
type Store interface {
	// Append stores rec, filling in its ID and At.
	Append(ctx context.Context, rec *Record) error
	// ByOperation returns the records of one operation in append order.
	ByOperation(ctx context.Context, operationID string) ([]Record, error)
	// Since returns the records with an ID above afterID in append order,
	// restricted to site unless it is empty.
	Since(ctx context.Context, site string, afterID int64) ([]Record, error)
	Close() error
}
