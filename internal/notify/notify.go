// Package notify announces committed page changes to downstream consumers
// such as rendered-output caches.
package notify

import (
	"context"
	"sync"
	"time"
)

// Kind classifies a change notification.
type Kind string

const (
	KindPublished   Kind = "published"
	KindUnpublished Kind = "unpublished"
	KindMoved       Kind = "moved"
	KindDeleted     Kind = "deleted"
	KindTranslation Kind = "translation_deleted"
)

// Change describes public paths whose resolution may have changed.
type Change struct {
	OperationID string    `json:"operation_id"`
	Site        string    `json:"site"`
	PageID      int64     `json:"page_id"`
	Language    string    `json:"language,omitempty"`
	Kind        Kind      `json:"kind"`
	Paths       []string  `json:"paths,omitempty"`
	At          time.Time `json:"at"`
}

// Notifier delivers change notifications. Notify is called after the
// operation committed; failures do not undo the operation.
type Notifier interface {
	Notify(ctx context.Context, change Change) error
	Close() error
}

// NoopNotifier discards notifications.
type NoopNotifier struct{}

func (NoopNotifier) Notify(context.Context, Change) error { return nil }
func (NoopNotifier) Close() error                         { return nil }

// MemoryNotifier keeps notifications in memory.
type MemoryNotifier struct {
	mu      sync.Mutex
	changes []Change
}

func (m *MemoryNotifier) Notify(_ context.Context, change Change) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.changes = append(m.changes, change)
	return nil
}

func (m *MemoryNotifier) Close() error { return nil }

// Changes returns a copy of the received notifications in order.
func (m *MemoryNotifier) Changes() []Change {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Change, len(m.changes))
	copy(out, m.changes)
	return out
}
