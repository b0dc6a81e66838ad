// Package eventstore records committed page lifecycle events and derives the
// publish history read model from them.
package eventstore

import (
	"context"
	"sync"
	"time"
)

// HistoryEntry is one publish state change of a (page, language).
type HistoryEntry struct {
	OperationID string    `json:"operation_id"`
	EventType   string    `json:"event_type"`
	From        string    `json:"from"`
	To          string    `json:"to"`
	At          time.Time `json:"at"`
	// Cascaded is true when the change reached a descendant of the page the
	// operation targeted.
	Cascaded bool `json:"cascaded"`
}

type historyKey struct {
	site     string
	pageID   int64
	language string
}

// PublishHistory is an in-memory view of publish state changes per
// (site, page, language). It follows the log by record ID, so records
// written by other processes are picked up on the next CatchUp.
type PublishHistory struct {
	mu      sync.RWMutex
	store   Store
	entries map[historyKey][]HistoryEntry
	limit   int
	lastID  int64
}

// NewPublishHistory creates a view over store keeping at most limit entries
// per page language. A nil store gives a view fed only through Apply.
func NewPublishHistory(store Store, limit int) *PublishHistory {
	if limit <= 0 {
		limit = 100
	}
	return &PublishHistory{
		store:   store,
		entries: make(map[historyKey][]HistoryEntry),
		limit:   limit,
	}
}

// CatchUp applies every record appended since the last one seen.
func (h *PublishHistory) CatchUp(ctx context.Context) error {
	if h.store == nil {
		return nil
	}
	h.mu.RLock()
	after := h.lastID
	h.mu.RUnlock()

	records, err := h.store.Since(ctx, "", after)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for i := range records {
		if err := h.applyLocked(&records[i]); err != nil {
			return err
		}
	}
	return nil
}

// Apply folds one record into the view. Records at or below the last seen
// ID are ignored. When the view follows a store, a record that would skip
// unseen IDs is left for CatchUp so the log is applied in order.
func (h *PublishHistory) Apply(rec *Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.applyLocked(rec)
}

func (h *PublishHistory) applyLocked(rec *Record) error {
	if rec.ID != 0 {
		if rec.ID <= h.lastID || (h.store != nil && rec.ID > h.lastID+1) {
			return nil
		}
		h.lastID = rec.ID
	}
	if _, ok := knownTypes[rec.Type]; !ok {
		return nil
	}
	change, err := rec.Change()
	if err != nil {
		return err
	}
	if rec.Type == TypePageDeleted {
		for key := range h.entries {
			if key.site == change.Site && key.pageID == change.PageID {
				delete(h.entries, key)
			}
		}
		return nil
	}
	for _, tr := range change.Transitions {
		key := historyKey{site: change.Site, pageID: tr.PageID, language: tr.Language}
		list := append(h.entries[key], HistoryEntry{
			OperationID: rec.OperationID,
			EventType:   rec.Type,
			From:        tr.From,
			To:          tr.To,
			At:          rec.At,
			Cascaded:    tr.PageID != change.PageID,
		})
		if len(list) > h.limit {
			list = list[len(list)-h.limit:]
		}
		h.entries[key] = list
	}
	return nil
}

// History returns the state changes of a page language, oldest first.
func (h *PublishHistory) History(site string, pageID int64, language string) []HistoryEntry {
	h.mu.RLock()
	defer h.mu.RUnlock()

	list := h.entries[historyKey{site: site, pageID: pageID, language: language}]
	out := make([]HistoryEntry, len(list))
	copy(out, list)
	return out
}

// LastState returns the most recent state recorded for a page language.
func (h *PublishHistory) LastState(site string, pageID int64, language string) (string, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	list := h.entries[historyKey{site: site, pageID: pageID, language: language}]
	if len(list) == 0 {
		return "", false
	}
	return list[len(list)-1].To, true
}
