package eventstore

import (
	"errors"
	"testing"
	"time"

	ferrors "git.home.luguber.info/inful/pagetree/internal/foundation/errors"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("open event log: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func appendChange(t *testing.T, s Store, opID, eventType string, change PageChange) *Record {
	t.Helper()
	rec, err := NewRecord(opID, eventType, change)
	if err != nil {
		t.Fatalf("encode %s: %v", eventType, err)
	}
	if err := s.Append(t.Context(), rec); err != nil {
		t.Fatalf("append %s: %v", eventType, err)
	}
	return rec
}

func TestAppendAssignsIDAndTime(t *testing.T) {
	s := openTestStore(t)
	stamp := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return stamp }

	first := appendChange(t, s, "op-1", TypePageCreated, PageChange{Site: "docs", PageID: 1})
	second := appendChange(t, s, "op-1", TypeVersionCreated, PageChange{Site: "docs", PageID: 1, Language: "en"})

	if first.ID == 0 || second.ID <= first.ID {
		t.Fatalf("ids not increasing: %d then %d", first.ID, second.ID)
	}
	if !first.At.Equal(stamp) {
		t.Errorf("At = %v, want %v", first.At, stamp)
	}

	got, err := s.ByOperation(t.Context(), "op-1")
	if err != nil {
		t.Fatalf("ByOperation: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d records, want 2", len(got))
	}
	if got[0].Type != TypePageCreated || got[1].Type != TypeVersionCreated {
		t.Errorf("unexpected order: %s, %s", got[0].Type, got[1].Type)
	}
	if got[1].Site != "docs" || !got[1].At.Equal(stamp) {
		t.Errorf("record round trip lost fields: %+v", got[1])
	}
	change, err := got[1].Change()
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if change.Language != "en" || change.PageID != 1 {
		t.Errorf("payload = %+v", change)
	}
}

func TestSinceFiltersBySiteAndCursor(t *testing.T) {
	s := openTestStore(t)
	a := appendChange(t, s, "op-a", TypePageCreated, PageChange{Site: "docs", PageID: 1})
	appendChange(t, s, "op-b", TypePageCreated, PageChange{Site: "blog", PageID: 1})
	c := appendChange(t, s, "op-c", TypePageMoved, PageChange{Site: "docs", PageID: 1, TargetID: 2})

	all, err := s.Since(t.Context(), "", 0)
	if err != nil {
		t.Fatalf("Since: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("got %d records, want 3", len(all))
	}

	docs, err := s.Since(t.Context(), "docs", a.ID)
	if err != nil {
		t.Fatalf("Since docs: %v", err)
	}
	if len(docs) != 1 || docs[0].ID != c.ID {
		t.Fatalf("Since(docs, %d) = %+v, want only record %d", a.ID, docs, c.ID)
	}

	none, err := s.Since(t.Context(), "", c.ID)
	if err != nil {
		t.Fatalf("Since tail: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("expected nothing after the last record, got %d", len(none))
	}
}

func TestAppendRejectsUnknownType(t *testing.T) {
	s := openTestStore(t)
	err := s.Append(t.Context(), &Record{OperationID: "op", Site: "docs", Type: "PageExploded"})
	if !errors.Is(err, ErrUnknownEventType) {
		t.Fatalf("expected ErrUnknownEventType, got %v", err)
	}
	if !ferrors.HasCategory(err, ferrors.CategoryEventStore) {
		t.Errorf("expected eventstore category, got %v", err)
	}
}

func TestClosedStoreReportsReadErrors(t *testing.T) {
	s, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if _, err := s.Since(t.Context(), "", 0); !errors.Is(err, ErrRead) {
		t.Fatalf("expected ErrRead, got %v", err)
	}
}
