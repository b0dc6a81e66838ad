package eventstore

import (
	"errors"
	"testing"
)

func TestNewRecordEncodesChange(t *testing.T) {
	change := PageChange{
		Site:     "docs",
		PageID:   4,
		Language: "de",
		Path:     "/start/uber-uns",
		Transitions: []TransitionRecord{
			{PageID: 4, Language: "de", From: "draft", To: "published"},
		},
	}
	rec, err := NewRecord("op-7", TypePagePublished, change)
	if err != nil {
		t.Fatalf("NewRecord: %v", err)
	}
	if rec.Site != "docs" || rec.Type != TypePagePublished || rec.OperationID != "op-7" {
		t.Errorf("record header = %+v", rec)
	}
	if rec.ID != 0 || !rec.At.IsZero() {
		t.Errorf("ID and At belong to the store, got %d and %v", rec.ID, rec.At)
	}

	decoded, err := rec.Change()
	if err != nil {
		t.Fatalf("Change: %v", err)
	}
	if decoded.Path != change.Path || len(decoded.Transitions) != 1 || decoded.Transitions[0].To != "published" {
		t.Errorf("decoded = %+v", decoded)
	}
}

func TestNewRecordRejectsUnknownType(t *testing.T) {
	if _, err := NewRecord("op", "SiteRenamed", PageChange{Site: "docs"}); !errors.Is(err, ErrUnknownEventType) {
		t.Fatalf("expected ErrUnknownEventType, got %v", err)
	}
}

func TestChangeRejectsMalformedPayload(t *testing.T) {
	rec := Record{ID: 3, Type: TypePageMoved, Payload: []byte("{not json")}
	if _, err := rec.Change(); !errors.Is(err, ErrPayload) {
		t.Fatalf("expected ErrPayload, got %v", err)
	}
}
