package eventstore

import "encoding/json"

// Page lifecycle event types.
const (
	TypePageCreated     = "PageCreated"
	TypePageMoved       = "PageMoved"
	TypePageDeleted     = "PageDeleted"
	TypeVersionCreated  = "VersionCreated"
	TypeVersionUpdated  = "VersionUpdated"
	TypeVersionDeleted  = "VersionDeleted"
	TypePagePublished   = "PagePublished"
	TypePageUnpublished = "PageUnpublished"
	TypePageReverted    = "PageReverted"
)

var knownTypes = map[string]struct{}{
	TypePageCreated:     {},
	TypePageMoved:       {},
	TypePageDeleted:     {},
	TypeVersionCreated:  {},
	TypeVersionUpdated:  {},
	TypeVersionDeleted:  {},
	TypePagePublished:   {},
	TypePageUnpublished: {},
	TypePageReverted:    {},
}

// TransitionRecord is one publish state change, either of the page the
// operation targeted or of a descendant reached by a cascade.
type TransitionRecord struct {
	PageID   int64  `json:"page_id"`
	Language string `json:"language"`
	From     string `json:"from"`
	To       string `json:"to"`
}

// PageChange is the payload shared by every lifecycle event. Fields that do
// not apply to an event type are left zero.
type PageChange struct {
	Site        string             `json:"site"`
	PageID      int64              `json:"page_id"`
	Language    string             `json:"language,omitempty"`
	Path        string             `json:"path,omitempty"`
	TargetID    int64              `json:"target_id,omitempty"`
	Position    string             `json:"position,omitempty"`
	Count       int                `json:"count,omitempty"`
	Transitions []TransitionRecord `json:"transitions,omitempty"`
}

// NewRecord encodes change as a record of the given type, ready to append.
func NewRecord(operationID, eventType string, change PageChange) (*Record, error) {
	if _, ok := knownTypes[eventType]; !ok {
		return nil, ErrUnknownEventType.WithContext("type", eventType)
	}
	payload, err := json.Marshal(change)
	if err != nil {
		return nil, ErrPayload.WithCause(err).
			WithContext("operation_id", operationID).
			WithContext("type", eventType)
	}
	return &Record{
		OperationID: operationID,
		Site:        change.Site,
		Type:        eventType,
		Payload:     payload,
	}, nil
}
