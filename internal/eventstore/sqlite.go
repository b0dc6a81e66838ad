package eventstore

import (
	"context"
	"database/sql"
	"time"

	_ "modernc.org/sqlite"
)

const eventSchema = `
CREATE TABLE IF NOT EXISTS page_events (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	operation_id TEXT    NOT NULL,
	site         TEXT    NOT NULL,
	event_type   TEXT    NOT NULL,
	at           INTEGER NOT NULL,
	payload      BLOB    NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_page_events_operation ON page_events(operation_id);
CREATE INDEX IF NOT EXISTS idx_page_events_site ON page_events(site, id);
`

const selectRecords = `SELECT id, operation_id, site, event_type, at, payload FROM page_events`

// SQLiteStore is a Store backed by a SQLite database.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteStore opens (creating if needed) the event log at dbPath.
// ":memory:" gives a private in-memory log.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, ErrOpen.WithCause(err).WithContext("path", dbPath)
	}
	// One connection serializes appends, and ":memory:" is per connection.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(eventSchema); err != nil {
		_ = db.Close()
		return nil, ErrOpen.WithCause(err).WithContext("path", dbPath)
	}
	return &SQLiteStore{db: db, now: time.Now}, nil
}

// Append implements Store.
func (s *SQLiteStore) Append(ctx context.Context, rec *Record) error {
	if _, known := knownTypes[rec.Type]; !known {
		return ErrUnknownEventType.WithContext("type", rec.Type)
	}
	payload := []byte(rec.Payload)
	if payload == nil {
		payload = []byte("{}")
	}
	at := s.now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO page_events (operation_id, site, event_type, at, payload) VALUES (?, ?, ?, ?, ?)`,
		rec.OperationID, rec.Site, rec.Type, at.UnixNano(), payload)
	if err != nil {
		return ErrAppend.WithCause(err).WithContext("operation_id", rec.OperationID)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return ErrAppend.WithCause(err).WithContext("operation_id", rec.OperationID)
	}
	rec.ID, rec.At = id, at
	return nil
}

// ByOperation implements Store.
func (s *SQLiteStore) ByOperation(ctx context.Context, operationID string) ([]Record, error) {
	return s.query(ctx, selectRecords+` WHERE operation_id = ? ORDER BY id`, operationID)
}

// Since implements Store.
func (s *SQLiteStore) Since(ctx context.Context, site string, afterID int64) ([]Record, error) {
	if site == "" {
		return s.query(ctx, selectRecords+` WHERE id > ? ORDER BY id`, afterID)
	}
	return s.query(ctx, selectRecords+` WHERE site = ? AND id > ? ORDER BY id`, site, afterID)
}

func (s *SQLiteStore) query(ctx context.Context, query string, args ...any) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, ErrRead.WithCause(err)
	}
	defer func() { _ = rows.Close() }()

	var records []Record
	for rows.Next() {
		var r Record
		var at int64
		var payload []byte
		if err := rows.Scan(&r.ID, &r.OperationID, &r.Site, &r.Type, &at, &payload); err != nil {
			return nil, ErrRead.WithCause(err)
		}
		r.At = time.Unix(0, at).UTC()
		r.Payload = payload
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, ErrRead.WithCause(err)
	}
	return records, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
