package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeySite        = "site"
	KeyPageID      = "page_id"
	KeyNodeID      = "node_id"
	KeyLanguage    = "language"
	KeyPath        = "path"
	KeySlug        = "slug"
	KeyScope       = "scope"
	KeyOperation   = "operation"
	KeyOperationID = "operation_id"
	KeyState       = "state"
	KeyCount       = "count"
	KeyAttempt     = "attempt"
	KeyDurationMS  = "duration_ms"
	KeyError       = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func Site(id string) slog.Attr        { return slog.String(KeySite, id) }
func PageID(id int64) slog.Attr       { return slog.Int64(KeyPageID, id) }
func NodeID(id int64) slog.Attr       { return slog.Int64(KeyNodeID, id) }
func Language(code string) slog.Attr  { return slog.String(KeyLanguage, code) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Slug(s string) slog.Attr         { return slog.String(KeySlug, s) }
func Scope(s string) slog.Attr        { return slog.String(KeyScope, s) }
func Operation(name string) slog.Attr { return slog.String(KeyOperation, name) }
func OperationID(id string) slog.Attr { return slog.String(KeyOperationID, id) }
func State(s string) slog.Attr        { return slog.String(KeyState, s) }
func Count(n int) slog.Attr           { return slog.Int(KeyCount, n) }
func Attempt(n int) slog.Attr         { return slog.Int(KeyAttempt, n) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
