package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyPageView   = "page_view"
	KeySource     = "source"
	KeyFieldID    = "field_id"
	KeyCategory   = "category"
	KeyAction     = "action"
	KeyLabel      = "label"
	KeySink       = "sink"
	KeyCount      = "count"
	KeyPath       = "path"
	KeyMethod     = "method"
	KeyStatus     = "status"
	KeyRemoteAddr = "remote_addr"
	KeyDurationMS = "duration_ms"
	KeyJob        = "job"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func PageView(id string) slog.Attr    { return slog.String(KeyPageView, id) }
func Source(s string) slog.Attr       { return slog.String(KeySource, s) }
func FieldID(id string) slog.Attr     { return slog.String(KeyFieldID, id) }
func Category(c string) slog.Attr     { return slog.String(KeyCategory, c) }
func Action(a string) slog.Attr       { return slog.String(KeyAction, a) }
func Label(l string) slog.Attr        { return slog.String(KeyLabel, l) }
func Sink(name string) slog.Attr      { return slog.String(KeySink, name) }
func Count(n int) slog.Attr           { return slog.Int(KeyCount, n) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Method(m string) slog.Attr       { return slog.String(KeyMethod, m) }
func Status(code int) slog.Attr       { return slog.Int(KeyStatus, code) }
func RemoteAddr(a string) slog.Attr   { return slog.String(KeyRemoteAddr, a) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Job(name string) slog.Attr       { return slog.String(KeyJob, name) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
