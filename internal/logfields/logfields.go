package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeySpecID          = "spec_id"
	KeyBatchID         = "batch_id"
	KeyEventType       = "event_type"
	KeyEventIndex      = "event_index"
	KeyEventCount      = "event_count"
	KeyInteractionUUID = "interaction_uuid"
	KeyMethod          = "method"
	KeyPath            = "path"
	KeyStatus          = "status"
	KeySubject         = "subject"
	KeyRepo            = "repository"
	KeyBranch          = "branch"
	KeyCommit          = "commit"
	KeyDigest          = "digest"
	KeyDurationMS      = "duration_ms"
	KeyError           = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func SpecID(id string) slog.Attr          { return slog.String(KeySpecID, id) }
func BatchID(id string) slog.Attr         { return slog.String(KeyBatchID, id) }
func EventType(t string) slog.Attr        { return slog.String(KeyEventType, t) }
func EventIndex(i int) slog.Attr          { return slog.Int(KeyEventIndex, i) }
func EventCount(n int) slog.Attr          { return slog.Int(KeyEventCount, n) }
func InteractionUUID(id string) slog.Attr { return slog.String(KeyInteractionUUID, id) }
func Method(m string) slog.Attr           { return slog.String(KeyMethod, m) }
func Path(p string) slog.Attr             { return slog.String(KeyPath, p) }
func Status(code int) slog.Attr           { return slog.Int(KeyStatus, code) }
func Subject(s string) slog.Attr          { return slog.String(KeySubject, s) }
func Repository(r string) slog.Attr       { return slog.String(KeyRepo, r) }
func Branch(b string) slog.Attr           { return slog.String(KeyBranch, b) }
func Commit(c string) slog.Attr           { return slog.String(KeyCommit, c) }
func Digest(d string) slog.Attr           { return slog.String(KeyDigest, d) }
func DurationMS(ms float64) slog.Attr     { return slog.Float64(KeyDurationMS, ms) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
