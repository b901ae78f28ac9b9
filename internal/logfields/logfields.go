package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyProject    = "project"
	KeyPath       = "path"
	KeyTarget     = "target"
	KeyJVMTarget  = "jvm_target"
	KeyRunID      = "run_id"
	KeyAttempt    = "attempt"
	KeyDurationMS = "duration_ms"
	KeyConfig     = "config"
	KeyCount      = "count"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func Project(name string) slog.Attr   { return slog.String(KeyProject, name) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Target(t string) slog.Attr       { return slog.String(KeyTarget, t) }
func JVMTarget(v string) slog.Attr    { return slog.String(KeyJVMTarget, v) }
func RunID(id string) slog.Attr       { return slog.String(KeyRunID, id) }
func Attempt(n int) slog.Attr         { return slog.Int(KeyAttempt, n) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Config(path string) slog.Attr    { return slog.String(KeyConfig, path) }
func Count(n int) slog.Attr           { return slog.Int(KeyCount, n) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
