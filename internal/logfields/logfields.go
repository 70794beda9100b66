package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyBuildID     = "build_id"
	KeyArticle     = "article"
	KeyTask        = "task"
	KeyTaskState   = "task_state"
	KeyFingerprint = "fingerprint"
	KeyPlugin      = "plugin"
	KeyTheme       = "theme"
	KeyStage       = "stage"
	KeyWorker      = "worker"
	KeyPath        = "path"
	KeyDurationMS  = "duration_ms"
	KeyError       = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func BuildID(id string) slog.Attr     { return slog.String(KeyBuildID, id) }
func Article(path string) slog.Attr   { return slog.String(KeyArticle, path) }
func Task(id string) slog.Attr        { return slog.String(KeyTask, id) }
func TaskState(s string) slog.Attr    { return slog.String(KeyTaskState, s) }
func Fingerprint(fp string) slog.Attr { return slog.String(KeyFingerprint, fp) }
func Plugin(id string) slog.Attr      { return slog.String(KeyPlugin, id) }
func Theme(id string) slog.Attr       { return slog.String(KeyTheme, id) }
func Stage(name string) slog.Attr     { return slog.String(KeyStage, name) }
func Worker(id int) slog.Attr         { return slog.Int(KeyWorker, id) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
