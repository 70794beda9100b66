package logfields

import (
	"errors"
	"log/slog"
	"testing"
)

// TestHelperKeyNames verifies string-based helper key/value stability.
func TestHelperKeyNames(t *testing.T) {
	cases := []struct {
		name    string
		attrKey string
		attrVal string
		attr    slog.Attr
	}{
		{"BuildID", KeyBuildID, "b1", BuildID("b1")},
		{"Article", KeyArticle, "posts/hello", Article("posts/hello")},
		{"Task", KeyTask, "page:posts/hello", Task("page:posts/hello")},
		{"TaskState", KeyTaskState, "written", TaskState("written")},
		{"Fingerprint", KeyFingerprint, "abc", Fingerprint("abc")},
		{"Plugin", KeyPlugin, "reading-time@1.0.0", Plugin("reading-time@1.0.0")},
		{"Theme", KeyTheme, "minimal@1.0.0", Theme("minimal@1.0.0")},
		{"Stage", KeyStage, "parse", Stage("parse")},
		{"Path", KeyPath, "/tmp/x", Path("/tmp/x")},
	}

	for _, tc := range cases {
		if tc.attr.Key != tc.attrKey {
			// Key drift would break log ingestion schemas.
			t.Fatalf("%s: expected key %s, got %s", tc.name, tc.attrKey, tc.attr.Key)
		}
		if tc.attr.Value.String() != tc.attrVal {
			t.Fatalf("%s: expected value %s, got %s", tc.name, tc.attrVal, tc.attr.Value.String())
		}
	}
}

func TestErrorHelper(t *testing.T) {
	if got := Error(nil).Value.String(); got != "" {
		t.Fatalf("expected empty error value, got %q", got)
	}
	if got := Error(errors.New("boom")).Value.String(); got != "boom" {
		t.Fatalf("expected boom, got %q", got)
	}
}

func TestNumericHelpers(t *testing.T) {
	if a := Worker(3); a.Key != KeyWorker || a.Value.Int64() != 3 {
		t.Fatalf("unexpected worker attr %v", a)
	}
	if a := DurationMS(1.5); a.Key != KeyDurationMS || a.Value.Float64() != 1.5 {
		t.Fatalf("unexpected duration attr %v", a)
	}
}
