package testsupport

import (
	"path/filepath"
	"testing"
)

func TestMatchSnapshotRecordsOnlyWhenUpdating(t *testing.T) {
	path := filepath.Join(t.TempDir(), "__snapshots__", "widget.snap.html")

	t.Setenv("UPDATE_GOLDENS", "1")
	MatchSnapshot(t, path, []byte("<p>one</p>\n"))
	if got := MustReadGoldenString(t, path); got != "<p>one</p>\n" {
		t.Fatalf("recorded snapshot = %q", got)
	}

	t.Setenv("UPDATE_GOLDENS", "")
	MatchSnapshot(t, path, []byte("<p>one</p>\n"))
}
