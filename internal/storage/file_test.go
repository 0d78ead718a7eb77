package storage

import (
	"io"
	"os"
	"path/filepath"
	"testing"
)

func writeReport(t *testing.T, sink Sink, body string, commit bool) {
	t.Helper()
	dest, err := sink.Open()
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := io.WriteString(dest, body); err != nil {
		t.Fatalf("write: %v", err)
	}
	if commit {
		if err := dest.Commit(); err != nil {
			t.Fatalf("commit: %v", err)
		}
		return
	}
	if err := dest.Discard(); err != nil {
		t.Fatalf("discard: %v", err)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	return string(data)
}

func TestFileSinkOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "report.txt")
	sink := NewFileSink(path, false)

	writeReport(t, sink, "first report that is long", true)
	writeReport(t, sink, "second", true)

	if got := readFile(t, path); got != "second" {
		t.Fatalf("report not overwritten: %q", got)
	}
}

func TestFileSinkTruncatesOnFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.txt")
	sink := NewFileSink(path, false)

	writeReport(t, sink, "good", true)

	dest, err := sink.Open()
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if got := readFile(t, path); got != "" {
		t.Fatalf("open must truncate, got %q", got)
	}
	if _, err := io.WriteString(dest, "partial"); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := dest.Discard(); err != nil {
		t.Fatalf("discard: %v", err)
	}
	if got := readFile(t, path); got != "partial" {
		t.Fatalf("expected partial report, got %q", got)
	}
}

func TestFileSinkAtomicKeepsLastGood(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.txt")
	sink := NewFileSink(path, true)

	writeReport(t, sink, "good", true)
	writeReport(t, sink, "broken", false)

	if got := readFile(t, path); got != "good" {
		t.Fatalf("last good report lost: %q", got)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("tmp file should be removed, stat err %v", err)
	}

	writeReport(t, sink, "newer", true)
	if got := readFile(t, path); got != "newer" {
		t.Fatalf("atomic commit failed: %q", got)
	}
}

func TestFileSinkMissingPath(t *testing.T) {
	if _, err := NewFileSink("", false).Open(); err == nil {
		t.Fatalf("expected error for empty path")
	}
}
