package report

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/kozaktomas/face-sentry/internal/emotion"
	"github.com/kozaktomas/face-sentry/internal/gallery"
	"github.com/kozaktomas/face-sentry/internal/history"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newTestSink(t *testing.T) (*FileSink, string) {
	t.Helper()
	root := t.TempDir()
	sink := NewFileSink(root, testLogger())
	sink.now = func() time.Time {
		return time.Date(2025, 8, 6, 22, 36, 38, 0, time.UTC)
	}
	return sink, root
}

func TestWriteVerified(t *testing.T) {
	sink, root := newTestSink(t)
	if err := gallery.SaveImage(root, "alice", []byte("img")); err != nil {
		t.Fatal(err)
	}

	sink.WriteVerified("alice", 85.21, emotion.Happy, 42.04)
	sink.WriteVerified("alice", 90, emotion.Neutral, 0)

	data, err := os.ReadFile(filepath.Join(gallery.IdentityPath(root, "alice"), "verified_report.txt"))
	if err != nil {
		t.Fatalf("reading verified report: %v", err)
	}

	blocks := strings.Split(strings.TrimRight(string(data), "\n"), "\n\n")
	if len(blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d: %q", len(blocks), data)
	}

	lines := strings.Split(blocks[0], "\n")
	if len(lines) != 5 {
		t.Fatalf("expected 5 lines per block, got %d: %q", len(lines), blocks[0])
	}
	if lines[0] != "alice at 2025-08-06_22:36:38" {
		t.Errorf("unexpected header line: %q", lines[0])
	}
	if lines[2] != "dominant emotion: happy" {
		t.Errorf("unexpected emotion line: %q", lines[2])
	}
	if lines[3] != "motion: 42.0" {
		t.Errorf("unexpected motion line: %q", lines[3])
	}
	if lines[4] != "best similarity: 85.2%" {
		t.Errorf("unexpected similarity line: %q", lines[4])
	}
}

func TestWriteVerifiedMissingDestination(t *testing.T) {
	sink, root := newTestSink(t)

	// No identity folder exists; the write must be skipped silently.
	sink.WriteVerified("ghost", 85, emotion.Happy, 0)

	if _, err := os.Stat(gallery.IdentityPath(root, "ghost")); !os.IsNotExist(err) {
		t.Error("missing destination must not be created by a report write")
	}
}

func TestWriteUnknown(t *testing.T) {
	sink, root := newTestSink(t)

	sink.WriteUnknown(45.22, emotion.Neutral, []byte("fake-jpeg"), 123.41)

	line, err := os.ReadFile(filepath.Join(gallery.UnknownPath(root), "unknown_report.txt"))
	if err != nil {
		t.Fatalf("reading unknown report: %v", err)
	}
	want := "unknown 20250806_223638 similarity:45.2% emotion:neutral motion:123.4\n"
	if string(line) != want {
		t.Errorf("unexpected incident line:\n got %q\nwant %q", line, want)
	}

	img, err := os.ReadFile(filepath.Join(gallery.UnknownPath(root), "unknown_20250806_223638.jpg"))
	if err != nil {
		t.Fatalf("reading archived face: %v", err)
	}
	if string(img) != "fake-jpeg" {
		t.Error("archived image content mismatch")
	}
}

func TestWriteUnknownWithoutImage(t *testing.T) {
	sink, root := newTestSink(t)

	sink.WriteUnknown(50, emotion.Sad, nil, 0)

	if _, err := os.Stat(filepath.Join(gallery.UnknownPath(root), "unknown_report.txt")); err != nil {
		t.Errorf("incident line must be written even without an image: %v", err)
	}
	if _, err := os.Stat(filepath.Join(gallery.UnknownPath(root), "unknown_20250806_223638.jpg")); !os.IsNotExist(err) {
		t.Error("no image file expected")
	}
}

func TestLoadHistoryRoundTrip(t *testing.T) {
	sink, root := newTestSink(t)
	if err := gallery.SaveImage(root, "alice", []byte("img")); err != nil {
		t.Fatal(err)
	}

	sink.WriteVerified("alice", 85.2, emotion.Happy, 42.0)
	sink.WriteUnknown(45.2, emotion.Sad, nil, 12.5)

	events, err := LoadHistory(root)
	if err != nil {
		t.Fatalf("load history: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}

	var verified, unknown *history.Event
	for i := range events {
		if events[i].IsKnown {
			verified = &events[i]
		} else {
			unknown = &events[i]
		}
	}
	if verified == nil || unknown == nil {
		t.Fatal("expected one verified and one unknown event")
	}

	if verified.Identity != "alice" || verified.Similarity != 85.2 || verified.Emotion != emotion.Happy {
		t.Errorf("unexpected verified event: %+v", verified)
	}
	if verified.Timestamp.IsZero() {
		t.Error("verified timestamp should parse")
	}
	if unknown.Identity != history.UnknownLabel || unknown.Similarity != 45.2 || unknown.Emotion != emotion.Sad {
		t.Errorf("unexpected unknown event: %+v", unknown)
	}
	if unknown.Motion != 12.5 {
		t.Errorf("unexpected unknown motion: %v", unknown.Motion)
	}
}

func TestLoadHistoryEmptyRoot(t *testing.T) {
	events, err := LoadHistory(t.TempDir())
	if err != nil {
		t.Fatalf("empty root should not fail: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("expected no events, got %d", len(events))
	}
}

func TestLoadHistorySkipsMalformed(t *testing.T) {
	root := t.TempDir()
	if err := gallery.SaveImage(root, "alice", []byte("img")); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(gallery.IdentityPath(root, "alice"), "verified_report.txt")
	if err := os.WriteFile(path, []byte("garbage\n\nalso not a block\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	events, err := LoadHistory(root)
	if err != nil {
		t.Fatalf("load history: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("malformed blocks must be skipped, got %d events", len(events))
	}
}
