package stream

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/creatorlens/creatorlens-go/internal/domain"
)

func TestWriterOneEventPerLine(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	if err := w.Status(domain.StatusSearching, "working", 10, 2); err != nil {
		t.Fatalf("status failed: %v", err)
	}
	if err := w.Items(nil, 0); err != nil {
		t.Fatalf("items failed: %v", err)
	}
	if err := w.Done(domain.DoneSummary{ScannedCount: 10}, "next"); err != nil {
		t.Fatalf("done failed: %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d: %q", len(lines), buf.String())
	}
	for _, line := range lines {
		if !json.Valid([]byte(line)) {
			t.Fatalf("line is not valid JSON: %q", line)
		}
	}

	var done domain.DoneEvent
	if err := json.Unmarshal([]byte(lines[2]), &done); err != nil {
		t.Fatalf("done line unmarshal failed: %v", err)
	}
	if done.Type != domain.EventDone || done.NextCursor != "next" {
		t.Fatalf("unexpected done event: %+v", done)
	}
}

func TestWriterNothingFollowsTerminalUnderConcurrency(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			if err := w.Status(domain.StatusSearching, "scanning", i, 0); err != nil {
				t.Errorf("status emit failed: %v", err)
				return
			}
		}
	}()

	if err := w.Error("backend gave up", "API_ERROR", false); err != nil {
		t.Fatalf("error emit failed: %v", err)
	}
	<-done

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	last := lines[len(lines)-1]
	var event domain.ErrorEvent
	if err := json.Unmarshal([]byte(last), &event); err != nil {
		t.Fatalf("last line unmarshal failed: %v", err)
	}
	if event.Type != domain.EventError {
		t.Fatalf("expected the terminal event on the last line, got %q", last)
	}
}

func TestWriterSealsAfterTerminalEvent(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	if err := w.Error("boom", "API_ERROR", true); err != nil {
		t.Fatalf("error emit failed: %v", err)
	}
	before := buf.Len()

	if err := w.Status(domain.StatusSearching, "late", 0, 0); err != nil {
		t.Fatalf("post-terminal status returned error: %v", err)
	}
	if buf.Len() != before {
		t.Fatalf("expected no bytes after terminal event, got %q", buf.String())
	}
}
