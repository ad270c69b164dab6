package stream

import (
	"context"
	"errors"
	"io"
	"testing"

	"go.uber.org/zap"

	"github.com/creatorlens/creatorlens-go/internal/domain"
)

// chunkedReader yields the payload in fixed-size chunks, simulating network
// reads that split NDJSON lines at arbitrary byte boundaries.
type chunkedReader struct {
	data      []byte
	chunkSize int
	offset    int
}

func (c *chunkedReader) Read(p []byte) (int, error) {
	if c.offset >= len(c.data) {
		return 0, io.EOF
	}
	end := c.offset + c.chunkSize
	if end > len(c.data) {
		end = len(c.data)
	}
	n := copy(p, c.data[c.offset:end])
	c.offset += n
	return n, nil
}

const sampleStream = `{"type":"status","status":"searching","message":"analyzing the niche","scannedCount":0,"matchedCount":0}
{"type":"items","items":[{"videoId":"v1","channelId":"c1","title":"first","channelTitle":"Chan","publishedAt":"2025-05-01T00:00:00Z","viewCount":1000,"derived":{"viewsPerDay":50,"dataStatus":"ready"}}],"totalMatched":2}
{"type":"items","items":[{"videoId":"v2","channelId":"c2","title":"second","channelTitle":"Chan2","publishedAt":"2025-05-02T00:00:00Z","viewCount":2000,"derived":{"viewsPerDay":80,"dataStatus":"building"}}],"totalMatched":2}
{"type":"done","summary":{"scannedCount":40,"returnedCount":2,"cacheHit":false,"timeMs":1200,"exhausted":false},"nextCursor":"abc123"}
`

func TestReaderReassemblesSplitLines(t *testing.T) {
	for _, chunkSize := range []int{1, 3, 7, 64, 4096} {
		source := &chunkedReader{data: []byte(sampleStream), chunkSize: chunkSize}
		reader := NewReader(source, zap.NewNop())

		items, done, errEvent, err := reader.Collect(context.Background())
		if err != nil {
			t.Fatalf("chunk %d: collect failed: %v", chunkSize, err)
		}
		if errEvent != nil {
			t.Fatalf("chunk %d: unexpected error event: %+v", chunkSize, errEvent)
		}
		if len(items) != 2 || items[0].VideoID != "v1" || items[1].VideoID != "v2" {
			t.Fatalf("chunk %d: unexpected items: %+v", chunkSize, items)
		}
		if done == nil || done.NextCursor != "abc123" || done.Summary.ScannedCount != 40 {
			t.Fatalf("chunk %d: unexpected done event: %+v", chunkSize, done)
		}
	}
}

func TestReaderHandlesMissingFinalNewline(t *testing.T) {
	payload := `{"type":"status","status":"searching","message":"m","scannedCount":0,"matchedCount":0}
{"type":"done","summary":{"scannedCount":1,"returnedCount":0,"cacheHit":true,"timeMs":5,"exhausted":true}}`

	reader := NewReader(&chunkedReader{data: []byte(payload), chunkSize: 5}, zap.NewNop())

	_, done, _, err := reader.Collect(context.Background())
	if err != nil {
		t.Fatalf("collect failed: %v", err)
	}
	if done == nil || !done.Summary.Exhausted {
		t.Fatalf("expected terminal done without trailing newline, got %+v", done)
	}
}

func TestReaderSkipsUnparsableLines(t *testing.T) {
	payload := "this is not json\n" +
		`{"type":"mystery","value":1}` + "\n" +
		`{"type":"done","summary":{"scannedCount":0,"returnedCount":0,"cacheHit":false,"timeMs":1,"exhausted":true}}` + "\n"

	reader := NewReader(&chunkedReader{data: []byte(payload), chunkSize: 16}, zap.NewNop())

	event, err := reader.Next(context.Background())
	if err != nil {
		t.Fatalf("next failed: %v", err)
	}
	if event.Type != domain.EventDone {
		t.Fatalf("expected garbage to be skipped, got %+v", event)
	}
}

func TestReaderErrorEventWithPartialItems(t *testing.T) {
	payload := `{"type":"items","items":[{"videoId":"v1","channelId":"c1","title":"t","channelTitle":"c","publishedAt":"2025-05-01T00:00:00Z","viewCount":1,"derived":{"viewsPerDay":1,"dataStatus":"building"}}],"totalMatched":1}` + "\n" +
		`{"type":"error","error":"quota exceeded","code":"QUOTA_ERROR","partial":true}` + "\n"

	reader := NewReader(&chunkedReader{data: []byte(payload), chunkSize: 10}, zap.NewNop())

	items, done, errEvent, err := reader.Collect(context.Background())
	if err != nil {
		t.Fatalf("collect failed: %v", err)
	}
	if done != nil {
		t.Fatalf("expected no done event, got %+v", done)
	}
	if errEvent == nil || !errEvent.Partial || errEvent.Code != "QUOTA_ERROR" {
		t.Fatalf("unexpected error event: %+v", errEvent)
	}
	if len(items) != 1 {
		t.Fatalf("expected the partial item to be retained, got %d", len(items))
	}
}

func TestReaderStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	reader := NewReader(&chunkedReader{data: []byte(sampleStream), chunkSize: 8}, zap.NewNop())

	if _, err := reader.Next(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
