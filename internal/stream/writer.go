package stream

import (
	"encoding/json"
	"io"
	"net/http"
	"sync"

	"github.com/creatorlens/creatorlens-go/internal/domain"
)

// Writer emits newline-delimited JSON events, flushing after every line so
// the client sees progress while the scan is still running.
type Writer struct {
	mu      sync.Mutex
	w       io.Writer
	flusher http.Flusher
	closed  bool
}

func NewWriter(w io.Writer) *Writer {
	sw := &Writer{w: w}
	if flusher, ok := w.(http.Flusher); ok {
		sw.flusher = flusher
	}
	return sw
}

// Emit writes one event as a single JSON line. After a terminal event has
// been written, further emits are dropped.
func (sw *Writer) Emit(event any) error {
	return sw.emit(event, false)
}

// emit holds the lock across both the write and, for terminal events, the
// seal, so no event can interleave after the terminal line.
func (sw *Writer) emit(event any, terminal bool) error {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	if sw.closed {
		return nil
	}
	if terminal {
		sw.closed = true
	}

	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	data = append(data, '\n')

	if _, err := sw.w.Write(data); err != nil {
		return err
	}
	if sw.flusher != nil {
		sw.flusher.Flush()
	}

	return nil
}

func (sw *Writer) Status(status domain.StreamStatus, message string, scanned, matched int) error {
	return sw.Emit(domain.NewStatusEvent(status, message, scanned, matched))
}

func (sw *Writer) Items(items []*domain.CompetitorVideo, totalMatched int) error {
	return sw.Emit(domain.NewItemsEvent(items, totalMatched))
}

// Done writes the terminal success event and seals the writer.
func (sw *Writer) Done(summary domain.DoneSummary, nextCursor string) error {
	return sw.emit(domain.NewDoneEvent(summary, nextCursor), true)
}

// Error writes the terminal failure event and seals the writer. partial
// signals that items already streamed should be kept by the client.
func (sw *Writer) Error(message, code string, partial bool) error {
	return sw.emit(domain.NewErrorEvent(message, code, partial), true)
}
