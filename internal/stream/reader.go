package stream

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"

	"github.com/creatorlens/creatorlens-go/internal/domain"
	"go.uber.org/zap"
)

// Event is one decoded line of the NDJSON stream. Exactly one of the typed
// fields is populated, matching Type.
type Event struct {
	Type   domain.EventType
	Status *domain.StatusEvent
	Items  *domain.ItemsEvent
	Done   *domain.DoneEvent
	Err    *domain.ErrorEvent
}

// Reader consumes an NDJSON event stream. Lines split across network chunks
// are reassembled before parsing; unparsable lines are skipped with a warning
// rather than failing the stream.
type Reader struct {
	scanner *bufio.Reader
	logger  *zap.Logger
}

func NewReader(r io.Reader, logger *zap.Logger) *Reader {
	return &Reader{
		scanner: bufio.NewReader(r),
		logger:  logger,
	}
}

// Next returns the next decoded event. io.EOF signals a cleanly ended stream;
// a context error signals the consumer aborted.
func (r *Reader) Next(ctx context.Context) (*Event, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		line, err := r.scanner.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				// a final line without a trailing newline is still a full line
				if trimmed := strings.TrimSpace(line); trimmed != "" {
					if event, ok := r.decodeLine(trimmed); ok {
						return event, nil
					}
				}
				return nil, io.EOF
			}
			return nil, err
		}

		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		if event, ok := r.decodeLine(trimmed); ok {
			return event, nil
		}
	}
}

func (r *Reader) decodeLine(line string) (*Event, bool) {
	var header struct {
		Type domain.EventType `json:"type"`
	}
	if err := json.Unmarshal([]byte(line), &header); err != nil {
		r.logger.Warn("Skipping unparsable stream line", zap.Error(err))
		return nil, false
	}

	event := &Event{Type: header.Type}

	var err error
	switch header.Type {
	case domain.EventStatus:
		var payload domain.StatusEvent
		err = json.Unmarshal([]byte(line), &payload)
		event.Status = &payload
	case domain.EventItems:
		var payload domain.ItemsEvent
		err = json.Unmarshal([]byte(line), &payload)
		event.Items = &payload
	case domain.EventDone:
		var payload domain.DoneEvent
		err = json.Unmarshal([]byte(line), &payload)
		event.Done = &payload
	case domain.EventError:
		var payload domain.ErrorEvent
		err = json.Unmarshal([]byte(line), &payload)
		event.Err = &payload
	default:
		r.logger.Warn("Skipping stream line with unknown type", zap.String("type", string(header.Type)))
		return nil, false
	}

	if err != nil {
		r.logger.Warn("Skipping malformed stream event", zap.String("type", string(header.Type)), zap.Error(err))
		return nil, false
	}

	return event, true
}

// Collect drains the stream until a terminal event, accumulating items. It
// returns the accumulated items plus the terminal done or error event. On
// cancellation the items received so far are returned with the context error.
func (r *Reader) Collect(ctx context.Context) ([]*domain.CompetitorVideo, *domain.DoneEvent, *domain.ErrorEvent, error) {
	var items []*domain.CompetitorVideo

	for {
		event, err := r.Next(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return items, nil, nil, nil
			}
			return items, nil, nil, err
		}

		switch event.Type {
		case domain.EventItems:
			items = append(items, event.Items.Items...)
		case domain.EventDone:
			return items, event.Done, nil, nil
		case domain.EventError:
			return items, nil, event.Err, nil
		}
	}
}
