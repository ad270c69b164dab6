package domain

// Streaming response protocol: newline-delimited JSON, one event per line.

type EventType string

const (
	EventStatus EventType = "status"
	EventItems  EventType = "items"
	EventDone   EventType = "done"
	EventError  EventType = "error"
)

type StreamStatus string

const (
	StatusSearching StreamStatus = "searching"
	StatusFiltering StreamStatus = "filtering"
	StatusRefilling StreamStatus = "refilling"
	StatusDone      StreamStatus = "done"
)

type StatusEvent struct {
	Type         EventType    `json:"type"`
	Status       StreamStatus `json:"status"`
	Message      string       `json:"message"`
	ScannedCount int          `json:"scannedCount"`
	MatchedCount int          `json:"matchedCount"`
}

type ItemsEvent struct {
	Type         EventType          `json:"type"`
	Items        []*CompetitorVideo `json:"items"`
	TotalMatched int                `json:"totalMatched"`
}

type DoneSummary struct {
	ScannedCount  int   `json:"scannedCount"`
	ReturnedCount int   `json:"returnedCount"`
	CacheHit      bool  `json:"cacheHit"`
	TimeMs        int64 `json:"timeMs"`
	Exhausted     bool  `json:"exhausted"`
}

type DoneEvent struct {
	Type       EventType   `json:"type"`
	Summary    DoneSummary `json:"summary"`
	NextCursor string      `json:"nextCursor,omitempty"`
}

type ErrorEvent struct {
	Type    EventType `json:"type"`
	Error   string    `json:"error"`
	Code    string    `json:"code,omitempty"`
	Partial bool      `json:"partial,omitempty"`
}

func NewStatusEvent(status StreamStatus, message string, scanned, matched int) *StatusEvent {
	return &StatusEvent{
		Type:         EventStatus,
		Status:       status,
		Message:      message,
		ScannedCount: scanned,
		MatchedCount: matched,
	}
}

func NewItemsEvent(items []*CompetitorVideo, totalMatched int) *ItemsEvent {
	return &ItemsEvent{
		Type:         EventItems,
		Items:        items,
		TotalMatched: totalMatched,
	}
}

func NewDoneEvent(summary DoneSummary, nextCursor string) *DoneEvent {
	return &DoneEvent{
		Type:       EventDone,
		Summary:    summary,
		NextCursor: nextCursor,
	}
}

func NewErrorEvent(message, code string, partial bool) *ErrorEvent {
	return &ErrorEvent{
		Type:    EventError,
		Error:   message,
		Code:    code,
		Partial: partial,
	}
}
