package sink

import "time"

type EventType string

const (
	EventDocumentErrors EventType = "document_errors"
	EventRunCompleted   EventType = "run_completed"
)

// DocumentErrorsEvent is published once per document, keyed by cord_uid.
type DocumentErrorsEvent struct {
	Type        EventType `json:"type"`
	RunID       string    `json:"run_id"`
	CordUID     string    `json:"cord_uid"`
	Topic       int       `json:"topic"`
	Relevance   int       `json:"relevance"`
	TotalErrors int       `json:"total_errors"`
	Timestamp   time.Time `json:"timestamp"`
}

// RunCompletedEvent closes a run on the topic, keyed by run id.
type RunCompletedEvent struct {
	Type               EventType `json:"type"`
	RunID              string    `json:"run_id"`
	Documents          int       `json:"documents"`
	DocumentsWithError int       `json:"documents_with_error"`
	TotalErrors        int64     `json:"total_errors"`
	Timestamp          time.Time `json:"timestamp"`
}
