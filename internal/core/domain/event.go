package domain

import "time"

type EventType string

const (
	EventUploadSucceeded   EventType = "upload.succeeded"
	EventUploadFailed      EventType = "upload.failed"
	EventSummaryReady      EventType = "summary.ready"
	EventSummaryFailed     EventType = "summary.failed"
	EventAnswerReady       EventType = "interaction.answer_ready"
	EventAnswerFailed      EventType = "interaction.answer_failed"
	EventVideoLookupClosed EventType = "interaction.video"
)

// Event describes a completed step of the workflow for outside observers.
type Event struct {
	Type      EventType        `json:"type"`
	FlowID    uint64           `json:"flow_id,omitempty"`
	SessionID string           `json:"session_id,omitempty"`
	Filename  string           `json:"filename,omitempty"`
	Category  string           `json:"category,omitempty"`
	Question  string           `json:"question,omitempty"`
	Count     int              `json:"count,omitempty"`
	Outcome   VideoOutcomeKind `json:"outcome,omitempty"`
	At        time.Time        `json:"at"`
}
