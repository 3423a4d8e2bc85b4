package events

import (
	"time"

	"github.com/spec-kit/frontdesk-supervisor/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated  EventType = "ticket_created"
	EventTicketResolved EventType = "ticket_resolved"
	EventTicketTimedOut EventType = "ticket_timed_out"
	EventAnswerLearned  EventType = "answer_learned"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload asks a supervisor for help.
type TicketCreatedPayload struct {
	Question  string    `json:"question"`
	Caller    string    `json:"caller"`
	SessionID string    `json:"session_id,omitempty"`
	Category  string    `json:"category"`
	TimeoutAt time.Time `json:"timeout_at"`
}

// TicketClosedPayload describes a terminal transition.
type TicketClosedPayload struct {
	Status     domain.TicketStatus `json:"status"`
	Question   string              `json:"question"`
	Caller     string              `json:"caller"`
	Answer     string              `json:"answer,omitempty"`
	ResolvedBy string              `json:"resolved_by,omitempty"`
}

// AnswerLearnedPayload payload.
type AnswerLearnedPayload struct {
	Question string `json:"question"`
	Category string `json:"category"`
}
