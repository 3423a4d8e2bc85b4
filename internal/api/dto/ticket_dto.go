package dto

import (
	"time"

	"github.com/spec-kit/frontdesk-supervisor/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Question  string `json:"question"`
	Caller    string `json:"caller"`
	SessionID string `json:"session_id"`
	Category  string `json:"category"`
}

// ResolveTicketRequest payload.
type ResolveTicketRequest struct {
	Answer     string `json:"answer"`
	ResolvedBy string `json:"resolved_by"`
}

// TicketResponse renders a ticket.
type TicketResponse struct {
	ID         string              `json:"id"`
	Question   string              `json:"question"`
	Caller     string              `json:"caller"`
	SessionID  string              `json:"session_id,omitempty"`
	Category   string              `json:"category"`
	Status     domain.TicketStatus `json:"status"`
	CreatedAt  time.Time           `json:"created_at"`
	TimeoutAt  time.Time           `json:"timeout_at"`
	Answer     *string             `json:"answer"`
	ResolvedAt *time.Time          `json:"resolved_at"`
	ResolvedBy *string             `json:"resolved_by"`
}

// SideEffectsResponse lists best-effort steps that failed after the transition.
type SideEffectsResponse struct {
	Failed []string `json:"failed,omitempty"`
}

// TicketMutationResponse wraps a ticket with its side-effect report.
type TicketMutationResponse struct {
	Ticket      TicketResponse      `json:"ticket"`
	SideEffects SideEffectsResponse `json:"side_effects"`
}

// SweepResponse lists tickets that moved to unresolved.
type SweepResponse struct {
	Count    int              `json:"count"`
	TimedOut []TicketResponse `json:"timed_out"`
}

// CallRequest is an inbound question from the front-desk agent.
type CallRequest struct {
	Caller    string `json:"caller"`
	SessionID string `json:"session_id"`
	Question  string `json:"question"`
}

// CallResponse is the agent's reply.
type CallResponse struct {
	Reply    string          `json:"reply"`
	Answered bool            `json:"answered"`
	Source   string          `json:"source,omitempty"`
	Ticket   *TicketResponse `json:"ticket,omitempty"`
}

// DashboardResponse mirrors the supervisor panel.
type DashboardResponse struct {
	Pending   []TicketResponse        `json:"pending"`
	History   []TicketResponse        `json:"history"`
	Knowledge []LearnedAnswerResponse `json:"knowledge"`
	TimedOut  int                     `json:"timed_out_this_view"`
}
