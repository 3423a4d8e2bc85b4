package service

import "github.com/spec-kit/frontdesk-supervisor/internal/domain"

// SideEffects records best-effort steps that ran after the primary state
// transition was persisted. A non-nil field means that step failed; it never
// undoes the transition.
type SideEffects struct {
	Notify   error
	Learn    error
	FollowUp error
}

// Failed reports whether any side effect failed.
func (s SideEffects) Failed() bool {
	return s.Notify != nil || s.Learn != nil || s.FollowUp != nil
}

// CreateResult is the outcome of escalating a question.
type CreateResult struct {
	Ticket      *domain.Ticket
	SideEffects SideEffects
}

// ResolveResult is the outcome of a supervisor answering a ticket.
type ResolveResult struct {
	Ticket      *domain.Ticket
	SideEffects SideEffects
}
