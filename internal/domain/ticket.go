package domain

import (
	"errors"
	"fmt"
	"time"
)

// TicketStatus enumerates lifecycle states for escalated questions.
type TicketStatus string

const (
	TicketStatusPending    TicketStatus = "pending"
	TicketStatusResolved   TicketStatus = "resolved"
	TicketStatusUnresolved TicketStatus = "unresolved"
)

// DefaultCategory is used when a ticket is created without one.
const DefaultCategory = "general"

// Valid reports whether the status is one of the known lifecycle states.
func (s TicketStatus) Valid() bool {
	switch s {
	case TicketStatusPending, TicketStatusResolved, TicketStatusUnresolved:
		return true
	}
	return false
}

// Terminal reports whether no further transition is allowed.
func (s TicketStatus) Terminal() bool {
	return s == TicketStatusResolved || s == TicketStatusUnresolved
}

// ParseTicketStatus converts user input into a TicketStatus.
func ParseTicketStatus(raw string) (TicketStatus, error) {
	s := TicketStatus(raw)
	if !s.Valid() {
		return "", fmt.Errorf("unknown ticket status %q", raw)
	}
	return s, nil
}

// Ticket is one escalated question awaiting or having received a human answer.
type Ticket struct {
	ID         string
	Question   string
	Caller     string
	SessionID  string
	Category   string
	Status     TicketStatus
	CreatedAt  time.Time
	TimeoutAt  time.Time
	Answer     *string
	ResolvedAt *time.Time
	ResolvedBy *string
}

// Expired reports whether the deadline has strictly passed at now.
func (t *Ticket) Expired(now time.Time) bool {
	return now.After(t.TimeoutAt)
}

// Clone returns a deep copy so callers never share nullable fields.
func (t *Ticket) Clone() *Ticket {
	if t == nil {
		return nil
	}
	c := *t
	if t.Answer != nil {
		v := *t.Answer
		c.Answer = &v
	}
	if t.ResolvedAt != nil {
		v := *t.ResolvedAt
		c.ResolvedAt = &v
	}
	if t.ResolvedBy != nil {
		v := *t.ResolvedBy
		c.ResolvedBy = &v
	}
	return &c
}

// Validate checks the status/field-nullity invariant.
func (t *Ticket) Validate() error {
	if !t.Status.Valid() {
		return fmt.Errorf("ticket %s: invalid status %q", t.ID, t.Status)
	}
	closed := t.Status.Terminal()
	if (t.Answer != nil) != closed {
		return fmt.Errorf("ticket %s: answer set=%t with status %s", t.ID, t.Answer != nil, t.Status)
	}
	if (t.ResolvedAt != nil) != closed {
		return fmt.Errorf("ticket %s: resolved_at set=%t with status %s", t.ID, t.ResolvedAt != nil, t.Status)
	}
	if (t.ResolvedBy != nil) != (t.Status == TicketStatusResolved) {
		return errors.New("ticket " + t.ID + ": resolved_by must be set only when resolved")
	}
	return nil
}
