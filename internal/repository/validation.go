package repository

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/spec-kit/frontdesk-supervisor/internal/domain"
)

// ErrInvalidRecord rejects writes with missing required fields.
var ErrInvalidRecord = errors.New("invalid record")

func validateTicket(t *domain.Ticket) error {
	if t == nil {
		return fmt.Errorf("%w: nil ticket", ErrInvalidRecord)
	}
	missing := missingFields(map[string]string{
		"id":       t.ID,
		"question": t.Question,
		"caller":   t.Caller,
		"status":   string(t.Status),
	})
	if len(missing) > 0 {
		return fmt.Errorf("%w: ticket missing %s", ErrInvalidRecord, strings.Join(missing, ", "))
	}
	if t.CreatedAt.IsZero() {
		return fmt.Errorf("%w: ticket %s missing created_at", ErrInvalidRecord, t.ID)
	}
	if err := t.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	return nil
}

func validateLearnedAnswer(e *domain.LearnedAnswer) error {
	if e == nil {
		return fmt.Errorf("%w: nil learned answer", ErrInvalidRecord)
	}
	missing := missingFields(map[string]string{
		"id":       e.ID,
		"question": e.Question,
		"answer":   e.Answer,
	})
	if len(missing) > 0 {
		return fmt.Errorf("%w: learned answer missing %s", ErrInvalidRecord, strings.Join(missing, ", "))
	}
	return nil
}

func validateMessageLog(m *domain.MessageLog) error {
	if m == nil {
		return fmt.Errorf("%w: nil message", ErrInvalidRecord)
	}
	missing := missingFields(map[string]string{
		"id":        m.ID,
		"recipient": m.Recipient,
		"body":      m.Body,
	})
	if len(missing) > 0 {
		return fmt.Errorf("%w: message missing %s", ErrInvalidRecord, strings.Join(missing, ", "))
	}
	return nil
}

func missingFields(fields map[string]string) []string {
	var missing []string
	for name, val := range fields {
		if strings.TrimSpace(val) == "" {
			missing = append(missing, name)
		}
	}
	sort.Strings(missing)
	return missing
}
