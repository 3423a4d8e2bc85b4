package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/spec-kit/frontdesk-supervisor/internal/domain"
)

// MemoryStore keeps tickets, learned answers and message logs in process.
// It backs the service when no Postgres DSN is configured, and the tests.
type MemoryStore struct {
	mu       sync.RWMutex
	tickets  []*domain.Ticket
	byID     map[string]*domain.Ticket
	learned  []domain.LearnedAnswer
	messages []domain.MessageLog
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byID: make(map[string]*domain.Ticket)}
}

// Tickets exposes the store as a TicketRepository.
func (m *MemoryStore) Tickets() TicketRepository { return memoryTickets{m} }

// LearnedAnswers exposes the store as a LearnedAnswerRepository.
func (m *MemoryStore) LearnedAnswers() LearnedAnswerRepository { return memoryLearned{m} }

// MessageLogs exposes the store as a MessageLogRepository.
func (m *MemoryStore) MessageLogs() MessageLogRepository { return memoryMessages{m} }

type memoryTickets struct{ m *MemoryStore }

func (r memoryTickets) Create(_ context.Context, ticket *domain.Ticket) error {
	if err := validateTicket(ticket); err != nil {
		return err
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, exists := r.m.byID[ticket.ID]; exists {
		return fmt.Errorf("%w: duplicate ticket id %s", ErrInvalidRecord, ticket.ID)
	}
	stored := ticket.Clone()
	r.m.tickets = append(r.m.tickets, stored)
	r.m.byID[stored.ID] = stored
	return nil
}

func (r memoryTickets) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	stored, ok := r.m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return stored.Clone(), nil
}

func (r memoryTickets) Replace(_ context.Context, ticket *domain.Ticket, expected domain.TicketStatus) (bool, error) {
	if err := validateTicket(ticket); err != nil {
		return false, err
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	stored, ok := r.m.byID[ticket.ID]
	if !ok || stored.Status != expected {
		return false, nil
	}
	next := ticket.Clone()
	stored.Status = next.Status
	stored.Answer = next.Answer
	stored.ResolvedAt = next.ResolvedAt
	stored.ResolvedBy = next.ResolvedBy
	return true, nil
}

func (r memoryTickets) ListByStatus(_ context.Context, status domain.TicketStatus) ([]domain.Ticket, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	result := []domain.Ticket{}
	for _, t := range r.m.tickets {
		if t.Status == status {
			result = append(result, *t.Clone())
		}
	}
	return result, nil
}

func (r memoryTickets) List(_ context.Context, limit int) ([]domain.Ticket, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	result := []domain.Ticket{}
	for i := len(r.m.tickets) - 1; i >= 0 && len(result) < limit; i-- {
		result = append(result, *r.m.tickets[i].Clone())
	}
	return result, nil
}

type memoryLearned struct{ m *MemoryStore }

func (r memoryLearned) Append(_ context.Context, entry *domain.LearnedAnswer) error {
	if err := validateLearnedAnswer(entry); err != nil {
		return err
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.learned = append(r.m.learned, *entry)
	return nil
}

func (r memoryLearned) List(_ context.Context) ([]domain.LearnedAnswer, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	return append([]domain.LearnedAnswer{}, r.m.learned...), nil
}

type memoryMessages struct{ m *MemoryStore }

func (r memoryMessages) Append(_ context.Context, msg *domain.MessageLog) error {
	if err := validateMessageLog(msg); err != nil {
		return err
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.messages = append(r.m.messages, *msg)
	return nil
}

func (r memoryMessages) ListByTicket(_ context.Context, ticketID string) ([]domain.MessageLog, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	result := []domain.MessageLog{}
	for _, msg := range r.m.messages {
		if msg.TicketID == ticketID {
			result = append(result, msg)
		}
	}
	return result, nil
}
