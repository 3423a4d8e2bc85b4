package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/frontdesk-supervisor/internal/domain"
	"github.com/spec-kit/frontdesk-supervisor/internal/events"
	"github.com/spec-kit/frontdesk-supervisor/internal/lock"
	"github.com/spec-kit/frontdesk-supervisor/internal/repository"
	apperrors "github.com/spec-kit/frontdesk-supervisor/pkg/util/errorutil"
)

// DefaultResolver names the supervisor when the caller does not.
const DefaultResolver = "supervisor"

// TicketService owns the escalation lifecycle: pending -> resolved | unresolved.
// It is the only writer of ticket status and answer fields.
type TicketService struct {
	tickets         repository.TicketRepository
	messages        repository.MessageLogRepository
	knowledge       *KnowledgeService
	locker          lock.Locker
	dispatcher      events.Dispatcher
	logger          *zap.Logger
	now             func() time.Time
	timeout         time.Duration
	defaultCategory string
}

// TicketDependencies bundles collaborators and settings for the ticket service.
type TicketDependencies struct {
	TicketRepo      repository.TicketRepository
	MessageRepo     repository.MessageLogRepository
	Knowledge       *KnowledgeService
	Locker          lock.Locker
	Dispatcher      events.Dispatcher
	Logger          *zap.Logger
	Clock           func() time.Time
	Timeout         time.Duration
	DefaultCategory string
}

// TicketCreateInput describes an escalated question.
type TicketCreateInput struct {
	Question  string
	Caller    string
	SessionID string
	Category  string
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	s := &TicketService{
		tickets:         deps.TicketRepo,
		messages:        deps.MessageRepo,
		knowledge:       deps.Knowledge,
		locker:          deps.Locker,
		dispatcher:      deps.Dispatcher,
		logger:          deps.Logger,
		now:             deps.Clock,
		timeout:         deps.Timeout,
		defaultCategory: deps.DefaultCategory,
	}
	if s.locker == nil {
		s.locker = lock.NewLocal()
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.timeout <= 0 {
		s.timeout = 2 * time.Hour
	}
	if s.defaultCategory == "" {
		s.defaultCategory = domain.DefaultCategory
	}
	return s
}

// Timeout returns the configured pending TTL.
func (s *TicketService) Timeout() time.Duration {
	return s.timeout
}

// CreateTicket persists a pending ticket, then notifies supervisors.
// A notification failure is reported in the result, never as an error.
func (s *TicketService) CreateTicket(ctx context.Context, input TicketCreateInput) (*CreateResult, error) {
	question := strings.TrimSpace(input.Question)
	caller := strings.TrimSpace(input.Caller)
	if question == "" || caller == "" {
		return nil, apperrors.NewValidationError("question and caller are required", nil)
	}
	category := strings.TrimSpace(input.Category)
	if category == "" {
		category = s.defaultCategory
	}

	now := s.now().UTC()
	ticket := &domain.Ticket{
		ID:        uuid.NewString(),
		Question:  question,
		Caller:    caller,
		SessionID: strings.TrimSpace(input.SessionID),
		Category:  category,
		Status:    domain.TicketStatusPending,
		CreatedAt: now,
		TimeoutAt: now.Add(s.timeout),
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.NewPersistenceFailure("create ticket", err)
	}
	s.logger.Info("ticket created",
		zap.String("ticket_id", ticket.ID),
		zap.String("category", ticket.Category),
		zap.Time("timeout_at", ticket.TimeoutAt))

	result := &CreateResult{Ticket: ticket}
	result.SideEffects.Notify = s.publish(ctx, events.EventTicketCreated, ticket, events.TicketCreatedPayload{
		Question:  ticket.Question,
		Caller:    ticket.Caller,
		SessionID: ticket.SessionID,
		Category:  ticket.Category,
		TimeoutAt: ticket.TimeoutAt,
	})
	return result, nil
}

// ResolveTicket records a supervisor answer on a pending ticket, then teaches
// the knowledge service and logs a follow-up to the caller. The resolution is
// durable before either side effect runs.
func (s *TicketService) ResolveTicket(ctx context.Context, ticketID, answer, resolver string) (*ResolveResult, error) {
	ticketID = strings.TrimSpace(ticketID)
	answer = strings.TrimSpace(answer)
	if ticketID == "" || answer == "" {
		return nil, apperrors.NewValidationError("ticket id and answer are required", nil)
	}
	resolver = strings.TrimSpace(resolver)
	if resolver == "" {
		resolver = DefaultResolver
	}

	ticket, err := s.transition(ctx, ticketID, func(t *domain.Ticket, now time.Time) bool {
		t.Status = domain.TicketStatusResolved
		t.Answer = &answer
		t.ResolvedAt = &now
		t.ResolvedBy = &resolver
		return true
	})
	if err != nil {
		return nil, err
	}
	if ticket == nil {
		return nil, notFound(ticketID)
	}
	s.logger.Info("ticket resolved", zap.String("ticket_id", ticket.ID), zap.String("resolved_by", resolver))

	result := &ResolveResult{Ticket: ticket}
	if s.knowledge != nil {
		if _, err := s.knowledge.Learn(ctx, ticket.Question, answer, ticket.Category); err != nil {
			result.SideEffects.Learn = apperrors.NewSideEffectFailure("learn answer", err)
			s.logger.Warn("failed to update knowledge", zap.String("ticket_id", ticket.ID), zap.Error(err))
		}
	}
	result.SideEffects.FollowUp = s.logFollowUp(ctx, ticket, answer)
	result.SideEffects.Notify = s.publish(ctx, events.EventTicketResolved, ticket, closedPayload(ticket))
	return result, nil
}

// SweepTimeouts moves every pending ticket whose deadline has strictly passed
// to unresolved and returns exactly those tickets. Tickets with no usable
// deadline, or whose write fails, are logged and left for the next sweep.
func (s *TicketService) SweepTimeouts(ctx context.Context) ([]domain.Ticket, error) {
	pending, err := s.tickets.ListByStatus(ctx, domain.TicketStatusPending)
	if err != nil {
		return nil, apperrors.NewPersistenceFailure("list pending tickets", err)
	}

	timedOut := []domain.Ticket{}
	for i := range pending {
		candidate := &pending[i]
		if candidate.TimeoutAt.IsZero() {
			s.logger.Warn("skipping ticket with invalid timeout_at", zap.String("ticket_id", candidate.ID))
			continue
		}
		if !candidate.Expired(s.now()) {
			continue
		}
		ticket, err := s.transition(ctx, candidate.ID, func(t *domain.Ticket, now time.Time) bool {
			if !t.Expired(now) {
				return false
			}
			empty := ""
			t.Status = domain.TicketStatusUnresolved
			t.Answer = &empty
			t.ResolvedAt = &now
			t.ResolvedBy = nil
			return true
		})
		if err != nil {
			s.logger.Error("failed to mark ticket unresolved", zap.String("ticket_id", candidate.ID), zap.Error(err))
			continue
		}
		if ticket == nil {
			continue
		}
		timedOut = append(timedOut, *ticket)
		if err := s.publish(ctx, events.EventTicketTimedOut, ticket, closedPayload(ticket)); err != nil {
			s.logger.Warn("timeout notification failed", zap.String("ticket_id", ticket.ID), zap.Error(err))
		}
	}
	if len(timedOut) > 0 {
		s.logger.Info("sweep marked tickets unresolved", zap.Int("count", len(timedOut)))
	}
	return timedOut, nil
}

// transition applies mutate to a pending ticket under its lock and persists it
// with a compare-and-swap on the pending status. It returns nil, nil when the
// ticket is absent, no longer pending, or mutate declines.
func (s *TicketService) transition(ctx context.Context, ticketID string, mutate func(*domain.Ticket, time.Time) bool) (*domain.Ticket, error) {
	unlock, err := s.locker.Lock(ctx, ticketID)
	if err != nil {
		return nil, apperrors.NewPersistenceFailure("lock ticket", err)
	}
	defer unlock()

	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewPersistenceFailure("load ticket", err)
	}
	if ticket.Status != domain.TicketStatusPending {
		return nil, nil
	}

	next := ticket.Clone()
	if !mutate(next, s.now().UTC()) {
		return nil, nil
	}
	ok, err := s.tickets.Replace(ctx, next, domain.TicketStatusPending)
	if err != nil {
		return nil, apperrors.NewPersistenceFailure("update ticket", err)
	}
	if !ok {
		return nil, nil
	}
	return next, nil
}

func (s *TicketService) logFollowUp(ctx context.Context, ticket *domain.Ticket, answer string) error {
	if s.messages == nil {
		return nil
	}
	msg := &domain.MessageLog{
		ID:        uuid.NewString(),
		TicketID:  ticket.ID,
		Recipient: ticket.Caller,
		Body:      FollowUpMessage(answer),
		CreatedAt: s.now().UTC(),
	}
	if err := s.messages.Append(ctx, msg); err != nil {
		s.logger.Warn("failed to log follow-up message", zap.String("ticket_id", ticket.ID), zap.Error(err))
		return apperrors.NewSideEffectFailure("log follow-up", err)
	}
	return nil
}

func (s *TicketService) publish(ctx context.Context, eventType events.EventType, ticket *domain.Ticket, payload any) error {
	if s.dispatcher == nil {
		return nil
	}
	err := s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		TicketID:  ticket.ID,
		Timestamp: s.now().UTC(),
		Payload:   payload,
	})
	if err != nil {
		s.logger.Warn("notification failed",
			zap.String("event", string(eventType)),
			zap.String("ticket_id", ticket.ID),
			zap.Error(err))
		return apperrors.NewSideEffectFailure("notify "+string(eventType), err)
	}
	return nil
}

// GetTicket fetches a ticket by id.
func (s *TicketService) GetTicket(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
	}
	if err != nil {
		return nil, apperrors.NewPersistenceFailure("load ticket", err)
	}
	return ticket, nil
}

// ListByStatus returns tickets in the given status, oldest first.
func (s *TicketService) ListByStatus(ctx context.Context, status domain.TicketStatus) ([]domain.Ticket, error) {
	if !status.Valid() {
		return nil, apperrors.NewValidationError("unknown status", map[string]any{"status": status})
	}
	tickets, err := s.tickets.ListByStatus(ctx, status)
	if err != nil {
		return nil, apperrors.NewPersistenceFailure("list tickets", err)
	}
	return tickets, nil
}

// ListRecent returns up to limit tickets, newest first.
func (s *TicketService) ListRecent(ctx context.Context, limit int) ([]domain.Ticket, error) {
	tickets, err := s.tickets.List(ctx, limit)
	if err != nil {
		return nil, apperrors.NewPersistenceFailure("list tickets", err)
	}
	return tickets, nil
}

func (s *TicketService) PendingTickets(ctx context.Context) ([]domain.Ticket, error) {
	return s.ListByStatus(ctx, domain.TicketStatusPending)
}

func (s *TicketService) ResolvedTickets(ctx context.Context) ([]domain.Ticket, error) {
	return s.ListByStatus(ctx, domain.TicketStatusResolved)
}

func (s *TicketService) UnresolvedTickets(ctx context.Context) ([]domain.Ticket, error) {
	return s.ListByStatus(ctx, domain.TicketStatusUnresolved)
}

// FollowUpMessage is the text sent back to a caller once answered.
func FollowUpMessage(answer string) string {
	return "Answer to your question: " + answer
}

func notFound(ticketID string) error {
	return apperrors.NewNotFound("pending ticket", map[string]any{"ticket_id": ticketID})
}

func closedPayload(t *domain.Ticket) events.TicketClosedPayload {
	p := events.TicketClosedPayload{
		Status:   t.Status,
		Question: t.Question,
		Caller:   t.Caller,
	}
	if t.Answer != nil {
		p.Answer = *t.Answer
	}
	if t.ResolvedBy != nil {
		p.ResolvedBy = *t.ResolvedBy
	}
	return p
}
