package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/frontdesk-supervisor/internal/domain"
	apperrors "github.com/spec-kit/frontdesk-supervisor/pkg/util/errorutil"
)

// HoldMessage is spoken to a caller whose question was escalated.
const HoldMessage = "Let me check with my supervisor and get back to you."

// CallOutcome is what the front-desk agent says back to a caller.
type CallOutcome struct {
	Reply       string
	Answered    bool
	Match       *Match
	Ticket      *domain.Ticket
	SideEffects SideEffects
}

// FrontDeskService is the inbound path: answer from knowledge, escalate on a miss.
type FrontDeskService struct {
	knowledge *KnowledgeService
	tickets   *TicketService
	logger    *zap.Logger
}

// NewFrontDeskService constructs the service.
func NewFrontDeskService(knowledge *KnowledgeService, tickets *TicketService, logger *zap.Logger) *FrontDeskService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FrontDeskService{knowledge: knowledge, tickets: tickets, logger: logger}
}

// HandleQuestion answers a caller's question or opens a ticket for a supervisor.
func (s *FrontDeskService) HandleQuestion(ctx context.Context, caller, sessionID, question string) (*CallOutcome, error) {
	if strings.TrimSpace(question) == "" || strings.TrimSpace(caller) == "" {
		return nil, apperrors.NewValidationError("caller and question are required", nil)
	}

	match, err := s.knowledge.Resolve(ctx, question)
	if err != nil {
		// A failing learned-answer tier should not stop escalation.
		s.logger.Warn("knowledge lookup failed; escalating", zap.Error(err))
	}
	if match != nil {
		return &CallOutcome{Reply: match.Answer, Answered: true, Match: match}, nil
	}

	created, err := s.tickets.CreateTicket(ctx, TicketCreateInput{
		Question:  question,
		Caller:    caller,
		SessionID: sessionID,
	})
	if err != nil {
		return nil, err
	}
	return &CallOutcome{
		Reply:       HoldMessage,
		Ticket:      created.Ticket,
		SideEffects: created.SideEffects,
	}, nil
}
