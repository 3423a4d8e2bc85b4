package handlers

import (
	"github.com/spec-kit/frontdesk-supervisor/internal/api/dto"
	"github.com/spec-kit/frontdesk-supervisor/internal/domain"
	"github.com/spec-kit/frontdesk-supervisor/internal/service"
)

func ticketResponse(ticket *domain.Ticket) dto.TicketResponse {
	return dto.TicketResponse{
		ID:         ticket.ID,
		Question:   ticket.Question,
		Caller:     ticket.Caller,
		SessionID:  ticket.SessionID,
		Category:   ticket.Category,
		Status:     ticket.Status,
		CreatedAt:  ticket.CreatedAt,
		TimeoutAt:  ticket.TimeoutAt,
		Answer:     ticket.Answer,
		ResolvedAt: ticket.ResolvedAt,
		ResolvedBy: ticket.ResolvedBy,
	}
}

func ticketResponses(tickets []domain.Ticket) []dto.TicketResponse {
	items := make([]dto.TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, ticketResponse(&tickets[i]))
	}
	return items
}

func sideEffectsResponse(effects service.SideEffects) dto.SideEffectsResponse {
	resp := dto.SideEffectsResponse{}
	if effects.Notify != nil {
		resp.Failed = append(resp.Failed, "notify")
	}
	if effects.Learn != nil {
		resp.Failed = append(resp.Failed, "learn")
	}
	if effects.FollowUp != nil {
		resp.Failed = append(resp.Failed, "follow_up")
	}
	return resp
}

func learnedResponses(entries []domain.LearnedAnswer) []dto.LearnedAnswerResponse {
	items := make([]dto.LearnedAnswerResponse, 0, len(entries))
	for _, e := range entries {
		items = append(items, learnedResponse(&e))
	}
	return items
}

func learnedResponse(e *domain.LearnedAnswer) dto.LearnedAnswerResponse {
	return dto.LearnedAnswerResponse{
		ID:        e.ID,
		Question:  e.Question,
		Answer:    e.Answer,
		Category:  e.Category,
		CreatedAt: e.CreatedAt,
	}
}
