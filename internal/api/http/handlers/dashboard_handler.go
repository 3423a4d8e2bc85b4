package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/frontdesk-supervisor/internal/api/dto"
	"github.com/spec-kit/frontdesk-supervisor/internal/domain"
	"github.com/spec-kit/frontdesk-supervisor/internal/service"
)

const dashboardHistoryLimit = 200

// DashboardHandler serves the supervisor panel data.
type DashboardHandler struct {
	tickets   *service.TicketService
	knowledge *service.KnowledgeService
}

// NewDashboardHandler constructs handler.
func NewDashboardHandler(tickets *service.TicketService, knowledge *service.KnowledgeService) *DashboardHandler {
	return &DashboardHandler{tickets: tickets, knowledge: knowledge}
}

// Overview GET /api/dashboard. Stale tickets are swept before reading.
func (h *DashboardHandler) Overview(c *fiber.Ctx) error {
	ctx := c.UserContext()
	timedOut, err := h.tickets.SweepTimeouts(ctx)
	if err != nil {
		return err
	}
	pending, err := h.tickets.PendingTickets(ctx)
	if err != nil {
		return err
	}
	recent, err := h.tickets.ListRecent(ctx, dashboardHistoryLimit)
	if err != nil {
		return err
	}
	history := make([]domain.Ticket, 0, len(recent))
	for _, t := range recent {
		if t.Status != domain.TicketStatusPending {
			history = append(history, t)
		}
	}
	learned, err := h.knowledge.ListLearned(ctx)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.DashboardResponse{
		Pending:   ticketResponses(pending),
		History:   ticketResponses(history),
		Knowledge: learnedResponses(learned),
		TimedOut:  len(timedOut),
	}})
}
