package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/frontdesk-supervisor/internal/api/dto"
	"github.com/spec-kit/frontdesk-supervisor/internal/domain"
	"github.com/spec-kit/frontdesk-supervisor/internal/service"
	apperrors "github.com/spec-kit/frontdesk-supervisor/pkg/util/errorutil"
)

// TicketsHandler manages supervisor ticket endpoints.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// CreateTicket POST /api/tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	result, err := h.service.CreateTicket(c.UserContext(), service.TicketCreateInput{
		Question:  req.Question,
		Caller:    req.Caller,
		SessionID: req.SessionID,
		Category:  req.Category,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.TicketMutationResponse{
		Ticket:      ticketResponse(result.Ticket),
		SideEffects: sideEffectsResponse(result.SideEffects),
	}})
}

// ListTickets GET /api/tickets?status=pending&limit=50.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	var (
		tickets []domain.Ticket
		err     error
	)
	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		status, parseErr := domain.ParseTicketStatus(strings.ToLower(raw))
		if parseErr != nil {
			return apperrors.NewValidationError(parseErr.Error(), map[string]any{"status": raw})
		}
		tickets, err = h.service.ListByStatus(c.UserContext(), status)
	} else {
		tickets, err = h.service.ListRecent(c.UserContext(), parseInt(c.Query("limit"), 100))
	}
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponses(tickets)})
}

// GetTicket GET /api/tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	ticket, err := h.service.GetTicket(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// ResolveTicket POST /api/tickets/:id/resolve.
func (h *TicketsHandler) ResolveTicket(c *fiber.Ctx) error {
	var req dto.ResolveTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	result, err := h.service.ResolveTicket(c.UserContext(), c.Params("id"), req.Answer, req.ResolvedBy)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.TicketMutationResponse{
		Ticket:      ticketResponse(result.Ticket),
		SideEffects: sideEffectsResponse(result.SideEffects),
	}})
}

// Sweep POST /api/tickets/sweep.
func (h *TicketsHandler) Sweep(c *fiber.Ctx) error {
	timedOut, err := h.service.SweepTimeouts(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.SweepResponse{
		Count:    len(timedOut),
		TimedOut: ticketResponses(timedOut),
	}})
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}
