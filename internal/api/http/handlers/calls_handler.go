package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/frontdesk-supervisor/internal/api/dto"
	"github.com/spec-kit/frontdesk-supervisor/internal/service"
	apperrors "github.com/spec-kit/frontdesk-supervisor/pkg/util/errorutil"
)

// CallsHandler is the entry point for the front-desk agent.
type CallsHandler struct {
	service *service.FrontDeskService
}

// NewCallsHandler constructs handler.
func NewCallsHandler(frontDesk *service.FrontDeskService) *CallsHandler {
	return &CallsHandler{service: frontDesk}
}

// HandleCall POST /api/calls.
func (h *CallsHandler) HandleCall(c *fiber.Ctx) error {
	var req dto.CallRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	outcome, err := h.service.HandleQuestion(c.UserContext(), req.Caller, req.SessionID, req.Question)
	if err != nil {
		return err
	}
	resp := dto.CallResponse{Reply: outcome.Reply, Answered: outcome.Answered}
	if outcome.Match != nil {
		resp.Source = string(outcome.Match.Source)
	}
	status := fiber.StatusOK
	if outcome.Ticket != nil {
		t := ticketResponse(outcome.Ticket)
		resp.Ticket = &t
		status = fiber.StatusAccepted
	}
	return c.Status(status).JSON(fiber.Map{"data": resp})
}
