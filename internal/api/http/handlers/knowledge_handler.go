package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/frontdesk-supervisor/internal/api/dto"
	"github.com/spec-kit/frontdesk-supervisor/internal/service"
	apperrors "github.com/spec-kit/frontdesk-supervisor/pkg/util/errorutil"
)

// KnowledgeHandler exposes learned answers and lookups.
type KnowledgeHandler struct {
	service *service.KnowledgeService
}

// NewKnowledgeHandler constructs handler.
func NewKnowledgeHandler(knowledgeService *service.KnowledgeService) *KnowledgeHandler {
	return &KnowledgeHandler{service: knowledgeService}
}

// List GET /api/knowledge.
func (h *KnowledgeHandler) List(c *fiber.Ctx) error {
	entries, err := h.service.ListLearned(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": learnedResponses(entries)})
}

// Learn POST /api/knowledge.
func (h *KnowledgeHandler) Learn(c *fiber.Ctx) error {
	var req dto.LearnRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	entry, err := h.service.Learn(c.UserContext(), req.Question, req.Answer, req.Category)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": learnedResponse(entry)})
}

// Lookup GET /api/knowledge/lookup?q=...
func (h *KnowledgeHandler) Lookup(c *fiber.Ctx) error {
	match, err := h.service.Resolve(c.UserContext(), c.Query("q"))
	if err != nil {
		return err
	}
	resp := dto.LookupResponse{}
	if match != nil {
		resp = dto.LookupResponse{
			Found:    true,
			Answer:   match.Answer,
			Source:   string(match.Source),
			Topic:    string(match.Topic),
			Question: match.Question,
		}
	}
	return c.JSON(fiber.Map{"data": resp})
}
