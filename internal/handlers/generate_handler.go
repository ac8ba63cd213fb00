package handlers

import (
	"strings"

	"github.com/ahmetcoskunkizilkaya/chronicles-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/chronicles-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/chronicles-backend/internal/session"
	"github.com/gofiber/fiber/v2"
)

type GenerateHandler struct {
	generator *services.GenerationService
}

func NewGenerateHandler(generator *services.GenerationService) *GenerateHandler {
	return &GenerateHandler{generator: generator}
}

// Generate accepts either "era" or "event" as the period name.
func (h *GenerateHandler) Generate(c *fiber.Ctx) error {
	var req dto.GenerateRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	era := strings.TrimSpace(req.Era)
	if era == "" {
		era = strings.TrimSpace(req.Event)
	}
	isPublic := true
	if req.IsPublic != nil {
		isPublic = *req.IsPublic
	}

	resp, err := h.generator.Generate(c.UserContext(), services.GenerateInput{
		UserID:        session.OptionalUserID(c),
		Era:           era,
		SaveStory:     req.SaveStory,
		IsPublic:      isPublic,
		ParentStoryID: req.ParentStoryID,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}
