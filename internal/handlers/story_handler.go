package handlers

import (
	"github.com/ahmetcoskunkizilkaya/chronicles-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/chronicles-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/chronicles-backend/internal/session"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type StoryHandler struct {
	stories      *services.StoryService
	interactions *services.InteractionService
}

func NewStoryHandler(stories *services.StoryService, interactions *services.InteractionService) *StoryHandler {
	return &StoryHandler{stories: stories, interactions: interactions}
}

// List serves GET /api/stories?era=&user_id=&sort_by=&page=&per_page=
func (h *StoryHandler) List(c *fiber.Ctx) error {
	filter := services.StoryFilter{
		Era:    c.Query("era"),
		SortBy: c.Query("sort_by", services.SortCreatedAt),
		Page:   pageRequest(c),
	}
	if raw := c.Query("user_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return fail(c, fiber.StatusBadRequest, "Invalid user_id")
		}
		filter.UserID = &id
	}

	resp, err := h.stories.ListStories(c.UserContext(), session.OptionalUserID(c), filter)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

func (h *StoryHandler) Get(c *fiber.Ctx) error {
	id, ok := storyID(c)
	if !ok {
		return respondError(c, services.ErrNotFound)
	}

	story, err := h.stories.GetStory(c.UserContext(), id, session.OptionalUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(story)
}

func (h *StoryHandler) Rate(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return respondError(c, services.ErrAuthRequired)
	}
	id, ok := storyID(c)
	if !ok {
		return respondError(c, services.ErrNotFound)
	}

	var req dto.RateRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	resp, err := h.interactions.Rate(c.UserContext(), userID, id, req.Rating)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

func (h *StoryHandler) ToggleBookmark(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return respondError(c, services.ErrAuthRequired)
	}
	id, ok := storyID(c)
	if !ok {
		return respondError(c, services.ErrNotFound)
	}

	action, err := h.interactions.ToggleBookmark(c.UserContext(), userID, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.BookmarkResponse{Success: true, Action: action})
}

func (h *StoryHandler) ListComments(c *fiber.Ctx) error {
	id, ok := storyID(c)
	if !ok {
		return respondError(c, services.ErrNotFound)
	}

	resp, err := h.interactions.ListComments(c.UserContext(), id, session.OptionalUserID(c), pageRequest(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

func (h *StoryHandler) AddComment(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return respondError(c, services.ErrAuthRequired)
	}
	id, ok := storyID(c)
	if !ok {
		return respondError(c, services.ErrNotFound)
	}

	var req dto.CommentRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	comment, err := h.interactions.AddComment(c.UserContext(), userID, id, req.Content)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.CommentResponse{Success: true, Comment: *comment})
}
