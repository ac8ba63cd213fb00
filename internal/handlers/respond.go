package handlers

import (
	"errors"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/chronicles-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/chronicles-backend/internal/services"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
)

// respondError maps service errors onto status codes. Anything unrecognised is a 500
// whose details stay in the logs.
func respondError(c *fiber.Ctx, err error) error {
	var ve *services.ValidationError
	switch {
	case errors.As(err, &ve):
		if len(ve.Errors) > 1 {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ValidationErrorResponse{
				Error: ve.Message, Errors: ve.Errors,
			})
		}
		return fail(c, fiber.StatusBadRequest, ve.Message)
	case errors.Is(err, services.ErrNotFound):
		return fail(c, fiber.StatusNotFound, "Story not found")
	case errors.Is(err, services.ErrUserNotFound):
		return fail(c, fiber.StatusNotFound, "User not found")
	case errors.Is(err, services.ErrAuthRequired):
		return fail(c, fiber.StatusUnauthorized, "Authentication required")
	case errors.Is(err, services.ErrInvalidCredentials),
		errors.Is(err, services.ErrInvalidToken):
		return fail(c, fiber.StatusUnauthorized, err.Error())
	case errors.Is(err, services.ErrEmailTaken),
		errors.Is(err, services.ErrUsernameTaken):
		return fail(c, fiber.StatusConflict, err.Error())
	}

	slog.Error("request failed",
		"method", c.Method(),
		"path", c.Path(),
		"request_id", requestID(c),
		"error", err.Error(),
	)
	if hub := sentryfiber.GetHubFromContext(c); hub != nil {
		hub.CaptureException(err)
	}
	return fail(c, fiber.StatusInternalServerError, "Internal server error")
}

func fail(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(dto.ErrorResponse{Error: message})
}

func invalidBody(c *fiber.Ctx) error {
	return fail(c, fiber.StatusBadRequest, "Invalid request body")
}

func requestID(c *fiber.Ctx) string {
	if id, ok := c.Locals(requestid.ConfigDefault.ContextKey).(string); ok {
		return id
	}
	return ""
}

// storyID parses the :id route parameter. Callers answer a malformed id with the same
// 404 as a missing story.
func storyID(c *fiber.Ctx) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Params("id"))
	return id, err == nil
}

func pageRequest(c *fiber.Ctx) services.PageRequest {
	return services.PageRequest{
		Page:    c.QueryInt("page", 1),
		PerPage: c.QueryInt("per_page", 0),
	}
}
