package handlers

import (
	"github.com/ahmetcoskunkizilkaya/chronicles-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/chronicles-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/chronicles-backend/internal/session"
	"github.com/gofiber/fiber/v2"
)

// UserHandler covers the caller's own account data: status, preferences, achievements
// and analytics.
type UserHandler struct {
	users        *services.UserService
	achievements *services.AchievementService
	analytics    *services.AnalyticsService
}

func NewUserHandler(users *services.UserService, achievements *services.AchievementService, analytics *services.AnalyticsService) *UserHandler {
	return &UserHandler{users: users, achievements: achievements, analytics: analytics}
}

func (h *UserHandler) Status(c *fiber.Ctx) error {
	resp, err := h.users.Status(c.UserContext(), session.OptionalUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

func (h *UserHandler) GetPreferences(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return respondError(c, services.ErrAuthRequired)
	}

	prefs, err := h.users.GetPreferences(c.UserContext(), userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(prefs)
}

func (h *UserHandler) SetPreferences(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return respondError(c, services.ErrAuthRequired)
	}

	var prefs map[string]interface{}
	if err := c.BodyParser(&prefs); err != nil {
		return invalidBody(c)
	}

	if err := h.users.SetPreferences(c.UserContext(), userID, prefs); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.SuccessResponse{Success: true})
}

func (h *UserHandler) UpdateProfile(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return respondError(c, services.ErrAuthRequired)
	}

	var req dto.ProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	prefs, err := h.users.UpdateProfile(c.UserContext(), userID, &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"success":     true,
		"message":     "Profile updated successfully",
		"preferences": prefs,
	})
}

func (h *UserHandler) Achievements(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return respondError(c, services.ErrAuthRequired)
	}

	items, err := h.achievements.ListForUser(c.UserContext(), userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.AchievementListResponse{Achievements: items})
}

func (h *UserHandler) Track(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return respondError(c, services.ErrAuthRequired)
	}

	var req dto.TrackRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = c.Get("X-Session-ID")
	}

	err = h.analytics.Track(c.UserContext(), services.TrackInput{
		UserID:    &userID,
		SessionID: sessionID,
		EventType: req.EventType,
		EventData: req.EventData,
		IPAddress: c.IP(),
		UserAgent: c.Get(fiber.HeaderUserAgent),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.SuccessResponse{Success: true})
}

func (h *UserHandler) Dashboard(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return respondError(c, services.ErrAuthRequired)
	}

	resp, err := h.analytics.Dashboard(c.UserContext(), userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}
