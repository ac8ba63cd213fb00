package handlers

import (
	"github.com/ahmetcoskunkizilkaya/chronicles-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/chronicles-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/chronicles-backend/internal/session"
	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	resp, err := h.authService.Register(c.UserContext(), &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	resp, err := h.authService.Login(c.UserContext(), &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req dto.RefreshRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	resp, err := h.authService.Refresh(c.UserContext(), &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return respondError(c, services.ErrAuthRequired)
	}

	var req dto.LogoutRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	if err := h.authService.Logout(c.UserContext(), userID, &req); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.SuccessResponse{Success: true, Message: "Logged out successfully"})
}

func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return respondError(c, services.ErrAuthRequired)
	}

	var req dto.ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	if err := h.authService.ChangePassword(c.UserContext(), userID, &req); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.SuccessResponse{Success: true, Message: "Password changed successfully"})
}

func (h *AuthHandler) DeleteAccount(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return respondError(c, services.ErrAuthRequired)
	}

	var req dto.DeleteAccountRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	if err := h.authService.DeleteAccount(c.UserContext(), userID, req.Password); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.SuccessResponse{Success: true, Message: "Account deleted successfully"})
}
