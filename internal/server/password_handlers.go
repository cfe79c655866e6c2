package server

import (
	"errors"

	"mosaic/internal/models"

	"github.com/gofiber/fiber/v2"
)

// ForgotPassword handles POST /api/password/forgot. The response is the
// same whether or not the address is registered, so the endpoint cannot be
// used to enumerate accounts.
func (s *Server) ForgotPassword(c *fiber.Ctx) error {
	var req struct {
		Email string `json:"email"`
	}
	if err := c.BodyParser(&req); err != nil || req.Email == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Email is required"))
	}

	if err := s.passwordService.RequestReset(c.UserContext(), req.Email); err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) && appErr.Code == "NOT_FOUND" {
			return c.JSON(fiber.Map{"message": "If that account exists, a reset email has been sent"})
		}
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"message": "If that account exists, a reset email has been sent"})
}

// ResetPassword handles PUT /api/password/reset/:token
func (s *Server) ResetPassword(c *fiber.Ctx) error {
	token := c.Params("token")
	if token == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Reset token is required"))
	}

	var req struct {
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil || req.Password == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("New password is required"))
	}

	user, err := s.passwordService.ConsumeReset(c.UserContext(), token, req.Password)
	if err != nil {
		return respondError(c, err)
	}

	// Issue a fresh session so the user is logged in after the reset.
	jwtToken, err := s.generateToken(user.ID, user.Username)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}
	return c.JSON(fiber.Map{
		"token": jwtToken,
		"user":  user,
	})
}

// UpdatePassword handles PUT /api/password/update
func (s *Server) UpdatePassword(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var req struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.CurrentPassword == "" || req.NewPassword == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Current and new password are required"))
	}

	if err := s.passwordService.UpdatePassword(c.UserContext(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Password updated"})
}
