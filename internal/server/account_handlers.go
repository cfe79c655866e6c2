package server

import (
	"github.com/gofiber/fiber/v2"
)

// DeleteAccount handles DELETE /api/profile. Removes the caller's account,
// their posts, every follow edge touching them, and schedules removal of
// likes and comments they left on other users' posts.
func (s *Server) DeleteAccount(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	if err := s.accountService.DeleteAccount(c.UserContext(), userID); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Account deleted"})
}
