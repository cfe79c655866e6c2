package server

import (
	"github.com/gofiber/fiber/v2"
)

// ToggleFollow handles PUT /api/follow/:id. The same endpoint follows and
// unfollows: it flips the current state of the edge and reports the result.
func (s *Server) ToggleFollow(c *fiber.Ctx) error {
	actorID := c.Locals("userID").(uint)
	targetID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	followed, err := s.graphService.ToggleFollow(c.UserContext(), actorID, targetID)
	if err != nil {
		return respondError(c, err)
	}

	message := "User unfollowed"
	if followed {
		message = "User followed"
	}
	return c.JSON(fiber.Map{
		"following": followed,
		"message":   message,
	})
}
