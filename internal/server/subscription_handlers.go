package server

import (
	"github.com/gofiber/fiber/v2"
)

// Subscribe handles POST /api/projects/:id/subscribe
func (s *Server) Subscribe(c *fiber.Ctx) error {
	projectID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	sub, err := s.subscriptionService.Subscribe(c.UserContext(), currentUserID(c), projectID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(sub)
}

// Unsubscribe handles DELETE /api/projects/:id/subscribe
func (s *Server) Unsubscribe(c *fiber.Ctx) error {
	projectID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.subscriptionService.Unsubscribe(c.UserContext(), currentUserID(c), projectID); err != nil {
		return respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetMySubscriptions handles GET /api/users/me/subscriptions
func (s *Server) GetMySubscriptions(c *fiber.Ctx) error {
	p := parsePagination(c, 50)
	subs, err := s.subscriptionService.ListSubscriptions(c.UserContext(), currentUserID(c), p.Limit, p.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"subscriptions": subs})
}
