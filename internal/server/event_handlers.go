package server

import (
	"agentdate/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetEvents handles GET /api/events
func (s *Server) GetEvents(c *fiber.Ctx) error {
	p := parsePagination(c, 50)

	events, err := s.eventRepo.List(c.Context(), p.Limit, p.Offset)
	if err != nil {
		return models.RespondWithError(c, 0, err)
	}

	return c.JSON(events)
}
