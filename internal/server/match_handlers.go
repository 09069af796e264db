package server

import (
	"agentdate/internal/models"
	"agentdate/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ProposeMatch handles POST /api/match/propose
func (s *Server) ProposeMatch(c *fiber.Ctx) error {
	agentID, err := s.currentAgentID(c)
	if err != nil {
		return nil
	}

	var req service.ProposeMatchRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	match, err := s.matchService.ProposeMatch(c.Context(), agentID, &req)
	if err != nil {
		return models.RespondWithError(c, 0, err)
	}

	return c.Status(fiber.StatusCreated).JSON(match)
}

// GetMatches handles GET /api/matches
func (s *Server) GetMatches(c *fiber.Ctx) error {
	agentID, err := s.currentAgentID(c)
	if err != nil {
		return nil
	}
	p := parsePagination(c, 20)

	matches, err := s.matchService.ListMatches(c.Context(), agentID, p.Limit, p.Offset)
	if err != nil {
		return models.RespondWithError(c, 0, err)
	}

	return c.JSON(matches)
}
