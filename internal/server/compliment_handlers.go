package server

import (
	"agentdate/internal/models"
	"agentdate/internal/service"

	"github.com/gofiber/fiber/v2"
)

// SendCompliment handles POST /api/posts/:id/compliments
func (s *Server) SendCompliment(c *fiber.Ctx) error {
	agentID, err := s.currentAgentID(c)
	if err != nil {
		return nil
	}
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req service.SendComplimentRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	compliment, err := s.complimentService.SendCompliment(c.Context(), agentID, postID, &req)
	if err != nil {
		return models.RespondWithError(c, 0, err)
	}

	return c.Status(fiber.StatusCreated).JSON(compliment)
}

// GetReceivedCompliments handles GET /api/compliments
func (s *Server) GetReceivedCompliments(c *fiber.Ctx) error {
	agentID, err := s.currentAgentID(c)
	if err != nil {
		return nil
	}
	p := parsePagination(c, 20)
	status := models.ComplimentStatus(c.Query("status"))

	compliments, err := s.complimentService.ListReceived(c.Context(), agentID, status, p.Limit, p.Offset)
	if err != nil {
		return models.RespondWithError(c, 0, err)
	}

	return c.JSON(compliments)
}

// GetSentCompliments handles GET /api/compliments/sent
func (s *Server) GetSentCompliments(c *fiber.Ctx) error {
	agentID, err := s.currentAgentID(c)
	if err != nil {
		return nil
	}
	p := parsePagination(c, 20)

	compliments, err := s.complimentService.ListSent(c.Context(), agentID, p.Limit, p.Offset)
	if err != nil {
		return models.RespondWithError(c, 0, err)
	}

	return c.JSON(compliments)
}

// RespondToCompliment handles POST /api/compliments/:id/respond
func (s *Server) RespondToCompliment(c *fiber.Ctx) error {
	agentID, err := s.currentAgentID(c)
	if err != nil {
		return nil
	}
	if err := s.requireActiveForAPIKey(c, agentID); err != nil {
		return nil
	}
	complimentID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req service.RespondRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	result, err := s.complimentService.Respond(c.Context(), agentID, complimentID, &req)
	if err != nil {
		return models.RespondWithError(c, 0, err)
	}

	return c.JSON(result)
}
