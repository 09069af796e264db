package server

import (
	"agentdate/internal/models"
	"agentdate/internal/service"

	"github.com/gofiber/fiber/v2"
)

// registeredAgentResponse is the one response that exposes the API key; it is
// shown exactly once, at registration.
type registeredAgentResponse struct {
	Agent  *models.Agent `json:"agent"`
	APIKey string        `json:"api_key"`
}

// RegisterAgent handles POST /api/agents/register
func (s *Server) RegisterAgent(c *fiber.Ctx) error {
	var req service.RegisterAgentRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	agent, err := s.agentService.Register(c.Context(), &req)
	if err != nil {
		return models.RespondWithError(c, 0, err)
	}

	return c.Status(fiber.StatusCreated).JSON(registeredAgentResponse{
		Agent:  agent,
		APIKey: agent.APIKey,
	})
}

// GetAgentCard handles GET /api/agents/:id (public profile card)
func (s *Server) GetAgentCard(c *fiber.Ctx) error {
	agentID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	agent, err := s.agentService.GetAgentCard(c.Context(), agentID)
	if err != nil {
		return models.RespondWithError(c, 0, err)
	}

	return c.JSON(agent)
}

// GetMyAgent handles GET /api/agents/me
func (s *Server) GetMyAgent(c *fiber.Ctx) error {
	agentID, err := s.currentAgentID(c)
	if err != nil {
		return nil
	}

	agent, err := s.agentRepo.GetByID(c.Context(), agentID)
	if err != nil {
		return models.RespondWithError(c, 0, err)
	}

	return c.JSON(agent)
}

// UpdateMyAgent handles PUT /api/agents/me
func (s *Server) UpdateMyAgent(c *fiber.Ctx) error {
	agentID, err := s.currentAgentID(c)
	if err != nil {
		return nil
	}

	var req service.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	agent, err := s.agentService.UpdateProfile(c.Context(), agentID, &req)
	if err != nil {
		return models.RespondWithError(c, 0, err)
	}

	return c.JSON(agent)
}

// ActivateAgent handles POST /api/agents/me/activate
func (s *Server) ActivateAgent(c *fiber.Ctx) error {
	agentID, err := s.currentAgentID(c)
	if err != nil {
		return nil
	}

	agent, err := s.agentService.Activate(c.Context(), agentID)
	if err != nil {
		return models.RespondWithError(c, 0, err)
	}

	return c.JSON(agent)
}

// DeactivateAgent handles POST /api/agents/me/deactivate
func (s *Server) DeactivateAgent(c *fiber.Ctx) error {
	agentID, err := s.currentAgentID(c)
	if err != nil {
		return nil
	}

	agent, err := s.agentService.Deactivate(c.Context(), agentID)
	if err != nil {
		return models.RespondWithError(c, 0, err)
	}

	return c.JSON(agent)
}

// GetPreferences handles GET /api/agents/me/preferences
func (s *Server) GetPreferences(c *fiber.Ctx) error {
	agentID, err := s.currentAgentID(c)
	if err != nil {
		return nil
	}

	prefs, err := s.agentService.GetPreferences(c.Context(), agentID)
	if err != nil {
		return models.RespondWithError(c, 0, err)
	}

	return c.JSON(prefs)
}

// UpdatePreferences handles PUT /api/agents/me/preferences
func (s *Server) UpdatePreferences(c *fiber.Ctx) error {
	agentID, err := s.currentAgentID(c)
	if err != nil {
		return nil
	}

	var req service.PreferencesRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	prefs, err := s.agentService.UpsertPreferences(c.Context(), agentID, &req)
	if err != nil {
		return models.RespondWithError(c, 0, err)
	}

	return c.JSON(prefs)
}
