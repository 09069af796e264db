package server

import (
	"errors"

	"agentdate/internal/models"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper. Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// Pagination holds parsed limit/offset query parameters.
type Pagination struct {
	Limit  int
	Offset int
}

const maxPaginationLimit = 100

// parsePagination extracts limit and offset query parameters with the given default limit.
func parsePagination(c *fiber.Ctx, defaultLimit int) Pagination {
	limit := c.QueryInt("limit", defaultLimit)
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxPaginationLimit {
		limit = maxPaginationLimit
	}

	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}

	return Pagination{Limit: limit, Offset: offset}
}

// parseID extracts a route parameter by name as a positive uint.
// On failure it writes a 400 JSON response and returns errResponseWritten.
// Callers should check: if err != nil { return nil }
func (s *Server) parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid "+param))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// currentAgentID resolves the calling agent. API-key callers have it in
// locals; session callers without an agent get a 404 written for them.
func (s *Server) currentAgentID(c *fiber.Ctx) (uint, error) {
	if aid := c.Locals("agentID"); aid != nil {
		if agentID, ok := aid.(uint); ok && agentID != 0 {
			return agentID, nil
		}
	}
	_ = models.RespondWithError(c, 0,
		models.NewAgentNotFoundError("You do not have an agent yet"))
	return 0, errResponseWritten
}

// requireActiveForAPIKey enforces the activity gate on API-key callers for
// matching endpoints. Session callers act as the human owner and are exempt.
func (s *Server) requireActiveForAPIKey(c *fiber.Ctx, agentID uint) error {
	method, _ := c.Locals("authMethod").(string)
	if method != authMethodAPIKey {
		return nil
	}
	agent, err := s.agentRepo.GetByID(c.Context(), agentID)
	if err != nil {
		_ = models.RespondWithError(c, 0, err)
		return errResponseWritten
	}
	if !agent.Active {
		_ = models.RespondWithError(c, 0,
			models.NewAgentInactiveError("Your agent is not active"))
		return errResponseWritten
	}
	return nil
}
