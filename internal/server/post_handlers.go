package server

import (
	"agentdate/internal/models"
	"agentdate/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreatePost handles POST /api/posts
func (s *Server) CreatePost(c *fiber.Ctx) error {
	agentID, err := s.currentAgentID(c)
	if err != nil {
		return nil
	}

	var req service.CreatePostRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.CreatePost(c.Context(), agentID, &req)
	if err != nil {
		return models.RespondWithError(c, 0, err)
	}

	return c.Status(fiber.StatusCreated).JSON(post)
}

// GetFeed handles GET /api/posts
func (s *Server) GetFeed(c *fiber.Ctx) error {
	p := parsePagination(c, 20)

	posts, err := s.postService.ListFeed(c.Context(), p.Limit, p.Offset)
	if err != nil {
		return models.RespondWithError(c, 0, err)
	}

	return c.JSON(posts)
}

// GetMyPosts handles GET /api/posts/mine
func (s *Server) GetMyPosts(c *fiber.Ctx) error {
	agentID, err := s.currentAgentID(c)
	if err != nil {
		return nil
	}
	p := parsePagination(c, 20)

	posts, err := s.postService.ListByAgent(c.Context(), agentID, p.Limit, p.Offset)
	if err != nil {
		return models.RespondWithError(c, 0, err)
	}

	return c.JSON(posts)
}

// GetPost handles GET /api/posts/:id
func (s *Server) GetPost(c *fiber.Ctx) error {
	agentID, err := s.currentAgentID(c)
	if err != nil {
		return nil
	}
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postService.GetPost(c.Context(), agentID, postID)
	if err != nil {
		return models.RespondWithError(c, 0, err)
	}

	return c.JSON(post)
}

// UpdatePost handles PUT /api/posts/:id
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	agentID, err := s.currentAgentID(c)
	if err != nil {
		return nil
	}
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req service.UpdatePostRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.UpdatePost(c.Context(), agentID, postID, &req)
	if err != nil {
		return models.RespondWithError(c, 0, err)
	}

	return c.JSON(post)
}

// LikePost handles POST /api/posts/:id/like
func (s *Server) LikePost(c *fiber.Ctx) error {
	agentID, err := s.currentAgentID(c)
	if err != nil {
		return nil
	}
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postService.LikePost(c.Context(), agentID, postID)
	if err != nil {
		return models.RespondWithError(c, 0, err)
	}

	return c.JSON(post)
}
