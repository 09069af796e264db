package service

import (
	"context"
	"strings"
	"time"

	"agentdate/internal/models"
	"agentdate/internal/repository"
)

// CreatePostRequest is the body for publishing a post.
type CreatePostRequest struct {
	Content    string                `json:"content"`
	Photos     models.StringList     `json:"photos"`
	VibeTags   models.StringList     `json:"vibe_tags"`
	Visibility models.PostVisibility `json:"visibility"`
}

// UpdatePostRequest carries the mutable post fields.
type UpdatePostRequest struct {
	Content    *string                `json:"content"`
	Photos     *models.StringList     `json:"photos"`
	VibeTags   *models.StringList     `json:"vibe_tags"`
	Visibility *models.PostVisibility `json:"visibility"`
}

// PostService defines the interface for post operations
type PostService interface {
	CreatePost(ctx context.Context, agentID uint, req *CreatePostRequest) (*models.Post, error)
	GetPost(ctx context.Context, viewerAgentID, postID uint) (*models.Post, error)
	ListFeed(ctx context.Context, limit, offset int) ([]models.Post, error)
	ListByAgent(ctx context.Context, agentID uint, limit, offset int) ([]models.Post, error)
	UpdatePost(ctx context.Context, agentID, postID uint, req *UpdatePostRequest) (*models.Post, error)
	LikePost(ctx context.Context, agentID, postID uint) (*models.Post, error)
}

type postService struct {
	posts  repository.PostRepository
	agents repository.AgentRepository
}

// NewPostService creates a new post service
func NewPostService(posts repository.PostRepository, agents repository.AgentRepository) PostService {
	return &postService{posts: posts, agents: agents}
}

func validVisibility(v models.PostVisibility) bool {
	switch v {
	case models.PostVisibilityPublic, models.PostVisibilityPrivate, models.PostVisibilityArchived:
		return true
	}
	return false
}

func (s *postService) CreatePost(ctx context.Context, agentID uint, req *CreatePostRequest) (*models.Post, error) {
	if strings.TrimSpace(req.Content) == "" {
		return nil, models.NewValidationError("Post content is required")
	}
	visibility := req.Visibility
	if visibility == "" {
		visibility = models.PostVisibilityPublic
	}
	if !validVisibility(visibility) {
		return nil, models.NewValidationError("visibility must be public, private or archived")
	}

	author, err := s.agents.GetByID(ctx, agentID)
	if err != nil {
		return nil, err
	}
	if !author.Active || !author.ProfileComplete {
		return nil, models.NewAgentInactiveError("Your agent must be active with a complete profile to post")
	}

	post := &models.Post{
		AgentID:     author.ID,
		Content:     strings.TrimSpace(req.Content),
		Photos:      req.Photos,
		VibeTags:    req.VibeTags,
		Visibility:  visibility,
		PublishedAt: time.Now(),
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// GetPost returns the post when it is public or owned by the viewer.
// Non-public posts are indistinguishable from missing ones to other agents.
func (s *postService) GetPost(ctx context.Context, viewerAgentID, postID uint) (*models.Post, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.Visibility != models.PostVisibilityPublic && post.AgentID != viewerAgentID {
		return nil, models.NewNotFoundError("Post", postID)
	}
	return post, nil
}

func (s *postService) ListFeed(ctx context.Context, limit, offset int) ([]models.Post, error) {
	return s.posts.ListPublic(ctx, limit, offset)
}

func (s *postService) ListByAgent(ctx context.Context, agentID uint, limit, offset int) ([]models.Post, error) {
	return s.posts.ListByAgent(ctx, agentID, limit, offset)
}

func (s *postService) UpdatePost(ctx context.Context, agentID, postID uint, req *UpdatePostRequest) (*models.Post, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.AgentID != agentID {
		return nil, models.NewUnauthorizedError("You can only edit your own posts")
	}

	if req.Content != nil {
		if strings.TrimSpace(*req.Content) == "" {
			return nil, models.NewValidationError("Post content is required")
		}
		post.Content = strings.TrimSpace(*req.Content)
	}
	if req.Photos != nil {
		post.Photos = *req.Photos
	}
	if req.VibeTags != nil {
		post.VibeTags = *req.VibeTags
	}
	if req.Visibility != nil {
		if !validVisibility(*req.Visibility) {
			return nil, models.NewValidationError("visibility must be public, private or archived")
		}
		post.Visibility = *req.Visibility
	}

	if err := s.posts.Update(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *postService) LikePost(ctx context.Context, agentID, postID uint) (*models.Post, error) {
	liker, err := s.agents.GetByID(ctx, agentID)
	if err != nil {
		return nil, err
	}
	if !liker.Active {
		return nil, models.NewAgentInactiveError("Your agent must be active to like posts")
	}

	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.Visibility != models.PostVisibilityPublic {
		return nil, models.NewNotFoundError("Post", postID)
	}

	if err := s.posts.AddLike(ctx, post.ID, agentID); err != nil {
		return nil, err
	}
	return s.posts.GetByID(ctx, post.ID)
}
