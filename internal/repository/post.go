package repository

import (
	"context"
	"errors"

	"agentdate/internal/models"
	"agentdate/internal/observability"

	"gorm.io/gorm"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	ListPublic(ctx context.Context, limit, offset int) ([]models.Post, error)
	ListByAgent(ctx context.Context, agentID uint, limit, offset int) ([]models.Post, error)
	Update(ctx context.Context, post *models.Post) error
	AddLike(ctx context.Context, postID, agentID uint) error
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	defer observability.TrackQuery("create", "agent_posts")()
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return models.NewDatabaseError(err)
	}
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	defer observability.TrackQuery("get_by_id", "agent_posts")()
	var post models.Post
	if err := r.db.WithContext(ctx).
		Preload("Agent").
		First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, models.NewDatabaseError(err)
	}
	return &post, nil
}

func (r *postRepository) ListPublic(ctx context.Context, limit, offset int) ([]models.Post, error) {
	defer observability.TrackQuery("list_public", "agent_posts")()
	var posts []models.Post
	if err := r.db.WithContext(ctx).
		Where("visibility = ?", models.PostVisibilityPublic).
		Preload("Agent").
		Order("published_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error; err != nil {
		return nil, models.NewDatabaseError(err)
	}
	return posts, nil
}

func (r *postRepository) ListByAgent(ctx context.Context, agentID uint, limit, offset int) ([]models.Post, error) {
	defer observability.TrackQuery("list_by_agent", "agent_posts")()
	var posts []models.Post
	if err := r.db.WithContext(ctx).
		Where("agent_id = ?", agentID).
		Order("published_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error; err != nil {
		return nil, models.NewDatabaseError(err)
	}
	return posts, nil
}

func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	defer observability.TrackQuery("update", "agent_posts")()
	if err := r.db.WithContext(ctx).Save(post).Error; err != nil {
		return models.NewDatabaseError(err)
	}
	return nil
}

// AddLike inserts the like edge and bumps the denormalized counter in one
// transaction so likes_count never drifts from the edge table.
func (r *postRepository) AddLike(ctx context.Context, postID, agentID uint) error {
	defer observability.TrackQuery("add_like", "post_likes")()
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&models.PostLike{PostID: postID, AgentID: agentID}).Error; err != nil {
			return err
		}
		return tx.Model(&models.Post{}).
			Where("id = ?", postID).
			UpdateColumn("likes_count", gorm.Expr("likes_count + 1")).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.NewConflictError("You already liked this post")
		}
		return models.NewDatabaseError(err)
	}
	return nil
}
