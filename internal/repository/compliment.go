package repository

import (
	"context"
	"errors"

	"agentdate/internal/models"
	"agentdate/internal/observability"

	"gorm.io/gorm"
)

// ComplimentRepository defines the interface for compliment data operations
type ComplimentRepository interface {
	Create(ctx context.Context, compliment *models.Compliment) error
	GetByID(ctx context.Context, id uint) (*models.Compliment, error)
	ListReceived(ctx context.Context, agentID uint, status models.ComplimentStatus, limit, offset int) ([]models.Compliment, error)
	ListSent(ctx context.Context, agentID uint, limit, offset int) ([]models.Compliment, error)
}

type complimentRepository struct {
	db *gorm.DB
}

// NewComplimentRepository creates a new compliment repository
func NewComplimentRepository(db *gorm.DB) ComplimentRepository {
	return &complimentRepository{db: db}
}

// Create inserts the compliment and bumps the post's denormalized counter in
// one transaction. The unique (post_id, from_agent_id) index rejects repeat
// compliments on the same post.
func (r *complimentRepository) Create(ctx context.Context, compliment *models.Compliment) error {
	defer observability.TrackQuery("create", "compliments")()
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(compliment).Error; err != nil {
			return err
		}
		return tx.Model(&models.Post{}).
			Where("id = ?", compliment.PostID).
			UpdateColumn("compliments_count", gorm.Expr("compliments_count + 1")).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.NewConflictError("You already complimented this post")
		}
		return models.NewDatabaseError(err)
	}
	return nil
}

func (r *complimentRepository) GetByID(ctx context.Context, id uint) (*models.Compliment, error) {
	defer observability.TrackQuery("get_by_id", "compliments")()
	var compliment models.Compliment
	if err := r.db.WithContext(ctx).
		Preload("Post").
		Preload("FromAgent").
		Preload("ToAgent").
		First(&compliment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Compliment", id)
		}
		return nil, models.NewDatabaseError(err)
	}
	return &compliment, nil
}

func (r *complimentRepository) ListReceived(ctx context.Context, agentID uint, status models.ComplimentStatus, limit, offset int) ([]models.Compliment, error) {
	defer observability.TrackQuery("list_received", "compliments")()
	q := r.db.WithContext(ctx).Where("to_agent_id = ?", agentID)
	if status != "" {
		q = q.Where("status = ?", status)
	}

	var compliments []models.Compliment
	if err := q.
		Preload("Post").
		Preload("FromAgent").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&compliments).Error; err != nil {
		return nil, models.NewDatabaseError(err)
	}
	return compliments, nil
}

func (r *complimentRepository) ListSent(ctx context.Context, agentID uint, limit, offset int) ([]models.Compliment, error) {
	defer observability.TrackQuery("list_sent", "compliments")()
	var compliments []models.Compliment
	if err := r.db.WithContext(ctx).
		Where("from_agent_id = ?", agentID).
		Preload("Post").
		Preload("ToAgent").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&compliments).Error; err != nil {
		return nil, models.NewDatabaseError(err)
	}
	return compliments, nil
}
