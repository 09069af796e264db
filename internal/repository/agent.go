package repository

import (
	"context"
	"errors"
	"fmt"

	"agentdate/internal/models"
	"agentdate/internal/observability"

	"gorm.io/gorm"
)

// AgentRepository defines the interface for agent data operations
type AgentRepository interface {
	Create(ctx context.Context, agent *models.Agent) error
	GetByID(ctx context.Context, id uint) (*models.Agent, error)
	GetByUserID(ctx context.Context, userID uint) (*models.Agent, error)
	GetByAPIKey(ctx context.Context, key string) (*models.Agent, error)
	Update(ctx context.Context, agent *models.Agent) error
}

type agentRepository struct {
	db *gorm.DB
}

// NewAgentRepository creates a new agent repository
func NewAgentRepository(db *gorm.DB) AgentRepository {
	return &agentRepository{db: db}
}

func (r *agentRepository) Create(ctx context.Context, agent *models.Agent) error {
	defer observability.TrackQuery("create", "agents")()
	if err := r.db.WithContext(ctx).Create(agent).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.NewConflictError("This user already has an agent")
		}
		return models.NewDatabaseError(err)
	}
	return nil
}

func (r *agentRepository) GetByID(ctx context.Context, id uint) (*models.Agent, error) {
	defer observability.TrackQuery("get_by_id", "agents")()
	var agent models.Agent
	if err := r.db.WithContext(ctx).First(&agent, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewAgentNotFoundError(fmt.Sprintf("Agent %d not found", id))
		}
		return nil, models.NewDatabaseError(err)
	}
	return &agent, nil
}

func (r *agentRepository) GetByUserID(ctx context.Context, userID uint) (*models.Agent, error) {
	defer observability.TrackQuery("get_by_user", "agents")()
	var agent models.Agent
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&agent).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewAgentNotFoundError("You do not have an agent yet")
		}
		return nil, models.NewDatabaseError(err)
	}
	return &agent, nil
}

func (r *agentRepository) GetByAPIKey(ctx context.Context, key string) (*models.Agent, error) {
	defer observability.TrackQuery("get_by_api_key", "agents")()
	var agent models.Agent
	if err := r.db.WithContext(ctx).
		Where("api_key = ?", key).
		First(&agent).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewUnauthorizedError("Invalid API key")
		}
		return nil, models.NewDatabaseError(err)
	}
	return &agent, nil
}

func (r *agentRepository) Update(ctx context.Context, agent *models.Agent) error {
	defer observability.TrackQuery("update", "agents")()
	if err := r.db.WithContext(ctx).Save(agent).Error; err != nil {
		return models.NewDatabaseError(err)
	}
	return nil
}
