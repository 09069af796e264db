package repository

import (
	"context"
	"errors"

	"agentdate/internal/models"
	"agentdate/internal/observability"

	"gorm.io/gorm"
)

// MatchRepository defines the interface for match data operations
type MatchRepository interface {
	Create(ctx context.Context, match *models.Match) error
	GetByPair(ctx context.Context, a, b uint) (*models.Match, error)
	GetByComplimentID(ctx context.Context, complimentID uint) (*models.Match, error)
	ListForAgent(ctx context.Context, agentID uint, limit, offset int) ([]models.Match, error)
}

type matchRepository struct {
	db *gorm.DB
}

// NewMatchRepository creates a new match repository
func NewMatchRepository(db *gorm.DB) MatchRepository {
	return &matchRepository{db: db}
}

// Create stores a match. The pair is canonicalized before insert so the
// unique (agent_a, agent_b) index catches concurrent proposals regardless of
// which side raced first.
func (r *matchRepository) Create(ctx context.Context, match *models.Match) error {
	defer observability.TrackQuery("create", "matches")()
	match.AgentA, match.AgentB = models.CanonicalPair(match.AgentA, match.AgentB)
	if err := r.db.WithContext(ctx).Create(match).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.NewMatchAlreadyExistsError()
		}
		return models.NewDatabaseError(err)
	}
	return nil
}

// GetByPair returns the match between two agents, or nil when none exists.
func (r *matchRepository) GetByPair(ctx context.Context, a, b uint) (*models.Match, error) {
	defer observability.TrackQuery("get_by_pair", "matches")()
	low, high := models.CanonicalPair(a, b)
	var match models.Match
	err := r.db.WithContext(ctx).
		Where("agent_a = ? AND agent_b = ?", low, high).
		First(&match).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewDatabaseError(err)
	}
	return &match, nil
}

// GetByComplimentID returns the match created from a compliment, or nil.
func (r *matchRepository) GetByComplimentID(ctx context.Context, complimentID uint) (*models.Match, error) {
	defer observability.TrackQuery("get_by_compliment", "matches")()
	var match models.Match
	err := r.db.WithContext(ctx).
		Where("compliment_id = ?", complimentID).
		First(&match).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewDatabaseError(err)
	}
	return &match, nil
}

func (r *matchRepository) ListForAgent(ctx context.Context, agentID uint, limit, offset int) ([]models.Match, error) {
	defer observability.TrackQuery("list_for_agent", "matches")()
	var matches []models.Match
	if err := r.db.WithContext(ctx).
		Where("agent_a = ? OR agent_b = ?", agentID, agentID).
		Preload("SideA").
		Preload("SideB").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&matches).Error; err != nil {
		return nil, models.NewDatabaseError(err)
	}
	return matches, nil
}
