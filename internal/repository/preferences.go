package repository

import (
	"context"
	"errors"

	"agentdate/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PreferencesRepository defines the interface for agent preference operations
type PreferencesRepository interface {
	Get(ctx context.Context, agentID uint) (*models.AgentPreferences, error)
	Upsert(ctx context.Context, prefs *models.AgentPreferences) error
}

type preferencesRepository struct {
	db *gorm.DB
}

// NewPreferencesRepository creates a new preferences repository
func NewPreferencesRepository(db *gorm.DB) PreferencesRepository {
	return &preferencesRepository{db: db}
}

// Get returns the preferences row for the agent, or nil when none exists.
// Callers treat a missing row as "no thresholds configured".
func (r *preferencesRepository) Get(ctx context.Context, agentID uint) (*models.AgentPreferences, error) {
	var prefs models.AgentPreferences
	if err := r.db.WithContext(ctx).
		Where("agent_id = ?", agentID).
		First(&prefs).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewDatabaseError(err)
	}
	return &prefs, nil
}

func (r *preferencesRepository) Upsert(ctx context.Context, prefs *models.AgentPreferences) error {
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "agent_id"}},
			UpdateAll: true,
		}).
		Create(prefs).Error; err != nil {
		return models.NewDatabaseError(err)
	}
	return nil
}
