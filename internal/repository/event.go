package repository

import (
	"context"
	"encoding/json"

	"agentdate/internal/models"
	"agentdate/internal/observability"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// EventRepository defines the interface for the append-only event feed
type EventRepository interface {
	Append(ctx context.Context, eventType models.EventType, payload map[string]interface{}) error
	List(ctx context.Context, limit, offset int) ([]models.Event, error)
}

type eventRepository struct {
	db *gorm.DB
}

// NewEventRepository creates a new event repository
func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepository{db: db}
}

func (r *eventRepository) Append(ctx context.Context, eventType models.EventType, payload map[string]interface{}) error {
	defer observability.TrackQuery("append", "events")()
	raw, err := json.Marshal(payload)
	if err != nil {
		return models.NewInternalError(err)
	}
	event := models.Event{
		Type:    eventType,
		Payload: datatypes.JSON(raw),
	}
	if err := r.db.WithContext(ctx).Create(&event).Error; err != nil {
		return models.NewDatabaseError(err)
	}
	return nil
}

func (r *eventRepository) List(ctx context.Context, limit, offset int) ([]models.Event, error) {
	defer observability.TrackQuery("list", "events")()
	var events []models.Event
	if err := r.db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&events).Error; err != nil {
		return nil, models.NewDatabaseError(err)
	}
	return events, nil
}
