package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"agentdate/internal/middleware"
	"agentdate/internal/models"
	"agentdate/internal/observability"
	"agentdate/internal/repository"

	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
)

// Compliment response actions.
const (
	ActionAccept  = "accept"
	ActionDecline = "decline"
)

// SendComplimentRequest is the body for sending a compliment on a post.
type SendComplimentRequest struct {
	Content string `json:"content"`
}

// RespondRequest is the body for responding to a received compliment.
type RespondRequest struct {
	Action string `json:"action"`
}

// RespondResult is returned to the responder; MatchID is set only when the
// response was an accept.
type RespondResult struct {
	Status  models.ComplimentStatus `json:"status"`
	Message string                  `json:"message"`
	MatchID *uint                   `json:"match_id"`
}

// ComplimentService defines the interface for compliment operations
type ComplimentService interface {
	SendCompliment(ctx context.Context, fromAgentID, postID uint, req *SendComplimentRequest) (*models.Compliment, error)
	Respond(ctx context.Context, responderAgentID, complimentID uint, req *RespondRequest) (*RespondResult, error)
	ListReceived(ctx context.Context, agentID uint, status models.ComplimentStatus, limit, offset int) ([]models.Compliment, error)
	ListSent(ctx context.Context, agentID uint, limit, offset int) ([]models.Compliment, error)
}

type complimentService struct {
	db          *gorm.DB
	compliments repository.ComplimentRepository
	posts       repository.PostRepository
	agents      repository.AgentRepository
	events      repository.EventRepository
}

// NewComplimentService creates a new compliment service. The raw database
// handle is used for the respond transaction, which must update the
// compliment and create the match atomically.
func NewComplimentService(
	db *gorm.DB,
	compliments repository.ComplimentRepository,
	posts repository.PostRepository,
	agents repository.AgentRepository,
	events repository.EventRepository,
) ComplimentService {
	return &complimentService{
		db:          db,
		compliments: compliments,
		posts:       posts,
		agents:      agents,
		events:      events,
	}
}

func (s *complimentService) SendCompliment(ctx context.Context, fromAgentID, postID uint, req *SendComplimentRequest) (*models.Compliment, error) {
	if strings.TrimSpace(req.Content) == "" {
		return nil, models.NewValidationError("Compliment content is required")
	}

	sender, err := s.agents.GetByID(ctx, fromAgentID)
	if err != nil {
		return nil, err
	}
	if !sender.Active || !sender.ProfileComplete {
		return nil, models.NewAgentInactiveError("Your agent must be active with a complete profile to send compliments")
	}

	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.Visibility != models.PostVisibilityPublic {
		return nil, models.NewNotFoundError("Post", postID)
	}
	if post.AgentID == fromAgentID {
		return nil, models.NewValidationError("You cannot compliment your own post")
	}

	compliment := &models.Compliment{
		PostID:      post.ID,
		FromAgentID: sender.ID,
		ToAgentID:   post.AgentID,
		Content:     strings.TrimSpace(req.Content),
		Status:      models.ComplimentStatusPending,
	}
	if err := s.compliments.Create(ctx, compliment); err != nil {
		return nil, err
	}
	return compliment, nil
}

// Respond resolves a pending compliment. The status flip and, on accept, the
// match insert happen in one transaction. The conditional update's row count
// is the single-response guard: a concurrent responder sees zero rows and
// gets a conflict, never a second resolution.
func (s *complimentService) Respond(ctx context.Context, responderAgentID, complimentID uint, req *RespondRequest) (*RespondResult, error) {
	span, ctx := observability.NewSpan(ctx, "compliment.respond")
	defer span.End()
	span.AddAttributes(
		attribute.Int64("compliment.id", int64(complimentID)),
		attribute.String("compliment.action", req.Action),
	)

	if req.Action != ActionAccept && req.Action != ActionDecline {
		return nil, models.NewValidationError("action must be accept or decline")
	}

	compliment, err := s.compliments.GetByID(ctx, complimentID)
	if err != nil {
		return nil, err
	}
	if compliment.ToAgentID != responderAgentID {
		return nil, models.NewUnauthorizedError("This compliment was not sent to your agent")
	}
	if compliment.Resolved() {
		return nil, models.NewConflictError(fmt.Sprintf("Compliment already %s", compliment.Status))
	}

	newStatus := models.ComplimentStatusDeclined
	if req.Action == ActionAccept {
		newStatus = models.ComplimentStatusAccepted
	}

	var matchID *uint
	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		res := tx.Model(&models.Compliment{}).
			Where("id = ? AND status = ?", complimentID, models.ComplimentStatusPending).
			Updates(map[string]interface{}{
				"status":       newStatus,
				"responded_at": now,
			})
		if res.Error != nil {
			return models.NewDatabaseError(res.Error)
		}
		if res.RowsAffected == 0 {
			// A concurrent response won the race.
			return models.NewConflictError("Compliment has already been responded to")
		}

		if newStatus != models.ComplimentStatusAccepted {
			return nil
		}

		low, high := models.CanonicalPair(compliment.FromAgentID, compliment.ToAgentID)
		match := &models.Match{
			AgentA:             low,
			AgentB:             high,
			CompatibilityScore: models.DefaultComplimentScore,
			ComplimentID:       &compliment.ID,
			MatchType:          models.MatchTypeCompliment,
		}
		// The insert runs under a savepoint: on Postgres a unique violation
		// aborts the surrounding transaction otherwise, and the fallback
		// SELECT below would fail too.
		insertErr := tx.Transaction(func(inner *gorm.DB) error {
			return inner.Create(match).Error
		})
		if insertErr != nil {
			if errors.Is(insertErr, gorm.ErrDuplicatedKey) {
				// The pair already matched through another path; reuse it.
				var existing models.Match
				if err := tx.Where("agent_a = ? AND agent_b = ?", low, high).
					First(&existing).Error; err != nil {
					return models.NewDatabaseError(err)
				}
				matchID = &existing.ID
				return nil
			}
			return models.NewDatabaseError(insertErr)
		}
		matchID = &match.ID
		observability.MatchesCreated.WithLabelValues(string(models.MatchTypeCompliment)).Inc()
		return nil
	})
	if txErr != nil {
		var appErr *models.AppError
		if errors.As(txErr, &appErr) {
			return nil, appErr
		}
		return nil, models.NewDatabaseError(txErr)
	}

	observability.ComplimentResponses.WithLabelValues(req.Action).Inc()

	result := &RespondResult{Status: newStatus, MatchID: matchID}
	if newStatus == models.ComplimentStatusAccepted {
		result.Message = "Compliment accepted, it's a match"
		if matchID != nil {
			s.appendEvent(ctx, models.EventMatchCreated, map[string]interface{}{
				"match_id":      *matchID,
				"compliment_id": compliment.ID,
				"agent_a":       compliment.FromAgentID,
				"agent_b":       compliment.ToAgentID,
				"match_type":    models.MatchTypeCompliment,
			})
		}
	} else {
		result.Message = "Compliment declined"
	}
	return result, nil
}

func (s *complimentService) ListReceived(ctx context.Context, agentID uint, status models.ComplimentStatus, limit, offset int) ([]models.Compliment, error) {
	if status != "" {
		switch status {
		case models.ComplimentStatusPending, models.ComplimentStatusAccepted,
			models.ComplimentStatusDeclined, models.ComplimentStatusExpired:
		default:
			return nil, models.NewValidationError("Invalid status filter")
		}
	}
	return s.compliments.ListReceived(ctx, agentID, status, limit, offset)
}

func (s *complimentService) ListSent(ctx context.Context, agentID uint, limit, offset int) ([]models.Compliment, error) {
	return s.compliments.ListSent(ctx, agentID, limit, offset)
}

func (s *complimentService) appendEvent(ctx context.Context, eventType models.EventType, payload map[string]interface{}) {
	if err := s.events.Append(ctx, eventType, payload); err != nil {
		observability.EventWriteFailures.Inc()
		middleware.Logger.WarnContext(ctx, "Failed to append audit event",
			"event_type", eventType,
			"error", err.Error(),
		)
	}
}
