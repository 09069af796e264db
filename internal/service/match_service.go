// Package service implements the business logic between handlers and repositories.
package service

import (
	"context"
	"errors"
	"fmt"

	"agentdate/internal/middleware"
	"agentdate/internal/models"
	"agentdate/internal/observability"
	"agentdate/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

// ProposeMatchRequest is the body of a match proposal.
type ProposeMatchRequest struct {
	TargetAgentID      uint `json:"target_agent_id"`
	CompatibilityScore int  `json:"compatibility_score"`
}

// MatchService defines the interface for match operations
type MatchService interface {
	ProposeMatch(ctx context.Context, proposerAgentID uint, req *ProposeMatchRequest) (*models.Match, error)
	ListMatches(ctx context.Context, agentID uint, limit, offset int) ([]models.Match, error)
}

type matchService struct {
	agents  repository.AgentRepository
	prefs   repository.PreferencesRepository
	matches repository.MatchRepository
	events  repository.EventRepository
}

// NewMatchService creates a new match service
func NewMatchService(
	agents repository.AgentRepository,
	prefs repository.PreferencesRepository,
	matches repository.MatchRepository,
	events repository.EventRepository,
) MatchService {
	return &matchService{agents: agents, prefs: prefs, matches: matches, events: events}
}

// rejected records the proposal rejection metric and passes the error through.
func rejected(err error) error {
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		observability.ProposalsRejected.WithLabelValues(appErr.Code).Inc()
	}
	return err
}

// ProposeMatch runs the proposal filter chain in order. The first failing
// filter wins and nothing is written. The unique (agent_a, agent_b) index is
// the final arbiter for concurrent proposals on the same pair.
func (s *matchService) ProposeMatch(ctx context.Context, proposerAgentID uint, req *ProposeMatchRequest) (*models.Match, error) {
	span, ctx := observability.NewSpan(ctx, "match.propose")
	defer span.End()
	span.AddAttributes(
		attribute.Int64("proposer.agent_id", int64(proposerAgentID)),
		attribute.Int64("target.agent_id", int64(req.TargetAgentID)),
		attribute.Int("proposal.score", req.CompatibilityScore),
	)

	if req.CompatibilityScore < 0 || req.CompatibilityScore > 100 {
		return nil, rejected(models.NewValidationError("compatibility_score must be between 0 and 100"))
	}
	if req.TargetAgentID == 0 {
		return nil, rejected(models.NewValidationError("target_agent_id is required"))
	}
	if req.TargetAgentID == proposerAgentID {
		return nil, rejected(models.NewSelfMatchError())
	}

	proposer, err := s.agents.GetByID(ctx, proposerAgentID)
	if err != nil {
		return nil, rejected(err)
	}
	target, err := s.agents.GetByID(ctx, req.TargetAgentID)
	if err != nil {
		return nil, rejected(err)
	}

	if !proposer.Active {
		return nil, rejected(models.NewAgentInactiveError("Your agent is not active"))
	}
	if !target.Active {
		return nil, rejected(models.NewAgentInactiveError(fmt.Sprintf("Agent %d is not active", target.ID)))
	}

	// Gender compatibility must hold in both directions.
	if !proposer.Seeks(target.Gender) {
		return nil, rejected(models.NewGenderMismatchError(
			fmt.Sprintf("Your agent is not looking for %s agents", target.Gender)))
	}
	if !target.Seeks(proposer.Gender) {
		return nil, rejected(models.NewGenderMismatchError(
			fmt.Sprintf("Agent %d is not looking for %s agents", target.ID, proposer.Gender)))
	}

	existing, err := s.matches.GetByPair(ctx, proposer.ID, target.ID)
	if err != nil {
		return nil, rejected(err)
	}
	if existing != nil {
		return nil, rejected(models.NewMatchAlreadyExistsError())
	}

	for _, side := range []*models.Agent{proposer, target} {
		prefs, err := s.prefs.Get(ctx, side.ID)
		if err != nil {
			return nil, rejected(err)
		}
		if prefs != nil && req.CompatibilityScore < prefs.MinScore {
			return nil, rejected(models.NewScoreBelowThresholdError(
				fmt.Sprintf("Score %d is below agent %d's minimum of %d",
					req.CompatibilityScore, side.ID, prefs.MinScore)))
		}
	}

	match := &models.Match{
		AgentA:             proposer.ID,
		AgentB:             target.ID,
		CompatibilityScore: req.CompatibilityScore,
		MatchType:          models.MatchTypeDirect,
	}
	if err := s.matches.Create(ctx, match); err != nil {
		return nil, rejected(err)
	}

	observability.MatchesCreated.WithLabelValues(string(models.MatchTypeDirect)).Inc()

	// Create canonicalizes the pair, so line the names up with the stored sides.
	nameA, nameB := proposer.AgentName, target.AgentName
	if match.AgentA != proposer.ID {
		nameA, nameB = nameB, nameA
	}
	s.appendEvent(ctx, models.EventMatchCreated, map[string]interface{}{
		"match_id":     match.ID,
		"agent_a":      match.AgentA,
		"agent_b":      match.AgentB,
		"agent_a_name": nameA,
		"agent_b_name": nameB,
		"proposer_id":  proposer.ID,
		"score":        match.CompatibilityScore,
		"match_type":   match.MatchType,
	})

	return match, nil
}

func (s *matchService) ListMatches(ctx context.Context, agentID uint, limit, offset int) ([]models.Match, error) {
	return s.matches.ListForAgent(ctx, agentID, limit, offset)
}

// appendEvent writes an audit event best-effort. A failed append is logged
// and counted but never fails the operation that produced it.
func (s *matchService) appendEvent(ctx context.Context, eventType models.EventType, payload map[string]interface{}) {
	if err := s.events.Append(ctx, eventType, payload); err != nil {
		observability.EventWriteFailures.Inc()
		middleware.Logger.WarnContext(ctx, "Failed to append audit event",
			"event_type", eventType,
			"error", err.Error(),
		)
	}
}
