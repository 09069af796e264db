package service

import (
	"context"
	"strings"

	"agentdate/internal/cache"
	"agentdate/internal/middleware"
	"agentdate/internal/models"
	"agentdate/internal/observability"
	"agentdate/internal/repository"

	"github.com/google/uuid"
)

// RegisterAgentRequest is the body for self-registering an agent on behalf of
// a (possibly not yet claimed) user handle.
type RegisterAgentRequest struct {
	XHandle          string            `json:"x_handle"`
	AgentName        string            `json:"agent_name"`
	Gender           models.Gender     `json:"gender"`
	LookingFor       models.StringList `json:"looking_for"`
	Age              int               `json:"age"`
	AgeRangeMin      int               `json:"age_range_min"`
	AgeRangeMax      int               `json:"age_range_max"`
	Bio              string            `json:"bio"`
	Photos           models.StringList `json:"photos"`
	VibeTags         models.StringList `json:"vibe_tags"`
	Interests        models.StringList `json:"interests"`
	Location         string            `json:"location"`
	LookingForTraits models.StringList `json:"looking_for_traits"`
}

// UpdateProfileRequest carries the mutable profile fields. Pointers
// distinguish "leave unchanged" from "set to zero value".
type UpdateProfileRequest struct {
	AgentName        *string            `json:"agent_name"`
	Gender           *models.Gender     `json:"gender"`
	LookingFor       *models.StringList `json:"looking_for"`
	Age              *int               `json:"age"`
	AgeRangeMin      *int               `json:"age_range_min"`
	AgeRangeMax      *int               `json:"age_range_max"`
	Bio              *string            `json:"bio"`
	Photos           *models.StringList `json:"photos"`
	VibeTags         *models.StringList `json:"vibe_tags"`
	Interests        *models.StringList `json:"interests"`
	Location         *string            `json:"location"`
	LookingForTraits *models.StringList `json:"looking_for_traits"`
}

// PreferencesRequest is the body for upserting matching preferences.
type PreferencesRequest struct {
	MinScore     int               `json:"min_score"`
	VibeTags     models.StringList `json:"vibe_tags"`
	Dealbreakers models.StringList `json:"dealbreakers"`
}

// AgentService defines the interface for agent lifecycle operations
type AgentService interface {
	Register(ctx context.Context, req *RegisterAgentRequest) (*models.Agent, error)
	ClaimUser(ctx context.Context, xUserID, handle, avatarURL string) (*models.User, error)
	GetAgentForUser(ctx context.Context, userID uint) (*models.Agent, error)
	GetAgentCard(ctx context.Context, agentID uint) (*models.Agent, error)
	UpdateProfile(ctx context.Context, agentID uint, req *UpdateProfileRequest) (*models.Agent, error)
	Activate(ctx context.Context, agentID uint) (*models.Agent, error)
	Deactivate(ctx context.Context, agentID uint) (*models.Agent, error)
	GetPreferences(ctx context.Context, agentID uint) (*models.AgentPreferences, error)
	UpsertPreferences(ctx context.Context, agentID uint, req *PreferencesRequest) (*models.AgentPreferences, error)
}

type agentService struct {
	users  repository.UserRepository
	agents repository.AgentRepository
	prefs  repository.PreferencesRepository
	events repository.EventRepository
}

// NewAgentService creates a new agent service
func NewAgentService(
	users repository.UserRepository,
	agents repository.AgentRepository,
	prefs repository.PreferencesRepository,
	events repository.EventRepository,
) AgentService {
	return &agentService{users: users, agents: agents, prefs: prefs, events: events}
}

func validGenderList(list models.StringList) bool {
	if len(list) == 0 {
		return false
	}
	for _, g := range list {
		if !models.Gender(g).Valid() {
			return false
		}
	}
	return true
}

// Register creates the agent and, when the handle is new, an unclaimed user
// row carrying a claim token for the human to redeem later.
func (s *agentService) Register(ctx context.Context, req *RegisterAgentRequest) (*models.Agent, error) {
	handle := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(req.XHandle, "@")))
	if handle == "" {
		return nil, models.NewValidationError("x_handle is required")
	}
	if strings.TrimSpace(req.AgentName) == "" {
		return nil, models.NewValidationError("agent_name is required")
	}
	if !req.Gender.Valid() {
		return nil, models.NewValidationError("gender must be one of male, female, non_binary, other")
	}
	if !validGenderList(req.LookingFor) {
		return nil, models.NewValidationError("looking_for must list at least one valid gender")
	}
	if req.AgeRangeMin != 0 && req.AgeRangeMax != 0 && req.AgeRangeMin > req.AgeRangeMax {
		return nil, models.NewValidationError("age_range_min cannot exceed age_range_max")
	}

	user, err := s.users.GetByHandle(ctx, handle)
	if err != nil {
		return nil, err
	}
	if user == nil {
		user = &models.User{
			// Placeholder until the human claims the handle and we learn
			// their real provider ID.
			XUserID:    "unclaimed:" + uuid.NewString(),
			XHandle:    handle,
			ClaimToken: uuid.NewString(),
		}
		if err := s.users.Create(ctx, user); err != nil {
			return nil, err
		}
	}

	apiKey, err := models.GenerateAPIKey()
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	agent := &models.Agent{
		UserID:           user.ID,
		AgentName:        strings.TrimSpace(req.AgentName),
		Gender:           req.Gender,
		LookingFor:       req.LookingFor,
		Age:              req.Age,
		AgeRangeMin:      req.AgeRangeMin,
		AgeRangeMax:      req.AgeRangeMax,
		Bio:              req.Bio,
		Photos:           req.Photos,
		VibeTags:         req.VibeTags,
		Interests:        req.Interests,
		Location:         req.Location,
		LookingForTraits: req.LookingForTraits,
		APIKey:           apiKey,
	}
	if agent.AgeRangeMin == 0 {
		agent.AgeRangeMin = 18
	}
	if agent.AgeRangeMax == 0 {
		agent.AgeRangeMax = 99
	}
	agent.ProfileComplete = agent.IsProfileComplete()

	if err := s.agents.Create(ctx, agent); err != nil {
		return nil, err
	}

	s.appendEvent(ctx, models.EventAgentRegistered, map[string]interface{}{
		"agent_id": agent.ID,
		"user_id":  user.ID,
		"x_handle": handle,
	})
	return agent, nil
}

// ClaimUser binds the authenticated provider identity to the user row for its
// handle, creating one when an agent never pre-registered it. Idempotent.
func (s *agentService) ClaimUser(ctx context.Context, xUserID, handle, avatarURL string) (*models.User, error) {
	handle = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(handle, "@")))
	if xUserID == "" || handle == "" {
		return nil, models.NewUnauthorizedError("Missing identity claims")
	}

	user, err := s.users.GetByXUserID(ctx, xUserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		user, err = s.users.GetByHandle(ctx, handle)
		if err != nil {
			return nil, err
		}
	}
	if user == nil {
		user = &models.User{
			XUserID:    xUserID,
			XHandle:    handle,
			XAvatarURL: avatarURL,
			Claimed:    true,
		}
		if err := s.users.Create(ctx, user); err != nil {
			return nil, err
		}
		return user, nil
	}

	if user.Claimed && user.XUserID == xUserID {
		return user, nil
	}
	user.XUserID = xUserID
	user.XAvatarURL = avatarURL
	user.Claimed = true
	user.ClaimToken = ""
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *agentService) GetAgentForUser(ctx context.Context, userID uint) (*models.Agent, error) {
	return s.agents.GetByUserID(ctx, userID)
}

// GetAgentCard returns the public agent card, cache-aside through Redis.
func (s *agentService) GetAgentCard(ctx context.Context, agentID uint) (*models.Agent, error) {
	var agent models.Agent
	err := cache.CacheAside(ctx, cache.AgentCardKey(agentID), &agent, cache.AgentCardTTL, func() error {
		fetched, err := s.agents.GetByID(ctx, agentID)
		if err != nil {
			return err
		}
		agent = *fetched
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &agent, nil
}

func (s *agentService) UpdateProfile(ctx context.Context, agentID uint, req *UpdateProfileRequest) (*models.Agent, error) {
	agent, err := s.agents.GetByID(ctx, agentID)
	if err != nil {
		return nil, err
	}

	if req.Gender != nil && !req.Gender.Valid() {
		return nil, models.NewValidationError("gender must be one of male, female, non_binary, other")
	}
	if req.LookingFor != nil && !validGenderList(*req.LookingFor) {
		return nil, models.NewValidationError("looking_for must list at least one valid gender")
	}

	if req.AgentName != nil {
		agent.AgentName = strings.TrimSpace(*req.AgentName)
	}
	if req.Gender != nil {
		agent.Gender = *req.Gender
	}
	if req.LookingFor != nil {
		agent.LookingFor = *req.LookingFor
	}
	if req.Age != nil {
		agent.Age = *req.Age
	}
	if req.AgeRangeMin != nil {
		agent.AgeRangeMin = *req.AgeRangeMin
	}
	if req.AgeRangeMax != nil {
		agent.AgeRangeMax = *req.AgeRangeMax
	}
	if agent.AgeRangeMin > agent.AgeRangeMax {
		return nil, models.NewValidationError("age_range_min cannot exceed age_range_max")
	}
	if req.Bio != nil {
		agent.Bio = *req.Bio
	}
	if req.Photos != nil {
		agent.Photos = *req.Photos
	}
	if req.VibeTags != nil {
		agent.VibeTags = *req.VibeTags
	}
	if req.Interests != nil {
		agent.Interests = *req.Interests
	}
	if req.Location != nil {
		agent.Location = *req.Location
	}
	if req.LookingForTraits != nil {
		agent.LookingForTraits = *req.LookingForTraits
	}

	agent.ProfileComplete = agent.IsProfileComplete()
	if !agent.ProfileComplete && agent.Active {
		// Losing completeness drops the agent out of matching.
		agent.Active = false
	}

	if err := s.agents.Update(ctx, agent); err != nil {
		return nil, err
	}
	cache.Invalidate(ctx, cache.AgentCardKey(agent.ID))
	return agent, nil
}

// Activate flips the agent into matching. Requires the owning user to have
// claimed their account and the profile to be complete.
func (s *agentService) Activate(ctx context.Context, agentID uint) (*models.Agent, error) {
	agent, err := s.agents.GetByID(ctx, agentID)
	if err != nil {
		return nil, err
	}
	if agent.Active {
		return agent, nil
	}
	if !agent.ProfileComplete {
		return nil, models.NewValidationError("Complete your profile (bio and at least one photo) before activating")
	}

	owner, err := s.users.GetByID(ctx, agent.UserID)
	if err != nil {
		return nil, err
	}
	if !owner.Claimed {
		return nil, models.NewConflictError("The owning user has not claimed their account yet")
	}

	agent.Active = true
	if err := s.agents.Update(ctx, agent); err != nil {
		return nil, err
	}
	cache.Invalidate(ctx, cache.AgentCardKey(agent.ID))
	return agent, nil
}

func (s *agentService) Deactivate(ctx context.Context, agentID uint) (*models.Agent, error) {
	agent, err := s.agents.GetByID(ctx, agentID)
	if err != nil {
		return nil, err
	}
	if !agent.Active {
		return agent, nil
	}
	agent.Active = false
	if err := s.agents.Update(ctx, agent); err != nil {
		return nil, err
	}
	cache.Invalidate(ctx, cache.AgentCardKey(agent.ID))

	s.appendEvent(ctx, models.EventAgentDeactivated, map[string]interface{}{
		"agent_id": agent.ID,
	})
	return agent, nil
}

func (s *agentService) GetPreferences(ctx context.Context, agentID uint) (*models.AgentPreferences, error) {
	prefs, err := s.prefs.Get(ctx, agentID)
	if err != nil {
		return nil, err
	}
	if prefs == nil {
		prefs = &models.AgentPreferences{AgentID: agentID}
	}
	return prefs, nil
}

func (s *agentService) UpsertPreferences(ctx context.Context, agentID uint, req *PreferencesRequest) (*models.AgentPreferences, error) {
	if req.MinScore < 0 || req.MinScore > 100 {
		return nil, models.NewValidationError("min_score must be between 0 and 100")
	}
	prefs := &models.AgentPreferences{
		AgentID:      agentID,
		MinScore:     req.MinScore,
		VibeTags:     req.VibeTags,
		Dealbreakers: req.Dealbreakers,
	}
	if err := s.prefs.Upsert(ctx, prefs); err != nil {
		return nil, err
	}
	return prefs, nil
}

func (s *agentService) appendEvent(ctx context.Context, eventType models.EventType, payload map[string]interface{}) {
	if err := s.events.Append(ctx, eventType, payload); err != nil {
		observability.EventWriteFailures.Inc()
		middleware.Logger.WarnContext(ctx, "Failed to append audit event",
			"event_type", eventType,
			"error", err.Error(),
		)
	}
}
