package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"agentdate/internal/models"
	"agentdate/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAgentRepo struct {
	getByID     func(ctx context.Context, id uint) (*models.Agent, error)
	getByUserID func(ctx context.Context, userID uint) (*models.Agent, error)
	create      func(ctx context.Context, agent *models.Agent) error
	update      func(ctx context.Context, agent *models.Agent) error
}

func (s *stubAgentRepo) Create(ctx context.Context, agent *models.Agent) error {
	if s.create != nil {
		return s.create(ctx, agent)
	}
	return nil
}

func (s *stubAgentRepo) GetByID(ctx context.Context, id uint) (*models.Agent, error) {
	return s.getByID(ctx, id)
}

func (s *stubAgentRepo) GetByUserID(ctx context.Context, userID uint) (*models.Agent, error) {
	if s.getByUserID != nil {
		return s.getByUserID(ctx, userID)
	}
	return nil, models.NewAgentNotFoundError("no agent")
}

func (s *stubAgentRepo) GetByAPIKey(ctx context.Context, key string) (*models.Agent, error) {
	return nil, models.NewUnauthorizedError("Invalid API key")
}

func (s *stubAgentRepo) Update(ctx context.Context, agent *models.Agent) error {
	if s.update != nil {
		return s.update(ctx, agent)
	}
	return nil
}

type stubPrefsRepo struct {
	get func(ctx context.Context, agentID uint) (*models.AgentPreferences, error)
}

func (s *stubPrefsRepo) Get(ctx context.Context, agentID uint) (*models.AgentPreferences, error) {
	if s.get != nil {
		return s.get(ctx, agentID)
	}
	return nil, nil
}

func (s *stubPrefsRepo) Upsert(ctx context.Context, prefs *models.AgentPreferences) error {
	return nil
}

type stubMatchRepo struct {
	create    func(ctx context.Context, match *models.Match) error
	getByPair func(ctx context.Context, a, b uint) (*models.Match, error)
}

func (s *stubMatchRepo) Create(ctx context.Context, match *models.Match) error {
	if s.create != nil {
		return s.create(ctx, match)
	}
	// Mirrors the real repository, which stores the canonical pair order.
	match.AgentA, match.AgentB = models.CanonicalPair(match.AgentA, match.AgentB)
	match.ID = 1
	return nil
}

func (s *stubMatchRepo) GetByPair(ctx context.Context, a, b uint) (*models.Match, error) {
	if s.getByPair != nil {
		return s.getByPair(ctx, a, b)
	}
	return nil, nil
}

func (s *stubMatchRepo) GetByComplimentID(ctx context.Context, complimentID uint) (*models.Match, error) {
	return nil, nil
}

func (s *stubMatchRepo) ListForAgent(ctx context.Context, agentID uint, limit, offset int) ([]models.Match, error) {
	return nil, nil
}

type stubEventRepo struct {
	appended []models.EventType
	payloads []map[string]interface{}
	fail     bool
}

func (s *stubEventRepo) Append(ctx context.Context, eventType models.EventType, payload map[string]interface{}) error {
	if s.fail {
		return models.NewDatabaseError(errors.New("events table unavailable"))
	}
	s.appended = append(s.appended, eventType)
	s.payloads = append(s.payloads, payload)
	return nil
}

func (s *stubEventRepo) List(ctx context.Context, limit, offset int) ([]models.Event, error) {
	return nil, nil
}

var (
	_ repository.AgentRepository       = (*stubAgentRepo)(nil)
	_ repository.PreferencesRepository = (*stubPrefsRepo)(nil)
	_ repository.MatchRepository       = (*stubMatchRepo)(nil)
	_ repository.EventRepository       = (*stubEventRepo)(nil)
)

func testAgent(id uint, gender models.Gender, lookingFor ...string) *models.Agent {
	return &models.Agent{
		ID:              id,
		UserID:          id,
		AgentName:       fmt.Sprintf("agent-%d", id),
		Gender:          gender,
		LookingFor:      models.StringList(lookingFor),
		Bio:             "bio",
		Photos:          models.StringList{"p.jpg"},
		Active:          true,
		ProfileComplete: true,
	}
}

func agentMap(agents ...*models.Agent) *stubAgentRepo {
	byID := map[uint]*models.Agent{}
	for _, a := range agents {
		byID[a.ID] = a
	}
	return &stubAgentRepo{
		getByID: func(_ context.Context, id uint) (*models.Agent, error) {
			if a, ok := byID[id]; ok {
				return a, nil
			}
			return nil, models.NewAgentNotFoundError("Agent not found")
		},
	}
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T", err)
	assert.Equal(t, code, appErr.Code)
}

func TestProposeMatchSuccess(t *testing.T) {
	events := &stubEventRepo{}
	svc := NewMatchService(
		agentMap(
			testAgent(2, models.GenderFemale, "male"),
			testAgent(1, models.GenderMale, "female"),
		),
		&stubPrefsRepo{},
		&stubMatchRepo{},
		events,
	)

	match, err := svc.ProposeMatch(context.Background(), 2, &ProposeMatchRequest{
		TargetAgentID:      1,
		CompatibilityScore: 88,
	})
	require.NoError(t, err)
	assert.Equal(t, models.MatchTypeDirect, match.MatchType)
	assert.Equal(t, 88, match.CompatibilityScore)
	require.Len(t, events.appended, 1)
	assert.Equal(t, models.EventMatchCreated, events.appended[0])

	// The event names both sides in stored order and keeps the proposer, which
	// canonicalization would otherwise erase.
	payload := events.payloads[0]
	assert.Equal(t, uint(1), payload["agent_a"])
	assert.Equal(t, uint(2), payload["agent_b"])
	assert.Equal(t, "agent-1", payload["agent_a_name"])
	assert.Equal(t, "agent-2", payload["agent_b_name"])
	assert.Equal(t, uint(2), payload["proposer_id"])
	assert.Equal(t, 88, payload["score"])
}

func TestProposeMatchScoreOutOfRange(t *testing.T) {
	svc := NewMatchService(agentMap(), &stubPrefsRepo{}, &stubMatchRepo{}, &stubEventRepo{})

	for _, score := range []int{-1, 101} {
		_, err := svc.ProposeMatch(context.Background(), 1, &ProposeMatchRequest{
			TargetAgentID:      2,
			CompatibilityScore: score,
		})
		assertCode(t, err, models.CodeValidationError)
	}
}

func TestProposeMatchSelf(t *testing.T) {
	svc := NewMatchService(
		agentMap(testAgent(1, models.GenderMale, "female")),
		&stubPrefsRepo{}, &stubMatchRepo{}, &stubEventRepo{},
	)

	_, err := svc.ProposeMatch(context.Background(), 1, &ProposeMatchRequest{
		TargetAgentID:      1,
		CompatibilityScore: 90,
	})
	assertCode(t, err, models.CodeSelfMatchNotAllowed)
}

func TestProposeMatchTargetMissing(t *testing.T) {
	svc := NewMatchService(
		agentMap(testAgent(1, models.GenderMale, "female")),
		&stubPrefsRepo{}, &stubMatchRepo{}, &stubEventRepo{},
	)

	_, err := svc.ProposeMatch(context.Background(), 1, &ProposeMatchRequest{
		TargetAgentID:      99,
		CompatibilityScore: 90,
	})
	assertCode(t, err, models.CodeAgentNotFound)
}

func TestProposeMatchInactiveTarget(t *testing.T) {
	target := testAgent(2, models.GenderFemale, "male")
	target.Active = false
	svc := NewMatchService(
		agentMap(testAgent(1, models.GenderMale, "female"), target),
		&stubPrefsRepo{}, &stubMatchRepo{}, &stubEventRepo{},
	)

	_, err := svc.ProposeMatch(context.Background(), 1, &ProposeMatchRequest{
		TargetAgentID:      2,
		CompatibilityScore: 90,
	})
	assertCode(t, err, models.CodeAgentInactive)
}

func TestProposeMatchGenderMismatchEitherSide(t *testing.T) {
	// Proposer not looking for the target's gender.
	svc := NewMatchService(
		agentMap(
			testAgent(1, models.GenderMale, "male"),
			testAgent(2, models.GenderFemale, "male"),
		),
		&stubPrefsRepo{}, &stubMatchRepo{}, &stubEventRepo{},
	)
	_, err := svc.ProposeMatch(context.Background(), 1, &ProposeMatchRequest{
		TargetAgentID: 2, CompatibilityScore: 90,
	})
	assertCode(t, err, models.CodeGenderMismatch)

	// Target not looking for the proposer's gender.
	svc = NewMatchService(
		agentMap(
			testAgent(1, models.GenderMale, "female"),
			testAgent(2, models.GenderFemale, "female"),
		),
		&stubPrefsRepo{}, &stubMatchRepo{}, &stubEventRepo{},
	)
	_, err = svc.ProposeMatch(context.Background(), 1, &ProposeMatchRequest{
		TargetAgentID: 2, CompatibilityScore: 90,
	})
	assertCode(t, err, models.CodeGenderMismatch)
}

func TestProposeMatchExistingPair(t *testing.T) {
	svc := NewMatchService(
		agentMap(
			testAgent(1, models.GenderMale, "female"),
			testAgent(2, models.GenderFemale, "male"),
		),
		&stubPrefsRepo{},
		&stubMatchRepo{
			getByPair: func(_ context.Context, a, b uint) (*models.Match, error) {
				return &models.Match{ID: 7, AgentA: 1, AgentB: 2}, nil
			},
		},
		&stubEventRepo{},
	)

	_, err := svc.ProposeMatch(context.Background(), 1, &ProposeMatchRequest{
		TargetAgentID: 2, CompatibilityScore: 90,
	})
	assertCode(t, err, models.CodeMatchAlreadyExists)
}

func TestProposeMatchBelowTargetThreshold(t *testing.T) {
	svc := NewMatchService(
		agentMap(
			testAgent(1, models.GenderMale, "female"),
			testAgent(2, models.GenderFemale, "male"),
		),
		&stubPrefsRepo{
			get: func(_ context.Context, agentID uint) (*models.AgentPreferences, error) {
				if agentID == 2 {
					return &models.AgentPreferences{AgentID: 2, MinScore: 95}, nil
				}
				return nil, nil
			},
		},
		&stubMatchRepo{},
		&stubEventRepo{},
	)

	_, err := svc.ProposeMatch(context.Background(), 1, &ProposeMatchRequest{
		TargetAgentID: 2, CompatibilityScore: 90,
	})
	assertCode(t, err, models.CodeScoreBelowThreshold)
}

func TestProposeMatchRaceLosesToUniqueIndex(t *testing.T) {
	// The pre-check misses the concurrent insert; the storage constraint
	// still reports the duplicate.
	svc := NewMatchService(
		agentMap(
			testAgent(1, models.GenderMale, "female"),
			testAgent(2, models.GenderFemale, "male"),
		),
		&stubPrefsRepo{},
		&stubMatchRepo{
			create: func(_ context.Context, _ *models.Match) error {
				return models.NewMatchAlreadyExistsError()
			},
		},
		&stubEventRepo{},
	)

	_, err := svc.ProposeMatch(context.Background(), 1, &ProposeMatchRequest{
		TargetAgentID: 2, CompatibilityScore: 90,
	})
	assertCode(t, err, models.CodeMatchAlreadyExists)
}

func TestProposeMatchEventFailureDoesNotSurface(t *testing.T) {
	svc := NewMatchService(
		agentMap(
			testAgent(1, models.GenderMale, "female"),
			testAgent(2, models.GenderFemale, "male"),
		),
		&stubPrefsRepo{},
		&stubMatchRepo{},
		&stubEventRepo{fail: true},
	)

	match, err := svc.ProposeMatch(context.Background(), 1, &ProposeMatchRequest{
		TargetAgentID: 2, CompatibilityScore: 90,
	})
	require.NoError(t, err)
	assert.NotNil(t, match)
}
