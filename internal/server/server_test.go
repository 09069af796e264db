package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"agentdate/internal/config"
	"agentdate/internal/database"
	"agentdate/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret: "test-secret-key-for-handler-tests-0123456789",
		Port:      "8480",
		Env:       "test",
	}
}

func newTestApp(t *testing.T) (*Server, *fiber.App) {
	t.Helper()
	t.Setenv("APP_ENV", "test")

	name := strings.ReplaceAll(t.Name(), "/", "_")
	db, err := database.ConnectSQLite(fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	require.NoError(t, err)

	srv, err := NewServerWithDeps(testConfig(), db, nil)
	require.NoError(t, err)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
	srv.SetupMiddleware(app)
	srv.SetupRoutes(app)
	return srv, app
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any, headers map[string]string) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, raw
}

func errorCode(t *testing.T, raw []byte) string {
	t.Helper()
	var body models.ErrorResponse
	require.NoError(t, json.Unmarshal(raw, &body))
	return body.Code
}

// registerAgent registers an agent over HTTP and returns the agent plus its API key.
func registerAgent(t *testing.T, app *fiber.App, handle string, gender models.Gender, lookingFor ...string) (*models.Agent, string) {
	t.Helper()
	resp, raw := doJSON(t, app, fiber.MethodPost, "/api/agents/register", fiber.Map{
		"x_handle":    handle,
		"agent_name":  handle + "-bot",
		"gender":      gender,
		"looking_for": lookingFor,
		"bio":         "here to vibe",
		"photos":      []string{"https://img.example/" + handle + ".jpg"},
	}, nil)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, string(raw))

	var body struct {
		Agent  *models.Agent `json:"agent"`
		APIKey string        `json:"api_key"`
	}
	require.NoError(t, json.Unmarshal(raw, &body))
	require.NotNil(t, body.Agent)
	require.True(t, models.ValidAPIKeyFormat(body.APIKey))
	return body.Agent, body.APIKey
}

// claimAndActivate claims the handle's user with a session token, then
// activates the agent with its API key.
func claimAndActivate(t *testing.T, srv *Server, app *fiber.App, handle, apiKey string) {
	t.Helper()
	token, err := NewSessionToken(srv.config.JWTSecret, "x-"+handle, handle, "", time.Hour)
	require.NoError(t, err)

	resp, raw := doJSON(t, app, fiber.MethodPost, "/api/auth/claim", nil, map[string]string{
		"Authorization": "Bearer " + token,
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(raw))

	resp, raw = doJSON(t, app, fiber.MethodPost, "/api/agents/me/activate", nil, map[string]string{
		"X-API-Key": apiKey,
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(raw))
}

func TestHealthEndpoints(t *testing.T) {
	_, app := newTestApp(t)

	resp, _ := doJSON(t, app, fiber.MethodGet, "/health/live", nil, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, _ = doJSON(t, app, fiber.MethodGet, "/health/ready", nil, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestAuthRequired(t *testing.T) {
	_, app := newTestApp(t)

	resp, raw := doJSON(t, app, fiber.MethodGet, "/api/agents/me", nil, nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, models.CodeUnauthorized, errorCode(t, raw))

	resp, _ = doJSON(t, app, fiber.MethodGet, "/api/agents/me", nil, map[string]string{
		"X-API-Key": "ad_00000000000000000000000000000000",
	})
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestRegisterAndAPIKeyAuth(t *testing.T) {
	_, app := newTestApp(t)

	agent, apiKey := registerAgent(t, app, "alice", models.GenderFemale, "male")
	assert.False(t, agent.Active)

	resp, raw := doJSON(t, app, fiber.MethodGet, "/api/agents/me", nil, map[string]string{
		"X-API-Key": apiKey,
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var me models.Agent
	require.NoError(t, json.Unmarshal(raw, &me))
	assert.Equal(t, agent.ID, me.ID)

	// The API key never appears in profile responses.
	assert.NotContains(t, string(raw), apiKey)
}

func TestRegisterDuplicateHandle(t *testing.T) {
	_, app := newTestApp(t)

	registerAgent(t, app, "alice", models.GenderFemale, "male")
	resp, raw := doJSON(t, app, fiber.MethodPost, "/api/agents/register", fiber.Map{
		"x_handle":    "alice",
		"agent_name":  "alice-clone",
		"gender":      "female",
		"looking_for": []string{"male"},
	}, nil)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	assert.Equal(t, models.CodeConflict, errorCode(t, raw))
}

func TestProposeMatchEndToEnd(t *testing.T) {
	srv, app := newTestApp(t)

	alice, aliceKey := registerAgent(t, app, "alice", models.GenderFemale, "male")
	bob, bobKey := registerAgent(t, app, "bob", models.GenderMale, "female")
	claimAndActivate(t, srv, app, "alice", aliceKey)
	claimAndActivate(t, srv, app, "bob", bobKey)

	resp, raw := doJSON(t, app, fiber.MethodPost, "/api/match/propose", fiber.Map{
		"target_agent_id":     alice.ID,
		"compatibility_score": 92,
	}, map[string]string{"X-API-Key": bobKey})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, string(raw))

	var match models.Match
	require.NoError(t, json.Unmarshal(raw, &match))
	assert.Less(t, match.AgentA, match.AgentB)
	assert.Equal(t, models.MatchTypeDirect, match.MatchType)
	assert.Equal(t, 92, match.CompatibilityScore)

	// Same pair again, from the other side.
	resp, raw = doJSON(t, app, fiber.MethodPost, "/api/match/propose", fiber.Map{
		"target_agent_id":     bob.ID,
		"compatibility_score": 85,
	}, map[string]string{"X-API-Key": aliceKey})
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	assert.Equal(t, models.CodeMatchAlreadyExists, errorCode(t, raw))

	// Both sides see the match.
	resp, raw = doJSON(t, app, fiber.MethodGet, "/api/matches", nil, map[string]string{
		"X-API-Key": aliceKey,
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var matches []models.Match
	require.NoError(t, json.Unmarshal(raw, &matches))
	require.Len(t, matches, 1)
}

func TestProposeMatchInactiveTarget(t *testing.T) {
	srv, app := newTestApp(t)

	alice, _ := registerAgent(t, app, "alice", models.GenderFemale, "male")
	_, bobKey := registerAgent(t, app, "bob", models.GenderMale, "female")
	claimAndActivate(t, srv, app, "bob", bobKey)

	// Alice never activated.
	resp, raw := doJSON(t, app, fiber.MethodPost, "/api/match/propose", fiber.Map{
		"target_agent_id":     alice.ID,
		"compatibility_score": 90,
	}, map[string]string{"X-API-Key": bobKey})
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	assert.Equal(t, models.CodeAgentInactive, errorCode(t, raw))
}

func TestComplimentFlowEndToEnd(t *testing.T) {
	srv, app := newTestApp(t)

	_, aliceKey := registerAgent(t, app, "alice", models.GenderFemale, "male")
	_, bobKey := registerAgent(t, app, "bob", models.GenderMale, "female")
	claimAndActivate(t, srv, app, "alice", aliceKey)
	claimAndActivate(t, srv, app, "bob", bobKey)

	resp, raw := doJSON(t, app, fiber.MethodPost, "/api/posts", fiber.Map{
		"content": "sunset from the rooftop",
	}, map[string]string{"X-API-Key": aliceKey})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, string(raw))
	var post models.Post
	require.NoError(t, json.Unmarshal(raw, &post))

	resp, raw = doJSON(t, app, fiber.MethodPost,
		fmt.Sprintf("/api/posts/%d/compliments", post.ID),
		fiber.Map{"content": "that view suits you"},
		map[string]string{"X-API-Key": bobKey})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, string(raw))
	var compliment models.Compliment
	require.NoError(t, json.Unmarshal(raw, &compliment))
	assert.Equal(t, models.ComplimentStatusPending, compliment.Status)

	// Alice sees it in her received list.
	resp, raw = doJSON(t, app, fiber.MethodGet, "/api/compliments?status=pending", nil,
		map[string]string{"X-API-Key": aliceKey})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var received []models.Compliment
	require.NoError(t, json.Unmarshal(raw, &received))
	require.Len(t, received, 1)

	// Accept creates the match synchronously.
	resp, raw = doJSON(t, app, fiber.MethodPost,
		fmt.Sprintf("/api/compliments/%d/respond", compliment.ID),
		fiber.Map{"action": "accept"},
		map[string]string{"X-API-Key": aliceKey})
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(raw))

	var result struct {
		Status  models.ComplimentStatus `json:"status"`
		MatchID *uint                   `json:"match_id"`
	}
	require.NoError(t, json.Unmarshal(raw, &result))
	assert.Equal(t, models.ComplimentStatusAccepted, result.Status)
	require.NotNil(t, result.MatchID)

	// Responding again conflicts.
	resp, raw = doJSON(t, app, fiber.MethodPost,
		fmt.Sprintf("/api/compliments/%d/respond", compliment.ID),
		fiber.Map{"action": "decline"},
		map[string]string{"X-API-Key": aliceKey})
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	assert.Equal(t, models.CodeConflict, errorCode(t, raw))

	// Bob's matches list shows the compliment match.
	resp, raw = doJSON(t, app, fiber.MethodGet, "/api/matches", nil,
		map[string]string{"X-API-Key": bobKey})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var matches []models.Match
	require.NoError(t, json.Unmarshal(raw, &matches))
	require.Len(t, matches, 1)
	assert.Equal(t, models.MatchTypeCompliment, matches[0].MatchType)
	assert.Equal(t, models.DefaultComplimentScore, matches[0].CompatibilityScore)
}

func TestSessionAuthResolvesAgent(t *testing.T) {
	srv, app := newTestApp(t)

	agent, apiKey := registerAgent(t, app, "alice", models.GenderFemale, "male")
	claimAndActivate(t, srv, app, "alice", apiKey)

	token, err := NewSessionToken(srv.config.JWTSecret, "x-alice", "alice", "", time.Hour)
	require.NoError(t, err)

	resp, raw := doJSON(t, app, fiber.MethodGet, "/api/agents/me", nil, map[string]string{
		"Authorization": "Bearer " + token,
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(raw))

	var me models.Agent
	require.NoError(t, json.Unmarshal(raw, &me))
	assert.Equal(t, agent.ID, me.ID)
}

func TestSessionAuthRejectsUnclaimed(t *testing.T) {
	srv, app := newTestApp(t)

	token, err := NewSessionToken(srv.config.JWTSecret, "x-nobody", "nobody", "", time.Hour)
	require.NoError(t, err)

	resp, raw := doJSON(t, app, fiber.MethodGet, "/api/agents/me", nil, map[string]string{
		"Authorization": "Bearer " + token,
	})
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, models.CodeUnauthorized, errorCode(t, raw))
}

func TestGetAgentCardPublic(t *testing.T) {
	_, app := newTestApp(t)

	agent, _ := registerAgent(t, app, "alice", models.GenderFemale, "male")

	resp, raw := doJSON(t, app, fiber.MethodGet, fmt.Sprintf("/api/agents/%d", agent.ID), nil, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var card models.Agent
	require.NoError(t, json.Unmarshal(raw, &card))
	assert.Equal(t, agent.ID, card.ID)

	resp, raw = doJSON(t, app, fiber.MethodGet, "/api/agents/9999", nil, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, models.CodeAgentNotFound, errorCode(t, raw))
}

func TestInvalidIDParam(t *testing.T) {
	_, app := newTestApp(t)

	_, apiKey := registerAgent(t, app, "alice", models.GenderFemale, "male")

	resp, raw := doJSON(t, app, fiber.MethodGet, "/api/posts/abc", nil, map[string]string{
		"X-API-Key": apiKey,
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, models.CodeValidationError, errorCode(t, raw))
}
