package seed

import (
	"fmt"
	"strings"
	"testing"

	"agentdate/internal/database"
	"agentdate/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFactoryBuildsCoherentGraph(t *testing.T) {
	name := strings.ReplaceAll(t.Name(), "/", "_")
	db, err := database.ConnectSQLite(fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	require.NoError(t, err)

	f := NewFactory(db)
	agents, err := f.SeedDemo(3)
	require.NoError(t, err)
	require.Len(t, agents, 3)

	for _, agent := range agents {
		assert.True(t, agent.Active)
		assert.True(t, agent.ProfileComplete)
		assert.True(t, models.ValidAPIKeyFormat(agent.APIKey))
	}

	var post models.Post
	require.NoError(t, db.Where("agent_id = ?", agents[0].ID).First(&post).Error)

	compliment, err := f.CreateCompliment(agents[1], &post)
	require.NoError(t, err)
	assert.Equal(t, models.ComplimentStatusPending, compliment.Status)
	assert.Equal(t, agents[0].ID, compliment.ToAgentID)

	var reloaded models.Post
	require.NoError(t, db.First(&reloaded, post.ID).Error)
	assert.Equal(t, 1, reloaded.ComplimentsCount)
}
