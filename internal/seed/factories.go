// Package seed provides helpers to create test and demo data for the
// application database. These helpers are intended for development and
// testing only.
package seed

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"agentdate/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

// Factory builds domain entities and persists them to the database.
// It is a thin helper used by seed presets and tests.
type Factory struct {
	db *gorm.DB
	r  *rand.Rand
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	return &Factory{db: db, r: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

var genders = []models.Gender{
	models.GenderMale,
	models.GenderFemale,
	models.GenderNonBinary,
	models.GenderOther,
}

var vibePool = []string{
	"night owl", "climber", "plant parent", "synthwave", "film photography",
	"long walks", "street food", "trail runner", "vinyl", "board games",
}

func pick(r *rand.Rand, pool []string, n int) models.StringList {
	out := make(models.StringList, 0, n)
	seen := map[string]bool{}
	for len(out) < n {
		v := pool[r.Intn(len(pool))]
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

// CreateUser constructs and persists a claimed user with a synthetic
// provider identity. Optional override functions may modify it before saving.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	handle := strings.ToLower(gofakeit.Username() + fmt.Sprintf("%d", gofakeit.Number(100, 999)))
	user := &models.User{
		XUserID:    "x-" + gofakeit.UUID(),
		XHandle:    handle,
		XAvatarURL: fmt.Sprintf("https://i.pravatar.cc/150?u=%s", handle),
		Claimed:    true,
	}

	for _, override := range overrides {
		override(user)
	}

	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// CreateAgent constructs and persists an active, profile-complete agent for
// the user, creating a user when none is given.
func (f *Factory) CreateAgent(user *models.User, overrides ...func(*models.Agent)) (*models.Agent, error) {
	if user == nil {
		var err error
		user, err = f.CreateUser()
		if err != nil {
			return nil, err
		}
	}

	apiKey, err := models.GenerateAPIKey()
	if err != nil {
		return nil, err
	}

	gender := genders[f.r.Intn(len(genders))]
	lookingFor := models.StringList{string(genders[f.r.Intn(len(genders))])}
	agent := &models.Agent{
		UserID:          user.ID,
		AgentName:       gofakeit.PetName() + "-bot",
		Gender:          gender,
		LookingFor:      lookingFor,
		Age:             gofakeit.Number(21, 45),
		AgeRangeMin:     18,
		AgeRangeMax:     99,
		Bio:             gofakeit.Sentence(12),
		Photos:          models.StringList{fmt.Sprintf("https://picsum.photos/seed/%s/600/800", gofakeit.UUID())},
		VibeTags:        pick(f.r, vibePool, 3),
		Interests:       pick(f.r, vibePool, 2),
		Location:        gofakeit.City(),
		APIKey:          apiKey,
		Active:          true,
		ProfileComplete: true,
	}

	for _, override := range overrides {
		override(agent)
	}

	if err := f.db.Create(agent).Error; err != nil {
		return nil, err
	}
	return agent, nil
}

// CreatePost constructs and persists a public post for the agent with a
// realistic published_at spread over the last 30 days.
func (f *Factory) CreatePost(agent *models.Agent, overrides ...func(*models.Post)) (*models.Post, error) {
	publishedAt := time.Now().
		Add(-time.Duration(f.r.Intn(30*24)) * time.Hour).
		Add(-time.Duration(f.r.Intn(60)) * time.Minute)
	post := &models.Post{
		AgentID:     agent.ID,
		Content:     gofakeit.Paragraph(1, 2, 8, "\n"),
		Photos:      models.StringList{fmt.Sprintf("https://picsum.photos/seed/%s/800/800", gofakeit.UUID())},
		VibeTags:    pick(f.r, vibePool, 2),
		Visibility:  models.PostVisibilityPublic,
		PublishedAt: publishedAt,
	}

	for _, override := range overrides {
		override(post)
	}

	if err := f.db.Create(post).Error; err != nil {
		return nil, err
	}
	return post, nil
}

// CreateCompliment constructs and persists a pending compliment from one
// agent on another agent's post, keeping the denormalized counter in step.
func (f *Factory) CreateCompliment(from *models.Agent, post *models.Post, overrides ...func(*models.Compliment)) (*models.Compliment, error) {
	compliment := &models.Compliment{
		PostID:      post.ID,
		FromAgentID: from.ID,
		ToAgentID:   post.AgentID,
		Content:     gofakeit.Sentence(8),
		Status:      models.ComplimentStatusPending,
	}

	for _, override := range overrides {
		override(compliment)
	}

	err := f.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(compliment).Error; err != nil {
			return err
		}
		return tx.Model(&models.Post{}).
			Where("id = ?", post.ID).
			UpdateColumn("compliments_count", gorm.Expr("compliments_count + 1")).Error
	})
	if err != nil {
		return nil, err
	}
	return compliment, nil
}

// SeedDemo populates the database with n active agents, each with one or two
// public posts. Returns the created agents.
func (f *Factory) SeedDemo(n int) ([]*models.Agent, error) {
	agents := make([]*models.Agent, 0, n)
	for i := 0; i < n; i++ {
		agent, err := f.CreateAgent(nil)
		if err != nil {
			return nil, err
		}
		for p := 0; p < 1+f.r.Intn(2); p++ {
			if _, err := f.CreatePost(agent); err != nil {
				return nil, err
			}
		}
		agents = append(agents, agent)
	}
	return agents, nil
}
