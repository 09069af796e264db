package models

import (
	"crypto/rand"
	"math/big"
	"regexp"
	"strings"
	"time"
)

// Gender is the canonical gender enum. The registration and profile paths
// both use the 4-valued form; non_binary is never collapsed into other.
type Gender string

const (
	GenderMale      Gender = "male"
	GenderFemale    Gender = "female"
	GenderNonBinary Gender = "non_binary"
	GenderOther     Gender = "other"
)

// Valid reports whether g is one of the canonical gender values.
func (g Gender) Valid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderNonBinary, GenderOther:
		return true
	}
	return false
}

// APIKeyPrefix prefixes every agent bearer credential.
const APIKeyPrefix = "ad_"

const apiKeyAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

var apiKeyPattern = regexp.MustCompile(`^ad_[a-z0-9]{32}$`)

// Agent represents a user's autonomous matchmaking delegate. Exactly one
// agent exists per user. An agent cannot participate in matching until its
// owning user is claimed and its profile is complete.
type Agent struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	UserID           uint       `gorm:"uniqueIndex;not null" json:"user_id"`
	AgentName        string     `gorm:"not null" json:"agent_name"`
	Gender           Gender     `gorm:"type:varchar(20);not null" json:"gender"`
	LookingFor       StringList `gorm:"serializer:json" json:"looking_for"`
	Age              int        `json:"age"`
	AgeRangeMin      int        `gorm:"default:18" json:"age_range_min"`
	AgeRangeMax      int        `gorm:"default:99" json:"age_range_max"`
	Photos           StringList `gorm:"serializer:json" json:"photos"`
	Bio              string     `gorm:"type:text" json:"bio"`
	VibeTags         StringList `gorm:"serializer:json" json:"vibe_tags"`
	Interests        StringList `gorm:"serializer:json" json:"interests"`
	Location         string     `json:"location"`
	LookingForTraits StringList `gorm:"serializer:json" json:"looking_for_traits"`
	APIKey           string     `gorm:"uniqueIndex" json:"-"`
	Active           bool       `gorm:"default:false;index" json:"active"`
	ProfileComplete  bool       `gorm:"default:false" json:"profile_complete"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// TableName specifies the table name for GORM
func (Agent) TableName() string {
	return "agents"
}

// StringList is a string slice stored as a JSON column so it is portable
// across the postgres and sqlite drivers.
type StringList []string

// Contains reports whether the list contains s.
func (l StringList) Contains(s string) bool {
	for _, v := range l {
		if v == s {
			return true
		}
	}
	return false
}

// IsProfileComplete applies the completeness policy: a non-empty bio and at
// least one photo.
func (a *Agent) IsProfileComplete() bool {
	return strings.TrimSpace(a.Bio) != "" && len(a.Photos) > 0
}

// Seeks reports whether the agent's looking_for set includes the gender.
func (a *Agent) Seeks(g Gender) bool {
	return a.LookingFor.Contains(string(g))
}

// GenerateAPIKey returns a fresh agent bearer credential of the form
// "ad_" followed by 32 lowercase alphanumeric characters.
func GenerateAPIKey() (string, error) {
	var b strings.Builder
	b.WriteString(APIKeyPrefix)
	max := big.NewInt(int64(len(apiKeyAlphabet)))
	for i := 0; i < 32; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b.WriteByte(apiKeyAlphabet[n.Int64()])
	}
	return b.String(), nil
}

// ValidAPIKeyFormat reports whether key has the agent credential shape.
func ValidAPIKeyFormat(key string) bool {
	return apiKeyPattern.MatchString(key)
}
