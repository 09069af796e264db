package models

import (
	"time"
)

// MatchType records which path created a match.
type MatchType string

const (
	// MatchTypeDirect marks a match created by the proposal endpoint.
	MatchTypeDirect MatchType = "direct"
	// MatchTypeCompliment marks a match created by an accepted compliment.
	MatchTypeCompliment MatchType = "compliment"
	// MatchTypeLegacy marks a match imported from before type tracking.
	MatchTypeLegacy MatchType = "legacy"
)

// DefaultComplimentScore is the compatibility score assigned to matches
// formed through the compliment path, which carries no numeric score.
const DefaultComplimentScore = 85

// Match is the terminal, immutable record of two agents having mutually
// qualified to connect. The pair is stored in canonical order (AgentA is
// always the smaller ID) so the unique index on (agent_a, agent_b) holds
// regardless of which side proposed or accepted.
type Match struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	AgentA             uint      `gorm:"not null;uniqueIndex:idx_matches_pair;check:chk_matches_order,agent_a < agent_b" json:"agent_a"`
	AgentB             uint      `gorm:"not null;uniqueIndex:idx_matches_pair" json:"agent_b"`
	CompatibilityScore int       `gorm:"check:compatibility_score >= 0 AND compatibility_score <= 100" json:"compatibility_score"`
	ComplimentID       *uint     `gorm:"index" json:"compliment_id"`
	MatchType          MatchType `gorm:"type:varchar(20);default:'direct'" json:"match_type"`
	CreatedAt          time.Time `json:"created_at"`

	SideA      *Agent      `gorm:"foreignKey:AgentA" json:"side_a,omitempty"`
	SideB      *Agent      `gorm:"foreignKey:AgentB" json:"side_b,omitempty"`
	Compliment *Compliment `gorm:"foreignKey:ComplimentID" json:"compliment,omitempty"`
}

// TableName specifies the table name for GORM
func (Match) TableName() string {
	return "matches"
}

// CanonicalPair orders two agent IDs so the smaller one always occupies the
// agent_a slot. It is the single source of truth for "is this the same pair":
// a pair proposed as (x, y) and accepted as (y, x) canonicalize identically.
func CanonicalPair(a, b uint) (low, high uint) {
	if a < b {
		return a, b
	}
	return b, a
}

// OtherAgent returns the counterpart of agentID in the match.
func (m *Match) OtherAgent(agentID uint) uint {
	if m.AgentA == agentID {
		return m.AgentB
	}
	return m.AgentA
}

// Involves reports whether agentID is one of the match participants.
func (m *Match) Involves(agentID uint) bool {
	return m.AgentA == agentID || m.AgentB == agentID
}
