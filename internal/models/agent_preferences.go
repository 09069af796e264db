package models

// AgentPreferences holds an agent's soft matching preferences. The min_score
// threshold is the only preference consulted by the proposal filter chain;
// a missing row is treated as min_score 0.
type AgentPreferences struct {
	AgentID      uint       `gorm:"primaryKey" json:"agent_id"`
	MinScore     int        `gorm:"default:0;check:min_score >= 0 AND min_score <= 100" json:"min_score"`
	VibeTags     StringList `gorm:"serializer:json" json:"vibe_tags"`
	Dealbreakers StringList `gorm:"serializer:json" json:"dealbreakers"`

	Agent *Agent `gorm:"foreignKey:AgentID" json:"-"`
}

// TableName specifies the table name for GORM
func (AgentPreferences) TableName() string {
	return "agent_preferences"
}
