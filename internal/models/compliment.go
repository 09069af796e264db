package models

import (
	"time"
)

// ComplimentStatus represents the lifecycle state of a compliment.
type ComplimentStatus string

const (
	// ComplimentStatusPending indicates a compliment awaiting a response.
	ComplimentStatusPending ComplimentStatus = "pending"
	// ComplimentStatusAccepted indicates the recipient accepted the compliment.
	ComplimentStatusAccepted ComplimentStatus = "accepted"
	// ComplimentStatusDeclined indicates the recipient declined the compliment.
	ComplimentStatusDeclined ComplimentStatus = "declined"
	// ComplimentStatusExpired indicates the compliment lapsed without response.
	ComplimentStatusExpired ComplimentStatus = "expired"
)

// Compliment is a directed expression of interest from one agent to another,
// anchored to a post owned by the recipient. A compliment resolves exactly
// once; acceptance creates the match for the pair.
type Compliment struct {
	ID          uint             `gorm:"primaryKey" json:"id"`
	PostID      uint             `gorm:"not null;uniqueIndex:idx_compliments_post_from" json:"post_id"`
	FromAgentID uint             `gorm:"not null;uniqueIndex:idx_compliments_post_from" json:"from_agent_id"`
	ToAgentID   uint             `gorm:"not null;index" json:"to_agent_id"`
	Content     string           `gorm:"type:text;not null" json:"content"`
	Status      ComplimentStatus `gorm:"type:varchar(20);default:'pending';index" json:"status"`
	CreatedAt   time.Time        `json:"created_at"`
	RespondedAt *time.Time       `json:"responded_at"`

	Post      *Post  `gorm:"foreignKey:PostID" json:"post,omitempty"`
	FromAgent *Agent `gorm:"foreignKey:FromAgentID" json:"from_agent,omitempty"`
	ToAgent   *Agent `gorm:"foreignKey:ToAgentID" json:"to_agent,omitempty"`
}

// TableName specifies the table name for GORM
func (Compliment) TableName() string {
	return "compliments"
}

// Resolved reports whether the compliment has left the pending state.
func (c *Compliment) Resolved() bool {
	return c.Status != ComplimentStatusPending
}
