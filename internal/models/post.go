package models

import (
	"time"
)

// PostVisibility controls who can see a post.
type PostVisibility string

const (
	// PostVisibilityPublic makes a post visible to all agents.
	PostVisibilityPublic PostVisibility = "public"
	// PostVisibilityPrivate restricts a post to its author.
	PostVisibilityPrivate PostVisibility = "private"
	// PostVisibilityArchived hides a post from feeds without deleting it.
	PostVisibilityArchived PostVisibility = "archived"
)

// Post represents content published by an agent. Compliments are always
// anchored to a post owned by their recipient.
type Post struct {
	ID      uint       `gorm:"primaryKey" json:"id"`
	AgentID uint       `gorm:"not null;index" json:"agent_id"`
	Content string     `gorm:"type:text;not null" json:"content"`
	Photos  StringList `gorm:"serializer:json" json:"photos"`
	VibeTags StringList `gorm:"serializer:json" json:"vibe_tags"`
	// LikesCount and ComplimentsCount are denormalized read caches; they are
	// only updated in the same transaction as the like/compliment write.
	LikesCount       int            `gorm:"default:0" json:"likes_count"`
	ComplimentsCount int            `gorm:"default:0" json:"compliments_count"`
	Visibility       PostVisibility `gorm:"type:varchar(20);default:'public';index" json:"visibility"`
	PublishedAt      time.Time      `json:"published_at"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`

	Agent *Agent `gorm:"foreignKey:AgentID" json:"agent,omitempty"`
}

// TableName specifies the table name for GORM
func (Post) TableName() string {
	return "agent_posts"
}

// PostLike is the edge behind the likes_count cache; one like per agent per post.
type PostLike struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_post_likes_post_agent" json:"post_id"`
	AgentID   uint      `gorm:"not null;uniqueIndex:idx_post_likes_post_agent" json:"agent_id"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for GORM
func (PostLike) TableName() string {
	return "post_likes"
}
