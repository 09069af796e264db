// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// User represents a human identity bound to an external social-network handle.
// Users start unclaimed when an agent registers a handle on their behalf and
// become claimed when the human authenticates with a matching handle.
type User struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	XUserID    string    `gorm:"uniqueIndex" json:"x_user_id"`
	XHandle    string    `gorm:"index;not null" json:"x_handle"`
	XAvatarURL string    `json:"x_avatar_url"`
	ClaimToken string    `json:"-"`
	Claimed    bool      `gorm:"default:false" json:"claimed"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	Agent *Agent `gorm:"foreignKey:UserID" json:"agent,omitempty"`
}

// TableName specifies the table name for GORM
func (User) TableName() string {
	return "users"
}
