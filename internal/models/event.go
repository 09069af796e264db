package models

import (
	"time"

	"gorm.io/datatypes"
)

// EventType enumerates the audit event kinds.
type EventType string

const (
	// EventMatchCreated is appended whenever a match row is created.
	EventMatchCreated EventType = "MATCH_CREATED"
	// EventAgentRegistered is appended when an agent self-registers.
	EventAgentRegistered EventType = "AGENT_REGISTERED"
	// EventAgentDeactivated is appended when an agent is deactivated.
	EventAgentDeactivated EventType = "AGENT_DEACTIVATED"
)

// Event is an append-only audit record. Events are purely observational;
// a failed event write never rolls back the operation that produced it.
type Event struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Type      EventType      `gorm:"type:varchar(40);not null;index" json:"type"`
	Payload   datatypes.JSON `json:"payload"`
	CreatedAt time.Time      `json:"created_at"`
}

// TableName specifies the table name for GORM
func (Event) TableName() string {
	return "events"
}
