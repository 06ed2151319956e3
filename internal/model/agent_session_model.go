package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AgentSession is the durable record of one writer agent run's conversation.
// SessionId is an opaque string (not a UUID column) so callers can resume a
// conversation by passing the same id back.
type AgentSession struct {
	Id        uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SessionId string         `gorm:"type:varchar(128);not null;uniqueIndex"`
	UserId    uuid.UUID      `gorm:"type:uuid;not null;index"`
	AgentType string         `gorm:"type:varchar(50);not null;default:'writing'"`
	Status    string         `gorm:"type:varchar(50);not null;default:'active'"`
	CreatedAt time.Time      `gorm:"autoCreateTime"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (AgentSession) TableName() string {
	return "agent_sessions"
}
