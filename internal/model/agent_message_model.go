package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type AgentMessage struct {
	Id           uuid.UUID         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SessionId    string            `gorm:"type:varchar(128);not null;index"`
	Role         string            `gorm:"type:varchar(50);not null"` // user | assistant | system | tool
	Content      string            `gorm:"type:text"`
	ToolCalls    datatypes.JSONMap `gorm:"type:jsonb"`
	ToolResults  datatypes.JSONMap `gorm:"type:jsonb"`
	Metadata     datatypes.JSONMap `gorm:"type:jsonb"`
	MessageOrder int               `gorm:"not null;default:0;index"`
	CreatedAt    time.Time         `gorm:"autoCreateTime"`
	UpdatedAt    time.Time         `gorm:"autoUpdateTime"`
	DeletedAt    gorm.DeletedAt    `gorm:"index"`
}

func (AgentMessage) TableName() string {
	return "agent_messages"
}
