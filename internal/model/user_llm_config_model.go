package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserLLMConfig stores a user's own completion backend credentials. The
// orchestrator resolves this before default provider config; a session cannot
// start without one of the two.
type UserLLMConfig struct {
	Id         uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId     uuid.UUID      `gorm:"type:uuid;not null;index"`
	Provider   string         `gorm:"type:varchar(50);not null"` // "ollama" | "huggingface"
	Model      string         `gorm:"type:varchar(255);not null"`
	BaseURL    string         `gorm:"type:varchar(512)"`
	APIKey     string         `gorm:"type:varchar(512)"`
	IsActive   bool           `gorm:"default:true;index"`
	LastUsedAt *time.Time     `gorm:""`
	CreatedAt  time.Time      `gorm:"autoCreateTime"`
	UpdatedAt  time.Time      `gorm:"autoUpdateTime"`
	DeletedAt  gorm.DeletedAt `gorm:"index"`
}

func (UserLLMConfig) TableName() string {
	return "user_llm_configs"
}
