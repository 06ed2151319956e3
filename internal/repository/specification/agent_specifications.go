package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BySessionId filters agent sessions/messages by the opaque session id
type BySessionId struct {
	SessionId string
}

func (s BySessionId) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("session_id = ?", s.SessionId)
}

// ByUserId filters by owning user
type ByUserId struct {
	UserId uuid.UUID
}

func (s ByUserId) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("user_id = ?", s.UserId)
}

// MessageOrder sorts messages the way the agent replays them:
// order index first, creation time as the tie breaker.
type MessageOrder struct{}

func (s MessageOrder) Apply(db *gorm.DB) *gorm.DB {
	return db.Order("message_order ASC").Order("created_at ASC")
}

// ActiveConfig filters user LLM configs down to usable ones
type ActiveConfig struct{}

func (s ActiveConfig) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("is_active = ?", true)
}
