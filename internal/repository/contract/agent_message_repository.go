package contract

import (
	"context"

	"ai-writer-be/internal/model"
	"ai-writer-be/internal/repository/specification"
)

type AgentMessageRepository interface {
	Create(ctx context.Context, message *model.AgentMessage) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*model.AgentMessage, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	DeleteBySessionId(ctx context.Context, sessionId string) error
}
