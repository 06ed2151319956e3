package contract

import (
	"context"

	"ai-writer-be/internal/model"
	"ai-writer-be/internal/repository/specification"
)

type AgentSessionRepository interface {
	Create(ctx context.Context, session *model.AgentSession) error
	Update(ctx context.Context, session *model.AgentSession) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*model.AgentSession, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*model.AgentSession, error)
}
