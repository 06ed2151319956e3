package unitofwork

import (
	"context"

	"ai-writer-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	DocumentRepository() contract.DocumentRepository
	DocumentChunkRepository() contract.DocumentChunkRepository
	AgentSessionRepository() contract.AgentSessionRepository
	AgentMessageRepository() contract.AgentMessageRepository
	UserLLMConfigRepository() contract.UserLLMConfigRepository
}
