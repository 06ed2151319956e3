package conversation

import (
	"context"
	"fmt"

	"ai-writer-be/internal/model"
	"ai-writer-be/internal/repository/specification"
	"ai-writer-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

// Store is the durable per-session message history. Messages are append-only;
// the order index is the count of messages already in the session, and replay
// sorts by (message_order, created_at).
//
// Known hazard carried over from the reference design: a fire-and-forget
// append racing an immediately following Clear is not serialized here.
type Store struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewStore(uowFactory unitofwork.RepositoryFactory) *Store {
	return &Store{uowFactory: uowFactory}
}

// EnsureSession creates the session record if absent. Idempotent.
func (s *Store) EnsureSession(ctx context.Context, sessionID string, userID uuid.UUID, agentType string) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	existing, err := uow.AgentSessionRepository().FindOne(ctx, specification.BySessionId{SessionId: sessionID})
	if err != nil {
		return fmt.Errorf("lookup agent session: %w", err)
	}
	if existing != nil {
		return nil
	}

	return uow.AgentSessionRepository().Create(ctx, &model.AgentSession{
		SessionId: sessionID,
		UserId:    userID,
		AgentType: agentType,
		Status:    "active",
	})
}

func (s *Store) AppendUser(ctx context.Context, sessionID, content string, metadata map[string]interface{}) error {
	return s.append(ctx, &model.AgentMessage{
		SessionId: sessionID,
		Role:      "user",
		Content:   content,
		Metadata:  metadata,
	})
}

func (s *Store) AppendAssistant(ctx context.Context, sessionID, content string, toolCalls, toolResults, metadata map[string]interface{}) error {
	return s.append(ctx, &model.AgentMessage{
		SessionId:   sessionID,
		Role:        "assistant",
		Content:     content,
		ToolCalls:   toolCalls,
		ToolResults: toolResults,
		Metadata:    metadata,
	})
}

func (s *Store) append(ctx context.Context, msg *model.AgentMessage) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	repo := uow.AgentMessageRepository()

	count, err := repo.Count(ctx, specification.BySessionId{SessionId: msg.SessionId})
	if err != nil {
		return fmt.Errorf("count session messages: %w", err)
	}

	msg.MessageOrder = int(count)
	return repo.Create(ctx, msg)
}

// Load returns the session's messages in replay order.
func (s *Store) Load(ctx context.Context, sessionID string) ([]*model.AgentMessage, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.AgentMessageRepository().FindAll(ctx,
		specification.BySessionId{SessionId: sessionID},
		specification.MessageOrder{},
	)
}

// Clear deletes every message for the session.
func (s *Store) Clear(ctx context.Context, sessionID string) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.AgentMessageRepository().DeleteBySessionId(ctx, sessionID)
}
