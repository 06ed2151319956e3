// FILE: internal/service/agent_service.go
package service

import (
	"context"

	"ai-writer-be/internal/agent/conversation"
	"ai-writer-be/internal/agent/orchestrator"
	"ai-writer-be/internal/agent/tool"
	"ai-writer-be/internal/dto"
	"ai-writer-be/internal/pkg/serverutils"
	"ai-writer-be/internal/repository/memory"
	"ai-writer-be/internal/repository/specification"
	"ai-writer-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type IAgentService interface {
	Execute(ctx context.Context, userId uuid.UUID, req *dto.ExecuteAgentRequest) (*dto.ExecuteAgentResponse, error)
	History(ctx context.Context, userId uuid.UUID, sessionId string) (*dto.SessionHistoryResponse, error)
	Status(ctx context.Context, userId uuid.UUID, sessionId string) (*dto.SessionStatusResponse, error)
}

type agentService struct {
	orchestrator *orchestrator.Orchestrator
	convo        *conversation.Store
	runs         *memory.SessionRepository
	uowFactory   unitofwork.RepositoryFactory
}

func NewAgentService(
	orch *orchestrator.Orchestrator,
	convo *conversation.Store,
	runs *memory.SessionRepository,
	uowFactory unitofwork.RepositoryFactory,
) IAgentService {
	return &agentService{
		orchestrator: orch,
		convo:        convo,
		runs:         runs,
		uowFactory:   uowFactory,
	}
}

// Execute starts a detached agent run and returns its session id immediately.
// When the request names a document, its stored content is loaded so the
// analyzer works on the saved version even if the client sends none.
func (s *agentService) Execute(ctx context.Context, userId uuid.UUID, req *dto.ExecuteAgentRequest) (*dto.ExecuteAgentResponse, error) {
	documentContent := req.DocumentContent
	if req.DocumentId != nil && documentContent == "" {
		uow := s.uowFactory.NewUnitOfWork(ctx)
		document, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: *req.DocumentId})
		if err != nil {
			return nil, err
		}
		if document == nil {
			return nil, serverutils.ErrNotFound
		}
		if document.AuthorId != userId {
			return nil, serverutils.ErrForbidden
		}
		documentContent = document.Content
	}

	var selection *tool.Selection
	if req.TargetSelection != nil {
		selection = &tool.Selection{
			Start: req.TargetSelection.StartOffset,
			End:   req.TargetSelection.EndOffset,
		}
	}

	sessionId := s.orchestrator.StartSession(userId, orchestrator.Request{
		UserPrompt:          req.UserPrompt,
		AgentType:           req.AgentType,
		DocumentID:          req.DocumentId,
		SelectedDocumentIds: req.SelectedDocumentIds,
		SelectedSnippets:    req.SelectedSnippets,
		DocumentContent:     documentContent,
		TargetSelection:     selection,
	}, req.SessionId)

	return &dto.ExecuteAgentResponse{
		SessionId: sessionId,
		Status:    "accepted",
	}, nil
}

func (s *agentService) History(ctx context.Context, userId uuid.UUID, sessionId string) (*dto.SessionHistoryResponse, error) {
	if err := s.verifyOwner(ctx, userId, sessionId); err != nil {
		return nil, err
	}

	messages, err := s.convo.Load(ctx, sessionId)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.AgentMessageResponse, 0, len(messages))
	for _, m := range messages {
		responses = append(responses, dto.AgentMessageResponse{
			Role:         m.Role,
			Content:      m.Content,
			MessageOrder: m.MessageOrder,
			Metadata:     m.Metadata,
			CreatedAt:    m.CreatedAt,
		})
	}

	return &dto.SessionHistoryResponse{
		SessionId: sessionId,
		Messages:  responses,
	}, nil
}

func (s *agentService) Status(ctx context.Context, userId uuid.UUID, sessionId string) (*dto.SessionStatusResponse, error) {
	run, found := s.runs.Get(sessionId)
	if !found {
		// Fall back to the durable record for finished or expired runs.
		if err := s.verifyOwner(ctx, userId, sessionId); err != nil {
			return nil, err
		}
		return &dto.SessionStatusResponse{
			SessionId: sessionId,
			Stage:     "complete",
		}, nil
	}

	if run.UserID != userId.String() {
		return nil, serverutils.ErrForbidden
	}

	return &dto.SessionStatusResponse{
		SessionId: sessionId,
		Stage:     run.Stage,
		StartedAt: run.StartedAt,
	}, nil
}

func (s *agentService) verifyOwner(ctx context.Context, userId uuid.UUID, sessionId string) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	session, err := uow.AgentSessionRepository().FindOne(ctx, specification.BySessionId{SessionId: sessionId})
	if err != nil {
		return err
	}
	if session == nil {
		return serverutils.ErrNotFound
	}
	if session.UserId != userId {
		return serverutils.ErrForbidden
	}
	return nil
}
