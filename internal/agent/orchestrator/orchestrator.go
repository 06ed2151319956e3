package orchestrator

import (
	"context"
	"fmt"
	"time"

	"ai-writer-be/internal/agent/conversation"
	"ai-writer-be/internal/agent/event"
	"ai-writer-be/internal/agent/eventbus"
	"ai-writer-be/internal/agent/fault"
	"ai-writer-be/internal/agent/task"
	"ai-writer-be/internal/agent/tool"
	"ai-writer-be/internal/config"
	"ai-writer-be/internal/pkg/logger"
	"ai-writer-be/internal/repository/memory"
	"ai-writer-be/internal/repository/unitofwork"
	"ai-writer-be/pkg/embedding"
	"ai-writer-be/pkg/llm"
	"ai-writer-be/pkg/search"
	"ai-writer-be/pkg/store"

	"github.com/google/uuid"
)

// Request is the payload that starts a writer agent run.
type Request struct {
	UserPrompt          string
	AgentType           string
	DocumentID          *uuid.UUID
	SelectedDocumentIds []uuid.UUID
	SelectedSnippets    []string
	DocumentContent     string
	TargetSelection     *tool.Selection
}

// ProviderResolver turns a user id into a usable completion backend.
// Resolution failure is the one configuration fault that kills a run
// before any tool activity.
type ProviderResolver interface {
	Resolve(ctx context.Context, userID uuid.UUID) (llm.LLMProvider, error)
}

// Orchestrator drives one detached background job per session through
// initializing -> intent_analysis -> running -> complete|error. Teardown
// (ledger clear + bus close) runs on every exit path, and every run
// publishes exactly one terminal event before session_closed.
type Orchestrator struct {
	bus        *eventbus.Bus
	ledger     *task.Ledger
	convo      *conversation.Store
	runs       *memory.SessionRepository
	uowFactory unitofwork.RepositoryFactory
	resolver   ProviderResolver
	embedder   embedding.EmbeddingProvider
	web        *search.Client
	cfg        config.AgentConfig
	log        logger.ILogger
}

func New(
	bus *eventbus.Bus,
	ledger *task.Ledger,
	convo *conversation.Store,
	runs *memory.SessionRepository,
	uowFactory unitofwork.RepositoryFactory,
	resolver ProviderResolver,
	embedder embedding.EmbeddingProvider,
	web *search.Client,
	cfg config.AgentConfig,
	log logger.ILogger,
) *Orchestrator {
	return &Orchestrator{
		bus:        bus,
		ledger:     ledger,
		convo:      convo,
		runs:       runs,
		uowFactory: uowFactory,
		resolver:   resolver,
		embedder:   embedder,
		web:        web,
		cfg:        cfg,
		log:        log,
	}
}

// StartSession spawns the background job and returns immediately. A
// supplied session id is reused so the conversation log keeps its
// continuity; otherwise a fresh globally-unique id is synthesized.
func (o *Orchestrator) StartSession(userID uuid.UUID, req Request, sessionID string) string {
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	done := make(chan struct{})
	o.runs.Save(&store.AgentRun{
		ID:        sessionID,
		UserID:    userID.String(),
		Stage:     store.StageInitializing,
		StartedAt: time.Now().UTC(),
		Done:      done,
	})

	go o.run(sessionID, userID, req, done)

	return sessionID
}

func (o *Orchestrator) run(sessionID string, userID uuid.UUID, req Request, done chan struct{}) {
	ctx, cancel := context.WithTimeout(context.Background(), o.cfg.ExecutionBudget)
	defer cancel()

	terminated := false
	defer func() {
		if r := recover(); r != nil {
			o.log.Error("agent_orchestrator", "panic in agent run", map[string]interface{}{
				"session_id": sessionID,
				"panic":      fmt.Sprintf("%v", r),
			})
			if !terminated {
				o.publishError(sessionID, fmt.Errorf("agent run panicked: %v", r))
			}
		}
		o.ledger.ClearSession(sessionID)
		o.bus.CloseSession(sessionID)
		close(done)
	}()

	if err := o.execute(ctx, sessionID, userID, req); err != nil {
		o.publishError(sessionID, err)
		o.setStage(sessionID, store.StageError)
	} else {
		o.setStage(sessionID, store.StageComplete)
	}
	terminated = true
}

func (o *Orchestrator) execute(ctx context.Context, sessionID string, userID uuid.UUID, req Request) error {
	o.publishStage(sessionID, store.StageInitializing)

	provider, err := o.resolver.Resolve(ctx, userID)
	if err != nil {
		return fault.Fatal(fault.CodeConfig, err)
	}

	documentIds := req.SelectedDocumentIds
	if req.DocumentID != nil {
		documentIds = append([]uuid.UUID{*req.DocumentID}, documentIds...)
	}

	uow := o.uowFactory.NewUnitOfWork(ctx)
	toolbox := tool.NewToolbox(tool.Config{
		SessionID:     sessionID,
		UserID:        userID,
		Bus:           o.bus,
		Ledger:        o.ledger,
		Chunks:        uow.DocumentChunkRepository(),
		Embedder:      o.embedder,
		Web:           o.web,
		DocumentIds:   documentIds,
		SearchTimeout: o.cfg.SearchTimeout,
		DefaultTopK:   o.cfg.KnowledgeTopK,
	})

	if err := o.convo.EnsureSession(ctx, sessionID, userID, req.agentType()); err != nil {
		return err
	}

	history, err := o.convo.Load(ctx, sessionID)
	if err != nil {
		o.log.Warn("agent_orchestrator", "could not load conversation history", map[string]interface{}{
			"session_id": sessionID,
			"error":      err.Error(),
		})
	}

	o.publishStage(sessionID, store.StageIntentAnalysis)

	intent := analyzeIntent(ctx, provider, req.UserPrompt, req.SelectedSnippets)
	o.bus.Publish(sessionID, event.Envelope{Type: event.TypeIntentSummary, Data: map[string]interface{}{
		"intent":           intent.Intent,
		"summary":          intent.Summary,
		"keyPoints":        intent.KeyPoints,
		"suggestedActions": intent.SuggestedActions,
		"toneStyle":        intent.ToneStyle,
	}})

	if err := o.convo.AppendUser(ctx, sessionID, req.UserPrompt, req.userMetadata()); err != nil {
		return fmt.Errorf("persist user message: %w", err)
	}

	o.publishStage(sessionID, store.StageRunning)

	output, err := o.runLoop(ctx, provider, toolbox, req, intent, history)
	if err != nil {
		return err
	}

	if err := o.convo.AppendAssistant(ctx, sessionID, output, nil, nil, nil); err != nil {
		o.log.Warn("agent_orchestrator", "could not persist agent output", map[string]interface{}{
			"session_id": sessionID,
			"error":      err.Error(),
		})
	}

	o.bus.Publish(sessionID, event.AgentComplete(output, intent.Summary))
	return nil
}

func (o *Orchestrator) publishStage(sessionID, stage string) {
	o.setStage(sessionID, stage)
	o.bus.Publish(sessionID, event.AgentStatus(stage))
}

func (o *Orchestrator) setStage(sessionID, stage string) {
	if run, ok := o.runs.Get(sessionID); ok {
		run.Stage = stage
		o.runs.Save(run)
	}
}

func (o *Orchestrator) publishError(sessionID string, err error) {
	code, recoverable := fault.Classify(err)
	o.log.Error("agent_orchestrator", "agent run failed", map[string]interface{}{
		"session_id":  sessionID,
		"code":        string(code),
		"recoverable": recoverable,
		"error":       err.Error(),
	})
	o.bus.Publish(sessionID, event.AgentError(err.Error(), string(code), recoverable))
}

func (r Request) agentType() string {
	if r.AgentType == "" {
		return "writing"
	}
	return r.AgentType
}

func (r Request) userMetadata() map[string]interface{} {
	metadata := map[string]interface{}{}
	if r.DocumentID != nil {
		metadata["documentId"] = r.DocumentID.String()
	}
	if r.TargetSelection != nil {
		metadata["selectionStart"] = r.TargetSelection.Start
		metadata["selectionEnd"] = r.TargetSelection.End
	}
	if len(metadata) == 0 {
		return nil
	}
	return metadata
}
