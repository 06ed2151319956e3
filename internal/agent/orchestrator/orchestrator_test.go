package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"ai-writer-be/internal/agent/conversation"
	"ai-writer-be/internal/agent/event"
	"ai-writer-be/internal/agent/eventbus"
	"ai-writer-be/internal/agent/task"
	"ai-writer-be/internal/config"
	"ai-writer-be/internal/model"
	"ai-writer-be/internal/repository/contract"
	"ai-writer-be/internal/repository/memory"
	"ai-writer-be/internal/repository/specification"
	"ai-writer-be/internal/repository/unitofwork"
	"ai-writer-be/pkg/embedding"
	"ai-writer-be/pkg/llm"
	"ai-writer-be/pkg/search"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Debug(string, string, map[string]interface{}) {}
func (nopLogger) Info(string, string, map[string]interface{})  {}
func (nopLogger) Warn(string, string, map[string]interface{})  {}
func (nopLogger) Error(string, string, map[string]interface{}) {}
func (nopLogger) Sync() error                                  { return nil }

// scriptedProvider replays canned responses: the first answers the intent
// analysis, the rest drive the tool loop.
type scriptedProvider struct {
	mu        sync.Mutex
	responses []string
	chats     [][]llm.Message
}

func (p *scriptedProvider) Chat(_ context.Context, history []llm.Message, _ ...llm.Option) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	snapshot := make([]llm.Message, len(history))
	copy(snapshot, history)
	p.chats = append(p.chats, snapshot)
	if len(p.responses) == 0 {
		return "", errors.New("script exhausted")
	}
	next := p.responses[0]
	p.responses = p.responses[1:]
	return next, nil
}

func (p *scriptedProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return p.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, opts...)
}

type stubResolver struct {
	provider llm.LLMProvider
	err      error
}

func (r *stubResolver) Resolve(_ context.Context, _ uuid.UUID) (llm.LLMProvider, error) {
	return r.provider, r.err
}

// In-memory unit of work shared by all orchestrator tests.

type memSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]*model.AgentSession
}

func (r *memSessionRepo) Create(_ context.Context, s *model.AgentSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.SessionId] = s
	return nil
}

func (r *memSessionRepo) Update(_ context.Context, s *model.AgentSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.SessionId] = s
	return nil
}

func (r *memSessionRepo) FindOne(_ context.Context, specs ...specification.Specification) (*model.AgentSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, spec := range specs {
		if bySession, ok := spec.(specification.BySessionId); ok {
			return r.sessions[bySession.SessionId], nil
		}
	}
	return nil, nil
}

func (r *memSessionRepo) FindAll(_ context.Context, _ ...specification.Specification) ([]*model.AgentSession, error) {
	return nil, nil
}

type memMessageRepo struct {
	mu       sync.Mutex
	messages []*model.AgentMessage
}

func (r *memMessageRepo) Create(_ context.Context, m *model.AgentMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m.CreatedAt = time.Now().UTC()
	r.messages = append(r.messages, m)
	return nil
}

func (r *memMessageRepo) bySession(specs []specification.Specification) []*model.AgentMessage {
	sessionID := ""
	for _, spec := range specs {
		if bySession, ok := spec.(specification.BySessionId); ok {
			sessionID = bySession.SessionId
		}
	}
	out := make([]*model.AgentMessage, 0)
	for _, m := range r.messages {
		if sessionID == "" || m.SessionId == sessionID {
			out = append(out, m)
		}
	}
	return out
}

func (r *memMessageRepo) FindAll(_ context.Context, specs ...specification.Specification) ([]*model.AgentMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.bySession(specs), nil
}

func (r *memMessageRepo) Count(_ context.Context, specs ...specification.Specification) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.bySession(specs))), nil
}

func (r *memMessageRepo) DeleteBySessionId(_ context.Context, sessionId string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := make([]*model.AgentMessage, 0, len(r.messages))
	for _, m := range r.messages {
		if m.SessionId != sessionId {
			kept = append(kept, m)
		}
	}
	r.messages = kept
	return nil
}

type memUnitOfWork struct {
	sessions *memSessionRepo
	messages *memMessageRepo
}

func (u *memUnitOfWork) Begin(_ context.Context) error { return nil }
func (u *memUnitOfWork) Commit() error                 { return nil }
func (u *memUnitOfWork) Rollback() error               { return nil }

func (u *memUnitOfWork) DocumentRepository() contract.DocumentRepository           { return nil }
func (u *memUnitOfWork) DocumentChunkRepository() contract.DocumentChunkRepository { return nil }
func (u *memUnitOfWork) AgentSessionRepository() contract.AgentSessionRepository   { return u.sessions }
func (u *memUnitOfWork) AgentMessageRepository() contract.AgentMessageRepository   { return u.messages }
func (u *memUnitOfWork) UserLLMConfigRepository() contract.UserLLMConfigRepository { return nil }

type memFactory struct {
	uow *memUnitOfWork
}

func (f *memFactory) NewUnitOfWork(_ context.Context) unitofwork.UnitOfWork { return f.uow }

type fixture struct {
	orchestrator *Orchestrator
	bus          *eventbus.Bus
	ledger       *task.Ledger
	runs         *memory.SessionRepository
	messages     *memMessageRepo
	provider     *scriptedProvider
}

func newFixture(t *testing.T, responses []string, resolveErr error, webURL string) *fixture {
	return newFixtureWithBudget(t, responses, resolveErr, webURL, 5*time.Second)
}

func newFixtureWithBudget(t *testing.T, responses []string, resolveErr error, webURL string, budget time.Duration) *fixture {
	t.Helper()

	uow := &memUnitOfWork{
		sessions: &memSessionRepo{sessions: make(map[string]*model.AgentSession)},
		messages: &memMessageRepo{},
	}
	factory := &memFactory{uow: uow}

	provider := &scriptedProvider{responses: responses}
	resolver := &stubResolver{provider: provider, err: resolveErr}

	web := search.NewClient(time.Second)
	if webURL != "" {
		web.BaseURL = webURL
	}

	bus := eventbus.New()
	ledger := task.NewLedger()
	runs := memory.NewSessionRepository()

	orch := New(
		bus,
		ledger,
		conversation.NewStore(factory),
		runs,
		factory,
		resolver,
		embedding.NewOllamaProvider("http://localhost:11434", ""),
		web,
		config.AgentConfig{
			MaxIterations:   8,
			ExecutionBudget: budget,
			SearchTimeout:   50 * time.Millisecond,
			KnowledgeTopK:   3,
		},
		nopLogger{},
	)

	return &fixture{
		orchestrator: orch,
		bus:          bus,
		ledger:       ledger,
		runs:         runs,
		messages:     uow.messages,
		provider:     provider,
	}
}

func collectUntilClosed(t *testing.T, sub *eventbus.Subscriber) []event.Envelope {
	t.Helper()
	out := make([]event.Envelope, 0)
	for {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		ev, err := sub.Next(ctx)
		cancel()
		require.NoError(t, err, "stream ended without session_closed")
		out = append(out, ev)
		if ev.Type == event.TypeSessionClosed {
			return out
		}
	}
}

func eventTypes(events []event.Envelope) []string {
	types := make([]string, len(events))
	for i, ev := range events {
		types[i] = ev.Type
	}
	return types
}

func editorAction(n int) string {
	return fmt.Sprintf(`{"action":"tool","tool":"paragraph_editor","args":{"paragraphId":"p_1","operation":"insert_after","newContent":"Generated paragraph %d.","reasoning":"building the draft","totalParagraphs":3}}`, n)
}

func TestRunPublishesFullLifecycle(t *testing.T) {
	fx := newFixture(t, []string{
		`{"intent":"write paragraphs","summary":"write 3 short paragraphs about X","keyPoints":["short","three"]}`,
		editorAction(1),
		editorAction(2),
		editorAction(3),
		`{"action":"final","output":"Added three paragraphs about X."}`,
	}, nil, "")

	userID := uuid.New()
	sessionID := uuid.NewString()
	sub := fx.bus.Register(sessionID)

	returned := fx.orchestrator.StartSession(userID, Request{UserPrompt: "write 3 short paragraphs about X"}, sessionID)
	assert.Equal(t, sessionID, returned)

	events := collectUntilClosed(t, sub)
	types := eventTypes(events)

	assert.Equal(t, []string{
		event.TypeAgentStatus,
		event.TypeAgentStatus,
		event.TypeIntentSummary,
		event.TypeAgentStatus,
		event.TypeParagraphEdit,
		event.TypeParagraphEdit,
		event.TypeParagraphEdit,
		event.TypeAgentComplete,
		event.TypeSessionClosed,
	}, types)

	assert.Equal(t, "initializing", events[0].Data["stage"])
	assert.Equal(t, "intent_analysis", events[1].Data["stage"])
	assert.Equal(t, "running", events[3].Data["stage"])

	for _, ev := range events[4:7] {
		assert.Equal(t, "insert_after", ev.Data["operation"])
		assert.NotEmpty(t, ev.Data["newContent"])
	}

	result := events[7].Data["result"].(map[string]interface{})
	assert.Equal(t, "Added three paragraphs about X.", result["output"])
	assert.Equal(t, "write 3 short paragraphs about X", result["summary"])
}

func TestRunPersistsConversationAndClearsLedger(t *testing.T) {
	fx := newFixture(t, []string{
		`{"intent":"plan","summary":"plan the work","keyPoints":[]}`,
		`{"action":"tool","tool":"task_create","args":{"description":"outline the draft"}}`,
		`{"action":"final","output":"Outline ready."}`,
	}, nil, "")

	userID := uuid.New()
	sessionID := uuid.NewString()
	sub := fx.bus.Register(sessionID)

	fx.orchestrator.StartSession(userID, Request{UserPrompt: "plan something"}, sessionID)
	collectUntilClosed(t, sub)

	// user message then agent output, ordered.
	stored := fx.messages.bySession([]specification.Specification{specification.BySessionId{SessionId: sessionID}})
	require.Len(t, stored, 2)
	assert.Equal(t, "user", stored[0].Role)
	assert.Equal(t, 0, stored[0].MessageOrder)
	assert.Equal(t, "assistant", stored[1].Role)
	assert.Equal(t, "Outline ready.", stored[1].Content)
	assert.Equal(t, 1, stored[1].MessageOrder)

	assert.Empty(t, fx.ledger.List(sessionID, userID, ""))
}

func TestConfigFaultIsFatalBeforeToolActivity(t *testing.T) {
	fx := newFixture(t, nil, errors.New("no completion backend configured for user"), "")

	sessionID := uuid.NewString()
	sub := fx.bus.Register(sessionID)

	fx.orchestrator.StartSession(uuid.New(), Request{UserPrompt: "anything"}, sessionID)
	events := collectUntilClosed(t, sub)

	require.Len(t, events, 3)
	assert.Equal(t, event.TypeAgentStatus, events[0].Type)
	assert.Equal(t, event.TypeAgentError, events[1].Type)
	assert.Equal(t, "CONFIG_ERROR", events[1].Data["code"])
	assert.Equal(t, false, events[1].Data["recoverable"])
	assert.Equal(t, event.TypeSessionClosed, events[2].Type)
}

func TestExecutionBudgetExhaustionCompletesGracefully(t *testing.T) {
	fx := newFixtureWithBudget(t, []string{
		`{"intent":"write","summary":"write something","keyPoints":[]}`,
	}, nil, "", time.Nanosecond)

	sessionID := uuid.NewString()
	sub := fx.bus.Register(sessionID)

	fx.orchestrator.StartSession(uuid.New(), Request{UserPrompt: "write something long"}, sessionID)
	events := collectUntilClosed(t, sub)
	types := eventTypes(events)

	// Running out of wall-clock time is a bound, not a failure: the run
	// still finishes through the normal completion path.
	assert.NotContains(t, types, event.TypeAgentError)
	require.GreaterOrEqual(t, len(events), 2)

	terminal := events[len(events)-2]
	require.Equal(t, event.TypeAgentComplete, terminal.Type)
	result := terminal.Data["result"].(map[string]interface{})
	assert.Equal(t, budgetLimitOutput, result["output"])
}

func TestWebSearchTimeoutDegradesButRunCompletes(t *testing.T) {
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	}))
	defer slow.Close()

	fx := newFixture(t, []string{
		`{"intent":"research","summary":"look something up","keyPoints":[]}`,
		`{"action":"tool","tool":"web_research","args":{"query":"latest findings"}}`,
		`{"action":"final","output":"Could not reach the web, finished with what I had."}`,
	}, nil, slow.URL)

	sessionID := uuid.NewString()
	sub := fx.bus.Register(sessionID)

	fx.orchestrator.StartSession(uuid.New(), Request{UserPrompt: "research this"}, sessionID)
	events := collectUntilClosed(t, sub)
	types := eventTypes(events)

	assert.Equal(t, []string{
		event.TypeAgentStatus,
		event.TypeAgentStatus,
		event.TypeIntentSummary,
		event.TypeAgentStatus,
		event.TypeKnowledgeSearchStart,
		event.TypeKnowledgeSearchDone,
		event.TypeAgentComplete,
		event.TypeSessionClosed,
	}, types)

	assert.Equal(t, false, events[5].Data["success"])
}

func TestTwoSubscribersSeeIdenticalSequences(t *testing.T) {
	fx := newFixture(t, []string{
		`{"intent":"write","summary":"short piece","keyPoints":[]}`,
		editorAction(1),
		`{"action":"final","output":"Done."}`,
	}, nil, "")

	sessionID := uuid.NewString()
	first := fx.bus.Register(sessionID)
	second := fx.bus.Register(sessionID)

	fx.orchestrator.StartSession(uuid.New(), Request{UserPrompt: "write a bit"}, sessionID)

	firstEvents := collectUntilClosed(t, first)
	secondEvents := collectUntilClosed(t, second)
	assert.Equal(t, firstEvents, secondEvents)

	// A subscriber arriving after teardown gets a fresh empty set; none of
	// the earlier events replay.
	late := fx.bus.Register(sessionID)
	assert.Equal(t, 0, late.Pending())
}

func TestStartSessionSynthesizesIdAndStoresRun(t *testing.T) {
	fx := newFixture(t, []string{
		`{"intent":"write","summary":"short piece","keyPoints":[]}`,
		`{"action":"final","output":"Done."}`,
	}, nil, "")

	sessionID := fx.orchestrator.StartSession(uuid.New(), Request{UserPrompt: "hello"}, "")
	require.NotEmpty(t, sessionID)

	run, ok := fx.runs.Get(sessionID)
	require.True(t, ok)
	assert.Equal(t, sessionID, run.ID)

	select {
	case <-run.Done:
	case <-time.After(3 * time.Second):
		t.Fatal("run did not finish")
	}
}

func TestModelIgnoringProtocolBecomesFinalOutput(t *testing.T) {
	fx := newFixture(t, []string{
		`{"intent":"write","summary":"short piece","keyPoints":[]}`,
		`Here is my answer written as plain prose instead of JSON.`,
	}, nil, "")

	sessionID := uuid.NewString()
	sub := fx.bus.Register(sessionID)

	fx.orchestrator.StartSession(uuid.New(), Request{UserPrompt: "write"}, sessionID)
	events := collectUntilClosed(t, sub)

	var complete *event.Envelope
	for i := range events {
		if events[i].Type == event.TypeAgentComplete {
			complete = &events[i]
		}
	}
	require.NotNil(t, complete)
	result := complete.Data["result"].(map[string]interface{})
	assert.Equal(t, "Here is my answer written as plain prose instead of JSON.", result["output"])
}

func TestProtocolFaultFeedsBackToModel(t *testing.T) {
	fx := newFixture(t, []string{
		`{"intent":"edit","summary":"edit paragraph","keyPoints":[]}`,
		`{"action":"tool","tool":"paragraph_editor","args":{"paragraphId":"p_1","operation":"delete","newContent":"oops"}}`,
		`{"action":"tool","tool":"paragraph_editor","args":{"paragraphId":"p_1","operation":"delete"}}`,
		`{"action":"final","output":"Removed the paragraph."}`,
	}, nil, "")

	sessionID := uuid.NewString()
	sub := fx.bus.Register(sessionID)

	fx.orchestrator.StartSession(uuid.New(), Request{UserPrompt: "delete paragraph one"}, sessionID)
	events := collectUntilClosed(t, sub)

	// Only the corrected instruction is published.
	edits := 0
	for _, ev := range events {
		if ev.Type == event.TypeParagraphEdit {
			edits++
			assert.Equal(t, "delete", ev.Data["operation"])
			assert.Equal(t, "", ev.Data["newContent"])
		}
	}
	assert.Equal(t, 1, edits)

	// The model saw the rejection as a tool error message.
	fx.provider.mu.Lock()
	defer fx.provider.mu.Unlock()
	lastChat := fx.provider.chats[len(fx.provider.chats)-2]
	found := false
	for _, m := range lastChat {
		if m.Role == "user" && strings.HasPrefix(m.Content, "tool error") {
			found = true
		}
	}
	assert.True(t, found)
}

func TestSelectionRelevanceReachesModelThroughAnalyzer(t *testing.T) {
	blocks := "Para one.\n\nPara two target.\n\nPara three.\n\nPara four.\n\nPara five."
	selStart := len("Para one.\n\nPara ")
	selEnd := selStart + 3

	fx := newFixture(t, []string{
		`{"intent":"edit","summary":"edit the selection","keyPoints":[]}`,
		fmt.Sprintf(`{"action":"tool","tool":"document_analyzer","args":{"content":%q,"selectionStart":%d,"selectionEnd":%d}}`, blocks, selStart, selEnd),
		`{"action":"final","output":"Analyzed."}`,
	}, nil, "")

	sessionID := uuid.NewString()
	sub := fx.bus.Register(sessionID)

	fx.orchestrator.StartSession(uuid.New(), Request{UserPrompt: "rewrite my selection"}, sessionID)
	collectUntilClosed(t, sub)

	fx.provider.mu.Lock()
	defer fx.provider.mu.Unlock()
	lastChat := fx.provider.chats[len(fx.provider.chats)-1]
	toolResult := lastChat[len(lastChat)-1].Content

	// Exactly one paragraph overlaps the selection.
	assert.Equal(t, 1, strings.Count(toolResult, `"isRelevant":true`))
	assert.Equal(t, 4, strings.Count(toolResult, `"isRelevant":false`))
}
