package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ai-writer-be/internal/agent/eventbus"
	"ai-writer-be/internal/agent/task"
	"ai-writer-be/internal/repository/contract"
	"ai-writer-be/pkg/embedding"
	"ai-writer-be/pkg/search"

	"github.com/google/uuid"
)

// Kind enumerates the closed set of operations the agent can invoke.
// There is no open registration; adding a tool means adding a Kind, an
// input struct, and a case in Toolbox.Invoke.
type Kind string

const (
	KindDocumentAnalyzer Kind = "document_analyzer"
	KindParagraphEditor  Kind = "paragraph_editor"
	KindKnowledgeSearch  Kind = "document_knowledge_search"
	KindWebResearch      Kind = "web_research"
	KindTaskCreate       Kind = "task_create"
	KindTaskUpdate       Kind = "task_update"
	KindTaskList         Kind = "task_list"
)

type DocumentAnalyzerInput struct {
	Content        string `json:"content"`
	SelectionStart *int   `json:"selectionStart,omitempty"`
	SelectionEnd   *int   `json:"selectionEnd,omitempty"`
}

type ParagraphEditInput struct {
	ParagraphID     string `json:"paragraphId"`
	Operation       string `json:"operation"`
	NewContent      string `json:"newContent,omitempty"`
	OriginalContent string `json:"originalContent,omitempty"`
	Reasoning       string `json:"reasoning"`
	StartOffset     *int   `json:"startOffset,omitempty"`
	EndOffset       *int   `json:"endOffset,omitempty"`
	TotalParagraphs int    `json:"totalParagraphs,omitempty"`
}

type KnowledgeSearchInput struct {
	Query string `json:"query"`
	TopK  int    `json:"topK,omitempty"`
}

type WebResearchInput struct {
	Query string `json:"query"`
}

type TaskCreateInput struct {
	Description string `json:"description"`
	Priority    int    `json:"priority,omitempty"`
}

type TaskUpdateInput struct {
	TaskID int    `json:"taskId"`
	Status string `json:"status"`
}

type TaskListInput struct {
	Status string `json:"status,omitempty"`
}

// Call is one decoded tool invocation. Exactly one input field matching
// Kind is populated.
type Call struct {
	Kind Kind

	DocumentAnalyzer *DocumentAnalyzerInput
	ParagraphEdit    *ParagraphEditInput
	KnowledgeSearch  *KnowledgeSearchInput
	WebResearch      *WebResearchInput
	TaskCreate       *TaskCreateInput
	TaskUpdate       *TaskUpdateInput
	TaskList         *TaskListInput
}

// ParseCall decodes a raw tool request into a typed Call. Unknown kinds
// are rejected here so the dispatch switch never sees them.
func ParseCall(kind string, args json.RawMessage) (Call, error) {
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}

	call := Call{Kind: Kind(kind)}
	var err error
	switch call.Kind {
	case KindDocumentAnalyzer:
		call.DocumentAnalyzer = &DocumentAnalyzerInput{}
		err = json.Unmarshal(args, call.DocumentAnalyzer)
	case KindParagraphEditor:
		call.ParagraphEdit = &ParagraphEditInput{}
		err = json.Unmarshal(args, call.ParagraphEdit)
	case KindKnowledgeSearch:
		call.KnowledgeSearch = &KnowledgeSearchInput{}
		err = json.Unmarshal(args, call.KnowledgeSearch)
	case KindWebResearch:
		call.WebResearch = &WebResearchInput{}
		err = json.Unmarshal(args, call.WebResearch)
	case KindTaskCreate:
		call.TaskCreate = &TaskCreateInput{}
		err = json.Unmarshal(args, call.TaskCreate)
	case KindTaskUpdate:
		call.TaskUpdate = &TaskUpdateInput{}
		err = json.Unmarshal(args, call.TaskUpdate)
	case KindTaskList:
		call.TaskList = &TaskListInput{}
		err = json.Unmarshal(args, call.TaskList)
	default:
		return Call{}, fmt.Errorf("unknown tool: %s", kind)
	}
	if err != nil {
		return Call{}, fmt.Errorf("decode %s input: %w", kind, err)
	}
	return call, nil
}

// Toolbox is the session-scoped tool set. One instance per agent run;
// the paragraph progress counter lives here and is monotonic for the
// lifetime of the run.
type Toolbox struct {
	sessionID string
	userID    uuid.UUID

	bus    *eventbus.Bus
	ledger *task.Ledger

	chunks   contract.DocumentChunkRepository
	embedder embedding.EmbeddingProvider
	web      *search.Client

	documentIds   []uuid.UUID
	searchTimeout time.Duration
	defaultTopK   int

	editsSent int
}

type Config struct {
	SessionID     string
	UserID        uuid.UUID
	Bus           *eventbus.Bus
	Ledger        *task.Ledger
	Chunks        contract.DocumentChunkRepository
	Embedder      embedding.EmbeddingProvider
	Web           *search.Client
	DocumentIds   []uuid.UUID
	SearchTimeout time.Duration
	DefaultTopK   int
}

func NewToolbox(cfg Config) *Toolbox {
	topK := cfg.DefaultTopK
	if topK <= 0 {
		topK = 3
	}
	timeout := cfg.SearchTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Toolbox{
		sessionID:     cfg.SessionID,
		userID:        cfg.UserID,
		bus:           cfg.Bus,
		ledger:        cfg.Ledger,
		chunks:        cfg.Chunks,
		embedder:      cfg.Embedder,
		web:           cfg.Web,
		documentIds:   cfg.DocumentIds,
		searchTimeout: timeout,
		defaultTopK:   topK,
	}
}

// Invoke dispatches the call. The returned string is the textual tool
// result handed back to the model; an error is a protocol fault for the
// model to correct and is never published to subscribers.
func (t *Toolbox) Invoke(ctx context.Context, call Call) (string, error) {
	switch call.Kind {
	case KindDocumentAnalyzer:
		return t.analyzeDocument(call.DocumentAnalyzer)
	case KindParagraphEditor:
		return t.publishParagraphEdit(call.ParagraphEdit)
	case KindKnowledgeSearch:
		return t.searchKnowledge(ctx, call.KnowledgeSearch)
	case KindWebResearch:
		return t.searchWeb(ctx, call.WebResearch)
	case KindTaskCreate:
		return t.createTask(call.TaskCreate)
	case KindTaskUpdate:
		return t.updateTask(call.TaskUpdate)
	case KindTaskList:
		return t.listTasks(call.TaskList)
	default:
		return "", fmt.Errorf("unknown tool: %s", call.Kind)
	}
}
