package dto

import (
	"time"

	"github.com/google/uuid"
)

type TargetSelectionDto struct {
	StartOffset int    `json:"startOffset" validate:"min=0"`
	EndOffset   int    `json:"endOffset" validate:"min=0"`
	Text        string `json:"text,omitempty"`
}

type ExecuteAgentRequest struct {
	UserPrompt          string              `json:"userPrompt" validate:"required"`
	SessionId           string              `json:"sessionId,omitempty"`
	AgentType           string              `json:"agentType,omitempty"`
	DocumentId          *uuid.UUID          `json:"documentId,omitempty"`
	DocumentContent     string              `json:"documentContent,omitempty"`
	SelectedDocumentIds []uuid.UUID         `json:"selectedDocumentIds,omitempty"`
	SelectedSnippets    []string            `json:"selectedSnippets,omitempty"`
	TargetSelection     *TargetSelectionDto `json:"targetSelection,omitempty"`
}

type ExecuteAgentResponse struct {
	SessionId string `json:"sessionId"`
	Status    string `json:"status"`
}

type AgentMessageResponse struct {
	Role         string                 `json:"role"`
	Content      string                 `json:"content"`
	MessageOrder int                    `json:"messageOrder"`
	Metadata     map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt    time.Time              `json:"createdAt"`
}

type SessionHistoryResponse struct {
	SessionId string                 `json:"sessionId"`
	Messages  []AgentMessageResponse `json:"messages"`
}

type SessionStatusResponse struct {
	SessionId string    `json:"sessionId"`
	Stage     string    `json:"stage"`
	StartedAt time.Time `json:"startedAt"`
}
