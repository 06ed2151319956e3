package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateDocumentRequest struct {
	Title   string `json:"title" validate:"required,max=255"`
	Content string `json:"content"`
}

type UpdateDocumentRequest struct {
	Id      uuid.UUID `json:"-"`
	Title   string    `json:"title" validate:"required,max=255"`
	Content string    `json:"content"`
}

type DocumentResponse struct {
	Id        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// PublishVectorizeDocumentMessage rides the in-process bus from the
// document service to the vectorization consumer.
type PublishVectorizeDocumentMessage struct {
	DocumentId uuid.UUID `json:"documentId"`
}

type UpsertLLMConfigRequest struct {
	Provider string `json:"provider" validate:"required,oneof=ollama huggingface"`
	Model    string `json:"model" validate:"required,max=255"`
	BaseURL  string `json:"baseUrl,omitempty"`
	APIKey   string `json:"apiKey,omitempty"`
}

type LLMConfigResponse struct {
	Provider   string     `json:"provider"`
	Model      string     `json:"model"`
	BaseURL    string     `json:"baseUrl,omitempty"`
	IsActive   bool       `json:"isActive"`
	LastUsedAt *time.Time `json:"lastUsedAt,omitempty"`
}
