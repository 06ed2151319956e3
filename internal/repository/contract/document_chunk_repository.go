package contract

import (
	"context"

	"ai-writer-be/internal/model"
	"ai-writer-be/internal/repository/specification"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

type DocumentChunkRepository interface {
	CreateBatch(ctx context.Context, chunks []*model.DocumentChunk) error
	DeleteByDocumentId(ctx context.Context, documentId uuid.UUID) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*model.DocumentChunk, error)

	// SearchSimilar returns the chunks closest to the query vector, restricted
	// to the author's documents and optionally to an explicit document id list.
	SearchSimilar(ctx context.Context, authorId uuid.UUID, query pgvector.Vector, documentIds []uuid.UUID, limit int) ([]*model.DocumentChunk, error)
}
