package contract

import (
	"context"

	"ai-writer-be/internal/model"
	"ai-writer-be/internal/repository/specification"

	"github.com/google/uuid"
)

type DocumentRepository interface {
	Create(ctx context.Context, document *model.Document) error
	Update(ctx context.Context, document *model.Document) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*model.Document, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*model.Document, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
