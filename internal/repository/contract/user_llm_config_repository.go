package contract

import (
	"context"

	"ai-writer-be/internal/model"
	"ai-writer-be/internal/repository/specification"
)

type UserLLMConfigRepository interface {
	Create(ctx context.Context, cfg *model.UserLLMConfig) error
	Update(ctx context.Context, cfg *model.UserLLMConfig) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*model.UserLLMConfig, error)
}
