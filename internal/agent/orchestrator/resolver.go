package orchestrator

import (
	"context"
	"errors"
	"time"

	"ai-writer-be/internal/config"
	"ai-writer-be/internal/repository/specification"
	"ai-writer-be/internal/repository/unitofwork"
	"ai-writer-be/pkg/llm"
	"ai-writer-be/pkg/llm/factory"

	"github.com/google/uuid"
)

// ConfigResolver resolves the completion backend for a run: the user's
// own stored credentials first, then the application defaults.
type ConfigResolver struct {
	uowFactory unitofwork.RepositoryFactory
	defaults   config.AIConfig
}

func NewConfigResolver(uowFactory unitofwork.RepositoryFactory, defaults config.AIConfig) *ConfigResolver {
	return &ConfigResolver{uowFactory: uowFactory, defaults: defaults}
}

func (r *ConfigResolver) Resolve(ctx context.Context, userID uuid.UUID) (llm.LLMProvider, error) {
	uow := r.uowFactory.NewUnitOfWork(ctx)
	repo := uow.UserLLMConfigRepository()

	userCfg, err := repo.FindOne(ctx,
		specification.ByUserId{UserId: userID},
		specification.ActiveConfig{},
	)
	if err != nil {
		return nil, err
	}

	if userCfg != nil {
		now := time.Now().UTC()
		userCfg.LastUsedAt = &now
		// Best effort; a failed touch must not block the run.
		_ = repo.Update(ctx, userCfg)
		return factory.NewLLMProvider(userCfg.Provider, userCfg.Model, userCfg.BaseURL, userCfg.APIKey)
	}

	if r.defaults.LLMProvider == "" || r.defaults.LLMModel == "" {
		return nil, errors.New("no completion backend configured for user")
	}

	baseURL := ""
	apiKey := ""
	switch r.defaults.LLMProvider {
	case "ollama":
		baseURL = r.defaults.OllamaBaseURL
	case "huggingface":
		apiKey = r.defaults.HuggingFaceAPIKey
	}
	return factory.NewLLMProvider(r.defaults.LLMProvider, r.defaults.LLMModel, baseURL, apiKey)
}
