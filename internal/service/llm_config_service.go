// FILE: internal/service/llm_config_service.go
package service

import (
	"context"

	"ai-writer-be/internal/dto"
	"ai-writer-be/internal/model"
	"ai-writer-be/internal/pkg/serverutils"
	"ai-writer-be/internal/repository/specification"
	"ai-writer-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type ILLMConfigService interface {
	Upsert(ctx context.Context, userId uuid.UUID, req *dto.UpsertLLMConfigRequest) (*dto.LLMConfigResponse, error)
	Show(ctx context.Context, userId uuid.UUID) (*dto.LLMConfigResponse, error)
}

type llmConfigService struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewLLMConfigService(uowFactory unitofwork.RepositoryFactory) ILLMConfigService {
	return &llmConfigService{uowFactory: uowFactory}
}

// Upsert stores the user's completion backend. One active config per user;
// an existing row is overwritten rather than duplicated.
func (s *llmConfigService) Upsert(ctx context.Context, userId uuid.UUID, req *dto.UpsertLLMConfigRequest) (*dto.LLMConfigResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	repo := uow.UserLLMConfigRepository()

	existing, err := repo.FindOne(ctx, specification.ByUserId{UserId: userId})
	if err != nil {
		return nil, err
	}

	if existing == nil {
		cfg := &model.UserLLMConfig{
			Id:       uuid.New(),
			UserId:   userId,
			Provider: req.Provider,
			Model:    req.Model,
			BaseURL:  req.BaseURL,
			APIKey:   req.APIKey,
			IsActive: true,
		}
		if err := repo.Create(ctx, cfg); err != nil {
			return nil, err
		}
		return toLLMConfigResponse(cfg), nil
	}

	existing.Provider = req.Provider
	existing.Model = req.Model
	existing.BaseURL = req.BaseURL
	if req.APIKey != "" {
		existing.APIKey = req.APIKey
	}
	existing.IsActive = true

	if err := repo.Update(ctx, existing); err != nil {
		return nil, err
	}
	return toLLMConfigResponse(existing), nil
}

func (s *llmConfigService) Show(ctx context.Context, userId uuid.UUID) (*dto.LLMConfigResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	cfg, err := uow.UserLLMConfigRepository().FindOne(ctx, specification.ByUserId{UserId: userId})
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, serverutils.ErrNotFound
	}
	return toLLMConfigResponse(cfg), nil
}

func toLLMConfigResponse(cfg *model.UserLLMConfig) *dto.LLMConfigResponse {
	return &dto.LLMConfigResponse{
		Provider:   cfg.Provider,
		Model:      cfg.Model,
		BaseURL:    cfg.BaseURL,
		IsActive:   cfg.IsActive,
		LastUsedAt: cfg.LastUsedAt,
	}
}
