package service

import (
	"context"
	"testing"

	"ai-writer-be/internal/dto"
	"ai-writer-be/internal/model"
	"ai-writer-be/internal/pkg/serverutils"
	"ai-writer-be/internal/repository/contract"
	"ai-writer-be/internal/repository/specification"
	"ai-writer-be/internal/repository/unitofwork"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLLMConfigRepo struct {
	byUser map[uuid.UUID]*model.UserLLMConfig
}

func newFakeLLMConfigRepo() *fakeLLMConfigRepo {
	return &fakeLLMConfigRepo{byUser: make(map[uuid.UUID]*model.UserLLMConfig)}
}

func (r *fakeLLMConfigRepo) Create(ctx context.Context, cfg *model.UserLLMConfig) error {
	r.byUser[cfg.UserId] = cfg
	return nil
}

func (r *fakeLLMConfigRepo) Update(ctx context.Context, cfg *model.UserLLMConfig) error {
	r.byUser[cfg.UserId] = cfg
	return nil
}

func (r *fakeLLMConfigRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*model.UserLLMConfig, error) {
	for _, spec := range specs {
		if byUser, ok := spec.(specification.ByUserId); ok {
			return r.byUser[byUser.UserId], nil
		}
	}
	return nil, nil
}

type fakeConfigUow struct {
	repo *fakeLLMConfigRepo
}

func (u *fakeConfigUow) Begin(ctx context.Context) error { return nil }
func (u *fakeConfigUow) Commit() error                   { return nil }
func (u *fakeConfigUow) Rollback() error                 { return nil }

func (u *fakeConfigUow) DocumentRepository() contract.DocumentRepository           { return nil }
func (u *fakeConfigUow) DocumentChunkRepository() contract.DocumentChunkRepository { return nil }
func (u *fakeConfigUow) AgentSessionRepository() contract.AgentSessionRepository   { return nil }
func (u *fakeConfigUow) AgentMessageRepository() contract.AgentMessageRepository   { return nil }
func (u *fakeConfigUow) UserLLMConfigRepository() contract.UserLLMConfigRepository { return u.repo }

type fakeConfigFactory struct {
	uow *fakeConfigUow
}

func (f *fakeConfigFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return f.uow
}

func TestLLMConfigUpsertCreatesThenOverwrites(t *testing.T) {
	repo := newFakeLLMConfigRepo()
	svc := NewLLMConfigService(&fakeConfigFactory{uow: &fakeConfigUow{repo: repo}})
	userId := uuid.New()

	res, err := svc.Upsert(context.Background(), userId, &dto.UpsertLLMConfigRequest{
		Provider: "ollama",
		Model:    "llama3",
		BaseURL:  "http://localhost:11434",
	})
	require.NoError(t, err)
	assert.Equal(t, "ollama", res.Provider)
	assert.True(t, res.IsActive)

	res, err = svc.Upsert(context.Background(), userId, &dto.UpsertLLMConfigRequest{
		Provider: "huggingface",
		Model:    "mistral-7b",
		APIKey:   "hf_secret",
	})
	require.NoError(t, err)
	assert.Equal(t, "huggingface", res.Provider)
	assert.Equal(t, "mistral-7b", res.Model)

	require.Len(t, repo.byUser, 1)
	assert.Equal(t, "hf_secret", repo.byUser[userId].APIKey)
}

func TestLLMConfigUpsertKeepsAPIKeyWhenOmitted(t *testing.T) {
	repo := newFakeLLMConfigRepo()
	svc := NewLLMConfigService(&fakeConfigFactory{uow: &fakeConfigUow{repo: repo}})
	userId := uuid.New()

	_, err := svc.Upsert(context.Background(), userId, &dto.UpsertLLMConfigRequest{
		Provider: "huggingface",
		Model:    "mistral-7b",
		APIKey:   "hf_secret",
	})
	require.NoError(t, err)

	// Client re-saves settings without re-entering the key.
	_, err = svc.Upsert(context.Background(), userId, &dto.UpsertLLMConfigRequest{
		Provider: "huggingface",
		Model:    "mixtral-8x7b",
	})
	require.NoError(t, err)
	assert.Equal(t, "hf_secret", repo.byUser[userId].APIKey)
	assert.Equal(t, "mixtral-8x7b", repo.byUser[userId].Model)
}

func TestLLMConfigShowMissingReturnsNotFound(t *testing.T) {
	svc := NewLLMConfigService(&fakeConfigFactory{uow: &fakeConfigUow{repo: newFakeLLMConfigRepo()}})

	_, err := svc.Show(context.Background(), uuid.New())
	assert.ErrorIs(t, err, serverutils.ErrNotFound)
}
