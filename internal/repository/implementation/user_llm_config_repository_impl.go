package implementation

import (
	"context"
	"errors"

	"ai-writer-be/internal/model"
	"ai-writer-be/internal/repository/contract"
	"ai-writer-be/internal/repository/specification"

	"gorm.io/gorm"
)

type UserLLMConfigRepositoryImpl struct {
	db *gorm.DB
}

func NewUserLLMConfigRepository(db *gorm.DB) contract.UserLLMConfigRepository {
	return &UserLLMConfigRepositoryImpl{db: db}
}

func (r *UserLLMConfigRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *UserLLMConfigRepositoryImpl) Create(ctx context.Context, cfg *model.UserLLMConfig) error {
	return r.db.WithContext(ctx).Create(cfg).Error
}

func (r *UserLLMConfigRepositoryImpl) Update(ctx context.Context, cfg *model.UserLLMConfig) error {
	return r.db.WithContext(ctx).Save(cfg).Error
}

func (r *UserLLMConfigRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*model.UserLLMConfig, error) {
	var m model.UserLLMConfig
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}
