package implementation

import (
	"context"
	"errors"

	"ai-writer-be/internal/model"
	"ai-writer-be/internal/repository/contract"
	"ai-writer-be/internal/repository/specification"

	"gorm.io/gorm"
)

type AgentSessionRepositoryImpl struct {
	db *gorm.DB
}

func NewAgentSessionRepository(db *gorm.DB) contract.AgentSessionRepository {
	return &AgentSessionRepositoryImpl{db: db}
}

func (r *AgentSessionRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *AgentSessionRepositoryImpl) Create(ctx context.Context, session *model.AgentSession) error {
	return r.db.WithContext(ctx).Create(session).Error
}

func (r *AgentSessionRepositoryImpl) Update(ctx context.Context, session *model.AgentSession) error {
	return r.db.WithContext(ctx).Save(session).Error
}

func (r *AgentSessionRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*model.AgentSession, error) {
	var m model.AgentSession
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

func (r *AgentSessionRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*model.AgentSession, error) {
	var models []*model.AgentSession
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return models, nil
}
