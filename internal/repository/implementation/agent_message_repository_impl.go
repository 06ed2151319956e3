package implementation

import (
	"context"

	"ai-writer-be/internal/model"
	"ai-writer-be/internal/repository/contract"
	"ai-writer-be/internal/repository/specification"

	"gorm.io/gorm"
)

type AgentMessageRepositoryImpl struct {
	db *gorm.DB
}

func NewAgentMessageRepository(db *gorm.DB) contract.AgentMessageRepository {
	return &AgentMessageRepositoryImpl{db: db}
}

func (r *AgentMessageRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *AgentMessageRepositoryImpl) Create(ctx context.Context, message *model.AgentMessage) error {
	return r.db.WithContext(ctx).Create(message).Error
}

func (r *AgentMessageRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*model.AgentMessage, error) {
	var models []*model.AgentMessage
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return models, nil
}

func (r *AgentMessageRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.AgentMessage{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *AgentMessageRepositoryImpl) DeleteBySessionId(ctx context.Context, sessionId string) error {
	return r.db.WithContext(ctx).Where("session_id = ?", sessionId).Delete(&model.AgentMessage{}).Error
}
