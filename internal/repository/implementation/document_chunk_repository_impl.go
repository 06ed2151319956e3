package implementation

import (
	"context"

	"ai-writer-be/internal/model"
	"ai-writer-be/internal/repository/contract"
	"ai-writer-be/internal/repository/specification"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DocumentChunkRepositoryImpl struct {
	db *gorm.DB
}

func NewDocumentChunkRepository(db *gorm.DB) contract.DocumentChunkRepository {
	return &DocumentChunkRepositoryImpl{db: db}
}

func (r *DocumentChunkRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *DocumentChunkRepositoryImpl) CreateBatch(ctx context.Context, chunks []*model.DocumentChunk) error {
	if len(chunks) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(chunks).Error
}

func (r *DocumentChunkRepositoryImpl) DeleteByDocumentId(ctx context.Context, documentId uuid.UUID) error {
	return r.db.WithContext(ctx).Unscoped().Where("document_id = ?", documentId).Delete(&model.DocumentChunk{}).Error
}

func (r *DocumentChunkRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*model.DocumentChunk, error) {
	var models []*model.DocumentChunk
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return models, nil
}

func (r *DocumentChunkRepositoryImpl) SearchSimilar(ctx context.Context, authorId uuid.UUID, queryVec pgvector.Vector, documentIds []uuid.UUID, limit int) ([]*model.DocumentChunk, error) {
	var models []*model.DocumentChunk

	query := r.db.WithContext(ctx).
		Table("document_chunks dc").
		Select("dc.*").
		Joins("JOIN documents d ON dc.document_id = d.id").
		Where("d.author_id = ?", authorId).
		Where("d.deleted_at IS NULL").
		Where("dc.deleted_at IS NULL")

	if len(documentIds) > 0 {
		query = query.Where("dc.document_id IN ?", documentIds)
	}

	err := query.
		Clauses(clause.OrderBy{Expression: clause.Expr{SQL: "dc.embedding_value <-> ?", Vars: []interface{}{queryVec}}}).
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return models, nil
}
