package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ByAuthorId filters documents by owner
type ByAuthorId struct {
	AuthorId uuid.UUID
}

func (s ByAuthorId) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("author_id = ?", s.AuthorId)
}

// ByDocumentId filters chunks belonging to one document
type ByDocumentId struct {
	DocumentId uuid.UUID
}

func (s ByDocumentId) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("document_id = ?", s.DocumentId)
}
