// FILE: internal/service/document_service.go
package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"ai-writer-be/internal/dto"
	"ai-writer-be/internal/model"
	"ai-writer-be/internal/pkg/serverutils"
	"ai-writer-be/internal/repository/specification"
	"ai-writer-be/internal/repository/unitofwork"
	"ai-writer-be/pkg/events"
	pkgNats "ai-writer-be/pkg/nats"

	"github.com/google/uuid"
)

type IDocumentService interface {
	Create(ctx context.Context, userId uuid.UUID, req *dto.CreateDocumentRequest) (*dto.DocumentResponse, error)
	Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.DocumentResponse, error)
	List(ctx context.Context, userId uuid.UUID) ([]*dto.DocumentResponse, error)
	Update(ctx context.Context, userId uuid.UUID, req *dto.UpdateDocumentRequest) (*dto.DocumentResponse, error)
	Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error
}

type documentService struct {
	uowFactory       unitofwork.RepositoryFactory
	publisherService IPublisherService
	eventPublisher   *pkgNats.Publisher
}

func NewDocumentService(
	uowFactory unitofwork.RepositoryFactory,
	publisherService IPublisherService,
	eventPublisher *pkgNats.Publisher,
) IDocumentService {
	return &documentService{
		uowFactory:       uowFactory,
		publisherService: publisherService,
		eventPublisher:   eventPublisher,
	}
}

func (s *documentService) Create(ctx context.Context, userId uuid.UUID, req *dto.CreateDocumentRequest) (*dto.DocumentResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	document := model.Document{
		Id:       uuid.New(),
		AuthorId: userId,
		Title:    req.Title,
		Content:  req.Content,
	}

	if err := uow.DocumentRepository().Create(ctx, &document); err != nil {
		return nil, err
	}

	if err := s.publishVectorize(ctx, document.Id); err != nil {
		return nil, err
	}
	s.publishEvent(ctx, "DOCUMENT_CREATED", &document)

	return toDocumentResponse(&document), nil
}

func (s *documentService) Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.DocumentResponse, error) {
	document, err := s.findOwned(ctx, userId, id)
	if err != nil {
		return nil, err
	}
	return toDocumentResponse(document), nil
}

func (s *documentService) List(ctx context.Context, userId uuid.UUID) ([]*dto.DocumentResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	documents, err := uow.DocumentRepository().FindAll(ctx,
		specification.ByAuthorId{AuthorId: userId},
		specification.OrderBy{Field: "updated_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	responses := make([]*dto.DocumentResponse, 0, len(documents))
	for _, document := range documents {
		responses = append(responses, toDocumentResponse(document))
	}
	return responses, nil
}

func (s *documentService) Update(ctx context.Context, userId uuid.UUID, req *dto.UpdateDocumentRequest) (*dto.DocumentResponse, error) {
	document, err := s.findOwned(ctx, userId, req.Id)
	if err != nil {
		return nil, err
	}

	document.Title = req.Title
	document.Content = req.Content

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.DocumentRepository().Update(ctx, document); err != nil {
		return nil, err
	}

	// Content changed, re-vectorize.
	if err := s.publishVectorize(ctx, document.Id); err != nil {
		return nil, err
	}
	s.publishEvent(ctx, "DOCUMENT_UPDATED", document)

	return toDocumentResponse(document), nil
}

func (s *documentService) Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error {
	document, err := s.findOwned(ctx, userId, id)
	if err != nil {
		return err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.DocumentChunkRepository().DeleteByDocumentId(ctx, document.Id); err != nil {
		return err
	}
	if err := uow.DocumentRepository().Delete(ctx, document.Id); err != nil {
		return err
	}
	if err := uow.Commit(); err != nil {
		return err
	}

	s.publishEvent(ctx, "DOCUMENT_DELETED", document)
	return nil
}

func (s *documentService) findOwned(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*model.Document, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	document, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if document == nil {
		return nil, serverutils.ErrNotFound
	}
	if document.AuthorId != userId {
		return nil, serverutils.ErrForbidden
	}
	return document, nil
}

func (s *documentService) publishVectorize(ctx context.Context, documentId uuid.UUID) error {
	payload, err := json.Marshal(dto.PublishVectorizeDocumentMessage{DocumentId: documentId})
	if err != nil {
		return err
	}
	return s.publisherService.Publish(ctx, payload)
}

func (s *documentService) publishEvent(ctx context.Context, eventType string, document *model.Document) {
	if s.eventPublisher == nil {
		return
	}
	evt := events.BaseEvent{
		Type: eventType,
		Data: map[string]interface{}{
			"document_id": document.Id.String(),
			"author_id":   document.AuthorId.String(),
			"title":       document.Title,
		},
		OccurredAt: time.Now(),
	}
	if err := s.eventPublisher.Publish(ctx, evt); err != nil {
		log.Printf("[WARN] Failed to publish %s event: %v", eventType, err)
	}
}

func toDocumentResponse(document *model.Document) *dto.DocumentResponse {
	return &dto.DocumentResponse{
		Id:        document.Id,
		Title:     document.Title,
		Content:   document.Content,
		CreatedAt: document.CreatedAt,
		UpdatedAt: document.UpdatedAt,
	}
}
