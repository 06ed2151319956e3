// FILE: internal/service/vectorize_relay_service.go
package service

import (
	"context"
	"encoding/json"
	"log"

	"ai-writer-be/internal/dto"
	"ai-writer-be/pkg/events"
	pkgNats "ai-writer-be/pkg/nats"

	"github.com/google/uuid"
)

// IVectorizeRelayService feeds document events arriving on the NATS bus
// into the local vectorization pipeline. Covers documents written by
// other processes; re-vectorizing is idempotent (delete + recreate), so
// receiving an event for a locally written document is harmless.
type IVectorizeRelayService interface {
	Start() error
}

type vectorizeRelayService struct {
	subscriber *pkgNats.Subscriber
	publisher  IPublisherService
}

func NewVectorizeRelayService(subscriber *pkgNats.Subscriber, publisher IPublisherService) IVectorizeRelayService {
	return &vectorizeRelayService{
		subscriber: subscriber,
		publisher:  publisher,
	}
}

func (s *vectorizeRelayService) Start() error {
	if err := s.subscriber.Subscribe("events.DOCUMENT_CREATED", "vectorize-relay-created", s.relay); err != nil {
		return err
	}
	return s.subscriber.Subscribe("events.DOCUMENT_UPDATED", "vectorize-relay-updated", s.relay)
}

func (s *vectorizeRelayService) relay(ctx context.Context, event events.Event) error {
	raw, _ := event.Payload()["document_id"].(string)
	documentId, err := uuid.Parse(raw)
	if err != nil {
		// Redelivery cannot fix a malformed event, drop it.
		log.Printf("[WARN] Dropping document event without valid document_id: %v", event.Payload())
		return nil
	}

	payload, err := json.Marshal(dto.PublishVectorizeDocumentMessage{DocumentId: documentId})
	if err != nil {
		return err
	}
	return s.publisher.Publish(ctx, payload)
}
