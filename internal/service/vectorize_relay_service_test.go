package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"ai-writer-be/internal/dto"
	"ai-writer-be/pkg/events"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturingPublisher struct {
	payloads [][]byte
	err      error
}

func (p *capturingPublisher) Publish(ctx context.Context, payload []byte) error {
	if p.err != nil {
		return p.err
	}
	p.payloads = append(p.payloads, payload)
	return nil
}

func TestRelayForwardsDocumentEvents(t *testing.T) {
	publisher := &capturingPublisher{}
	svc := &vectorizeRelayService{publisher: publisher}
	documentId := uuid.New()

	err := svc.relay(context.Background(), events.BaseEvent{
		Type:       "DOCUMENT_UPDATED",
		Data:       map[string]interface{}{"document_id": documentId.String()},
		OccurredAt: time.Now(),
	})
	require.NoError(t, err)
	require.Len(t, publisher.payloads, 1)

	var msg dto.PublishVectorizeDocumentMessage
	require.NoError(t, json.Unmarshal(publisher.payloads[0], &msg))
	assert.Equal(t, documentId, msg.DocumentId)
}

func TestRelayDropsEventWithoutDocumentId(t *testing.T) {
	publisher := &capturingPublisher{}
	svc := &vectorizeRelayService{publisher: publisher}

	// Malformed events must not be nacked into a redelivery loop.
	err := svc.relay(context.Background(), events.BaseEvent{
		Type: "DOCUMENT_CREATED",
		Data: map[string]interface{}{"title": "no id here"},
	})
	require.NoError(t, err)
	assert.Empty(t, publisher.payloads)
}

func TestRelayPropagatesPublishFailure(t *testing.T) {
	publisher := &capturingPublisher{err: errors.New("pipeline down")}
	svc := &vectorizeRelayService{publisher: publisher}

	err := svc.relay(context.Background(), events.BaseEvent{
		Data: map[string]interface{}{"document_id": uuid.NewString()},
	})
	assert.Error(t, err)
}
