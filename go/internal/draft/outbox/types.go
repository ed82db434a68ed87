package outbox

import (
	"context"

	"github.com/google/uuid"
)

// Event types recorded by the draft engine.
const (
	EventDraftScheduled = "DraftScheduled"
	EventDraftStarted   = "DraftStarted"
	EventDraftPaused    = "DraftPaused"
	EventDraftResumed   = "DraftResumed"
	EventDraftReset     = "DraftReset"
	EventDraftCompleted = "DraftCompleted"
	EventPickMade       = "PickMade"
	EventPickUndone     = "PickUndone"
	EventTurnAdvanced   = "TurnAdvanced"
)

// OutboxEvent is one pending or delivered draft notification
type OutboxEvent struct {
	ID        uuid.UUID
	SessionID uuid.UUID
	EventType string
	Payload   []byte
}

// EventPublisher delivers outbox events to the message broker
type EventPublisher interface {
	Publish(ctx context.Context, event OutboxEvent) error
}
