package gateway

import (
	"encoding/json"
	"time"
)

// DraftEvent is the envelope pushed to WebSocket clients
type DraftEvent struct {
	ID        string          `json:"id"`
	SessionID string          `json:"session_id"`
	Type      EventType       `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// EventType represents the type of draft event
type EventType string

const (
	EventTypeDraftScheduled EventType = "DraftScheduled"
	EventTypeDraftStarted   EventType = "DraftStarted"
	EventTypeDraftPaused    EventType = "DraftPaused"
	EventTypeDraftResumed   EventType = "DraftResumed"
	EventTypeDraftReset     EventType = "DraftReset"
	EventTypeDraftCompleted EventType = "DraftCompleted"
	EventTypePickMade       EventType = "PickMade"
	EventTypePickUndone     EventType = "PickUndone"
	EventTypeTurnAdvanced   EventType = "TurnAdvanced"
)

var knownEventTypes = map[string]EventType{
	"DraftScheduled": EventTypeDraftScheduled,
	"DraftStarted":   EventTypeDraftStarted,
	"DraftPaused":    EventTypeDraftPaused,
	"DraftResumed":   EventTypeDraftResumed,
	"DraftReset":     EventTypeDraftReset,
	"DraftCompleted": EventTypeDraftCompleted,
	"PickMade":       EventTypePickMade,
	"PickUndone":     EventTypePickUndone,
	"TurnAdvanced":   EventTypeTurnAdvanced,
}
