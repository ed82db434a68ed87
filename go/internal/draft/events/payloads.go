package events

import (
	"time"
)

// Event payload types shared between the draft engine, outbox and gateway packages

// DraftScheduledPayload is the payload for a DraftScheduled event
type DraftScheduledPayload struct {
	SessionID    string    `json:"session_id"`
	ScheduledFor time.Time `json:"scheduled_for"`
}

// DraftStartedPayload is the payload for a DraftStarted event
type DraftStartedPayload struct {
	SessionID   string    `json:"session_id"`
	StartedAt   time.Time `json:"started_at"`
	FirstUserID string    `json:"first_user_id"`
	TotalRounds int       `json:"total_rounds"`
}

// DraftPausedPayload is the payload for a DraftPaused event
type DraftPausedPayload struct {
	SessionID string    `json:"session_id"`
	PausedAt  time.Time `json:"paused_at"`
}

// DraftResumedPayload is the payload for a DraftResumed event
type DraftResumedPayload struct {
	SessionID string    `json:"session_id"`
	ResumedAt time.Time `json:"resumed_at"`
}

// DraftResetPayload is the payload for a DraftReset event
type DraftResetPayload struct {
	SessionID string    `json:"session_id"`
	ResetAt   time.Time `json:"reset_at"`
}

// DraftCompletedPayload is the payload for a DraftCompleted event
type DraftCompletedPayload struct {
	SessionID   string    `json:"session_id"`
	CompletedAt time.Time `json:"completed_at"`
	Rounds      int       `json:"rounds"`
}

// PickMadePayload is the payload for a PickMade event
type PickMadePayload struct {
	SessionID string    `json:"session_id"`
	UserID    string    `json:"user_id"`
	WeekStart time.Time `json:"week_start"`
	Round     int       `json:"round"`
	MadeAt    time.Time `json:"made_at"`
	Auto      bool      `json:"auto"`
}

// PickUndonePayload is the payload for a PickUndone event
type PickUndonePayload struct {
	SessionID string    `json:"session_id"`
	UserID    string    `json:"user_id"`
	WeekStart time.Time `json:"week_start"`
	UndoneAt  time.Time `json:"undone_at"`
}

// TurnAdvancedPayload is the payload for a TurnAdvanced event
type TurnAdvancedPayload struct {
	SessionID     string    `json:"session_id"`
	UserID        string    `json:"user_id"`
	Round         int       `json:"round"`
	TurnStartedAt time.Time `json:"turn_started_at"`
}
