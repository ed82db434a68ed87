package models

import (
	"time"

	"github.com/google/uuid"
)

// DraftSession represents one run of the vacation draft. At most one
// session may be active or pending-scheduled at any time.
type DraftSession struct {
	ID                 uuid.UUID  `json:"id"`
	IsActive           bool       `json:"is_active"`
	IsPaused           bool       `json:"is_paused"`
	ScheduledStartTime *time.Time `json:"scheduled_start_time,omitempty"`
	StartTime          *time.Time `json:"start_time,omitempty"`
	EndTime            *time.Time `json:"end_time,omitempty"`
	CurrentUserID      *uuid.UUID `json:"current_user_id,omitempty"`
	TurnStartTime      *time.Time `json:"turn_start_time,omitempty"`
	CurrentRound       int        `json:"current_round"`
	TotalRounds        int        `json:"total_rounds"`
	CreatedAt          time.Time  `json:"created_at"`
}
