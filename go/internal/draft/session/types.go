package session

import (
	"time"
)

// Result is the outcome of a draft operation. Business-rule rejections
// come back as Success=false with a human-readable message; only
// infrastructure failures surface as errors.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

const (
	// DefaultTotalRounds caps how many passes through the roster a draft makes.
	DefaultTotalRounds = 5

	// TurnTimeout is how long a turn may sit idle before the sweeper
	// consumes the dispatcher's queue or force-advances the turn.
	TurnTimeout = 5 * time.Minute
)

// draftCommentPrefix tags bookings created by the draft engine; pick
// queries filter on it.
const draftCommentPrefix = "Draft Round"
