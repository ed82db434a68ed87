package session

import (
	"github.com/google/uuid"
)

// RosterEntry is one dispatcher in turn order with their effective pick
// cap for this draft (min of total rounds and personal week quota).
type RosterEntry struct {
	UserID   uuid.UUID
	MaxPicks int
}

// TurnResult is the outcome of a turn-advance scan.
type TurnResult struct {
	// End is set when no dispatcher in a full lap still has picks left.
	End bool
	// Wrapped is set when the scan passed position 0, i.e. a round
	// boundary was crossed to reach NextUserID.
	Wrapped bool
	// NextUserID is the dispatcher whose turn comes next (when !End).
	NextUserID uuid.UUID
}

// nextTurn walks the roster circularly from the current dispatcher,
// skipping anyone whose committed pick count has reached their cap.
// A wrap to index 0 during the walk marks a round boundary; a full lap
// with no eligible dispatcher ends the session. Pure function so the
// wrap/round/termination logic is testable without storage.
func nextTurn(roster []RosterEntry, pickCounts map[uuid.UUID]int, currentID uuid.UUID) TurnResult {
	currentIndex := 0
	for i, entry := range roster {
		if entry.UserID == currentID {
			currentIndex = i
			break
		}
	}

	wrapped := false
	next := currentIndex
	attempts := 0
	for attempts < len(roster) {
		next = (next + 1) % len(roster)
		if next == 0 {
			wrapped = true
		}

		entry := roster[next]
		if pickCounts[entry.UserID] < entry.MaxPicks {
			break
		}
		attempts++
	}

	if attempts >= len(roster) {
		return TurnResult{End: true}
	}

	return TurnResult{Wrapped: wrapped, NextUserID: roster[next].UserID}
}

// maxPicksFor is the effective pick cap for a dispatcher in a draft
// with the given number of rounds.
func maxPicksFor(totalRounds, weekQuota int) int {
	if weekQuota < totalRounds {
		return weekQuota
	}
	return totalRounds
}
