package models

import (
	"time"

	"github.com/google/uuid"
)

// DraftQueueItem is one entry in a dispatcher's pre-staged wishlist of
// weeks. QueueOrder only matters relative to the owner's other items.
type DraftQueueItem struct {
	ID            uuid.UUID `json:"id"`
	UserID        uuid.UUID `json:"user_id"`
	WeekStartDate time.Time `json:"week_start_date"`
	QueueOrder    int       `json:"queue_order"`
	CreatedAt     time.Time `json:"created_at"`
}
