package queue

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/dispatchhq/vacdraft/go/internal/models"
)

// QueueRepository defines what the app layer needs from the queue repository
type QueueRepository interface {
	ListForUser(ctx context.Context, userID uuid.UUID) ([]models.DraftQueueItem, error)
	HasWeek(ctx context.Context, userID uuid.UUID, weekStart time.Time) (bool, error)
	CreateItem(ctx context.Context, userID uuid.UUID, weekStart time.Time) (*models.DraftQueueItem, error)
	DeleteItem(ctx context.Context, userID, itemID uuid.UUID) (bool, error)
	SwapOrder(ctx context.Context, first, second models.DraftQueueItem) error
}

// App manages each dispatcher's ordered backup queue of weeks. The
// timeout sweep consumes it front to back.
type App struct {
	repo QueueRepository
}

// NewApp creates a new pick queue App
func NewApp(repo QueueRepository) *App {
	return &App{repo: repo}
}

// List returns the user's queue in priority order
func (a *App) List(ctx context.Context, userID uuid.UUID) ([]models.DraftQueueItem, error) {
	return a.repo.ListForUser(ctx, userID)
}

// Add appends a week to the user's queue. Returns false when the week
// is already queued.
func (a *App) Add(ctx context.Context, userID uuid.UUID, weekStart time.Time) (bool, error) {
	exists, err := a.repo.HasWeek(ctx, userID, weekStart)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	if _, err := a.repo.CreateItem(ctx, userID, weekStart); err != nil {
		return false, err
	}

	log.Printf("Queued week %s for user %s", weekStart.Format("2006-01-02"), userID)
	return true, nil
}

// Remove deletes a queue item. Returns false when the item does not
// exist or belongs to someone else.
func (a *App) Remove(ctx context.Context, userID, itemID uuid.UUID) (bool, error) {
	return a.repo.DeleteItem(ctx, userID, itemID)
}

// Move shifts an item one position up or down by swapping with its
// neighbor. Returns false at the queue boundary or when the item is
// not found.
func (a *App) Move(ctx context.Context, userID, itemID uuid.UUID, up bool) (bool, error) {
	items, err := a.repo.ListForUser(ctx, userID)
	if err != nil {
		return false, err
	}

	index := -1
	for i, item := range items {
		if item.ID == itemID {
			index = i
			break
		}
	}
	if index < 0 {
		return false, nil
	}

	var neighbor models.DraftQueueItem
	switch {
	case up && index > 0:
		neighbor = items[index-1]
	case !up && index < len(items)-1:
		neighbor = items[index+1]
	default:
		return false, nil
	}

	if err := a.repo.SwapOrder(ctx, items[index], neighbor); err != nil {
		return false, err
	}
	return true, nil
}
