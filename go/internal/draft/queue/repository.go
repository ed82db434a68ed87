package queue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dispatchhq/vacdraft/go/internal/models"
	"github.com/dispatchhq/vacdraft/go/internal/sqlutil"
)

// ErrNotFound is returned when no queue item matches the lookup.
var ErrNotFound = errors.New("draft queue item not found")

// Repository implements pick queue data access operations
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new pick queue repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const itemColumns = `id, user_id, week_start_date, queue_order, created_at`

// ListForUser returns a user's queue items sorted by queue order
func (r *Repository) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.DraftQueueItem, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+itemColumns+` FROM draft_queue_items WHERE user_id = $1 ORDER BY queue_order`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list queue items: %w", err)
	}
	defer rows.Close()

	var items []models.DraftQueueItem
	for rows.Next() {
		var item models.DraftQueueItem
		if err := rows.Scan(&item.ID, &item.UserID, &item.WeekStartDate, &item.QueueOrder, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan queue item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list queue items: %w", err)
	}
	return items, nil
}

// HasWeek reports whether the user already queued the given week
func (r *Repository) HasWeek(ctx context.Context, userID uuid.UUID, weekStart time.Time) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM draft_queue_items WHERE user_id = $1 AND week_start_date = $2
		)`,
		userID, weekStart).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check queue for week: %w", err)
	}
	return exists, nil
}

// CreateItem appends a week to the end of the user's queue
func (r *Repository) CreateItem(ctx context.Context, userID uuid.UUID, weekStart time.Time) (*models.DraftQueueItem, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO draft_queue_items (id, user_id, week_start_date, queue_order)
		VALUES ($1, $2, $3,
			(SELECT COALESCE(MAX(queue_order), 0) + 1 FROM draft_queue_items WHERE user_id = $2))
		RETURNING `+itemColumns,
		uuid.New(), userID, weekStart)

	var item models.DraftQueueItem
	if err := row.Scan(&item.ID, &item.UserID, &item.WeekStartDate, &item.QueueOrder, &item.CreatedAt); err != nil {
		return nil, fmt.Errorf("failed to create queue item: %w", err)
	}
	return &item, nil
}

// DeleteItem removes a queue item owned by the user. Returns false
// when no such item exists.
func (r *Repository) DeleteItem(ctx context.Context, userID, itemID uuid.UUID) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM draft_queue_items WHERE id = $1 AND user_id = $2`,
		itemID, userID)
	if err != nil {
		return false, fmt.Errorf("failed to delete queue item: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to delete queue item: %w", err)
	}
	return affected > 0, nil
}

// SwapOrder exchanges the queue positions of two items atomically
func (r *Repository) SwapOrder(ctx context.Context, first, second models.DraftQueueItem) error {
	return sqlutil.Run(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`UPDATE draft_queue_items SET queue_order = $2 WHERE id = $1`,
			first.ID, second.QueueOrder); err != nil {
			return fmt.Errorf("failed to reorder queue item: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE draft_queue_items SET queue_order = $2 WHERE id = $1`,
			second.ID, first.QueueOrder); err != nil {
			return fmt.Errorf("failed to reorder queue item: %w", err)
		}
		return nil
	})
}
