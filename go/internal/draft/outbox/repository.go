package outbox

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Repository implements outbox data access operations
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new outbox repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) insert(ctx context.Context, eventType string, sessionID uuid.UUID, payload []byte) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO draft_outbox (id, session_id, event_type, payload)
		VALUES ($1, $2, $3, $4)`,
		uuid.New(), sessionID, eventType, payload)
	if err != nil {
		return fmt.Errorf("failed to insert %s outbox event: %w", eventType, err)
	}
	return nil
}

func (r *Repository) InsertOutboxDraftScheduled(ctx context.Context, sessionID uuid.UUID, payload []byte) error {
	return r.insert(ctx, EventDraftScheduled, sessionID, payload)
}

func (r *Repository) InsertOutboxDraftStarted(ctx context.Context, sessionID uuid.UUID, payload []byte) error {
	return r.insert(ctx, EventDraftStarted, sessionID, payload)
}

func (r *Repository) InsertOutboxDraftPaused(ctx context.Context, sessionID uuid.UUID, payload []byte) error {
	return r.insert(ctx, EventDraftPaused, sessionID, payload)
}

func (r *Repository) InsertOutboxDraftResumed(ctx context.Context, sessionID uuid.UUID, payload []byte) error {
	return r.insert(ctx, EventDraftResumed, sessionID, payload)
}

func (r *Repository) InsertOutboxDraftReset(ctx context.Context, sessionID uuid.UUID, payload []byte) error {
	return r.insert(ctx, EventDraftReset, sessionID, payload)
}

func (r *Repository) InsertOutboxDraftCompleted(ctx context.Context, sessionID uuid.UUID, payload []byte) error {
	return r.insert(ctx, EventDraftCompleted, sessionID, payload)
}

func (r *Repository) InsertOutboxPickMade(ctx context.Context, sessionID uuid.UUID, payload []byte) error {
	return r.insert(ctx, EventPickMade, sessionID, payload)
}

func (r *Repository) InsertOutboxPickUndone(ctx context.Context, sessionID uuid.UUID, payload []byte) error {
	return r.insert(ctx, EventPickUndone, sessionID, payload)
}

func (r *Repository) InsertOutboxTurnAdvanced(ctx context.Context, sessionID uuid.UUID, payload []byte) error {
	return r.insert(ctx, EventTurnAdvanced, sessionID, payload)
}

// FetchUnsentOutboxTx locks and returns a batch of undelivered events,
// oldest first. Rows locked by a concurrent worker are skipped.
func (r *Repository) FetchUnsentOutboxTx(ctx context.Context, tx *sql.Tx, limit int32) ([]OutboxEvent, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT id, session_id, event_type, payload
		FROM draft_outbox
		WHERE sent_at IS NULL
		ORDER BY created_at
		LIMIT $1
		FOR UPDATE SKIP LOCKED`,
		limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch unsent outbox events: %w", err)
	}
	defer rows.Close()

	var events []OutboxEvent
	for rows.Next() {
		var e OutboxEvent
		if err := rows.Scan(&e.ID, &e.SessionID, &e.EventType, &e.Payload); err != nil {
			return nil, fmt.Errorf("failed to scan outbox event: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to fetch unsent outbox events: %w", err)
	}
	return events, nil
}

// MarkOutboxSentTx stamps the given events as delivered
func (r *Repository) MarkOutboxSentTx(ctx context.Context, tx *sql.Tx, ids []uuid.UUID) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE draft_outbox SET sent_at = NOW() WHERE id = ANY($1)`,
		pq.Array(ids))
	if err != nil {
		return fmt.Errorf("failed to mark outbox events as sent: %w", err)
	}
	return nil
}
