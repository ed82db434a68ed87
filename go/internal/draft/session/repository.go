package session

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

// Repository implements draft session data access operations
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new draft session repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const sessionColumns = `id, is_active, is_paused, scheduled_start_time, start_time, end_time, current_user_id, turn_start_time, current_round, total_rounds, created_at`

// ActiveSession returns the active session, or nil when none exists
func (r *Repository) ActiveSession(ctx context.Context) (*models.DraftSession, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM draft_sessions WHERE is_active LIMIT 1`)
	return r.scanOptional(row)
}

// LatestSession returns the most recently created session, or nil
func (r *Repository) LatestSession(ctx context.Context) (*models.DraftSession, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM draft_sessions ORDER BY created_at DESC LIMIT 1`)
	return r.scanOptional(row)
}

// HasOpenSession reports whether any session is active or scheduled
// and not yet ended
func (r *Repository) HasOpenSession(ctx context.Context) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM draft_sessions
			WHERE is_active OR (scheduled_start_time IS NOT NULL AND end_time IS NULL)
		)`).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check for open session: %w", err)
	}
	return exists, nil
}

// DueScheduledSession returns the earliest inactive, non-ended session
// whose scheduled start is at or before now, or nil
func (r *Repository) DueScheduledSession(ctx context.Context, now time.Time) (*models.DraftSession, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+sessionColumns+` FROM draft_sessions
		WHERE NOT is_active
		  AND scheduled_start_time IS NOT NULL
		  AND end_time IS NULL
		  AND scheduled_start_time <= $1
		ORDER BY scheduled_start_time
		LIMIT 1`,
		now,
	)
	return r.scanOptional(row)
}

// CreateSession inserts a new session row
func (r *Repository) CreateSession(ctx context.Context, s *models.DraftSession) (*models.DraftSession, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO draft_sessions
			(id, is_active, is_paused, scheduled_start_time, start_time, end_time,
			 current_user_id, turn_start_time, current_round, total_rounds)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING `+sessionColumns,
		s.ID, s.IsActive, s.IsPaused,
		sqlutil.ToSqlTime(s.ScheduledStartTime), sqlutil.ToSqlTime(s.StartTime), sqlutil.ToSqlTime(s.EndTime),
		sqlutil.ToNullUUID(s.CurrentUserID), sqlutil.ToSqlTime(s.TurnStartTime),
		s.CurrentRound, s.TotalRounds,
	)

	created, err := scanSession(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create draft session: %w", err)
	}
	return created, nil
}

// UpdateSession writes back every mutable field of the session
func (r *Repository) UpdateSession(ctx context.Context, s *models.DraftSession) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE draft_sessions SET
			is_active            = $2,
			is_paused            = $3,
			scheduled_start_time = $4,
			start_time           = $5,
			end_time             = $6,
			current_user_id      = $7,
			turn_start_time      = $8,
			current_round        = $9,
			total_rounds         = $10
		WHERE id = $1`,
		s.ID, s.IsActive, s.IsPaused,
		sqlutil.ToSqlTime(s.ScheduledStartTime), sqlutil.ToSqlTime(s.StartTime), sqlutil.ToSqlTime(s.EndTime),
		sqlutil.ToNullUUID(s.CurrentUserID), sqlutil.ToSqlTime(s.TurnStartTime),
		s.CurrentRound, s.TotalRounds,
	)
	if err != nil {
		return fmt.Errorf("failed to update draft session: %w", err)
	}
	return nil
}

// DeleteAllSessions discards every session row (picks are untouched)
func (r *Repository) DeleteAllSessions(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM draft_sessions`); err != nil {
		return fmt.Errorf("failed to delete draft sessions: %w", err)
	}
	return nil
}

func (r *Repository) scanOptional(row *sql.Row) (*models.DraftSession, error) {
	s, err := scanSession(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get draft session: %w", err)
	}
	return s, nil
}

func scanSession(row interface{ Scan(dest ...any) error }) (*models.DraftSession, error) {
	var s models.DraftSession
	var scheduled, start, end, turnStart sql.NullTime
	var currentUser uuid.NullUUID
	if err := row.Scan(&s.ID, &s.IsActive, &s.IsPaused, &scheduled, &start, &end,
		&currentUser, &turnStart, &s.CurrentRound, &s.TotalRounds, &s.CreatedAt); err != nil {
		return nil, err
	}
	s.ScheduledStartTime = sqlutil.FromSqlTime(scheduled)
	s.StartTime = sqlutil.FromSqlTime(start)
	s.EndTime = sqlutil.FromSqlTime(end)
	s.TurnStartTime = sqlutil.FromSqlTime(turnStart)
	s.CurrentUserID = sqlutil.FromNullUUID(currentUser)
	return &s, nil
}
