package vacation

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

// ErrNotFound is returned when no request matches the lookup.
var ErrNotFound = errors.New("vacation request not found")

// Repository implements vacation request data access operations
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new vacation repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const requestColumns = `id, user_id, start_date, end_date, is_week_booking, type, status, comment, created_at`

// Draft picks are approved week bookings tagged with a "Draft Round" comment.
const draftPickFilter = `
	is_week_booking = TRUE
	AND type = 'VACATION'
	AND status = 'APPROVED'
	AND comment LIKE 'Draft Round%'
	AND created_at >= `

// CreateRequest inserts a new vacation request
func (r *Repository) CreateRequest(ctx context.Context, req models.VacationRequest) (*models.VacationRequest, error) {
	id := req.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	row := r.db.QueryRowContext(ctx, `
		INSERT INTO vacation_requests (id, user_id, start_date, end_date, is_week_booking, type, status, comment)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+requestColumns,
		id, req.UserID, req.StartDate, req.EndDate, req.IsWeekBooking,
		string(req.Type), string(req.Status), sqlutil.ToSqlString(req.Comment),
	)

	created, err := scanRequest(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create vacation request: %w", err)
	}
	return created, nil
}

// GetRequest retrieves a request by ID
func (r *Repository) GetRequest(ctx context.Context, id uuid.UUID) (*models.VacationRequest, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+requestColumns+` FROM vacation_requests WHERE id = $1`, id)

	req, err := scanRequest(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get vacation request: %w", err)
	}
	return req, nil
}

// ListRequests returns all requests, most recent start date first
func (r *Repository) ListRequests(ctx context.Context) ([]models.VacationRequest, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+requestColumns+` FROM vacation_requests ORDER BY start_date DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list vacation requests: %w", err)
	}
	defer rows.Close()

	return collectRequests(rows)
}

// ListRequestsByUser returns one user's requests, most recent start date first
func (r *Repository) ListRequestsByUser(ctx context.Context, userID uuid.UUID) ([]models.VacationRequest, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+requestColumns+` FROM vacation_requests
		WHERE user_id = $1
		ORDER BY start_date DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list vacation requests for user: %w", err)
	}
	defer rows.Close()

	return collectRequests(rows)
}

// UpdateStatus sets the status of a request
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.RequestStatus) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE vacation_requests SET status = $2 WHERE id = $1`, id, string(status))
	if err != nil {
		return fmt.Errorf("failed to update request status: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteRequest removes a request by ID
func (r *Repository) DeleteRequest(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM vacation_requests WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete vacation request: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// SumApprovedVacationDays totals the approved vacation days booked by a user
func (r *Repository) SumApprovedVacationDays(ctx context.Context, userID uuid.UUID) (int, error) {
	var days int
	err := r.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(end_date::date - start_date::date + 1), 0)
		FROM vacation_requests
		WHERE user_id = $1 AND status = 'APPROVED' AND type = 'VACATION'`,
		userID,
	).Scan(&days)
	if err != nil {
		return 0, fmt.Errorf("failed to sum approved vacation days: %w", err)
	}
	return days, nil
}

// CountApprovedOnDay counts approved requests covering a single day
func (r *Repository) CountApprovedOnDay(ctx context.Context, day time.Time) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM vacation_requests
		WHERE status = 'APPROVED' AND start_date <= $1 AND end_date >= $1`,
		day,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count approved requests for day: %w", err)
	}
	return count, nil
}

// CountApprovedOverlapping counts approved vacation requests overlapping a date range
func (r *Repository) CountApprovedOverlapping(ctx context.Context, start, end time.Time) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM vacation_requests
		WHERE status = 'APPROVED' AND type = 'VACATION'
		  AND start_date <= $2 AND end_date >= $1`,
		start, end,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count overlapping requests: %w", err)
	}
	return count, nil
}

// HasUserOverlap reports whether the user already has a non-rejected
// vacation request overlapping the range
func (r *Repository) HasUserOverlap(ctx context.Context, userID uuid.UUID, start, end time.Time) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM vacation_requests
			WHERE user_id = $1 AND type = 'VACATION' AND status <> 'REJECTED'
			  AND start_date::date <= $3::date AND end_date::date >= $2::date
		)`,
		userID, start, end,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check user overlap: %w", err)
	}
	return exists, nil
}

// ListDraftPicks returns a user's draft picks made at or after since
func (r *Repository) ListDraftPicks(ctx context.Context, userID uuid.UUID, since time.Time) ([]models.VacationRequest, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+requestColumns+` FROM vacation_requests
		WHERE user_id = $1 AND `+draftPickFilter+`$2
		ORDER BY created_at`,
		userID, since,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list draft picks: %w", err)
	}
	defer rows.Close()

	return collectRequests(rows)
}

// DraftPickCounts returns per-user draft pick counts at or after since
func (r *Repository) DraftPickCounts(ctx context.Context, since time.Time) (map[uuid.UUID]int, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT user_id, COUNT(*) FROM vacation_requests
		WHERE `+draftPickFilter+`$1
		GROUP BY user_id`,
		since,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to count draft picks: %w", err)
	}
	defer rows.Close()

	counts := make(map[uuid.UUID]int)
	for rows.Next() {
		var id uuid.UUID
		var count int
		if err := rows.Scan(&id, &count); err != nil {
			return nil, fmt.Errorf("failed to scan draft pick count: %w", err)
		}
		counts[id] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate draft pick counts: %w", err)
	}
	return counts, nil
}

// LatestDraftPick returns the most recent draft pick by a user for a
// given week start date, or ErrNotFound
func (r *Repository) LatestDraftPick(ctx context.Context, userID uuid.UUID, weekStart, since time.Time) (*models.VacationRequest, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+requestColumns+` FROM vacation_requests
		WHERE user_id = $1 AND start_date::date = $2::date AND `+draftPickFilter+`$3
		ORDER BY created_at DESC
		LIMIT 1`,
		userID, weekStart, since,
	)

	pick, err := scanRequest(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get draft pick: %w", err)
	}
	return pick, nil
}

func scanRequest(row interface{ Scan(dest ...any) error }) (*models.VacationRequest, error) {
	var req models.VacationRequest
	var reqType, status string
	var comment sql.NullString
	if err := row.Scan(&req.ID, &req.UserID, &req.StartDate, &req.EndDate,
		&req.IsWeekBooking, &reqType, &status, &comment, &req.CreatedAt); err != nil {
		return nil, err
	}
	req.Type = models.RequestType(reqType)
	req.Status = models.RequestStatus(status)
	req.Comment = sqlutil.FromSqlStringPtr(comment)
	return &req, nil
}

func collectRequests(rows *sql.Rows) ([]models.VacationRequest, error) {
	var out []models.VacationRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan vacation request: %w", err)
		}
		out = append(out, *req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate vacation requests: %w", err)
	}
	return out, nil
}
