package vacation

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/dispatchhq/vacdraft/go/internal/models"
	"github.com/dispatchhq/vacdraft/go/internal/users"
)

// MaxConcurrentVacations is the shared capacity ceiling: at most this
// many approved bookings may cover any single day or week.
const MaxConcurrentVacations = 3

// RequestRepository defines what the app layer needs from the vacation repository
type RequestRepository interface {
	CreateRequest(ctx context.Context, req models.VacationRequest) (*models.VacationRequest, error)
	GetRequest(ctx context.Context, id uuid.UUID) (*models.VacationRequest, error)
	ListRequests(ctx context.Context) ([]models.VacationRequest, error)
	ListRequestsByUser(ctx context.Context, userID uuid.UUID) ([]models.VacationRequest, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.RequestStatus) error
	DeleteRequest(ctx context.Context, id uuid.UUID) error
	SumApprovedVacationDays(ctx context.Context, userID uuid.UUID) (int, error)
	CountApprovedOnDay(ctx context.Context, day time.Time) (int, error)
	CountApprovedOverlapping(ctx context.Context, start, end time.Time) (int, error)
	HasUserOverlap(ctx context.Context, userID uuid.UUID, start, end time.Time) (bool, error)
	ListDraftPicks(ctx context.Context, userID uuid.UUID, since time.Time) ([]models.VacationRequest, error)
	DraftPickCounts(ctx context.Context, since time.Time) (map[uuid.UUID]int, error)
	LatestDraftPick(ctx context.Context, userID uuid.UUID, weekStart, since time.Time) (*models.VacationRequest, error)
}

// UserDirectory defines what the app layer needs from the user directory
type UserDirectory interface {
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// App handles vacation request business logic: quota validation,
// capacity validation and plain request CRUD
type App struct {
	repo  RequestRepository
	users UserDirectory
}

// NewApp creates a new vacation App
func NewApp(repo RequestRepository, users UserDirectory) *App {
	return &App{repo: repo, users: users}
}

// CreateRequest validates a booking against the owner's total quota and
// the shared capacity ceiling, then persists it. Business rejections
// come back as (false, message); only infrastructure failures error.
func (a *App) CreateRequest(ctx context.Context, req models.VacationRequest) (bool, string, error) {
	user, err := a.users.GetUser(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return false, "User not found.", nil
		}
		return false, "", fmt.Errorf("failed to load user: %w", err)
	}

	requestedDays := daysInclusive(req.StartDate, req.EndDate)
	if requestedDays <= 0 {
		return false, "End date must not be before start date.", nil
	}

	approvedDays, err := a.repo.SumApprovedVacationDays(ctx, req.UserID)
	if err != nil {
		return false, "", err
	}
	if approvedDays+requestedDays > user.TotalQuota {
		return false, fmt.Sprintf("Request exceeds your remaining quota. You have %d days left.",
			user.TotalQuota-approvedDays), nil
	}

	for day := req.StartDate; !day.After(req.EndDate); day = day.AddDate(0, 0, 1) {
		count, err := a.repo.CountApprovedOnDay(ctx, day)
		if err != nil {
			return false, "", err
		}
		if count >= MaxConcurrentVacations {
			return false, fmt.Sprintf("Capacity reached on %s. Max %d people allowed.",
				day.Format("2006-01-02"), MaxConcurrentVacations), nil
		}
	}

	if _, err := a.repo.CreateRequest(ctx, req); err != nil {
		return false, "", err
	}

	log.Printf("Created %s request for user %s (%s to %s)",
		req.Type, req.UserID, req.StartDate.Format("2006-01-02"), req.EndDate.Format("2006-01-02"))
	return true, "Request created successfully.", nil
}

// WeekAvailability reports how many approved bookings already overlap
// the week starting at weekStart, and the capacity ceiling.
func (a *App) WeekAvailability(ctx context.Context, weekStart time.Time) (int, int, error) {
	taken, err := a.repo.CountApprovedOverlapping(ctx, weekStart, weekStart.AddDate(0, 0, 6))
	if err != nil {
		return 0, 0, err
	}
	return taken, MaxConcurrentVacations, nil
}

// HasUserOverlap reports whether the user already has a non-rejected
// vacation overlapping the range.
func (a *App) HasUserOverlap(ctx context.Context, userID uuid.UUID, start, end time.Time) (bool, error) {
	return a.repo.HasUserOverlap(ctx, userID, start, end)
}

// ListRequests returns all requests
func (a *App) ListRequests(ctx context.Context) ([]models.VacationRequest, error) {
	return a.repo.ListRequests(ctx)
}

// ListRequestsByUser returns one user's requests
func (a *App) ListRequestsByUser(ctx context.Context, userID uuid.UUID) ([]models.VacationRequest, error) {
	return a.repo.ListRequestsByUser(ctx, userID)
}

// UpdateStatus sets the approval status of a request
func (a *App) UpdateStatus(ctx context.Context, id uuid.UUID, status models.RequestStatus) error {
	switch status {
	case models.RequestStatusPending, models.RequestStatusApproved, models.RequestStatusRejected:
	default:
		return fmt.Errorf("invalid status: %s", status)
	}
	return a.repo.UpdateStatus(ctx, id, status)
}

// DeleteRequest removes a request
func (a *App) DeleteRequest(ctx context.Context, id uuid.UUID) error {
	return a.repo.DeleteRequest(ctx, id)
}

// DraftPicksForUser returns a user's draft picks made at or after since
func (a *App) DraftPicksForUser(ctx context.Context, userID uuid.UUID, since time.Time) ([]models.VacationRequest, error) {
	return a.repo.ListDraftPicks(ctx, userID, since)
}

// DraftPickCounts returns per-user draft pick counts at or after since
func (a *App) DraftPickCounts(ctx context.Context, since time.Time) (map[uuid.UUID]int, error) {
	return a.repo.DraftPickCounts(ctx, since)
}

// LatestDraftPick returns the newest draft pick by a user for a week,
// or nil when none exists.
func (a *App) LatestDraftPick(ctx context.Context, userID uuid.UUID, weekStart, since time.Time) (*models.VacationRequest, error) {
	pick, err := a.repo.LatestDraftPick(ctx, userID, weekStart, since)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return pick, nil
}

// RemovePick deletes a pick's underlying booking
func (a *App) RemovePick(ctx context.Context, id uuid.UUID) error {
	return a.repo.DeleteRequest(ctx, id)
}

func daysInclusive(start, end time.Time) int {
	return int(end.Sub(start).Hours()/24) + 1
}
