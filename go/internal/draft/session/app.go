package session

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/dispatchhq/vacdraft/go/internal/models"
)

// SessionRepository defines what the app layer needs from the session repository
type SessionRepository interface {
	ActiveSession(ctx context.Context) (*models.DraftSession, error)
	LatestSession(ctx context.Context) (*models.DraftSession, error)
	HasOpenSession(ctx context.Context) (bool, error)
	DueScheduledSession(ctx context.Context, now time.Time) (*models.DraftSession, error)
	CreateSession(ctx context.Context, s *models.DraftSession) (*models.DraftSession, error)
	UpdateSession(ctx context.Context, s *models.DraftSession) error
	DeleteAllSessions(ctx context.Context) error
}

// Roster defines what the app layer needs from the user directory
type Roster interface {
	DispatcherOrder(ctx context.Context) ([]models.User, error)
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// BookingService defines what the app layer needs from the vacation service
// to turn picks into bookings and to probe week availability
type BookingService interface {
	CreateRequest(ctx context.Context, req models.VacationRequest) (bool, string, error)
	WeekAvailability(ctx context.Context, weekStart time.Time) (int, int, error)
	HasUserOverlap(ctx context.Context, userID uuid.UUID, start, end time.Time) (bool, error)
}

// PickStore defines what the app layer needs to read and undo committed picks
type PickStore interface {
	DraftPicksForUser(ctx context.Context, userID uuid.UUID, since time.Time) ([]models.VacationRequest, error)
	DraftPickCounts(ctx context.Context, since time.Time) (map[uuid.UUID]int, error)
	LatestDraftPick(ctx context.Context, userID uuid.UUID, weekStart, since time.Time) (*models.VacationRequest, error)
	RemovePick(ctx context.Context, id uuid.UUID) error
}

// QueueStore defines what the timeout path needs from the pick queue
type QueueStore interface {
	List(ctx context.Context, userID uuid.UUID) ([]models.DraftQueueItem, error)
	Remove(ctx context.Context, userID, itemID uuid.UUID) (bool, error)
}

// Outbox records draft change events for at-least-once delivery
type Outbox interface {
	InsertOutboxDraftScheduled(ctx context.Context, sessionID uuid.UUID, payload []byte) error
	InsertOutboxDraftStarted(ctx context.Context, sessionID uuid.UUID, payload []byte) error
	InsertOutboxDraftPaused(ctx context.Context, sessionID uuid.UUID, payload []byte) error
	InsertOutboxDraftResumed(ctx context.Context, sessionID uuid.UUID, payload []byte) error
	InsertOutboxDraftReset(ctx context.Context, sessionID uuid.UUID, payload []byte) error
	InsertOutboxDraftCompleted(ctx context.Context, sessionID uuid.UUID, payload []byte) error
	InsertOutboxPickMade(ctx context.Context, sessionID uuid.UUID, payload []byte) error
	InsertOutboxPickUndone(ctx context.Context, sessionID uuid.UUID, payload []byte) error
	InsertOutboxTurnAdvanced(ctx context.Context, sessionID uuid.UUID, payload []byte) error
}

// App runs the draft turn engine: session lifecycle, pick validation,
// turn advancement and the sweep entry points.
type App struct {
	repo    SessionRepository
	roster  Roster
	booking BookingService
	picks   PickStore
	queue   QueueStore
	outbox  Outbox
	clock   clockwork.Clock
}

// NewApp creates a new draft session App
func NewApp(repo SessionRepository, roster Roster, booking BookingService, picks PickStore, queue QueueStore, outbox Outbox, clock clockwork.Clock) *App {
	return &App{
		repo:    repo,
		roster:  roster,
		booking: booking,
		picks:   picks,
		queue:   queue,
		outbox:  outbox,
		clock:   clock,
	}
}

// GetActiveSession returns the active session, or nil when none exists
func (a *App) GetActiveSession(ctx context.Context) (*models.DraftSession, error) {
	return a.repo.ActiveSession(ctx)
}

// GetLatestSession returns the most recently created session, or nil
func (a *App) GetLatestSession(ctx context.Context) (*models.DraftSession, error) {
	return a.repo.LatestSession(ctx)
}

// GetDispatcherOrder returns the dispatchers in draft turn order
func (a *App) GetDispatcherOrder(ctx context.Context) ([]models.User, error) {
	return a.roster.DispatcherOrder(ctx)
}

// StartDraft starts a draft immediately, or schedules one when
// scheduledAt lies in the future. At most one session may be active or
// pending-scheduled at a time.
func (a *App) StartDraft(ctx context.Context, scheduledAt *time.Time) (Result, error) {
	open, err := a.repo.HasOpenSession(ctx)
	if err != nil {
		return Result{}, err
	}
	if open {
		return Result{Success: false, Message: "A draft is already active or scheduled."}, nil
	}

	dispatchers, err := a.roster.DispatcherOrder(ctx)
	if err != nil {
		return Result{}, err
	}
	if len(dispatchers) == 0 {
		return Result{Success: false, Message: "No dispatchers found to start a draft."}, nil
	}

	now := a.clock.Now().UTC()
	if scheduledAt != nil && scheduledAt.After(now) {
		session := &models.DraftSession{
			ID:                 uuid.New(),
			IsActive:           false,
			ScheduledStartTime: scheduledAt,
			CurrentRound:       1,
			TotalRounds:        DefaultTotalRounds,
		}
		created, err := a.repo.CreateSession(ctx, session)
		if err != nil {
			return Result{}, fmt.Errorf("failed to schedule draft: %w", err)
		}

		a.emitDraftScheduled(ctx, created)
		log.Printf("Scheduled draft %s for %s", created.ID, scheduledAt.Format(time.RFC3339))
		return Result{Success: true, Message: "Draft scheduled successfully."}, nil
	}

	return a.startSession(ctx, dispatchers, now, nil)
}

// startSession activates a session, reusing an existing scheduled row
// when one is passed in. The lowest badge number always opens round 1.
func (a *App) startSession(ctx context.Context, dispatchers []models.User, startTime time.Time, existing *models.DraftSession) (Result, error) {
	if len(dispatchers) == 0 {
		return Result{Success: false, Message: "No dispatchers found to start a draft."}, nil
	}

	session := existing
	if session == nil {
		session = &models.DraftSession{ID: uuid.New()}
	}
	session.IsActive = true
	session.IsPaused = false
	session.StartTime = &startTime
	session.CurrentUserID = &dispatchers[0].ID
	session.TurnStartTime = &startTime
	session.CurrentRound = 1
	session.TotalRounds = DefaultTotalRounds

	if existing == nil {
		created, err := a.repo.CreateSession(ctx, session)
		if err != nil {
			return Result{}, fmt.Errorf("failed to start draft: %w", err)
		}
		session = created
	} else if err := a.repo.UpdateSession(ctx, session); err != nil {
		return Result{}, fmt.Errorf("failed to start draft: %w", err)
	}

	a.emitDraftStarted(ctx, session)
	log.Printf("Started draft %s with %d dispatchers", session.ID, len(dispatchers))
	return Result{Success: true, Message: "Draft started successfully."}, nil
}

// PauseDraft pauses the active session. Returns false when no session
// is active.
func (a *App) PauseDraft(ctx context.Context) (bool, error) {
	session, err := a.repo.ActiveSession(ctx)
	if err != nil {
		return false, err
	}
	if session == nil {
		return false, nil
	}

	session.IsPaused = true
	if err := a.repo.UpdateSession(ctx, session); err != nil {
		return false, fmt.Errorf("failed to pause draft: %w", err)
	}

	a.emitDraftPaused(ctx, session)
	return true, nil
}

// ResumeDraft unpauses the active session and resets the turn clock so
// the current dispatcher gets a fresh timeout window.
func (a *App) ResumeDraft(ctx context.Context) (bool, error) {
	session, err := a.repo.ActiveSession(ctx)
	if err != nil {
		return false, err
	}
	if session == nil {
		return false, nil
	}

	now := a.clock.Now().UTC()
	session.IsPaused = false
	session.TurnStartTime = &now
	if err := a.repo.UpdateSession(ctx, session); err != nil {
		return false, fmt.Errorf("failed to resume draft: %w", err)
	}

	a.emitDraftResumed(ctx, session)
	return true, nil
}

// ResetDraft discards every session row. Committed picks survive as
// regular approved bookings. Safe to call with no sessions present.
func (a *App) ResetDraft(ctx context.Context) (bool, error) {
	latest, err := a.repo.LatestSession(ctx)
	if err != nil {
		return false, err
	}

	if err := a.repo.DeleteAllSessions(ctx); err != nil {
		return false, fmt.Errorf("failed to reset draft: %w", err)
	}

	if latest != nil {
		a.emitDraftReset(ctx, latest)
	}
	log.Printf("Reset draft state")
	return true, nil
}

// sessionStart is the cutoff for counting a session's picks.
func sessionStart(s *models.DraftSession) time.Time {
	if s.StartTime != nil {
		return *s.StartTime
	}
	return time.Time{}
}
