package session

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"

	"github.com/dispatchhq/vacdraft/go/internal/models"
	"github.com/dispatchhq/vacdraft/go/internal/users"
)

// fakeStore backs the app with in-memory state: sessions, users,
// bookings, queues and recorded outbox event types.
type fakeStore struct {
	clock    clockwork.Clock
	sessions []*models.DraftSession
	users    []models.User
	bookings []models.VacationRequest
	queues   map[uuid.UUID][]models.DraftQueueItem
	events   []string
}

func newFakeStore(clock clockwork.Clock) *fakeStore {
	return &fakeStore{
		clock:  clock,
		queues: make(map[uuid.UUID][]models.DraftQueueItem),
	}
}

func (f *fakeStore) addDispatcher(badge, weekQuota int) uuid.UUID {
	id := uuid.New()
	f.users = append(f.users, models.User{
		ID:          id,
		Email:       fmt.Sprintf("dispatcher%d@example.com", badge),
		Name:        fmt.Sprintf("Dispatcher %d", badge),
		Role:        models.RoleDispatcher,
		BadgeNumber: badge,
		WeekQuota:   weekQuota,
		TotalQuota:  25,
	})
	return id
}

// SessionRepository

func (f *fakeStore) ActiveSession(ctx context.Context) (*models.DraftSession, error) {
	for _, s := range f.sessions {
		if s.IsActive {
			return s, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) LatestSession(ctx context.Context) (*models.DraftSession, error) {
	if len(f.sessions) == 0 {
		return nil, nil
	}
	return f.sessions[len(f.sessions)-1], nil
}

func (f *fakeStore) HasOpenSession(ctx context.Context) (bool, error) {
	for _, s := range f.sessions {
		if s.IsActive || (s.ScheduledStartTime != nil && s.EndTime == nil) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) DueScheduledSession(ctx context.Context, now time.Time) (*models.DraftSession, error) {
	var due *models.DraftSession
	for _, s := range f.sessions {
		if s.IsActive || s.ScheduledStartTime == nil || s.EndTime != nil {
			continue
		}
		if s.ScheduledStartTime.After(now) {
			continue
		}
		if due == nil || s.ScheduledStartTime.Before(*due.ScheduledStartTime) {
			due = s
		}
	}
	return due, nil
}

func (f *fakeStore) CreateSession(ctx context.Context, s *models.DraftSession) (*models.DraftSession, error) {
	if s.CreatedAt.IsZero() {
		s.CreatedAt = f.clock.Now().UTC()
	}
	f.sessions = append(f.sessions, s)
	return s, nil
}

func (f *fakeStore) UpdateSession(ctx context.Context, s *models.DraftSession) error {
	for i, existing := range f.sessions {
		if existing.ID == s.ID {
			f.sessions[i] = s
			return nil
		}
	}
	return fmt.Errorf("session %s not found", s.ID)
}

func (f *fakeStore) DeleteAllSessions(ctx context.Context) error {
	f.sessions = nil
	return nil
}

// Roster

func (f *fakeStore) DispatcherOrder(ctx context.Context) ([]models.User, error) {
	var out []models.User
	for _, u := range f.users {
		if u.Role == models.RoleDispatcher {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BadgeNumber < out[j].BadgeNumber })
	return out, nil
}

func (f *fakeStore) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			user := u
			return &user, nil
		}
	}
	return nil, users.ErrNotFound
}

// BookingService

func (f *fakeStore) CreateRequest(ctx context.Context, req models.VacationRequest) (bool, string, error) {
	user, err := f.GetUser(ctx, req.UserID)
	if err != nil {
		return false, "User not found.", nil
	}

	requestedDays := int(req.EndDate.Sub(req.StartDate).Hours()/24) + 1
	approvedDays := 0
	for _, b := range f.bookings {
		if b.UserID == req.UserID && b.Status == models.RequestStatusApproved && b.Type == models.RequestTypeVacation {
			approvedDays += int(b.EndDate.Sub(b.StartDate).Hours()/24) + 1
		}
	}
	if approvedDays+requestedDays > user.TotalQuota {
		return false, fmt.Sprintf("Request exceeds your remaining quota. You have %d days left.",
			user.TotalQuota-approvedDays), nil
	}

	for day := req.StartDate; !day.After(req.EndDate); day = day.AddDate(0, 0, 1) {
		count := 0
		for _, b := range f.bookings {
			if b.Status == models.RequestStatusApproved && !b.StartDate.After(day) && !b.EndDate.Before(day) {
				count++
			}
		}
		if count >= 3 {
			return false, fmt.Sprintf("Capacity reached on %s. Max 3 people allowed.",
				day.Format("2006-01-02")), nil
		}
	}

	req.ID = uuid.New()
	req.CreatedAt = f.clock.Now().UTC()
	f.bookings = append(f.bookings, req)
	return true, "Request created successfully.", nil
}

func (f *fakeStore) WeekAvailability(ctx context.Context, weekStart time.Time) (int, int, error) {
	weekEnd := weekStart.AddDate(0, 0, 6)
	taken := 0
	for _, b := range f.bookings {
		if b.Status == models.RequestStatusApproved && !b.StartDate.After(weekEnd) && !b.EndDate.Before(weekStart) {
			taken++
		}
	}
	return taken, 3, nil
}

func (f *fakeStore) HasUserOverlap(ctx context.Context, userID uuid.UUID, start, end time.Time) (bool, error) {
	for _, b := range f.bookings {
		if b.UserID == userID && b.Type == models.RequestTypeVacation && b.Status != models.RequestStatusRejected &&
			!b.StartDate.After(end) && !b.EndDate.Before(start) {
			return true, nil
		}
	}
	return false, nil
}

// PickStore

func isDraftPick(b models.VacationRequest) bool {
	return b.IsWeekBooking &&
		b.Type == models.RequestTypeVacation &&
		b.Status == models.RequestStatusApproved &&
		b.Comment != nil &&
		strings.HasPrefix(*b.Comment, "Draft Round")
}

func (f *fakeStore) DraftPicksForUser(ctx context.Context, userID uuid.UUID, since time.Time) ([]models.VacationRequest, error) {
	var out []models.VacationRequest
	for _, b := range f.bookings {
		if isDraftPick(b) && b.UserID == userID && !b.CreatedAt.Before(since) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeStore) DraftPickCounts(ctx context.Context, since time.Time) (map[uuid.UUID]int, error) {
	counts := make(map[uuid.UUID]int)
	for _, b := range f.bookings {
		if isDraftPick(b) && !b.CreatedAt.Before(since) {
			counts[b.UserID]++
		}
	}
	return counts, nil
}

func (f *fakeStore) LatestDraftPick(ctx context.Context, userID uuid.UUID, weekStart, since time.Time) (*models.VacationRequest, error) {
	var latest *models.VacationRequest
	for i := range f.bookings {
		b := f.bookings[i]
		if !isDraftPick(b) || b.UserID != userID || b.CreatedAt.Before(since) {
			continue
		}
		if !b.StartDate.Equal(weekStart) {
			continue
		}
		if latest == nil || b.CreatedAt.After(latest.CreatedAt) {
			latest = &f.bookings[i]
		}
	}
	return latest, nil
}

func (f *fakeStore) RemovePick(ctx context.Context, id uuid.UUID) error {
	for i, b := range f.bookings {
		if b.ID == id {
			f.bookings = append(f.bookings[:i], f.bookings[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("booking %s not found", id)
}

// QueueStore

func (f *fakeStore) List(ctx context.Context, userID uuid.UUID) ([]models.DraftQueueItem, error) {
	return f.queues[userID], nil
}

func (f *fakeStore) Remove(ctx context.Context, userID, itemID uuid.UUID) (bool, error) {
	items := f.queues[userID]
	for i, item := range items {
		if item.ID == itemID {
			f.queues[userID] = append(items[:i], items[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) addQueueItem(userID uuid.UUID, weekStart time.Time) uuid.UUID {
	id := uuid.New()
	f.queues[userID] = append(f.queues[userID], models.DraftQueueItem{
		ID:            id,
		UserID:        userID,
		WeekStartDate: weekStart,
		QueueOrder:    len(f.queues[userID]) + 1,
	})
	return id
}

// Outbox

func (f *fakeStore) record(eventType string) error {
	f.events = append(f.events, eventType)
	return nil
}

func (f *fakeStore) InsertOutboxDraftScheduled(ctx context.Context, id uuid.UUID, p []byte) error {
	return f.record("DraftScheduled")
}
func (f *fakeStore) InsertOutboxDraftStarted(ctx context.Context, id uuid.UUID, p []byte) error {
	return f.record("DraftStarted")
}
func (f *fakeStore) InsertOutboxDraftPaused(ctx context.Context, id uuid.UUID, p []byte) error {
	return f.record("DraftPaused")
}
func (f *fakeStore) InsertOutboxDraftResumed(ctx context.Context, id uuid.UUID, p []byte) error {
	return f.record("DraftResumed")
}
func (f *fakeStore) InsertOutboxDraftReset(ctx context.Context, id uuid.UUID, p []byte) error {
	return f.record("DraftReset")
}
func (f *fakeStore) InsertOutboxDraftCompleted(ctx context.Context, id uuid.UUID, p []byte) error {
	return f.record("DraftCompleted")
}
func (f *fakeStore) InsertOutboxPickMade(ctx context.Context, id uuid.UUID, p []byte) error {
	return f.record("PickMade")
}
func (f *fakeStore) InsertOutboxPickUndone(ctx context.Context, id uuid.UUID, p []byte) error {
	return f.record("PickUndone")
}
func (f *fakeStore) InsertOutboxTurnAdvanced(ctx context.Context, id uuid.UUID, p []byte) error {
	return f.record("TurnAdvanced")
}

func newTestApp(t *testing.T) (*App, *fakeStore, *clockwork.FakeClock) {
	t.Helper()
	clock := clockwork.NewFakeClockAt(time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC))
	store := newFakeStore(clock)
	app := NewApp(store, store, store, store, store, store, clock)
	return app, store, clock
}

func week(day string) time.Time {
	t, err := time.Parse("2006-01-02", day)
	if err != nil {
		panic(err)
	}
	return t
}

// blockWeekCapacity fills a week with approved bookings by strangers
// so its shared capacity is exhausted.
func blockWeekCapacity(f *fakeStore, weekStart time.Time) {
	for i := 0; i < 3; i++ {
		f.bookings = append(f.bookings, models.VacationRequest{
			ID:        uuid.New(),
			UserID:    uuid.New(),
			StartDate: weekStart,
			EndDate:   weekStart.AddDate(0, 0, 6),
			Type:      models.RequestTypeVacation,
			Status:    models.RequestStatusApproved,
			CreatedAt: f.clock.Now().UTC(),
		})
	}
}

func TestStartDraftImmediate(t *testing.T) {
	app, store, _ := newTestApp(t)
	store.addDispatcher(2, 3)
	first := store.addDispatcher(1, 3)

	res, err := app.StartDraft(context.Background(), nil)
	require.NoError(t, err)
	require.True(t, res.Success)
	require.Equal(t, "Draft started successfully.", res.Message)

	session, err := app.GetActiveSession(context.Background())
	require.NoError(t, err)
	require.NotNil(t, session)
	require.True(t, session.IsActive)
	require.Equal(t, 1, session.CurrentRound)
	require.Equal(t, DefaultTotalRounds, session.TotalRounds)
	require.Equal(t, first, *session.CurrentUserID)
	require.NotNil(t, session.StartTime)
	require.NotNil(t, session.TurnStartTime)
	require.Contains(t, store.events, "DraftStarted")
}

func TestStartDraftRejectsOpenSession(t *testing.T) {
	app, store, _ := newTestApp(t)
	store.addDispatcher(1, 3)

	_, err := app.StartDraft(context.Background(), nil)
	require.NoError(t, err)

	res, err := app.StartDraft(context.Background(), nil)
	require.NoError(t, err)
	require.False(t, res.Success)
	require.Equal(t, "A draft is already active or scheduled.", res.Message)
}

func TestStartDraftRejectsWhenScheduledPending(t *testing.T) {
	app, store, clock := newTestApp(t)
	store.addDispatcher(1, 3)

	future := clock.Now().Add(2 * time.Hour)
	res, err := app.StartDraft(context.Background(), &future)
	require.NoError(t, err)
	require.True(t, res.Success)
	require.Equal(t, "Draft scheduled successfully.", res.Message)

	res, err = app.StartDraft(context.Background(), nil)
	require.NoError(t, err)
	require.False(t, res.Success)
	require.Equal(t, "A draft is already active or scheduled.", res.Message)
}

func TestStartDraftNoDispatchers(t *testing.T) {
	app, _, _ := newTestApp(t)

	res, err := app.StartDraft(context.Background(), nil)
	require.NoError(t, err)
	require.False(t, res.Success)
	require.Equal(t, "No dispatchers found to start a draft.", res.Message)
}

func TestStartDraftScheduledStaysInactive(t *testing.T) {
	app, store, clock := newTestApp(t)
	store.addDispatcher(1, 3)

	future := clock.Now().Add(time.Hour)
	res, err := app.StartDraft(context.Background(), &future)
	require.NoError(t, err)
	require.True(t, res.Success)

	active, err := app.GetActiveSession(context.Background())
	require.NoError(t, err)
	require.Nil(t, active)

	latest, err := app.GetLatestSession(context.Background())
	require.NoError(t, err)
	require.NotNil(t, latest)
	require.False(t, latest.IsActive)
	require.NotNil(t, latest.ScheduledStartTime)
	require.Contains(t, store.events, "DraftScheduled")
}

func TestProcessScheduledDraftsStartsDueSession(t *testing.T) {
	app, store, clock := newTestApp(t)
	first := store.addDispatcher(1, 3)
	store.addDispatcher(2, 3)

	scheduled := clock.Now().Add(time.Hour).UTC()
	_, err := app.StartDraft(context.Background(), &scheduled)
	require.NoError(t, err)

	// Not due yet
	require.NoError(t, app.ProcessScheduledDrafts(context.Background()))
	active, _ := app.GetActiveSession(context.Background())
	require.Nil(t, active)

	clock.Advance(2 * time.Hour)
	require.NoError(t, app.ProcessScheduledDrafts(context.Background()))

	active, err = app.GetActiveSession(context.Background())
	require.NoError(t, err)
	require.NotNil(t, active)
	require.Len(t, store.sessions, 1)
	require.Equal(t, scheduled, *active.StartTime)
	require.Equal(t, first, *active.CurrentUserID)
	require.Equal(t, 1, active.CurrentRound)
}

func TestPauseAndResume(t *testing.T) {
	app, store, clock := newTestApp(t)
	userID := store.addDispatcher(1, 3)

	ok, err := app.PauseDraft(context.Background())
	require.NoError(t, err)
	require.False(t, ok)

	_, err = app.StartDraft(context.Background(), nil)
	require.NoError(t, err)

	ok, err = app.PauseDraft(context.Background())
	require.NoError(t, err)
	require.True(t, ok)

	res, err := app.MakePick(context.Background(), userID, week("2024-06-03"))
	require.NoError(t, err)
	require.False(t, res.Success)
	require.Equal(t, "Draft is not active or is paused.", res.Message)

	clock.Advance(10 * time.Minute)
	ok, err = app.ResumeDraft(context.Background())
	require.NoError(t, err)
	require.True(t, ok)

	session, _ := app.GetActiveSession(context.Background())
	require.False(t, session.IsPaused)
	require.Equal(t, clock.Now().UTC(), *session.TurnStartTime)
	require.Contains(t, store.events, "DraftPaused")
	require.Contains(t, store.events, "DraftResumed")
}

func TestResetDraftIsIdempotent(t *testing.T) {
	app, store, _ := newTestApp(t)
	store.addDispatcher(1, 3)

	_, err := app.StartDraft(context.Background(), nil)
	require.NoError(t, err)

	ok, err := app.ResetDraft(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	require.Empty(t, store.sessions)

	ok, err = app.ResetDraft(context.Background())
	require.NoError(t, err)
	require.True(t, ok)

	// A new draft can start after reset
	res, err := app.StartDraft(context.Background(), nil)
	require.NoError(t, err)
	require.True(t, res.Success)
}

func TestMakePickWrongTurn(t *testing.T) {
	app, store, _ := newTestApp(t)
	store.addDispatcher(1, 3)
	second := store.addDispatcher(2, 3)

	_, err := app.StartDraft(context.Background(), nil)
	require.NoError(t, err)

	res, err := app.MakePick(context.Background(), second, week("2024-06-03"))
	require.NoError(t, err)
	require.False(t, res.Success)
	require.Equal(t, "It is not your turn.", res.Message)
}

func TestMakePickBooksWeekAndKeepsTurn(t *testing.T) {
	app, store, _ := newTestApp(t)
	first := store.addDispatcher(1, 3)
	store.addDispatcher(2, 3)

	_, err := app.StartDraft(context.Background(), nil)
	require.NoError(t, err)

	res, err := app.MakePick(context.Background(), first, week("2024-06-03"))
	require.NoError(t, err)
	require.True(t, res.Success)
	require.Equal(t, "Pick successful.", res.Message)

	picks, err := store.DraftPicksForUser(context.Background(), first, time.Time{})
	require.NoError(t, err)
	require.Len(t, picks, 1)
	require.Equal(t, week("2024-06-03"), picks[0].StartDate)
	require.Equal(t, week("2024-06-09"), picks[0].EndDate)
	require.True(t, picks[0].IsWeekBooking)
	require.Equal(t, models.RequestStatusApproved, picks[0].Status)
	require.Equal(t, "Draft Round 1", *picks[0].Comment)

	// Allowance and adjacent weeks remain, so the turn stays
	session, _ := app.GetActiveSession(context.Background())
	require.Equal(t, first, *session.CurrentUserID)
	require.Contains(t, store.events, "PickMade")
	require.NotContains(t, store.events, "TurnAdvanced")
}

func TestMakePickRejectsNonConsecutiveInSameTurn(t *testing.T) {
	app, store, _ := newTestApp(t)
	first := store.addDispatcher(1, 3)
	store.addDispatcher(2, 3)

	_, err := app.StartDraft(context.Background(), nil)
	require.NoError(t, err)

	res, err := app.MakePick(context.Background(), first, week("2024-06-03"))
	require.NoError(t, err)
	require.True(t, res.Success)

	res, err = app.MakePick(context.Background(), first, week("2024-06-17"))
	require.NoError(t, err)
	require.False(t, res.Success)
	require.Equal(t, "Non-consecutive picks must be taken one at a time.", res.Message)

	// The directly adjacent week is fine
	res, err = app.MakePick(context.Background(), first, week("2024-06-10"))
	require.NoError(t, err)
	require.True(t, res.Success)
}

func TestMakePickAdvancesWhenAllowanceSpent(t *testing.T) {
	app, store, _ := newTestApp(t)
	first := store.addDispatcher(1, 1)
	second := store.addDispatcher(2, 3)

	_, err := app.StartDraft(context.Background(), nil)
	require.NoError(t, err)

	res, err := app.MakePick(context.Background(), first, week("2024-06-03"))
	require.NoError(t, err)
	require.True(t, res.Success)

	session, _ := app.GetActiveSession(context.Background())
	require.Equal(t, second, *session.CurrentUserID)
	require.Contains(t, store.events, "TurnAdvanced")

	res, err = app.MakePick(context.Background(), first, week("2024-06-10"))
	require.NoError(t, err)
	require.False(t, res.Success)
	require.Equal(t, "It is not your turn.", res.Message)
}

func TestMakePickAdvancesWhenNoAdjacentWeekOpen(t *testing.T) {
	app, store, _ := newTestApp(t)
	first := store.addDispatcher(1, 3)
	second := store.addDispatcher(2, 3)

	// One neighbor at shared capacity, the other colliding with the
	// dispatcher's own pending request.
	blockWeekCapacity(store, week("2024-06-10"))
	store.bookings = append(store.bookings, models.VacationRequest{
		ID:        uuid.New(),
		UserID:    first,
		StartDate: week("2024-05-27"),
		EndDate:   week("2024-06-02"),
		Type:      models.RequestTypeVacation,
		Status:    models.RequestStatusPending,
		CreatedAt: store.clock.Now().UTC(),
	})

	_, err := app.StartDraft(context.Background(), nil)
	require.NoError(t, err)

	res, err := app.MakePick(context.Background(), first, week("2024-06-03"))
	require.NoError(t, err)
	require.True(t, res.Success)

	session, _ := app.GetActiveSession(context.Background())
	require.Equal(t, second, *session.CurrentUserID)
}

func TestMakePickAtCap(t *testing.T) {
	app, store, _ := newTestApp(t)
	first := store.addDispatcher(1, 2)

	_, err := app.StartDraft(context.Background(), nil)
	require.NoError(t, err)

	res, err := app.MakePick(context.Background(), first, week("2024-06-03"))
	require.NoError(t, err)
	require.True(t, res.Success)

	res, err = app.MakePick(context.Background(), first, week("2024-06-10"))
	require.NoError(t, err)
	require.True(t, res.Success)

	// Allowance spent completes the single-dispatcher draft
	session, _ := app.GetLatestSession(context.Background())
	require.False(t, session.IsActive)
	require.NotNil(t, session.EndTime)
	require.Contains(t, store.events, "DraftCompleted")
}

func TestUndoPick(t *testing.T) {
	app, store, _ := newTestApp(t)
	first := store.addDispatcher(1, 3)
	store.addDispatcher(2, 3)

	_, err := app.StartDraft(context.Background(), nil)
	require.NoError(t, err)

	_, err = app.MakePick(context.Background(), first, week("2024-06-03"))
	require.NoError(t, err)

	res, err := app.UndoPick(context.Background(), first, week("2024-06-03"))
	require.NoError(t, err)
	require.True(t, res.Success)
	require.Equal(t, "Pick undone.", res.Message)

	picks, _ := store.DraftPicksForUser(context.Background(), first, time.Time{})
	require.Empty(t, picks)
	require.Contains(t, store.events, "PickUndone")

	res, err = app.UndoPick(context.Background(), first, week("2024-06-03"))
	require.NoError(t, err)
	require.False(t, res.Success)
	require.Equal(t, "Pick not found.", res.Message)
}

func TestUndoPickFromPreviousTurn(t *testing.T) {
	app, store, clock := newTestApp(t)
	first := store.addDispatcher(1, 3)

	_, err := app.StartDraft(context.Background(), nil)
	require.NoError(t, err)

	_, err = app.MakePick(context.Background(), first, week("2024-06-03"))
	require.NoError(t, err)

	clock.Advance(time.Minute)
	res, err := app.EndTurn(context.Background(), first)
	require.NoError(t, err)
	require.True(t, res.Success)

	// Same dispatcher again, round 2, fresh turn clock
	session, _ := app.GetActiveSession(context.Background())
	require.Equal(t, 2, session.CurrentRound)

	res, err = app.UndoPick(context.Background(), first, week("2024-06-03"))
	require.NoError(t, err)
	require.False(t, res.Success)
	require.Equal(t, "Only picks from the current turn can be undone.", res.Message)

	picks, _ := store.DraftPicksForUser(context.Background(), first, time.Time{})
	require.Len(t, picks, 1)
}

func TestEndTurnRequiresPick(t *testing.T) {
	app, store, _ := newTestApp(t)
	first := store.addDispatcher(1, 3)

	_, err := app.StartDraft(context.Background(), nil)
	require.NoError(t, err)

	res, err := app.EndTurn(context.Background(), first)
	require.NoError(t, err)
	require.False(t, res.Success)
	require.Equal(t, "Make a pick before ending your turn.", res.Message)
}

func TestEndTurnAdvances(t *testing.T) {
	app, store, _ := newTestApp(t)
	first := store.addDispatcher(1, 3)
	second := store.addDispatcher(2, 3)

	_, err := app.StartDraft(context.Background(), nil)
	require.NoError(t, err)

	_, err = app.MakePick(context.Background(), first, week("2024-06-03"))
	require.NoError(t, err)

	res, err := app.EndTurn(context.Background(), first)
	require.NoError(t, err)
	require.True(t, res.Success)
	require.Equal(t, "Turn ended.", res.Message)

	session, _ := app.GetActiveSession(context.Background())
	require.Equal(t, second, *session.CurrentUserID)
	require.Equal(t, 1, session.CurrentRound)
}

func TestDraftCompletesWhenEveryoneExhausted(t *testing.T) {
	app, store, _ := newTestApp(t)
	first := store.addDispatcher(1, 1)
	second := store.addDispatcher(2, 1)

	_, err := app.StartDraft(context.Background(), nil)
	require.NoError(t, err)

	res, err := app.MakePick(context.Background(), first, week("2024-06-03"))
	require.NoError(t, err)
	require.True(t, res.Success)

	res, err = app.MakePick(context.Background(), second, week("2024-06-10"))
	require.NoError(t, err)
	require.True(t, res.Success)

	session, _ := app.GetLatestSession(context.Background())
	require.False(t, session.IsActive)
	require.NotNil(t, session.EndTime)
	require.Contains(t, store.events, "DraftCompleted")
}

func TestTurnTimeoutConsumesQueue(t *testing.T) {
	app, store, clock := newTestApp(t)
	first := store.addDispatcher(1, 2)
	second := store.addDispatcher(2, 2)

	// First queued week is at shared capacity; the second is open.
	blockWeekCapacity(store, week("2024-06-10"))
	blocked := store.addQueueItem(first, week("2024-06-10"))
	store.addQueueItem(first, week("2024-06-03"))

	_, err := app.StartDraft(context.Background(), nil)
	require.NoError(t, err)

	// Still inside the timeout window
	clock.Advance(4 * time.Minute)
	require.NoError(t, app.ProcessTurnTimeout(context.Background()))
	session, _ := app.GetActiveSession(context.Background())
	require.Equal(t, first, *session.CurrentUserID)

	clock.Advance(2 * time.Minute)
	require.NoError(t, app.ProcessTurnTimeout(context.Background()))

	picks, _ := store.DraftPicksForUser(context.Background(), first, time.Time{})
	require.Len(t, picks, 1)
	require.Equal(t, week("2024-06-03"), picks[0].StartDate)

	// Single-pick semantics: the turn moved on immediately
	session, _ = app.GetActiveSession(context.Background())
	require.Equal(t, second, *session.CurrentUserID)

	// Only the converted item was consumed
	remaining := store.queues[first]
	require.Len(t, remaining, 1)
	require.Equal(t, blocked, remaining[0].ID)
}

func TestTurnTimeoutForceAdvancesWithoutQueue(t *testing.T) {
	app, store, clock := newTestApp(t)
	first := store.addDispatcher(1, 2)
	second := store.addDispatcher(2, 2)

	_, err := app.StartDraft(context.Background(), nil)
	require.NoError(t, err)

	clock.Advance(TurnTimeout + time.Second)
	require.NoError(t, app.ProcessTurnTimeout(context.Background()))

	session, _ := app.GetActiveSession(context.Background())
	require.Equal(t, second, *session.CurrentUserID)

	picks, _ := store.DraftPicksForUser(context.Background(), first, time.Time{})
	require.Empty(t, picks)
}

func TestTurnTimeoutIgnoresPausedSession(t *testing.T) {
	app, store, clock := newTestApp(t)
	first := store.addDispatcher(1, 2)
	store.addDispatcher(2, 2)

	_, err := app.StartDraft(context.Background(), nil)
	require.NoError(t, err)

	_, err = app.PauseDraft(context.Background())
	require.NoError(t, err)

	clock.Advance(TurnTimeout + time.Minute)
	require.NoError(t, app.ProcessTurnTimeout(context.Background()))

	session, _ := app.GetActiveSession(context.Background())
	require.Equal(t, first, *session.CurrentUserID)
}
