package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dispatchhq/vacdraft/go/internal/models"
	"github.com/dispatchhq/vacdraft/go/internal/users"
)

// MakePick claims the week starting at weekStart for the current
// dispatcher. Consecutive weeks may be claimed in the same turn; the
// turn advances once the dispatcher's allowance is spent or no
// adjacent week remains open.
func (a *App) MakePick(ctx context.Context, userID uuid.UUID, weekStart time.Time) (Result, error) {
	return a.makePick(ctx, userID, weekStart, true)
}

func (a *App) makePick(ctx context.Context, userID uuid.UUID, weekStart time.Time, allowConsecutivePicks bool) (Result, error) {
	session, err := a.repo.ActiveSession(ctx)
	if err != nil {
		return Result{}, err
	}
	if session == nil || session.IsPaused {
		return Result{Success: false, Message: "Draft is not active or is paused."}, nil
	}
	if session.CurrentUserID == nil || *session.CurrentUserID != userID {
		return Result{Success: false, Message: "It is not your turn."}, nil
	}

	user, err := a.roster.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return Result{Success: false, Message: "User not found."}, nil
		}
		return Result{}, err
	}

	maxPicks := maxPicksFor(session.TotalRounds, user.WeekQuota)
	since := sessionStart(session)
	draftPicks, err := a.picks.DraftPicksForUser(ctx, userID, since)
	if err != nil {
		return Result{}, err
	}
	if len(draftPicks) >= maxPicks {
		return Result{Success: false, Message: "You have already used all your draft picks."}, nil
	}

	if allowConsecutivePicks && session.TurnStartTime != nil {
		turnPicks := picksSince(draftPicks, *session.TurnStartTime)
		if len(turnPicks) > 0 && !anyConsecutive(turnPicks, weekStart) {
			return Result{Success: false, Message: "Non-consecutive picks must be taken one at a time."}, nil
		}
	}

	comment := fmt.Sprintf("%s %d", draftCommentPrefix, session.CurrentRound)
	request := models.VacationRequest{
		UserID:        userID,
		StartDate:     weekStart,
		EndDate:       weekStart.AddDate(0, 0, 6),
		IsWeekBooking: true,
		Type:          models.RequestTypeVacation,
		Status:        models.RequestStatusApproved,
		Comment:       &comment,
	}

	ok, msg, err := a.booking.CreateRequest(ctx, request)
	if err != nil {
		return Result{}, err
	}
	if !ok {
		return Result{Success: false, Message: msg}, nil
	}

	a.emitPickMade(ctx, session, userID, weekStart, !allowConsecutivePicks)

	if !allowConsecutivePicks {
		if err := a.advanceTurn(ctx, session); err != nil {
			return Result{}, err
		}
		return Result{Success: true, Message: "Pick successful."}, nil
	}

	picked := make(map[time.Time]bool, len(draftPicks)+1)
	for _, p := range draftPicks {
		picked[dateOnly(p.StartDate)] = true
	}
	picked[dateOnly(weekStart)] = true

	remaining := maxPicks - len(picked)
	hasAdjacent, err := a.hasAdjacentAvailableWeek(ctx, userID, picked)
	if err != nil {
		return Result{}, err
	}

	if remaining <= 0 || !hasAdjacent {
		if err := a.advanceTurn(ctx, session); err != nil {
			return Result{}, err
		}
	}

	return Result{Success: true, Message: "Pick successful."}, nil
}

// UndoPick removes a pick the current dispatcher made during this turn.
func (a *App) UndoPick(ctx context.Context, userID uuid.UUID, weekStart time.Time) (Result, error) {
	session, err := a.repo.ActiveSession(ctx)
	if err != nil {
		return Result{}, err
	}
	if session == nil || session.IsPaused {
		return Result{Success: false, Message: "Draft is not active or is paused."}, nil
	}
	if session.CurrentUserID == nil || *session.CurrentUserID != userID {
		return Result{Success: false, Message: "It is not your turn."}, nil
	}
	if session.TurnStartTime == nil {
		return Result{Success: false, Message: "Turn start time is missing."}, nil
	}

	pick, err := a.picks.LatestDraftPick(ctx, userID, weekStart, sessionStart(session))
	if err != nil {
		return Result{}, err
	}
	if pick == nil {
		return Result{Success: false, Message: "Pick not found."}, nil
	}
	if pick.CreatedAt.Before(*session.TurnStartTime) {
		return Result{Success: false, Message: "Only picks from the current turn can be undone."}, nil
	}

	if err := a.picks.RemovePick(ctx, pick.ID); err != nil {
		return Result{}, err
	}

	a.emitPickUndone(ctx, session, userID, weekStart)
	return Result{Success: true, Message: "Pick undone."}, nil
}

// EndTurn passes the turn voluntarily. At least one pick must have
// been made this turn.
func (a *App) EndTurn(ctx context.Context, userID uuid.UUID) (Result, error) {
	session, err := a.repo.ActiveSession(ctx)
	if err != nil {
		return Result{}, err
	}
	if session == nil || session.IsPaused {
		return Result{Success: false, Message: "Draft is not active or is paused."}, nil
	}
	if session.CurrentUserID == nil || *session.CurrentUserID != userID {
		return Result{Success: false, Message: "It is not your turn."}, nil
	}
	if session.TurnStartTime == nil {
		return Result{Success: false, Message: "Turn start time is missing."}, nil
	}

	draftPicks, err := a.picks.DraftPicksForUser(ctx, userID, sessionStart(session))
	if err != nil {
		return Result{}, err
	}
	if len(picksSince(draftPicks, *session.TurnStartTime)) == 0 {
		return Result{Success: false, Message: "Make a pick before ending your turn."}, nil
	}

	if err := a.advanceTurn(ctx, session); err != nil {
		return Result{}, err
	}
	return Result{Success: true, Message: "Turn ended."}, nil
}

// advanceTurn hands the turn to the next eligible dispatcher, stepping
// the round on wrap and ending the session when nobody has picks left
// or the final round closes.
func (a *App) advanceTurn(ctx context.Context, session *models.DraftSession) error {
	dispatchers, err := a.roster.DispatcherOrder(ctx)
	if err != nil {
		return err
	}
	if len(dispatchers) == 0 {
		return a.complete(ctx, session)
	}

	pickCounts, err := a.picks.DraftPickCounts(ctx, sessionStart(session))
	if err != nil {
		return err
	}

	roster := make([]RosterEntry, len(dispatchers))
	for i, d := range dispatchers {
		roster[i] = RosterEntry{UserID: d.ID, MaxPicks: maxPicksFor(session.TotalRounds, d.WeekQuota)}
	}

	currentID := uuid.Nil
	if session.CurrentUserID != nil {
		currentID = *session.CurrentUserID
	}

	res := nextTurn(roster, pickCounts, currentID)
	if res.End {
		return a.complete(ctx, session)
	}
	if res.Wrapped {
		if session.CurrentRound >= session.TotalRounds {
			return a.complete(ctx, session)
		}
		session.CurrentRound++
	}

	now := a.clock.Now().UTC()
	next := res.NextUserID
	session.CurrentUserID = &next
	session.TurnStartTime = &now
	if err := a.repo.UpdateSession(ctx, session); err != nil {
		return fmt.Errorf("failed to advance turn: %w", err)
	}

	a.emitTurnAdvanced(ctx, session)
	return nil
}

// complete closes out the session.
func (a *App) complete(ctx context.Context, session *models.DraftSession) error {
	now := a.clock.Now().UTC()
	session.IsActive = false
	session.EndTime = &now
	if err := a.repo.UpdateSession(ctx, session); err != nil {
		return fmt.Errorf("failed to complete draft: %w", err)
	}

	a.emitDraftCompleted(ctx, session)
	return nil
}

// hasAdjacentAvailableWeek probes the weeks directly before and after
// every picked week: an unclaimed neighbor that neither collides with
// the dispatcher's own bookings nor sits at capacity keeps the turn
// going.
func (a *App) hasAdjacentAvailableWeek(ctx context.Context, userID uuid.UUID, picked map[time.Time]bool) (bool, error) {
	seen := make(map[time.Time]bool)
	for week := range picked {
		for _, candidate := range []time.Time{week.AddDate(0, 0, -7), week.AddDate(0, 0, 7)} {
			candidate = dateOnly(candidate)
			if picked[candidate] || seen[candidate] {
				continue
			}
			seen[candidate] = true

			overlap, err := a.booking.HasUserOverlap(ctx, userID, candidate, candidate.AddDate(0, 0, 6))
			if err != nil {
				return false, err
			}
			if overlap {
				continue
			}

			taken, total, err := a.booking.WeekAvailability(ctx, candidate)
			if err != nil {
				return false, err
			}
			if taken < total {
				return true, nil
			}
		}
	}
	return false, nil
}

func picksSince(picks []models.VacationRequest, cutoff time.Time) []models.VacationRequest {
	var out []models.VacationRequest
	for _, p := range picks {
		if !p.CreatedAt.Before(cutoff) {
			out = append(out, p)
		}
	}
	return out
}

func anyConsecutive(picks []models.VacationRequest, weekStart time.Time) bool {
	for _, p := range picks {
		if isConsecutiveWeek(p.StartDate, weekStart) {
			return true
		}
	}
	return false
}

// isConsecutiveWeek reports whether two week starts sit exactly seven
// days apart in either direction.
func isConsecutiveWeek(first, second time.Time) bool {
	diff := dateOnly(first).Sub(dateOnly(second))
	if diff < 0 {
		diff = -diff
	}
	return diff == 7*24*time.Hour
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
