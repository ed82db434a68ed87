package session

import (
	"context"
	"log"
)

// ProcessScheduledDrafts starts the earliest due scheduled session, as
// if StartDraft had been called at the scheduled instant.
func (a *App) ProcessScheduledDrafts(ctx context.Context) error {
	session, err := a.repo.DueScheduledSession(ctx, a.clock.Now().UTC())
	if err != nil {
		return err
	}
	if session == nil {
		return nil
	}

	dispatchers, err := a.roster.DispatcherOrder(ctx)
	if err != nil {
		return err
	}
	if len(dispatchers) == 0 {
		log.Printf("Scheduled draft %s is due but no dispatchers exist", session.ID)
		return nil
	}

	_, err = a.startSession(ctx, dispatchers, *session.ScheduledStartTime, session)
	return err
}

// ProcessTurnTimeout checks the active session's turn clock. Once the
// timeout passes, the current dispatcher's queue is tried in order
// with single-pick semantics; the first convertible item is consumed.
// With nothing convertible the turn is forced along and the queue is
// left alone.
func (a *App) ProcessTurnTimeout(ctx context.Context) error {
	session, err := a.repo.ActiveSession(ctx)
	if err != nil {
		return err
	}
	if session == nil || session.IsPaused || session.TurnStartTime == nil {
		return nil
	}
	if a.clock.Now().UTC().Sub(*session.TurnStartTime) <= TurnTimeout {
		return nil
	}

	if session.CurrentUserID == nil {
		return a.advanceTurn(ctx, session)
	}
	userID := *session.CurrentUserID

	queue, err := a.queue.List(ctx, userID)
	if err != nil {
		return err
	}

	for _, item := range queue {
		res, err := a.makePick(ctx, userID, item.WeekStartDate, false)
		if err != nil {
			return err
		}
		if res.Success {
			if _, err := a.queue.Remove(ctx, userID, item.ID); err != nil {
				return err
			}
			log.Printf("Auto-picked week %s for user %s after turn timeout",
				item.WeekStartDate.Format("2006-01-02"), userID)
			return nil
		}
	}

	log.Printf("Turn timed out for user %s with no convertible queue item", userID)
	return a.advanceTurn(ctx, session)
}
