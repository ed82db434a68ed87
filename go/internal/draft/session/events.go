package session

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/dispatchhq/vacdraft/go/internal/draft/events"
	"github.com/dispatchhq/vacdraft/go/internal/models"
)

// Event emission is best effort: a failed outbox insert is logged and
// never fails the operation that triggered it.

func (a *App) emitDraftScheduled(ctx context.Context, s *models.DraftSession) {
	a.emit(ctx, "DraftScheduled", s.ID, a.outbox.InsertOutboxDraftScheduled, events.DraftScheduledPayload{
		SessionID:    s.ID.String(),
		ScheduledFor: *s.ScheduledStartTime,
	})
}

func (a *App) emitDraftStarted(ctx context.Context, s *models.DraftSession) {
	a.emit(ctx, "DraftStarted", s.ID, a.outbox.InsertOutboxDraftStarted, events.DraftStartedPayload{
		SessionID:   s.ID.String(),
		StartedAt:   *s.StartTime,
		FirstUserID: s.CurrentUserID.String(),
		TotalRounds: s.TotalRounds,
	})
}

func (a *App) emitDraftPaused(ctx context.Context, s *models.DraftSession) {
	a.emit(ctx, "DraftPaused", s.ID, a.outbox.InsertOutboxDraftPaused, events.DraftPausedPayload{
		SessionID: s.ID.String(),
		PausedAt:  a.clock.Now().UTC(),
	})
}

func (a *App) emitDraftResumed(ctx context.Context, s *models.DraftSession) {
	a.emit(ctx, "DraftResumed", s.ID, a.outbox.InsertOutboxDraftResumed, events.DraftResumedPayload{
		SessionID: s.ID.String(),
		ResumedAt: a.clock.Now().UTC(),
	})
}

func (a *App) emitDraftReset(ctx context.Context, s *models.DraftSession) {
	a.emit(ctx, "DraftReset", s.ID, a.outbox.InsertOutboxDraftReset, events.DraftResetPayload{
		SessionID: s.ID.String(),
		ResetAt:   a.clock.Now().UTC(),
	})
}

func (a *App) emitDraftCompleted(ctx context.Context, s *models.DraftSession) {
	a.emit(ctx, "DraftCompleted", s.ID, a.outbox.InsertOutboxDraftCompleted, events.DraftCompletedPayload{
		SessionID:   s.ID.String(),
		CompletedAt: *s.EndTime,
		Rounds:      s.CurrentRound,
	})
}

func (a *App) emitPickMade(ctx context.Context, s *models.DraftSession, userID uuid.UUID, weekStart time.Time, auto bool) {
	a.emit(ctx, "PickMade", s.ID, a.outbox.InsertOutboxPickMade, events.PickMadePayload{
		SessionID: s.ID.String(),
		UserID:    userID.String(),
		WeekStart: weekStart,
		Round:     s.CurrentRound,
		MadeAt:    a.clock.Now().UTC(),
		Auto:      auto,
	})
}

func (a *App) emitPickUndone(ctx context.Context, s *models.DraftSession, userID uuid.UUID, weekStart time.Time) {
	a.emit(ctx, "PickUndone", s.ID, a.outbox.InsertOutboxPickUndone, events.PickUndonePayload{
		SessionID: s.ID.String(),
		UserID:    userID.String(),
		WeekStart: weekStart,
		UndoneAt:  a.clock.Now().UTC(),
	})
}

func (a *App) emitTurnAdvanced(ctx context.Context, s *models.DraftSession) {
	a.emit(ctx, "TurnAdvanced", s.ID, a.outbox.InsertOutboxTurnAdvanced, events.TurnAdvancedPayload{
		SessionID:     s.ID.String(),
		UserID:        s.CurrentUserID.String(),
		Round:         s.CurrentRound,
		TurnStartedAt: *s.TurnStartTime,
	})
}

func (a *App) emit(ctx context.Context, eventType string, sessionID uuid.UUID, insert func(context.Context, uuid.UUID, []byte) error, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Failed to marshal %s event for session %s: %v", eventType, sessionID, err)
		return
	}
	if err := insert(ctx, sessionID, data); err != nil {
		log.Printf("Failed to record %s event for session %s: %v", eventType, sessionID, err)
	}
}
