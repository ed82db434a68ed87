package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/dispatchhq/vacdraft/go/internal/draft/session"
	"github.com/dispatchhq/vacdraft/go/internal/models"
	"github.com/dispatchhq/vacdraft/go/internal/users"
)

// DraftEngine defines what the API needs from the draft session app
type DraftEngine interface {
	GetActiveSession(ctx context.Context) (*models.DraftSession, error)
	GetLatestSession(ctx context.Context) (*models.DraftSession, error)
	GetDispatcherOrder(ctx context.Context) ([]models.User, error)
	StartDraft(ctx context.Context, scheduledAt *time.Time) (session.Result, error)
	PauseDraft(ctx context.Context) (bool, error)
	ResumeDraft(ctx context.Context) (bool, error)
	ResetDraft(ctx context.Context) (bool, error)
	MakePick(ctx context.Context, userID uuid.UUID, weekStart time.Time) (session.Result, error)
	UndoPick(ctx context.Context, userID uuid.UUID, weekStart time.Time) (session.Result, error)
	EndTurn(ctx context.Context, userID uuid.UUID) (session.Result, error)
}

// PickQueue defines what the API needs from the queue app
type PickQueue interface {
	List(ctx context.Context, userID uuid.UUID) ([]models.DraftQueueItem, error)
	Add(ctx context.Context, userID uuid.UUID, weekStart time.Time) (bool, error)
	Remove(ctx context.Context, userID, itemID uuid.UUID) (bool, error)
	Move(ctx context.Context, userID, itemID uuid.UUID, up bool) (bool, error)
}

// UserService defines what the API needs from the users app
type UserService interface {
	CreateUser(ctx context.Context, req users.CreateUserRequest) (*models.User, error)
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	UpdateUser(ctx context.Context, id uuid.UUID, req users.UpdateUserRequest) (*models.User, error)
	DeleteUser(ctx context.Context, id uuid.UUID) error
}

// VacationService defines what the API needs from the vacation app
type VacationService interface {
	CreateRequest(ctx context.Context, req models.VacationRequest) (bool, string, error)
	ListRequests(ctx context.Context) ([]models.VacationRequest, error)
	ListRequestsByUser(ctx context.Context, userID uuid.UUID) ([]models.VacationRequest, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.RequestStatus) error
	DeleteRequest(ctx context.Context, id uuid.UUID) error
	WeekAvailability(ctx context.Context, weekStart time.Time) (int, int, error)
}

// API serves the JSON HTTP surface of the vacation draft
type API struct {
	engine   DraftEngine
	queue    PickQueue
	users    UserService
	vacation VacationService
}

// NewAPI creates a new API
func NewAPI(engine DraftEngine, queue PickQueue, userSvc UserService, vacationSvc VacationService) *API {
	return &API{
		engine:   engine,
		queue:    queue,
		users:    userSvc,
		vacation: vacationSvc,
	}
}

// resultResponse is the contract for every draft mutation: success
// flag plus a human-readable message.
type resultResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// RegisterRoutes registers all API routes with an HTTP mux
func (a *API) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/users", a.handleListUsers)
	mux.HandleFunc("POST /api/users", a.handleCreateUser)
	mux.HandleFunc("GET /api/users/{id}", a.handleGetUser)
	mux.HandleFunc("PUT /api/users/{id}", a.handleUpdateUser)
	mux.HandleFunc("DELETE /api/users/{id}", a.handleDeleteUser)
	mux.HandleFunc("GET /api/users/{id}/requests", a.handleListUserRequests)

	mux.HandleFunc("GET /api/requests", a.handleListRequests)
	mux.HandleFunc("POST /api/requests", a.handleCreateRequest)
	mux.HandleFunc("PUT /api/requests/{id}/status", a.handleUpdateRequestStatus)
	mux.HandleFunc("DELETE /api/requests/{id}", a.handleDeleteRequest)
	mux.HandleFunc("GET /api/weeks/availability", a.handleWeekAvailability)

	mux.HandleFunc("GET /api/draft/state", a.handleDraftState)
	mux.HandleFunc("POST /api/draft/start", a.handleStartDraft)
	mux.HandleFunc("POST /api/draft/pause", a.handlePauseDraft)
	mux.HandleFunc("POST /api/draft/resume", a.handleResumeDraft)
	mux.HandleFunc("POST /api/draft/reset", a.handleResetDraft)
	mux.HandleFunc("POST /api/draft/pick", a.handleMakePick)
	mux.HandleFunc("POST /api/draft/undo", a.handleUndoPick)
	mux.HandleFunc("POST /api/draft/end-turn", a.handleEndTurn)

	mux.HandleFunc("GET /api/draft/queue/{userID}", a.handleListQueue)
	mux.HandleFunc("POST /api/draft/queue", a.handleAddToQueue)
	mux.HandleFunc("DELETE /api/draft/queue/{userID}/{itemID}", a.handleRemoveFromQueue)
	mux.HandleFunc("POST /api/draft/queue/move", a.handleMoveQueueItem)
}

// User handlers

func (a *API) handleListUsers(w http.ResponseWriter, r *http.Request) {
	list, err := a.users.ListUsers(r.Context())
	if err != nil {
		a.serverError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, list)
}

func (a *API) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req users.CreateUserRequest
	if !a.readJSON(w, r, &req) {
		return
	}

	user, err := a.users.CreateUser(r.Context(), req)
	if err != nil {
		a.writeJSON(w, http.StatusBadRequest, resultResponse{Success: false, Message: err.Error()})
		return
	}
	a.writeJSON(w, http.StatusCreated, user)
}

func (a *API) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := a.pathUUID(w, r, "id")
	if !ok {
		return
	}

	user, err := a.users.GetUser(r.Context(), id)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			http.Error(w, "user not found", http.StatusNotFound)
			return
		}
		a.serverError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, user)
}

func (a *API) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := a.pathUUID(w, r, "id")
	if !ok {
		return
	}

	var req users.UpdateUserRequest
	if !a.readJSON(w, r, &req) {
		return
	}

	user, err := a.users.UpdateUser(r.Context(), id, req)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			http.Error(w, "user not found", http.StatusNotFound)
			return
		}
		a.writeJSON(w, http.StatusBadRequest, resultResponse{Success: false, Message: err.Error()})
		return
	}
	a.writeJSON(w, http.StatusOK, user)
}

func (a *API) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := a.pathUUID(w, r, "id")
	if !ok {
		return
	}

	if err := a.users.DeleteUser(r.Context(), id); err != nil {
		a.serverError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Vacation request handlers

func (a *API) handleListRequests(w http.ResponseWriter, r *http.Request) {
	list, err := a.vacation.ListRequests(r.Context())
	if err != nil {
		a.serverError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, list)
}

func (a *API) handleListUserRequests(w http.ResponseWriter, r *http.Request) {
	id, ok := a.pathUUID(w, r, "id")
	if !ok {
		return
	}

	list, err := a.vacation.ListRequestsByUser(r.Context(), id)
	if err != nil {
		a.serverError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, list)
}

func (a *API) handleCreateRequest(w http.ResponseWriter, r *http.Request) {
	var body struct {
		UserID        uuid.UUID          `json:"user_id"`
		StartDate     string             `json:"start_date"`
		EndDate       string             `json:"end_date"`
		IsWeekBooking bool               `json:"is_week_booking"`
		Type          models.RequestType `json:"type"`
		Comment       *string            `json:"comment,omitempty"`
	}
	if !a.readJSON(w, r, &body) {
		return
	}

	start, err := parseDate(body.StartDate)
	if err != nil {
		http.Error(w, "invalid start_date", http.StatusBadRequest)
		return
	}
	end, err := parseDate(body.EndDate)
	if err != nil {
		http.Error(w, "invalid end_date", http.StatusBadRequest)
		return
	}

	req := models.VacationRequest{
		UserID:        body.UserID,
		StartDate:     start,
		EndDate:       end,
		IsWeekBooking: body.IsWeekBooking,
		Type:          body.Type,
		Status:        models.RequestStatusPending,
		Comment:       body.Comment,
	}

	ok, msg, err := a.vacation.CreateRequest(r.Context(), req)
	if err != nil {
		a.serverError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, resultResponse{Success: ok, Message: msg})
}

func (a *API) handleUpdateRequestStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := a.pathUUID(w, r, "id")
	if !ok {
		return
	}

	var body struct {
		Status models.RequestStatus `json:"status"`
	}
	if !a.readJSON(w, r, &body) {
		return
	}

	if err := a.vacation.UpdateStatus(r.Context(), id, body.Status); err != nil {
		a.writeJSON(w, http.StatusBadRequest, resultResponse{Success: false, Message: err.Error()})
		return
	}
	a.writeJSON(w, http.StatusOK, resultResponse{Success: true, Message: "Status updated."})
}

func (a *API) handleDeleteRequest(w http.ResponseWriter, r *http.Request) {
	id, ok := a.pathUUID(w, r, "id")
	if !ok {
		return
	}

	if err := a.vacation.DeleteRequest(r.Context(), id); err != nil {
		a.serverError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleWeekAvailability(w http.ResponseWriter, r *http.Request) {
	weekStart, err := parseDate(r.URL.Query().Get("week_start"))
	if err != nil {
		http.Error(w, "invalid week_start", http.StatusBadRequest)
		return
	}

	taken, total, err := a.vacation.WeekAvailability(r.Context(), weekStart)
	if err != nil {
		a.serverError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, map[string]int{"taken": taken, "total": total})
}

// Draft handlers

func (a *API) handleDraftState(w http.ResponseWriter, r *http.Request) {
	active, err := a.engine.GetActiveSession(r.Context())
	if err != nil {
		a.serverError(w, err)
		return
	}
	latest, err := a.engine.GetLatestSession(r.Context())
	if err != nil {
		a.serverError(w, err)
		return
	}
	order, err := a.engine.GetDispatcherOrder(r.Context())
	if err != nil {
		a.serverError(w, err)
		return
	}

	a.writeJSON(w, http.StatusOK, map[string]any{
		"active_session":   active,
		"latest_session":   latest,
		"dispatcher_order": order,
	})
}

func (a *API) handleStartDraft(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ScheduledAt *time.Time `json:"scheduled_at,omitempty"`
	}
	if !a.readJSON(w, r, &body) {
		return
	}

	res, err := a.engine.StartDraft(r.Context(), body.ScheduledAt)
	if err != nil {
		a.serverError(w, err)
		return
	}
	a.writeResult(w, res)
}

func (a *API) handlePauseDraft(w http.ResponseWriter, r *http.Request) {
	ok, err := a.engine.PauseDraft(r.Context())
	if err != nil {
		a.serverError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, resultResponse{Success: ok, Message: pauseMessage(ok, "Draft paused.")})
}

func (a *API) handleResumeDraft(w http.ResponseWriter, r *http.Request) {
	ok, err := a.engine.ResumeDraft(r.Context())
	if err != nil {
		a.serverError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, resultResponse{Success: ok, Message: pauseMessage(ok, "Draft resumed.")})
}

func (a *API) handleResetDraft(w http.ResponseWriter, r *http.Request) {
	ok, err := a.engine.ResetDraft(r.Context())
	if err != nil {
		a.serverError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, resultResponse{Success: ok, Message: "Draft reset."})
}

func (a *API) handleMakePick(w http.ResponseWriter, r *http.Request) {
	userID, weekStart, ok := a.readPickBody(w, r)
	if !ok {
		return
	}

	res, err := a.engine.MakePick(r.Context(), userID, weekStart)
	if err != nil {
		a.serverError(w, err)
		return
	}
	a.writeResult(w, res)
}

func (a *API) handleUndoPick(w http.ResponseWriter, r *http.Request) {
	userID, weekStart, ok := a.readPickBody(w, r)
	if !ok {
		return
	}

	res, err := a.engine.UndoPick(r.Context(), userID, weekStart)
	if err != nil {
		a.serverError(w, err)
		return
	}
	a.writeResult(w, res)
}

func (a *API) handleEndTurn(w http.ResponseWriter, r *http.Request) {
	var body struct {
		UserID uuid.UUID `json:"user_id"`
	}
	if !a.readJSON(w, r, &body) {
		return
	}

	res, err := a.engine.EndTurn(r.Context(), body.UserID)
	if err != nil {
		a.serverError(w, err)
		return
	}
	a.writeResult(w, res)
}

// Queue handlers

func (a *API) handleListQueue(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.pathUUID(w, r, "userID")
	if !ok {
		return
	}

	items, err := a.queue.List(r.Context(), userID)
	if err != nil {
		a.serverError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, items)
}

func (a *API) handleAddToQueue(w http.ResponseWriter, r *http.Request) {
	userID, weekStart, ok := a.readPickBody(w, r)
	if !ok {
		return
	}

	added, err := a.queue.Add(r.Context(), userID, weekStart)
	if err != nil {
		a.serverError(w, err)
		return
	}
	msg := "Week added to queue."
	if !added {
		msg = "Week is already queued."
	}
	a.writeJSON(w, http.StatusOK, resultResponse{Success: added, Message: msg})
}

func (a *API) handleRemoveFromQueue(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.pathUUID(w, r, "userID")
	if !ok {
		return
	}
	itemID, ok := a.pathUUID(w, r, "itemID")
	if !ok {
		return
	}

	removed, err := a.queue.Remove(r.Context(), userID, itemID)
	if err != nil {
		a.serverError(w, err)
		return
	}
	msg := "Queue item removed."
	if !removed {
		msg = "Queue item not found."
	}
	a.writeJSON(w, http.StatusOK, resultResponse{Success: removed, Message: msg})
}

func (a *API) handleMoveQueueItem(w http.ResponseWriter, r *http.Request) {
	var body struct {
		UserID uuid.UUID `json:"user_id"`
		ItemID uuid.UUID `json:"item_id"`
		Up     bool      `json:"up"`
	}
	if !a.readJSON(w, r, &body) {
		return
	}

	moved, err := a.queue.Move(r.Context(), body.UserID, body.ItemID, body.Up)
	if err != nil {
		a.serverError(w, err)
		return
	}
	msg := "Queue item moved."
	if !moved {
		msg = "Queue item cannot be moved."
	}
	a.writeJSON(w, http.StatusOK, resultResponse{Success: moved, Message: msg})
}

// Helpers

func (a *API) readPickBody(w http.ResponseWriter, r *http.Request) (uuid.UUID, time.Time, bool) {
	var body struct {
		UserID    uuid.UUID `json:"user_id"`
		WeekStart string    `json:"week_start"`
	}
	if !a.readJSON(w, r, &body) {
		return uuid.Nil, time.Time{}, false
	}

	weekStart, err := parseDate(body.WeekStart)
	if err != nil {
		http.Error(w, "invalid week_start", http.StatusBadRequest)
		return uuid.Nil, time.Time{}, false
	}
	return body.UserID, weekStart, true
}

func (a *API) pathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		http.Error(w, "invalid "+name, http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

func (a *API) readJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	// An empty body decodes to the zero value
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

func (a *API) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

func (a *API) writeResult(w http.ResponseWriter, res session.Result) {
	a.writeJSON(w, http.StatusOK, resultResponse{Success: res.Success, Message: res.Message})
}

func (a *API) serverError(w http.ResponseWriter, err error) {
	log.Error().Err(err).Msg("request failed")
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

func pauseMessage(ok bool, success string) string {
	if ok {
		return success
	}
	return "No active draft."
}
