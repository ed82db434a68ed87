package users

import (
	"context"
	"sort"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/dispatchhq/vacdraft/go/internal/models"
)

type fakeRepo struct {
	users []models.User
}

func (f *fakeRepo) CreateUser(ctx context.Context, req CreateUserRequest) (*models.User, error) {
	user := models.User{
		ID:          uuid.New(),
		Email:       req.Email,
		Name:        req.Name,
		Role:        req.Role,
		BadgeNumber: req.BadgeNumber,
		WeekQuota:   req.WeekQuota,
		DayQuota:    req.DayQuota,
		TotalQuota:  req.TotalQuota,
	}
	f.users = append(f.users, user)
	return &user, nil
}

func (f *fakeRepo) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			user := u
			return &user, nil
		}
	}
	return nil, ErrNotFound
}

func (f *fakeRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			user := u
			return &user, nil
		}
	}
	return nil, ErrNotFound
}

func (f *fakeRepo) ListUsers(ctx context.Context) ([]models.User, error) {
	return f.users, nil
}

func (f *fakeRepo) ListDispatchersByBadge(ctx context.Context) ([]models.User, error) {
	var out []models.User
	for _, u := range f.users {
		if u.Role == models.RoleDispatcher {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BadgeNumber < out[j].BadgeNumber })
	return out, nil
}

func (f *fakeRepo) UpdateUser(ctx context.Context, id uuid.UUID, req UpdateUserRequest) (*models.User, error) {
	for i := range f.users {
		if f.users[i].ID != id {
			continue
		}
		if req.Email != nil {
			f.users[i].Email = *req.Email
		}
		if req.Name != nil {
			f.users[i].Name = *req.Name
		}
		if req.Role != nil {
			f.users[i].Role = *req.Role
		}
		if req.BadgeNumber != nil {
			f.users[i].BadgeNumber = *req.BadgeNumber
		}
		user := f.users[i]
		return &user, nil
	}
	return nil, ErrNotFound
}

func (f *fakeRepo) DeleteUser(ctx context.Context, id uuid.UUID) error {
	for i := range f.users {
		if f.users[i].ID == id {
			f.users = append(f.users[:i], f.users[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func validCreateRequest() CreateUserRequest {
	return CreateUserRequest{
		Email:       "dispatcher@example.com",
		Name:        "Dispatcher One",
		Role:        models.RoleDispatcher,
		BadgeNumber: 101,
		WeekQuota:   3,
		DayQuota:    5,
		TotalQuota:  25,
	}
}

func TestCreateUserValidation(t *testing.T) {
	app := NewApp(&fakeRepo{})

	tests := []struct {
		name   string
		mutate func(*CreateUserRequest)
	}{
		{"missing email", func(r *CreateUserRequest) { r.Email = "" }},
		{"malformed email", func(r *CreateUserRequest) { r.Email = "not-an-email" }},
		{"missing name", func(r *CreateUserRequest) { r.Name = "" }},
		{"invalid role", func(r *CreateUserRequest) { r.Role = models.Role("JANITOR") }},
		{"zero badge", func(r *CreateUserRequest) { r.BadgeNumber = 0 }},
		{"negative week quota", func(r *CreateUserRequest) { r.WeekQuota = -1 }},
		{"negative total quota", func(r *CreateUserRequest) { r.TotalQuota = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validCreateRequest()
			tt.mutate(&req)
			_, err := app.CreateUser(context.Background(), req)
			require.Error(t, err)
		})
	}
}

func TestCreateUser(t *testing.T) {
	repo := &fakeRepo{}
	app := NewApp(repo)

	user, err := app.CreateUser(context.Background(), validCreateRequest())
	require.NoError(t, err)
	require.Equal(t, "dispatcher@example.com", user.Email)
	require.Equal(t, 101, user.BadgeNumber)
	require.Len(t, repo.users, 1)
}

func TestDispatcherOrderSortsByBadge(t *testing.T) {
	repo := &fakeRepo{}
	app := NewApp(repo)

	for _, badge := range []int{30, 10, 20} {
		req := validCreateRequest()
		req.BadgeNumber = badge
		req.Email = "d@example.com"
		_, err := app.CreateUser(context.Background(), req)
		require.NoError(t, err)
	}
	supervisor := validCreateRequest()
	supervisor.Role = models.RoleSupervisor
	supervisor.BadgeNumber = 5
	_, err := app.CreateUser(context.Background(), supervisor)
	require.NoError(t, err)

	order, err := app.DispatcherOrder(context.Background())
	require.NoError(t, err)
	require.Len(t, order, 3)
	require.Equal(t, 10, order[0].BadgeNumber)
	require.Equal(t, 20, order[1].BadgeNumber)
	require.Equal(t, 30, order[2].BadgeNumber)
}

func TestUpdateUserValidatesFields(t *testing.T) {
	repo := &fakeRepo{}
	app := NewApp(repo)

	user, err := app.CreateUser(context.Background(), validCreateRequest())
	require.NoError(t, err)

	badRole := models.Role("JANITOR")
	_, err = app.UpdateUser(context.Background(), user.ID, UpdateUserRequest{Role: &badRole})
	require.Error(t, err)

	badEmail := "not-an-email"
	_, err = app.UpdateUser(context.Background(), user.ID, UpdateUserRequest{Email: &badEmail})
	require.Error(t, err)

	newName := "Dispatcher Renamed"
	updated, err := app.UpdateUser(context.Background(), user.ID, UpdateUserRequest{Name: &newName})
	require.NoError(t, err)
	require.Equal(t, "Dispatcher Renamed", updated.Name)
}

func TestGetUserByEmailNormalizes(t *testing.T) {
	repo := &fakeRepo{}
	app := NewApp(repo)

	_, err := app.CreateUser(context.Background(), validCreateRequest())
	require.NoError(t, err)

	user, err := app.GetUserByEmail(context.Background(), "  Dispatcher@Example.com ")
	require.NoError(t, err)
	require.Equal(t, "dispatcher@example.com", user.Email)
}
