package users

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"github.com/dispatchhq/vacdraft/go/internal/models"
)

// UserRepository defines what the app layer needs from the users repository
type UserRepository interface {
	CreateUser(ctx context.Context, req CreateUserRequest) (*models.User, error)
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	ListDispatchersByBadge(ctx context.Context) ([]models.User, error)
	UpdateUser(ctx context.Context, id uuid.UUID, req UpdateUserRequest) (*models.User, error)
	DeleteUser(ctx context.Context, id uuid.UUID) error
}

// App handles user business logic
type App struct {
	repo UserRepository
}

// NewApp creates a new users App
func NewApp(repo UserRepository) *App {
	return &App{repo: repo}
}

// CreateUser creates a new user with validation
func (a *App) CreateUser(ctx context.Context, req CreateUserRequest) (*models.User, error) {
	if err := a.validateCreateUserRequest(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	user, err := a.repo.CreateUser(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	log.Printf("Created user %s (badge %d)", user.Email, user.BadgeNumber)
	return user, nil
}

// GetUser retrieves a user by ID
func (a *App) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return a.repo.GetUser(ctx, id)
}

// GetUserByEmail retrieves a user by email
func (a *App) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return a.repo.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
}

// ListUsers returns all users ordered by badge number
func (a *App) ListUsers(ctx context.Context) ([]models.User, error) {
	return a.repo.ListUsers(ctx)
}

// DispatcherOrder returns the dispatchers in draft turn order
// (ascending badge number).
func (a *App) DispatcherOrder(ctx context.Context) ([]models.User, error) {
	return a.repo.ListDispatchersByBadge(ctx)
}

// UpdateUser applies a partial update to an existing user
func (a *App) UpdateUser(ctx context.Context, id uuid.UUID, req UpdateUserRequest) (*models.User, error) {
	if req.Role != nil {
		if err := validateRole(*req.Role); err != nil {
			return nil, fmt.Errorf("validation failed: %w", err)
		}
	}
	if req.Email != nil && !strings.Contains(*req.Email, "@") {
		return nil, fmt.Errorf("validation failed: invalid email %q", *req.Email)
	}

	user, err := a.repo.UpdateUser(ctx, id, req)
	if err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

// DeleteUser deletes a user by ID
func (a *App) DeleteUser(ctx context.Context, id uuid.UUID) error {
	if err := a.repo.DeleteUser(ctx, id); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	log.Printf("Deleted user %s", id)
	return nil
}

// Validation methods

func (a *App) validateCreateUserRequest(req CreateUserRequest) error {
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		return fmt.Errorf("a valid email is required")
	}
	if req.Name == "" {
		return fmt.Errorf("name is required")
	}
	if err := validateRole(req.Role); err != nil {
		return err
	}
	if req.BadgeNumber <= 0 {
		return fmt.Errorf("badge_number must be greater than 0")
	}
	if req.WeekQuota < 0 || req.DayQuota < 0 || req.TotalQuota < 0 {
		return fmt.Errorf("quotas cannot be negative")
	}
	return nil
}

func validateRole(role models.Role) error {
	switch role {
	case models.RoleDispatcher, models.RoleSupervisor:
		return nil
	default:
		return fmt.Errorf("invalid role: %s", role)
	}
}
