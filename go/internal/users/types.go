package users

import "github.com/dispatchhq/vacdraft/go/internal/models"

// CreateUserRequest represents a request to create a new user
type CreateUserRequest struct {
	Email       string      `json:"email"`
	Name        string      `json:"name"`
	Role        models.Role `json:"role"`
	BadgeNumber int         `json:"badge_number"`
	WeekQuota   int         `json:"week_quota"`
	DayQuota    int         `json:"day_quota"`
	TotalQuota  int         `json:"total_quota"`
}

// UpdateUserRequest represents a partial update to an existing user
type UpdateUserRequest struct {
	Email       *string      `json:"email,omitempty"`
	Name        *string      `json:"name,omitempty"`
	Role        *models.Role `json:"role,omitempty"`
	BadgeNumber *int         `json:"badge_number,omitempty"`
	WeekQuota   *int         `json:"week_quota,omitempty"`
	DayQuota    *int         `json:"day_quota,omitempty"`
	TotalQuota  *int         `json:"total_quota,omitempty"`
}
