package models

import (
	"time"

	"github.com/google/uuid"
)

// Role defines the role of a user.
type Role string

const (
	RoleDispatcher Role = "DISPATCHER"
	RoleSupervisor Role = "SUPERVISOR"
)

// User represents a dispatcher or supervisor in the system.
// BadgeNumber drives draft turn order (lower badge picks earlier).
type User struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	Role        Role      `json:"role"`
	BadgeNumber int       `json:"badge_number"`
	WeekQuota   int       `json:"week_quota"`
	DayQuota    int       `json:"day_quota"`
	TotalQuota  int       `json:"total_quota"`
	CreatedAt   time.Time `json:"created_at"`
}
