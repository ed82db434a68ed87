package models

import (
	"time"

	"github.com/google/uuid"
)

// RequestType defines the kind of time-off request.
type RequestType string

const (
	RequestTypeVacation RequestType = "VACATION"
	RequestTypeSick     RequestType = "SICK"
	RequestTypePersonal RequestType = "PERSONAL"
	RequestTypeOther    RequestType = "OTHER"
)

// RequestStatus defines the approval status of a request.
type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "PENDING"
	RequestStatusApproved RequestStatus = "APPROVED"
	RequestStatusRejected RequestStatus = "REJECTED"
)

// VacationRequest represents a booked (or requested) stretch of time off.
// Draft picks are week bookings with an approved status and a
// "Draft Round N" comment; everything else is an ordinary request.
type VacationRequest struct {
	ID            uuid.UUID     `json:"id"`
	UserID        uuid.UUID     `json:"user_id"`
	StartDate     time.Time     `json:"start_date"`
	EndDate       time.Time     `json:"end_date"`
	IsWeekBooking bool          `json:"is_week_booking"`
	Type          RequestType   `json:"type"`
	Status        RequestStatus `json:"status"`
	Comment       *string       `json:"comment,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
}
