package model

import (
	"time"

	"slotbook/internal/clock"
)

const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCompleted = "completed"
	StatusCanceled  = "canceled"
	StatusRejected  = "rejected"
)

type Appointment struct {
	ID          int64     `json:"id"`
	StaffID     int64     `json:"staff_id"`
	ServiceCode string    `json:"service_code"`
	ClientName  string    `json:"client_name"`
	ClientPhone string    `json:"client_phone,omitempty"`
	Date        string    `json:"date"`       // "2026-01-15"
	StartTime   string    `json:"start_time"` // "10:00"
	EndTime     string    `json:"end_time"`   // "10:30"
	Status      string    `json:"status"`
	Comment     string    `json:"comment,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// IsActive reports whether the appointment still occupies staff time.
func (a *Appointment) IsActive() bool {
	return a.Status != StatusCanceled && a.Status != StatusRejected
}

// DurationMinutes returns the booked length, or 0 if the times are malformed.
func (a *Appointment) DurationMinutes() int {
	start, err := clock.Parse(a.StartTime)
	if err != nil {
		return 0
	}
	end, err := clock.Parse(a.EndTime)
	if err != nil || end < start {
		return 0
	}
	return int(end - start)
}

// ValidStatus reports whether s is a known appointment status.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCanceled, StatusRejected:
		return true
	}
	return false
}
