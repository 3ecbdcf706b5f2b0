package model

import "time"

// Interval kinds stored in staff_intervals.
const (
	KindWorkingHours = "work"
	KindBreak        = "break"
)

type Staff struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StaffInterval is a working-hours window or break. Day is empty for every day.
type StaffInterval struct {
	ID        int64  `json:"id"`
	StaffID   int64  `json:"staff_id"`
	Kind      string `json:"kind"`
	Day       string `json:"day,omitempty"` // "monday"
	StartTime string `json:"start_time"`    // "09:00"
	EndTime   string `json:"end_time"`      // "17:00"
	Label     string `json:"label,omitempty"`
}
