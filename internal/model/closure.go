package model

import "time"

const (
	ClosureSourceConfig = "config"
	ClosureSourceManual = "manual"
)

// Closure is a shop-wide partial or full closure on one date.
type Closure struct {
	ID        int64     `json:"id"`
	Date      string    `json:"date"`
	StartTime string    `json:"start_time"` // "00:00" for full day
	EndTime   string    `json:"end_time"`   // "24:00" for full day
	Reason    string    `json:"reason"`
	Source    string    `json:"source"`
	CreatedAt time.Time `json:"created_at"`
}
