package slots

import (
	"encoding/json"
	"errors"
	"time"

	"slotbook/internal/clock"
)

var (
	ErrInvalidBusinessHours = errors.New("business close must be after open")
	ErrInvalidDuration      = errors.New("service duration must be positive")
	ErrInvalidGranularity   = errors.New("slot granularity must be positive")
)

// Reason explains why a slot is unavailable. Empty means available.
type Reason string

const (
	ReasonNone            Reason = ""
	ReasonOutsideHours    Reason = "Outside staff working hours"
	ReasonBreak           Reason = "Break overlap"
	ReasonBooked          Reason = "Booked"
	ReasonClosed          Reason = "Shop closed"
	ReasonOutsideBusiness Reason = "Outside business hours"
)

// MarshalJSON renders an empty reason as null.
func (r Reason) MarshalJSON() ([]byte, error) {
	if r == ReasonNone {
		return []byte("null"), nil
	}
	return json.Marshal(string(r))
}

// Entry is a schedule item as supplied by a caller: "HH:MM[:SS]" bounds,
// an optional day-of-week tag and an optional label.
type Entry struct {
	Start string `json:"start" yaml:"start"`
	End   string `json:"end" yaml:"end"`
	Day   string `json:"day,omitempty" yaml:"day,omitempty"`
	Label string `json:"label,omitempty" yaml:"label,omitempty"`
}

// Interval is a range of minutes since midnight.
type Interval struct {
	Start clock.Minutes
	End   clock.Minutes
}

// Len is the interval length in minutes.
func (iv Interval) Len() int {
	return int(iv.End - iv.Start)
}

// DayInterval is an Interval that may be restricted to one day of the week.
type DayInterval struct {
	Interval
	Day    time.Weekday
	HasDay bool
	Label  string
}

// AppliesOn reports whether the interval is in effect on wd.
func (d DayInterval) AppliesOn(wd time.Weekday) bool {
	return !d.HasDay || d.Day == wd
}

// Request holds everything needed to evaluate one staff member's day.
type Request struct {
	Open         string  `json:"open" yaml:"open"`
	Close        string  `json:"close" yaml:"close"`
	Granularity  int     `json:"granularity" yaml:"granularity"` // minutes between slot starts
	Duration     int     `json:"duration" yaml:"duration"`       // requested service length, minutes
	WorkingHours []Entry `json:"working_hours,omitempty" yaml:"working_hours,omitempty"`
	Breaks       []Entry `json:"breaks,omitempty" yaml:"breaks,omitempty"`
	Appointments []Entry `json:"appointments,omitempty" yaml:"appointments,omitempty"`
	Closures     []Entry `json:"closures,omitempty" yaml:"closures,omitempty"`
	Date         string  `json:"date,omitempty" yaml:"date,omitempty"`
	Timezone     string  `json:"timezone,omitempty" yaml:"timezone,omitempty"`
}

// Slot is one step of the day grid.
type Slot struct {
	StartMinute  clock.Minutes `json:"start_minute"`
	EndMinute    clock.Minutes `json:"end_minute"`
	Start        string        `json:"start"` // "HH:MM:SS"
	End          string        `json:"end"`
	DisplayStart string        `json:"display_start"` // "h:mm AM"
	DisplayEnd   string        `json:"display_end"`
	Available    bool          `json:"available"`
	Reason       Reason        `json:"unavailable_reason"`
	Timezone     string        `json:"timezone"`
}

// Skipped records a schedule item that was ignored because it was malformed.
type Skipped struct {
	Kind  string
	Index int
	Entry Entry
	Err   error
}

// Result is the full output of Compute.
type Result struct {
	Day     string // lowercase weekday, empty when no date was given
	Slots   []Slot
	Skipped []Skipped
}
