// Package calendar resolves civil days of the week in a business time zone.
package calendar

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the ISO calendar date accepted at the boundary.
const DateLayout = "2006-01-02"

var (
	ErrInvalidDate    = errors.New("invalid date")
	ErrUnknownZone    = errors.New("unknown time zone")
	ErrInvalidWeekday = errors.New("invalid weekday")
)

// Day is a calendar date resolved in a zone.
type Day struct {
	Date    string
	Weekday time.Weekday
	Name    string // lowercase English, e.g. "wednesday"
}

// Index returns 0 for Sunday through 6 for Saturday.
func (d Day) Index() int {
	return int(d.Weekday)
}

// LoadZone resolves an IANA zone name. An empty name is UTC.
func LoadZone(name string) (*time.Location, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownZone, name)
	}
	return loc, nil
}

// ParseDate parses "YYYY-MM-DD" into local midnight of loc.
func ParseDate(date string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(date), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	return t, nil
}

// ResolveDay returns the weekday of date as observed in loc.
// The instant is anchored at local noon so DST transitions around midnight
// never move it onto a neighbouring day.
func ResolveDay(date string, loc *time.Location) (Day, error) {
	midnight, err := ParseDate(date, loc)
	if err != nil {
		return Day{}, err
	}
	noon := time.Date(midnight.Year(), midnight.Month(), midnight.Day(), 12, 0, 0, 0, midnight.Location())

	wd := noon.Weekday()
	return Day{
		Date:    noon.Format(DateLayout),
		Weekday: wd,
		Name:    WeekdayName(wd),
	}, nil
}

// WeekdayName is the lowercase English name of wd.
func WeekdayName(wd time.Weekday) string {
	return strings.ToLower(wd.String())
}

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
	"sun":       time.Sunday,
	"mon":       time.Monday,
	"tue":       time.Tuesday,
	"wed":       time.Wednesday,
	"thu":       time.Thursday,
	"fri":       time.Friday,
	"sat":       time.Saturday,
}

// ParseWeekday accepts English day names or three-letter abbreviations in any case.
func ParseWeekday(s string) (time.Weekday, error) {
	wd, ok := weekdays[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return time.Sunday, fmt.Errorf("%w: %q", ErrInvalidWeekday, s)
	}
	return wd, nil
}
