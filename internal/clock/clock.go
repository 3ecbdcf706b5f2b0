// Package clock converts between wall-clock strings and minutes since midnight.
package clock

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// MinutesPerDay is the upper bound of any interval end.
const MinutesPerDay = 24 * 60

// ErrInvalidTime is returned for anything that is not "HH:MM" or "HH:MM:SS".
var ErrInvalidTime = errors.New("invalid time")

// Minutes is a count of minutes since local midnight (0..1440).
type Minutes int

// Parse reads "H:MM", "HH:MM" or "HH:MM:SS". Seconds are validated and dropped.
// "24:00" is accepted as the end of the day.
func Parse(s string) (Minutes, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty string", ErrInvalidTime)
	}

	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}

	hour, err := atoiField(parts[0], 1)
	if err != nil {
		return 0, fmt.Errorf("%w: hour in %q", ErrInvalidTime, s)
	}
	minute, err := atoiField(parts[1], 2)
	if err != nil {
		return 0, fmt.Errorf("%w: minute in %q", ErrInvalidTime, s)
	}
	second := 0
	if len(parts) == 3 {
		if second, err = atoiField(parts[2], 2); err != nil {
			return 0, fmt.Errorf("%w: second in %q", ErrInvalidTime, s)
		}
	}

	if hour > 24 || minute > 59 || second > 59 {
		return 0, fmt.Errorf("%w: %q out of range", ErrInvalidTime, s)
	}
	if hour == 24 && (minute != 0 || second != 0) {
		return 0, fmt.Errorf("%w: %q past end of day", ErrInvalidTime, s)
	}

	return Minutes(hour*60 + minute), nil
}

// MustParse is Parse for literals in tests and defaults.
func MustParse(s string) Minutes {
	m, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return m
}

// atoiField accepts only plain digits; minLen guards "9:5" style minutes.
func atoiField(s string, minLen int) (int, error) {
	if len(s) < minLen || len(s) > 2 {
		return 0, strconv.ErrSyntax
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, strconv.ErrSyntax
		}
	}
	return strconv.Atoi(s)
}

// Clock renders "HH:MM:SS"; seconds are always ":00".
func (m Minutes) Clock() string {
	return fmt.Sprintf("%02d:%02d:00", int(m)/60, int(m)%60)
}

// HHMM renders "HH:MM".
func (m Minutes) HHMM() string {
	return fmt.Sprintf("%02d:%02d", int(m)/60, int(m)%60)
}

// Format12 renders "h:mm AM/PM". Presentation only.
func (m Minutes) Format12() string {
	hour := (int(m) / 60) % 24
	minute := int(m) % 60

	suffix := "AM"
	if hour >= 12 {
		suffix = "PM"
	}
	display := hour % 12
	if display == 0 {
		display = 12
	}
	return fmt.Sprintf("%d:%02d %s", display, minute, suffix)
}

// To12Hour converts a "HH:MM[:SS]" string to "h:mm AM/PM".
func To12Hour(s string) (string, error) {
	m, err := Parse(s)
	if err != nil {
		return "", err
	}
	return m.Format12(), nil
}
