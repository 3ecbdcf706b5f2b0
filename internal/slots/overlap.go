package slots

import "slotbook/internal/clock"

// Overlaps reports whether the candidate [t, t+duration) collides with the
// obstacle [s, e). Three cases are checked: the candidate starts inside the
// obstacle, the candidate ends inside it, or it swallows it whole. Touching
// at either edge is not a collision.
func Overlaps(t clock.Minutes, duration int, obstacle Interval) bool {
	end := t + clock.Minutes(duration)
	s, e := obstacle.Start, obstacle.End

	return (t >= s && t < e) ||
		(end > s && end <= e) ||
		(t <= s && end >= e)
}

// Fits reports whether [t, t+duration) lies entirely inside window.
func Fits(t clock.Minutes, duration int, window Interval) bool {
	return t >= window.Start && t+clock.Minutes(duration) <= window.End
}

func overlapsAny(t clock.Minutes, duration int, obstacles []Interval) bool {
	for _, o := range obstacles {
		if Overlaps(t, duration, o) {
			return true
		}
	}
	return false
}

func fitsAny(t clock.Minutes, duration int, windows []Interval) bool {
	for _, w := range windows {
		if Fits(t, duration, w) {
			return true
		}
	}
	return false
}

// evaluate is the single availability check behind both Generate and
// IsSlotAvailable. Checks run in fixed order and stop at the first failure.
func (p *plan) evaluate(t clock.Minutes) Reason {
	switch {
	case len(p.hours) > 0 && !fitsAny(t, p.duration, p.hours):
		return ReasonOutsideHours
	case overlapsAny(t, p.duration, p.breaks):
		return ReasonBreak
	case overlapsAny(t, p.duration, p.booked):
		return ReasonBooked
	case overlapsAny(t, p.duration, p.closures):
		return ReasonClosed
	}
	return ReasonNone
}
