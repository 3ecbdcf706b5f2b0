package slots

import "time"

// FilterForDay returns the intervals in effect on wd, in input order.
// The input slice is not modified.
func FilterForDay(items []DayInterval, wd time.Weekday) []DayInterval {
	out := make([]DayInterval, 0, len(items))
	for _, it := range items {
		if it.AppliesOn(wd) {
			out = append(out, it)
		}
	}
	return out
}

func intervalsOf(items []DayInterval) []Interval {
	out := make([]Interval, len(items))
	for i, it := range items {
		out[i] = it.Interval
	}
	return out
}
