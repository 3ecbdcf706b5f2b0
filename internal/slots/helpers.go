package slots

import "fmt"

// AvailableOnly returns only available slots.
func AvailableOnly(slots []Slot) []Slot {
	available := make([]Slot, 0, len(slots))
	for _, s := range slots {
		if s.Available {
			available = append(available, s)
		}
	}
	return available
}

// FindConsecutive groups runs of available slots that sit next to each other
// in a generated grid.
func FindConsecutive(slots []Slot) [][]Slot {
	var groups [][]Slot
	var current []Slot

	for _, s := range slots {
		if !s.Available {
			if len(current) > 0 {
				groups = append(groups, current)
				current = nil
			}
			continue
		}
		current = append(current, s)
	}
	if len(current) > 0 {
		groups = append(groups, current)
	}

	return groups
}

// Window is a contiguous bookable stretch: the first start to the last end of a run.
type Window struct {
	Start string `json:"start"`
	End   string `json:"end"`
	Slots int    `json:"slots"`
}

// FreeWindows summarises FindConsecutive as start/end pairs.
func FreeWindows(slots []Slot) []Window {
	groups := FindConsecutive(slots)
	windows := make([]Window, 0, len(groups))
	for _, g := range groups {
		windows = append(windows, Window{
			Start: g[0].Start,
			End:   g[len(g)-1].End,
			Slots: len(g),
		})
	}
	return windows
}

// FormatDuration formats minutes for display.
func FormatDuration(minutes int) string {
	if minutes < 60 {
		return fmt.Sprintf("%d min", minutes)
	}
	hours := minutes / 60
	mins := minutes % 60
	if mins == 0 {
		if hours == 1 {
			return "1 hour"
		}
		return fmt.Sprintf("%d hours", hours)
	}
	return fmt.Sprintf("%d h %d min", hours, mins)
}
