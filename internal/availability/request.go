package availability

import (
	"context"
	"fmt"

	"slotbook/internal/calendar"
	"slotbook/internal/config"
	"slotbook/internal/db"
	"slotbook/internal/model"
	"slotbook/internal/slots"
)

// buildRequest gathers everything the engine needs for one staff member's day.
// Shop days off become a full-day closure.
func (s *Service) buildRequest(ctx context.Context, shop *config.ShopConfig, staffID int64, day calendar.Day, svc *config.ServiceConfig) (slots.Request, error) {
	if _, err := s.staff(ctx, staffID); err != nil {
		return slots.Request{}, err
	}

	hours, err := s.store.ListWorkingHours(ctx, staffID)
	if err != nil {
		return slots.Request{}, fmt.Errorf("list working hours: %w", err)
	}
	breaks, err := s.store.ListBreaks(ctx, staffID)
	if err != nil {
		return slots.Request{}, fmt.Errorf("list breaks: %w", err)
	}
	appts, err := s.store.ListAppointmentsOnDate(ctx, staffID, day.Date)
	if err != nil {
		return slots.Request{}, fmt.Errorf("list appointments: %w", err)
	}
	closures, err := s.store.ListClosuresOnDate(ctx, day.Date)
	if err != nil {
		return slots.Request{}, fmt.Errorf("list closures: %w", err)
	}

	req := slots.Request{
		Open:         shop.Open,
		Close:        shop.Close,
		Granularity:  shop.SlotMinutes,
		Duration:     svc.DurationMinutes,
		Date:         day.Date,
		Timezone:     shop.Timezone,
		WorkingHours: intervalEntries(hours),
		Breaks:       intervalEntries(breaks),
	}
	for _, a := range appts {
		if !a.IsActive() {
			continue
		}
		req.Appointments = append(req.Appointments, slots.Entry{Start: a.StartTime, End: a.EndTime})
	}
	for _, c := range closures {
		req.Closures = append(req.Closures, slots.Entry{Start: c.StartTime, End: c.EndTime, Label: c.Reason})
	}
	if shop.IsDayOff(day.Weekday) {
		req.Closures = append(req.Closures, slots.Entry{Start: db.DayStart, End: db.DayEnd, Label: "day off"})
	}
	return req, nil
}

func intervalEntries(items []model.StaffInterval) []slots.Entry {
	out := make([]slots.Entry, 0, len(items))
	for _, iv := range items {
		out = append(out, slots.Entry{Start: iv.StartTime, End: iv.EndTime, Day: iv.Day, Label: iv.Label})
	}
	return out
}
