// Package slots computes bookable appointment slots for one staff member's day.
//
// Everything here is a pure function of its Request: no I/O, no shared state,
// safe for concurrent use.
package slots

import (
	"fmt"
	"strings"

	"slotbook/internal/calendar"
	"slotbook/internal/clock"
)

// plan is a validated Request with schedule items parsed and narrowed to the day.
type plan struct {
	open, close clock.Minutes
	step        int
	duration    int
	timezone    string
	day         string

	hours    []Interval
	breaks   []Interval
	booked   []Interval
	closures []Interval

	skipped []Skipped
}

// prepare validates the request and parses its schedule. The step is only
// checked when a grid is walked; single-candidate checks ignore it.
func prepare(req *Request, grid bool) (*plan, error) {
	open, err := clock.Parse(req.Open)
	if err != nil {
		return nil, fmt.Errorf("business open: %w", err)
	}
	closeAt, err := clock.Parse(req.Close)
	if err != nil {
		return nil, fmt.Errorf("business close: %w", err)
	}
	if closeAt <= open {
		return nil, fmt.Errorf("%w: open %s, close %s", ErrInvalidBusinessHours, open.HHMM(), closeAt.HHMM())
	}
	if grid && req.Granularity <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidGranularity, req.Granularity)
	}
	if req.Duration <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidDuration, req.Duration)
	}

	loc, err := calendar.LoadZone(req.Timezone)
	if err != nil {
		return nil, err
	}

	p := &plan{
		open:     open,
		close:    closeAt,
		step:     req.Granularity,
		duration: req.Duration,
		timezone: loc.String(),
	}

	hours := p.parseScoped("working_hours", req.WorkingHours)
	breaks := p.parseScoped("break", req.Breaks)

	if strings.TrimSpace(req.Date) != "" {
		day, err := calendar.ResolveDay(req.Date, loc)
		if err != nil {
			return nil, err
		}
		p.day = day.Name
		hours = FilterForDay(hours, day.Weekday)
		breaks = FilterForDay(breaks, day.Weekday)
	}

	p.hours = intervalsOf(hours)
	p.breaks = intervalsOf(breaks)
	p.booked = p.parsePlain("appointment", req.Appointments)
	p.closures = p.parsePlain("closure", req.Closures)

	return p, nil
}

func (p *plan) parseScoped(kind string, entries []Entry) []DayInterval {
	out := make([]DayInterval, 0, len(entries))
	for i, e := range entries {
		iv, err := parseInterval(e)
		if err != nil {
			p.skip(kind, i, e, err)
			continue
		}
		di := DayInterval{Interval: iv, Label: e.Label}
		if strings.TrimSpace(e.Day) != "" {
			wd, err := calendar.ParseWeekday(e.Day)
			if err != nil {
				p.skip(kind, i, e, err)
				continue
			}
			di.Day, di.HasDay = wd, true
		}
		out = append(out, di)
	}
	return out
}

func (p *plan) parsePlain(kind string, entries []Entry) []Interval {
	out := make([]Interval, 0, len(entries))
	for i, e := range entries {
		iv, err := parseInterval(e)
		if err != nil {
			p.skip(kind, i, e, err)
			continue
		}
		out = append(out, iv)
	}
	return out
}

func (p *plan) skip(kind string, i int, e Entry, err error) {
	p.skipped = append(p.skipped, Skipped{Kind: kind, Index: i, Entry: e, Err: err})
}

func parseInterval(e Entry) (Interval, error) {
	if strings.TrimSpace(e.Start) == "" || strings.TrimSpace(e.End) == "" {
		return Interval{}, fmt.Errorf("%w: start and end are required", clock.ErrInvalidTime)
	}
	start, err := clock.Parse(e.Start)
	if err != nil {
		return Interval{}, err
	}
	end, err := clock.Parse(e.End)
	if err != nil {
		return Interval{}, err
	}
	if end <= start {
		return Interval{}, fmt.Errorf("%w: end %s not after start %s", clock.ErrInvalidTime, end.HHMM(), start.HHMM())
	}
	return Interval{Start: start, End: end}, nil
}

func (p *plan) slot(t clock.Minutes) Slot {
	end := t + clock.Minutes(p.duration)
	reason := p.evaluate(t)
	return Slot{
		StartMinute:  t,
		EndMinute:    end,
		Start:        t.Clock(),
		End:          end.Clock(),
		DisplayStart: t.Format12(),
		DisplayEnd:   end.Format12(),
		Available:    reason == ReasonNone,
		Reason:       reason,
		Timezone:     p.timezone,
	}
}

// Compute walks the business day in granularity steps and evaluates every
// start that leaves room for the service before close.
func Compute(req Request) (*Result, error) {
	p, err := prepare(&req, true)
	if err != nil {
		return nil, err
	}

	res := &Result{Day: p.day, Skipped: p.skipped, Slots: []Slot{}}
	last := p.close - clock.Minutes(p.duration)
	for t := p.open; t <= last; t += clock.Minutes(p.step) {
		res.Slots = append(res.Slots, p.slot(t))
	}
	return res, nil
}

// Generate returns the ordered day grid, unavailable slots included.
func Generate(req Request) ([]Slot, error) {
	res, err := Compute(req)
	if err != nil {
		return nil, err
	}
	return res.Slots, nil
}

// Explain evaluates one candidate start and returns why it cannot be booked,
// or ReasonNone. Unlike the grid, start need not fall on a granularity step.
func Explain(req Request, start string) (Reason, error) {
	p, err := prepare(&req, false)
	if err != nil {
		return ReasonNone, err
	}
	t, err := clock.Parse(start)
	if err != nil {
		return ReasonNone, fmt.Errorf("candidate start: %w", err)
	}
	if t < p.open || t+clock.Minutes(p.duration) > p.close {
		return ReasonOutsideBusiness, nil
	}
	return p.evaluate(t), nil
}

// IsSlotAvailable validates a single candidate start, e.g. for a reschedule.
func IsSlotAvailable(req Request, start string) (bool, error) {
	reason, err := Explain(req, start)
	if err != nil {
		return false, err
	}
	return reason == ReasonNone, nil
}
