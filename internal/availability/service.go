// Package availability joins the shop configuration, the schedule store and
// the slot engine into the operations the API serves.
package availability

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"slotbook/internal/calendar"
	"slotbook/internal/clock"
	"slotbook/internal/config"
	"slotbook/internal/db"
	"slotbook/internal/events"
	"slotbook/internal/metrics"
	"slotbook/internal/model"
	"slotbook/internal/slots"
)

var (
	ErrUnknownService  = errors.New("unknown service")
	ErrStaffNotFound   = errors.New("staff not found")
	ErrStaffInactive   = errors.New("staff is not active")
	ErrSlotUnavailable = errors.New("slot unavailable")
	ErrOutsideHorizon  = errors.New("date outside booking horizon")
	ErrInvalidBooking  = errors.New("invalid booking")
)

// UnavailableError carries the reason a requested slot cannot be booked.
type UnavailableError struct {
	Reason slots.Reason
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("%s: %s", ErrSlotUnavailable, e.Reason)
}

func (e *UnavailableError) Unwrap() error { return ErrSlotUnavailable }

// Store provides the schedule data for one staff member's day.
type Store interface {
	GetStaff(ctx context.Context, id int64) (*model.Staff, error)
	ListActiveStaff(ctx context.Context) ([]model.Staff, error)
	ListWorkingHours(ctx context.Context, staffID int64) ([]model.StaffInterval, error)
	ListBreaks(ctx context.Context, staffID int64) ([]model.StaffInterval, error)
	ListAppointmentsOnDate(ctx context.Context, staffID int64, date string) ([]model.Appointment, error)
	ListClosuresOnDate(ctx context.Context, date string) ([]model.Closure, error)
	CreateAppointment(ctx context.Context, a *model.Appointment) error
	GetAppointment(ctx context.Context, id int64) (*model.Appointment, error)
	UpdateAppointmentStatus(ctx context.Context, id int64, status string) error
	SetClosure(ctx context.Context, c *model.Closure) error
}

// GridCache stores computed day grids.
type GridCache interface {
	Get(ctx context.Context, staffID int64, date, service string) ([]slots.Slot, bool)
	Set(ctx context.Context, staffID int64, date, service string, grid []slots.Slot)
	InvalidateDay(ctx context.Context, staffID int64, date string) error
	InvalidateDate(ctx context.Context, date string) error
	InvalidateAll(ctx context.Context) error
}

type noCache struct{}

func (noCache) Get(context.Context, int64, string, string) ([]slots.Slot, bool) { return nil, false }
func (noCache) Set(context.Context, int64, string, string, []slots.Slot)        {}
func (noCache) InvalidateDay(context.Context, int64, string) error              { return nil }
func (noCache) InvalidateDate(context.Context, string) error                    { return nil }
func (noCache) InvalidateAll(context.Context) error                             { return nil }

// DayView is a staff member's grid for one service on one date.
type DayView struct {
	StaffID  int64        `json:"staff_id"`
	Date     string       `json:"date"`
	Day      string       `json:"day"`
	Service  string       `json:"service"`
	Duration int          `json:"duration_minutes"`
	Timezone string       `json:"timezone"`
	Slots    []slots.Slot `json:"slots"`
}

// CheckResult is the outcome of a single-slot check.
type CheckResult struct {
	Available bool         `json:"available"`
	Reason    slots.Reason `json:"unavailable_reason"`
}

// BookingRequest asks for a service at a start time.
type BookingRequest struct {
	StaffID     int64  `json:"-"`
	Date        string `json:"date"`
	ServiceCode string `json:"service"`
	Start       string `json:"start"`
	ClientName  string `json:"client_name"`
	ClientPhone string `json:"client_phone"`
	Comment     string `json:"comment"`
}

// Service answers availability questions and takes bookings.
type Service struct {
	store  Store
	cache  GridCache
	bus    *events.EventBus
	logger *zerolog.Logger

	mu         sync.RWMutex
	shop       *config.ShopConfig
	maxAdvance time.Duration
	now        func() time.Time
}

// NewService wires the service. cache and bus may be nil.
func NewService(store Store, shop *config.ShopConfig, cache GridCache, bus *events.EventBus, maxAdvance time.Duration, logger *zerolog.Logger) *Service {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	s := &Service{
		store:      store,
		cache:      cache,
		bus:        bus,
		logger:     logger,
		shop:       shop,
		maxAdvance: maxAdvance,
		now:        time.Now,
	}
	if s.cache == nil {
		s.cache = noCache{}
	}
	if bus != nil {
		s.subscribe()
	}
	return s
}

func (s *Service) subscribe() {
	s.bus.Subscribe(events.ShopReloaded, func(events.Event) error {
		return s.cache.InvalidateAll(context.Background())
	})
	s.bus.Subscribe(events.ScheduleChanged, func(e events.Event) error {
		return s.cache.InvalidateDay(context.Background(), e.StaffID, e.Date)
	})
	s.bus.Subscribe(events.ClosureChanged, func(e events.Event) error {
		return s.cache.InvalidateDate(context.Background(), e.Date)
	})
}

// Shop returns the current shop configuration.
func (s *Service) Shop() *config.ShopConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.shop
}

// SetShop swaps the shop configuration and announces the reload.
func (s *Service) SetShop(cfg *config.ShopConfig) {
	s.mu.Lock()
	s.shop = cfg
	s.mu.Unlock()

	s.logger.Info().Str("shop", cfg.String()).Msg("shop config applied")
	s.publish(events.Event{Type: events.ShopReloaded})
}

func (s *Service) publish(e events.Event) {
	if s.bus != nil {
		s.bus.Publish(e)
	}
}

// Services lists the bookable services.
func (s *Service) Services() []config.ServiceConfig {
	return s.Shop().Services
}

// Staff lists active staff members.
func (s *Service) Staff(ctx context.Context) ([]model.Staff, error) {
	return s.store.ListActiveStaff(ctx)
}

// DaySlots returns the full grid for staffID on date for a service.
func (s *Service) DaySlots(ctx context.Context, staffID int64, date, serviceCode string) (*DayView, error) {
	shop := s.Shop()
	svc, err := lookupService(shop, serviceCode)
	if err != nil {
		return nil, err
	}
	day, err := calendar.ResolveDay(date, shop.Location())
	if err != nil {
		return nil, err
	}

	view := &DayView{
		StaffID:  staffID,
		Date:     day.Date,
		Day:      day.Name,
		Service:  svc.Code,
		Duration: svc.DurationMinutes,
		Timezone: shop.Location().String(),
	}

	if grid, ok := s.cache.Get(ctx, staffID, day.Date, svc.Code); ok {
		metrics.IncCacheHit()
		view.Slots = grid
		return view, nil
	}
	metrics.IncCacheMiss()

	started := time.Now()
	req, err := s.buildRequest(ctx, shop, staffID, day, svc)
	if err != nil {
		return nil, err
	}
	res, err := slots.Compute(req)
	if err != nil {
		return nil, fmt.Errorf("compute slots: %w", err)
	}
	metrics.ObserveCompute(time.Since(started))
	s.logSkipped(staffID, day.Date, res.Skipped)

	view.Slots = res.Slots
	s.cache.Set(ctx, staffID, day.Date, svc.Code, res.Slots)
	return view, nil
}

// CheckSlot evaluates one candidate start for a service.
func (s *Service) CheckSlot(ctx context.Context, staffID int64, date, serviceCode, start string) (*CheckResult, error) {
	_, reason, err := s.explain(ctx, staffID, date, serviceCode, start)
	if err != nil {
		return nil, err
	}
	metrics.IncSlotCheck(string(reason))
	return &CheckResult{Available: reason == slots.ReasonNone, Reason: reason}, nil
}

// explain resolves date in shop time and evaluates start against that day.
// The returned day carries the canonical date used for storage and cache keys.
func (s *Service) explain(ctx context.Context, staffID int64, date, serviceCode, start string) (calendar.Day, slots.Reason, error) {
	shop := s.Shop()
	svc, err := lookupService(shop, serviceCode)
	if err != nil {
		return calendar.Day{}, slots.ReasonNone, err
	}
	day, err := calendar.ResolveDay(date, shop.Location())
	if err != nil {
		return calendar.Day{}, slots.ReasonNone, err
	}
	req, err := s.buildRequest(ctx, shop, staffID, day, svc)
	if err != nil {
		return day, slots.ReasonNone, err
	}
	reason, err := slots.Explain(req, start)
	return day, reason, err
}

// Book checks the slot and records the appointment. The store repeats the
// overlap check inside its transaction, so a concurrent booking loses with
// ReasonBooked.
func (s *Service) Book(ctx context.Context, br BookingRequest) (*model.Appointment, error) {
	if strings.TrimSpace(br.ClientName) == "" {
		return nil, fmt.Errorf("%w: client_name is required", ErrInvalidBooking)
	}
	if err := s.checkHorizon(br.Date); err != nil {
		metrics.IncBooking("rejected")
		return nil, err
	}

	staff, err := s.staff(ctx, br.StaffID)
	if err != nil {
		return nil, err
	}
	if !staff.IsActive {
		return nil, fmt.Errorf("staff %d: %w", br.StaffID, ErrStaffInactive)
	}

	day, reason, err := s.explain(ctx, br.StaffID, br.Date, br.ServiceCode, br.Start)
	if err != nil {
		return nil, err
	}
	if reason != slots.ReasonNone {
		metrics.IncBooking("unavailable")
		return nil, &UnavailableError{Reason: reason}
	}

	svc, err := lookupService(s.Shop(), br.ServiceCode)
	if err != nil {
		return nil, err
	}
	start, err := clock.Parse(br.Start)
	if err != nil {
		return nil, err
	}
	end := start + clock.Minutes(svc.DurationMinutes)

	appt := &model.Appointment{
		StaffID:     br.StaffID,
		ServiceCode: svc.Code,
		ClientName:  strings.TrimSpace(br.ClientName),
		ClientPhone: strings.TrimSpace(br.ClientPhone),
		Date:        day.Date,
		StartTime:   start.HHMM(),
		EndTime:     end.HHMM(),
		Status:      model.StatusPending,
		Comment:     br.Comment,
	}
	if err := s.store.CreateAppointment(ctx, appt); err != nil {
		if errors.Is(err, db.ErrSlotTaken) {
			metrics.IncBooking("conflict")
			return nil, &UnavailableError{Reason: slots.ReasonBooked}
		}
		metrics.IncBooking("error")
		return nil, fmt.Errorf("create appointment: %w", err)
	}

	metrics.IncBooking("created")
	s.logger.Info().
		Int64("appointment_id", appt.ID).
		Int64("staff_id", appt.StaffID).
		Str("date", appt.Date).
		Str("start", appt.StartTime).
		Str("service", appt.ServiceCode).
		Msg("appointment booked")

	s.publish(events.Event{Type: events.ScheduleChanged, StaffID: appt.StaffID, Date: appt.Date})
	return appt, nil
}

// Cancel marks an appointment canceled, freeing its time.
func (s *Service) Cancel(ctx context.Context, id int64) (*model.Appointment, error) {
	appt, err := s.store.GetAppointment(ctx, id)
	if err != nil {
		return nil, err
	}
	if !appt.IsActive() {
		return appt, nil
	}
	if err := s.store.UpdateAppointmentStatus(ctx, id, model.StatusCanceled); err != nil {
		return nil, fmt.Errorf("cancel appointment: %w", err)
	}
	appt.Status = model.StatusCanceled

	s.logger.Info().Int64("appointment_id", id).Msg("appointment canceled")
	s.publish(events.Event{Type: events.ScheduleChanged, StaffID: appt.StaffID, Date: appt.Date})
	return appt, nil
}

// AddClosure records a shop-wide closure. Empty start and end close the whole day.
func (s *Service) AddClosure(ctx context.Context, c *model.Closure) error {
	loc := s.Shop().Location()
	d, err := calendar.ParseDate(c.Date, loc)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBooking, err)
	}
	c.Date = d.Format(calendar.DateLayout)
	if (c.StartTime == "") != (c.EndTime == "") {
		return fmt.Errorf("%w: closure needs both start and end, or neither", ErrInvalidBooking)
	}
	if c.StartTime != "" {
		start, err := clock.Parse(c.StartTime)
		if err != nil {
			return fmt.Errorf("%w: start: %v", ErrInvalidBooking, err)
		}
		end, err := clock.Parse(c.EndTime)
		if err != nil {
			return fmt.Errorf("%w: end: %v", ErrInvalidBooking, err)
		}
		if end <= start {
			return fmt.Errorf("%w: closure end must be after start", ErrInvalidBooking)
		}
		c.StartTime, c.EndTime = start.HHMM(), end.HHMM()
	}
	c.Source = model.ClosureSourceManual
	if err := s.store.SetClosure(ctx, c); err != nil {
		return fmt.Errorf("set closure: %w", err)
	}
	s.publish(events.Event{Type: events.ClosureChanged, Date: c.Date})
	return nil
}

func (s *Service) staff(ctx context.Context, id int64) (*model.Staff, error) {
	staff, err := s.store.GetStaff(ctx, id)
	if errors.Is(err, db.ErrNotFound) {
		return nil, fmt.Errorf("staff %d: %w", id, ErrStaffNotFound)
	}
	if err != nil {
		return nil, err
	}
	return staff, nil
}

// checkHorizon rejects dates before today or further out than maxAdvance,
// both in shop time.
func (s *Service) checkHorizon(date string) error {
	loc := s.Shop().Location()
	d, err := calendar.ParseDate(date, loc)
	if err != nil {
		return err
	}
	now := s.now().In(loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	if d.Before(today) {
		return fmt.Errorf("%w: %s is in the past", ErrOutsideHorizon, date)
	}
	days := int(s.maxAdvance.Hours() / 24)
	if days > 0 && d.After(today.AddDate(0, 0, days)) {
		return fmt.Errorf("%w: %s is more than %d days ahead", ErrOutsideHorizon, date, days)
	}
	return nil
}

func (s *Service) logSkipped(staffID int64, date string, skipped []slots.Skipped) {
	for _, sk := range skipped {
		metrics.IncSkipped(sk.Kind)
		s.logger.Warn().
			Err(sk.Err).
			Int64("staff_id", staffID).
			Str("date", date).
			Str("kind", sk.Kind).
			Int("index", sk.Index).
			Msg("malformed schedule item ignored")
	}
}

func lookupService(shop *config.ShopConfig, code string) (*config.ServiceConfig, error) {
	svc := shop.GetService(code)
	if svc == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownService, code)
	}
	return svc, nil
}
