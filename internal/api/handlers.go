package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"slotbook/internal/availability"
	"slotbook/internal/calendar"
	"slotbook/internal/clock"
	"slotbook/internal/config"
	"slotbook/internal/db"
	"slotbook/internal/model"
	"slotbook/internal/slots"
)

// SlotsResponse is the body of GET /api/v1/staff/{id}/slots.
type SlotsResponse struct {
	*availability.DayView
	DurationText string `json:"duration_text"`
}

// WindowsResponse is the body of GET /api/v1/staff/{id}/windows.
type WindowsResponse struct {
	StaffID  int64          `json:"staff_id"`
	Date     string         `json:"date"`
	Service  string         `json:"service"`
	Timezone string         `json:"timezone"`
	Windows  []slots.Window `json:"windows"`
}

// CheckRequest is the body of POST /api/v1/staff/{id}/slots/check.
type CheckRequest struct {
	Date    string `json:"date"`
	Service string `json:"service"`
	Start   string `json:"start"`
}

// ClosureRequest is the body of POST /api/v1/closures.
type ClosureRequest struct {
	Date   string `json:"date"`
	Start  string `json:"start"`
	End    string `json:"end"`
	Reason string `json:"reason"`
}

type serviceView struct {
	config.ServiceConfig
	DurationText string `json:"duration_text"`
}

// GET /api/v1/services
func (s *HTTPServer) handleServices(w http.ResponseWriter, _ *http.Request) {
	services := s.svc.Services()
	out := make([]serviceView, 0, len(services))
	for _, svc := range services {
		out = append(out, serviceView{ServiceConfig: svc, DurationText: slots.FormatDuration(svc.DurationMinutes)})
	}
	writeJSON(w, http.StatusOK, map[string]any{"services": out})
}

// GET /api/v1/staff
func (s *HTTPServer) handleStaff(w http.ResponseWriter, r *http.Request) {
	staff, err := s.svc.Staff(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if staff == nil {
		staff = []model.Staff{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"staff": staff})
}

// GET /api/v1/staff/{id}/slots?date=YYYY-MM-DD&service=code[&available=1]
func (s *HTTPServer) handleSlots(w http.ResponseWriter, r *http.Request) {
	staffID, ok := pathID(w, r)
	if !ok {
		return
	}
	date, service, ok := dayQuery(w, r)
	if !ok {
		return
	}

	view, err := s.svc.DaySlots(r.Context(), staffID, date, service)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if r.URL.Query().Get("available") == "1" {
		filtered := *view
		filtered.Slots = slots.AvailableOnly(view.Slots)
		view = &filtered
	}
	if view.Slots == nil {
		view.Slots = []slots.Slot{}
	}

	writeJSON(w, http.StatusOK, SlotsResponse{DayView: view, DurationText: slots.FormatDuration(view.Duration)})
}

// GET /api/v1/staff/{id}/windows?date=YYYY-MM-DD&service=code
func (s *HTTPServer) handleWindows(w http.ResponseWriter, r *http.Request) {
	staffID, ok := pathID(w, r)
	if !ok {
		return
	}
	date, service, ok := dayQuery(w, r)
	if !ok {
		return
	}

	view, err := s.svc.DaySlots(r.Context(), staffID, date, service)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, WindowsResponse{
		StaffID:  view.StaffID,
		Date:     view.Date,
		Service:  view.Service,
		Timezone: view.Timezone,
		Windows:  slots.FreeWindows(view.Slots),
	})
}

// POST /api/v1/staff/{id}/slots/check
func (s *HTTPServer) handleCheck(w http.ResponseWriter, r *http.Request) {
	staffID, ok := pathID(w, r)
	if !ok {
		return
	}
	var req CheckRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Date == "" || req.Service == "" || req.Start == "" {
		writeError(w, http.StatusBadRequest, "date, service and start are required")
		return
	}

	res, err := s.svc.CheckSlot(r.Context(), staffID, req.Date, req.Service, req.Start)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// POST /api/v1/staff/{id}/appointments
func (s *HTTPServer) handleBook(w http.ResponseWriter, r *http.Request) {
	staffID, ok := pathID(w, r)
	if !ok {
		return
	}
	var req availability.BookingRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Date == "" || req.ServiceCode == "" || req.Start == "" {
		writeError(w, http.StatusBadRequest, "date, service and start are required")
		return
	}
	req.StaffID = staffID

	appt, err := s.svc.Book(r.Context(), req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, appt)
}

// POST /api/v1/appointments/{id}/cancel
func (s *HTTPServer) handleCancel(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	appt, err := s.svc.Cancel(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, appt)
}

// POST /api/v1/closures
func (s *HTTPServer) handleAddClosure(w http.ResponseWriter, r *http.Request) {
	var req ClosureRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	c := &model.Closure{Date: req.Date, StartTime: req.Start, EndTime: req.End, Reason: req.Reason}
	if err := s.svc.AddClosure(r.Context(), c); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

func dayQuery(w http.ResponseWriter, r *http.Request) (date, service string, ok bool) {
	q := r.URL.Query()
	date, service = q.Get("date"), q.Get("service")
	if date == "" || service == "" {
		writeError(w, http.StatusBadRequest, "date and service are required")
		return "", "", false
	}
	return date, service, true
}

func decodeJSON(w http.ResponseWriter, r *http.Request, out any) bool {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(out); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

// writeServiceError maps service errors onto HTTP statuses.
func (s *HTTPServer) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var unavailable *availability.UnavailableError
	switch {
	case errors.As(err, &unavailable):
		writeJSON(w, http.StatusConflict, map[string]any{
			"error":              err.Error(),
			"unavailable_reason": unavailable.Reason,
		})
	case errors.Is(err, availability.ErrStaffNotFound), errors.Is(err, db.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, availability.ErrUnknownService),
		errors.Is(err, availability.ErrStaffInactive),
		errors.Is(err, availability.ErrOutsideHorizon),
		errors.Is(err, availability.ErrInvalidBooking),
		errors.Is(err, calendar.ErrInvalidDate),
		errors.Is(err, clock.ErrInvalidTime):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.logger.Error().Err(err).
			Str("request_id", requestIDFromContext(r.Context())).
			Str("path", r.URL.Path).
			Msg("request failed")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
