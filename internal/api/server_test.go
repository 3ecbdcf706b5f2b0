package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"slotbook/internal/availability"
	"slotbook/internal/calendar"
	"slotbook/internal/config"
	"slotbook/internal/model"
	"slotbook/internal/slots"
)

const testAPIKey = "valid-key"

type mockAvailability struct {
	mock.Mock
}

func (m *mockAvailability) Services() []config.ServiceConfig {
	return m.Called().Get(0).([]config.ServiceConfig)
}
func (m *mockAvailability) Staff(ctx context.Context) ([]model.Staff, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.Staff), args.Error(1)
}
func (m *mockAvailability) DaySlots(ctx context.Context, staffID int64, date, service string) (*availability.DayView, error) {
	args := m.Called(ctx, staffID, date, service)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*availability.DayView), args.Error(1)
}
func (m *mockAvailability) CheckSlot(ctx context.Context, staffID int64, date, service, start string) (*availability.CheckResult, error) {
	args := m.Called(ctx, staffID, date, service, start)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*availability.CheckResult), args.Error(1)
}
func (m *mockAvailability) Book(ctx context.Context, req availability.BookingRequest) (*model.Appointment, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Appointment), args.Error(1)
}
func (m *mockAvailability) Cancel(ctx context.Context, id int64) (*model.Appointment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Appointment), args.Error(1)
}
func (m *mockAvailability) AddClosure(ctx context.Context, c *model.Closure) error {
	return m.Called(ctx, c).Error(0)
}

func newTestServer(svc Availability, opts Options) http.Handler {
	logger := zerolog.New(io.Discard)
	if opts.APIKey == "" {
		opts.APIKey = testAPIKey
	}
	return NewHTTPServer(svc, opts, &logger).Handler()
}

func do(t *testing.T, h http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("X-Api-Key", testAPIKey)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func dayView() *availability.DayView {
	return &availability.DayView{
		StaffID:  1,
		Date:     "2026-01-14",
		Day:      "wednesday",
		Service:  "cut",
		Duration: 30,
		Timezone: "UTC",
		Slots: []slots.Slot{
			{Start: "09:00:00", End: "09:30:00", Available: true, Timezone: "UTC"},
			{Start: "09:30:00", End: "10:00:00", Available: true, Timezone: "UTC"},
			{Start: "10:00:00", End: "10:30:00", Reason: slots.ReasonBooked, Timezone: "UTC"},
			{Start: "10:30:00", End: "11:00:00", Available: true, Timezone: "UTC"},
		},
	}
}

func TestAPIKey(t *testing.T) {
	svc := new(mockAvailability)
	svc.On("Services").Return([]config.ServiceConfig{{Code: "cut", Name: "Cut", DurationMinutes: 30}})
	h := newTestServer(svc, Options{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/services", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))

	rec = do(t, h, http.MethodGet, "/api/v1/services", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	services := decode(t, rec)["services"].([]any)
	require.Len(t, services, 1)
	first := services[0].(map[string]any)
	assert.Equal(t, "cut", first["code"])
	assert.Equal(t, "30 min", first["duration_text"])
}

func TestRequestIDPassthrough(t *testing.T) {
	svc := new(mockAvailability)
	svc.On("Services").Return([]config.ServiceConfig{})
	h := newTestServer(svc, Options{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/services", nil)
	req.Header.Set("X-Api-Key", testAPIKey)
	req.Header.Set("X-Request-Id", "abc-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-Id"))
}

func TestRateLimit(t *testing.T) {
	svc := new(mockAvailability)
	svc.On("Services").Return([]config.ServiceConfig{})
	h := newTestServer(svc, Options{RatePerSecond: 0.001, RateBurst: 2})

	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/api/v1/services", nil).Code)
	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/api/v1/services", nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, do(t, h, http.MethodGet, "/api/v1/services", nil).Code)
}

func TestHandleSlots(t *testing.T) {
	svc := new(mockAvailability)
	svc.On("DaySlots", mock.Anything, int64(1), "2026-01-14", "cut").Return(dayView(), nil)
	svc.On("DaySlots", mock.Anything, int64(1), "2026-01-14", "massage").
		Return(nil, fmt.Errorf("%w: %q", availability.ErrUnknownService, "massage"))
	svc.On("DaySlots", mock.Anything, int64(9), "2026-01-14", "cut").
		Return(nil, fmt.Errorf("staff 9: %w", availability.ErrStaffNotFound))
	svc.On("DaySlots", mock.Anything, int64(1), "14-01-2026", "cut").
		Return(nil, fmt.Errorf("%w: %q", calendar.ErrInvalidDate, "14-01-2026"))
	svc.On("DaySlots", mock.Anything, int64(2), "2026-01-14", "cut").Return(nil, errors.New("disk on fire"))
	h := newTestServer(svc, Options{})

	t.Run("Full", func(t *testing.T) {
		rec := do(t, h, http.MethodGet, "/api/v1/staff/1/slots?date=2026-01-14&service=cut", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		body := decode(t, rec)
		assert.Equal(t, "wednesday", body["day"])
		assert.Equal(t, "30 min", body["duration_text"])
		list := body["slots"].([]any)
		require.Len(t, list, 4)
		booked := list[2].(map[string]any)
		assert.Equal(t, "Booked", booked["unavailable_reason"])
		assert.Nil(t, list[0].(map[string]any)["unavailable_reason"])
	})

	t.Run("AvailableOnly", func(t *testing.T) {
		rec := do(t, h, http.MethodGet, "/api/v1/staff/1/slots?date=2026-01-14&service=cut&available=1", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, decode(t, rec)["slots"].([]any), 3)
	})

	tests := []struct {
		name       string
		target     string
		wantStatus int
	}{
		{"missing service", "/api/v1/staff/1/slots?date=2026-01-14", http.StatusBadRequest},
		{"bad id", "/api/v1/staff/abc/slots?date=2026-01-14&service=cut", http.StatusBadRequest},
		{"unknown service", "/api/v1/staff/1/slots?date=2026-01-14&service=massage", http.StatusBadRequest},
		{"bad date", "/api/v1/staff/1/slots?date=14-01-2026&service=cut", http.StatusBadRequest},
		{"unknown staff", "/api/v1/staff/9/slots?date=2026-01-14&service=cut", http.StatusNotFound},
		{"internal", "/api/v1/staff/2/slots?date=2026-01-14&service=cut", http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodGet, tt.target, nil)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.NotEmpty(t, decode(t, rec)["error"])
		})
	}
}

func TestHandleWindows(t *testing.T) {
	svc := new(mockAvailability)
	svc.On("DaySlots", mock.Anything, int64(1), "2026-01-14", "cut").Return(dayView(), nil)
	h := newTestServer(svc, Options{})

	rec := do(t, h, http.MethodGet, "/api/v1/staff/1/windows?date=2026-01-14&service=cut", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp WindowsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []slots.Window{
		{Start: "09:00:00", End: "10:00:00", Slots: 2},
		{Start: "10:30:00", End: "11:00:00", Slots: 1},
	}, resp.Windows)
}

func TestHandleCheck(t *testing.T) {
	svc := new(mockAvailability)
	svc.On("CheckSlot", mock.Anything, int64(1), "2026-01-14", "cut", "10:00").
		Return(&availability.CheckResult{Reason: slots.ReasonBooked}, nil)
	h := newTestServer(svc, Options{})

	rec := do(t, h, http.MethodPost, "/api/v1/staff/1/slots/check",
		CheckRequest{Date: "2026-01-14", Service: "cut", Start: "10:00"})
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, false, body["available"])
	assert.Equal(t, "Booked", body["unavailable_reason"])

	rec = do(t, h, http.MethodPost, "/api/v1/staff/1/slots/check", CheckRequest{Date: "2026-01-14"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/v1/staff/1/slots/check", "not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid JSON body", decode(t, rec)["error"])

	rec = do(t, h, http.MethodGet, "/api/v1/staff/1/slots/check", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHandleBook(t *testing.T) {
	svc := new(mockAvailability)
	ok := availability.BookingRequest{StaffID: 1, Date: "2026-01-14", ServiceCode: "cut", Start: "09:00", ClientName: "Jo"}
	taken := ok
	taken.Start = "10:00"
	far := ok
	far.Date = "2027-01-14"

	svc.On("Book", mock.Anything, ok).Return(&model.Appointment{
		ID: 5, StaffID: 1, ServiceCode: "cut", ClientName: "Jo",
		Date: "2026-01-14", StartTime: "09:00", EndTime: "09:30", Status: model.StatusPending,
	}, nil)
	svc.On("Book", mock.Anything, taken).Return(nil, &availability.UnavailableError{Reason: slots.ReasonBooked})
	svc.On("Book", mock.Anything, far).Return(nil, fmt.Errorf("%w: too far", availability.ErrOutsideHorizon))
	h := newTestServer(svc, Options{})

	body := func(r availability.BookingRequest) map[string]string {
		return map[string]string{"date": r.Date, "service": r.ServiceCode, "start": r.Start, "client_name": r.ClientName}
	}

	rec := do(t, h, http.MethodPost, "/api/v1/staff/1/appointments", body(ok))
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, float64(5), decode(t, rec)["id"])

	rec = do(t, h, http.MethodPost, "/api/v1/staff/1/appointments", body(taken))
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "Booked", decode(t, rec)["unavailable_reason"])

	rec = do(t, h, http.MethodPost, "/api/v1/staff/1/appointments", body(far))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/v1/staff/1/appointments", map[string]string{"date": "2026-01-14"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertNumberOfCalls(t, "Book", 3)
}

func TestHandleCancel(t *testing.T) {
	svc := new(mockAvailability)
	svc.On("Cancel", mock.Anything, int64(5)).Return(&model.Appointment{ID: 5, Status: model.StatusCanceled}, nil)
	svc.On("Cancel", mock.Anything, int64(6)).Return(nil, errors.New("appointment 6: not found"))
	h := newTestServer(svc, Options{})

	rec := do(t, h, http.MethodPost, "/api/v1/appointments/5/cancel", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, model.StatusCanceled, decode(t, rec)["status"])

	rec = do(t, h, http.MethodPost, "/api/v1/appointments/6/cancel", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal error", decode(t, rec)["error"])
}

func TestHandleAddClosure(t *testing.T) {
	svc := new(mockAvailability)
	svc.On("AddClosure", mock.Anything, mock.MatchedBy(func(c *model.Closure) bool {
		return c.Date == "2026-02-01"
	})).Return(nil)
	svc.On("AddClosure", mock.Anything, mock.Anything).Return(fmt.Errorf("%w: bad date", availability.ErrInvalidBooking))
	h := newTestServer(svc, Options{})

	rec := do(t, h, http.MethodPost, "/api/v1/closures", ClosureRequest{Date: "2026-02-01", Reason: "Stocktake"})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Stocktake", decode(t, rec)["reason"])

	rec = do(t, h, http.MethodPost, "/api/v1/closures", ClosureRequest{Date: "soon"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
