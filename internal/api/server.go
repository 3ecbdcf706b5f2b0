package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"slotbook/internal/availability"
	"slotbook/internal/config"
	"slotbook/internal/model"
)

// Availability is the service behind the HTTP handlers.
type Availability interface {
	Services() []config.ServiceConfig
	Staff(ctx context.Context) ([]model.Staff, error)
	DaySlots(ctx context.Context, staffID int64, date, serviceCode string) (*availability.DayView, error)
	CheckSlot(ctx context.Context, staffID int64, date, serviceCode, start string) (*availability.CheckResult, error)
	Book(ctx context.Context, req availability.BookingRequest) (*model.Appointment, error)
	Cancel(ctx context.Context, id int64) (*model.Appointment, error)
	AddClosure(ctx context.Context, c *model.Closure) error
}

// Options configures the HTTP server.
type Options struct {
	Port          int
	APIKey        string
	RatePerSecond float64
	RateBurst     int
}

// HTTPServer serves the booking API.
type HTTPServer struct {
	svc    Availability
	logger *zerolog.Logger
	server *http.Server
}

// NewHTTPServer builds the router and middleware chain.
func NewHTTPServer(svc Availability, opts Options, logger *zerolog.Logger) *HTTPServer {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	s := &HTTPServer{svc: svc, logger: logger}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/services", s.handleServices)
	mux.HandleFunc("GET /api/v1/staff", s.handleStaff)
	mux.HandleFunc("GET /api/v1/staff/{id}/slots", s.handleSlots)
	mux.HandleFunc("GET /api/v1/staff/{id}/windows", s.handleWindows)
	mux.HandleFunc("POST /api/v1/staff/{id}/slots/check", s.handleCheck)
	mux.HandleFunc("POST /api/v1/staff/{id}/appointments", s.handleBook)
	mux.HandleFunc("POST /api/v1/appointments/{id}/cancel", s.handleCancel)
	mux.HandleFunc("POST /api/v1/closures", s.handleAddClosure)

	handler := chain(mux,
		withRequestID,
		withAccessLog(logger),
		withBodyLimit(1<<20),
		newRateLimiter(opts.RatePerSecond, opts.RateBurst).middleware,
		withAPIKey(opts.APIKey),
	)

	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", opts.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Handler exposes the full middleware chain.
func (s *HTTPServer) Handler() http.Handler {
	return s.server.Handler
}

// Start listens until ctx is canceled, then shuts down gracefully.
func (s *HTTPServer) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.server.Addr).Msg("API server listening")
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(shutdownCtx)
}
