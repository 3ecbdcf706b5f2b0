package events

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Event types.
const (
	// ShopReloaded fires after shop.yaml has been re-read and synced.
	ShopReloaded = "shop.reloaded"
	// ScheduleChanged fires when a staff member's day changed, e.g. a booking.
	ScheduleChanged = "schedule.changed"
	// ClosureChanged fires when a shop-wide closure was added or removed.
	ClosureChanged = "closure.changed"
)

// Event is a lightweight domain event. StaffID and Date are zero when the
// event is not scoped to them.
type Event struct {
	Type      string
	StaffID   int64
	Date      string
	CreatedAt time.Time
}

// EventHandler reacts to an event.
type EventHandler func(event Event) error

// EventBus provides in-process pub/sub for events.
type EventBus struct {
	subscribers map[string][]EventHandler
	mu          sync.RWMutex
	logger      *zerolog.Logger
}

// NewEventBus constructs an empty bus. Handler errors go to logger.
func NewEventBus(logger *zerolog.Logger) *EventBus {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &EventBus{subscribers: make(map[string][]EventHandler), logger: logger}
}

// Subscribe registers a handler for a given event type.
func (b *EventBus) Subscribe(eventType string, handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[eventType] = append(b.subscribers[eventType], handler)
}

// Publish notifies subscribers of the event type and returns how many handlers failed.
func (b *EventBus) Publish(event Event) int {
	b.mu.RLock()
	handlers := append([]EventHandler(nil), b.subscribers[event.Type]...)
	b.mu.RUnlock()

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	failed := 0
	for _, handler := range handlers {
		// Handlers run synchronously; caller decides concurrency model.
		if err := handler(event); err != nil {
			failed++
			b.logger.Warn().Err(err).
				Str("type", event.Type).
				Int64("staff_id", event.StaffID).
				Str("date", event.Date).
				Msg("event handler failed")
		}
	}
	return failed
}
