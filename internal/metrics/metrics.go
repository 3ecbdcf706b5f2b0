package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "slotbook"

var (
	once sync.Once

	gridsComputed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "grids_computed_total",
			Help:      "Count of day grids computed by the engine.",
		},
	)

	computeDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "grid_compute_duration_seconds",
			Help:      "Time spent computing a day grid, including store reads.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
	)

	slotChecks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "slot_checks_total",
			Help:      "Count of single-slot checks by outcome.",
		},
		[]string{"result"},
	)

	bookings = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bookings_total",
			Help:      "Count of booking attempts by outcome.",
		},
		[]string{"result"},
	)

	cacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Count of grid cache lookups.",
		},
		[]string{"result"},
	)

	skippedItems = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "skipped_schedule_items_total",
			Help:      "Count of malformed schedule items ignored by the engine.",
		},
		[]string{"kind"},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(gridsComputed, computeDuration, slotChecks, bookings, cacheLookups, skippedItems)
	})
}

func ObserveCompute(d time.Duration) {
	gridsComputed.Inc()
	computeDuration.Observe(d.Seconds())
}

// IncSlotCheck records a check; reason is empty when the slot was free.
func IncSlotCheck(reason string) {
	if reason == "" {
		reason = "available"
	}
	slotChecks.WithLabelValues(reason).Inc()
}

func IncBooking(result string) {
	bookings.WithLabelValues(result).Inc()
}

func IncCacheHit() {
	cacheLookups.WithLabelValues("hit").Inc()
}

func IncCacheMiss() {
	cacheLookups.WithLabelValues("miss").Inc()
}

func IncSkipped(kind string) {
	skippedItems.WithLabelValues(kind).Inc()
}
