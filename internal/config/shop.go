package config

import (
	"fmt"
	"os"
	"time"

	"slotbook/internal/calendar"
	"slotbook/internal/clock"

	"gopkg.in/yaml.v3"
)

// ScheduleEntry is a working-hours window or a break. Day is optional.
type ScheduleEntry struct {
	Day   string `yaml:"day,omitempty"` // "Monday"
	Start string `yaml:"start"`         // "09:00"
	End   string `yaml:"end"`           // "17:00"
	Label string `yaml:"label,omitempty"`
}

// ServiceConfig is a bookable service and its length.
type ServiceConfig struct {
	Code            string `yaml:"code" json:"code"`
	Name            string `yaml:"name" json:"name"`
	DurationMinutes int    `yaml:"duration_minutes" json:"duration_minutes"`
}

// StaffConfig seeds a staff member's weekly schedule.
type StaffConfig struct {
	ID           int64           `yaml:"id"`
	Name         string          `yaml:"name"`
	IsActive     bool            `yaml:"is_active"`
	WorkingHours []ScheduleEntry `yaml:"working_hours"`
	Breaks       []ScheduleEntry `yaml:"breaks"`
}

// ClosureConfig closes the shop on a date. Omitting start and end closes the whole day.
type ClosureConfig struct {
	Date   string `yaml:"date"` // "2026-12-25"
	Start  string `yaml:"start,omitempty"`
	End    string `yaml:"end,omitempty"`
	Reason string `yaml:"reason"`
}

// ShopConfig is the root configuration for shop.yaml.
type ShopConfig struct {
	Name        string          `yaml:"name"`
	Timezone    string          `yaml:"timezone"`
	Open        string          `yaml:"open"`
	Close       string          `yaml:"close"`
	SlotMinutes int             `yaml:"slot_minutes"`
	DaysOff     []string        `yaml:"days_off"`
	Services    []ServiceConfig `yaml:"services"`
	Staff       []StaffConfig   `yaml:"staff"`
	Closures    []ClosureConfig `yaml:"closures"`
}

// LoadShopConfig loads and validates shop configuration from YAML file.
func LoadShopConfig(path string) (*ShopConfig, error) {
	if path == "" {
		path = "configs/shop.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read shop config: %w", err)
	}
	return parseShopConfig(data)
}

func parseShopConfig(data []byte) (*ShopConfig, error) {
	var cfg ShopConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse shop config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate shop config: %w", err)
	}

	return &cfg, nil
}

// Validate checks the configuration for errors.
func (c *ShopConfig) Validate() error {
	if c.Timezone == "" {
		return fmt.Errorf("timezone is required")
	}
	if _, err := calendar.LoadZone(c.Timezone); err != nil {
		return fmt.Errorf("timezone: %w", err)
	}

	open, err := clock.Parse(c.Open)
	if err != nil {
		return fmt.Errorf("open: invalid format '%s', expected HH:MM", c.Open)
	}
	closeAt, err := clock.Parse(c.Close)
	if err != nil {
		return fmt.Errorf("close: invalid format '%s', expected HH:MM", c.Close)
	}
	if closeAt <= open {
		return fmt.Errorf("close must be after open")
	}
	if c.SlotMinutes <= 0 {
		return fmt.Errorf("slot_minutes must be positive")
	}

	for i, d := range c.DaysOff {
		if _, err := calendar.ParseWeekday(d); err != nil {
			return fmt.Errorf("days_off[%d]: %w", i, err)
		}
	}

	if len(c.Services) == 0 {
		return fmt.Errorf("no services defined")
	}
	codes := make(map[string]bool)
	for i, s := range c.Services {
		if s.Code == "" {
			return fmt.Errorf("services[%d]: code is required", i)
		}
		if codes[s.Code] {
			return fmt.Errorf("services[%d]: duplicate code '%s'", i, s.Code)
		}
		codes[s.Code] = true
		if s.DurationMinutes <= 0 {
			return fmt.Errorf("services[%d]: duration_minutes must be positive", i)
		}
	}

	ids := make(map[int64]bool)
	for i, st := range c.Staff {
		if st.ID <= 0 {
			return fmt.Errorf("staff[%d]: id must be positive, got %d", i, st.ID)
		}
		if ids[st.ID] {
			return fmt.Errorf("staff[%d]: duplicate id %d", i, st.ID)
		}
		ids[st.ID] = true
		if st.Name == "" {
			return fmt.Errorf("staff[%d]: name is required", i)
		}
		for j, e := range st.WorkingHours {
			if err := validateEntry(e); err != nil {
				return fmt.Errorf("staff[%d].working_hours[%d]: %w", i, j, err)
			}
		}
		for j, e := range st.Breaks {
			if err := validateEntry(e); err != nil {
				return fmt.Errorf("staff[%d].breaks[%d]: %w", i, j, err)
			}
		}
	}

	for i, cl := range c.Closures {
		if _, err := time.Parse(calendar.DateLayout, cl.Date); err != nil {
			return fmt.Errorf("closures[%d]: invalid date format '%s', expected YYYY-MM-DD", i, cl.Date)
		}
		if cl.Start == "" && cl.End == "" {
			continue
		}
		if err := validateEntry(ScheduleEntry{Start: cl.Start, End: cl.End}); err != nil {
			return fmt.Errorf("closures[%d]: %w", i, err)
		}
	}

	return nil
}

func validateEntry(e ScheduleEntry) error {
	start, err := clock.Parse(e.Start)
	if err != nil {
		return fmt.Errorf("start: %w", err)
	}
	end, err := clock.Parse(e.End)
	if err != nil {
		return fmt.Errorf("end: %w", err)
	}
	if end <= start {
		return fmt.Errorf("end must be after start")
	}
	if e.Day != "" {
		if _, err := calendar.ParseWeekday(e.Day); err != nil {
			return err
		}
	}
	return nil
}

// Location returns the shop's time zone. Validate has already checked it.
func (c *ShopConfig) Location() *time.Location {
	loc, err := calendar.LoadZone(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// GetService returns a service by code.
func (c *ShopConfig) GetService(code string) *ServiceConfig {
	for i := range c.Services {
		if c.Services[i].Code == code {
			return &c.Services[i]
		}
	}
	return nil
}

// IsDayOff checks if a weekday is a day off for the whole shop.
func (c *ShopConfig) IsDayOff(weekday time.Weekday) bool {
	for _, d := range c.DaysOff {
		if wd, err := calendar.ParseWeekday(d); err == nil && wd == weekday {
			return true
		}
	}
	return false
}

// String returns a summary of the configuration.
func (c *ShopConfig) String() string {
	active := 0
	for _, st := range c.Staff {
		if st.IsActive {
			active++
		}
	}
	return fmt.Sprintf("ShopConfig: %d services, %d staff (%d active), %d closures",
		len(c.Services), len(c.Staff), active, len(c.Closures))
}
