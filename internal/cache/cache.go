// Package cache keeps computed day grids in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"slotbook/internal/slots"
)

const keyPrefix = "slots"

// SlotCache is a read-through cache of day grids keyed by staff, date and service.
// A nil client or non-positive TTL disables it.
type SlotCache struct {
	redis  *redis.Client
	ttl    time.Duration
	logger *zerolog.Logger
}

func New(client *redis.Client, ttl time.Duration, logger *zerolog.Logger) *SlotCache {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &SlotCache{redis: client, ttl: ttl, logger: logger}
}

// Enabled reports whether reads and writes reach Redis.
func (c *SlotCache) Enabled() bool {
	return c != nil && c.redis != nil && c.ttl > 0
}

func Key(staffID int64, date, service string) string {
	return fmt.Sprintf("%s:%d:%s:%s", keyPrefix, staffID, date, service)
}

// Get returns the cached grid and whether it was found.
func (c *SlotCache) Get(ctx context.Context, staffID int64, date, service string) ([]slots.Slot, bool) {
	if !c.Enabled() {
		return nil, false
	}
	val, err := c.redis.Get(ctx, Key(staffID, date, service)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn().Err(err).Msg("slot cache read failed")
		}
		return nil, false
	}
	var out []slots.Slot
	if err := json.Unmarshal(val, &out); err != nil {
		return nil, false
	}
	return out, true
}

// Set stores a grid. Errors are logged and swallowed.
func (c *SlotCache) Set(ctx context.Context, staffID int64, date, service string, grid []slots.Slot) {
	if !c.Enabled() {
		return
	}
	data, err := json.Marshal(grid)
	if err != nil {
		return
	}
	if err := c.redis.Set(ctx, Key(staffID, date, service), data, c.ttl).Err(); err != nil {
		c.logger.Warn().Err(err).Msg("slot cache write failed")
	}
}

// InvalidateDay drops every service grid for staffID on date.
func (c *SlotCache) InvalidateDay(ctx context.Context, staffID int64, date string) error {
	return c.deletePattern(ctx, fmt.Sprintf("%s:%d:%s:*", keyPrefix, staffID, date))
}

// InvalidateDate drops grids of all staff on date.
func (c *SlotCache) InvalidateDate(ctx context.Context, date string) error {
	return c.deletePattern(ctx, fmt.Sprintf("%s:*:%s:*", keyPrefix, date))
}

// InvalidateAll drops every cached grid.
func (c *SlotCache) InvalidateAll(ctx context.Context) error {
	return c.deletePattern(ctx, keyPrefix+":*")
}

func (c *SlotCache) deletePattern(ctx context.Context, pattern string) error {
	if !c.Enabled() {
		return nil
	}
	iter := c.redis.Scan(ctx, 0, pattern, 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("scan %s: %w", pattern, err)
	}
	if len(keys) == 0 {
		return nil
	}
	return c.redis.Del(ctx, keys...).Err()
}
