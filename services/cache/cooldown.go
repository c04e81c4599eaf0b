package cache

import (
	"errors"
	"strconv"
	"time"

	"sjsage522/vesselschedule/logger"
)

// Cooldown blocks a terminal for a while after a retryable failure so a struggling
// site is not hammered by every caller. The cached value is the unblock time.
type Cooldown struct {
	cache CacheService
	ttl   time.Duration
	now   func() time.Time
}

// NewCooldown creates a cooldown guard. A nil cache or zero ttl disables it.
func NewCooldown(cache CacheService, ttl time.Duration) *Cooldown {
	return &Cooldown{cache: cache, ttl: ttl, now: time.Now}
}

func (c *Cooldown) enabled() bool {
	return c != nil && c.cache != nil && c.ttl > 0
}

func cooldownKey(terminal string) string {
	return "vessel_schedule:cooldown:" + terminal
}

// Block starts the cooldown for terminal
func (c *Cooldown) Block(terminal string) {
	if !c.enabled() {
		return
	}
	until := c.now().Add(c.ttl).Unix()
	if err := c.cache.Set(cooldownKey(terminal), []byte(strconv.FormatInt(until, 10)), c.ttl); err != nil {
		logger.Warn("failed to set cooldown for %s: %v", terminal, err)
		return
	}
	logger.Info("%s blocked for %v", terminal, c.ttl)
}

// Remaining reports how long terminal stays blocked, or 0. Cache failures never
// block a terminal.
func (c *Cooldown) Remaining(terminal string) time.Duration {
	if !c.enabled() {
		return 0
	}
	v, err := c.cache.Get(cooldownKey(terminal))
	if err != nil {
		if !errors.Is(err, ErrMiss) {
			logger.Warn("cooldown lookup for %s failed: %v", terminal, err)
		}
		return 0
	}
	until, err := strconv.ParseInt(string(v), 10, 64)
	if err != nil {
		return c.ttl
	}
	left := time.Unix(until, 0).Sub(c.now())
	if left <= 0 {
		return 0
	}
	return left.Round(time.Second)
}

// Clear lifts the cooldown after a success
func (c *Cooldown) Clear(terminal string) {
	if !c.enabled() {
		return
	}
	if err := c.cache.Delete(cooldownKey(terminal)); err != nil && !errors.Is(err, ErrMiss) {
		logger.Warn("failed to clear cooldown for %s: %v", terminal, err)
	}
}
