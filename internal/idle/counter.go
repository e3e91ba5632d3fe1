package idle

import (
	"loadwatch/internal/logging"
)

// Counter is the hysteresis state machine. It accumulates consecutive
// low-load verdicts and resets on any high-load verdict; once the required
// streak length is reached it signals a commit. The counter is owned by the
// control loop and touched by exactly one goroutine, so it carries no lock.
type Counter struct {
	required int
	count    int
	logger   *logging.Logger
}

// NewCounter creates a hysteresis counter requiring the given streak length
func NewCounter(required int, logger *logging.Logger) *Counter {
	return &Counter{
		required: required,
		logger:   logger,
	}
}

// Observe feeds one verdict into the counter and reports whether the
// required streak has been reached (commit). A high-load verdict resets the
// streak to zero unconditionally; a single high reading erases the entire
// streak. After a commit the caller must call Reset before the next tick.
func (c *Counter) Observe(low bool) bool {
	if !low {
		if c.count > 0 {
			c.logger.Info("High load, resetting low-load streak", map[string]interface{}{
				"streak": c.count,
			})
		}
		c.count = 0
		return false
	}

	if c.count >= c.required {
		// Unreachable under correct sequencing: the loop resets after
		// acting on a commit. Re-emit the commit instead of growing the
		// count past the bound.
		c.logger.Warn("Streak already at required length, re-emitting commit", map[string]interface{}{
			"streak":   c.count,
			"required": c.required,
		})
		return true
	}

	c.count++
	c.logger.Info("Low load observed", map[string]interface{}{
		"streak":   c.count,
		"required": c.required,
	})

	return c.count == c.required
}

// Reset clears the streak. Called once a commit has been acted upon, so a
// fresh full streak is required before the next suspend.
func (c *Counter) Reset() {
	c.count = 0
}

// Count returns the current streak length
func (c *Counter) Count() int {
	return c.count
}

// Required returns the configured streak length
func (c *Counter) Required() int {
	return c.required
}
