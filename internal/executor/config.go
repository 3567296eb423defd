package executor

import (
	"time"

	"github.com/nerrad567/gray-motion-core/internal/motion"
)

// DefaultQueueSize is the intake queue size of each lane.
const DefaultQueueSize = 16

// releaseTimeout bounds the actuator release performed on shutdown.
const releaseTimeout = 5 * time.Second

// Config tunes an Executor.
type Config struct {
	// QueueSize is the capacity of each intake lane.
	QueueSize int

	// Intervals maps each speed class to the pause between ticks.
	// Missing entries fall back to DefaultIntervals.
	Intervals map[motion.Speed]time.Duration
}

// DefaultIntervals returns the default pause between ticks per speed class.
func DefaultIntervals() map[motion.Speed]time.Duration {
	return map[motion.Speed]time.Duration{
		motion.SpeedVerySlow: 40 * time.Millisecond,
		motion.SpeedSlow:     20 * time.Millisecond,
		motion.SpeedNormal:   10 * time.Millisecond,
		motion.SpeedFast:     5 * time.Millisecond,
		motion.SpeedVeryFast: 2 * time.Millisecond,
	}
}

func (c Config) withDefaults() Config {
	if c.QueueSize <= 0 {
		c.QueueSize = DefaultQueueSize
	}
	intervals := DefaultIntervals()
	for s, d := range c.Intervals {
		if d >= 0 {
			intervals[s] = d
		}
	}
	c.Intervals = intervals
	return c
}
