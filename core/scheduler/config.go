package scheduler

import (
	"fmt"
	"time"

	"github.com/kilianp07/minesched/core/schedule"
)

// Config controls periodic regeneration. A zero interval disables it.
type Config struct {
	IntervalMinutes int `json:"interval_minutes"`
	// GridHours of scheduled runs; zero uses the service default.
	GridHours int `json:"grid_hours"`
	// RunOnStart triggers one generation immediately.
	RunOnStart bool `json:"run_on_start"`
}

// Enabled reports whether periodic runs are configured.
func (c Config) Enabled() bool { return c.IntervalMinutes > 0 }

// Interval returns the run cadence.
func (c Config) Interval() time.Duration { return time.Duration(c.IntervalMinutes) * time.Minute }

// Validate checks the interval and horizon.
func (c Config) Validate() error {
	if c.IntervalMinutes < 0 {
		return fmt.Errorf("interval_minutes must not be negative")
	}
	if c.GridHours != 0 {
		if err := schedule.ValidateHorizon(c.GridHours); err != nil {
			return fmt.Errorf("scheduler: %w", err)
		}
	}
	return nil
}
