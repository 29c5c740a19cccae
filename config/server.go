package config

import (
	"fmt"
	"strings"

	"github.com/kilianp07/minesched/core/schedule"
	"github.com/kilianp07/minesched/core/scheduler"
)

// ServerConfig controls the HTTP API.
type ServerConfig struct {
	Addr string `json:"addr"`
	// JWTSecret enables bearer-token authentication on /api routes when set.
	JWTSecret string `json:"jwt_secret"`
	// Disabled keeps the process from serving HTTP, e.g. for headless runs.
	Disabled bool `json:"disabled"`
}

// SetDefaults applies sane defaults.
func (c *ServerConfig) SetDefaults() {
	if c.Addr == "" {
		c.Addr = ":8080"
	}
}

// Validate checks mandatory fields.
func (c ServerConfig) Validate() error {
	if !strings.Contains(c.Addr, ":") {
		return fmt.Errorf("server.addr %q must be host:port", c.Addr)
	}
	if c.JWTSecret != "" && len(c.JWTSecret) < 16 {
		return fmt.Errorf("server.jwt_secret must be at least 16 characters")
	}
	return nil
}

// ScheduleConfig holds generation defaults.
type ScheduleConfig struct {
	DefaultGridHours int `json:"default_grid_hours"`
	DefaultTaskLimit int `json:"default_task_limit"`
	// AutoSnapshot persists every generation as a "generation" snapshot.
	AutoSnapshot *bool `json:"auto_snapshot"`
	// Regenerate runs generations on a fixed cadence.
	Regenerate scheduler.Config `json:"regenerate"`
}

// SetDefaults applies sane defaults.
func (c *ScheduleConfig) SetDefaults() {
	if c.DefaultGridHours == 0 {
		c.DefaultGridHours = 24
	}
	if c.DefaultTaskLimit == 0 {
		c.DefaultTaskLimit = schedule.DefaultTaskLimit
	}
	if c.AutoSnapshot == nil {
		v := true
		c.AutoSnapshot = &v
	}
}

// Validate checks ranges.
func (c ScheduleConfig) Validate() error {
	if err := schedule.ValidateHorizon(c.DefaultGridHours); err != nil {
		return fmt.Errorf("schedule.default_grid_hours: %w", err)
	}
	if c.DefaultTaskLimit < 1 || c.DefaultTaskLimit > 10 {
		return fmt.Errorf("schedule.default_task_limit must be within 1..10, got %d", c.DefaultTaskLimit)
	}
	if err := c.Regenerate.Validate(); err != nil {
		return fmt.Errorf("schedule.regenerate: %w", err)
	}
	return nil
}

// SnapshotEnabled reports whether generations are persisted.
func (c ScheduleConfig) SnapshotEnabled() bool {
	return c.AutoSnapshot == nil || *c.AutoSnapshot
}
