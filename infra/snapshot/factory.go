package snapshot

import (
	"context"
	"fmt"
	"time"

	"github.com/kilianp07/minesched/core/factory"
	core "github.com/kilianp07/minesched/core/snapshot"
)

// init registers the persistent snapshot stores.
func init() {
	_ = core.RegisterStore("sqlite", func(conf map[string]any) (core.Store, error) {
		var c struct {
			Path string `json:"path"`
		}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		if c.Path == "" {
			c.Path = "snapshots.db"
		}
		return NewSQLiteStore(c.Path)
	})

	_ = core.RegisterStore("jsonl", func(conf map[string]any) (core.Store, error) {
		var c struct {
			Path       string `json:"path"`
			MaxSizeMB  int    `json:"max_size_mb"`
			MaxBackups int    `json:"max_backups"`
			MaxAgeDays int    `json:"max_age_days"`
		}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		if c.Path == "" {
			c.Path = "snapshots.jsonl"
		}
		if c.MaxSizeMB <= 0 {
			c.MaxSizeMB = 50
		}
		return NewRotatingJSONLStore(c.Path, c.MaxSizeMB, c.MaxBackups, c.MaxAgeDays)
	})

	_ = core.RegisterStore("redis", func(conf map[string]any) (core.Store, error) {
		var c struct {
			Addr     string        `json:"addr"`
			Password string        `json:"password"`
			DB       int           `json:"db"`
			Prefix   string        `json:"prefix"`
			TTL      time.Duration `json:"ttl"`
		}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		if c.Addr == "" {
			c.Addr = "localhost:6379"
		}
		client := NewRedisClient(c.Addr, c.Password, c.DB)
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("redis ping %s: %w", c.Addr, err)
		}
		return NewRedisStore(client, c.Prefix, c.TTL), nil
	})
}
