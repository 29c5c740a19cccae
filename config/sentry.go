package config

import "fmt"

// SentryConfig enables error reporting when DSN is set.
type SentryConfig struct {
	DSN         string `json:"dsn"`
	Environment string `json:"environment"`
	Release     string `json:"release"`
	ServerName  string `json:"server_name"`
	// SampleRate applies to error events; defaults to 1 when a DSN is set.
	SampleRate       float64 `json:"sample_rate"`
	TracesSampleRate float64 `json:"traces_sample_rate"`
}

// SetDefaults fills the sample rate and environment of an enabled config.
func (c *SentryConfig) SetDefaults() {
	if c.DSN == "" {
		return
	}
	if c.SampleRate == 0 {
		c.SampleRate = 1
	}
	if c.Environment == "" {
		c.Environment = "production"
	}
}

// Validate checks the sample rates.
func (c SentryConfig) Validate() error {
	for name, v := range map[string]float64{"sample_rate": c.SampleRate, "traces_sample_rate": c.TracesSampleRate} {
		if v < 0 || v > 1 {
			return fmt.Errorf("sentry.%s must be within 0..1, got %g", name, v)
		}
	}
	return nil
}
