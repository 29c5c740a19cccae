package metrics

import (
	"fmt"
	"strconv"

	"github.com/kilianp07/minesched/core/factory"
)

// Config defines settings for metrics sinks.
type Config struct {
	Sinks []factory.ModuleConfig `json:"sinks"`
	// PrometheusPort enables the /metrics endpoint when set.
	PrometheusPort string `json:"prometheus_port"`
}

// Validate checks the port when one is configured.
func (c Config) Validate() error {
	if c.PrometheusPort == "" {
		return nil
	}
	p, err := strconv.Atoi(c.PrometheusPort)
	if err != nil || p <= 0 || p > 65535 {
		return fmt.Errorf("invalid prometheus_port %q", c.PrometheusPort)
	}
	return nil
}

// PrometheusAddr returns the listen address for the metrics endpoint.
func (c Config) PrometheusAddr() string {
	if c.PrometheusPort == "" {
		return ""
	}
	return ":" + c.PrometheusPort
}
