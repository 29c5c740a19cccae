// Package infra groups the adapters behind the core interfaces: roster
// readers (SQLite, HTTP), snapshot stores (SQLite, JSONL, Redis), metrics
// sinks (Prometheus, InfluxDB), the MQTT grid publisher, the Sentry monitor
// and the zerolog logger. Core packages never import infra; the adapters
// register themselves in the core factories from init.
package infra
