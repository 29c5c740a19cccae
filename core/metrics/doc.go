// Package metrics defines the sinks that observe schedule generations.
// Sinks like the Prometheus and InfluxDB implementations in infra/metrics
// record generation events and can be combined with NewMultiSink. The
// factory returns a MultiSink automatically when several sinks are
// configured.
package metrics
