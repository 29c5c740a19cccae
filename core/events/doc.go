// Package events defines the events published on the internal bus after a
// schedule generation. Subscribers (metrics collector, MQTT publisher) run
// outside the request path.
package events
