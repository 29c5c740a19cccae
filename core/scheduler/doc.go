// Package scheduler regenerates the schedule on a fixed cadence so that
// consumers of the latest grid and the MQTT topics see fresh allocations
// without a planner triggering them. Runs are aligned to interval
// boundaries of the wall clock, e.g. every hour on the hour.
package scheduler
