// Package schedule allocates the mining task cycle of every site onto an
// hourly grid.
//
// Generation is a pure function of its inputs: sites are ordered by
// priority, each site's task cycle is expanded from its current task and
// firings count, durations are derived from the task's unit of measure and
// the site's planning quantities, and tasks are placed greedily left to right
// while skipping delayed cells and hours where the task's concurrency limit
// is already reached by higher-priority sites.
package schedule
