package scheduler

import (
	"context"
	"time"

	"github.com/kilianp07/minesched/core/events"
	"github.com/kilianp07/minesched/core/logger"
	"github.com/kilianp07/minesched/core/monitoring"
	"github.com/kilianp07/minesched/core/schedule"
)

// Source tags generations started by the Runner.
const Source = "schedule"

// Generator runs one generation.
type Generator interface {
	Generate(ctx context.Context, req schedule.Request, source string) (events.Generation, error)
}

// Runner triggers a generation at every interval boundary.
type Runner struct {
	gen   Generator
	cfg   Config
	log   logger.Logger
	now   func() time.Time
	after func(time.Duration) <-chan time.Time
}

// NewRunner returns a runner for cfg. A nil logger discards output.
func NewRunner(gen Generator, cfg Config, log logger.Logger) *Runner {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Runner{gen: gen, cfg: cfg, log: log, now: time.Now, after: time.After}
}

// NextRun returns the first interval boundary strictly after now.
func NextRun(now time.Time, interval time.Duration) time.Time {
	next := now.Truncate(interval)
	if !next.After(now) {
		next = next.Add(interval)
	}
	return next
}

// Start launches the loop. The returned channel is closed once the loop has
// stopped, which happens when ctx is cancelled. A disabled config returns a
// closed channel.
func (r *Runner) Start(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	if !r.cfg.Enabled() || r.gen == nil {
		close(done)
		return done
	}
	interval := r.cfg.Interval()
	go func() {
		defer close(done)
		defer monitoring.Recover()
		if r.cfg.RunOnStart {
			r.runOnce(ctx)
		}
		for {
			wait := NextRun(r.now(), interval).Sub(r.now())
			select {
			case <-ctx.Done():
				return
			case <-r.after(wait):
				r.runOnce(ctx)
			}
		}
	}()
	return done
}

func (r *Runner) runOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	ev, err := r.gen.Generate(ctx, schedule.Request{GridHours: r.cfg.GridHours}, Source)
	if err != nil {
		r.log.Errorf("scheduled generation failed: %v", err)
		return
	}
	r.log.Infof("scheduled generation %s done", ev.ID)
}
