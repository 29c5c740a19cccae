package metrics

import (
	"context"
	"time"

	"github.com/kilianp07/minesched/core/events"
	coremetrics "github.com/kilianp07/minesched/core/metrics"
	"github.com/kilianp07/minesched/core/logger"
	"github.com/kilianp07/minesched/internal/eventbus"
)

// StartEventCollector subscribes to the generation bus and records a metric
// for every event. It stops when the context is canceled or the bus closes.
// The returned channel is closed once the collector has stopped.
func StartEventCollector(ctx context.Context, bus *eventbus.TypedBus[events.Generation], sink coremetrics.MetricsSink, log logger.Logger) <-chan struct{} {
	done := make(chan struct{})
	if bus == nil || sink == nil {
		close(done)
		return done
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	sub := bus.Subscribe()
	go func() {
		defer close(done)
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				at := ev.Time
				if at.IsZero() {
					at = time.Now()
				}
				me := coremetrics.GenerationEventFrom(ev.ID, ev.GridHours, ev.Grid, ev.Elapsed, ev.Failed(), at)
				me.Source = ev.Source
				if err := sink.RecordGeneration(me); err != nil {
					log.Warnf("record generation %s: %v", ev.ID, err)
				}
			}
		}
	}()
	return done
}
