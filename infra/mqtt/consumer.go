package mqtt

import (
	"context"

	"github.com/kilianp07/minesched/core/events"
	"github.com/kilianp07/minesched/core/logger"
	coremqtt "github.com/kilianp07/minesched/core/mqtt"
	"github.com/kilianp07/minesched/internal/eventbus"
)

// StartBroadcaster publishes every successful generation seen on the bus.
// The returned channel is closed once the goroutine exits.
func StartBroadcaster(ctx context.Context, bus *eventbus.TypedBus[events.Generation], pub coremqtt.GridPublisher, log logger.Logger) <-chan struct{} {
	done := make(chan struct{})
	if bus == nil || pub == nil {
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
				if ev.Failed() || ev.Grid == nil {
					continue
				}
				if err := pub.PublishGrid(ctx, ev.ID, ev.Grid); err != nil {
					log.Warnf("broadcast %s: %v", ev.ID, err)
				}
			}
		}
	}()
	return done
}
