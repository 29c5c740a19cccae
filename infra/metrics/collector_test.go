package metrics

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/kilianp07/minesched/core/events"
	coremetrics "github.com/kilianp07/minesched/core/metrics"
	"github.com/kilianp07/minesched/core/schedule"
	"github.com/kilianp07/minesched/internal/eventbus"
)

type captureSink struct {
	mu  sync.Mutex
	evs []coremetrics.GenerationEvent
	got chan struct{}
}

func (c *captureSink) RecordGeneration(ev coremetrics.GenerationEvent) error {
	c.mu.Lock()
	c.evs = append(c.evs, ev)
	c.mu.Unlock()
	c.got <- struct{}{}
	return nil
}

func TestStartEventCollector(t *testing.T) {
	bus := eventbus.NewTyped[events.Generation]()
	sink := &captureSink{got: make(chan struct{}, 4)}
	ctx, cancel := context.WithCancel(context.Background())
	done := StartEventCollector(ctx, bus, sink, nil)

	g := &schedule.Grid{
		Grid:       map[string]schedule.Row{"S1": {"A", "A"}},
		SiteOrder:  []string{"S1"},
		SiteActive: map[string]bool{"S1": true},
	}
	bus.Publish(events.Generation{ID: "g1", GridHours: 6, Grid: g, Elapsed: time.Millisecond, Source: "api"})
	bus.Publish(events.Generation{ID: "g2", GridHours: 6, Err: errors.New("cancelled")})

	for i := 0; i < 2; i++ {
		select {
		case <-sink.got:
		case <-time.After(2 * time.Second):
			t.Fatalf("event %d not recorded", i)
		}
	}
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("collector did not stop")
	}

	sink.mu.Lock()
	defer sink.mu.Unlock()
	if sink.evs[0].PlacedHours != 2 || sink.evs[0].Source != "api" || sink.evs[0].Failed {
		t.Fatalf("unexpected first event %+v", sink.evs[0])
	}
	if !sink.evs[1].Failed {
		t.Fatalf("expected failed second event")
	}
	if bus.Subscribers() != 0 {
		t.Fatalf("collector must unsubscribe on exit")
	}
}

func TestStartEventCollector_NilBus(t *testing.T) {
	done := StartEventCollector(context.Background(), nil, coremetrics.NopSink{}, nil)
	select {
	case <-done:
	default:
		t.Fatal("expected closed channel")
	}
}
