package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/minesched/core/events"
	coremetrics "github.com/kilianp07/minesched/core/metrics"
	coremon "github.com/kilianp07/minesched/core/monitoring"
	coremqtt "github.com/kilianp07/minesched/core/mqtt"
	"github.com/kilianp07/minesched/core/schedule"
	"github.com/kilianp07/minesched/internal/eventbus"
)

type recordMonitor struct {
	err  error
	tags map[string]string
}

func (r *recordMonitor) CaptureException(err error, tags map[string]string) {
	r.err = err
	r.tags = tags
}
func (r *recordMonitor) CapturePanic(any)      {}
func (r *recordMonitor) Flush(time.Duration) {}

type recordPublish struct{ evs []coremetrics.PublishEvent }

func (r *recordPublish) RecordPublish(ev coremetrics.PublishEvent) error {
	r.evs = append(r.evs, ev)
	return nil
}

func sampleGrid() *schedule.Grid {
	return &schedule.Grid{
		GridHours:    4,
		Grid:         map[string]schedule.Row{"S1": {"DRILL", "DRILL", "", ""}, "S2": {"", "", "", ""}},
		SiteOrder:    []string{"S1", "S2"},
		SitePriority: map[string]int{"S1": 1, "S2": 2},
		SiteActive:   map[string]bool{"S1": true, "S2": false},
		HourlyAllocation: []map[string]int{
			{"DRILL": 1}, {"DRILL": 1}, {}, {},
		},
		Unscheduled: []schedule.Unscheduled{{Site: "S1", Task: "CHARGE", Iteration: 1, Hours: 2}},
	}
}

func newTestPublisher(t *testing.T, mc *mockClient, cfg Config, opts ...Option) *GridPublisher {
	t.Helper()
	useMock(t, mc)
	p, err := NewGridPublisher(cfg, opts...)
	require.NoError(t, err)
	p.sleep = func(context.Context, time.Duration) error { return nil }
	return p
}

func TestNewGridPublisherAnnouncesOnline(t *testing.T) {
	mc := &mockClient{}
	newTestPublisher(t, mc, Config{Broker: "tcp://localhost:1883", TopicPrefix: "pit"})
	msgs := mc.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "pit/status", msgs[0].topic)
	assert.Equal(t, "online", string(msgs[0].payload))
	assert.True(t, msgs[0].retained)
	assert.Equal(t, "pit/status", mc.opts.WillTopic)
}

func TestPublishGridTopicsAndPayloads(t *testing.T) {
	mc := &mockClient{}
	rec := &recordPublish{}
	p := newTestPublisher(t, mc, Config{Broker: "tcp://localhost:1883", TopicPrefix: "pit", QoS: 1}, WithRecorder(rec))

	require.NoError(t, p.PublishGrid(context.Background(), "gen-1", sampleGrid()))

	msgs := mc.messages()[1:]
	require.Len(t, msgs, 3)
	assert.Equal(t, "pit/site/S1/schedule", msgs[0].topic)
	assert.Equal(t, "pit/site/S2/schedule", msgs[1].topic)
	assert.Equal(t, "pit/summary", msgs[2].topic)
	for _, m := range msgs {
		assert.True(t, m.retained)
		assert.Equal(t, byte(1), m.qos)
	}

	var site map[string]any
	require.NoError(t, json.Unmarshal(msgs[0].payload, &site))
	assert.Equal(t, "gen-1", site["generationId"])
	assert.Equal(t, []any{"DRILL", "DRILL", nil, nil}, site["row"])
	assert.Equal(t, true, site["active"])

	var summary SummaryPayload
	require.NoError(t, json.Unmarshal(msgs[2].payload, &summary))
	assert.Equal(t, 2, summary.PlacedHours)
	assert.Equal(t, 1, summary.ActiveSites)
	assert.Equal(t, []string{"S1", "S2"}, summary.SiteOrder)
	assert.Len(t, summary.Unscheduled, 1)

	require.Len(t, rec.evs, 1)
	assert.Equal(t, 3, rec.evs[0].Topics)
	assert.Equal(t, 0, rec.evs[0].Retries)
	assert.NoError(t, rec.evs[0].Err)
}

func TestPublishGridRetries(t *testing.T) {
	mc := &mockClient{}
	rec := &recordPublish{}
	p := newTestPublisher(t, mc, Config{Broker: "tcp://localhost:1883", MaxRetries: 2}, WithRecorder(rec))
	mc.publishErrs = []error{fmt.Errorf("net fail"), nil}

	require.NoError(t, p.PublishGrid(context.Background(), "gen-2", sampleGrid()))
	// status + failed attempt + 2 sites + summary
	assert.Len(t, mc.messages(), 5)
	assert.Equal(t, 1, rec.evs[0].Retries)
}

func TestPublishGridErrorCaptured(t *testing.T) {
	mc := &mockClient{}
	rec := &recordPublish{}
	p := newTestPublisher(t, mc, Config{Broker: "tcp://localhost:1883", MaxRetries: 1, BackoffMS: 1}, WithRecorder(rec))
	mc.publishErrs = []error{fmt.Errorf("net fail"), fmt.Errorf("net fail")}

	mon := &recordMonitor{}
	coremon.Init(mon)
	defer coremon.Init(coremon.NopMonitor{})

	err := p.PublishGrid(context.Background(), "gen-3", sampleGrid())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "minesched/site/S1/schedule")
	require.Error(t, mon.err)
	assert.Equal(t, "mqtt", mon.tags["module"])
	assert.Equal(t, "gen-3", mon.tags["generation_id"])
	require.Len(t, rec.evs, 1)
	assert.Error(t, rec.evs[0].Err)
	assert.Equal(t, 0, rec.evs[0].Topics)
}

func TestPublishGridNotConnected(t *testing.T) {
	mc := &mockClient{}
	p := newTestPublisher(t, mc, Config{Broker: "tcp://localhost:1883"})
	p.Disconnect()
	assert.Equal(t, 1, mc.disconnects)
	last := mc.messages()[len(mc.messages())-1]
	assert.Equal(t, "offline", string(last.payload))

	err := p.PublishGrid(context.Background(), "gen-4", sampleGrid())
	assert.True(t, errors.Is(err, coremqtt.ErrNotConnected))
}

func TestPublishGridCancelledDuringBackoff(t *testing.T) {
	mc := &mockClient{}
	p := newTestPublisher(t, mc, Config{Broker: "tcp://localhost:1883", MaxRetries: 3, BackoffMS: 1000})
	p.sleep = sleepCtx
	mc.publishErrs = []error{fmt.Errorf("net fail")}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := p.PublishGrid(ctx, "gen-5", sampleGrid())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPublishGridNil(t *testing.T) {
	var p GridPublisher
	assert.NoError(t, p.PublishGrid(context.Background(), "x", nil))
}

type capturePublisher struct {
	ids chan string
}

func (c capturePublisher) PublishGrid(_ context.Context, id string, _ *schedule.Grid) error {
	c.ids <- id
	return nil
}

func TestStartBroadcasterSkipsFailedGenerations(t *testing.T) {
	bus := eventbus.NewTyped[events.Generation]()
	pub := capturePublisher{ids: make(chan string, 4)}
	ctx, cancel := context.WithCancel(context.Background())
	done := StartBroadcaster(ctx, bus, pub, nil)

	bus.Publish(events.Generation{ID: "bad", Err: errors.New("boom")})
	bus.Publish(events.Generation{ID: "good", Grid: sampleGrid()})

	select {
	case id := <-pub.ids:
		assert.Equal(t, "good", id)
	case <-time.After(2 * time.Second):
		t.Fatal("grid not broadcast")
	}
	cancel()
	<-done
	assert.Empty(t, pub.ids)
}
