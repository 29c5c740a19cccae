package metrics

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/minesched/core/metrics"
	"github.com/kilianp07/minesched/infra/logger"
)

// InfluxSink writes generation events to an InfluxDB instance using the official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
	timeout  time.Duration
}

// InfluxConfig locates the bucket generation points are written to.
type InfluxConfig struct {
	URL       string `json:"url"`
	Token     string `json:"token"`
	Org       string `json:"org"`
	Bucket    string `json:"bucket"`
	TimeoutMS int    `json:"timeout_ms"`
}

// Validate requires the endpoint, org and bucket.
func (c InfluxConfig) Validate() error {
	if c.URL == "" || c.Org == "" || c.Bucket == "" {
		return fmt.Errorf("influx sink: url, org and bucket are required")
	}
	return nil
}

func (c InfluxConfig) timeout() time.Duration {
	if c.TimeoutMS > 0 {
		return time.Duration(c.TimeoutMS) * time.Millisecond
	}
	return 5 * time.Second
}

// NewInfluxSink creates a sink for cfg. A URL ending in /api/v2/write is
// accepted and trimmed to the server root.
func NewInfluxSink(cfg InfluxConfig) *InfluxSink {
	base := strings.TrimSuffix(cfg.URL, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, cfg.Token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: cfg.timeout()}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		log:      logger.New("influx-sink"),
		timeout:  cfg.timeout(),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(cfg InfluxConfig) coremetrics.MetricsSink {
	sink := NewInfluxSink(cfg)
	ctx, cancel := context.WithTimeout(context.Background(), sink.timeout)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordGeneration writes one schedule_generation point.
func (s *InfluxSink) RecordGeneration(ev coremetrics.GenerationEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	warnings := 0
	for _, n := range ev.Warnings {
		warnings += n
	}
	p := write.NewPointWithMeasurement("schedule_generation").
		AddTag("generation_id", ev.ID).
		AddTag("grid_hours", strconv.Itoa(ev.GridHours)).
		AddTag("status", status(ev.Failed)).
		AddTag("component", "schedule_engine").
		AddField("sites", ev.Sites).
		AddField("active_sites", ev.ActiveSites).
		AddField("placed_hours", ev.PlacedHours).
		AddField("unscheduled", ev.Unscheduled).
		AddField("warnings", warnings).
		AddField("elapsed_ms", round3(float64(ev.Elapsed.Microseconds())/1000)).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordSnapshot writes one snapshot_operation point.
func (s *InfluxSink) RecordSnapshot(ev coremetrics.SnapshotEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	p := write.NewPointWithMeasurement("snapshot_operation").
		AddTag("op", ev.Op).
		AddTag("kind", ev.Kind).
		AddTag("backend", ev.Backend).
		AddField("success", ev.Err == nil).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// Close releases the client.
func (s *InfluxSink) Close() { s.client.Close() }

func round3(v float64) float64 { return math.Round(v*1000) / 1000 }
