package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/minesched/core/metrics"
)

// PromSink records generation events in Prometheus metrics.
type PromSink struct {
	generations *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	placed      prometheus.Gauge
	unscheduled prometheus.Gauge
	warnings    *prometheus.CounterVec
	snapshots   *prometheus.CounterVec
	publishes   *prometheus.CounterVec
}

// NewPromSink registers generation metrics on the default Prometheus registerer.
// The metrics endpoint is started separately with StartPromServer.
func NewPromSink() (coremetrics.MetricsSink, error) {
	s, err := NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// register adds c to reg, reusing an identical collector registered earlier.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{}
	var err error
	if s.generations, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "schedule_generations_total",
		Help: "Total number of schedule generations",
	}, []string{"grid_hours", "status"})); err != nil {
		return nil, err
	}
	if s.duration, err = register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "schedule_generation_seconds",
		Help:    "Time spent generating a schedule",
		Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
	}, []string{"grid_hours"})); err != nil {
		return nil, err
	}
	if s.placed, err = register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "schedule_placed_hours",
		Help: "Task hours placed by the last generation",
	})); err != nil {
		return nil, err
	}
	if s.unscheduled, err = register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "schedule_unscheduled_tasks",
		Help: "Task occurrences that did not fit in the last generation",
	})); err != nil {
		return nil, err
	}
	if s.warnings, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "schedule_warnings_total",
		Help: "Generation warnings by kind",
	}, []string{"kind"})); err != nil {
		return nil, err
	}
	if s.snapshots, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "schedule_snapshot_operations_total",
		Help: "Snapshot store operations",
	}, []string{"op", "status"})); err != nil {
		return nil, err
	}
	if s.publishes, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "schedule_grid_publish_total",
		Help: "Grid broadcasts over MQTT",
	}, []string{"status"})); err != nil {
		return nil, err
	}
	return s, nil
}

func status(failed bool) string {
	if failed {
		return "error"
	}
	return "ok"
}

// RecordGeneration updates counters, the latency histogram and the gauges.
func (s *PromSink) RecordGeneration(ev coremetrics.GenerationEvent) error {
	hours := strconv.Itoa(ev.GridHours)
	s.generations.WithLabelValues(hours, status(ev.Failed)).Inc()
	s.duration.WithLabelValues(hours).Observe(ev.Elapsed.Seconds())
	if ev.Failed {
		return nil
	}
	s.placed.Set(float64(ev.PlacedHours))
	s.unscheduled.Set(float64(ev.Unscheduled))
	for kind, n := range ev.Warnings {
		s.warnings.WithLabelValues(string(kind)).Add(float64(n))
	}
	return nil
}

// RecordSnapshot counts snapshot store operations.
func (s *PromSink) RecordSnapshot(ev coremetrics.SnapshotEvent) error {
	s.snapshots.WithLabelValues(ev.Op, status(ev.Err != nil)).Inc()
	return nil
}

// RecordPublish counts grid broadcasts.
func (s *PromSink) RecordPublish(ev coremetrics.PublishEvent) error {
	s.publishes.WithLabelValues(status(ev.Err != nil)).Inc()
	return nil
}
