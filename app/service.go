// Package app wires configuration, stores, the engine and the HTTP API into
// a runnable service.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	schedapi "github.com/kilianp07/minesched/api/schedule"
	_ "github.com/kilianp07/minesched/app/plugins"
	"github.com/kilianp07/minesched/config"
	"github.com/kilianp07/minesched/core/events"
	coremetrics "github.com/kilianp07/minesched/core/metrics"
	"github.com/kilianp07/minesched/core/model"
	coremon "github.com/kilianp07/minesched/core/monitoring"
	coremqtt "github.com/kilianp07/minesched/core/mqtt"
	"github.com/kilianp07/minesched/core/roster"
	"github.com/kilianp07/minesched/core/schedule"
	"github.com/kilianp07/minesched/core/scheduler"
	"github.com/kilianp07/minesched/core/snapshot"
	"github.com/kilianp07/minesched/infra/logger"
	"github.com/kilianp07/minesched/infra/metrics"
	"github.com/kilianp07/minesched/infra/monitoring"
	"github.com/kilianp07/minesched/infra/mqtt"
	"github.com/kilianp07/minesched/internal/eventbus"
)

// Service orchestrates roster loading, generation, persistence and broadcast.
type Service struct {
	cfg       *config.Config
	reader    roster.Reader
	store     snapshot.Store
	sink      coremetrics.MetricsSink
	publisher coremqtt.GridPublisher
	engine    *schedule.Engine
	bus       *eventbus.TypedBus[events.Generation]
	log       logger.Logger
	now       func() time.Time

	closeOnce sync.Once
	closers   []func() error
}

// Option overrides a collaborator normally built from configuration.
type Option func(*Service)

// WithReader sets the roster reader.
func WithReader(r roster.Reader) Option { return func(s *Service) { s.reader = r } }

// WithStore sets the snapshot store.
func WithStore(st snapshot.Store) Option { return func(s *Service) { s.store = st } }

// WithSink sets the metrics sink.
func WithSink(m coremetrics.MetricsSink) Option { return func(s *Service) { s.sink = m } }

// WithPublisher sets the grid publisher.
func WithPublisher(p coremqtt.GridPublisher) Option { return func(s *Service) { s.publisher = p } }

// WithClock sets the time source used for snapshots and events.
func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

// New creates a Service from the configuration.
func New(cfg *config.Config, opts ...Option) (*Service, error) {
	if cfg == nil {
		cfg = &config.Config{}
		cfg.SetDefaults()
	}
	logger.Configure(logger.Options{
		Level:      cfg.Logging.Level,
		Console:    cfg.Logging.Console,
		File:       cfg.Logging.File,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
	})
	s := &Service{cfg: cfg, log: logger.New("service"), now: time.Now}
	for _, o := range opts {
		o(s)
	}

	mon, err := monitoring.NewSentryMonitor(cfg.Sentry)
	if err != nil {
		return nil, fmt.Errorf("sentry: %w", err)
	}
	coremon.Init(mon)

	if s.reader == nil {
		if s.reader, err = roster.NewReader(cfg.Roster); err != nil {
			return nil, fmt.Errorf("roster reader: %w", err)
		}
	}
	if s.sink == nil {
		if s.sink, err = coremetrics.NewMetricsSink(cfg.Metrics.Sinks); err != nil {
			return nil, fmt.Errorf("metrics sink: %w", err)
		}
	}
	rec, _ := s.sink.(coremetrics.SnapshotRecorder)
	if s.store == nil {
		st, err := snapshot.NewStore(cfg.Snapshot)
		if err != nil {
			return nil, fmt.Errorf("snapshot store: %w", err)
		}
		s.store = snapshot.Instrument(st, rec, cfg.Snapshot.Type)
	}
	s.closers = append(s.closers, s.store.Close)
	if closer, ok := s.reader.(interface{ Close() error }); ok {
		s.closers = append(s.closers, closer.Close)
	}

	if s.publisher == nil {
		if cfg.MQTT.Enabled() {
			var popts []mqtt.Option
			if pr, ok := s.sink.(coremetrics.PublishRecorder); ok {
				popts = append(popts, mqtt.WithRecorder(pr))
			}
			pub, err := mqtt.NewGridPublisher(cfg.MQTT, popts...)
			if err != nil {
				return nil, fmt.Errorf("mqtt publisher: %w", err)
			}
			s.publisher = pub
			s.closers = append(s.closers, func() error { pub.Disconnect(); return nil })
		} else {
			s.publisher = coremqtt.NopPublisher{}
		}
	}

	s.engine = schedule.New(
		schedule.WithLogger(logger.New("engine")),
		schedule.WithDefaultTaskLimit(cfg.Schedule.DefaultTaskLimit),
		schedule.WithClock(s.now),
	)
	s.bus = eventbus.NewTyped[events.Generation]()
	return s, nil
}

// Bus exposes generation events to background consumers.
func (s *Service) Bus() *eventbus.TypedBus[events.Generation] { return s.bus }

// Store returns the snapshot store.
func (s *Service) Store() snapshot.Store { return s.store }

// Generate reads the roster, computes a grid, persists it as a generation
// snapshot when enabled and announces it on the bus.
func (s *Service) Generate(ctx context.Context, req schedule.Request, source string) (events.Generation, error) {
	if req.GridHours == 0 {
		req.GridHours = s.cfg.Schedule.DefaultGridHours
	}
	ev := events.Generation{ID: uuid.NewString(), GridHours: req.GridHours, Source: source}
	start := time.Now()

	grid, err := s.compute(ctx, req)
	ev.Elapsed = time.Since(start)
	ev.Time = s.now()
	if err != nil {
		ev.Err = err
		s.bus.Publish(ev)
		if !errors.Is(err, schedule.ErrInvalidHorizon) && !errors.Is(err, context.Canceled) {
			coremon.CaptureException(err, map[string]string{"module": "engine", "generation_id": ev.ID, "source": source})
		}
		s.log.Warnf("generation %s failed: %v", ev.ID, err)
		return ev, err
	}
	ev.Grid = grid

	if s.cfg.Schedule.SnapshotEnabled() {
		snap := snapshot.New(snapshot.KindGeneration, "", grid, req.DelayedSlots, ev.Time)
		if err := s.store.Save(ctx, snap); err != nil {
			coremon.CaptureException(err, map[string]string{"module": "snapshot", "generation_id": ev.ID})
			s.log.Errorf("persist generation %s: %v", ev.ID, err)
		} else {
			ev.SnapshotID = snap.ID
		}
	}

	s.bus.Publish(ev)
	s.log.Infof("generation %s: %d hours, %d sites, %d cells in %s",
		ev.ID, grid.GridHours, len(grid.SiteOrder), grid.FilledCells(), ev.Elapsed)
	return ev, nil
}

func (s *Service) compute(ctx context.Context, req schedule.Request) (*schedule.Grid, error) {
	if err := schedule.ValidateHorizon(req.GridHours); err != nil {
		return nil, err
	}
	ro, err := s.loadRoster(ctx)
	if err != nil {
		return nil, err
	}
	return s.engine.Generate(ctx, ro.Input(), req)
}

func (s *Service) loadRoster(ctx context.Context) (roster.Roster, error) {
	ro, err := s.reader.Load(ctx)
	if err != nil {
		return roster.Roster{}, fmt.Errorf("load roster: %w", err)
	}
	if err := ro.Validate(); err != nil {
		return roster.Roster{}, fmt.Errorf("invalid roster: %w", err)
	}
	sites, active, tasks := ro.Counts()
	s.log.Debugf("roster loaded: %d sites (%d active), %d tasks", sites, active, tasks)
	return ro, nil
}

// RemoveDelay clears the explicit delay covering one cell. Shift changeover
// cells are computed from the current roster and cannot be removed.
func (s *Service) RemoveDelay(ctx context.Context, req schedapi.RemoveDelayRequest) ([]model.DelaySlot, error) {
	hours := req.GridHours
	if hours == 0 {
		hours = s.cfg.Schedule.DefaultGridHours
	}
	if err := schedule.ValidateHorizon(hours); err != nil {
		return nil, err
	}
	if req.Hour == nil {
		return nil, fmt.Errorf("hour is required")
	}
	ro, err := s.loadRoster(ctx)
	if err != nil {
		return nil, err
	}
	in := ro.Input()
	var active []string
	for _, site := range in.Sites {
		if site.Active {
			active = append(active, site.ID)
		}
	}
	automatic := schedule.BuildDelayMap(nil, in.Shifts, active, hours, nil)
	return schedule.RemoveDelaySlot(req.DelayedSlots, automatic, active, req.Site, *req.Hour)
}

// Handler returns the HTTP handler of the API.
func (s *Service) Handler() http.Handler {
	gin.SetMode(gin.ReleaseMode)
	h := schedapi.NewHandler(s, s.store, logger.New("api"))
	return schedapi.NewRouter(h, schedapi.RouterConfig{
		JWTSecret: s.cfg.Server.JWTSecret,
		Logger:    logger.New("api"),
	})
}

// Run starts background consumers, the metrics endpoint and the HTTP server,
// and blocks until ctx is cancelled.
func (s *Service) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	collected := metrics.StartEventCollector(ctx, s.bus, s.sink, logger.New("metrics_collector"))
	broadcast := mqtt.StartBroadcaster(ctx, s.bus, s.publisher, logger.New("mqtt_broadcaster"))
	regenerated := scheduler.NewRunner(s, s.cfg.Schedule.Regenerate, logger.New("scheduler")).Start(ctx)

	if addr := s.cfg.Metrics.PrometheusAddr(); addr != "" {
		go func() {
			defer coremon.Recover()
			if err := metrics.StartPromServer(ctx, addr, logger.New("prom")); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}

	errCh := make(chan error, 1)
	var srv *http.Server
	if !s.cfg.Server.Disabled {
		srv = &http.Server{Addr: s.cfg.Server.Addr, Handler: s.Handler(), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			s.log.Infof("HTTP API listening on %s", s.cfg.Server.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()
	}

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-errCh:
		cancel()
	}
	if srv != nil {
		shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.log.Errorf("http shutdown: %v", err)
		}
		done()
	}
	<-regenerated
	<-collected
	<-broadcast
	return runErr
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	var errs []error
	s.closeOnce.Do(func() {
		s.bus.Close()
		for i := len(s.closers) - 1; i >= 0; i-- {
			if err := s.closers[i](); err != nil {
				errs = append(errs, err)
			}
		}
		coremon.Flush(2 * time.Second)
	})
	return errors.Join(errs...)
}
