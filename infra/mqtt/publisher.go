package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	coremetrics "github.com/kilianp07/minesched/core/metrics"
	coremon "github.com/kilianp07/minesched/core/monitoring"
	coremqtt "github.com/kilianp07/minesched/core/mqtt"
	"github.com/kilianp07/minesched/core/schedule"
	"github.com/kilianp07/minesched/infra/logger"
)

type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// GridPublisher broadcasts generated grids on retained topics so that late
// subscribers always see the current schedule.
type GridPublisher struct {
	cli      pahoClient
	cfg      Config
	log      logger.Logger
	recorder coremetrics.PublishRecorder
	sleep    func(context.Context, time.Duration) error
}

var _ coremqtt.GridPublisher = (*GridPublisher)(nil)

// SitePayload is the retained message published per site.
type SitePayload struct {
	GenerationID string       `json:"generationId"`
	SiteID       string       `json:"siteId"`
	Priority     int          `json:"priority"`
	Active       bool         `json:"active"`
	GridHours    int          `json:"gridHours"`
	Row          schedule.Row `json:"row"`
	PublishedAt  time.Time    `json:"publishedAt"`
}

// SummaryPayload is the retained message published once per grid.
type SummaryPayload struct {
	GenerationID     string                 `json:"generationId"`
	GridHours        int                    `json:"gridHours"`
	SiteOrder        []string               `json:"siteOrder"`
	ActiveSites      int                    `json:"activeSites"`
	PlacedHours      int                    `json:"placedHours"`
	HourlyAllocation []map[string]int       `json:"hourlyAllocation"`
	Unscheduled      []schedule.Unscheduled `json:"unscheduled"`
	Warnings         int                    `json:"warnings"`
	PublishedAt      time.Time              `json:"publishedAt"`
}

// Option customises a GridPublisher.
type Option func(*GridPublisher)

// WithRecorder reports every PublishGrid outcome to r.
func WithRecorder(r coremetrics.PublishRecorder) Option {
	return func(p *GridPublisher) { p.recorder = r }
}

// NewGridPublisher connects to the broker and announces the publisher online.
func NewGridPublisher(cfg Config, opts ...Option) (*GridPublisher, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	clientOpts, err := NewClientOptions(cfg)
	if err != nil {
		return nil, err
	}
	log := logger.New("mqtt_publisher")
	p := &GridPublisher{cfg: cfg, log: log, sleep: sleepCtx}
	for _, o := range opts {
		o(p)
	}

	clientOpts.OnConnect = func(c paho.Client) {
		log.Infof("MQTT connected")
		if token := c.Publish(cfg.StatusTopic(), cfg.QoS, true, "online"); token.Wait() && token.Error() != nil {
			log.Errorf("status publish error: %v", token.Error())
		}
	}
	clientOpts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("connection lost: %v", err)
	}
	clientOpts.OnReconnecting = func(_ paho.Client, _ *paho.ClientOptions) {
		log.Warnf("reconnecting to MQTT broker")
	}
	c := newMQTTClient(clientOpts)
	token := c.Connect()
	if !token.WaitTimeout(cfg.timeout()) {
		return nil, fmt.Errorf("connect %s: %w", cfg.Broker, coremqtt.ErrPublishTimeout)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect %s: %w", cfg.Broker, err)
	}
	p.cli = c
	return p, nil
}

// SiteTopic returns the retained topic of one site row.
func (p *GridPublisher) SiteTopic(siteID string) string {
	return fmt.Sprintf("%s/site/%s/schedule", p.cfg.TopicPrefix, siteID)
}

// SummaryTopic returns the retained summary topic.
func (p *GridPublisher) SummaryTopic() string { return p.cfg.TopicPrefix + "/summary" }

// PublishGrid sends one message per site in processing order followed by the
// summary. The first topic that exhausts its retries aborts the broadcast.
func (p *GridPublisher) PublishGrid(ctx context.Context, generationID string, g *schedule.Grid) error {
	if g == nil {
		return nil
	}
	start := time.Now()
	topics, retries := 0, 0
	err := p.publishAll(ctx, generationID, g, &topics, &retries)
	if err != nil {
		coremon.CaptureException(err, map[string]string{
			"module":        "mqtt",
			"generation_id": generationID,
		})
		p.log.Errorf("publish grid %s: %v", generationID, err)
	} else {
		p.log.Infof("published grid %s to %d topics", generationID, topics)
	}
	if p.recorder != nil {
		ev := coremetrics.PublishEvent{Topics: topics, Retries: retries, Err: err, Latency: time.Since(start), Time: time.Now()}
		if rerr := p.recorder.RecordPublish(ev); rerr != nil {
			p.log.Warnf("record publish: %v", rerr)
		}
	}
	return err
}

func (p *GridPublisher) publishAll(ctx context.Context, id string, g *schedule.Grid, topics, retries *int) error {
	now := time.Now().UTC()
	for _, site := range g.SiteOrder {
		payload := SitePayload{
			GenerationID: id,
			SiteID:       site,
			Priority:     g.SitePriority[site],
			Active:       g.SiteActive[site],
			GridHours:    g.GridHours,
			Row:          g.Grid[site],
			PublishedAt:  now,
		}
		n, err := p.publish(ctx, p.SiteTopic(site), payload)
		*retries += n
		if err != nil {
			return err
		}
		*topics++
	}
	summary := SummaryPayload{
		GenerationID:     id,
		GridHours:        g.GridHours,
		SiteOrder:        g.SiteOrder,
		ActiveSites:      g.ActiveSites(),
		PlacedHours:      g.FilledCells(),
		HourlyAllocation: g.HourlyAllocation,
		Unscheduled:      g.Unscheduled,
		Warnings:         len(g.Warnings),
		PublishedAt:      now,
	}
	n, err := p.publish(ctx, p.SummaryTopic(), summary)
	*retries += n
	if err != nil {
		return err
	}
	*topics++
	return nil
}

// publish sends v as a retained JSON message, retrying with exponential
// backoff. It returns the number of retries performed.
func (p *GridPublisher) publish(ctx context.Context, topic string, v any) (int, error) {
	if p.cli == nil || !p.cli.IsConnected() {
		return 0, fmt.Errorf("%s: %w", topic, coremqtt.ErrNotConnected)
	}
	data, err := json.Marshal(v)
	if err != nil {
		return 0, fmt.Errorf("encode %s: %w", topic, err)
	}
	var publishErr error
	for attempt := 0; attempt <= p.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			if err := p.sleep(ctx, p.cfg.backoff()*time.Duration(1<<(attempt-1))); err != nil {
				return attempt - 1, err
			}
		}
		token := p.cli.Publish(topic, p.cfg.QoS, true, data)
		if !token.WaitTimeout(p.cfg.timeout()) {
			publishErr = coremqtt.ErrPublishTimeout
		} else {
			publishErr = token.Error()
		}
		if publishErr == nil {
			return attempt, nil
		}
		p.log.Warnf("publish %s attempt %d failed: %v", topic, attempt+1, publishErr)
	}
	return p.cfg.MaxRetries, fmt.Errorf("publish %s: %w", topic, publishErr)
}

// Disconnect announces the publisher offline and closes the connection.
func (p *GridPublisher) Disconnect() {
	if p.cli == nil || !p.cli.IsConnected() {
		return
	}
	token := p.cli.Publish(p.cfg.StatusTopic(), p.cfg.QoS, true, p.cfg.LWTPayload)
	token.WaitTimeout(p.cfg.timeout())
	p.cli.Disconnect(250)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
