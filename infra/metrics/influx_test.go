package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/kilianp07/minesched/core/factory"
	coremetrics "github.com/kilianp07/minesched/core/metrics"
	"github.com/kilianp07/minesched/core/schedule"
)

var errTest = errors.New("broker down")

func TestInfluxSink_RecordGeneration(t *testing.T) {
	var mu sync.Mutex
	var body string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		mu.Lock()
		body = string(data)
		mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	sink := NewInfluxSink(InfluxConfig{URL: srv.URL, Token: "token", Org: "org", Bucket: "bucket"})
	defer sink.Close()
	ev := coremetrics.GenerationEvent{
		ID:          "gen-1",
		GridHours:   12,
		Sites:       3,
		ActiveSites: 2,
		PlacedHours: 9,
		Warnings:    map[schedule.WarningKind]int{schedule.WarnUnscheduled: 1, schedule.WarnInvalidRate: 2},
		Elapsed:     1500 * time.Microsecond,
		Time:        time.Unix(1700000000, 0),
	}
	if err := sink.RecordGeneration(ev); err != nil {
		t.Fatalf("record error: %v", err)
	}
	mu.Lock()
	defer mu.Unlock()
	for _, want := range []string{
		"schedule_generation,",
		"generation_id=gen-1",
		"grid_hours=12",
		"status=ok",
		"placed_hours=9i",
		"warnings=3i",
		"active_sites=2i",
		"elapsed_ms=1.5",
		"1700000000000000000",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("body %q missing %q", body, want)
		}
	}
}

func TestInfluxSink_RecordSnapshot(t *testing.T) {
	var body string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		body = string(data)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	sink := NewInfluxSink(InfluxConfig{URL: srv.URL + "/api/v2/write", Token: "token", Org: "org", Bucket: "bucket", TimeoutMS: 500})
	defer sink.Close()
	if err := sink.RecordSnapshot(coremetrics.SnapshotEvent{Op: "delete", Kind: "manual", Backend: "sqlite", Time: time.Now()}); err != nil {
		t.Fatalf("record: %v", err)
	}
	if !strings.Contains(body, "snapshot_operation,") || !strings.Contains(body, "success=true") {
		t.Errorf("unexpected body %q", body)
	}
}

func TestNewInfluxSinkWithFallback(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			called = true
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
	}))
	defer srv.Close()

	sink := NewInfluxSinkWithFallback(InfluxConfig{URL: srv.URL + "/api/v2/write", Token: "tok", Org: "org", Bucket: "bucket"})
	if _, ok := sink.(*InfluxSink); ok {
		t.Fatalf("expected NopSink on failing health check")
	}
	if !called {
		t.Fatalf("health endpoint not called")
	}
}

func TestInfluxFactoryValidates(t *testing.T) {
	if _, err := coremetrics.NewMetricsSink([]factory.ModuleConfig{{Type: "influx", Conf: map[string]any{"url": "http://influx:8086"}}}); err == nil {
		t.Fatal("expected error without org and bucket")
	}
}
