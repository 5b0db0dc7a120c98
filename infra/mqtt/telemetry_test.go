package mqtt

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridwise/microgrid/core/events"
	"github.com/gridwise/microgrid/core/metrics"
	"github.com/gridwise/microgrid/internal/eventbus"
)

func runPublisher(t *testing.T, client Client, cfg Config, publish func(bus eventbus.EventBus)) {
	t.Helper()
	bus := eventbus.New()
	pub := NewTelemetryPublisher(client, cfg)

	// Subscribing before the goroutine starts guarantees the events below
	// are buffered for the consumer even if it has not been scheduled yet.
	sub := bus.Subscribe()
	done := make(chan struct{})
	go func() {
		defer close(done)
		pub.Run(context.Background(), sub)
	}()

	publish(bus)
	bus.Close()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publisher did not stop after bus close")
	}
}

func TestTelemetryPublisherRoutesTopics(t *testing.T) {
	client := NewMockClient()
	cfg := Config{Site: "hospital-a"}

	runPublisher(t, client, cfg, func(bus eventbus.EventBus) {
		bus.Publish(events.StepEvent{Record: metrics.StepRecord{Time: 3, LoadKW: 100}})
		bus.Publish(events.AlertEvent{Timestep: 3, Reason: "SOC sensor spoofing detected"})
		bus.Publish(events.SummaryEvent{Summary: metrics.RunSummary{RunID: "r1", Timesteps: 48}})
	})

	steps := client.Published("microgrid/hospital-a/telemetry")
	require.Len(t, steps, 1)
	var rec metrics.StepRecord
	require.NoError(t, json.Unmarshal(steps[0], &rec))
	assert.Equal(t, 3, rec.Time)
	assert.Equal(t, 100.0, rec.LoadKW)

	alerts := client.Published("microgrid/hospital-a/cyber")
	require.Len(t, alerts, 1)
	var alert events.AlertEvent
	require.NoError(t, json.Unmarshal(alerts[0], &alert))
	assert.Equal(t, "SOC sensor spoofing detected", alert.Reason)

	summaries := client.Published("microgrid/hospital-a/summary")
	require.Len(t, summaries, 1)
	var sum metrics.RunSummary
	require.NoError(t, json.Unmarshal(summaries[0], &sum))
	assert.Equal(t, "r1", sum.RunID)
}

func TestTelemetryPublisherIgnoresUnknownEvents(t *testing.T) {
	client := NewMockClient()

	runPublisher(t, client, Config{}, func(bus eventbus.EventBus) {
		bus.Publish("not a telemetry event")
	})

	assert.Empty(t, client.Messages)
}

func TestTelemetryPublisherSurvivesPublishErrors(t *testing.T) {
	client := NewMockClient()
	client.FailAll = true

	runPublisher(t, client, Config{}, func(bus eventbus.EventBus) {
		bus.Publish(events.StepEvent{Record: metrics.StepRecord{Time: 0}})
		bus.Publish(events.StepEvent{Record: metrics.StepRecord{Time: 1}})
	})
}

func TestTelemetryPublisherStopsOnContextCancel(t *testing.T) {
	bus := eventbus.New()
	defer bus.Close()
	pub := NewTelemetryPublisher(NewMockClient(), Config{})

	ctx, cancel := context.WithCancel(context.Background())
	sub := bus.Subscribe()
	done := make(chan struct{})
	go func() {
		defer close(done)
		pub.Run(ctx, sub)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publisher did not stop on cancel")
	}
}

func TestConfigDefaults(t *testing.T) {
	var cfg Config
	cfg.SetDefaults()
	assert.Equal(t, "microgrid-sim", cfg.ClientID)
	assert.Equal(t, "default", cfg.Site)
}
