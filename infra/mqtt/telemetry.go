package mqtt

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gridwise/microgrid/core/events"
	"github.com/gridwise/microgrid/infra/logger"
	"github.com/gridwise/microgrid/internal/eventbus"
)

// TelemetryPublisher forwards bus events to MQTT topics:
// microgrid/<site>/telemetry for step records, microgrid/<site>/cyber for
// alert events and microgrid/<site>/summary for run summaries.
type TelemetryPublisher struct {
	client Client
	cfg    Config
	log    logger.Logger
}

// NewTelemetryPublisher creates a publisher over an established client.
func NewTelemetryPublisher(client Client, cfg Config) *TelemetryPublisher {
	cfg.SetDefaults()
	return &TelemetryPublisher{
		client: client,
		cfg:    cfg,
		log:    logger.New("mqtt-telemetry"),
	}
}

// Run consumes events until the context is cancelled or the channel closes.
// The caller subscribes before publishing starts, so no events race past
// consumer startup.
func (p *TelemetryPublisher) Run(ctx context.Context, events <-chan eventbus.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if err := p.publish(ev); err != nil {
				p.log.Errorf("publish telemetry: %v", err)
			}
		}
	}
}

func (p *TelemetryPublisher) publish(ev eventbus.Event) error {
	var (
		topic   string
		payload any
	)
	switch e := ev.(type) {
	case events.StepEvent:
		topic = p.topic("telemetry")
		payload = e.Record
	case events.AlertEvent:
		topic = p.topic("cyber")
		payload = e
	case events.SummaryEvent:
		topic = p.topic("summary")
		payload = e.Summary
	default:
		return nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return p.client.Publish(topic, data, p.cfg.QoS)
}

func (p *TelemetryPublisher) topic(kind string) string {
	return fmt.Sprintf("microgrid/%s/%s", p.cfg.Site, kind)
}
