// Package app wires the configuration into a runnable simulation service.
package app

import (
	"context"
	"fmt"

	"github.com/gridwise/microgrid/config"
	"github.com/gridwise/microgrid/core/assets"
	"github.com/gridwise/microgrid/core/controller"
	"github.com/gridwise/microgrid/core/cyber"
	"github.com/gridwise/microgrid/core/forecast"
	coremetrics "github.com/gridwise/microgrid/core/metrics"
	"github.com/gridwise/microgrid/core/model"
	"github.com/gridwise/microgrid/core/profile"
	"github.com/gridwise/microgrid/core/sim"
	"github.com/gridwise/microgrid/infra/eventlog"
	"github.com/gridwise/microgrid/infra/logger"
	"github.com/gridwise/microgrid/infra/metrics"
	"github.com/gridwise/microgrid/infra/mqtt"
	"github.com/gridwise/microgrid/internal/eventbus"
)

// Service orchestrates one simulation run with its sinks and telemetry.
type Service struct {
	cfg *config.Config
	log logger.Logger
	bus *eventbus.Bus

	simulator *sim.Simulator
	attacks   []model.Attack
	eventLog  *eventlog.FileSink
	mqttCli   mqtt.Client

	records []coremetrics.StepRecord
	summary coremetrics.RunSummary
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")

	solar := assets.NewSolarPV(cfg.Assets.Solar.MaxPowerKW)
	battery := assets.NewBattery(
		cfg.Assets.Battery.CapacityKWh,
		cfg.Assets.Battery.InitialSoC,
		cfg.Assets.Battery.MaxChargeKW,
		cfg.Assets.Battery.MaxDischargeKW,
	)
	generator := assets.NewDieselGenerator(cfg.Assets.Generator.MaxPowerKW)
	ctrl := controller.New(cfg.Controller, logger.New("controller"))
	detector := cyber.NewDetector(cfg.Detector)

	simulator, err := sim.New(cfg.Simulation, solar, battery, generator, ctrl,
		detector, logger.New("simulator"))
	if err != nil {
		return nil, err
	}

	svc := &Service{cfg: cfg, log: logg, bus: eventbus.New(), simulator: simulator}
	simulator.SetBus(svc.bus)

	if cfg.Forecast.Enabled {
		simulator.SetForecaster(forecast.SeasonalNaive{Period: cfg.Forecast.Period})
	}

	var sinks []coremetrics.MetricsSink
	if cfg.Metrics.PrometheusEnabled {
		sink, err := metrics.NewPromSink(cfg.Metrics)
		if err != nil {
			return nil, fmt.Errorf("prom sink: %w", err)
		}
		sinks = append(sinks, sink)
	}
	if cfg.Metrics.InfluxEnabled {
		sinks = append(sinks, metrics.NewInfluxSinkWithFallback(cfg.Metrics))
	}
	switch len(sinks) {
	case 0:
	case 1:
		simulator.SetSink(sinks[0])
	default:
		simulator.SetSink(metrics.NewMultiSink(sinks...))
	}

	if cfg.EventLog.Enabled {
		sink, err := eventlog.NewFileSink(cfg.EventLog.Path, cfg.EventLog.Truncate)
		if err != nil {
			return nil, fmt.Errorf("event log: %w", err)
		}
		svc.eventLog = sink
		simulator.SetEventLog(sink)
	}

	if cfg.MQTT.Enabled {
		client, err := mqtt.NewPahoClient(cfg.MQTT, nil)
		if err != nil {
			return nil, fmt.Errorf("mqtt client: %w", err)
		}
		svc.mqttCli = client
	}

	svc.attacks, err = config.AttacksToModel(cfg.Attacks)
	if err != nil {
		return nil, err
	}
	return svc, nil
}

// Run executes the simulation and blocks until it completes or the context
// is cancelled. A safety invariant violation is returned as an error.
func (s *Service) Run(ctx context.Context) error {
	if s.cfg.Metrics.PrometheusEnabled {
		go func() {
			if err := metrics.StartPromServer(ctx, s.cfg.Metrics.PrometheusPort); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}
	if s.mqttCli != nil {
		pub := mqtt.NewTelemetryPublisher(s.mqttCli, s.cfg.MQTT)
		// Subscribe is evaluated here, before the goroutine starts, so the
		// publisher sees every event from the first step on.
		go pub.Run(ctx, s.bus.Subscribe())
	}

	load, solar := profile.New(s.cfg.Profile).Profiles()
	s.log.Infof("starting run: %d timesteps, %d attacks", len(load), len(s.attacks))

	records, summary, err := s.simulator.Run(ctx, load, solar, s.attacks)
	s.records = records
	s.summary = summary
	if err != nil {
		return err
	}
	s.log.Infof("run %s complete: %d steps, %d blackouts, %d cyber alerts, %d validator failures",
		summary.RunID, summary.Timesteps, summary.BlackoutCount,
		summary.CyberAlertCount, summary.ValidatorFailCount)
	return nil
}

// Records returns the step records of the last run.
func (s *Service) Records() []coremetrics.StepRecord { return s.records }

// Summary returns the aggregate summary of the last run.
func (s *Service) Summary() coremetrics.RunSummary { return s.summary }

// Close releases resources held by the service.
func (s *Service) Close() error {
	s.bus.Close()
	if s.mqttCli != nil {
		s.mqttCli.Close()
	}
	if s.eventLog != nil {
		return s.eventLog.Close()
	}
	return nil
}
