package scenarios

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/gridwise/microgrid/core/assets"
	"github.com/gridwise/microgrid/core/controller"
	"github.com/gridwise/microgrid/core/cyber"
	"github.com/gridwise/microgrid/core/forecast"
	coremetrics "github.com/gridwise/microgrid/core/metrics"
	"github.com/gridwise/microgrid/core/model"
	"github.com/gridwise/microgrid/core/sim"
	"github.com/gridwise/microgrid/infra/logger"
	"github.com/gridwise/microgrid/infra/metrics"
)

// RunScenario builds a simulator for the scenario and checks the run
// summary against the expectations.
func RunScenario(t *testing.T, sc *Scenario) {
	t.Helper()

	reg := prometheus.NewRegistry()
	sink, err := metrics.NewPromSinkWithRegistry(coremetrics.Config{}, reg)
	if err != nil {
		t.Fatalf("prom sink: %v", err)
	}

	solar := assets.NewSolarPV(130)
	battery := assets.NewBattery(300, sc.InitialSoC, 50, 50)
	generator := assets.NewDieselGenerator(100)
	ctrl := controller.New(controller.Config{}, logger.NopLogger{})
	detector := cyber.NewDetector(cyber.Thresholds{})

	simulator, err := sim.New(sim.Config{NoGenerator: sc.NoGenerator},
		solar, battery, generator, ctrl, detector, logger.NopLogger{})
	if err != nil {
		t.Fatalf("simulator: %v", err)
	}
	simulator.SetSink(sink)
	if sc.Forecast {
		simulator.SetForecaster(forecast.SeasonalNaive{})
	}

	attacks := make([]model.Attack, 0, len(sc.Attacks))
	for _, def := range sc.Attacks {
		a, err := def.ToModel()
		if err != nil {
			t.Fatalf("scenario %s: %v", sc.Name, err)
		}
		attacks = append(attacks, a)
	}

	records, summary, err := simulator.Run(context.Background(), sc.LoadKW, sc.SolarKW, attacks)
	if err != nil {
		t.Fatalf("scenario %s: run failed: %v", sc.Name, err)
	}

	if summary.BlackoutCount != sc.Expected.Blackouts {
		t.Errorf("scenario %s: expected %d blackouts, got %d",
			sc.Name, sc.Expected.Blackouts, summary.BlackoutCount)
	}
	if summary.CyberAlertCount != sc.Expected.CyberAlertCount {
		t.Errorf("scenario %s: expected %d alert triggers, got %d",
			sc.Name, sc.Expected.CyberAlertCount, summary.CyberAlertCount)
	}
	if sc.Expected.CyberFirstTimestep != nil && summary.CyberFirstTimestep != *sc.Expected.CyberFirstTimestep {
		t.Errorf("scenario %s: expected first alert at t=%d, got t=%d",
			sc.Name, *sc.Expected.CyberFirstTimestep, summary.CyberFirstTimestep)
	}
	if summary.UnsafeCount != sc.Expected.UnsafeSteps {
		t.Errorf("scenario %s: expected %d unsafe steps, got %d",
			sc.Name, sc.Expected.UnsafeSteps, summary.UnsafeCount)
	}
	if summary.ValidatorFailCount != sc.Expected.ValidatorFailures {
		t.Errorf("scenario %s: expected %d validator failures, got %d",
			sc.Name, sc.Expected.ValidatorFailures, summary.ValidatorFailCount)
	}

	safeModeSteps := 0
	for _, rec := range records {
		if rec.State == model.StateSafeMode {
			safeModeSteps++
		}
	}
	if safeModeSteps != sc.Expected.SafeModeSteps {
		t.Errorf("scenario %s: expected %d safe-mode steps, got %d",
			sc.Name, sc.Expected.SafeModeSteps, safeModeSteps)
	}
}
