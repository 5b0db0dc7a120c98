// Package sim runs the per-timestep simulation loop: sensing, attack
// injection, anomaly detection, controller decision, fail-safe override,
// load shedding, physical dispatch and post-decision safety verification.
package sim

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/gridwise/microgrid/core/assets"
	"github.com/gridwise/microgrid/core/controller"
	"github.com/gridwise/microgrid/core/cyber"
	"github.com/gridwise/microgrid/core/events"
	"github.com/gridwise/microgrid/core/forecast"
	"github.com/gridwise/microgrid/core/logger"
	"github.com/gridwise/microgrid/core/metrics"
	"github.com/gridwise/microgrid/core/model"
	"github.com/gridwise/microgrid/core/safety"
	"github.com/gridwise/microgrid/internal/eventbus"
)

// powerEpsKW absorbs float rounding in the blackout comparison.
const powerEpsKW = 1e-6

// EventLogger is the append-only sink for cyber events.
type EventLogger interface {
	LogEvent(timestep int, message string) error
}

// Simulator owns the physical asset state for the duration of a run and
// orchestrates one decide/dispatch/verify sequence per timestep. It is not
// safe for concurrent use; state forms a strict sequential dependency chain
// across timesteps.
type Simulator struct {
	cfg Config

	solar     *assets.SolarPV
	battery   *assets.Battery
	generator *assets.DieselGenerator
	ctrl      *controller.Controller
	detector  *cyber.Detector
	log       logger.Logger

	forecaster forecast.Engine
	sink       metrics.MetricsSink
	eventLog   EventLogger
	bus        eventbus.EventBus

	history []model.LoadSample

	prevAlert        bool
	prevBlackout     bool
	prevCriticalLost bool
	prevUnsafe       bool
}

// New creates a Simulator. The battery, generator and detector are owned
// exclusively by the simulator for the run's duration.
func New(cfg Config, solar *assets.SolarPV, battery *assets.Battery,
	generator *assets.DieselGenerator, ctrl *controller.Controller,
	detector *cyber.Detector, log logger.Logger) (*Simulator, error) {

	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("sim config: %w", err)
	}

	// A full-rate charge or discharge step is legitimate dispatch; the
	// detector's SOC jump rule must only fire beyond what this battery can
	// physically do in one step.
	if battery.CapacityKWh > 0 {
		rate := battery.MaxDischargeKW
		if battery.MaxChargeKW > rate {
			rate = battery.MaxChargeKW
		}
		detector.SetSoCStepLimit(rate * cfg.StepHours / battery.CapacityKWh)
	}

	return &Simulator{
		cfg:       cfg,
		solar:     solar,
		battery:   battery,
		generator: generator,
		ctrl:      ctrl,
		detector:  detector,
		log:       log,
		sink:      metrics.NopSink{},
	}, nil
}

// SetForecaster attaches the advisory load forecaster. A nil engine means no
// forecast is ever available; the run degrades gracefully.
func (s *Simulator) SetForecaster(f forecast.Engine) { s.forecaster = f }

// SetSink attaches a metrics sink. A nil sink resets to the no-op sink.
func (s *Simulator) SetSink(sink metrics.MetricsSink) {
	if sink == nil {
		s.sink = metrics.NopSink{}
		return
	}
	s.sink = sink
}

// SetEventLog attaches the cyber event sink.
func (s *Simulator) SetEventLog(l EventLogger) { s.eventLog = l }

// SetBus attaches the internal event bus.
func (s *Simulator) SetBus(b eventbus.EventBus) { s.bus = b }

// Run executes one simulation over the load and solar profiles with the
// given attack campaigns. It returns the per-step records and the aggregate
// summary. A safety invariant violation halts the run immediately and is
// returned alongside the records collected so far; context cancellation
// stops iterating in the same way.
func (s *Simulator) Run(ctx context.Context, loadProfile, solarProfile []float64,
	attacks []model.Attack) ([]metrics.StepRecord, metrics.RunSummary, error) {

	horizon := len(loadProfile)
	if len(solarProfile) < horizon {
		horizon = len(solarProfile)
	}

	records := make([]metrics.StepRecord, 0, horizon)
	summary := metrics.RunSummary{
		RunID:              uuid.NewString(),
		CyberFirstTimestep: -1,
	}

	for t := 0; t < horizon; t++ {
		select {
		case <-ctx.Done():
			s.finish(&summary, t)
			return records, summary, ctx.Err()
		default:
		}

		rec, err := s.step(t, loadProfile[t], solarProfile[t], attacks, &summary)
		records = append(records, rec)
		if err != nil {
			s.finish(&summary, t+1)
			return records, summary, err
		}
	}

	s.finish(&summary, horizon)
	return records, summary, nil
}

func (s *Simulator) finish(summary *metrics.RunSummary, steps int) {
	summary.Timesteps = steps
	if err := s.sink.RecordSummary(*summary); err != nil {
		s.log.Errorf("record summary: %v", err)
	}
	if s.bus != nil {
		s.bus.Publish(events.SummaryEvent{Summary: *summary})
	}
}

// step runs one full timestep and returns its record. A non-nil error is a
// safety violation and must halt the run.
func (s *Simulator) step(t int, trueLoadKW, solarAvailKW float64,
	attacks []model.Attack, summary *metrics.RunSummary) (metrics.StepRecord, error) {

	solarKW := s.solar.Power(solarAvailKW)
	generatorAvailable := !s.cfg.NoGenerator

	// What the controller sees. Attacks corrupt only these observations;
	// ground truth is untouched.
	sensedLoadKW := trueLoadKW
	sensedSolarKW := solarKW
	measuredSoC := s.battery.SoC()

	attackActive := false
	var attackTypes []string
	for _, a := range attacks {
		if !a.ActiveAt(t) {
			continue
		}
		attackActive = true
		attackTypes = append(attackTypes, a.Type.String())
		switch a.Type {
		case model.AttackSoCSpoof:
			measuredSoC = a.SpoofValue
		case model.AttackLoadSpoof:
			sensedLoadKW = trueLoadKW*a.Scale + a.Offset
		case model.AttackSolarSpoof:
			sensedSolarKW = solarKW*a.Scale + a.Offset
		}
	}
	if attackActive {
		summary.AttackActiveSteps++
	}

	frame := model.SensorFrame{
		SoC:           measuredSoC,
		SoCSecure:     s.battery.SoC(),
		LoadKW:        sensedLoadKW,
		LoadKWSecure:  trueLoadKW,
		SolarKW:       sensedSolarKW,
		SolarKWSecure: solarKW,
	}

	cyberAlert := s.detector.Evaluate(frame)
	anomalyNow := s.detector.AnomalyNow()
	cyberReason := s.detector.Reason()

	if anomalyNow {
		summary.CyberAnomalySteps++
	}
	if cyberAlert {
		summary.CyberAlertActiveSteps++
		if !s.prevAlert {
			summary.CyberAlertCount++
			if summary.CyberFirstTimestep < 0 {
				summary.CyberFirstTimestep = t
			}
			s.log.Warnf("safe mode active at t=%d: %s", t, cyberReason)
			if s.bus != nil {
				s.bus.Publish(events.AlertEvent{Timestep: t, Reason: cyberReason})
			}
		}
	}
	s.logCyberEvent(t, cyberAlert, anomalyNow, cyberReason)

	// History is stored from ground truth; the forecaster is a passive
	// observer of the real system.
	s.history = append(s.history, model.LoadSample{Timestep: t, LoadKW: trueLoadKW})

	var loadForecast []float64
	if s.forecaster != nil && len(s.history) >= s.cfg.HistoryWarmup {
		loadForecast = s.forecaster.PredictNext(s.history, s.cfg.ForecastHorizon)
	}
	aiForecast := len(loadForecast) > 0
	if aiForecast {
		summary.AIForecastCount++
	}
	var forecastNextKW, forecastAvgKW float64
	if aiForecast {
		forecastNextKW = loadForecast[0]
		sum := 0.0
		for _, v := range loadForecast {
			sum += v
		}
		forecastAvgKW = sum / float64(len(loadForecast))
	}

	decision := s.ctrl.Decide(sensedSolarKW, sensedLoadKW, s.battery, loadForecast,
		generatorAvailable, cyberAlert)
	aiTriggered := decision.Predictive
	if aiTriggered {
		summary.AITriggerCount++
	}

	// Non-bypassable fail-safe override. The controller's own fail-safe
	// rule already produces this decision; forcing it here as well means a
	// controller regression cannot disable the latch response.
	if cyberAlert {
		actions := safety.EnforceSafeMode(frame)
		decision.GeneratorCmd = model.GenStart
		decision.BatteryMode = model.BatteryProtect
		decision.State = model.StateSafeMode
		decision.SafeMode = true
		decision.ShedTier = actions.ShedTier
		decision.UseBattery = actions.UseBattery
		decision.UseGenerator = actions.UseGenerator
	}

	// Load shedding. Dispatch is based on true physical demand, not
	// spoofed sensors. The critical floor is structurally protected: shed
	// fractions only ever apply to demand above it.
	criticalDemandKW := trueLoadKW
	if criticalDemandKW > s.cfg.CriticalLoadKW {
		criticalDemandKW = s.cfg.CriticalLoadKW
	}
	nonCriticalKW := trueLoadKW - criticalDemandKW
	if nonCriticalKW < 0 {
		nonCriticalKW = 0
	}
	shedFraction := s.cfg.Shedding.Fraction(decision.ShedTier)
	servedLoadKW := criticalDemandKW + nonCriticalKW*(1-shedFraction)

	// An unavailable generator ignores commands; it can be ordered to start
	// but produces nothing, so it must never be switched on here.
	if generatorAvailable {
		switch decision.GeneratorCmd {
		case model.GenStart:
			s.generator.Start()
		case model.GenStop:
			s.generator.Stop()
		}
	}

	// Physical dispatch in fixed priority: solar, then generator, then
	// battery, each clamped to its own limit and the remaining deficit.
	remainingKW := servedLoadKW - solarKW
	if remainingKW < 0 {
		remainingKW = 0
	}
	genKW := 0.0
	if s.generator.IsOn() && decision.UseGenerator {
		genKW = remainingKW
		if genKW > s.generator.MaxPowerKW {
			genKW = s.generator.MaxPowerKW
		}
		remainingKW -= genKW
	}
	dischargedKW := 0.0
	if remainingKW > 0 && decision.UseBattery && decision.BatteryMode == model.BatteryDischarge {
		dischargedKW = s.battery.Discharge(remainingKW, s.cfg.StepHours, s.cfg.DischargeFloorSoC)
	}

	supplyKW := solarKW + genKW + dischargedKW
	blackout := supplyKW+powerEpsKW < servedLoadKW

	// Store solar surplus beyond the served load, up to the charge limit.
	chargeKW := 0.0
	if excess := solarKW - servedLoadKW; excess > 0 && decision.UseBattery {
		chargeKW = s.battery.Charge(excess, s.cfg.StepHours)
	}

	criticalServed := supplyKW+powerEpsKW >= s.cfg.CriticalLoadKW
	if !criticalServed {
		summary.CriticalLostCount++
		if !s.prevCriticalLost {
			s.log.Errorf("critical load lost at t=%d", t)
		}
	}
	if blackout {
		summary.BlackoutCount++
		if cyberAlert {
			summary.CyberBlackoutCount++
		}
		if !s.prevBlackout {
			s.log.Errorf("blackout detected at t=%d: supply %.1f kW < served %.1f kW",
				t, supplyKW, servedLoadKW)
		}
	}

	unsafe := s.battery.SoC() < 0.20
	if unsafe {
		summary.UnsafeCount++
		if !s.prevUnsafe {
			s.log.Errorf("unsafe battery deep discharge at t=%d: SOC %.3f", t, s.battery.SoC())
		}
	}

	// Post-decision formal gate, run against the actual battery state and
	// the actual decision. Fatal on failure, never retried.
	err := safety.Check(safety.CheckInput{
		SoC:                s.battery.SoC(),
		GeneratorCmd:       decision.GeneratorCmd,
		GeneratorAvailable: generatorAvailable,
		ShedTier:           decision.ShedTier,
		SafeMode:           decision.State == model.StateSafeMode,
	})
	if err != nil {
		s.log.Errorf("run halted at t=%d: %v (decision: %s)", t, err, decision.Reason)
	}

	validatorOK := safety.Validate(blackout, criticalServed, s.battery.SoC())
	if !validatorOK {
		summary.ValidatorFailCount++
	}

	if s.cfg.LogEveryN > 0 && t%s.cfg.LogEveryN == 0 {
		s.log.Debugw("step", map[string]any{
			"t":               t,
			"state":           decision.State.String(),
			"soc":             s.battery.SoC(),
			"supply_kw":       supplyKW,
			"load_kw":         trueLoadKW,
			"served_load_kw":  servedLoadKW,
			"blackout":        blackout,
			"critical_served": criticalServed,
			"cyber_alert":     cyberAlert,
			"unsafe":          unsafe,
			"validator_ok":    validatorOK,
			"ai_forecast":     aiForecast,
			"ai_triggered":    aiTriggered,
			"reason":          decision.Reason,
		})
	}

	sort.Strings(attackTypes)
	rec := metrics.StepRecord{
		Time:            t,
		LoadKW:          trueLoadKW,
		SensedLoadKW:    sensedLoadKW,
		SolarKW:         solarKW,
		SensedSolarKW:   sensedSolarKW,
		GeneratorKW:     genKW,
		BatteryKW:       dischargedKW,
		BatteryChargeKW: chargeKW,
		BatterySoC:      s.battery.SoC(),
		GeneratorCmd:    decision.GeneratorCmd,
		GeneratorOn:     s.generator.IsOn(),
		State:           decision.State,
		CyberAlert:      cyberAlert,
		CyberAnomalyNow: anomalyNow,
		CyberReason:     cyberReason,
		AttackActive:    attackActive,
		AttackTypes:     strings.Join(dedup(attackTypes), ","),
		AIForecast:      aiForecast,
		AITriggered:     aiTriggered,
		ForecastNextKW:  forecastNextKW,
		ForecastAvgKW:   forecastAvgKW,
		ShedTier:        decision.ShedTier,
		ServedLoadKW:    servedLoadKW,
		Blackout:        blackout,
		CriticalServed:  criticalServed,
		Unsafe:          unsafe,
		ValidatorOK:     validatorOK,
		Reason:          decision.Reason,
	}
	rec.Finalize()

	if sinkErr := s.sink.RecordStep(rec); sinkErr != nil {
		s.log.Errorf("record step %d: %v", t, sinkErr)
	}
	if s.bus != nil {
		s.bus.Publish(events.StepEvent{Record: rec})
	}

	s.prevAlert = cyberAlert
	s.prevBlackout = blackout
	s.prevCriticalLost = !criticalServed
	s.prevUnsafe = unsafe

	return rec, err
}

// logCyberEvent writes to the cyber event sink according to the configured
// cadence.
func (s *Simulator) logCyberEvent(t int, alert, anomalyNow bool, reason string) {
	if s.eventLog == nil {
		return
	}
	var logThis bool
	switch strings.ToLower(strings.TrimSpace(s.cfg.CyberLogMode)) {
	case "anomaly":
		logThis = anomalyNow
	case "active":
		logThis = alert
	default: // transition
		logThis = alert && !s.prevAlert
	}
	if !logThis {
		return
	}
	msg := reason
	if msg == "" {
		msg = "Cyber anomaly detected"
	}
	if err := s.eventLog.LogEvent(t, "CYBER EVENT: "+msg); err != nil {
		s.log.Errorf("cyber event log: %v", err)
	}
}

func dedup(sorted []string) []string {
	if len(sorted) < 2 {
		return sorted
	}
	out := sorted[:1]
	for _, v := range sorted[1:] {
		if v != out[len(out)-1] {
			out = append(out, v)
		}
	}
	return out
}
