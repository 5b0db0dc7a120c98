// Package controller implements the microgrid dispatch state machine as an
// ordered table of guard/action rules evaluated top-down with short-circuit.
// The precedence order is a first-class artifact: a wrong order here is a
// safety bug, not a cosmetic one.
package controller

import (
	"fmt"

	"gonum.org/v1/gonum/stat"

	"github.com/gridwise/microgrid/core/logger"
	"github.com/gridwise/microgrid/core/model"
)

// SoCReader exposes read-only battery state to the controller. The battery
// itself is owned by the simulation loop.
type SoCReader interface {
	SoC() float64
}

// Input carries everything a single Decide call consumes.
type Input struct {
	SolarKW            float64
	LoadKW             float64
	SoC                float64
	Forecast           []float64
	GeneratorAvailable bool
	CyberAnomaly       bool
}

type rule struct {
	name   string
	guard  func(in Input) bool
	action func(in Input) model.Decision
}

// Controller is the dispatch state machine. The only memory carried across
// calls is the operating state, transitioned by a pure function of the
// inputs.
type Controller struct {
	cfg   Config
	log   logger.Logger
	rules []rule
	state model.SystemState
}

// New creates a controller in NORMAL state.
func New(cfg Config, log logger.Logger) *Controller {
	cfg.SetDefaults()
	c := &Controller{cfg: cfg, log: log, state: model.StateNormal}
	c.rules = []rule{
		{name: "fail-safe", guard: c.guardFailSafe, action: c.actFailSafe},
		{name: "predictive-preemption", guard: c.guardPredictive, action: c.actPredictive},
		{name: "soc-preemption", guard: c.guardSoCPreempt, action: c.actSoCPreempt},
		{name: "deficit-preemption", guard: c.guardDeficit, action: c.actDeficit},
		{name: "soc-tier", guard: func(Input) bool { return true }, action: c.actSoCTier},
	}
	return c
}

// State returns the current operating state.
func (c *Controller) State() model.SystemState { return c.state }

// RuleNames returns the rule precedence order, highest priority first.
func (c *Controller) RuleNames() []string {
	names := make([]string, len(c.rules))
	for i, r := range c.rules {
		names[i] = r.name
	}
	return names
}

// Decide evaluates the rule table against the sensed conditions and returns
// a fully populated decision. Earlier rules fully short-circuit later ones.
// A nil or empty forecast means no forecast is available.
func (c *Controller) Decide(solarKW, loadKW float64, battery SoCReader, forecast []float64,
	generatorAvailable, cyberAnomaly bool) model.Decision {

	in := Input{
		SolarKW:            solarKW,
		LoadKW:             loadKW,
		SoC:                battery.SoC(),
		Forecast:           forecast,
		GeneratorAvailable: generatorAvailable,
		CyberAnomaly:       cyberAnomaly,
	}
	for _, r := range c.rules {
		if !r.guard(in) {
			continue
		}
		d := r.action(in)
		if c.log != nil && d.State != c.state {
			c.log.Infof("state %s -> %s (%s)", c.state, d.State, r.name)
		}
		c.state = d.State
		return d
	}
	// The soc-tier guard is unconditional, so this is unreachable.
	panic("controller: no rule matched")
}

// Rule 1: non-bypassable fail-safe on a latched cyber alert.
func (c *Controller) guardFailSafe(in Input) bool { return in.CyberAnomaly }

func (c *Controller) actFailSafe(in Input) model.Decision {
	return model.Decision{
		GeneratorCmd: model.GenStart,
		BatteryMode:  model.BatteryProtect,
		ShedTier:     model.ShedAllNonCritical,
		State:        model.StateSafeMode,
		SafeMode:     true,
		UseBattery:   true,
		UseGenerator: true,
		Reason:       "Cyber anomaly: fail-safe override, generator forced on, life-critical loads only",
	}
}

// Rule 2: predictive preemption on an advisory forecast.
func (c *Controller) guardPredictive(in Input) bool {
	if len(in.Forecast) == 0 || !in.GeneratorAvailable {
		return false
	}
	return stat.Mean(in.Forecast, nil) > in.LoadKW*c.cfg.PredictiveLoadFactor &&
		in.SoC < c.cfg.PredictiveSoC
}

func (c *Controller) actPredictive(in Input) model.Decision {
	mean := stat.Mean(in.Forecast, nil)
	return model.Decision{
		GeneratorCmd: model.GenStart,
		BatteryMode:  model.BatteryDischarge,
		ShedTier:     model.ShedNone,
		State:        c.socTierState(in.SoC),
		UseBattery:   true,
		UseGenerator: true,
		Predictive:   true,
		Reason: fmt.Sprintf("Predictive generator start: forecast mean %.1f kW exceeds load %.1f kW with SOC %.2f",
			mean, in.LoadKW, in.SoC),
	}
}

// Rule 3: hard SOC preemption. Guarantees the absolute battery floor is
// never reached under normal load trajectories.
func (c *Controller) guardSoCPreempt(in Input) bool {
	return in.GeneratorAvailable && in.SoC <= c.cfg.PreemptSoC
}

func (c *Controller) actSoCPreempt(in Input) model.Decision {
	return model.Decision{
		GeneratorCmd: model.GenStart,
		BatteryMode:  model.BatteryProtect,
		ShedTier:     model.ShedDeferrable,
		State:        model.StateEmergency,
		UseBattery:   true,
		UseGenerator: true,
		Reason: fmt.Sprintf("Emergency SOC preemption: SOC %.2f at or below %.2f, generator started",
			in.SoC, c.cfg.PreemptSoC),
	}
}

// Rule 4: power-deficit preemption.
func (c *Controller) guardDeficit(in Input) bool {
	return in.GeneratorAvailable && (in.LoadKW-in.SolarKW) > c.cfg.DeficitFrac*in.LoadKW
}

func (c *Controller) actDeficit(in Input) model.Decision {
	return model.Decision{
		GeneratorCmd: model.GenStart,
		BatteryMode:  model.BatteryDischarge,
		ShedTier:     model.ShedNone,
		State:        c.socTierState(in.SoC),
		UseBattery:   true,
		UseGenerator: true,
		Reason: fmt.Sprintf("Power deficit: solar %.1f kW covers less than %.0f%% margin of load %.1f kW",
			in.SolarKW, (1-c.cfg.DeficitFrac)*100, in.LoadKW),
	}
}

// Rule 5: SOC-tier transition with the fixed per-state action.
func (c *Controller) actSoCTier(in Input) model.Decision {
	state := c.socTierState(in.SoC)
	d := model.Decision{
		State:        state,
		BatteryMode:  model.BatteryDischarge,
		UseBattery:   true,
		UseGenerator: true,
	}
	switch state {
	case model.StateEmergency:
		d.GeneratorCmd = model.GenHold
		if in.GeneratorAvailable {
			d.GeneratorCmd = model.GenStart
		}
		d.ShedTier = model.ShedDeferrable
		d.Reason = fmt.Sprintf("Emergency: SOC %.2f below %.2f, shedding labs and imaging", in.SoC, c.cfg.EmergencySoC)
	case model.StateStressed:
		d.GeneratorCmd = model.GenStart
		d.ShedTier = model.ShedComfort
		d.Reason = fmt.Sprintf("Stressed: SOC %.2f below %.2f, shedding administrative and HVAC", in.SoC, c.cfg.StressedSoC)
	default:
		d.GeneratorCmd = model.GenStop
		d.ShedTier = model.ShedNone
		d.Reason = fmt.Sprintf("Normal operation: SOC %.2f", in.SoC)
	}
	return d
}

// socTierState is the pure state transition on SOC.
func (c *Controller) socTierState(soc float64) model.SystemState {
	switch {
	case soc < c.cfg.EmergencySoC:
		return model.StateEmergency
	case soc < c.cfg.StressedSoC:
		return model.StateStressed
	default:
		return model.StateNormal
	}
}
