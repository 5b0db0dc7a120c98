package controller

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gridwise/microgrid/core/model"
	"github.com/gridwise/microgrid/infra/logger"
)

type fixedSoC float64

func (s fixedSoC) SoC() float64 { return float64(s) }

func newTestController() *Controller {
	return New(Config{}, logger.NopLogger{})
}

func TestRulePrecedenceOrder(t *testing.T) {
	c := newTestController()
	assert.Equal(t, []string{
		"fail-safe",
		"predictive-preemption",
		"soc-preemption",
		"deficit-preemption",
		"soc-tier",
	}, c.RuleNames())
}

func TestFailSafeOverridesEverything(t *testing.T) {
	c := newTestController()
	// Healthy battery, solar surplus: every other rule would pick NORMAL.
	d := c.Decide(120, 80, fixedSoC(0.9), nil, true, true)
	assert.Equal(t, model.StateSafeMode, d.State)
	assert.True(t, d.SafeMode)
	assert.Equal(t, model.GenStart, d.GeneratorCmd)
	assert.Equal(t, model.BatteryProtect, d.BatteryMode)
	assert.Equal(t, model.ShedAllNonCritical, d.ShedTier)
}

func TestFailSafeAppliesWithoutGenerator(t *testing.T) {
	c := newTestController()
	d := c.Decide(0, 100, fixedSoC(0.9), nil, false, true)
	assert.True(t, d.SafeMode)
	assert.Equal(t, model.GenStart, d.GeneratorCmd)
}

func TestPredictivePreemption(t *testing.T) {
	c := newTestController()
	forecast := []float64{120, 130, 140} // mean 130 > 100 * 1.10
	d := c.Decide(120, 100, fixedSoC(0.5), forecast, true, false)
	assert.True(t, d.Predictive)
	assert.Equal(t, model.GenStart, d.GeneratorCmd)
	assert.Equal(t, model.BatteryDischarge, d.BatteryMode)
	assert.Equal(t, model.ShedNone, d.ShedTier)
	assert.Equal(t, model.StateStressed, d.State)
}

func TestPredictiveRequiresLowReserve(t *testing.T) {
	c := newTestController()
	forecast := []float64{120, 130, 140}
	d := c.Decide(120, 100, fixedSoC(0.8), forecast, true, false)
	assert.False(t, d.Predictive)
	assert.Equal(t, model.StateNormal, d.State)
}

func TestPredictiveRequiresForecastMargin(t *testing.T) {
	c := newTestController()
	forecast := []float64{105, 108, 110} // mean below 110
	d := c.Decide(120, 100, fixedSoC(0.5), forecast, true, false)
	assert.False(t, d.Predictive)
}

// The SOC preemption must fire regardless of the instantaneous power
// balance: a comfortable solar surplus does not excuse a 0.32 reserve.
func TestSoCPreemptionIgnoresPowerBalance(t *testing.T) {
	c := newTestController()
	d := c.Decide(150, 50, fixedSoC(0.32), nil, true, false)
	assert.Equal(t, model.StateEmergency, d.State)
	assert.Equal(t, model.GenStart, d.GeneratorCmd)
	assert.Equal(t, model.BatteryProtect, d.BatteryMode)
	assert.Equal(t, model.ShedDeferrable, d.ShedTier)
}

func TestDeficitPreemption(t *testing.T) {
	c := newTestController()
	// Solar covers 0% of a 100 kW load with a healthy battery.
	d := c.Decide(0, 100, fixedSoC(0.5), nil, true, false)
	assert.Equal(t, model.GenStart, d.GeneratorCmd)
	assert.Equal(t, model.BatteryDischarge, d.BatteryMode)
	assert.Equal(t, model.ShedNone, d.ShedTier)
	assert.Equal(t, model.StateStressed, d.State)
}

func TestDeficitWithinMarginFallsThrough(t *testing.T) {
	c := newTestController()
	// Solar covers 90% of load: deficit 10 kW is under the 15% margin.
	d := c.Decide(90, 100, fixedSoC(0.9), nil, true, false)
	assert.Equal(t, model.StateNormal, d.State)
	assert.Equal(t, model.GenStop, d.GeneratorCmd)
	assert.Equal(t, model.ShedNone, d.ShedTier)
}

func TestSoCTierStates(t *testing.T) {
	cases := []struct {
		soc   float64
		state model.SystemState
		cmd   model.GeneratorCommand
		tier  model.ShedTier
	}{
		{0.39, model.StateEmergency, model.GenStart, model.ShedDeferrable},
		{0.45, model.StateStressed, model.GenStart, model.ShedComfort},
		{0.75, model.StateNormal, model.GenStop, model.ShedNone},
	}
	for _, tc := range cases {
		c := newTestController()
		// Solar fully covers load so the deficit rule stays quiet.
		d := c.Decide(100, 100, fixedSoC(tc.soc), nil, true, false)
		assert.Equal(t, tc.state, d.State, "soc=%.2f", tc.soc)
		assert.Equal(t, tc.cmd, d.GeneratorCmd, "soc=%.2f", tc.soc)
		assert.Equal(t, tc.tier, d.ShedTier, "soc=%.2f", tc.soc)
	}
}

func TestSoCTierEmergencyWithoutGeneratorHolds(t *testing.T) {
	c := newTestController()
	d := c.Decide(100, 100, fixedSoC(0.38), nil, false, false)
	assert.Equal(t, model.StateEmergency, d.State)
	assert.Equal(t, model.GenHold, d.GeneratorCmd)
}

// Exactly one rule must claim each threshold boundary.
func TestThresholdBoundaries(t *testing.T) {
	cases := []struct {
		name  string
		soc   float64
		state model.SystemState
	}{
		{"at preemption threshold", 0.35, model.StateEmergency},
		{"just above preemption", 0.351, model.StateEmergency},
		{"at emergency boundary", 0.40, model.StateStressed},
		{"just below stressed boundary", 0.599, model.StateStressed},
		{"at stressed boundary", 0.60, model.StateNormal},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestController()
			d := c.Decide(100, 100, fixedSoC(tc.soc), nil, true, false)
			assert.Equal(t, tc.state, d.State)
		})
	}
}

func TestStateTransitionsAcrossCalls(t *testing.T) {
	c := newTestController()
	assert.Equal(t, model.StateNormal, c.State())

	c.Decide(100, 100, fixedSoC(0.45), nil, true, false)
	assert.Equal(t, model.StateStressed, c.State())

	c.Decide(100, 100, fixedSoC(0.38), nil, true, false)
	assert.Equal(t, model.StateEmergency, c.State())

	c.Decide(100, 100, fixedSoC(0.75), nil, true, false)
	assert.Equal(t, model.StateNormal, c.State())
}

func TestDecisionAlwaysPopulated(t *testing.T) {
	c := newTestController()
	for _, soc := range []float64{0.1, 0.35, 0.5, 0.9} {
		d := c.Decide(0, 100, fixedSoC(soc), nil, true, false)
		assert.NotEmpty(t, d.Reason, "soc=%.2f", soc)
		assert.True(t, d.GeneratorCmd.Valid(), "soc=%.2f", soc)
	}
}

func TestConfigDefaults(t *testing.T) {
	var cfg Config
	cfg.SetDefaults()
	assert.Equal(t, 1.10, cfg.PredictiveLoadFactor)
	assert.Equal(t, 0.60, cfg.PredictiveSoC)
	assert.Equal(t, 0.35, cfg.PreemptSoC)
	assert.Equal(t, 0.15, cfg.DeficitFrac)
	assert.Equal(t, 0.40, cfg.EmergencySoC)
	assert.Equal(t, 0.60, cfg.StressedSoC)
}
