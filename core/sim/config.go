package sim

import (
	"fmt"

	"github.com/gridwise/microgrid/core/model"
)

// Config defines simulation loop settings.
type Config struct {
	// CriticalLoadKW is the life-critical hospital demand floor. It is
	// never shed; the shed fractions apply to demand above it.
	CriticalLoadKW float64 `json:"critical_load_kw"`
	// StepHours converts per-step power to energy. Hourly steps by default.
	StepHours float64 `json:"step_hours"`
	// ForecastHorizon and HistoryWarmup control the advisory forecaster:
	// predictions cover ForecastHorizon steps and are requested only once
	// HistoryWarmup samples of load history exist.
	ForecastHorizon int `json:"forecast_horizon"`
	HistoryWarmup   int `json:"history_warmup"`
	// NoGenerator marks the backup generator as unavailable for the run.
	NoGenerator bool `json:"no_generator"`
	// DischargeFloorSoC is the minimum SOC the dispatch stage will draw
	// the battery down to.
	DischargeFloorSoC float64 `json:"discharge_floor_soc"`
	// LogEveryN thins the per-step system log. Zero disables it.
	LogEveryN int `json:"log_every_n"`
	// CyberLogMode selects the cyber event log cadence: "transition"
	// (rising edge only), "anomaly" (every anomalous step) or "active"
	// (every step the latch is set). Unknown values fall back to
	// "transition".
	CyberLogMode string `json:"cyber_log_mode"`

	Shedding SheddingConfig `json:"shedding"`
}

// SetDefaults applies the deployment defaults.
func (c *Config) SetDefaults() {
	if c.CriticalLoadKW == 0 {
		c.CriticalLoadKW = 30
	}
	if c.StepHours == 0 {
		c.StepHours = 1
	}
	if c.ForecastHorizon == 0 {
		c.ForecastHorizon = 6
	}
	if c.HistoryWarmup == 0 {
		c.HistoryWarmup = 24
	}
	if c.DischargeFloorSoC == 0 {
		c.DischargeFloorSoC = 0.30
	}
	if c.CyberLogMode == "" {
		c.CyberLogMode = "transition"
	}
	c.Shedding.SetDefaults()
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	if c.CriticalLoadKW < 0 {
		return fmt.Errorf("critical_load_kw must not be negative")
	}
	if c.StepHours <= 0 {
		return fmt.Errorf("step_hours must be positive")
	}
	return c.Shedding.Validate()
}

// SheddingConfig maps shed tiers to the fraction of non-critical demand
// dropped. Exposed as data rather than constants so hospital-specific
// criticality profiles can be tuned per deployment.
type SheddingConfig struct {
	TierFractions []float64 `json:"tier_fractions"`
}

// SetDefaults applies the default 0/10/30/100% ladder.
func (c *SheddingConfig) SetDefaults() {
	if len(c.TierFractions) == 0 {
		c.TierFractions = []float64{0, 0.10, 0.30, 1.0}
	}
}

// Validate requires one fraction per tier, monotonically non-decreasing,
// with full shedding at the top tier.
func (c SheddingConfig) Validate() error {
	if len(c.TierFractions) != 4 {
		return fmt.Errorf("shedding requires 4 tier fractions, got %d", len(c.TierFractions))
	}
	prev := 0.0
	for i, f := range c.TierFractions {
		if f < 0 || f > 1 {
			return fmt.Errorf("tier %d fraction %f out of range", i, f)
		}
		if f < prev {
			return fmt.Errorf("tier fractions must be non-decreasing")
		}
		prev = f
	}
	if c.TierFractions[0] != 0 {
		return fmt.Errorf("tier 0 must shed nothing")
	}
	if c.TierFractions[3] != 1 {
		return fmt.Errorf("tier 3 must shed all non-critical demand")
	}
	return nil
}

// Fraction returns the shed fraction for the tier. Out-of-range tiers shed
// everything; the invariant checker rejects them downstream.
func (c SheddingConfig) Fraction(tier model.ShedTier) float64 {
	if tier <= 0 {
		return c.TierFractions[0]
	}
	if int(tier) >= len(c.TierFractions) {
		return 1
	}
	return c.TierFractions[tier]
}
