package controller

// Config groups the controller thresholds. Rule precedence is fixed; the
// thresholds are tunable per deployment.
type Config struct {
	// PredictiveLoadFactor triggers a predictive generator start when the
	// forecast mean exceeds the sensed load by this factor.
	PredictiveLoadFactor float64 `json:"predictive_load_factor"`
	// PredictiveSoC gates the predictive rule to low-reserve conditions.
	PredictiveSoC float64 `json:"predictive_soc"`
	// PreemptSoC forces an emergency generator start. It exists to keep the
	// 0.30 battery floor unreachable under normal load trajectories.
	PreemptSoC float64 `json:"preempt_soc"`
	// DeficitFrac triggers a generator start when solar covers less than
	// (1 - DeficitFrac) of the sensed load.
	DeficitFrac float64 `json:"deficit_frac"`
	// EmergencySoC and StressedSoC bound the SOC-tier state transition.
	EmergencySoC float64 `json:"emergency_soc"`
	StressedSoC  float64 `json:"stressed_soc"`
}

// SetDefaults applies the deployment defaults.
func (c *Config) SetDefaults() {
	if c.PredictiveLoadFactor == 0 {
		c.PredictiveLoadFactor = 1.10
	}
	if c.PredictiveSoC == 0 {
		c.PredictiveSoC = 0.60
	}
	if c.PreemptSoC == 0 {
		c.PreemptSoC = 0.35
	}
	if c.DeficitFrac == 0 {
		c.DeficitFrac = 0.15
	}
	if c.EmergencySoC == 0 {
		c.EmergencySoC = 0.40
	}
	if c.StressedSoC == 0 {
		c.StressedSoC = 0.60
	}
}
