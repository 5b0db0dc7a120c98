// Package profile generates synthetic hospital load and solar irradiance
// profiles for simulation runs that have no recorded dataset attached.
package profile

import (
	"math"
	"math/rand"
)

// Config shapes the synthetic day profiles.
type Config struct {
	// Steps is the number of hourly timesteps to generate.
	Steps int `json:"steps"`
	// BaseLoadKW is the overnight hospital demand; DayPeakKW is added on
	// top of it around mid-day.
	BaseLoadKW float64 `json:"base_load_kw"`
	DayPeakKW  float64 `json:"day_peak_kw"`
	// SolarPeakKW is the clear-sky PV output at solar noon.
	SolarPeakKW float64 `json:"solar_peak_kw"`
	// JitterPct applies multiplicative noise to every sample.
	JitterPct float64 `json:"jitter_pct"`
	Seed      int64   `json:"seed"`
}

// SetDefaults applies the defaults for a two-day hourly run.
func (c *Config) SetDefaults() {
	if c.Steps == 0 {
		c.Steps = 48
	}
	if c.BaseLoadKW == 0 {
		c.BaseLoadKW = 80
	}
	if c.DayPeakKW == 0 {
		c.DayPeakKW = 60
	}
	if c.SolarPeakKW == 0 {
		c.SolarPeakKW = 120
	}
	if c.Seed == 0 {
		c.Seed = 1
	}
}

// Generator produces deterministic synthetic profiles for a given seed.
type Generator struct {
	cfg  Config
	rand *rand.Rand
}

// New creates a Generator.
func New(cfg Config) *Generator {
	cfg.SetDefaults()
	return &Generator{cfg: cfg, rand: rand.New(rand.NewSource(cfg.Seed))}
}

// Profiles returns load and solar series of cfg.Steps hourly samples.
func (g *Generator) Profiles() (load, solar []float64) {
	load = make([]float64, g.cfg.Steps)
	solar = make([]float64, g.cfg.Steps)
	for t := 0; t < g.cfg.Steps; t++ {
		hour := float64(t % 24)
		load[t] = g.jitter(g.loadAt(hour))
		solar[t] = g.jitter(g.solarAt(hour))
	}
	return load, solar
}

// loadAt follows the hospital daily demand curve: overnight base with a
// broad daytime peak centred on 14h.
func (g *Generator) loadAt(hour float64) float64 {
	day := math.Sin(math.Pi * (hour - 6) / 16)
	if hour < 6 || hour > 22 {
		day = 0
	}
	return g.cfg.BaseLoadKW + g.cfg.DayPeakKW*math.Max(0, day)
}

// solarAt is a half-sine between 06h and 18h.
func (g *Generator) solarAt(hour float64) float64 {
	if hour < 6 || hour > 18 {
		return 0
	}
	return g.cfg.SolarPeakKW * math.Sin(math.Pi*(hour-6)/12)
}

func (g *Generator) jitter(v float64) float64 {
	if g.cfg.JitterPct <= 0 {
		return v
	}
	j := 1 + (g.rand.Float64()*2-1)*g.cfg.JitterPct
	out := v * j
	if out < 0 {
		return 0
	}
	return out
}
