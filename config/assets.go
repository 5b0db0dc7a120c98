package config

import "fmt"

// AssetsConfig sizes the physical assets.
type AssetsConfig struct {
	Solar     SolarConfig     `json:"solar"`
	Battery   BatteryConfig   `json:"battery"`
	Generator GeneratorConfig `json:"generator"`
}

// SolarConfig sizes the PV array.
type SolarConfig struct {
	MaxPowerKW float64 `json:"max_power_kw"`
}

// BatteryConfig sizes the storage unit.
type BatteryConfig struct {
	CapacityKWh    float64 `json:"capacity_kwh"`
	InitialSoC     float64 `json:"initial_soc"`
	MaxChargeKW    float64 `json:"max_charge_kw"`
	MaxDischargeKW float64 `json:"max_discharge_kw"`
}

// GeneratorConfig sizes the diesel generator.
type GeneratorConfig struct {
	MaxPowerKW float64 `json:"max_power_kw"`
}

// SetDefaults applies the reference hospital sizing.
func (c *AssetsConfig) SetDefaults() {
	if c.Solar.MaxPowerKW == 0 {
		c.Solar.MaxPowerKW = 130
	}
	if c.Battery.CapacityKWh == 0 {
		c.Battery.CapacityKWh = 300
	}
	if c.Battery.InitialSoC == 0 {
		c.Battery.InitialSoC = 0.5
	}
	if c.Battery.MaxChargeKW == 0 {
		c.Battery.MaxChargeKW = 50
	}
	if c.Battery.MaxDischargeKW == 0 {
		c.Battery.MaxDischargeKW = 50
	}
	if c.Generator.MaxPowerKW == 0 {
		c.Generator.MaxPowerKW = 100
	}
}

// Validate checks the sizing is physical.
func (c AssetsConfig) Validate() error {
	if c.Battery.CapacityKWh <= 0 {
		return fmt.Errorf("battery capacity must be positive")
	}
	if c.Battery.InitialSoC < 0 || c.Battery.InitialSoC > 1 {
		return fmt.Errorf("battery initial_soc %f out of range", c.Battery.InitialSoC)
	}
	if c.Solar.MaxPowerKW < 0 || c.Generator.MaxPowerKW < 0 {
		return fmt.Errorf("asset ratings must not be negative")
	}
	return nil
}
