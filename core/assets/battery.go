package assets

// Battery models a stationary storage unit with charge and discharge power
// limits. SOC is kept in [0,1] at all times; only Charge and Discharge
// mutate it.
type Battery struct {
	CapacityKWh    float64
	MaxChargeKW    float64
	MaxDischargeKW float64

	soc float64
}

// NewBattery creates a battery with the given capacity and initial SOC.
// The initial SOC is clamped to [0,1].
func NewBattery(capacityKWh, initialSoC, maxChargeKW, maxDischargeKW float64) *Battery {
	return &Battery{
		CapacityKWh:    capacityKWh,
		MaxChargeKW:    maxChargeKW,
		MaxDischargeKW: maxDischargeKW,
		soc:            clamp01(initialSoC),
	}
}

// SoC returns the current state of charge in [0,1].
func (b *Battery) SoC() float64 { return b.soc }

// Charge stores up to powerKW for dtHours, bounded by the charge rate and the
// remaining headroom. It returns the power actually absorbed in kW.
func (b *Battery) Charge(powerKW, dtHours float64) float64 {
	if powerKW <= 0 || dtHours <= 0 {
		return 0
	}
	p := powerKW
	if p > b.MaxChargeKW {
		p = b.MaxChargeKW
	}
	headroom := (1 - b.soc) * b.CapacityKWh
	energy := p * dtHours
	if energy > headroom {
		energy = headroom
		p = energy / dtHours
	}
	b.soc = clamp01(b.soc + energy/b.CapacityKWh)
	return p
}

// Discharge draws up to powerKW for dtHours, bounded by the discharge rate,
// the stored energy and the minSoC floor. It returns the power actually
// delivered in kW.
func (b *Battery) Discharge(powerKW, dtHours, minSoC float64) float64 {
	if powerKW <= 0 || dtHours <= 0 {
		return 0
	}
	p := powerKW
	if p > b.MaxDischargeKW {
		p = b.MaxDischargeKW
	}
	floor := minSoC
	if floor < 0 {
		floor = 0
	}
	available := (b.soc - floor) * b.CapacityKWh
	if available <= 0 {
		return 0
	}
	energy := p * dtHours
	if energy > available {
		energy = available
		p = energy / dtHours
	}
	b.soc = clamp01(b.soc - energy/b.CapacityKWh)
	return p
}

// SetSoC overrides the state of charge, clamped to [0,1]. Intended for test
// and scenario setup only.
func (b *Battery) SetSoC(soc float64) { b.soc = clamp01(soc) }

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
